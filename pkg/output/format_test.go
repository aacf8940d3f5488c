package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/esop-forecast/internal/config"
	"github.com/iwvelando/esop-forecast/internal/forecast"
	"github.com/iwvelando/esop-forecast/pkg/format"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testForecast(t *testing.T, multiple int) forecast.Forecast {
	t.Helper()
	conf := config.Default()
	conf.Selection.Multiple = multiple
	f, err := forecast.GetForecast(zap.NewNop(), conf)
	require.NoError(t, err)
	return f
}

func TestSummary(t *testing.T) {
	lines := Summary(testForecast(t, 6))
	assert.Equal(t, []string{
		"Valuation: ₹6B",
		"Options to Exercise: 2,131",
		"FMV: ₹8,300",
		"Option Value: ₹177 Lacs",
		"Potential Tax Savings: ₹22 Lacs",
	}, lines)
}

func TestSummaryUsesSelectedRow(t *testing.T) {
	f := testForecast(t, 6)
	// The summary reads from the computed row rather than recomputing.
	f.Row.Savings = 999
	assert.Contains(t, Summary(f), "Potential Tax Savings: ₹999 Lacs")
}

func TestMetrics(t *testing.T) {
	metrics := Metrics(testForecast(t, 6))
	require.Len(t, metrics, 5)

	assert.Equal(t, Metric{GroupWithoutExercise, "Total Tax Liability", "₹65 Lacs"}, metrics[0])
	assert.Equal(t, Metric{GroupWithExercise, "Perquisite Tax", "₹32 Lacs"}, metrics[1])
	assert.Equal(t, Metric{GroupWithExercise, "Capital Gains Tax", "₹11 Lacs"}, metrics[2])
	assert.Equal(t, Metric{GroupWithExercise, "Total Tax Liability", "₹43 Lacs"}, metrics[3])
	assert.Equal(t, Metric{GroupWithExercise, "Tax Savings", "₹22 Lacs"}, metrics[4])
}

func TestPrettyFormat(t *testing.T) {
	var buf bytes.Buffer
	PrettyFormat(&buf, testForecast(t, 3))
	out := buf.String()

	assert.Contains(t, out, "--- ESOP tax forecast ---")
	assert.Contains(t, out, "Valuation: ₹3B")
	assert.Contains(t, out, GroupWithoutExercise)
	assert.Contains(t, out, GroupWithExercise)
	assert.Contains(t, out, "Exercising now starts saving tax at valuation ₹4B")
	assert.Contains(t, out, "IPO Valuation")
	assert.Contains(t, out, "Potential Tax Savings")
	assert.Contains(t, out, "-₹21 Lacs")
	assert.Contains(t, out, "₹13,833.33")

	// Header, rule and one line per valuation.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	var tableLines []string
	for _, line := range lines {
		if strings.Contains(line, " | ") {
			tableLines = append(tableLines, line)
		}
	}
	assert.Len(t, tableLines, 12)
	assert.True(t, strings.HasPrefix(tableLines[1], "_"))
}

func TestCsvString(t *testing.T) {
	csv := CsvString(testForecast(t, 3))
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	require.Len(t, lines, 11)

	assert.Equal(t, `"IPO Valuation","FMV","Value of Options","Tax Without Exercise","Tax Now with Exercise","LTCG Tax","Total Tax with Exercise","Potential Tax Savings"`, lines[0])
	assert.Equal(t, `"1","1383.33","29","11","32","0","32","-21"`, lines[1])
	assert.Equal(t, `"6","8300.00","177","65","32","11","43","22"`, lines[6])
	assert.Equal(t, `"10","13833.33","295","108","32","26","58","50"`, lines[10])
}

func TestCsvFormatMatchesCsvString(t *testing.T) {
	f := testForecast(t, 5)
	var buf bytes.Buffer
	CsvFormat(&buf, f)
	assert.Equal(t, CsvString(f), buf.String())
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONFormat(&buf, testForecast(t, 6)))

	var report Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))

	assert.Equal(t, 2131.0, report.Options)
	assert.Equal(t, 6, report.Selected)
	assert.Len(t, report.Rows, 10)
	assert.Len(t, report.Visible, 6)
	require.NotNil(t, report.BreakEven)
	assert.Equal(t, 4, *report.BreakEven)
	assert.Equal(t, Row{
		Valuation:            6,
		FMV:                  8300,
		OptionValue:          177,
		TaxWithoutExercise:   65,
		PerquisiteTax:        32,
		LTCGTax:              11,
		TotalTaxWithExercise: 43,
		Savings:              22,
	}, report.Rows[5])
}

func TestNewReportWithoutBreakEven(t *testing.T) {
	conf := config.Default()
	conf.Selection.Percent = 0
	f, err := forecast.GetForecast(zap.NewNop(), conf)
	require.NoError(t, err)

	assert.Nil(t, NewReport(f).BreakEven)
}

func TestRowsRoundsFMV(t *testing.T) {
	rows := Rows(testForecast(t, 1).Table)
	require.NotEmpty(t, rows)
	assert.InDelta(t, 1383.33, rows[0].FMV, 1e-9)
}

func TestPDFReport(t *testing.T) {
	for _, multiple := range []int{1, 3, 10} {
		data, err := PDFReport(testForecast(t, multiple))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")), "PDF header for multiple %d", multiple)
	}
}

func TestPdfText(t *testing.T) {
	assert.Equal(t, "Rs 32 Lacs", pdfText("₹32 Lacs"))
	assert.Equal(t, "-Rs 21 Lacs", pdfText("-₹21 Lacs"))
}

func TestPDFReportGroupsLargeChartLabels(t *testing.T) {
	conf := config.Default()
	conf.Selection = config.Selection{Mode: "absolute", Count: 1e8, Multiple: 10}
	f, err := forecast.GetForecast(zap.NewNop(), conf)
	require.NoError(t, err)

	// Chart labels go through NumericLakhs; the top figure needs separators
	assert.Equal(t, "5,068,283", format.NumericLakhs(f.Row.TaxWithoutExercise))

	data, err := PDFReport(f)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
