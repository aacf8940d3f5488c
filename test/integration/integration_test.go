package integration

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/iwvelando/esop-forecast/internal/config"
	"github.com/iwvelando/esop-forecast/internal/forecast"
	"github.com/iwvelando/esop-forecast/pkg/output"
	"github.com/iwvelando/esop-forecast/pkg/testutil"
	"go.uber.org/zap"
)

const exampleConfig = "../../config.yaml.example"

func loadExample(t *testing.T) *config.Configuration {
	t.Helper()
	conf, err := config.LoadConfiguration(exampleConfig)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return conf
}

// TestMainIntegrationBaseline checks the example configuration still produces
// the captured baseline table.
func TestMainIntegrationBaseline(t *testing.T) {
	logger := zap.NewNop()
	conf := loadExample(t)

	result, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}

	baselineFile, err := os.Open("../baseline/baseline_output.csv")
	if err != nil {
		t.Fatalf("Could not open baseline CSV file: %v", err)
	}
	defer func() {
		if closeErr := baselineFile.Close(); closeErr != nil {
			t.Errorf("Failed to close baseline file: %v", closeErr)
		}
	}()

	var expected []string
	scanner := bufio.NewScanner(baselineFile)
	for scanner.Scan() {
		expected = append(expected, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("Error reading baseline CSV: %v", err)
	}

	actual := strings.Split(strings.TrimSuffix(output.CsvString(result), "\n"), "\n")
	if len(actual) != len(expected) {
		t.Fatalf("Expected %d CSV lines, got %d", len(expected), len(actual))
	}
	for i := range expected {
		if actual[i] != expected[i] {
			t.Errorf("Line %d mismatch:\n  expected %s\n  got      %s", i, expected[i], actual[i])
		}
	}
}

// TestOutputFormatsAgree renders every format from one forecast and checks
// they report the same figures.
func TestOutputFormatsAgree(t *testing.T) {
	logger := zap.NewNop()
	conf := loadExample(t)
	conf.Selection.Multiple = 6

	result, err := forecast.GetForecast(logger, *conf)
	if err != nil {
		t.Fatalf("GetForecast() error = %v", err)
	}

	var jsonOut bytes.Buffer
	if err := output.JSONFormat(&jsonOut, result); err != nil {
		t.Fatalf("JSONFormat() error = %v", err)
	}
	var report output.Report
	if err := json.Unmarshal(jsonOut.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode JSON output: %v", err)
	}

	row := testutil.FindRow(report.Rows, 6)
	if row == nil {
		t.Fatal("JSON output is missing valuation 6")
	}
	if row.Savings != result.Row.Savings {
		t.Errorf("JSON savings %d, forecast savings %d", row.Savings, result.Row.Savings)
	}

	var pretty bytes.Buffer
	output.PrettyFormat(&pretty, result)
	if !strings.Contains(pretty.String(), "Potential Tax Savings: ₹22 Lacs") {
		t.Errorf("pretty output missing selected savings:\n%s", pretty.String())
	}

	pdf, err := output.PDFReport(result)
	if err != nil {
		t.Fatalf("PDFReport() error = %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF-")) {
		t.Error("PDF report does not start with the PDF magic number")
	}
}

// TestDataConsistency validates that multiple runs produce identical results
func TestDataConsistency(t *testing.T) {
	logger := zap.NewNop()

	var first string
	for i := 0; i < 10; i++ {
		conf := loadExample(t)
		result, err := forecast.GetForecast(logger, *conf)
		if err != nil {
			t.Fatalf("GetForecast failed on iteration %d: %v", i, err)
		}
		csv := output.CsvString(result)
		if i == 0 {
			first = csv
			continue
		}
		if csv != first {
			t.Fatalf("iteration %d produced different output", i)
		}
	}
}

// TestConfigurationVariations drives the pipeline through the selection modes.
func TestConfigurationVariations(t *testing.T) {
	tests := []struct {
		name      string
		selection config.Selection
		options   float64
		visible   int
	}{
		{
			name:      "full grant",
			selection: config.Selection{Mode: "percentage", Percent: 100, Multiple: 3},
			options:   2131,
			visible:   3,
		},
		{
			name:      "half grant",
			selection: config.Selection{Mode: "percentage", Percent: 50, Multiple: 10},
			options:   1065.5,
			visible:   10,
		},
		{
			name:      "absolute count",
			selection: config.Selection{Mode: "absolute", Count: 500, Multiple: 1},
			options:   500,
			visible:   1,
		},
		{
			name:      "nothing exercised",
			selection: config.Selection{Mode: "percentage", Percent: 0, Multiple: 5},
			options:   0,
			visible:   5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := loadExample(t)
			conf.Selection = tt.selection

			result, err := forecast.GetForecast(zap.NewNop(), *conf)
			if err != nil {
				t.Fatalf("GetForecast() error = %v", err)
			}
			if result.Options != tt.options {
				t.Errorf("expected %v options, got %v", tt.options, result.Options)
			}
			if len(result.Visible) != tt.visible {
				t.Errorf("expected %d visible rows, got %d", tt.visible, len(result.Visible))
			}
			if len(result.Table) != 10 {
				t.Errorf("expected 10 rows, got %d", len(result.Table))
			}
		})
	}
}
