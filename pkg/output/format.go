// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/esop-forecast/internal/forecast"
	"github.com/iwvelando/esop-forecast/pkg/format"
)

// Columns are the breakdown table headers shared by every output format.
var Columns = []string{
	"IPO Valuation",
	"FMV",
	"Value of Options",
	"Tax Without Exercise",
	"Tax Now with Exercise",
	"LTCG Tax",
	"Total Tax with Exercise",
	"Potential Tax Savings",
}

// Metric is one labelled figure in the detailed metrics panel.
type Metric struct {
	Group string `json:"group"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// Row is the serialised form of a forecast.Scenario.
type Row struct {
	Valuation            int     `json:"valuation"`
	FMV                  float64 `json:"fmv"`
	OptionValue          int64   `json:"optionValue"`
	TaxWithoutExercise   int64   `json:"taxWithoutExercise"`
	PerquisiteTax        int64   `json:"perquisiteTax"`
	LTCGTax              int64   `json:"ltcgTax"`
	TotalTaxWithExercise int64   `json:"totalTaxWithExercise"`
	Savings              int64   `json:"savings"`
}

// Report is the serialised form of a forecast.Forecast.
type Report struct {
	Options   float64  `json:"options"`
	Selected  int      `json:"selected"`
	Summary   []string `json:"summary"`
	Metrics   []Metric `json:"metrics"`
	BreakEven *int     `json:"breakEven,omitempty"`
	Rows      []Row    `json:"rows"`
	Visible   []Row    `json:"visible"`
}

// Metric groups
const (
	GroupWithoutExercise = "If You Don't Exercise Now"
	GroupWithExercise    = "If You Exercise Now"
)

// Summary returns the headline lines for the selected valuation.
func Summary(f forecast.Forecast) []string {
	return []string{
		fmt.Sprintf("Valuation: %s%dB", format.RupeeSymbol, f.Selected),
		fmt.Sprintf("Options to Exercise: %s", format.Count(f.Options)),
		fmt.Sprintf("FMV: %s", format.Rupees(f.Row.FMVAtIPO)),
		fmt.Sprintf("Option Value: %s", format.Lakhs(f.Row.OptionValue)),
		fmt.Sprintf("Potential Tax Savings: %s", format.Lakhs(f.Row.Savings)),
	}
}

// Metrics returns the detailed comparison at the selected valuation.
func Metrics(f forecast.Forecast) []Metric {
	row := f.Row
	return []Metric{
		{GroupWithoutExercise, "Total Tax Liability", format.Lakhs(row.TaxWithoutExercise)},
		{GroupWithExercise, "Perquisite Tax", format.Lakhs(row.PerquisiteTax)},
		{GroupWithExercise, "Capital Gains Tax", format.Lakhs(row.LTCGTax)},
		{GroupWithExercise, "Total Tax Liability", format.Lakhs(row.TotalTaxWithExercise)},
		{GroupWithExercise, "Tax Savings", format.Lakhs(row.Savings)},
	}
}

// Rows converts a table into its serialised form.
func Rows(table forecast.Table) []Row {
	rows := make([]Row, 0, len(table))
	for _, s := range table {
		fmv, _ := s.FMVAtIPO.Round(2).Float64()
		rows = append(rows, Row{
			Valuation:            s.Multiple,
			FMV:                  fmv,
			OptionValue:          s.OptionValue,
			TaxWithoutExercise:   s.TaxWithoutExercise,
			PerquisiteTax:        s.PerquisiteTax,
			LTCGTax:              s.LTCGTax,
			TotalTaxWithExercise: s.TotalTaxWithExercise,
			Savings:              s.Savings,
		})
	}
	return rows
}

// NewReport assembles the serialised form of a forecast.
func NewReport(f forecast.Forecast) Report {
	report := Report{
		Options:  f.Options,
		Selected: f.Selected,
		Summary:  Summary(f),
		Metrics:  Metrics(f),
		Rows:     Rows(f.Table),
		Visible:  Rows(f.Visible),
	}
	if row, ok := f.Table.BreakEven(); ok {
		m := row.Multiple
		report.BreakEven = &m
	}
	return report
}

func cells(s forecast.Scenario) []string {
	return []string{
		fmt.Sprintf("%s%dB", format.RupeeSymbol, s.Multiple),
		format.Rupees(s.FMVAtIPO),
		format.Lakhs(s.OptionValue),
		format.Lakhs(s.TaxWithoutExercise),
		format.Lakhs(s.PerquisiteTax),
		format.Lakhs(s.LTCGTax),
		format.Lakhs(s.TotalTaxWithExercise),
		format.Lakhs(s.Savings),
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, f forecast.Forecast) {
	fmt.Fprintf(w, "--- ESOP tax forecast ---\n")
	for _, line := range Summary(f) {
		fmt.Fprintf(w, "%s\n", line)
	}

	fmt.Fprintf(w, "\n")
	group := ""
	for _, m := range Metrics(f) {
		if m.Group != group {
			group = m.Group
			fmt.Fprintf(w, "%s\n", group)
		}
		fmt.Fprintf(w, "  %s: %s\n", m.Label, m.Value)
	}
	if row, ok := f.Table.BreakEven(); ok {
		fmt.Fprintf(w, "Exercising now starts saving tax at valuation %s%dB\n", format.RupeeSymbol, row.Multiple)
	}

	fmt.Fprintf(w, "\n")
	widths := make([]int, len(Columns))
	grid := make([][]string, 0, len(f.Table)+1)
	grid = append(grid, Columns)
	for _, s := range f.Table {
		grid = append(grid, cells(s))
	}
	for _, line := range grid {
		for i, cell := range line {
			if n := len([]rune(cell)); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i, line := range grid {
		fmt.Fprintf(w, "%s\n", joinPadded(line, widths))
		if i == 0 {
			rules := make([]string, len(widths))
			for j, width := range widths {
				rules[j] = strings.Repeat("_", width)
			}
			fmt.Fprintf(w, "%s\n", joinPadded(rules, widths))
		}
	}
}

func joinPadded(line []string, widths []int) string {
	padded := make([]string, len(line))
	for i, cell := range line {
		padded[i] = cell + strings.Repeat(" ", widths[i]-len([]rune(cell)))
	}
	return strings.TrimRight(strings.Join(padded, " | "), " ")
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(w io.Writer, f forecast.Forecast) {
	fmt.Fprint(w, CsvString(f))
}

// CsvString returns the breakdown table in comma-separated value format.
// Monetary columns are plain numbers in lakhs.
func CsvString(f forecast.Forecast) string {
	var b strings.Builder
	for i, col := range Columns {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `"%s"`, col)
	}
	b.WriteString("\n")
	for _, s := range f.Table {
		fmt.Fprintf(&b, `"%d","%s","%d","%d","%d","%d","%d","%d"`+"\n",
			s.Multiple, s.FMVAtIPO.StringFixed(2), s.OptionValue, s.TaxWithoutExercise,
			s.PerquisiteTax, s.LTCGTax, s.TotalTaxWithExercise, s.Savings)
	}
	return b.String()
}

// JSONFormat outputs the report as indented JSON.
func JSONFormat(w io.Writer, f forecast.Forecast) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewReport(f))
}
