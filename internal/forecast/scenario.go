// Package forecast builds the ESOP tax projection table: for each IPO
// valuation multiple it compares the tax owed when options are exercised at
// IPO against exercising them today and paying capital gains later.
package forecast

import (
	"github.com/iwvelando/esop-forecast/pkg/constants"
	"github.com/iwvelando/esop-forecast/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// Parameters holds the grant constants a table is derived from.
type Parameters struct {
	StrikePrice      float64
	CurrentFMV       float64
	IncomeTaxRate    float64
	LTCGRate         float64
	Unit             float64 // currency divisor for reported figures, e.g. one lakh
	BaselineMultiple int     // multiple at which the IPO FMV equals CurrentFMV
	Multiples        int
	OptionValueMode  string // flat or gain
}

// DefaultParameters returns the reference grant constants.
func DefaultParameters() Parameters {
	return Parameters{
		StrikePrice:      constants.DefaultStrikePrice,
		CurrentFMV:       constants.DefaultCurrentFMV,
		IncomeTaxRate:    constants.DefaultIncomeTaxRate,
		LTCGRate:         constants.DefaultLTCGRate,
		Unit:             constants.LakhUnit,
		BaselineMultiple: constants.DefaultBaselineMultiple,
		Multiples:        constants.DefaultMultiples,
		OptionValueMode:  constants.OptionValueFlat,
	}
}

// withDefaults fills zero-valued fields so a partially specified
// Parameters never divides by zero.
func (p Parameters) withDefaults() Parameters {
	if p.Unit <= 0 {
		p.Unit = constants.LakhUnit
	}
	if p.BaselineMultiple <= 0 {
		p.BaselineMultiple = constants.DefaultBaselineMultiple
	}
	if p.Multiples <= 0 {
		p.Multiples = constants.DefaultMultiples
	}
	if p.OptionValueMode == "" {
		p.OptionValueMode = constants.OptionValueFlat
	}
	return p
}

// Scenario is one row of the projection: the outcome at a single valuation
// multiple. Monetary figures are whole units of Parameters.Unit.
type Scenario struct {
	Multiple             int
	FMVAtIPO             decimal.Decimal
	OptionValue          int64
	TaxWithoutExercise   int64
	PerquisiteTax        int64
	LTCGTax              int64
	TotalTaxWithExercise int64
	Savings              int64
}

// Table is the ordered list of scenarios, one per multiple starting at 1.
type Table []Scenario

// BuildTable computes one Scenario per valuation multiple for the given
// number of options. It is a pure function of its inputs.
func BuildTable(options float64, params Parameters) Table {
	p := params.withDefaults()

	opts := decimal.NewFromFloat(options)
	strike := decimal.NewFromFloat(p.StrikePrice)
	current := decimal.NewFromFloat(p.CurrentFMV)
	incomeRate := decimal.NewFromFloat(p.IncomeTaxRate)
	ltcgRate := decimal.NewFromFloat(p.LTCGRate)
	unit := decimal.NewFromFloat(p.Unit)
	baseline := decimal.NewFromInt(int64(p.BaselineMultiple))

	// The perquisite depends only on today's spread.
	perquisite := mathutil.RoundUnits(opts.Mul(current.Sub(strike)).Mul(incomeRate).Div(unit))

	table := make(Table, 0, p.Multiples)
	for m := 1; m <= p.Multiples; m++ {
		fmv := current.Mul(decimal.NewFromInt(int64(m))).Div(baseline)

		valuePerShare := fmv
		if p.OptionValueMode == constants.OptionValueGain {
			valuePerShare = mathutil.NonNegative(fmv.Sub(strike))
		}

		row := Scenario{
			Multiple:           m,
			FMVAtIPO:           fmv,
			OptionValue:        mathutil.RoundUnits(opts.Mul(valuePerShare).Div(unit)),
			TaxWithoutExercise: mathutil.RoundUnits(opts.Mul(fmv.Sub(strike)).Mul(incomeRate).Div(unit)),
			PerquisiteTax:      perquisite,
			LTCGTax:            mathutil.RoundUnits(opts.Mul(mathutil.NonNegative(fmv.Sub(current))).Mul(ltcgRate).Div(unit)),
		}
		row.TotalTaxWithExercise = row.PerquisiteTax + row.LTCGTax
		row.Savings = row.TaxWithoutExercise - row.TotalTaxWithExercise
		table = append(table, row)
	}
	return table
}

// Prefix returns the scenarios up to and including multiple m.
func (t Table) Prefix(m int) Table {
	out := make(Table, 0, len(t))
	for _, row := range t {
		if row.Multiple <= m {
			out = append(out, row)
		}
	}
	return out
}

// Row returns the scenario for multiple m.
func (t Table) Row(m int) (Scenario, bool) {
	for _, row := range t {
		if row.Multiple == m {
			return row, true
		}
	}
	return Scenario{}, false
}

// BreakEven returns the first scenario in which exercising now saves tax.
func (t Table) BreakEven() (Scenario, bool) {
	for _, row := range t {
		if row.Savings > 0 {
			return row, true
		}
	}
	return Scenario{}, false
}
