// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/esop-forecast/pkg/constants"
	"github.com/shopspring/decimal"
)

// RoundUnits rounds a monetary amount to the nearest whole unit. Exact
// midpoints go to the even neighbour, so 2.5 becomes 2 and 3.5 becomes 4.
func RoundUnits(val decimal.Decimal) int64 {
	return val.RoundBank(0).IntPart()
}

// NonNegative clamps a value at zero.
func NonNegative(val decimal.Decimal) decimal.Decimal {
	return decimal.Max(val, decimal.Zero)
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// OnStep reports whether value is a whole multiple of step.
func OnStep(value, step float64) bool {
	if step <= 0 {
		return true
	}
	q := value / step
	return math.Abs(q-math.Round(q)) < 1e-9
}
