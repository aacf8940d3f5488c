package validation

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/esop-forecast/pkg/constants"
	"github.com/iwvelando/esop-forecast/pkg/mathutil"
)

// Errors returned for inputs the dashboard widgets would never produce.
var (
	ErrInvalidMode      = errors.New("invalid selection mode")
	ErrInvalidPercent   = errors.New("percent of options out of range")
	ErrInvalidCount     = errors.New("option count out of range")
	ErrInvalidMultiple  = errors.New("valuation multiple out of range")
	ErrInvalidValueMode = errors.New("invalid option value mode")
	ErrInvalidFMV       = errors.New("current FMV must be positive")
)

// MaxFigure bounds every table figure, in report units, so that rounding to
// whole units stays within int64.
const MaxFigure = 1e18

// ValidateSelection enforces the constraints of the input widgets: a
// percentage slider over [0, 100], a non-negative count, and a valuation
// slider over [1, multiples].
func ValidateSelection(mode string, percent, count float64, multiple, multiples int) error {
	switch mode {
	case constants.SelectionPercentage:
		if notFinite(percent) || percent < 0 || percent > constants.PercentageMultiplier {
			return fmt.Errorf("%w: %v not in [0, 100]", ErrInvalidPercent, percent)
		}
	case constants.SelectionAbsolute:
		if notFinite(count) || count < 0 {
			return fmt.Errorf("%w: %v is negative", ErrInvalidCount, count)
		}
	default:
		return fmt.Errorf("%w: expected %s or %s, got %q", ErrInvalidMode,
			constants.SelectionPercentage, constants.SelectionAbsolute, mode)
	}

	if multiple < 1 || multiple > multiples {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidMultiple, multiple, multiples)
	}
	return nil
}

// ValidateOptionValueMode checks the option value mode.
func ValidateOptionValueMode(mode string) error {
	if mode != constants.OptionValueFlat && mode != constants.OptionValueGain {
		return fmt.Errorf("%w: expected %s or %s, got %q", ErrInvalidValueMode,
			constants.OptionValueFlat, constants.OptionValueGain, mode)
	}
	return nil
}

// ValidateCurrentFMV rejects a non-positive current FMV, which would leave
// the IPO valuations flat or falling.
func ValidateCurrentFMV(currentFMV float64) error {
	if notFinite(currentFMV) || currentFMV <= 0 {
		return fmt.Errorf("%w, got %v", ErrInvalidFMV, currentFMV)
	}
	return nil
}

// ValidateScale rejects option counts whose largest figure, taken at the top
// valuation, exceeds MaxFigure units.
func ValidateScale(options, strike, currentFMV, incomeTaxRate, ltcgRate, unit float64, multiples, baselineMultiple int) error {
	topFMV := currentFMV * float64(multiples) / float64(baselineMultiple)
	price := math.Abs(topFMV) + math.Abs(strike)
	rate := math.Max(1, math.Max(math.Abs(incomeTaxRate), math.Abs(ltcgRate)))
	largest := options * price * rate / unit
	if notFinite(options) || notFinite(largest) || largest > MaxFigure {
		return fmt.Errorf("%w: %v options give figures beyond %g units", ErrInvalidCount, options, MaxFigure)
	}
	return nil
}

// SelectionWarnings reports inputs that are accepted but fall off the
// widget grids or exceed the grant.
func SelectionWarnings(mode string, percent, count, baseOptions float64) []string {
	var warnings []string
	switch mode {
	case constants.SelectionPercentage:
		if !mathutil.OnStep(percent, constants.PercentStep) {
			warnings = append(warnings, fmt.Sprintf("Percent %v is not a multiple of %d", percent, constants.PercentStep))
		}
	case constants.SelectionAbsolute:
		if !mathutil.OnStep(count, constants.CountStep) && count != baseOptions {
			warnings = append(warnings, fmt.Sprintf("Option count %v is not a multiple of %d", count, constants.CountStep))
		}
		if count > baseOptions {
			warnings = append(warnings, fmt.Sprintf("Option count %v exceeds the %v options in the grant", count, baseOptions))
		}
	}
	return warnings
}

// GrantWarnings reports grant constants that produce surprising tables.
func GrantWarnings(strike, currentFMV, incomeTaxRate, ltcgRate float64) []string {
	var warnings []string
	if strike > currentFMV {
		warnings = append(warnings, fmt.Sprintf("Strike price %v exceeds current FMV %v - options are underwater", strike, currentFMV))
	}
	if incomeTaxRate < 0 || incomeTaxRate > 1 {
		warnings = append(warnings, fmt.Sprintf("Income tax rate %v is outside [0, 1] - rates are fractions, not percentages", incomeTaxRate))
	}
	if ltcgRate < 0 || ltcgRate > 1 {
		warnings = append(warnings, fmt.Sprintf("LTCG rate %v is outside [0, 1] - rates are fractions, not percentages", ltcgRate))
	}
	return warnings
}

func notFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
