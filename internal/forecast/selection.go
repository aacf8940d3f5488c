package forecast

import (
	"github.com/iwvelando/esop-forecast/pkg/constants"
	"github.com/iwvelando/esop-forecast/pkg/mathutil"
)

// Selection describes how many options to exercise and which valuation
// multiple to focus on.
type Selection struct {
	Mode     string
	Percent  float64
	Count    float64
	Multiple int
}

// Options resolves the number of options to exercise. In percentage mode the
// result is a fraction of baseOptions and need not be whole.
func (s Selection) Options(baseOptions float64) float64 {
	if s.Mode == constants.SelectionAbsolute {
		return s.Count
	}
	return mathutil.ApplyPercentage(baseOptions, s.Percent)
}
