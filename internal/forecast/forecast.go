package forecast

import (
	"fmt"

	"github.com/iwvelando/esop-forecast/internal/config"
	"go.uber.org/zap"
)

// Forecast holds a computed table together with the views the dashboard
// renders from it.
type Forecast struct {
	Grant    config.Grant
	Options  float64
	Selected int
	Table    Table
	Visible  Table
	Row      Scenario
}

// ParametersFromGrant converts the configured grant into table parameters.
func ParametersFromGrant(g config.Grant) Parameters {
	return Parameters{
		StrikePrice:      g.StrikePrice,
		CurrentFMV:       g.CurrentFMV,
		IncomeTaxRate:    g.IncomeTaxRate,
		LTCGRate:         g.LTCGRate,
		Unit:             g.Unit,
		BaselineMultiple: g.BaselineMultiple,
		Multiples:        g.Multiples,
		OptionValueMode:  g.OptionValueMode,
	}
}

// SelectionFromConfig converts the configured selection.
func SelectionFromConfig(s config.Selection) Selection {
	return Selection{
		Mode:     s.Mode,
		Percent:  s.Percent,
		Count:    s.Count,
		Multiple: s.Multiple,
	}
}

// GetForecast validates the selection, builds the table and extracts the
// filtered prefix and the selected row.
func GetForecast(logger *zap.Logger, conf config.Configuration) (Forecast, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := conf.Validate(); err != nil {
		return Forecast{}, err
	}

	selection := SelectionFromConfig(conf.Selection)
	options := selection.Options(conf.Grant.BaseOptions)
	table := BuildTable(options, ParametersFromGrant(conf.Grant))

	row, ok := table.Row(selection.Multiple)
	if !ok {
		return Forecast{}, fmt.Errorf("no scenario for valuation multiple %d", selection.Multiple)
	}

	logger.Debug("built valuation table",
		zap.String("op", "forecast.GetForecast"),
		zap.Float64("options", options),
		zap.Int("multiple", selection.Multiple),
		zap.Int("rows", len(table)),
		zap.Int64("savings", row.Savings),
	)

	return Forecast{
		Grant:    conf.Grant,
		Options:  options,
		Selected: selection.Multiple,
		Table:    table,
		Visible:  table.Prefix(selection.Multiple),
		Row:      row,
	}, nil
}
