// Package config defines the data structures related to configuration and
// includes functions for loading, defaulting and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/esop-forecast/pkg/constants"
	"github.com/iwvelando/esop-forecast/pkg/mathutil"
	"github.com/iwvelando/esop-forecast/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for esop-forecast.
type Configuration struct {
	Grant     Grant         `yaml:"grant"`
	Selection Selection     `yaml:"selection"`
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json, pdf
	File   string `yaml:"file,omitempty"`   // optional destination, stdout otherwise
}

// Grant holds the constants of the option grant and the tax regime.
type Grant struct {
	BaseOptions      float64 `yaml:"baseOptions" json:"baseOptions"`
	StrikePrice      float64 `yaml:"strikePrice" json:"strikePrice"`
	CurrentFMV       float64 `yaml:"currentFMV" json:"currentFMV"`
	IncomeTaxRate    float64 `yaml:"incomeTaxRate" json:"incomeTaxRate"`
	LTCGRate         float64 `yaml:"ltcgRate" json:"ltcgRate"`
	Unit             float64 `yaml:"unit" json:"unit"`
	BaselineMultiple int     `yaml:"baselineMultiple" json:"baselineMultiple"`
	Multiples        int     `yaml:"multiples" json:"multiples"`
	OptionValueMode  string  `yaml:"optionValueMode" json:"optionValueMode"`
}

// Selection holds the user's inputs: how many options to exercise and
// which valuation to focus on.
type Selection struct {
	Mode     string  `yaml:"mode" json:"mode"` // percentage, absolute
	Percent  float64 `yaml:"percent" json:"percent"`
	Count    float64 `yaml:"count" json:"count"`
	Multiple int     `yaml:"multiple" json:"multiple"`
}

// Default returns the configuration of the reference grant with every
// option exercised and the baseline valuation selected.
func Default() Configuration {
	return Configuration{
		Grant: Grant{
			BaseOptions:      constants.DefaultBaseOptions,
			StrikePrice:      constants.DefaultStrikePrice,
			CurrentFMV:       constants.DefaultCurrentFMV,
			IncomeTaxRate:    constants.DefaultIncomeTaxRate,
			LTCGRate:         constants.DefaultLTCGRate,
			Unit:             constants.LakhUnit,
			BaselineMultiple: constants.DefaultBaselineMultiple,
			Multiples:        constants.DefaultMultiples,
			OptionValueMode:  constants.OptionValueFlat,
		},
		Selection: Selection{
			Mode:     constants.SelectionPercentage,
			Percent:  constants.PercentageMultiplier,
			Count:    constants.DefaultBaseOptions,
			Multiple: constants.DefaultSelectedMultiple,
		},
		Output: OutputConfig{
			Format: constants.OutputFormatPretty,
		},
	}
}

// setDefaults registers every key with viper. Besides filling gaps in the
// file this lets AutomaticEnv resolve ESOP_GRANT_STRIKEPRICE and friends.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("grant.baseOptions", d.Grant.BaseOptions)
	v.SetDefault("grant.strikePrice", d.Grant.StrikePrice)
	v.SetDefault("grant.currentFMV", d.Grant.CurrentFMV)
	v.SetDefault("grant.incomeTaxRate", d.Grant.IncomeTaxRate)
	v.SetDefault("grant.ltcgRate", d.Grant.LTCGRate)
	v.SetDefault("grant.unit", d.Grant.Unit)
	v.SetDefault("grant.baselineMultiple", d.Grant.BaselineMultiple)
	v.SetDefault("grant.multiples", d.Grant.Multiples)
	v.SetDefault("grant.optionValueMode", d.Grant.OptionValueMode)
	v.SetDefault("selection.mode", d.Selection.Mode)
	v.SetDefault("selection.percent", d.Selection.Percent)
	v.SetDefault("selection.count", d.Selection.Count)
	v.SetDefault("selection.multiple", d.Selection.Multiple)
	v.SetDefault("logging.level", "")
	v.SetDefault("logging.format", "")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.file", "")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
// An empty document yields the defaults.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// Validate rejects selections the input widgets could not produce.
func (c *Configuration) Validate() error {
	if err := validation.ValidateOptionValueMode(c.Grant.OptionValueMode); err != nil {
		return err
	}
	if c.Grant.Unit <= 0 {
		return fmt.Errorf("unit must be positive, got %v", c.Grant.Unit)
	}
	if c.Grant.BaselineMultiple <= 0 {
		return fmt.Errorf("baselineMultiple must be positive, got %d", c.Grant.BaselineMultiple)
	}
	if c.Grant.Multiples <= 0 {
		return fmt.Errorf("multiples must be positive, got %d", c.Grant.Multiples)
	}
	if err := validation.ValidateCurrentFMV(c.Grant.CurrentFMV); err != nil {
		return err
	}
	if err := validation.ValidateSelection(c.Selection.Mode, c.Selection.Percent,
		c.Selection.Count, c.Selection.Multiple, c.Grant.Multiples); err != nil {
		return err
	}
	return validation.ValidateScale(c.options(), c.Grant.StrikePrice, c.Grant.CurrentFMV,
		c.Grant.IncomeTaxRate, c.Grant.LTCGRate, c.Grant.Unit, c.Grant.Multiples, c.Grant.BaselineMultiple)
}

// options resolves the selection to a number of options, matching
// forecast.Selection.Options.
func (c *Configuration) options() float64 {
	if c.Selection.Mode == constants.SelectionAbsolute {
		return c.Selection.Count
	}
	return mathutil.ApplyPercentage(c.Grant.BaseOptions, c.Selection.Percent)
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	warnings := validation.GrantWarnings(c.Grant.StrikePrice, c.Grant.CurrentFMV,
		c.Grant.IncomeTaxRate, c.Grant.LTCGRate)
	return append(warnings, validation.SelectionWarnings(c.Selection.Mode,
		c.Selection.Percent, c.Selection.Count, c.Grant.BaseOptions)...)
}
