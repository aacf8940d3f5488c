// Package constants provides shared constants for the esop-forecast application.
package constants

// Grant defaults taken from the reference ESOP grant the dashboard models.
const (
	// DefaultBaseOptions is the number of vested options in the grant
	DefaultBaseOptions = 2131

	// DefaultStrikePrice is the per-share exercise price
	DefaultStrikePrice = 12.0

	// DefaultCurrentFMV is today's per-share fair market value
	DefaultCurrentFMV = 4150.0

	// DefaultIncomeTaxRate is the marginal income tax rate applied to the perquisite
	DefaultIncomeTaxRate = 0.3667

	// DefaultLTCGRate is the long-term capital gains rate
	DefaultLTCGRate = 0.125
)

// Valuation grid constants
const (
	// LakhUnit is the number of rupees in one lakh; all monetary output is in lakhs
	LakhUnit = 100000.0

	// DefaultBaselineMultiple is the valuation multiple at which the IPO FMV equals today's FMV
	DefaultBaselineMultiple = 3

	// DefaultMultiples is the number of valuation scenarios in a table
	DefaultMultiples = 10

	// DefaultSelectedMultiple is the valuation selected before any user input
	DefaultSelectedMultiple = 3
)

// Option value modes
const (
	// OptionValueFlat values the grant at the IPO FMV
	OptionValueFlat = "flat"

	// OptionValueGain values the grant at the IPO FMV less the strike price
	OptionValueGain = "gain"
)

// Selection modes
const (
	// SelectionPercentage exercises a percentage of the base options
	SelectionPercentage = "percentage"

	// SelectionAbsolute exercises an absolute number of options
	SelectionAbsolute = "absolute"
)

// Input widget constraints
const (
	// PercentStep is the granularity of the percentage slider
	PercentStep = 5

	// CountStep is the granularity of the option count input
	CountStep = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatPDF is the PDF report output format
	OutputFormatPDF = "pdf"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// EnvPrefix is the prefix for environment variable overrides
	EnvPrefix = "ESOP"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the dashboard
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
)
