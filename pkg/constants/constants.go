// Package constants provides shared constants for the mortgage-calculator application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Loan term policy
const (
	// DefaultLoanTermYears is returned by the term solver when no term can be derived
	DefaultLoanTermYears = 30

	// MinLoanTermYears is the shortest term offered
	MinLoanTermYears = 5

	// MaxLoanTermYears is the longest term offered
	MaxLoanTermYears = 35
)

// Input ranges accepted at the API and CLI boundary.
const (
	MinDownPaymentPercent = 10.0
	MaxDownPaymentPercent = 90.0

	MinInterestRatePercent = 0.0
	MaxInterestRatePercent = 15.0

	MinAccelerationMonths = 1
	MaxAccelerationMonths = 60

	MinPaymentMultiplier = 1.1
	MaxPaymentMultiplier = 3.0

	MaxAnnualReturnPercent    = 50.0
	MaxAnnualInflationPercent = 30.0

	MinStartingAge            = 16
	MaxStartingAge            = 70
	MaxEndCapitalFormationAge = 100

	// ProjectionYearsAfterFormation is how long the projection runs past the formation period
	ProjectionYearsAfterFormation = 20
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatYAML is the YAML output format
	OutputFormatYAML = "yaml"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":3000"

	// DefaultMaxBodySizeBytes is the default maximum accepted JSON body (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
)

// Rate defaults
const (
	// DefaultBaseRateName is the reference rate offers are quoted against
	DefaultBaseRateName = "WIBOR 3M"

	// DefaultBaseRatePercent is the fallback base rate used when no source is available
	DefaultBaseRatePercent = 5.88

	// BaseCurrency is the currency every exchange rate is expressed in
	BaseCurrency = "PLN"
)
