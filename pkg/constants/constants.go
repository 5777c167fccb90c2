// Package constants provides shared constants for the cycle-welfare application.
package constants

// Solver defaults
const (
	// ValueIterationTolerance is the default sup-norm tolerance for value iteration
	ValueIterationTolerance = 1e-5

	// ValueIterationMaxIterations is the default iteration cap for value iteration
	ValueIterationMaxIterations = 5000

	// EulerIterationTolerance is the default sup-norm tolerance for policy iteration
	EulerIterationTolerance = 1e-4

	// EulerIterationMaxIterations is the default iteration cap for policy iteration
	EulerIterationMaxIterations = 1000

	// EulerConsumptionFloor is the lower bracket bound for Euler root-finding
	EulerConsumptionFloor = 1e-8

	// DistributionTolerance is the default sup-norm tolerance for the direct
	// stationary-distribution iteration
	DistributionTolerance = 1e-7

	// DistributionMaxIterations is the default sweep cap for the direct
	// stationary-distribution iteration
	DistributionMaxIterations = 2000

	// DefaultSampleLength is the default Monte-Carlo path length
	DefaultSampleLength = 100000

	// DefaultSeed is the default Monte-Carlo RNG seed
	DefaultSeed = 1
)

// Model defaults
const (
	// DefaultPeriodWeeks is the length of one model period in weeks
	DefaultPeriodWeeks = 6

	// DefaultDiscountFactor is the per-period discount factor
	DefaultDiscountFactor = 0.995

	// DefaultRiskAversion is the CRRA coefficient
	DefaultRiskAversion = 1.5

	// DefaultIncome is the employed income level
	DefaultIncome = 1.0

	// DefaultReplacementRatio is the unemployment replacement ratio
	DefaultReplacementRatio = 0.25

	// DefaultSavingReturn is the gross per-period return on non-negative assets
	DefaultSavingReturn = 1.0

	// DefaultBorrowingReturn is the gross per-period return charged on debt
	DefaultBorrowingReturn = 1.01

	// InfeasibleUtility is the sentinel assigned to non-positive consumption
	// so the maximization excludes the choice without special-casing
	InfeasibleUtility = -1e20

	// TransitionRowTolerance is the allowed deviation of a transition-matrix
	// row sum from one
	TransitionRowTolerance = 1e-10
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"
)
