// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/cycle-welfare/pkg/constants"
)

// ValidateOutputFormat checks if the output format is supported
func ValidateOutputFormat(format string) error {
	switch format {
	case constants.OutputFormatPretty, constants.OutputFormatCSV:
		return nil
	default:
		return fmt.Errorf("invalid output format: %s (valid formats: %s, %s)",
			format, constants.OutputFormatPretty, constants.OutputFormatCSV)
	}
}

// ValidateSolverMethod checks if the solver method is supported
func ValidateSolverMethod(method string) error {
	switch method {
	case "", "valueIteration", "eulerIteration":
		return nil
	default:
		return fmt.Errorf("invalid solver method: %s (valid methods: valueIteration, eulerIteration)", method)
	}
}

// ValidateDistributionMethod checks if the stationary-distribution method
// is supported
func ValidateDistributionMethod(method string) error {
	switch method {
	case "", "direct", "montecarlo", "monte-carlo":
		return nil
	default:
		return fmt.Errorf("invalid distribution method: %s (valid methods: direct, montecarlo)", method)
	}
}
