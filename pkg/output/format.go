// Package output provides utilities for formatting and displaying
// experiment results.
package output

import (
	"fmt"

	"github.com/iwvelando/cycle-welfare/internal/experiment"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(result *experiment.Result) {
	p := message.NewPrinter(language.English)
	for _, eco := range result.Economies {
		fmt.Printf("--- Results for economy %s (%d states) ---\n", eco.Name, eco.States)
		_, _ = p.Printf("Solver          | %s (%d iterations, converged=%t)\n", eco.SolverMethod, eco.Iterations, eco.Converged)
		_, _ = p.Printf("Distribution    | %s (%d sweeps, converged=%t)\n", eco.DistributionMethod, eco.DistributionIterations, eco.DistributionConverged)
		_, _ = p.Printf("Mean assets     | %.4f\n", eco.MeanAssets)
		_, _ = p.Printf("Mean consumption| %.4f\n", eco.MeanConsumption)
		if eco.HasValue {
			_, _ = p.Printf("Expected value  | %.6f\n", eco.ExpectedValue)
		}
		fmt.Printf("\n")
	}
	if result.HasWelfareLoss {
		_, _ = p.Printf("Consumption-equivalent cost of business cycles: %.4f%%\n", 100*result.WelfareLoss)
	}
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(result *experiment.Result) {
	fmt.Printf(`"economy","states","solver","iterations","converged","distribution","sweeps","distConverged","meanAssets","meanConsumption","expectedValue"`)
	fmt.Printf("\n")
	for _, eco := range result.Economies {
		value := ""
		if eco.HasValue {
			value = fmt.Sprintf("%.8f", eco.ExpectedValue)
		}
		fmt.Printf(`"%s","%d","%s","%d","%t","%s","%d","%t","%.6f","%.6f","%s"`,
			eco.Name, eco.States, eco.SolverMethod, eco.Iterations, eco.Converged,
			eco.DistributionMethod, eco.DistributionIterations, eco.DistributionConverged,
			eco.MeanAssets, eco.MeanConsumption, value)
		fmt.Printf("\n")
	}
	if result.HasWelfareLoss {
		fmt.Printf(`"welfareLoss","%.8f"`, result.WelfareLoss)
		fmt.Printf("\n")
	}
}
