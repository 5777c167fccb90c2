// Package welfare aggregates solver outputs into expected lifetime
// utilities and computes the consumption-equivalent cost of aggregate
// fluctuations between two economies.
package welfare

import (
	"fmt"
	"math"

	"github.com/iwvelando/cycle-welfare/internal/model"
	"gonum.org/v1/gonum/mat"
)

// ExpectedValue computes the discrete expectation of the value function
// under the stationary measure: the sum of pmf(a,s)*v(a,s) over the grid.
func ExpectedValue(pmf, value *mat.Dense) (float64, error) {
	pr, pc := pmf.Dims()
	vr, vc := value.Dims()
	if pr != vr || pc != vc {
		return 0, fmt.Errorf("pmf is %dx%d but value function is %dx%d", pr, pc, vr, vc)
	}
	total := 0.0
	for i := 0; i < pr; i++ {
		for s := 0; s < pc; s++ {
			total += pmf.At(i, s) * value.At(i, s)
		}
	}
	return total, nil
}

// GridMean computes the expectation of a per-cell quantity (consumption,
// assets broadcast over states, ...) under the stationary measure.
func GridMean(pmf, quantity *mat.Dense) (float64, error) {
	return ExpectedValue(pmf, quantity)
}

// ConsumptionLoss returns the compensation mu making an agent indifferent
// between the no-risk and risk economies: the agent accepts the risk
// economy if consumption there is scaled up by the factor 1+mu.
func ConsumptionLoss(beta, sigma, vNoRisk, vRisk float64) float64 {
	if sigma == 1 {
		return math.Exp((vNoRisk-vRisk)*(1-beta)) - 1
	}
	return math.Pow(vNoRisk/vRisk, 1/(1-sigma)) - 1
}

// ConstantConsumptionValue returns the lifetime utility of consuming c
// forever, the perfect-risk-sharing baseline used with Monte-Carlo
// long-run mean consumption.
func ConstantConsumptionValue(m *model.Model, c float64) float64 {
	return m.Utility(c) / (1 - m.Beta)
}
