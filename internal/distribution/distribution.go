// Package distribution computes the stationary distribution over asset and
// income states induced by a policy and the income transition matrix. Two
// interchangeable methods share the same output contract: direct iteration
// of the probability mass function, and forward Monte-Carlo simulation.
package distribution

import (
	"fmt"

	"github.com/iwvelando/cycle-welfare/internal/model"
	"github.com/iwvelando/cycle-welfare/pkg/constants"
	"github.com/iwvelando/cycle-welfare/pkg/mathutil"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Method selects the stationary-distribution algorithm.
type Method int

const (
	// Direct iterates the Markov operator on the mass function.
	Direct Method = iota

	// MonteCarlo simulates a long path and takes the empirical
	// distribution.
	MonteCarlo
)

// String returns the configuration name of the method.
func (m Method) String() string {
	if m == MonteCarlo {
		return "montecarlo"
	}
	return "direct"
}

// MethodFromString parses a configuration method name.
func MethodFromString(name string) (Method, error) {
	switch name {
	case "direct", "":
		return Direct, nil
	case "montecarlo", "monte-carlo":
		return MonteCarlo, nil
	}
	return 0, fmt.Errorf("unknown distribution method %q (expected direct or montecarlo)", name)
}

// Result holds the converged (or last) probability mass function.
type Result struct {
	// PMF maps (asset index, state index) to probability mass; it is
	// non-negative and sums to one.
	PMF *mat.Dense

	// Iterations is the number of completed sweeps.
	Iterations int

	// Converged reports whether the mass function stopped moving within
	// tolerance before the sweep cap; non-convergence is not fatal.
	Converged bool
}

// Stationary iterates the transition-induced Markov operator on the mass
// function until it stops moving in sup-norm. Each sweep redistributes the
// mass at (a0,s0) onto (policy[a0][s0], s1) weighted by the transition row,
// accumulating into a zeroed buffer which is then swapped in. Total mass
// is conserved every sweep because transition rows sum to one.
func Stationary(logger *zap.Logger, m *model.Model, policy [][]int, tolerance float64, maxIterations int) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tolerance == 0 {
		tolerance = constants.DistributionTolerance
	}
	if maxIterations == 0 {
		maxIterations = constants.DistributionMaxIterations
	}
	na := m.NumAssets()
	ns := m.NumStates()
	if len(policy) != na {
		return nil, fmt.Errorf("policy has %d asset rows, model has %d grid points", len(policy), na)
	}
	for i := range policy {
		for st := range policy[i] {
			if j := policy[i][st]; j < 0 || j >= na {
				return nil, fmt.Errorf("policy index %d at (%d,%d) outside asset grid [0,%d)", j, i, st, na)
			}
		}
	}

	current := mat.NewDense(na, ns, nil)
	uniform := 1.0 / float64(na*ns)
	for i := 0; i < na; i++ {
		for st := 0; st < ns; st++ {
			current.Set(i, st, uniform)
		}
	}
	next := mat.NewDense(na, ns, nil)

	iterations := 0
	converged := false
	for iterations < maxIterations {
		next.Zero()
		for i := 0; i < na; i++ {
			for s0 := 0; s0 < ns; s0++ {
				mass := current.At(i, s0)
				if mass == 0 {
					continue
				}
				j := policy[i][s0]
				for s1 := 0; s1 < ns; s1++ {
					next.Set(j, s1, next.At(j, s1)+m.P.At(s0, s1)*mass)
				}
			}
		}
		iterations++

		errNorm := mathutil.SupNorm(current.RawMatrix().Data, next.RawMatrix().Data)
		current, next = next, current
		if errNorm < tolerance {
			converged = true
			break
		}
	}

	if !converged {
		logger.Warn(fmt.Sprintf("distribution iteration stopped after %d sweeps without reaching tolerance %g", iterations, tolerance),
			zap.String("op", "distribution.Stationary"),
		)
	}

	return &Result{PMF: current, Iterations: iterations, Converged: converged}, nil
}

// IndexPolicyFromAssets projects a continuous asset policy onto the grid
// by nearest-index rounding so the direct iteration can consume output
// from the Euler solver.
func IndexPolicyFromAssets(m *model.Model, assetPolicy *mat.Dense) [][]int {
	na := m.NumAssets()
	ns := m.NumStates()
	policy := make([][]int, na)
	for i := 0; i < na; i++ {
		policy[i] = make([]int, ns)
		for st := 0; st < ns; st++ {
			policy[i][st] = mathutil.NearestIndex(m.AssetGrid, assetPolicy.At(i, st))
		}
	}
	return policy
}
