// Package euler implements consumption-policy iteration based on the Euler
// equation, with piecewise-linear interpolation of the future policy and
// bracketed root-finding at each grid point.
package euler

import (
	"fmt"
	"math"

	"github.com/iwvelando/cycle-welfare/internal/model"
	"github.com/iwvelando/cycle-welfare/pkg/constants"
	"github.com/iwvelando/cycle-welfare/pkg/mathutil"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// bisectionWidth is the bracket width at which the root search stops.
const bisectionWidth = 1e-12

// Solver iterates the Euler operator on the consumption policy.
//
// The operator assumes a single uniform return rate: the complementary-
// slackness comparison against consuming all resources is written for
// RSave only and does not extend to the asymmetric borrowing-rate
// economy. NewSolver rejects models where the distinction matters.
type Solver struct {
	logger        *zap.Logger
	model         *model.Model
	tolerance     float64
	maxIterations int
}

// Solution holds the converged (or last) consumption policy.
type Solution struct {
	// Consumption maps (asset index, state index) to the consumption
	// level solving the Euler equation.
	Consumption *mat.Dense

	// AssetPolicy holds next-period assets RSave*(a - c + y(s)).
	AssetPolicy *mat.Dense

	// Iterations is the number of completed sweeps.
	Iterations int

	// Converged reports whether the policy stopped moving within
	// tolerance before the iteration cap; non-convergence is not fatal.
	Converged bool
}

// NewSolver constructs an Euler-iteration solver. Zero tolerance or
// iteration cap fall back to the defaults in pkg/constants.
func NewSolver(logger *zap.Logger, m *model.Model, tolerance float64, maxIterations int) (*Solver, error) {
	if m == nil {
		return nil, fmt.Errorf("model cannot be nil")
	}
	if m.AllowsBorrowing() && m.RBorrow != m.RSave {
		return nil, fmt.Errorf("euler iteration requires a uniform return rate; model borrows at %g but saves at %g", m.RBorrow, m.RSave)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tolerance == 0 {
		tolerance = constants.EulerIterationTolerance
	}
	if maxIterations == 0 {
		maxIterations = constants.EulerIterationMaxIterations
	}
	if tolerance <= 0 {
		return nil, fmt.Errorf("tolerance must be positive, got %g", tolerance)
	}
	if maxIterations <= 0 {
		return nil, fmt.Errorf("iteration cap must be positive, got %d", maxIterations)
	}
	return &Solver{logger: logger, model: m, tolerance: tolerance, maxIterations: maxIterations}, nil
}

// Solve runs the fixed-point iteration on the consumption policy,
// starting from the safe guess of consuming current assets. Each sweep
// reads only the previous policy and writes a fresh array.
func (s *Solver) Solve() (*Solution, error) {
	m := s.model
	na := m.NumAssets()
	ns := m.NumStates()

	current := mat.NewDense(na, ns, nil)
	for i := 0; i < na; i++ {
		for st := 0; st < ns; st++ {
			current.Set(i, st, m.AssetGrid[i])
		}
	}
	next := mat.NewDense(na, ns, nil)

	iterations := 0
	converged := false
	cols := make([][]float64, ns)
	for iterations < s.maxIterations {
		// Snapshot the per-state policy columns once; the interpolant
		// reads them for every bisection step this sweep.
		for s1 := 0; s1 < ns; s1++ {
			cols[s1] = mat.Col(cols[s1], s1, current)
		}
		for i := 0; i < na; i++ {
			for st := 0; st < ns; st++ {
				c, err := s.solvePoint(cols, i, st)
				if err != nil {
					return nil, err
				}
				next.Set(i, st, c)
			}
		}
		iterations++

		errNorm := mathutil.SupNorm(current.RawMatrix().Data, next.RawMatrix().Data)
		current, next = next, current
		if errNorm < s.tolerance {
			converged = true
			break
		}
	}

	if !converged {
		s.logger.Warn(fmt.Sprintf("euler iteration stopped after %d sweeps without reaching tolerance %g", iterations, s.tolerance),
			zap.String("op", "euler.Solve"),
		)
	}

	assets := mat.NewDense(na, ns, nil)
	for i := 0; i < na; i++ {
		for st := 0; st < ns; st++ {
			assets.Set(i, st, m.RSave*(m.AssetGrid[i]-current.At(i, st)+m.IncomeStates[st]))
		}
	}

	return &Solution{
		Consumption: current,
		AssetPolicy: assets,
		Iterations:  iterations,
		Converged:   converged,
	}, nil
}

// solvePoint finds the consumption level zeroing the Euler residual at one
// grid point, holding the future policy fixed. The residual is monotone
// decreasing in c, so a sign change over (floor, a+y] brackets the root.
func (s *Solver) solvePoint(policy [][]float64, i, st int) (float64, error) {
	m := s.model
	a := m.AssetGrid[i]
	resources := a + m.IncomeStates[st]
	lo := constants.EulerConsumptionFloor
	if resources <= lo {
		return 0, fmt.Errorf("euler bracket infeasible at asset index %d (a=%g), state %d: resources %g", i, a, st, resources)
	}

	hi := resources
	fLo := s.residual(policy, i, st, lo)
	fHi := s.residual(policy, i, st, hi)
	if fLo < 0 || fHi > 0 {
		return 0, fmt.Errorf("no sign change in euler residual at asset index %d (a=%g), state %d", i, a, st)
	}

	for hi-lo > bisectionWidth {
		mid := 0.5 * (lo + hi)
		if s.residual(policy, i, st, mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
	}
	return 0.5 * (lo + hi), nil
}

// residual evaluates u'(c) minus the constrained discounted expected
// marginal utility of the interpolated future policy. The max against
// u'(a+y) pins the agent to consuming everything when the unconstrained
// Euler equation would push next-period assets below the borrowing limit.
func (s *Solver) residual(policy [][]float64, i, st int, c float64) float64 {
	m := s.model
	a := m.AssetGrid[i]
	resources := a + m.IncomeStates[st]
	a1 := m.RSave * (resources - c)

	expected := 0.0
	for s1 := 0; s1 < m.NumStates(); s1++ {
		futureC := mathutil.Interp(m.AssetGrid, policy[s1], a1)
		if futureC < constants.EulerConsumptionFloor {
			futureC = constants.EulerConsumptionFloor
		}
		expected += m.P.At(st, s1) * m.MarginalUtility(futureC)
	}

	constrained := math.Max(m.Beta*m.RSave*expected, m.MarginalUtility(resources))
	return m.MarginalUtility(c) - constrained
}
