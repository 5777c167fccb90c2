// Package bellman implements synchronous value-function iteration over the
// discretized asset and income-state grid.
package bellman

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/iwvelando/cycle-welfare/internal/model"
	"github.com/iwvelando/cycle-welfare/pkg/constants"
	"github.com/iwvelando/cycle-welfare/pkg/mathutil"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Solver iterates the Bellman operator for a fixed model until the value
// function stops moving in sup-norm.
type Solver struct {
	logger        *zap.Logger
	model         *model.Model
	tolerance     float64
	maxIterations int
}

// Solution holds the converged (or last) iterate of value iteration.
type Solution struct {
	// Value maps (asset index, state index) to lifetime utility.
	Value *mat.Dense

	// Policy holds the greedy next-asset grid index per (asset, state).
	Policy [][]int

	// Consumption is the consumption implied by Policy through the
	// budget identity.
	Consumption *mat.Dense

	// Iterations is the number of completed sweeps.
	Iterations int

	// Converged reports whether the sup-norm error fell below tolerance
	// before the iteration cap. A false value is not fatal; the caller
	// decides whether to trust the last iterate.
	Converged bool
}

// NewSolver constructs a value-iteration solver. Zero tolerance or
// iteration cap fall back to the defaults in pkg/constants.
func NewSolver(logger *zap.Logger, m *model.Model, tolerance float64, maxIterations int) (*Solver, error) {
	if m == nil {
		return nil, fmt.Errorf("model cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if tolerance == 0 {
		tolerance = constants.ValueIterationTolerance
	}
	if maxIterations == 0 {
		maxIterations = constants.ValueIterationMaxIterations
	}
	if tolerance <= 0 {
		return nil, fmt.Errorf("tolerance must be positive, got %g", tolerance)
	}
	if maxIterations <= 0 {
		return nil, fmt.Errorf("iteration cap must be positive, got %d", maxIterations)
	}
	return &Solver{logger: logger, model: m, tolerance: tolerance, maxIterations: maxIterations}, nil
}

// Solve runs the fixed-point iteration. Two value arrays are kept and
// swapped each sweep so that a sweep only ever reads the fully-populated
// previous iterate; rows are updated by a worker pool since cells within
// one sweep are independent.
func (s *Solver) Solve() (*Solution, error) {
	m := s.model
	na := m.NumAssets()
	ns := m.NumStates()
	util := m.UtilityTable()

	current := mat.NewDense(na, ns, nil)
	next := mat.NewDense(na, ns, nil)
	policy := make([][]int, na)
	for i := range policy {
		policy[i] = make([]int, ns)
	}

	workers := runtime.NumCPU()
	if workers > na {
		workers = na
	}

	iterations := 0
	converged := false
	for iterations < s.maxIterations {
		s.sweep(current, next, policy, util, workers)
		iterations++

		errNorm := mathutil.SupNorm(current.RawMatrix().Data, next.RawMatrix().Data)
		current, next = next, current
		if errNorm < s.tolerance {
			converged = true
			break
		}
		if iterations%500 == 0 {
			s.logger.Debug(fmt.Sprintf("value iteration sweep %d, sup-norm error %.3e", iterations, errNorm),
				zap.String("op", "bellman.Solve"),
			)
		}
	}

	if !converged {
		s.logger.Warn(fmt.Sprintf("value iteration stopped after %d sweeps without reaching tolerance %g", iterations, s.tolerance),
			zap.String("op", "bellman.Solve"),
		)
	}

	consumption := mat.NewDense(na, ns, nil)
	for i := 0; i < na; i++ {
		for st := 0; st < ns; st++ {
			consumption.Set(i, st, m.Consumption(m.AssetGrid[i], st, m.AssetGrid[policy[i][st]]))
		}
	}

	return &Solution{
		Value:       current,
		Policy:      policy,
		Consumption: consumption,
		Iterations:  iterations,
		Converged:   converged,
	}, nil
}

// sweep applies the Bellman operator once, reading only current and
// writing only next and policy. No cell depends on another cell of the
// same sweep, so rows are distributed over workers.
func (s *Solver) sweep(current, next *mat.Dense, policy [][]int, util [][][]float64, workers int) {
	m := s.model
	na := m.NumAssets()
	ns := m.NumStates()

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				for s0 := 0; s0 < ns; s0++ {
					best := constants.InfeasibleUtility
					bestIdx := 0
					// The grid ascends and the budget identity makes
					// the feasible choice set contiguous from index 0,
					// so stop at the first infeasible choice.
					for j := 0; j < na; j++ {
						u := util[i][s0][j]
						if u <= constants.InfeasibleUtility {
							break
						}
						expected := 0.0
						for s1 := 0; s1 < ns; s1++ {
							expected += m.P.At(s0, s1) * current.At(j, s1)
						}
						if candidate := u + m.Beta*expected; candidate > best {
							best = candidate
							bestIdx = j
						}
					}
					next.Set(i, s0, best)
					policy[i][s0] = bestIdx
				}
			}
		}()
	}
	for i := 0; i < na; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}
