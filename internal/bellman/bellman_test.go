package bellman

import (
	"testing"

	"github.com/iwvelando/cycle-welfare/internal/model"
	"github.com/iwvelando/cycle-welfare/pkg/mathutil"
	"github.com/iwvelando/cycle-welfare/pkg/testutil"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

func TestNewSolverValidation(t *testing.T) {
	m := testutil.TwoStateModel(t, 11)

	tests := []struct {
		name          string
		model         *model.Model
		tolerance     float64
		maxIterations int
		wantErr       bool
	}{
		{name: "Defaults", model: m},
		{name: "Nil model", model: nil, wantErr: true},
		{name: "Negative tolerance", model: m, tolerance: -1, wantErr: true},
		{name: "Negative iteration cap", model: m, maxIterations: -5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSolver(zap.NewNop(), tt.model, tt.tolerance, tt.maxIterations)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewSolver() error = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestSolveConvergesOnCoarseGrid(t *testing.T) {
	m := testutil.TwoStateModel(t, 51)
	solver, err := NewSolver(zap.NewNop(), m, 0, 0)
	if err != nil {
		t.Fatalf("NewSolver() error = %v", err)
	}
	sol, err := solver.Solve()
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if !sol.Converged {
		t.Fatalf("Solve() did not converge in %d iterations", sol.Iterations)
	}

	// The value function inherits monotonicity in assets from the budget set.
	for s := 0; s < m.NumStates(); s++ {
		for i := 1; i < m.NumAssets(); i++ {
			if sol.Value.At(i, s) < sol.Value.At(i-1, s) {
				t.Errorf("value decreasing in assets at (%d,%d)", i, s)
			}
		}
	}

	// The greedy asset policy is non-decreasing in current assets.
	for s := 0; s < m.NumStates(); s++ {
		for i := 1; i < m.NumAssets(); i++ {
			if sol.Policy[i][s] < sol.Policy[i-1][s] {
				t.Errorf("asset policy decreasing in assets at (%d,%d)", i, s)
			}
		}
	}
}

func TestSolveContractionNearFixedPoint(t *testing.T) {
	m := testutil.TwoStateModel(t, 41)
	solver, err := NewSolver(zap.NewNop(), m, 0, 0)
	if err != nil {
		t.Fatalf("NewSolver() error = %v", err)
	}
	reference, err := solver.Solve()
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if !reference.Converged {
		t.Fatalf("reference solve did not converge")
	}

	// Truncated runs must approach the fixed point monotonically in
	// sup-norm as the iteration budget grows.
	previous := -1.0
	for _, budget := range []int{50, 100, 200, 400} {
		truncated, err := NewSolver(zap.NewNop(), m, 0, budget)
		if err != nil {
			t.Fatalf("NewSolver() error = %v", err)
		}
		sol, err := truncated.Solve()
		if err != nil {
			t.Fatalf("Solve() error = %v", err)
		}
		dist := mathutil.SupNorm(sol.Value.RawMatrix().Data, reference.Value.RawMatrix().Data)
		if previous >= 0 && dist > previous {
			t.Errorf("sup-norm distance grew from %.3e to %.3e at cap %d", previous, dist, budget)
		}
		previous = dist
	}
}

func TestSolveReportsNonConvergence(t *testing.T) {
	m := testutil.TwoStateModel(t, 51)
	solver, err := NewSolver(zap.NewNop(), m, 0, 3)
	if err != nil {
		t.Fatalf("NewSolver() error = %v", err)
	}
	sol, err := solver.Solve()
	if err != nil {
		t.Fatalf("Solve() error = %v, non-convergence must not be fatal", err)
	}
	if sol.Converged {
		t.Errorf("Solve() reported convergence after 3 sweeps")
	}
	if sol.Iterations != 3 {
		t.Errorf("Solve() iterations = %d, expected 3", sol.Iterations)
	}
	if sol.Value == nil || sol.Policy == nil {
		t.Errorf("Solve() must still return the last iterate")
	}
}

func TestSolveIsDeterministic(t *testing.T) {
	m := testutil.FourStateModel(t, 41)
	first := solve(t, m)
	second := solve(t, m)
	if !mat.Equal(first.Value, second.Value) {
		t.Errorf("repeated solves produced different value functions")
	}
	for i := range first.Policy {
		for s := range first.Policy[i] {
			if first.Policy[i][s] != second.Policy[i][s] {
				t.Fatalf("repeated solves produced different policies at (%d,%d)", i, s)
			}
		}
	}
}

func TestSolveBorrowingEconomyUsesDebt(t *testing.T) {
	m := testutil.BorrowingModel(t, 161)
	sol := solve(t, m)
	if !sol.Converged {
		t.Fatalf("borrowing economy did not converge in %d iterations", sol.Iterations)
	}

	borrows := false
	for i := range sol.Policy {
		for s := range sol.Policy[i] {
			if m.AssetGrid[sol.Policy[i][s]] < 0 {
				borrows = true
			}
		}
	}
	if !borrows {
		t.Errorf("expected some negative next-asset choices in the borrowing economy")
	}
}

func TestSolveFullResolutionScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full-resolution value iteration in short mode")
	}

	m := testutil.TwoStateModel(t, 301)
	solver, err := NewSolver(zap.NewNop(), m, 1e-5, 5000)
	if err != nil {
		t.Fatalf("NewSolver() error = %v", err)
	}
	sol, err := solver.Solve()
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	if !sol.Converged {
		t.Fatalf("scenario did not converge within 5000 iterations")
	}
	for i := 1; i < m.NumAssets()-1; i++ {
		for s := 0; s < m.NumStates(); s++ {
			if sol.Consumption.At(i, s) <= 0 {
				t.Fatalf("consumption %.6f at interior grid point (%d,%d) not strictly positive", sol.Consumption.At(i, s), i, s)
			}
		}
	}
}

func TestSolveFullResolutionBorrowingScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full-resolution borrowing economy in short mode")
	}

	m := testutil.BorrowingModel(t, 601)
	sol := solve(t, m)
	if !sol.Converged {
		t.Fatalf("borrowing scenario did not converge in %d iterations", sol.Iterations)
	}

	borrows := false
	for i := range sol.Policy {
		for s := range sol.Policy[i] {
			if m.AssetGrid[sol.Policy[i][s]] < 0 {
				borrows = true
			}
		}
	}
	if !borrows {
		t.Errorf("expected some negative next-asset choices in the borrowing economy")
	}
}

func solve(t *testing.T, m *model.Model) *Solution {
	t.Helper()
	solver, err := NewSolver(zap.NewNop(), m, 0, 0)
	if err != nil {
		t.Fatalf("NewSolver() error = %v", err)
	}
	sol, err := solver.Solve()
	if err != nil {
		t.Fatalf("Solve() error = %v", err)
	}
	return sol
}
