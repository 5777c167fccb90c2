// Package model defines the immutable description of a consumption-savings
// economy: preferences, returns, the business-cycle income chain, and the
// discretized asset grid.
package model

import (
	"fmt"
	"math"

	"github.com/iwvelando/cycle-welfare/pkg/constants"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Chain selects the exogenous income process. Each variant carries its own
// state count, transition matrix, and income pattern.
type Chain int

const (
	// TwoStateChain is the no-aggregate-risk employment process
	// (employed, unemployed).
	TwoStateChain Chain = iota

	// FourStateChain adds the business cycle: (good-employed,
	// good-unemployed, bad-employed, bad-unemployed).
	FourStateChain
)

// String returns the configuration name of the chain variant.
func (c Chain) String() string {
	switch c {
	case TwoStateChain:
		return "twoState"
	case FourStateChain:
		return "fourState"
	}
	return fmt.Sprintf("Chain(%d)", int(c))
}

// ChainFromString parses a configuration chain name.
func ChainFromString(name string) (Chain, error) {
	switch name {
	case "twoState", "":
		return TwoStateChain, nil
	case "fourState":
		return FourStateChain, nil
	}
	return 0, fmt.Errorf("unknown income chain %q (expected twoState or fourState)", name)
}

// States returns the number of exogenous states for the chain variant.
func (c Chain) States() int {
	if c == FourStateChain {
		return 4
	}
	return 2
}

// Transition returns a fresh copy of the chain's transition matrix. Rows
// index the current state, columns the next state.
func (c Chain) Transition() *mat.Dense {
	if c == FourStateChain {
		return mat.NewDense(4, 4, []float64{
			0.9141, 0.0234, 0.0587, 0.0038,
			0.5625, 0.3750, 0.0269, 0.0356,
			0.0608, 0.0016, 0.8813, 0.0563,
			0.0375, 0.0250, 0.4031, 0.5344,
		})
	}
	return mat.NewDense(2, 2, []float64{
		0.9565, 0.0435,
		0.5000, 0.5000,
	})
}

// incomes returns the per-state income vector: employed states earn the
// full income, unemployed states the replacement fraction of it.
func (c Chain) incomes(income, replacement float64) []float64 {
	if c == FourStateChain {
		return []float64{income, replacement * income, income, replacement * income}
	}
	return []float64{income, replacement * income}
}

// Params holds the construction options for a Model. Zero values fall back
// to the calibrated defaults in pkg/constants.
type Params struct {
	PeriodWeeks      int
	DiscountFactor   float64
	RiskAversion     float64
	Income           float64
	ReplacementRatio float64
	SavingReturn     float64
	BorrowingReturn  float64
	Chain            Chain
	AssetMin         float64
	AssetMax         float64
	AssetPoints      int
}

// Model is the immutable economy description shared by all solvers. It is
// never mutated after New returns it.
type Model struct {
	PeriodWeeks      int
	Beta             float64
	Sigma            float64
	Income           float64
	ReplacementRatio float64
	RSave            float64
	RBorrow          float64
	Chain            Chain

	// P is the Chain.States() x Chain.States() transition matrix; every
	// row sums to one.
	P *mat.Dense

	// AssetGrid is the ascending linear grid from AssetMin to AssetMax.
	AssetGrid []float64

	// IncomeStates holds the income level earned in each exogenous state.
	IncomeStates []float64
}

// New validates the parameters and constructs a Model. Malformed
// configuration fails here rather than inside a solver.
func New(p Params) (*Model, error) {
	if p.PeriodWeeks == 0 {
		p.PeriodWeeks = constants.DefaultPeriodWeeks
	}
	if p.DiscountFactor == 0 {
		p.DiscountFactor = constants.DefaultDiscountFactor
	}
	if p.RiskAversion == 0 {
		p.RiskAversion = constants.DefaultRiskAversion
	}
	if p.Income == 0 {
		p.Income = constants.DefaultIncome
	}
	if p.SavingReturn == 0 {
		p.SavingReturn = constants.DefaultSavingReturn
	}
	if p.BorrowingReturn == 0 {
		p.BorrowingReturn = constants.DefaultBorrowingReturn
	}

	if p.PeriodWeeks < 0 {
		return nil, fmt.Errorf("period length must be positive, got %d weeks", p.PeriodWeeks)
	}
	if p.DiscountFactor <= 0 || p.DiscountFactor >= 1 {
		return nil, fmt.Errorf("discount factor must lie in (0,1), got %g", p.DiscountFactor)
	}
	if p.RiskAversion <= 0 {
		return nil, fmt.Errorf("risk aversion must be positive, got %g", p.RiskAversion)
	}
	if p.Income <= 0 {
		return nil, fmt.Errorf("income must be positive, got %g", p.Income)
	}
	if p.ReplacementRatio < 0 || p.ReplacementRatio >= 1 {
		return nil, fmt.Errorf("replacement ratio must lie in [0,1), got %g", p.ReplacementRatio)
	}
	if p.SavingReturn <= 0 || p.BorrowingReturn <= 0 {
		return nil, fmt.Errorf("gross returns must be positive, got save %g borrow %g", p.SavingReturn, p.BorrowingReturn)
	}
	if p.AssetPoints < 2 {
		return nil, fmt.Errorf("asset grid needs at least 2 points, got %d", p.AssetPoints)
	}
	if p.AssetMin > 0 {
		return nil, fmt.Errorf("asset grid lower bound must be <= 0, got %g", p.AssetMin)
	}
	if p.AssetMax < 0 {
		return nil, fmt.Errorf("asset grid upper bound must be >= 0, got %g", p.AssetMax)
	}
	if p.AssetMin >= p.AssetMax {
		return nil, fmt.Errorf("asset grid bounds inverted: [%g, %g]", p.AssetMin, p.AssetMax)
	}

	transition := p.Chain.Transition()
	if err := ValidateTransition(transition); err != nil {
		return nil, err
	}

	grid := make([]float64, p.AssetPoints)
	floats.Span(grid, p.AssetMin, p.AssetMax)

	return &Model{
		PeriodWeeks:      p.PeriodWeeks,
		Beta:             p.DiscountFactor,
		Sigma:            p.RiskAversion,
		Income:           p.Income,
		ReplacementRatio: p.ReplacementRatio,
		RSave:            p.SavingReturn,
		RBorrow:          p.BorrowingReturn,
		Chain:            p.Chain,
		P:                transition,
		AssetGrid:        grid,
		IncomeStates:     p.Chain.incomes(p.Income, p.ReplacementRatio),
	}, nil
}

// ValidateTransition checks that every row of a transition matrix is a
// probability distribution.
func ValidateTransition(p *mat.Dense) error {
	rows, cols := p.Dims()
	if rows != cols {
		return fmt.Errorf("transition matrix must be square, got %dx%d", rows, cols)
	}
	for s := 0; s < rows; s++ {
		sum := 0.0
		for s1 := 0; s1 < cols; s1++ {
			v := p.At(s, s1)
			if v < 0 {
				return fmt.Errorf("transition probability P[%d,%d] = %g is negative", s, s1, v)
			}
			sum += v
		}
		if math.Abs(sum-1.0) > constants.TransitionRowTolerance {
			return fmt.Errorf("transition matrix row %d sums to %.12f, expected 1", s, sum)
		}
	}
	return nil
}

// NumAssets returns the asset-grid resolution.
func (m *Model) NumAssets() int {
	return len(m.AssetGrid)
}

// NumStates returns the number of exogenous income states.
func (m *Model) NumStates() int {
	return len(m.IncomeStates)
}

// AllowsBorrowing reports whether the asset grid extends below zero.
func (m *Model) AllowsBorrowing() bool {
	return m.AssetGrid[0] < 0
}
