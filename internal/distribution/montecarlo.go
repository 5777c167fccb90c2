package distribution

import (
	"fmt"
	"math/rand"

	"github.com/iwvelando/cycle-welfare/internal/model"
	"github.com/iwvelando/cycle-welfare/pkg/constants"
	"github.com/iwvelando/cycle-welfare/pkg/mathutil"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Path is a simulated sequence of (asset, consumption, state) triples.
// It is ephemeral: derived from a policy, used for empirical estimates,
// and discarded afterwards.
type Path struct {
	Assets      []float64
	Consumption []float64
	States      []int
}

// Simulate draws an exogenous state path of the given length from the
// model's transition matrix under a fixed seed and forward-simulates
// assets through the interpolated consumption policy. Identical inputs
// and seed produce identical paths.
func Simulate(logger *zap.Logger, m *model.Model, consumption *mat.Dense, length int, seed int64) (*Path, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if length == 0 {
		length = constants.DefaultSampleLength
	}
	if length < 1 {
		return nil, fmt.Errorf("sample length must be positive, got %d", length)
	}
	rows, cols := consumption.Dims()
	if rows != m.NumAssets() || cols != m.NumStates() {
		return nil, fmt.Errorf("consumption policy is %dx%d, model grid is %dx%d", rows, cols, m.NumAssets(), m.NumStates())
	}

	ns := m.NumStates()
	policyCols := make([][]float64, ns)
	for s1 := 0; s1 < ns; s1++ {
		policyCols[s1] = mat.Col(nil, s1, consumption)
	}

	rng := rand.New(rand.NewSource(seed))
	path := &Path{
		Assets:      make([]float64, length),
		Consumption: make([]float64, length),
		States:      make([]int, length),
	}

	amin := m.AssetGrid[0]
	amax := m.AssetGrid[m.NumAssets()-1]
	state := 0
	assets := 0.0
	for t := 0; t < length; t++ {
		c := mathutil.Interp(m.AssetGrid, policyCols[state], assets)
		// The interpolant can step slightly outside the feasible set at
		// the grid edges; keep consumption inside (floor, resources].
		resources := assets + m.IncomeStates[state]
		c = mathutil.Clamp(c, constants.EulerConsumptionFloor, resources)

		path.Assets[t] = assets
		path.Consumption[t] = c
		path.States[t] = state

		next := m.RSave * (assets - c + m.IncomeStates[state])
		assets = mathutil.Clamp(next, amin, amax)
		state = nextState(rng, m.P, state)
	}

	return path, nil
}

// nextState draws the successor state by inverting the cumulative
// transition probabilities of the current row.
func nextState(rng *rand.Rand, p *mat.Dense, state int) int {
	_, ns := p.Dims()
	u := rng.Float64()
	cum := 0.0
	for s1 := 0; s1 < ns; s1++ {
		cum += p.At(state, s1)
		if u < cum {
			return s1
		}
	}
	return ns - 1
}

// Empirical bins the realized assets by nearest grid index, conditioned on
// the realized state, and returns the normalized joint mass function.
func (p *Path) Empirical(m *model.Model) *mat.Dense {
	pmf := mat.NewDense(m.NumAssets(), m.NumStates(), nil)
	weight := 1.0 / float64(len(p.Assets))
	for t := range p.Assets {
		i := mathutil.NearestIndex(m.AssetGrid, p.Assets[t])
		s := p.States[t]
		pmf.Set(i, s, pmf.At(i, s)+weight)
	}
	return pmf
}

// MeanConsumption returns the long-run average consumption along the path,
// the quantity the permanent-income welfare baseline needs.
func (p *Path) MeanConsumption() float64 {
	return stat.Mean(p.Consumption, nil)
}

// MeanAssets returns the long-run average asset holding along the path.
func (p *Path) MeanAssets() float64 {
	return stat.Mean(p.Assets, nil)
}
