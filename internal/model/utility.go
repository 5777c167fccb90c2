package model

import (
	"math"

	"github.com/iwvelando/cycle-welfare/pkg/constants"
)

// Rate returns the gross return applied to a next-period asset position.
// The rate depends on the sign of the position, not on the income state.
func (m *Model) Rate(a1 float64) float64 {
	if a1 >= 0 {
		return m.RSave
	}
	return m.RBorrow
}

// Consumption evaluates the budget identity c = a0 + y(s) - a1/R(a1) for
// current assets a0, income state s, and chosen next-period assets a1.
func (m *Model) Consumption(a0 float64, s int, a1 float64) float64 {
	return a0 + m.IncomeStates[s] - a1/m.Rate(a1)
}

// Utility returns CRRA felicity: ln(c) when sigma is 1, c^(1-sigma)/(1-sigma)
// otherwise. Non-positive consumption maps to the infeasible sentinel so the
// maximization drops the choice without branching in the optimizer.
func (m *Model) Utility(c float64) float64 {
	if c <= 0 {
		return constants.InfeasibleUtility
	}
	if m.Sigma == 1 {
		return math.Log(c)
	}
	return math.Pow(c, 1-m.Sigma) / (1 - m.Sigma)
}

// MarginalUtility returns u'(c) = c^(-sigma).
func (m *Model) MarginalUtility(c float64) float64 {
	return math.Pow(c, -m.Sigma)
}

// InverseMarginalUtility returns the consumption level with marginal
// utility mu.
func (m *Model) InverseMarginalUtility(mu float64) float64 {
	return math.Pow(mu, -1/m.Sigma)
}

// UtilityTable precomputes felicity over every (current asset, state,
// next asset) triple. Entries for infeasible choices hold the sentinel.
func (m *Model) UtilityTable() [][][]float64 {
	na := m.NumAssets()
	ns := m.NumStates()
	table := make([][][]float64, na)
	for i := 0; i < na; i++ {
		table[i] = make([][]float64, ns)
		for s := 0; s < ns; s++ {
			row := make([]float64, na)
			for j := 0; j < na; j++ {
				row[j] = m.Utility(m.Consumption(m.AssetGrid[i], s, m.AssetGrid[j]))
			}
			table[i][s] = row
		}
	}
	return table
}
