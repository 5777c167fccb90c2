// Package mathutil provides common numerical utility functions shared by
// the solvers.
package mathutil

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// SupNorm returns the largest absolute elementwise difference between two
// equally-sized slices.
func SupNorm(a, b []float64) float64 {
	return floats.Distance(a, b, math.Inf(1))
}

// ArgMax returns the index of the largest element of vals; ties resolve to
// the lowest index. Returns -1 for an empty slice.
func ArgMax(vals []float64) int {
	if len(vals) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(vals); i++ {
		if vals[i] > vals[best] {
			best = i
		}
	}
	return best
}

// Clamp restricts val to the interval [lo, hi].
func Clamp(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// NearestIndex returns the index of the grid point closest to x. The grid
// must be sorted ascending.
func NearestIndex(grid []float64, x float64) int {
	idx := searchSegment(grid, x)
	if idx == len(grid)-1 {
		return idx
	}
	if x-grid[idx] <= grid[idx+1]-x {
		return idx
	}
	return idx + 1
}

// Interp evaluates the piecewise-linear interpolant through (grid, vals)
// at x. Outside the grid the boundary segment is extended linearly, which
// the Euler operator relies on since next-period assets generally leave
// the grid during iteration.
func Interp(grid, vals []float64, x float64) float64 {
	if len(grid) == 1 {
		return vals[0]
	}
	i := searchSegment(grid, x)
	if i == len(grid)-1 {
		i--
	}
	slope := (vals[i+1] - vals[i]) / (grid[i+1] - grid[i])
	return vals[i] + slope*(x-grid[i])
}

// searchSegment returns the index i such that grid[i] <= x < grid[i+1],
// clamped to [0, len(grid)-1].
func searchSegment(grid []float64, x float64) int {
	if x <= grid[0] {
		return 0
	}
	n := len(grid)
	if x >= grid[n-1] {
		return n - 1
	}
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if grid[mid] <= x {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}
