package radavg

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/oceanlab/wod-prof-db/internal/wod"
)

// Standard grid defaults: 0 to 6000 dbar inclusive, 5 dbar steps.
const (
	DefaultGridMax  = 6000.0
	DefaultGridStep = 5.0
)

// ValidateGrid checks that max and step describe a standard grid:
// both positive, with max an exact multiple of step. Callers taking
// grid parameters from user input validate here before building.
func ValidateGrid(max, step float64) error {
	if step <= 0 || max <= 0 {
		return fmt.Errorf("grid step and max must be positive, got max=%v step=%v", max, step)
	}
	if n := math.Round(max / step); math.Abs(n*step-max) > 1e-9 {
		return fmt.Errorf("grid max %v is not a multiple of step %v", max, step)
	}
	return nil
}

// StandardGrid returns the shared vertical pressure axis, 0 to max
// inclusive with the given step. It panics on parameters that fail
// ValidateGrid.
func StandardGrid(max, step float64) []float64 {
	if err := ValidateGrid(max, step); err != nil {
		panic("radavg: " + err.Error())
	}
	n := int(math.Round(max/step)) + 1
	return floats.Span(make([]float64, n), 0, max)
}

// DefaultGrid returns the 1201-level default standard grid.
func DefaultGrid() []float64 {
	return StandardGrid(DefaultGridMax, DefaultGridStep)
}

// nanRow returns a fresh all-NaN row of length n.
func nanRow(n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = math.NaN()
	}
	return row
}

// RegridProfile resamples one variable from its native pressure axis
// onto grid using shape-preserving (monotone cubic) interpolation.
//
//   - Fewer than 2 jointly valid (pressure, value) samples: the
//     interpolation is ill-posed and the whole row is NaN.
//   - An unsorted pressure axis is silently corrected by a stable
//     sort of the (pressure, value) pairs.
//   - Grid levels outside the observed pressure hull are NaN; there
//     is never extrapolation.
//
// values and pressure must have the same length; a mismatch is a
// configuration error surfaced before any interpolation.
func RegridProfile(values, pressure, grid []float64) ([]float64, error) {
	if len(values) != len(pressure) {
		return nil, fmt.Errorf("regrid: variable has %d levels but pressure axis has %d", len(values), len(pressure))
	}

	// Gather jointly valid pairs.
	ps := make([]float64, 0, len(values))
	vs := make([]float64, 0, len(values))
	for i := range values {
		if wod.Valid(values[i]) && wod.Valid(pressure[i]) {
			ps = append(ps, pressure[i])
			vs = append(vs, values[i])
		}
	}
	if len(vs) < 2 {
		return nanRow(len(grid)), nil
	}

	if !sort.Float64sAreSorted(ps) {
		order := make([]int, len(ps))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool { return ps[order[a]] < ps[order[b]] })
		sp := make([]float64, len(ps))
		sv := make([]float64, len(vs))
		for j, i := range order {
			sp[j], sv[j] = ps[i], vs[i]
		}
		ps, vs = sp, sv
	}

	// The fit needs strictly increasing abscissae: collapse duplicate
	// pressures, keeping the first observation at each level.
	w := 1
	for i := 1; i < len(ps); i++ {
		if ps[i] > ps[w-1] {
			ps[w], vs[w] = ps[i], vs[i]
			w++
		}
	}
	ps, vs = ps[:w], vs[:w]
	if len(vs) < 2 {
		return nanRow(len(grid)), nil
	}

	var fb interp.FritschButland
	if err := fb.Fit(ps, vs); err != nil {
		return nil, fmt.Errorf("regrid: fit interpolant: %w", err)
	}

	lo, hi := ps[0], ps[len(ps)-1]
	out := make([]float64, len(grid))
	for i, z := range grid {
		if z < lo || z > hi {
			out[i] = math.NaN()
			continue
		}
		out[i] = fb.Predict(z)
	}
	return out, nil
}

// RegridStack applies RegridProfile independently to each profile,
// preserving order: one output row per input profile.
func RegridStack(values, pressures [][]float64, grid []float64) ([][]float64, error) {
	if len(values) != len(pressures) {
		return nil, fmt.Errorf("regrid: %d variable rows but %d pressure rows", len(values), len(pressures))
	}
	out := make([][]float64, len(values))
	for i := range values {
		row, err := RegridProfile(values[i], pressures[i], grid)
		if err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		out[i] = row
	}
	return out, nil
}
