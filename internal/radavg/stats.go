package radavg

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/oceanlab/wod-prof-db/internal/wod"
)

// LevelStats are the NaN-ignoring summary statistics of one grid
// level/channel cell across the regridded profile stack.
type LevelStats struct {
	Median float64
	Std    float64 // population standard deviation
	P05    float64
	P95    float64
}

// nanStats reduces one cell. NaN entries are ignored; with no valid
// entries every statistic is NaN.
func nanStats(samples []float64) LevelStats {
	valid := samples[:0:0]
	for _, v := range samples {
		if wod.Valid(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		nan := math.NaN()
		return LevelStats{Median: nan, Std: nan, P05: nan, P95: nan}
	}
	sort.Float64s(valid)

	mean := stat.Mean(valid, nil)
	return LevelStats{
		Median: quantileLinear(valid, 0.5),
		Std:    math.Sqrt(stat.MomentAbout(2, valid, mean, nil)),
		P05:    quantileLinear(valid, 0.05),
		P95:    quantileLinear(valid, 0.95),
	}
}

// quantileLinear evaluates the q-th quantile of sorted data with the
// linear (Hyndman-Fan type 7) definition: h = q*(n-1), interpolating
// between the two bracketing order statistics. gonum's Quantile
// cumulant kinds implement other definitions, so this one is local.
func quantileLinear(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := q * float64(n-1)
	lo := int(math.Floor(h))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
