package radavg

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNanStatsThreeSamples(t *testing.T) {
	s := nanStats([]float64{3, 1, 2})

	assert.InDelta(t, 2.0, s.Median, 1e-12)
	assert.InDelta(t, 1.1, s.P05, 1e-12)
	assert.InDelta(t, 2.9, s.P95, 1e-12)
	// Population std of {1,2,3} = sqrt(2/3).
	assert.InDelta(t, 0.816496580927726, s.Std, 1e-12)
}

func TestNanStatsIgnoresNaN(t *testing.T) {
	with := nanStats([]float64{math.NaN(), 3, math.NaN(), 1, 2})
	without := nanStats([]float64{3, 1, 2})
	assert.Equal(t, without, with)
}

func TestNanStatsAllNaN(t *testing.T) {
	s := nanStats([]float64{math.NaN(), math.NaN()})
	assert.True(t, math.IsNaN(s.Median))
	assert.True(t, math.IsNaN(s.Std))
	assert.True(t, math.IsNaN(s.P05))
	assert.True(t, math.IsNaN(s.P95))
}

func TestNanStatsSingleSample(t *testing.T) {
	s := nanStats([]float64{4.25})
	assert.Equal(t, 4.25, s.Median)
	assert.Equal(t, 4.25, s.P05)
	assert.Equal(t, 4.25, s.P95)
	assert.Equal(t, 0.0, s.Std)
}

func TestNanStatsDoesNotMutateInput(t *testing.T) {
	in := []float64{3, 1, 2}
	nanStats(in)
	assert.Equal(t, []float64{3, 1, 2}, in)
}

func TestQuantileLinear(t *testing.T) {
	sorted := []float64{10, 20, 30, 40}

	assert.InDelta(t, 10.0, quantileLinear(sorted, 0), 1e-12)
	assert.InDelta(t, 25.0, quantileLinear(sorted, 0.5), 1e-12)
	assert.InDelta(t, 40.0, quantileLinear(sorted, 1), 1e-12)
	assert.InDelta(t, 11.5, quantileLinear(sorted, 0.05), 1e-12)
	assert.InDelta(t, 38.5, quantileLinear(sorted, 0.95), 1e-12)
}
