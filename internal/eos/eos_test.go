package eos

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearAbsoluteSalinity(t *testing.T) {
	e := NewLinear()
	sa := e.AbsoluteSalinity([]float64{35.0, 0, math.NaN()}, []float64{0, 100, 200}, -40, 35)

	require.Len(t, sa, 3)
	assert.InDelta(t, 35.16504, sa[0], 1e-9)
	assert.Equal(t, 0.0, sa[1])
	assert.True(t, math.IsNaN(sa[2]))
}

func TestLinearConservativeTemperatureCopies(t *testing.T) {
	e := NewLinear()
	in := []float64{10, 5, math.NaN()}
	ct := e.ConservativeTemperature(nil, in, nil)

	require.Len(t, ct, 3)
	assert.Equal(t, in[:2], ct[:2])
	assert.True(t, math.IsNaN(ct[2]))

	// Input must not alias the output.
	ct[0] = -99
	assert.Equal(t, 10.0, in[0])
}

func TestLinearNSquaredMidpointAxis(t *testing.T) {
	e := NewLinear()
	sa := []float64{35, 35.1, 35.2, 35.3}
	ct := []float64{20, 18, 15, 10}
	p := []float64{0, 10, 20, 30}

	n2, alpha, beta, pMid := e.NSquared(sa, ct, p, 35)

	require.Len(t, n2, 3)
	require.Len(t, alpha, 3)
	require.Len(t, beta, 3)
	require.Equal(t, []float64{5, 15, 25}, pMid)

	// Salinity increasing and temperature decreasing with depth is a
	// stable stratification: N^2 must be positive everywhere.
	for k, v := range n2 {
		assert.Greater(t, v, 0.0, "midpoint %d", k)
	}
}

func TestLinearNSquaredZeroStepIsNaN(t *testing.T) {
	e := NewLinear()
	n2, _, _, _ := e.NSquared([]float64{35, 35}, []float64{10, 10}, []float64{100, 100}, 0)

	require.Len(t, n2, 1)
	assert.True(t, math.IsNaN(n2[0]))
}

func TestLinearNSquaredDegenerateInputs(t *testing.T) {
	e := NewLinear()

	n2, _, _, pMid := e.NSquared([]float64{35}, []float64{10}, []float64{100}, 0)
	assert.Empty(t, n2)
	assert.Empty(t, pMid)

	n2, _, _, _ = e.NSquared(nil, nil, nil, 0)
	assert.Empty(t, n2)
}

func TestLinearNSquaredPropagatesNaN(t *testing.T) {
	e := NewLinear()
	sa := []float64{35, math.NaN(), 35.2}
	ct := []float64{20, 18, 15}
	p := []float64{0, 10, 20}

	n2, _, _, _ := e.NSquared(sa, ct, p, 0)
	require.Len(t, n2, 2)
	assert.True(t, math.IsNaN(n2[0]))
	assert.True(t, math.IsNaN(n2[1]))
}
