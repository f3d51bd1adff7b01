// Package eos defines the derived-variable engine contract consumed by
// the radius aggregation pipeline, together with a first-order linear
// reference implementation. A full TEOS-10 engine satisfies the same
// interface and can be swapped in without touching the pipeline.
package eos

import (
	"math"
)

// Engine computes physical derived quantities from raw cast data.
// Implementations must be pure: no retained state, NaN inputs yield
// NaN outputs at the affected positions, inputs are never mutated.
type Engine interface {
	// AbsoluteSalinity converts practical salinity to absolute
	// salinity (g/kg) at the given pressures and position.
	AbsoluteSalinity(sp, p []float64, lon, lat float64) []float64

	// ConservativeTemperature converts in-situ temperature to
	// conservative temperature (degC).
	ConservativeTemperature(sa, t, p []float64) []float64

	// NSquared returns the squared buoyancy frequency together with
	// the thermal expansion (alpha) and haline contraction (beta)
	// coefficients, evaluated at the midpoints between consecutive
	// pressure levels. All four returned slices have len(p)-1 entries;
	// pMid is the midpoint pressure axis the values live on.
	NSquared(sa, ct, p []float64, lat float64) (n2, alpha, beta, pMid []float64)
}

// =============================================================================
// Linear reference engine
// =============================================================================

// Reference constants for the linear equation of state.
const (
	gravity  = 9.81    // m/s^2
	rho0     = 1025.0  // reference density, kg/m^3
	alpha0   = 2.0e-4  // thermal expansion, 1/K
	beta0    = 7.6e-4  // haline contraction, kg/g
	dbarToPa = 1.0e4   // dbar -> Pa
	spToSA   = 35.16504 / 35.0
)

// Linear is a first-order equation-of-state engine: absolute salinity
// by the reference-salinity scale factor, conservative temperature
// taken equal to in-situ temperature, and N^2 from constant alpha/beta
// density gradients under the hydrostatic approximation. Adequate for
// stratification screening; not a replacement for TEOS-10.
type Linear struct{}

// NewLinear returns the linear reference engine.
func NewLinear() Linear {
	return Linear{}
}

// AbsoluteSalinity scales practical salinity onto the reference
// salinity scale. Pressure and position do not enter at first order.
func (Linear) AbsoluteSalinity(sp, _ []float64, _, _ float64) []float64 {
	sa := make([]float64, len(sp))
	for i, s := range sp {
		sa[i] = s * spToSA
	}
	return sa
}

// ConservativeTemperature returns in-situ temperature unchanged; the
// difference is below first order over the catalog's pressure range.
func (Linear) ConservativeTemperature(_, t, _ []float64) []float64 {
	ct := make([]float64, len(t))
	copy(ct, t)
	return ct
}

// NSquared computes N^2 = g^2 rho0 (beta dSA - alpha dCT) / dP between
// consecutive levels. A zero pressure step yields NaN at that midpoint
// rather than an infinity.
func (Linear) NSquared(sa, ct, p []float64, _ float64) (n2, alpha, beta, pMid []float64) {
	n := len(p) - 1
	if n < 0 {
		n = 0
	}
	n2 = make([]float64, n)
	alpha = make([]float64, n)
	beta = make([]float64, n)
	pMid = make([]float64, n)

	for k := 0; k < n; k++ {
		alpha[k] = alpha0
		beta[k] = beta0
		pMid[k] = (p[k] + p[k+1]) / 2

		dp := p[k+1] - p[k]
		if dp == 0 {
			n2[k] = math.NaN()
			continue
		}
		dsa := sa[k+1] - sa[k]
		dct := ct[k+1] - ct[k]
		n2[k] = gravity * gravity * rho0 * (beta0*dsa - alpha0*dct) / (dp * dbarToPa)
	}
	return n2, alpha, beta, pMid
}
