package wod

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func usableProfile(n int) Profile {
	p := Profile{
		ProbeType: ProbeCTD,
		SalQC:     0,
		TempQC:    0,
		Pres:      make([]float64, n),
		Sal:       make([]float64, n),
		Temp:      make([]float64, n),
		Depth:     make([]float64, n),
		USal:      make([]float64, n),
		UTemp:     make([]float64, n),
		UDepth:    make([]float64, n),
	}
	for i := 0; i < n; i++ {
		p.Pres[i] = float64(i) * 5
		p.Sal[i] = 35.0
		p.Temp[i] = 10.0
		p.Depth[i] = float64(i) * 5
	}
	return p
}

func TestIsUsable_CleanProfile(t *testing.T) {
	p := usableProfile(10)
	assert.True(t, DefaultUsabilityPolicy().IsUsable(&p))
}

func TestIsUsable_EmptyProfileNeverUsable(t *testing.T) {
	p := usableProfile(0)
	assert.False(t, DefaultUsabilityPolicy().IsUsable(&p))
}

func TestIsUsable_CoverageIsJoint(t *testing.T) {
	// 10 levels; knock out salinity on 3 and temperature on 3 others.
	// Each variable alone has 70% coverage but jointly only 40%.
	p := usableProfile(10)
	for _, i := range []int{0, 1, 2} {
		p.Sal[i] = math.NaN()
	}
	for _, i := range []int{3, 4, 5} {
		p.Temp[i] = math.NaN()
	}
	assert.False(t, DefaultUsabilityPolicy().IsUsable(&p))
}

func TestIsUsable_CoverageBoundary(t *testing.T) {
	// Exactly 50% jointly valid passes the default policy.
	p := usableProfile(10)
	for i := 0; i < 5; i++ {
		p.Sal[i] = math.NaN()
	}
	assert.True(t, DefaultUsabilityPolicy().IsUsable(&p))

	p.Sal[5] = math.NaN()
	assert.False(t, DefaultUsabilityPolicy().IsUsable(&p))
}

func TestIsUsable_QCScores(t *testing.T) {
	cases := []struct {
		name   string
		salQC  int16
		tempQC int16
		want   bool
	}{
		{"both zero", 0, 0, true},
		{"both at two", 2, 2, true},
		{"sal at threshold", 3, 0, false},
		{"temp at threshold", 0, 3, false},
		{"sal missing", QCMissing, 0, false},
		{"temp missing", 0, QCMissing, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := usableProfile(10)
			p.SalQC = tc.salQC
			p.TempQC = tc.tempQC
			assert.Equal(t, tc.want, DefaultUsabilityPolicy().IsUsable(&p))
		})
	}
}
