package radavg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetersPerDegreeEquator(t *testing.T) {
	mLon, mLat := MetersPerDegree(0)
	assert.InDelta(t, 111320.58, mLon, 1e-6)
	assert.InDelta(t, 110567.24, mLat, 1e-6)
}

func TestMetersPerDegreePole(t *testing.T) {
	mLon, mLat := MetersPerDegree(90)
	// A degree of longitude vanishes at the pole.
	assert.InDelta(t, 0.0, mLon, 1e-6)
	assert.InDelta(t, 111699.34, mLat, 1e-6)
}

func TestMetersPerDegreeSymmetric(t *testing.T) {
	for _, lat := range []float64{15, 35, 60, 80} {
		nLon, nLat := MetersPerDegree(lat)
		sLon, sLat := MetersPerDegree(-lat)
		assert.InDelta(t, nLon, sLon, 1e-9, "lat %v", lat)
		assert.InDelta(t, nLat, sLat, 1e-9, "lat %v", lat)
	}
}

func TestMetersPerDegreeLonShrinksTowardPole(t *testing.T) {
	prev, _ := MetersPerDegree(0)
	for lat := 5.0; lat <= 90; lat += 5 {
		cur, _ := MetersPerDegree(lat)
		assert.Less(t, cur, prev, "lat %v", lat)
		prev = cur
	}
}

func TestDeltaMeters(t *testing.T) {
	dx, dy := DeltaMeters(2, -1, 0)
	assert.InDelta(t, 2*111320.58, dx, 1e-6)
	assert.InDelta(t, -110567.24, dy, 1e-6)
}
