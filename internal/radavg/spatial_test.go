package radavg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinRadiusBasic(t *testing.T) {
	lons := []float64{-40.0, -40.5, -42.0, -40.0}
	lats := []float64{35.0, 35.2, 35.0, 36.5}

	mask := WithinRadius(lons, lats, -40.0, 35.0, 100)
	require.Len(t, mask, 4)
	assert.True(t, mask[0])  // the center itself
	assert.True(t, mask[1])  // ~50 km away
	assert.False(t, mask[2]) // ~182 km west
	assert.False(t, mask[3]) // ~166 km north
}

func TestWithinRadiusStrictBoundary(t *testing.T) {
	// One degree of latitude from the center. The separation is
	// computed from the same degree-length expression the filter uses,
	// then nudged by margins well above float rounding so the strict
	// comparison is what decides, not the last ulp.
	_, mLat := MetersPerDegree(0)
	sepKm := mLat / 1000.0

	mask := WithinRadius([]float64{0}, []float64{1}, 0, 0, sepKm*(1-1e-9))
	assert.False(t, mask[0])

	mask = WithinRadius([]float64{0}, []float64{1}, 0, 0, sepKm*(1+1e-9))
	assert.True(t, mask[0])
}

func TestWithinRadiusMonotonicInRadius(t *testing.T) {
	lons := []float64{-40, -40.3, -40.9, -41.5, -38, -40, -44, -40}
	lats := []float64{35, 35.1, 35.6, 34.2, 36.8, 33.1, 35, 38.5}

	// Growing the radius never drops a previously included point.
	prev := WithinRadius(lons, lats, -40, 35, 20)
	for _, radius := range []float64{50, 100, 200, 400, 800} {
		cur := WithinRadius(lons, lats, -40, 35, radius)
		for i := range prev {
			if prev[i] {
				assert.True(t, cur[i], "point %d dropped at radius %v", i, radius)
			}
		}
		prev = cur
	}
}

func TestWithinRadiusAcrossDateLine(t *testing.T) {
	// 179.8W is ~44 km east of 179.8E at the equator, despite the
	// 359.6 degree nominal difference.
	mask := WithinRadius([]float64{-179.8}, []float64{0}, 179.8, 0, 100)
	assert.True(t, mask[0])

	mask = WithinRadius([]float64{-178.0}, []float64{0}, 179.8, 0, 100)
	assert.False(t, mask[0])
}

func TestWithinRadiusEmptyCatalog(t *testing.T) {
	mask := WithinRadius(nil, nil, 0, 0, 100)
	assert.Empty(t, mask)
}

func TestWrapLonDelta(t *testing.T) {
	assert.InDelta(t, 0.4, wrapLonDelta(-359.6), 1e-12)
	assert.InDelta(t, -0.4, wrapLonDelta(359.6), 1e-12)
	assert.InDelta(t, 10.0, wrapLonDelta(10), 1e-12)
	assert.InDelta(t, -170.0, wrapLonDelta(190), 1e-12)
	assert.InDelta(t, 180.0, wrapLonDelta(180), 1e-12)
}
