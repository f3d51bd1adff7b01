package radavg

import (
	"math"
)

// wrapLonDelta normalizes a longitude difference into [-180, 180] so
// that a query near the date line sees points on both sides of the
// seam.
func wrapLonDelta(d float64) float64 {
	d = math.Mod(d, 360)
	if d > 180 {
		d -= 360
	} else if d < -180 {
		d += 360
	}
	return d
}

// WithinRadius returns a mask with true where the catalog positions
// are strictly less than radiusKm kilometers from the center.
//
// Distance is the planar Euclidean norm of the angular deltas scaled
// by MetersPerDegree at the center latitude - a flat-earth
// approximation valid at scales far below the Earth's radius, not a
// great-circle distance. An empty catalog yields an empty mask.
func WithinRadius(lons, lats []float64, centerLon, centerLat, radiusKm float64) []bool {
	mask := make([]bool, len(lons))
	mLon, mLat := MetersPerDegree(centerLat)
	for i := range lons {
		dx := wrapLonDelta(lons[i]-centerLon) * mLon
		dy := (lats[i] - centerLat) * mLat
		km := math.Sqrt(dx*dx+dy*dy) / 1000.0
		mask[i] = km < radiusKm
	}
	return mask
}
