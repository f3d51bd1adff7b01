package radavg

import (
	"math"
)

// MetersPerDegree returns the local length of one degree of longitude
// and latitude at the given latitude, from the second-order Fourier
// expansion of the Earth ellipsoid.
//
// Reference: American Practical Navigator, Vol II, 1975 Edition, p 5.
func MetersPerDegree(lat float64) (mLon, mLat float64) {
	rlat := lat * math.Pi / 180
	mLon = 111415.13*math.Cos(rlat) - 94.55*math.Cos(3*rlat)
	mLat = 111132.09 - 566.05*math.Cos(2*rlat) + 1.2*math.Cos(4*rlat)
	return mLon, mLat
}

// DeltaMeters converts angular increments dLon, dLat (degrees) to
// meters east and north at latitude lat.
func DeltaMeters(dLon, dLat, lat float64) (dx, dy float64) {
	mLon, mLat := MetersPerDegree(lat)
	return dLon * mLon, dLat * mLat
}
