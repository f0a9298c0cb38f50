// Package geodetic converts between WGS84 geodetic coordinates, Earth-centered
// Earth-fixed (ECEF) positions and local East-North-Up (ENU) frames.
package geodetic

import "math"

// WGS84 ellipsoid parameters.
const (
	SemiMajorAxis = 6378137.0    // a, meters
	SemiMinorAxis = 6356752.3142 // b, meters
	Flattening    = 1 / 298.257223563
	// MeanRadius is the IUGG mean Earth radius R1, used for great-circle math.
	MeanRadius = 6371008.7714

	e2         = 0.00669437999014 // first eccentricity squared
	e4         = e2 * e2
	oneMinusE2 = 1 - e2
	aSquared   = SemiMajorAxis * SemiMajorAxis
)

// PrimeVerticalRadius returns N(lat) = a / sqrt(1 - e^2 sin^2 lat), lat in radians.
func PrimeVerticalRadius(latRad float64) float64 {
	s := math.Sin(latRad)
	return SemiMajorAxis / math.Sqrt(1-e2*s*s)
}

// LocalEarthRadius returns the geocentric radius of the ellipsoid at lat (radians).
func LocalEarthRadius(latRad float64) float64 {
	s, c := math.Sincos(latRad)
	const a, b = SemiMajorAxis, SemiMinorAxis
	num := (a*a*c)*(a*a*c) + (b*b*s)*(b*b*s)
	den := (a*c)*(a*c) + (b*s)*(b*s)
	return math.Sqrt(num / den)
}
