package geodetic

import (
	"math"

	"github.com/westpoint-robotics/ros-cot/internal/units"
	"github.com/westpoint-robotics/ros-cot/internal/vector"
)

// GeodeticToECEF converts a geodetic position to ECEF meters. Altitudes below
// the ellipsoid's center (alt < -LocalEarthRadius(lat)) are rejected.
func GeodeticToECEF(c Coordinate3D) (vector.Point3D, error) {
	lat := c.Latitude.Radians()
	alt := c.AltitudeMeters()
	if floor := -LocalEarthRadius(lat); math.IsNaN(alt) || alt < floor {
		return vector.Point3D{}, &RangeError{Field: "altitude", Value: alt, Min: floor, Max: math.Inf(1)}
	}
	return geodeticToECEF(lat, c.Longitude.Radians(), alt), nil
}

func geodeticToECEF(lat, lon, alt float64) vector.Point3D {
	sinLat, cosLat := math.Sincos(lat)
	sinLon, cosLon := math.Sincos(lon)
	n := SemiMajorAxis / math.Sqrt(1-e2*sinLat*sinLat)
	return vector.Point3D{
		X: (n + alt) * cosLat * cosLon,
		Y: (n + alt) * cosLat * sinLon,
		Z: (oneMinusE2*n + alt) * sinLat,
	}
}

// ECEFToGeodetic converts an ECEF position to geodetic coordinates using a
// closed-form solution, so the result has no iteration error and is stable at
// the poles and the equator.
func ECEFToGeodetic(p vector.Point3D) Coordinate3D {
	lat, lon, alt := ecefToGeodetic(p)
	return Coordinate3D{
		Coordinate: fromRadians(lat, lon),
		Altitude:   units.AltitudeMeters(alt),
	}
}

func ecefToGeodetic(pt vector.Point3D) (lat, lon, alt float64) {
	x, y, z := pt.X, pt.Y, pt.Z
	d2 := x*x + y*y
	p := d2 / aSquared
	q := oneMinusE2 * z * z / aSquared
	r := (p + q - e4) / 6
	s := e4 * p * q / (4 * r * r * r)
	t := math.Cbrt(1 + s + math.Sqrt(s*(2+s)))
	u := r * (1 + t + 1/t)
	v := math.Sqrt(u*u + e4*q)
	w := e2 * (u + v - q) / (2 * v)
	k := math.Sqrt(u+v+w*w) - w
	d := k * math.Sqrt(d2) / (k + e2)
	dz := math.Sqrt(d*d + z*z)

	lat = 2 * math.Atan2(z, d+dz)
	alt = (k + e2 - 1) * dz / k

	lon = math.Atan2(y, x)
	return lat, lon, alt
}
