package geodetic

import (
	"fmt"
	"math"

	"github.com/westpoint-robotics/ros-cot/internal/vector"
)

// Origin is the reference point of a local East-North-Up frame. It caches the
// ECEF position and the sine/cosine of latitude and longitude so conversions
// need no trigonometry. An Origin is immutable; updates build a new one.
type Origin struct {
	coord  Coordinate3D
	ecef   vector.Point3D
	sinLat float64
	cosLat float64
	sinLon float64
	cosLon float64
}

// NewOrigin builds the cache for c.
func NewOrigin(c Coordinate3D) (*Origin, error) {
	ecef, err := GeodeticToECEF(c)
	if err != nil {
		return nil, err
	}
	return newOrigin(c, ecef), nil
}

func newOrigin(c Coordinate3D, ecef vector.Point3D) *Origin {
	o := &Origin{coord: c, ecef: ecef}
	o.sinLat, o.cosLat = math.Sincos(c.Latitude.Radians())
	o.sinLon, o.cosLon = math.Sincos(c.Longitude.Radians())
	return o
}

// Coordinate returns the geodetic position of the origin.
func (o *Origin) Coordinate() Coordinate3D { return o.coord }

// ECEF returns the cached ECEF position of the origin.
func (o *Origin) ECEF() vector.Point3D { return o.ecef }

func (o *Origin) String() string { return fmt.Sprintf("origin%s", o.coord) }

// Filtered returns the origin obtained by blending o toward next in ECEF:
// blended = old + alpha*(next-old). The geodetic fields and trig cache are
// re-derived from the blended position. alpha=1 yields exactly
// NewOrigin(next); alpha=0 yields o.
func (o *Origin) Filtered(next Coordinate3D, alpha float64) (*Origin, error) {
	if math.IsNaN(alpha) || alpha < 0 || alpha > 1 {
		return nil, &RangeError{Field: "smoothing alpha", Value: alpha, Min: 0, Max: 1}
	}
	switch alpha {
	case 0:
		return o, nil
	case 1:
		return NewOrigin(next)
	}
	nextECEF, err := GeodeticToECEF(next)
	if err != nil {
		return nil, err
	}
	blended := o.ecef.Filter(nextECEF, alpha)
	return newOrigin(ECEFToGeodetic(blended), blended), nil
}

// ECEFToENU rotates the offset of p from the origin into the local frame.
func (o *Origin) ECEFToENU(p vector.Point3D) vector.Point3D {
	d := p.Sub(o.ecef)
	return vector.Point3D{
		X: o.cosLon*d.Y - o.sinLon*d.X,
		Y: o.cosLat*d.Z - o.sinLat*o.sinLon*d.Y - o.sinLat*o.cosLon*d.X,
		Z: o.sinLat*d.Z + o.cosLat*o.sinLon*d.Y + o.cosLat*o.cosLon*d.X,
	}
}

// ENUToECEF is the inverse of ECEFToENU.
func (o *Origin) ENUToECEF(l vector.Point3D) vector.Point3D {
	return vector.Point3D{
		X: o.cosLat*o.cosLon*l.Z - o.sinLat*o.cosLon*l.Y - o.sinLon*l.X + o.ecef.X,
		Y: o.cosLat*o.sinLon*l.Z - o.sinLat*o.sinLon*l.Y + o.cosLon*l.X + o.ecef.Y,
		Z: o.sinLat*l.Z + o.cosLat*l.Y + o.ecef.Z,
	}
}

// GeodeticToENU projects c into the local frame.
func (o *Origin) GeodeticToENU(c Coordinate3D) vector.Point3D {
	return o.ECEFToENU(geodeticToECEF(c.Latitude.Radians(), c.Longitude.Radians(), c.AltitudeMeters()))
}

// ENUToGeodetic maps a local point back to geodetic coordinates.
func (o *Origin) ENUToGeodetic(l vector.Point3D) Coordinate3D {
	return ECEFToGeodetic(o.ENUToECEF(l))
}

// Track is a pair of geodetic endpoints.
type Track struct {
	Start Coordinate3D
	End   Coordinate3D
}

// CrossTrackResult holds the two offset tracks around a planned line.
type CrossTrackResult struct {
	Left  Track
	Right Track
}
