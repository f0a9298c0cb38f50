package geodetic

import (
	"errors"
	"fmt"
	"math"

	"github.com/westpoint-robotics/ros-cot/internal/units"
)

// ErrOutOfRange is returned when a geodetic value violates its valid range.
var ErrOutOfRange = errors.New("value out of range")

// RangeError reports which field was out of range and its bounds.
type RangeError struct {
	Field    string
	Value    float64
	Min, Max float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("invalid %s: %f (must be within [%g, %g])", e.Field, e.Value, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error { return ErrOutOfRange }

// rangeSlack absorbs the rounding of a unit round trip at the bounds, so that
// 90 degrees given in radians is still a valid latitude.
const rangeSlack = 1e-9

func checkRange(field string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo-rangeSlack || v > hi+rangeSlack {
		return &RangeError{Field: field, Value: v, Min: lo, Max: hi}
	}
	return nil
}

// Latitude is an angle restricted to [-90, 90] degrees.
type Latitude struct {
	angle units.Angle
}

// NewLatitude validates the angle and wraps it.
func NewLatitude(a units.Angle) (Latitude, error) {
	if err := checkRange("latitude", a.Value(units.Degrees), -90, 90); err != nil {
		return Latitude{}, err
	}
	return Latitude{angle: a}, nil
}

// LatitudeDegrees is NewLatitude for a value in degrees.
func LatitudeDegrees(deg float64) (Latitude, error) {
	return NewLatitude(units.New(deg, units.Degrees))
}

func (l Latitude) Angle() units.Angle { return l.angle }
func (l Latitude) Degrees() float64   { return l.angle.Value(units.Degrees) }
func (l Latitude) Radians() float64   { return l.angle.Canonical() }

// Longitude is an angle restricted to [-180, 180] degrees.
type Longitude struct {
	angle units.Angle
}

// NewLongitude validates the angle and wraps it.
func NewLongitude(a units.Angle) (Longitude, error) {
	if err := checkRange("longitude", a.Value(units.Degrees), -180, 180); err != nil {
		return Longitude{}, err
	}
	return Longitude{angle: a}, nil
}

// LongitudeDegrees is NewLongitude for a value in degrees.
func LongitudeDegrees(deg float64) (Longitude, error) {
	return NewLongitude(units.New(deg, units.Degrees))
}

func (l Longitude) Angle() units.Angle { return l.angle }
func (l Longitude) Degrees() float64   { return l.angle.Value(units.Degrees) }
func (l Longitude) Radians() float64   { return l.angle.Canonical() }

// Coordinate is a 2D geodetic position.
type Coordinate struct {
	Latitude  Latitude
	Longitude Longitude
}

// NewCoordinate builds a coordinate from degrees.
func NewCoordinate(latDeg, lonDeg float64) (Coordinate, error) {
	lat, err := LatitudeDegrees(latDeg)
	if err != nil {
		return Coordinate{}, err
	}
	lon, err := LongitudeDegrees(lonDeg)
	if err != nil {
		return Coordinate{}, err
	}
	return Coordinate{Latitude: lat, Longitude: lon}, nil
}

// fromRadians builds a coordinate from values already known to be in range.
func fromRadians(latRad, lonRad float64) Coordinate {
	return Coordinate{
		Latitude:  Latitude{angle: units.New(latRad, units.Radians).WithPreferred(units.Degrees)},
		Longitude: Longitude{angle: units.New(lonRad, units.Radians).WithPreferred(units.Degrees)},
	}
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%.7f, %.7f)", c.Latitude.Degrees(), c.Longitude.Degrees())
}

// With3D attaches an altitude.
func (c Coordinate) With3D(alt units.Altitude) Coordinate3D {
	return Coordinate3D{Coordinate: c, Altitude: alt}
}

// GreatCircleDistance returns the haversine distance between c and o on a
// sphere of radius MeanRadius.
func (c Coordinate) GreatCircleDistance(o Coordinate) units.Distance {
	lat1, lon1 := c.Latitude.Radians(), c.Longitude.Radians()
	lat2, lon2 := o.Latitude.Radians(), o.Longitude.Radians()

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	sdlat := math.Sin(dlat / 2)
	sdlon := math.Sin(dlon / 2)
	a := sdlat*sdlat + math.Cos(lat1)*math.Cos(lat2)*sdlon*sdlon
	return units.New(2*MeanRadius*math.Asin(math.Min(1, math.Sqrt(a))), units.Meters)
}

// ForwardAzimuth returns the initial great-circle bearing from c to o in
// [0, 360) degrees, 0 = north, 90 = east.
func (c Coordinate) ForwardAzimuth(o Coordinate) units.Angle {
	lat1, lon1 := c.Latitude.Radians(), c.Longitude.Radians()
	lat2, lon2 := o.Latitude.Radians(), o.Longitude.Radians()

	y := math.Sin(lon2-lon1) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1)
	bearing := math.Mod(units.RadiansToDegrees(math.Atan2(y, x))+360, 360)
	return units.New(bearing, units.Degrees)
}

// Coordinate3D is a geodetic position with altitude. The altitude is not
// range restricted; negative values lie below the reference surface.
type Coordinate3D struct {
	Coordinate
	Altitude units.Altitude
}

// NewCoordinate3D builds a coordinate from degrees and a WGS84 altitude in meters.
func NewCoordinate3D(latDeg, lonDeg, altMeters float64) (Coordinate3D, error) {
	c, err := NewCoordinate(latDeg, lonDeg)
	if err != nil {
		return Coordinate3D{}, err
	}
	return Coordinate3D{Coordinate: c, Altitude: units.AltitudeMeters(altMeters)}, nil
}

// MustCoordinate3D is NewCoordinate3D for literals known to be valid.
func MustCoordinate3D(latDeg, lonDeg, altMeters float64) Coordinate3D {
	c, err := NewCoordinate3D(latDeg, lonDeg, altMeters)
	if err != nil {
		panic(err)
	}
	return c
}

// AltitudeMeters returns the altitude in meters.
func (c Coordinate3D) AltitudeMeters() float64 { return c.Altitude.Meters() }

// WithAltitude returns a copy of c at a different altitude.
func (c Coordinate3D) WithAltitude(alt units.Altitude) Coordinate3D {
	c.Altitude = alt
	return c
}

func (c Coordinate3D) String() string {
	return fmt.Sprintf("(%.7f, %.7f, %.3fm)", c.Latitude.Degrees(), c.Longitude.Degrees(), c.AltitudeMeters())
}
