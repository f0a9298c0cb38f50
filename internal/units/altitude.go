package units

import (
	"fmt"
	"strings"
)

// AltitudeReference names the surface an altitude is measured from.
type AltitudeReference uint8

const (
	WGS84 AltitudeReference = iota
	EarthsLandSeaSurface
	EarthsTopographicalBathymetricSurface
)

var altitudeReferenceNames = [...]string{
	WGS84:                                 "WGS84 Geoid",
	EarthsLandSeaSurface:                  "Earth's Land/Sea Surface",
	EarthsTopographicalBathymetricSurface: "Earth's Topographical/Bathymetric Surface",
}

func (r AltitudeReference) String() string {
	if int(r) < len(altitudeReferenceNames) {
		return altitudeReferenceNames[r]
	}
	return fmt.Sprintf("AltitudeReference(%d)", uint8(r))
}

// ParseAltitudeReference resolves a reference name case-insensitively.
func ParseAltitudeReference(s string) (AltitudeReference, error) {
	for i, name := range altitudeReferenceNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return AltitudeReference(i), nil
		}
	}
	return WGS84, &UnknownUnitError{Category: "altitude reference", Name: s}
}

// Altitude is a signed height with the surface it is measured from.
type Altitude struct {
	Distance
	Reference AltitudeReference
}

// NewAltitude builds a WGS84-referenced altitude.
func NewAltitude(v float64, u LengthUnit) Altitude {
	return Altitude{Distance: New(v, u), Reference: WGS84}
}

// AltitudeMeters is shorthand for NewAltitude(m, Meters).
func AltitudeMeters(m float64) Altitude {
	return NewAltitude(m, Meters)
}

// Meters returns the altitude in meters.
func (a Altitude) Meters() float64 { return a.Canonical() }

func (a Altitude) String() string {
	return fmt.Sprintf("%s (%s)", a.Distance, a.Reference)
}
