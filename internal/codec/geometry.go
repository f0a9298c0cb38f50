package codec

import (
	"github.com/beevik/etree"

	"github.com/westpoint-robotics/ros-cot/internal/geodetic"
	"github.com/westpoint-robotics/ros-cot/internal/polygon"
	"github.com/westpoint-robotics/ros-cot/internal/units"
)

// EncodeCoordinate appends <name><latitude/><longitude/></name>.
func EncodeCoordinate(parent *etree.Element, name string, c geodetic.Coordinate) *etree.Element {
	el := parent.CreateElement(name)
	EncodeQuantity(el, "latitude", c.Latitude.Angle())
	EncodeQuantity(el, "longitude", c.Longitude.Angle())
	return el
}

// DecodeCoordinate parses an element written by EncodeCoordinate.
func DecodeCoordinate(el *etree.Element) (geodetic.Coordinate, error) {
	latEl, err := child(el, "latitude")
	if err != nil {
		return geodetic.Coordinate{}, err
	}
	lonEl, err := child(el, "longitude")
	if err != nil {
		return geodetic.Coordinate{}, err
	}
	latAngle, err := DecodeQuantity[units.AngleCategory](latEl)
	if err != nil {
		return geodetic.Coordinate{}, err
	}
	lonAngle, err := DecodeQuantity[units.AngleCategory](lonEl)
	if err != nil {
		return geodetic.Coordinate{}, err
	}
	lat, err := geodetic.NewLatitude(latAngle)
	if err != nil {
		return geodetic.Coordinate{}, wrap(latEl, err)
	}
	lon, err := geodetic.NewLongitude(lonAngle)
	if err != nil {
		return geodetic.Coordinate{}, wrap(lonEl, err)
	}
	return geodetic.Coordinate{Latitude: lat, Longitude: lon}, nil
}

// EncodeCoordinate3D appends a coordinate with an altitude child.
func EncodeCoordinate3D(parent *etree.Element, name string, c geodetic.Coordinate3D) *etree.Element {
	el := EncodeCoordinate(parent, name, c.Coordinate)
	EncodeAltitude(el, "altitude", c.Altitude)
	return el
}

// DecodeCoordinate3D parses an element written by EncodeCoordinate3D.
func DecodeCoordinate3D(el *etree.Element) (geodetic.Coordinate3D, error) {
	c, err := DecodeCoordinate(el)
	if err != nil {
		return geodetic.Coordinate3D{}, err
	}
	altEl, err := child(el, "altitude")
	if err != nil {
		return geodetic.Coordinate3D{}, err
	}
	alt, err := DecodeAltitude(altEl)
	if err != nil {
		return geodetic.Coordinate3D{}, err
	}
	return c.With3D(alt), nil
}

// EncodeGeoPolygon appends one GeoCoordinate child per vertex.
func EncodeGeoPolygon(parent *etree.Element, name string, p polygon.GeoPolygon) *etree.Element {
	el := parent.CreateElement(name)
	for _, c := range p.Points() {
		EncodeCoordinate(el, "GeoCoordinate", c)
	}
	return el
}

// DecodeGeoPolygon parses an element written by EncodeGeoPolygon.
func DecodeGeoPolygon(el *etree.Element) (polygon.GeoPolygon, error) {
	vertices := el.SelectElements("GeoCoordinate")
	pts := make([]geodetic.Coordinate, 0, len(vertices))
	for _, v := range vertices {
		c, err := DecodeCoordinate(v)
		if err != nil {
			return polygon.GeoPolygon{}, err
		}
		pts = append(pts, c)
	}
	p, err := polygon.NewGeo(pts)
	return p, wrap(el, err)
}

// EncodeGeoPrism appends <name><GeoPolygon/><MinimumAltitude/><MaximumAltitude/></name>.
func EncodeGeoPrism(parent *etree.Element, name string, p polygon.GeoPrism) *etree.Element {
	el := parent.CreateElement(name)
	EncodeGeoPolygon(el, "GeoPolygon", p.Polygon())
	EncodeAltitude(el, "MinimumAltitude", p.MinAltitude())
	EncodeAltitude(el, "MaximumAltitude", p.MaxAltitude())
	return el
}

// DecodeGeoPrism parses an element written by EncodeGeoPrism.
func DecodeGeoPrism(el *etree.Element) (polygon.GeoPrism, error) {
	polyEl, err := child(el, "GeoPolygon")
	if err != nil {
		return polygon.GeoPrism{}, err
	}
	poly, err := DecodeGeoPolygon(polyEl)
	if err != nil {
		return polygon.GeoPrism{}, err
	}
	minEl, err := child(el, "MinimumAltitude")
	if err != nil {
		return polygon.GeoPrism{}, err
	}
	maxEl, err := child(el, "MaximumAltitude")
	if err != nil {
		return polygon.GeoPrism{}, err
	}
	lo, err := DecodeAltitude(minEl)
	if err != nil {
		return polygon.GeoPrism{}, err
	}
	hi, err := DecodeAltitude(maxEl)
	if err != nil {
		return polygon.GeoPrism{}, err
	}
	p, err := polygon.NewGeoPrism(poly, lo, hi)
	return p, wrap(el, err)
}
