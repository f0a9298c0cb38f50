package geodetic

import (
	"math"

	"github.com/westpoint-robotics/ros-cot/internal/units"
	"github.com/westpoint-robotics/ros-cot/internal/vector"
)

// CrossTrack builds two tracks parallel to start->end, offset by limit on each
// side. The direction is taken in the ENU frame of start and rotated a quarter
// turn about the vertical, so any climb along the line is kept.
func CrossTrack(start, end Coordinate3D, limit units.NonNegativeDistance) (CrossTrackResult, error) {
	o, err := NewOrigin(start)
	if err != nil {
		return CrossTrackResult{}, err
	}
	endVec := o.GeodeticToENU(end)
	dir := endVec.Normalize()
	meters := limit.Value(units.Meters)

	left := vector.RotateZ90.MulVec(dir).Scale(meters)
	right := vector.RotateZ270.MulVec(dir).Scale(meters)

	return CrossTrackResult{
		Left:  Track{Start: o.ENUToGeodetic(left), End: o.ENUToGeodetic(left.Add(endVec))},
		Right: Track{Start: o.ENUToGeodetic(right), End: o.ENUToGeodetic(right.Add(endVec))},
	}, nil
}

// CrossTrack2D is CrossTrack with the offsets computed in the horizontal plane
// only, so both tracks keep the altitudes of the original line.
func CrossTrack2D(start, end Coordinate3D, limit units.NonNegativeDistance) (CrossTrackResult, error) {
	o, err := NewOrigin(start)
	if err != nil {
		return CrossTrackResult{}, err
	}
	endVec := o.GeodeticToENU(end)
	n := endVec.XY().Normalize()
	meters := limit.Value(units.Meters)

	right := vector.Point2D{X: n.Y, Y: -n.X}.Scale(meters).To3D(0)
	left := vector.Point2D{X: -n.Y, Y: n.X}.Scale(meters).To3D(0)

	return CrossTrackResult{
		Left:  Track{Start: o.ENUToGeodetic(left), End: o.ENUToGeodetic(left.Add(endVec))},
		Right: Track{Start: o.ENUToGeodetic(right), End: o.ENUToGeodetic(right.Add(endVec))},
	}, nil
}

// perpToLine returns the point of the line through a with unit direction n
// closest to the frame origin.
func perpToLine(a, n vector.Point3D) vector.Point3D {
	return a.Sub(n.Scale(a.Dot(n)))
}

// flatten moves c onto the origin's altitude so perpendiculars are horizontal.
func (o *Origin) flatten(c Coordinate3D) vector.Point3D {
	return o.GeodeticToENU(c.WithAltitude(o.coord.Altitude))
}

// PerpCoord returns the foot of the perpendicular dropped from the origin onto
// the line through p1 and p2, at the origin's altitude.
func (o *Origin) PerpCoord(p1, p2 Coordinate3D) Coordinate3D {
	a := o.flatten(p1)
	n := o.flatten(p2).Sub(a).Normalize()
	return o.ENUToGeodetic(perpToLine(a, n))
}

// PerpDistance returns the horizontal distance from the origin to the line
// through p1 and p2.
func (o *Origin) PerpDistance(p1, p2 Coordinate3D) units.Distance {
	a := o.flatten(p1)
	n := o.flatten(p2).Sub(a).Normalize()
	return units.New(perpToLine(a, n).Norm(), units.Meters)
}

// PerpDistanceSigned is PerpDistance with a sign: positive when the origin lies
// to the right of the directed line p1->p2, negative otherwise.
func (o *Origin) PerpDistanceSigned(p1, p2 Coordinate3D) units.Distance {
	a := o.flatten(p1)
	b := o.flatten(p2)
	d := perpToLine(a, b.Sub(a).Normalize()).Norm()
	return units.New(side(a, b)*d, units.Meters)
}

// yawDirection is the horizontal unit vector for a yaw measured
// counter-clockwise from east.
func yawDirection(yaw units.Angle) vector.Point3D {
	s, c := math.Sincos(yaw.Canonical())
	return vector.Point3D{X: c, Y: s}
}

// PerpCoordBearing returns the foot of the perpendicular from the origin onto
// the ray from p with the given yaw (counter-clockwise from east).
func (o *Origin) PerpCoordBearing(p Coordinate3D, yaw units.Angle) Coordinate3D {
	return o.ENUToGeodetic(perpToLine(o.flatten(p), yawDirection(yaw)))
}

// PerpDistanceBearing returns the distance from the origin to the line through
// p with the given yaw.
func (o *Origin) PerpDistanceBearing(p Coordinate3D, yaw units.Angle) units.Distance {
	return units.New(perpToLine(o.flatten(p), yawDirection(yaw)).Norm(), units.Meters)
}

// PerpDistanceBearingSigned is PerpDistanceBearing with the sign convention of
// PerpDistanceSigned.
func (o *Origin) PerpDistanceBearingSigned(p Coordinate3D, yaw units.Angle) units.Distance {
	a := o.flatten(p)
	n := yawDirection(yaw)
	return units.New(side(a, a.Add(n))*perpToLine(a, n).Norm(), units.Meters)
}

func side(a, b vector.Point3D) float64 {
	if a.Y*b.X-a.X*b.Y > 0 {
		return 1
	}
	return -1
}
