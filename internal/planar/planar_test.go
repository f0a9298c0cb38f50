package planar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/westpoint-robotics/ros-cot/internal/vector"
)

func square(x0, y0, side float64) Ring {
	return Ring{
		{X: x0, Y: y0},
		{X: x0 + side, Y: y0},
		{X: x0 + side, Y: y0 + side},
		{X: x0, Y: y0 + side},
	}
}

func TestLocate(t *testing.T) {
	sq := square(0, 0, 10)
	tests := []struct {
		name string
		pt   vector.Point2D
		want Location
	}{
		{"center", vector.Point2D{X: 5, Y: 5}, Inside},
		{"edge", vector.Point2D{X: 10, Y: 5}, OnBoundary},
		{"closing edge", vector.Point2D{X: 0, Y: 5}, OnBoundary},
		{"vertex", vector.Point2D{X: 0, Y: 0}, OnBoundary},
		{"outside", vector.Point2D{X: 11, Y: 5}, Outside},
		{"far away", vector.Point2D{X: -100, Y: 300}, Outside},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Locate(tt.pt, sq))
		})
	}
}

func TestIntersection(t *testing.T) {
	a := square(0, 0, 10)
	b := square(5, 5, 10)

	rings := Intersection(a, b)
	require.Len(t, rings, 1)
	assert.InDelta(t, 25, Area(rings[0]), 1e-9)
	for _, p := range rings[0] {
		assert.NotEqual(t, Outside, Locate(p, a))
	}

	assert.Empty(t, Intersection(a, square(20, 20, 5)))
	assert.True(t, Intersects(a, b))
	assert.False(t, Intersects(a, square(20, 20, 5)))
	// Shared edge only.
	assert.True(t, Intersects(a, square(10, 0, 10)))
}

func TestAreaAndOrientation(t *testing.T) {
	ccw := square(0, 0, 4)
	cw := Ring{ccw[3], ccw[2], ccw[1], ccw[0]}

	assert.InDelta(t, 16, Area(ccw), 1e-12)
	assert.InDelta(t, 16, Area(cw), 1e-12)
	assert.InDelta(t, 16, SignedArea(ccw), 1e-12)
	assert.InDelta(t, -16, SignedArea(cw), 1e-12)

	assert.True(t, IsCounterClockwise(ccw))
	assert.False(t, IsClockwise(ccw))
	assert.True(t, IsClockwise(cw))

	c := Centroid(cw)
	assert.InDelta(t, 2, c.X, 1e-12)
	assert.InDelta(t, 2, c.Y, 1e-12)
	// The input ring is left untouched.
	assert.Len(t, cw, 4)

	lo, hi := Bounds(ccw)
	assert.Equal(t, vector.Point2D{}, lo)
	assert.Equal(t, vector.Point2D{X: 4, Y: 4}, hi)
}

func TestIsConvex(t *testing.T) {
	assert.True(t, IsConvex(square(0, 0, 1)))

	arrow := Ring{{X: 0, Y: 0}, {X: 4, Y: 2}, {X: 0, Y: 4}, {X: 1, Y: 2}}
	assert.False(t, IsConvex(arrow))

	bowtie := Ring{{X: 0, Y: 0}, {X: 2, Y: 2}, {X: 2, Y: 0}, {X: 0, Y: 2}}
	assert.False(t, IsConvex(bowtie))

	collinear := Ring{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	assert.True(t, IsConvex(collinear))

	assert.False(t, IsConvex(Ring{{X: 0, Y: 0}, {X: 1, Y: 1}}))
}
