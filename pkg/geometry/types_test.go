package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPointVectorOps(t *testing.T) {
	a := NewPoint2D(3, 4)
	assert.Equal(t, 5.0, a.Norm())
	assert.Equal(t, 5.0, NewPoint2D(0, 0).Distance(a))

	u := a.Unit()
	assert.InDelta(t, 1.0, u.Norm(), 1e-9)
	assert.Equal(t, Point2D{}, Point2D{}.Unit())

	perp := NewPoint2D(1, 0).Perp()
	assert.Equal(t, NewPoint2D(0, 1), perp)
	assert.InDelta(t, 0.0, perp.Dot(NewPoint2D(1, 0)), 1e-9)

	assert.Equal(t, NewPoint2D(2, 3), NewPoint2D(0, 0).Midpoint(NewPoint2D(4, 6)))
}

func TestBoundsContainsAndClamp(t *testing.T) {
	b := NewBounds(10, 110, 20, 80)
	assert.Equal(t, 100.0, b.Width())
	assert.Equal(t, 60.0, b.Height())
	assert.False(t, b.Empty())

	assert.True(t, b.Contains(NewPoint2D(10, 20)))
	assert.True(t, b.Contains(NewPoint2D(60, 50)))
	assert.False(t, b.Contains(NewPoint2D(111, 50)))

	clamped := b.Clamp(NewPoint2D(-5, 200))
	assert.Equal(t, NewPoint2D(10, 80), clamped)
}

func TestBoundsUnion(t *testing.T) {
	price := NewBounds(0, 100, 0, 70)
	volume := NewBounds(0, 100, 72, 100)
	combined := price.Union(volume)
	assert.Equal(t, NewBounds(0, 100, 0, 100), combined)

	empty := Bounds{}
	assert.Equal(t, price, price.Union(empty))
	assert.Equal(t, price, empty.Union(price))
}

func TestBoundsInside(t *testing.T) {
	outer := NewBounds(0, 100, 0, 100)
	assert.True(t, NewBounds(10, 90, 10, 90).Inside(outer))
	assert.False(t, NewBounds(-1, 90, 10, 90).Inside(outer))
	assert.False(t, NewBounds(10, 90, 10, 101).Inside(outer))
}

func TestBoundingBox(t *testing.T) {
	box := BoundingBox([]Point2D{{X: 5, Y: 9}, {X: -2, Y: 3}, {X: 7, Y: 4}})
	assert.Equal(t, NewBounds(-2, 7, 3, 9), box)
	assert.Equal(t, Bounds{}, BoundingBox(nil))
}

func TestDistanceToSegment(t *testing.T) {
	a := NewPoint2D(0, 0)
	b := NewPoint2D(10, 0)

	assert.InDelta(t, 3.0, DistanceToSegment(NewPoint2D(5, 3), a, b), 1e-9)
	// Beyond the endpoints the distance is to the nearest endpoint.
	assert.InDelta(t, 5.0, DistanceToSegment(NewPoint2D(-3, 4), a, b), 1e-9)
	assert.InDelta(t, math.Sqrt(2), DistanceToSegment(NewPoint2D(11, 1), a, b), 1e-9)
	// Degenerate segment.
	assert.InDelta(t, 5.0, DistanceToSegment(NewPoint2D(3, 4), a, a), 1e-9)
}

func TestProjectOntoLine(t *testing.T) {
	origin := NewPoint2D(5, 5)
	dir := NewPoint2D(0, 1)

	assert.InDelta(t, 3.0, ProjectOntoLine(NewPoint2D(40, 8), origin, dir), 1e-9)
	assert.InDelta(t, -5.0, ProjectOntoLine(NewPoint2D(0, 0), origin, dir), 1e-9)

	moved := OffsetAlong(origin, dir, 3)
	assert.Equal(t, NewPoint2D(5, 8), moved)
}
