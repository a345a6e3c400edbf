// Package geometry provides the basic geometric types shared by the chart
// overlay layers.
package geometry

import (
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
// Layer code uses it for both pixel-space positions and vector math.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Add returns the sum of two points.
func (p Point2D) Add(other Point2D) Point2D {
	return Point2D{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point2D) Sub(other Point2D) Point2D {
	return Point2D{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point2D) Scale(factor float64) Point2D {
	return Point2D{X: p.X * factor, Y: p.Y * factor}
}

// Dot returns the dot product of two points treated as vectors.
func (p Point2D) Dot(other Point2D) float64 {
	return p.X*other.X + p.Y*other.Y
}

// Norm returns the vector length.
func (p Point2D) Norm() float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

// Unit returns the unit vector in the direction of p.
// The zero vector is returned unchanged.
func (p Point2D) Unit() Point2D {
	n := p.Norm()
	if n == 0 {
		return Point2D{}
	}
	return Point2D{X: p.X / n, Y: p.Y / n}
}

// Perp returns the counterclockwise perpendicular of p.
func (p Point2D) Perp() Point2D {
	return Point2D{X: -p.Y, Y: p.X}
}

// Midpoint returns the point halfway between p and other.
func (p Point2D) Midpoint(other Point2D) Point2D {
	return Point2D{X: (p.X + other.X) / 2, Y: (p.Y + other.Y) / 2}
}

// Bounds is a panel's pixel rectangle expressed by its edges.
type Bounds struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// NewBounds creates a Bounds from edge coordinates.
func NewBounds(left, right, top, bottom float64) Bounds {
	return Bounds{Left: left, Right: right, Top: top, Bottom: bottom}
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 {
	return b.Right - b.Left
}

// Height returns the vertical extent.
func (b Bounds) Height() float64 {
	return b.Bottom - b.Top
}

// Empty reports whether the bounds enclose no area.
func (b Bounds) Empty() bool {
	return b.Right <= b.Left || b.Bottom <= b.Top
}

// Contains returns true if the point is inside the bounds.
func (b Bounds) Contains(p Point2D) bool {
	return p.X >= b.Left && p.X <= b.Right &&
		p.Y >= b.Top && p.Y <= b.Bottom
}

// Union returns the smallest bounds containing both rectangles.
func (b Bounds) Union(other Bounds) Bounds {
	if b.Empty() {
		return other
	}
	if other.Empty() {
		return b
	}
	return Bounds{
		Left:   math.Min(b.Left, other.Left),
		Right:  math.Max(b.Right, other.Right),
		Top:    math.Min(b.Top, other.Top),
		Bottom: math.Max(b.Bottom, other.Bottom),
	}
}

// Inside reports whether b lies entirely within outer.
func (b Bounds) Inside(outer Bounds) bool {
	return b.Left >= outer.Left && b.Right <= outer.Right &&
		b.Top >= outer.Top && b.Bottom <= outer.Bottom
}

// Clamp returns p moved to the nearest point inside the bounds.
func (b Bounds) Clamp(p Point2D) Point2D {
	return Point2D{
		X: math.Min(math.Max(p.X, b.Left), b.Right),
		Y: math.Min(math.Max(p.Y, b.Top), b.Bottom),
	}
}

// Center returns the center point of the bounds.
func (b Bounds) Center() Point2D {
	return Point2D{X: (b.Left + b.Right) / 2, Y: (b.Top + b.Bottom) / 2}
}

// BoundingBox computes the axis-aligned bounds of a set of points.
func BoundingBox(points []Point2D) Bounds {
	if len(points) == 0 {
		return Bounds{}
	}
	b := Bounds{Left: points[0].X, Right: points[0].X, Top: points[0].Y, Bottom: points[0].Y}
	for _, p := range points[1:] {
		if p.X < b.Left {
			b.Left = p.X
		}
		if p.X > b.Right {
			b.Right = p.X
		}
		if p.Y < b.Top {
			b.Top = p.Y
		}
		if p.Y > b.Bottom {
			b.Bottom = p.Y
		}
	}
	return b
}
