package layer

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"chart-annotator/pkg/geometry"
)

// Painting primitives. All coordinates are CSS pixels; the base layer
// scales them to device pixels. Lines use Bresenham with a square pen.

// DrawLine draws a line between two points with the given stroke width.
func (b *BaseLayer) DrawLine(p1, p2 geometry.Point2D, col color.RGBA, width float64) {
	b.drawLinePx(b.px(p1.X), b.px(p1.Y), b.px(p2.X), b.px(p2.Y), col, b.penSize(width))
}

// DrawDashedLine draws a line with the given dash and gap lengths.
func (b *BaseLayer) DrawDashedLine(p1, p2 geometry.Point2D, col color.RGBA, width, dash, gap float64) {
	if dash <= 0 || gap < 0 {
		b.DrawLine(p1, p2, col, width)
		return
	}
	total := p1.Distance(p2)
	if total == 0 {
		return
	}
	dir := p2.Sub(p1).Unit()
	pos := 0.0
	for pos < total {
		end := pos + dash
		if end > total {
			end = total
		}
		b.DrawLine(p1.Add(dir.Scale(pos)), p1.Add(dir.Scale(end)), col, width)
		pos = end + gap
	}
}

// FillCircle fills a circle centered at c.
func (b *BaseLayer) FillCircle(c geometry.Point2D, radius float64, col color.RGBA) {
	cx, cy := b.px(c.X), b.px(c.Y)
	r := b.px(radius)
	r2 := r * r
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r2 {
				b.setPixel(x, y, col)
			}
		}
	}
}

// StrokeCircle draws a circle outline of the given stroke width.
func (b *BaseLayer) StrokeCircle(c geometry.Point2D, radius float64, col color.RGBA, width float64) {
	cx, cy := b.px(c.X), b.px(c.Y)
	r := b.px(radius)
	pen := b.penSize(width)
	inner := r - pen
	if inner < 0 {
		inner = 0
	}
	r2 := r * r
	inner2 := inner * inner
	for y := cy - r; y <= cy+r; y++ {
		for x := cx - r; x <= cx+r; x++ {
			dx, dy := x-cx, y-cy
			d2 := dx*dx + dy*dy
			if d2 <= r2 && d2 >= inner2 {
				b.setPixel(x, y, col)
			}
		}
	}
}

// FillRect fills an axis-aligned rectangle.
func (b *BaseLayer) FillRect(r geometry.Bounds, col color.RGBA) {
	x1, y1 := b.px(r.Left), b.px(r.Top)
	x2, y2 := b.px(r.Right), b.px(r.Bottom)
	for y := y1; y <= y2; y++ {
		for x := x1; x <= x2; x++ {
			b.setPixel(x, y, col)
		}
	}
}

// StrokeRect draws a rectangle outline.
func (b *BaseLayer) StrokeRect(r geometry.Bounds, col color.RGBA, width float64) {
	tl := geometry.NewPoint2D(r.Left, r.Top)
	tr := geometry.NewPoint2D(r.Right, r.Top)
	br := geometry.NewPoint2D(r.Right, r.Bottom)
	bl := geometry.NewPoint2D(r.Left, r.Bottom)
	b.DrawLine(tl, tr, col, width)
	b.DrawLine(tr, br, col, width)
	b.DrawLine(br, bl, col, width)
	b.DrawLine(bl, tl, col, width)
}

// DrawText renders s with its top-left corner at p using the built-in
// bitmap face. Returns nothing; callers position with TextSize.
func (b *BaseLayer) DrawText(s string, p geometry.Point2D, col color.RGBA) {
	if b.buf == nil || s == "" {
		return
	}
	face := basicfont.Face7x13
	d := font.Drawer{
		Dst:  b.buf,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(b.px(p.X), b.px(p.Y)+face.Ascent),
	}
	d.DrawString(s)
}

// TextSize returns the rendered width and height of s in CSS pixels.
func (b *BaseLayer) TextSize(s string) (w, h float64) {
	face := basicfont.Face7x13
	adv := font.MeasureString(face, s)
	return float64(adv.Round()) / b.scale, float64(face.Height) / b.scale
}

// CopyScaled samples a square region of src centered at srcCenter and
// paints it zoomed into a circular area of this layer centered at dst.
// Used by the endpoint-drag magnifier.
func (b *BaseLayer) CopyScaled(src *image.RGBA, srcCenter, dst geometry.Point2D, radius, zoom float64) {
	if b.buf == nil || src == nil || zoom <= 0 {
		return
	}
	cx, cy := b.px(dst.X), b.px(dst.Y)
	r := b.px(radius)
	r2 := r * r
	srcBounds := src.Bounds()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r2 {
				continue
			}
			sx := int(srcCenter.X*b.scale) + int(float64(dx)/zoom)
			sy := int(srcCenter.Y*b.scale) + int(float64(dy)/zoom)
			if sx < srcBounds.Min.X || sx >= srcBounds.Max.X ||
				sy < srcBounds.Min.Y || sy >= srcBounds.Max.Y {
				continue
			}
			b.setPixel(cx+dx, cy+dy, src.RGBAAt(sx, sy))
		}
	}
}

// penSize converts a CSS stroke width to a device pen size of at least 1.
func (b *BaseLayer) penSize(width float64) int {
	pen := int(width * b.scale)
	if pen < 1 {
		pen = 1
	}
	return pen
}

// drawLinePx draws a device-pixel line using Bresenham's algorithm with a
// square pen of the given thickness.
func (b *BaseLayer) drawLinePx(x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy
	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				b.setPixel(x1+s, y1+t, col)
			}
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}
