// Package layer provides the layered canvas infrastructure: per-layer
// raster buffers, a z-ordered compositor with coalesced rendering, and
// top-down pointer event routing.
package layer

import (
	"image"
	"image/color"
)

// Layer is the contract every canvas layer fulfills.
type Layer interface {
	// Name identifies the layer in logs.
	Name() string
	// ZIndex orders layers; higher values render later and receive events first.
	ZIndex() int
	// Render repaints the layer's buffer.
	Render()
	// HandleEvent processes a pointer event; true means consumed.
	HandleEvent(ev PointerEvent) bool
	// Resize adjusts the layer's buffer to a new CSS size.
	Resize(w, h float64)
	// Buffer exposes the layer's pixels for compositing; may be nil.
	Buffer() *image.RGBA
	// Destroy releases the layer's resources. Idempotent.
	Destroy()
}

// BaseLayer owns one raster buffer per layer: scale-aware sizing, clearing,
// and painting primitives operating in CSS pixel units. Concrete layers
// embed it and implement Render/HandleEvent.
type BaseLayer struct {
	name      string
	zIndex    int
	width     float64 // CSS pixels
	height    float64
	scale     float64 // device pixels per CSS pixel
	buf       *image.RGBA
	destroyed bool
}

// NewBaseLayer creates a layer buffer of the given CSS size.
// A scale of 0 defaults to 1.
func NewBaseLayer(name string, zIndex int, w, h, scale float64) *BaseLayer {
	if scale <= 0 {
		scale = 1
	}
	b := &BaseLayer{name: name, zIndex: zIndex, scale: scale}
	b.Resize(w, h)
	return b
}

// Name returns the layer name.
func (b *BaseLayer) Name() string { return b.name }

// ZIndex returns the layer's z position.
func (b *BaseLayer) ZIndex() int { return b.zIndex }

// Size returns the CSS size.
func (b *BaseLayer) Size() (w, h float64) { return b.width, b.height }

// Scale returns the device pixel ratio of the buffer.
func (b *BaseLayer) Scale() float64 { return b.scale }

// Buffer returns the backing pixels, nil after Destroy.
func (b *BaseLayer) Buffer() *image.RGBA { return b.buf }

// Destroyed reports whether Destroy has run.
func (b *BaseLayer) Destroyed() bool { return b.destroyed }

// Resize reallocates the buffer at CSS size x scale.
func (b *BaseLayer) Resize(w, h float64) {
	if b.destroyed {
		return
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	b.width = w
	b.height = h
	b.buf = image.NewRGBA(image.Rect(0, 0, int(w*b.scale), int(h*b.scale)))
}

// SetScale changes the device pixel ratio and reallocates the buffer.
func (b *BaseLayer) SetScale(scale float64) {
	if scale <= 0 || b.destroyed {
		return
	}
	b.scale = scale
	b.Resize(b.width, b.height)
}

// Clear wipes the buffer to transparent.
func (b *BaseLayer) Clear() {
	if b.buf == nil {
		return
	}
	pix := b.buf.Pix
	for i := range pix {
		pix[i] = 0
	}
}

// Destroy releases the buffer. Safe to call more than once.
func (b *BaseLayer) Destroy() {
	b.destroyed = true
	b.buf = nil
}

// px converts a CSS coordinate to a device pixel.
func (b *BaseLayer) px(v float64) int {
	return int(v*b.scale + 0.5)
}

// setPixel writes one device pixel with bounds checking.
func (b *BaseLayer) setPixel(x, y int, col color.RGBA) {
	if b.buf == nil {
		return
	}
	r := b.buf.Bounds()
	if x < r.Min.X || x >= r.Max.X || y < r.Min.Y || y >= r.Max.Y {
		return
	}
	b.buf.SetRGBA(x, y, col)
}
