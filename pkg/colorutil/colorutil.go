// Package colorutil provides shared color utilities for the chart annotator.
package colorutil

import (
	"image/color"
)

// Common overlay colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Blue    = color.RGBA{R: 64, G: 128, B: 255, A: 255}
	Green   = color.RGBA{R: 38, G: 166, B: 91, A: 255}
	Red     = color.RGBA{R: 214, G: 73, B: 73, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Orange  = color.RGBA{R: 255, G: 152, B: 0, A: 255}
	Gray    = color.RGBA{R: 120, G: 120, B: 120, A: 255}
)

// WithAlpha returns c with its alpha channel replaced.
func WithAlpha(c color.RGBA, a uint8) color.RGBA {
	c.A = a
	return c
}

// Darken scales the RGB channels toward black by the given factor (0..1).
func Darken(c color.RGBA, factor float64) color.RGBA {
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	scale := 1 - factor
	return color.RGBA{
		R: uint8(float64(c.R) * scale),
		G: uint8(float64(c.G) * scale),
		B: uint8(float64(c.B) * scale),
		A: c.A,
	}
}

// Blend mixes src over dst at the given opacity (0..1), ignoring the
// source alpha channel. Matches the layer compositing blend.
func Blend(dst, src color.RGBA, opacity float64) color.RGBA {
	if opacity <= 0 {
		return dst
	}
	if opacity >= 1 {
		return src
	}
	inv := 1 - opacity
	return color.RGBA{
		R: uint8(float64(src.R)*opacity + float64(dst.R)*inv),
		G: uint8(float64(src.G)*opacity + float64(dst.G)*inv),
		B: uint8(float64(src.B)*opacity + float64(dst.B)*inv),
		A: 255,
	}
}
