package crosshair

import (
	"fmt"

	"chart-annotator/internal/coords"
	"chart-annotator/pkg/colorutil"
	"chart-annotator/pkg/geometry"
)

// Guide line dash pattern in CSS pixels.
const (
	guideDash = 4.0
	guideGap  = 3.0
	labelPad  = 3.0
)

// Render repaints the crosshair buffer: guide lines clipped to the
// combined panel bounds, then the bar's date label and the value label
// for the panel under the cursor. Snap cursors are drawn before free
// cursors so free stays visually on top.
func (l *Layer) Render() {
	if l.Destroyed() {
		return
	}
	l.Clear()

	mode := l.modes.CurrentMode()
	if mode == ModeNone || len(l.crosshairs) == 0 {
		return
	}
	area, ok := l.cs.ValidArea()
	if !ok {
		return
	}

	for _, c := range l.visibleCursors(mode) {
		l.renderCursor(c, area)
	}
}

// visibleCursors filters the cursor list by mode, snap kinds first.
func (l *Layer) visibleCursors(mode Mode) []*Crosshair {
	var snaps, frees []*Crosshair
	for _, c := range l.crosshairs {
		switch {
		case c.Kind == KindFree && (mode == ModeFree || mode == ModeDual):
			frees = append(frees, c)
		case c.Kind == KindSnap && (mode == ModeSnap || mode == ModeDual):
			snaps = append(snaps, c)
		case c.Kind == KindFixed:
			snaps = append(snaps, c)
		}
	}
	return append(snaps, frees...)
}

func (l *Layer) renderCursor(c *Crosshair, area geometry.Bounds) {
	pos := area.Clamp(c.Pos)

	l.DrawDashedLine(
		geometry.NewPoint2D(pos.X, area.Top),
		geometry.NewPoint2D(pos.X, area.Bottom),
		c.Color, 1, guideDash, guideGap)
	l.DrawDashedLine(
		geometry.NewPoint2D(area.Left, pos.Y),
		geometry.NewPoint2D(area.Right, pos.Y),
		c.Color, 1, guideDash, guideGap)

	l.drawDateLabel(c, area)
	l.drawValueLabel(c, pos, area)
}

// drawDateLabel centers the bar's trade date under the bar's pixel
// center, so the label aligns to a bar even when the cursor does not.
func (l *Layer) drawDateLabel(c *Crosshair, area geometry.Bounds) {
	if c.Data == nil || c.Data.Date == "" {
		return
	}
	barPos, ok := l.cs.DataToPixel(*c.Data, coords.PanelPrice)
	if !ok {
		return
	}
	text := c.Data.Date
	w, h := l.TextSize(text)

	x := barPos.X - w/2
	if x < area.Left {
		x = area.Left
	}
	if x+w > area.Right {
		x = area.Right - w
	}
	y := area.Bottom - h - labelPad
	l.drawLabel(text, geometry.NewPoint2D(x, y), c)
}

// drawValueLabel puts the value of the panel under the cursor Y on the
// axis side. The label is dropped when it would not fit the container.
func (l *Layer) drawValueLabel(c *Crosshair, pos geometry.Point2D, area geometry.Bounds) {
	panel := l.cs.PanelAt(pos)
	if panel < 0 {
		return
	}
	dp, ok := l.cs.PixelToData(pos, panel)
	if !ok {
		return
	}
	text := fmt.Sprintf("%.2f", dp.Value)
	if panel == coords.PanelVolume {
		text = fmt.Sprintf("%.0f", dp.Value)
	}
	w, h := l.TextSize(text)

	cw, _ := l.Size()
	x := area.Right + labelPad
	if x+w+labelPad > cw {
		x = area.Right - w - labelPad
		if x < area.Left {
			return
		}
	}
	y := pos.Y - h/2
	if y < area.Top || y+h > area.Bottom {
		return
	}
	l.drawLabel(text, geometry.NewPoint2D(x, y), c)
}

// drawLabel paints text over a filled backing box so it stays readable
// on top of the chart.
func (l *Layer) drawLabel(text string, topLeft geometry.Point2D, c *Crosshair) {
	w, h := l.TextSize(text)
	box := geometry.NewBounds(
		topLeft.X-labelPad, topLeft.X+w+labelPad,
		topLeft.Y-labelPad, topLeft.Y+h+labelPad)
	l.FillRect(box, colorutil.WithAlpha(colorutil.Black, 210))
	l.StrokeRect(box, c.Color, 1)
	l.DrawText(text, topLeft, colorutil.White)
}
