package drawing

import (
	"chart-annotator/pkg/colorutil"
	"chart-annotator/pkg/geometry"
)

// Render repaints the annotation buffer: committed shapes, then the
// draft, then (while drawing mode is on) every endpoint handle, then
// the magnifier over a dragged endpoint.
func (l *Layer) Render() {
	if l.Destroyed() {
		return
	}
	l.Clear()
	l.repairState()

	area, ok := l.cs.ValidArea()
	if !ok {
		return
	}

	for _, d := range l.drawings {
		if !d.Visible {
			continue
		}
		l.renderShape(d, area, d.ID == l.selectedID, d.ID == l.hoveredID)
	}
	if l.session.kind == sessionDrafting && l.session.draft != nil {
		l.renderDraft(l.session.draft, area)
	}
	if l.drawingMode {
		l.renderEndpoints()
	}
	if l.session.kind == sessionEditing && l.session.dragging {
		l.renderMagnifier()
	}
}

// repairState clears logically inconsistent session leftovers instead
// of letting them crash or ghost-render.
func (l *Layer) repairState() {
	if l.session.kind != sessionDrafting && l.session.draft != nil {
		log.Warn("stale draft outside drafting session, clearing")
		l.session.draft = nil
	}
	if l.session.kind == sessionDrafting && l.session.draft == nil {
		l.session = session{}
	}
	if l.session.kind == sessionEditing && l.byID(l.session.editID) == nil {
		log.Warn("editing a missing drawing, resetting session")
		l.session = session{}
	}
}

func (l *Layer) renderShape(d *Drawing, area geometry.Bounds, selected, hovered bool) {
	col := d.Color
	if hovered && !selected {
		col = colorutil.Blend(col, colorutil.White, 0.35)
	}
	width := d.LineWidth
	if selected {
		width++
	}

	switch d.Type {
	case ToolRectangle:
		if len(d.Points) >= 2 {
			r := geometry.BoundingBox(d.Points[:2])
			l.FillRect(r, colorutil.WithAlpha(col, 40))
			l.StrokeRect(r, col, width)
		}
	case ToolAngleBox:
		if len(d.Points) >= 2 {
			l.StrokeRect(geometry.BoundingBox(d.Points[:2]), col, width)
			l.DrawLine(d.Points[0], d.Points[1], col, width)
		}
	case ToolPriceChannel:
		if len(d.Points) >= 2 {
			l.DrawLine(d.Points[0], d.Points[1], col, width)
		}
		if len(d.Points) >= 3 {
			offset := channelOffset(d)
			_, perp := channelMidline(d.Points[0], d.Points[1])
			for _, o := range []float64{offset, -offset} {
				l.DrawDashedLine(
					geometry.OffsetAlong(d.Points[0], perp, o),
					geometry.OffsetAlong(d.Points[1], perp, o),
					col, width, 6, 4)
			}
		}
	default:
		for _, seg := range d.segments(area) {
			l.DrawLine(seg[0], seg[1], col, width)
		}
	}
}

// renderDraft paints the in-progress shape with the pointer position as
// the provisional next anchor.
func (l *Layer) renderDraft(draft *Drawing, area geometry.Bounds) {
	preview := draft.Clone()
	if len(preview.Points) < preview.Type.RequiredAnchors() {
		preview.Points = append(preview.Points, l.constrainAnchor(preview, l.pointerPos))
	}

	switch preview.Type {
	case ToolHorizontalRay:
		// The anchor's value never moves; the pointer only sets the extent.
		anchor := preview.Points[0]
		end := geometry.NewPoint2D(l.pointerPos.X, anchor.Y)
		if end.X < anchor.X {
			end.X = anchor.X
		}
		l.DrawDashedLine(anchor, end, preview.Color, preview.LineWidth, 6, 4)
	case ToolHorizontalLine:
		y := preview.Points[0].Y
		l.DrawDashedLine(
			geometry.NewPoint2D(area.Left, y),
			geometry.NewPoint2D(area.Right, y),
			preview.Color, preview.LineWidth, 6, 4)
	default:
		if len(preview.Points) >= 2 {
			preview.Color = colorutil.WithAlpha(preview.Color, 170)
			l.renderShape(preview, area, false, false)
		}
	}
}

// renderEndpoints draws every handle: the edited shape's first, then
// the remaining visible shapes', then the draft's.
func (l *Layer) renderEndpoints() {
	if edited := l.byID(l.session.editID); edited != nil && l.session.kind == sessionEditing {
		l.renderHandles(edited, true)
	}
	for _, d := range l.drawings {
		if !d.Visible || (l.session.kind == sessionEditing && d.ID == l.session.editID) {
			continue
		}
		l.renderHandles(d, d.ID == l.selectedID)
	}
	if l.session.kind == sessionDrafting && l.session.draft != nil {
		l.renderHandles(l.session.draft, true)
	}
}

func (l *Layer) renderHandles(d *Drawing, highlighted bool) {
	r := l.opts.EndpointRadius
	for _, p := range d.Points {
		fill := colorutil.Black
		if highlighted {
			fill = d.Color
		}
		l.FillCircle(p, r, fill)
		l.StrokeCircle(p, r, colorutil.White, 1)
	}
}

// renderMagnifier paints a zoomed circle of the chart raster around the
// endpoint being dragged, offset so the finger does not cover it.
func (l *Layer) renderMagnifier() {
	if l.chartRaster == nil {
		return
	}
	src := l.chartRaster()
	if src == nil {
		return
	}
	d := l.byID(l.session.editID)
	if d == nil || l.session.editIndex >= len(d.Points) {
		return
	}
	target := d.Points[l.session.editIndex]
	radius := l.opts.MagnifierRadius

	dst := target.Add(geometry.NewPoint2D(-radius-20, -radius-20))
	w, h := l.Size()
	view := geometry.NewBounds(radius, w-radius, radius, h-radius)
	dst = view.Clamp(dst)

	l.FillCircle(dst, radius+2, colorutil.Black)
	l.CopyScaled(src, target, dst, radius, l.opts.MagnifierZoom)
	l.StrokeCircle(dst, radius, colorutil.White, 1)
	tick := 6.0
	l.DrawLine(dst.Add(geometry.NewPoint2D(-tick, 0)), dst.Add(geometry.NewPoint2D(tick, 0)), colorutil.White, 1)
	l.DrawLine(dst.Add(geometry.NewPoint2D(0, -tick)), dst.Add(geometry.NewPoint2D(0, tick)), colorutil.White, 1)
}
