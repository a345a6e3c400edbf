package drawing

import (
	"image/color"

	"github.com/google/uuid"

	"chart-annotator/internal/coords"
	"chart-annotator/internal/series"
	"chart-annotator/pkg/colorutil"
	"chart-annotator/pkg/geometry"
)

// Config carries the per-type options a drawing keeps beyond its points.
type Config struct {
	// HalfWidth is the price channel's perpendicular half-width in pixels,
	// kept as the committed default for point trimming and type cycling.
	HalfWidth float64 `json:"half_width,omitempty"`
}

// Drawing is one committed or in-progress annotation. Data points are
// the durable representation; pixel points are a cache recomputed from
// them whenever the projection changes.
type Drawing struct {
	ID         string              `json:"id"`
	Type       ToolType            `json:"type"`
	Points     []geometry.Point2D  `json:"points"`
	DataPoints []series.DataPoint  `json:"data_points"`
	Color      color.RGBA          `json:"color"`
	LineWidth  float64             `json:"line_width"`
	Visible    bool                `json:"visible"`
	Locked     bool                `json:"locked"`
	Config     Config              `json:"config"`
}

// newDrawing creates an empty drawing of the given type.
func newDrawing(t ToolType, lineWidth float64) *Drawing {
	return &Drawing{
		ID:        uuid.NewString(),
		Type:      t,
		Color:     colorutil.Yellow,
		LineWidth: lineWidth,
		Visible:   true,
	}
}

// Clone deep-copies the drawing for history snapshots.
func (d *Drawing) Clone() *Drawing {
	out := *d
	out.Points = make([]geometry.Point2D, len(d.Points))
	copy(out.Points, d.Points)
	out.DataPoints = make([]series.DataPoint, len(d.DataPoints))
	copy(out.DataPoints, d.DataPoints)
	return &out
}

// Complete reports whether the drawing reached its type's point count.
func (d *Drawing) Complete() bool {
	return len(d.Points) >= d.Type.RequiredPoints()
}

// Reproject recomputes every pixel point from its data point. Points
// whose conversion fails keep their cached pixel position for the frame.
func (d *Drawing) Reproject(cs *coords.System) {
	for i, dp := range d.DataPoints {
		if i >= len(d.Points) {
			break
		}
		if px, ok := cs.DataToPixel(dp, coords.PanelPrice); ok {
			d.Points[i] = px
		}
	}
	if d.Type == ToolPriceChannel && len(d.Points) == 3 {
		d.Points[2] = channelControlPoint(d.Points[0], d.Points[1], d.Points[2])
	}
}

// syncDataPoints refreshes the durable data points from the pixel cache
// after a pixel-space mutation (draft placement, endpoint drag).
func (d *Drawing) syncDataPoints(cs *coords.System, data *series.Series) {
	if len(d.DataPoints) != len(d.Points) {
		d.DataPoints = make([]series.DataPoint, len(d.Points))
	}
	for i, p := range d.Points {
		dp, ok := cs.PixelToData(p, coords.PanelPrice)
		if !ok {
			continue
		}
		dp.Index = data.ClampIndex(dp.Index)
		if bar := data.At(dp.Index); bar != nil {
			dp.Date = bar.TradeDate
		}
		d.DataPoints[i] = dp
	}
}

// channelMidline returns the midpoint and unit perpendicular of the
// channel's center line.
func channelMidline(a, b geometry.Point2D) (mid, perp geometry.Point2D) {
	return a.Midpoint(b), b.Sub(a).Unit().Perp()
}

// channelControlPoint re-projects a dragged or reprojected third point
// onto the perpendicular line through the center-line midpoint: the
// control point can only slide along the channel's width axis.
func channelControlPoint(a, b, p geometry.Point2D) geometry.Point2D {
	mid, perp := channelMidline(a, b)
	offset := geometry.ProjectOntoLine(p, mid, perp)
	return geometry.OffsetAlong(mid, perp, offset)
}

// channelOffset returns the signed half-width of the channel in pixels.
func channelOffset(d *Drawing) float64 {
	if len(d.Points) < 3 {
		return d.Config.HalfWidth
	}
	mid, perp := channelMidline(d.Points[0], d.Points[1])
	return geometry.ProjectOntoLine(d.Points[2], mid, perp)
}

// segments returns the stroke segments used for hit-testing.
func (d *Drawing) segments(area geometry.Bounds) [][2]geometry.Point2D {
	pts := d.Points
	switch d.Type {
	case ToolHorizontalRay:
		if len(pts) < 1 {
			return nil
		}
		return [][2]geometry.Point2D{{pts[0], geometry.NewPoint2D(area.Right, pts[0].Y)}}
	case ToolHorizontalLine:
		if len(pts) < 1 {
			return nil
		}
		return [][2]geometry.Point2D{{
			geometry.NewPoint2D(area.Left, pts[0].Y),
			geometry.NewPoint2D(area.Right, pts[0].Y),
		}}
	case ToolTrendline:
		if len(pts) < 2 {
			return nil
		}
		return [][2]geometry.Point2D{{pts[0], pts[1]}}
	case ToolAngleBox, ToolRectangle:
		if len(pts) < 2 {
			return nil
		}
		tl := geometry.NewPoint2D(pts[0].X, pts[0].Y)
		br := geometry.NewPoint2D(pts[1].X, pts[1].Y)
		tr := geometry.NewPoint2D(br.X, tl.Y)
		bl := geometry.NewPoint2D(tl.X, br.Y)
		segs := [][2]geometry.Point2D{{tl, tr}, {tr, br}, {br, bl}, {bl, tl}}
		if d.Type == ToolAngleBox {
			segs = append(segs, [2]geometry.Point2D{pts[0], pts[1]})
		}
		return segs
	case ToolPriceChannel:
		if len(pts) < 2 {
			return nil
		}
		segs := [][2]geometry.Point2D{{pts[0], pts[1]}}
		if len(pts) >= 3 {
			offset := channelOffset(d)
			_, perp := channelMidline(pts[0], pts[1])
			for _, o := range []float64{offset, -offset} {
				segs = append(segs, [2]geometry.Point2D{
					geometry.OffsetAlong(pts[0], perp, o),
					geometry.OffsetAlong(pts[1], perp, o),
				})
			}
		}
		return segs
	}
	return nil
}

// hitStroke reports whether p lies within tolerance of the stroke.
func (d *Drawing) hitStroke(p geometry.Point2D, area geometry.Bounds, tolerance float64) bool {
	for _, seg := range d.segments(area) {
		if geometry.DistanceToSegment(p, seg[0], seg[1]) <= tolerance {
			return true
		}
	}
	return false
}
