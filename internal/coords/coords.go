// Package coords provides the coordinate-transform abstraction between
// data space (bar index + value) and pixel space. All conversions delegate
// to the host chart's projection and recover defensively: a failing host
// yields a zero point and ok=false, never a panic.
package coords

import (
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"chart-annotator/internal/series"
	"chart-annotator/pkg/geometry"
)

var log = logrus.WithField("component", "coords")

// Panel indexes of the host chart.
const (
	PanelPrice  = 0
	PanelVolume = 1
)

// PanelSpan describes one panel's vertical share of the container as
// fractions of the container height.
type PanelSpan struct {
	Top    float64
	Height float64
}

// Projection is the fallible port onto the host chart's own projection.
// Implementations may return ok=false (or panic) at any time, e.g. while
// the host is not fully initialized.
type Projection interface {
	// DataToPixel converts a data point to a pixel position within the panel.
	DataToPixel(dp series.DataPoint, panel int) (geometry.Point2D, bool)
	// PixelToData converts a pixel position back to a data point.
	PixelToData(p geometry.Point2D, panel int) (series.DataPoint, bool)
	// PanelLayout returns the declarative panel layout, or nil when the
	// host does not expose one.
	PanelLayout() []PanelSpan
	// ContainerSize returns the host container size in pixels.
	ContainerSize() (w, h float64)
	// VisibleRange returns the first and last visible bar index.
	VisibleRange() (from, to int, ok bool)
}

// System wraps a Projection with the defensive failure policy callers rely
// on: null/zero results mean "try the other panel" or "skip this frame".
type System struct {
	proj Projection
	data *series.Series
}

// NewSystem creates a coordinate system over the given projection.
// The series is used only for probe points in the bounds fallback.
func NewSystem(proj Projection, data *series.Series) *System {
	return &System{proj: proj, data: data}
}

// SetSeries replaces the series used for probing.
func (s *System) SetSeries(data *series.Series) {
	s.data = data
}

// DataToPixel converts a data point to pixel space.
// Returns the zero point and false on any host failure.
func (s *System) DataToPixel(dp series.DataPoint, panel int) (pt geometry.Point2D, ok bool) {
	if s == nil || s.proj == nil {
		return geometry.Point2D{}, false
	}
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Debug("dataToPixel recovered")
			pt, ok = geometry.Point2D{}, false
		}
	}()
	return s.proj.DataToPixel(dp, panel)
}

// PixelToData converts a pixel position to data space.
// Returns ok=false on any host failure.
func (s *System) PixelToData(p geometry.Point2D, panel int) (dp series.DataPoint, ok bool) {
	if s == nil || s.proj == nil {
		return series.DataPoint{}, false
	}
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Debug("pixelToData recovered")
			dp, ok = series.DataPoint{}, false
		}
	}()
	return s.proj.PixelToData(p, panel)
}

// Bounds returns the pixel rectangle of a panel. It prefers the host's
// declarative panel layout and falls back to probing two data points,
// fitting the linear index/value map, and taking the enclosing rectangle.
// The result is validated to lie within the container.
func (s *System) Bounds(panel int) (geometry.Bounds, bool) {
	if s == nil || s.proj == nil {
		return geometry.Bounds{}, false
	}
	w, h := s.containerSize()
	if w <= 0 || h <= 0 {
		return geometry.Bounds{}, false
	}
	container := geometry.NewBounds(0, w, 0, h)

	if spans := s.panelLayout(); panel >= 0 && panel < len(spans) {
		span := spans[panel]
		b := geometry.NewBounds(0, w, span.Top*h, (span.Top+span.Height)*h)
		if !b.Empty() && b.Inside(container) {
			return b, true
		}
	}

	b, ok := s.probeBounds(panel, container)
	if !ok {
		return geometry.Bounds{}, false
	}
	return b, true
}

// ValidArea returns the union of the price and volume panel bounds,
// the rectangle the overlay layers react to.
func (s *System) ValidArea() (geometry.Bounds, bool) {
	price, okP := s.Bounds(PanelPrice)
	volume, okV := s.Bounds(PanelVolume)
	switch {
	case okP && okV:
		return price.Union(volume), true
	case okP:
		return price, true
	case okV:
		return volume, true
	default:
		return geometry.Bounds{}, false
	}
}

// PanelAt returns the panel index whose bounds contain the point, or -1.
func (s *System) PanelAt(p geometry.Point2D) int {
	for _, panel := range []int{PanelPrice, PanelVolume} {
		if b, ok := s.Bounds(panel); ok && b.Contains(p) {
			return panel
		}
	}
	return -1
}

func (s *System) containerSize() (w, h float64) {
	defer func() {
		if r := recover(); r != nil {
			w, h = 0, 0
		}
	}()
	return s.proj.ContainerSize()
}

func (s *System) panelLayout() (spans []PanelSpan) {
	defer func() {
		if r := recover(); r != nil {
			spans = nil
		}
	}()
	return s.proj.PanelLayout()
}

func (s *System) visibleRange() (from, to int, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			from, to, ok = 0, 0, false
		}
	}()
	return s.proj.VisibleRange()
}

// probeBounds converts two interior data points, fits the linear
// index->x and value->y maps, and evaluates them at the extremes of the
// visible range to recover the panel rectangle.
func (s *System) probeBounds(panel int, container geometry.Bounds) (geometry.Bounds, bool) {
	from, to, ok := s.visibleRange()
	if !ok || s.data == nil || s.data.Len() == 0 {
		return geometry.Bounds{}, false
	}
	low, high, ok := s.probeSpan(panel, from, to)
	if !ok {
		return geometry.Bounds{}, false
	}

	span := to - from
	i1 := from + span/4
	i2 := from + 3*span/4
	if i1 == i2 {
		i2 = i1 + 1
	}
	v1 := low + (high-low)*0.25
	v2 := low + (high-low)*0.75

	p1, ok1 := s.DataToPixel(series.DataPoint{Index: i1, Value: v1}, panel)
	p2, ok2 := s.DataToPixel(series.DataPoint{Index: i2, Value: v2}, panel)
	if !ok1 || !ok2 {
		return geometry.Bounds{}, false
	}

	ax, bx, okX := fitLinear(float64(i1), p1.X, float64(i2), p2.X)
	ay, by, okY := fitLinear(v1, p1.Y, v2, p2.Y)
	if !okX || !okY {
		return geometry.Bounds{}, false
	}

	left := ax*float64(from) + bx
	right := ax*float64(to) + bx
	top := ay*high + by
	bottom := ay*low + by
	if left > right {
		left, right = right, left
	}
	if top > bottom {
		top, bottom = bottom, top
	}

	b := geometry.NewBounds(left, right, top, bottom)
	if b.Empty() || !b.Inside(container) {
		return geometry.Bounds{}, false
	}
	return b, true
}

// probeSpan returns the value extent of a panel for probing: the price
// range for the price panel, zero to the volume maximum for the volume
// panel.
func (s *System) probeSpan(panel, from, to int) (low, high float64, ok bool) {
	if panel == PanelVolume {
		high = s.data.MaxVolume(from, to)
		return 0, high, high > 0
	}
	low, high, ok = s.data.ValueRange(from, to)
	if !ok || high <= low {
		return 0, 0, false
	}
	return low, high, true
}

// fitLinear solves m*a + b for the two samples (x1,y1), (x2,y2).
func fitLinear(x1, y1, x2, y2 float64) (a, b float64, ok bool) {
	A := mat.NewDense(2, 2, []float64{x1, 1, x2, 1})
	rhs := mat.NewVecDense(2, []float64{y1, y2})
	var sol mat.VecDense
	if err := sol.SolveVec(A, rhs); err != nil {
		return 0, 0, false
	}
	return sol.AtVec(0), sol.AtVec(1), true
}
