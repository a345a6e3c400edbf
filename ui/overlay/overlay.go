// Package overlay provides the Fyne widget hosting one chart instance:
// the candlestick renderer underneath and the crosshair and drawing
// layers composited on top, with pointer events translated into the
// layer event envelope.
package overlay

import (
	"image"
	"image/draw"
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"chart-annotator/internal/chart"
	"chart-annotator/internal/config"
	"chart-annotator/internal/coords"
	"chart-annotator/internal/crosshair"
	"chart-annotator/internal/drawing"
	"chart-annotator/internal/layer"
	"chart-annotator/internal/series"
	"chart-annotator/pkg/geometry"
)

const (
	defaultWidth  = 640
	defaultHeight = 420
)

// ChartView is one mounted chart instance with its overlay layers.
type ChartView struct {
	widget.BaseWidget

	chart   *chart.Chart
	cs      *coords.System
	shared  *layer.Coordination
	manager *layer.Manager

	crosshairLayer *crosshair.Layer
	drawingLayer   *drawing.Layer

	raster     *fynecanvas.Raster
	lastRaster *image.RGBA
	lastW      float64
	lastH      float64
}

// NewChartView builds a chart view over the given series. Every view
// mounted with the same coordinator shares the crosshair mode.
func NewChartView(data *series.Series, opts config.Options, modes *crosshair.Coordinator) *ChartView {
	cv := &ChartView{}
	cv.chart = chart.New(data, defaultWidth, defaultHeight)
	cv.cs = coords.NewSystem(cv.chart, data)
	cv.shared = &layer.Coordination{}
	cv.manager = layer.NewManager(cv.Refresh)

	cv.crosshairLayer = crosshair.NewLayer(cv.cs, data, modes, cv.shared,
		opts.Crosshair, defaultWidth, defaultHeight, 1, cv.manager.RequestRender)
	cv.drawingLayer = drawing.NewLayer(cv.cs, data, cv.shared,
		opts.Drawing, defaultWidth, defaultHeight, 1, cv.chartRaster, cv.manager.RequestRender)
	cv.manager.AddLayer(cv.crosshairLayer)
	cv.manager.AddLayer(cv.drawingLayer)

	cv.raster = fynecanvas.NewRaster(cv.draw)
	cv.ExtendBaseWidget(cv)
	return cv
}

// Crosshair returns the view's crosshair layer.
func (cv *ChartView) Crosshair() *crosshair.Layer { return cv.crosshairLayer }

// Drawing returns the view's drawing layer.
func (cv *ChartView) Drawing() *drawing.Layer { return cv.drawingLayer }

// Chart returns the host chart renderer.
func (cv *ChartView) Chart() *chart.Chart { return cv.chart }

// Coords returns the coordinate system shared by the layers.
func (cv *ChartView) Coords() *coords.System { return cv.cs }

// SetSeries swaps the bar data for the chart and both layers.
func (cv *ChartView) SetSeries(data *series.Series) {
	cv.chart.SetSeries(data)
	cv.cs.SetSeries(data)
	cv.crosshairLayer.SetSeries(data)
	cv.drawingLayer.SetSeries(data)
	cv.drawingLayer.ReprojectAll()
	cv.manager.RequestRender()
}

// CreateRenderer implements fyne.Widget.
func (cv *ChartView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(cv.raster)
}

// MinSize implements fyne.Widget.
func (cv *ChartView) MinSize() fyne.Size {
	return fyne.NewSize(320, 240)
}

// Destroy tears down the layer stack.
func (cv *ChartView) Destroy() {
	cv.manager.Destroy()
}

// chartRaster exposes the last chart render to the drawing magnifier.
func (cv *ChartView) chartRaster() *image.RGBA {
	return cv.lastRaster
}

// draw is the raster callback: render the chart, run a synchronous
// layer pass, and composite the buffers on top.
func (cv *ChartView) draw(w, h int) image.Image {
	if w < 1 || h < 1 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	cssSize := cv.Size()
	cssW, cssH := float64(cssSize.Width), float64(cssSize.Height)
	if cssW < 1 || cssH < 1 {
		cssW, cssH = float64(w), float64(h)
	}
	scale := float64(w) / cssW

	if cssW != cv.lastW || cssH != cv.lastH {
		cv.lastW, cv.lastH = cssW, cssH
		cv.chart.Resize(cssW, cssH)
		cv.manager.Resize(cssW, cssH)
		for _, l := range cv.manager.Layers() {
			if base, ok := l.(interface{ SetScale(float64) }); ok {
				base.SetScale(scale)
			}
		}
	}

	cv.lastRaster = cv.chart.Render(scale)
	out := image.NewRGBA(cv.lastRaster.Bounds())
	draw.Draw(out, out.Bounds(), cv.lastRaster, image.Point{}, draw.Src)
	cv.manager.RenderNow()
	cv.manager.Composite(out)
	return out
}

func (cv *ChartView) dispatch(kind layer.EventKind, pos fyne.Position) {
	ev := layer.PointerEvent{
		Kind: kind,
		Pos:  pointOf(pos),
		Time: time.Now(),
	}
	cv.manager.DispatchEvent(ev)
}

// MouseDown implements desktop.Mouseable.
func (cv *ChartView) MouseDown(ev *desktop.MouseEvent) {
	cv.dispatch(layer.EventDown, ev.Position)
}

// MouseUp implements desktop.Mouseable.
func (cv *ChartView) MouseUp(ev *desktop.MouseEvent) {
	cv.dispatch(layer.EventUp, ev.Position)
}

// MouseIn implements desktop.Hoverable.
func (cv *ChartView) MouseIn(ev *desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (cv *ChartView) MouseMoved(ev *desktop.MouseEvent) {
	cv.dispatch(layer.EventMove, ev.Position)
}

// MouseOut implements desktop.Hoverable.
func (cv *ChartView) MouseOut() {
	cv.manager.DispatchEvent(layer.PointerEvent{Kind: layer.EventLeave, Time: time.Now()})
}

// DoubleTapped implements fyne.DoubleTappable.
func (cv *ChartView) DoubleTapped(ev *fyne.PointEvent) {
	cv.dispatch(layer.EventDoubleTap, ev.Position)
}

func pointOf(pos fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(pos.X), float64(pos.Y))
}
