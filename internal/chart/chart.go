// Package chart implements the host candlestick/volume renderer the
// overlay engine is mounted on. It stands in for the third-party chart
// library: it renders price data and exposes the projection port the
// coordinate system delegates to.
package chart

import (
	"image"
	"image/color"
	"math"
	"sync"

	"chart-annotator/internal/coords"
	"chart-annotator/internal/series"
	"chart-annotator/pkg/colorutil"
	"chart-annotator/pkg/geometry"
)

// Panel layout shares of the container height. The small gap between the
// panels belongs to neither.
const (
	pricePanelShare  = 0.70
	panelGapShare    = 0.02
	volumePanelShare = 0.28
)

// axisWidth is the right-hand value axis column in CSS pixels.
const axisWidth = 56

// Chart renders an OHLCV series and provides data<->pixel projection.
type Chart struct {
	mu     sync.RWMutex
	data   *series.Series
	width  float64
	height float64
	from   int
	to     int
}

// New creates a chart of the given CSS size showing the whole series.
func New(data *series.Series, width, height float64) *Chart {
	c := &Chart{data: data, width: width, height: height}
	c.ShowAll()
	return c
}

// SetSeries replaces the chart data and resets the visible range.
func (c *Chart) SetSeries(data *series.Series) {
	c.mu.Lock()
	c.data = data
	c.mu.Unlock()
	c.ShowAll()
}

// Series returns the chart data.
func (c *Chart) Series() *series.Series {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

// Resize updates the container size.
func (c *Chart) Resize(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = width
	c.height = height
}

// ShowAll makes the whole series visible.
func (c *Chart) ShowAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.from = 0
	c.to = c.data.Len() - 1
}

// SetVisibleRange restricts the visible bars to [from, to].
func (c *Chart) SetVisibleRange(from, to int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	from = c.data.ClampIndex(from)
	to = c.data.ClampIndex(to)
	if from < 0 || to < from {
		return
	}
	c.from = from
	c.to = to
}

// ContainerSize implements coords.Projection.
func (c *Chart) ContainerSize() (w, h float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.width, c.height
}

// VisibleRange implements coords.Projection.
func (c *Chart) VisibleRange() (from, to int, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data.Len() == 0 || c.to < c.from {
		return 0, 0, false
	}
	return c.from, c.to, true
}

// PanelLayout implements coords.Projection: the declarative panel shares.
func (c *Chart) PanelLayout() []coords.PanelSpan {
	return []coords.PanelSpan{
		{Top: 0, Height: pricePanelShare},
		{Top: pricePanelShare + panelGapShare, Height: volumePanelShare},
	}
}

// plotRight returns the right edge of the plotting area (axis excluded).
func (c *Chart) plotRight() float64 {
	r := c.width - axisWidth
	if r < 0 {
		r = 0
	}
	return r
}

// panelRect returns the pixel rectangle of a panel, locked by the caller.
func (c *Chart) panelRect(panel int) (geometry.Bounds, bool) {
	switch panel {
	case coords.PanelPrice:
		return geometry.NewBounds(0, c.plotRight(), 0, c.height*pricePanelShare), true
	case coords.PanelVolume:
		top := c.height * (pricePanelShare + panelGapShare)
		return geometry.NewBounds(0, c.plotRight(), top, top+c.height*volumePanelShare), true
	default:
		return geometry.Bounds{}, false
	}
}

// barWidth returns the horizontal pixels per bar, locked by the caller.
func (c *Chart) barWidth() float64 {
	count := c.to - c.from + 1
	if count <= 0 {
		return 0
	}
	return c.plotRight() / float64(count)
}

// valueSpan returns the value extent of a panel, locked by the caller.
func (c *Chart) valueSpan(panel int) (low, high float64, ok bool) {
	switch panel {
	case coords.PanelPrice:
		return c.priceSpan()
	case coords.PanelVolume:
		maxV := c.data.MaxVolume(c.from, c.to)
		if maxV <= 0 {
			return 0, 0, false
		}
		return 0, maxV, true
	default:
		return 0, 0, false
	}
}

func (c *Chart) priceSpan() (low, high float64, ok bool) {
	low, high, ok = c.data.ValueRange(c.from, c.to)
	if !ok || high <= low {
		return 0, 0, false
	}
	// A little headroom so extremes are not glued to the panel edge.
	pad := (high - low) * 0.04
	return low - pad, high + pad, true
}

// DataToPixel implements coords.Projection.
func (c *Chart) DataToPixel(dp series.DataPoint, panel int) (geometry.Point2D, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rect, ok := c.panelRect(panel)
	if !ok || rect.Empty() {
		return geometry.Point2D{}, false
	}
	bw := c.barWidth()
	if bw <= 0 {
		return geometry.Point2D{}, false
	}
	low, high, ok := c.valueSpan(panel)
	if !ok {
		return geometry.Point2D{}, false
	}
	x := rect.Left + (float64(dp.Index-c.from)+0.5)*bw
	y := rect.Top + (high-dp.Value)/(high-low)*rect.Height()
	return geometry.NewPoint2D(x, y), true
}

// PixelToData implements coords.Projection.
func (c *Chart) PixelToData(p geometry.Point2D, panel int) (series.DataPoint, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rect, ok := c.panelRect(panel)
	if !ok || rect.Empty() {
		return series.DataPoint{}, false
	}
	bw := c.barWidth()
	if bw <= 0 {
		return series.DataPoint{}, false
	}
	low, high, ok := c.valueSpan(panel)
	if !ok {
		return series.DataPoint{}, false
	}
	idx := c.from + int(math.Round((p.X-rect.Left)/bw-0.5))
	value := high - (p.Y-rect.Top)/rect.Height()*(high-low)
	dp := series.DataPoint{Index: idx, Value: value}
	if bar := c.data.At(idx); bar != nil {
		dp.Date = bar.TradeDate
	}
	return dp, true
}

// colors of the host renderer.
var (
	bgColor     = color.RGBA{R: 18, G: 20, B: 26, A: 255}
	gridColor   = color.RGBA{R: 38, G: 42, B: 52, A: 255}
	axisColor   = color.RGBA{R: 70, G: 76, B: 90, A: 255}
	upColor     = colorutil.Green
	downColor   = colorutil.Red
	volumeAlpha = uint8(160)
)

// Render paints the chart onto a fresh RGBA raster at the given device
// scale. The overlay widget composites layer buffers on top of it.
func (c *Chart) Render(scale float64) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	w := int(c.width * scale)
	h := int(c.height * scale)
	if w < 1 || h < 1 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	fillRect(img, 0, 0, w, h, bgColor)

	priceRect, _ := c.panelRect(coords.PanelPrice)
	volumeRect, _ := c.panelRect(coords.PanelVolume)
	c.drawGrid(img, priceRect, scale)
	c.drawGrid(img, volumeRect, scale)

	bw := c.barWidth()
	if bw > 0 {
		c.drawCandles(img, priceRect, bw, scale)
		c.drawVolume(img, volumeRect, bw, scale)
	}

	// Axis separator on the right edge of the plot area.
	ax := int(c.plotRight() * scale)
	fillRect(img, ax, 0, ax+1, h, axisColor)
	return img
}

func (c *Chart) drawGrid(img *image.RGBA, rect geometry.Bounds, scale float64) {
	if rect.Empty() {
		return
	}
	rows := 4
	for i := 0; i <= rows; i++ {
		y := int((rect.Top + rect.Height()*float64(i)/float64(rows)) * scale)
		fillRect(img, int(rect.Left*scale), y, int(rect.Right*scale), y+1, gridColor)
	}
}

func (c *Chart) drawCandles(img *image.RGBA, rect geometry.Bounds, bw, scale float64) {
	low, high, ok := c.priceSpan()
	if !ok {
		return
	}
	toY := func(v float64) int {
		return int((rect.Top + (high-v)/(high-low)*rect.Height()) * scale)
	}
	body := bw * 0.7
	for i := c.from; i <= c.to; i++ {
		bar := c.data.At(i)
		if bar == nil {
			continue
		}
		col := upColor
		if bar.Close < bar.Open {
			col = downColor
		}
		cx := rect.Left + (float64(i-c.from)+0.5)*bw
		wickX := int(cx * scale)
		fillRect(img, wickX, toY(bar.High), wickX+1, toY(bar.Low), col)

		x1 := int((cx - body/2) * scale)
		x2 := int((cx + body/2) * scale)
		top, bottom := toY(math.Max(bar.Open, bar.Close)), toY(math.Min(bar.Open, bar.Close))
		if bottom <= top {
			bottom = top + 1
		}
		fillRect(img, x1, top, x2, bottom, col)
	}
}

func (c *Chart) drawVolume(img *image.RGBA, rect geometry.Bounds, bw, scale float64) {
	maxV := c.data.MaxVolume(c.from, c.to)
	if maxV <= 0 {
		return
	}
	body := bw * 0.7
	bottom := int(rect.Bottom * scale)
	for i := c.from; i <= c.to; i++ {
		bar := c.data.At(i)
		if bar == nil {
			continue
		}
		col := colorutil.WithAlpha(upColor, volumeAlpha)
		if bar.Close < bar.Open {
			col = colorutil.WithAlpha(downColor, volumeAlpha)
		}
		cx := rect.Left + (float64(i-c.from)+0.5)*bw
		x1 := int((cx - body/2) * scale)
		x2 := int((cx + body/2) * scale)
		top := int((rect.Bottom - bar.Volume/maxV*rect.Height()) * scale)
		fillRect(img, x1, top, x2, bottom, col)
	}
}

// fillRect fills [x1,x2) x [y1,y2) with bounds checking.
func fillRect(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	b := img.Bounds()
	if x1 < b.Min.X {
		x1 = b.Min.X
	}
	if y1 < b.Min.Y {
		y1 = b.Min.Y
	}
	if x2 > b.Max.X {
		x2 = b.Max.X
	}
	if y2 > b.Max.Y {
		y2 = b.Max.Y
	}
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
