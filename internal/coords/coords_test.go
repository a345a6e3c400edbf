package coords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart-annotator/internal/series"
	"chart-annotator/pkg/geometry"
)

// fakeProjection is a linear host projection with switchable failure modes.
type fakeProjection struct {
	width, height float64
	spans         []PanelSpan
	from, to      int

	failConvert  bool
	panicConvert bool
}

func (f *fakeProjection) DataToPixel(dp series.DataPoint, panel int) (geometry.Point2D, bool) {
	if f.panicConvert {
		panic("host not ready")
	}
	if f.failConvert {
		return geometry.Point2D{}, false
	}
	// 4 pixels per index; price 200..100 maps onto y 0..300, volume
	// 0..1000 onto y 300..220.
	x := float64(dp.Index) * 4
	if panel == PanelVolume {
		return geometry.NewPoint2D(x, 300-dp.Value*0.08), true
	}
	y := (200 - dp.Value) * 3
	return geometry.NewPoint2D(x, y), true
}

func (f *fakeProjection) PixelToData(p geometry.Point2D, panel int) (series.DataPoint, bool) {
	if f.panicConvert {
		panic("host not ready")
	}
	if f.failConvert {
		return series.DataPoint{}, false
	}
	return series.DataPoint{Index: int(p.X / 4), Value: 200 - p.Y/3}, true
}

func (f *fakeProjection) PanelLayout() []PanelSpan      { return f.spans }
func (f *fakeProjection) ContainerSize() (w, h float64) { return f.width, f.height }
func (f *fakeProjection) VisibleRange() (int, int, bool) {
	return f.from, f.to, f.to >= f.from
}

func testSeries() *series.Series {
	bars := make([]series.Bar, 100)
	for i := range bars {
		bars[i] = series.Bar{Open: 150, High: 200, Low: 100, Close: 150}
	}
	return series.New(bars)
}

func TestConversionFailureYieldsNotOK(t *testing.T) {
	proj := &fakeProjection{width: 400, height: 300, failConvert: true, to: 99}
	cs := NewSystem(proj, testSeries())

	_, ok := cs.DataToPixel(series.DataPoint{Index: 5, Value: 150}, PanelPrice)
	assert.False(t, ok)
	_, ok = cs.PixelToData(geometry.NewPoint2D(10, 10), PanelPrice)
	assert.False(t, ok)
}

func TestConversionPanicRecovered(t *testing.T) {
	proj := &fakeProjection{width: 400, height: 300, panicConvert: true, to: 99}
	cs := NewSystem(proj, testSeries())

	pt, ok := cs.DataToPixel(series.DataPoint{Index: 5, Value: 150}, PanelPrice)
	assert.False(t, ok)
	assert.Equal(t, geometry.Point2D{}, pt)

	dp, ok := cs.PixelToData(geometry.NewPoint2D(10, 10), PanelPrice)
	assert.False(t, ok)
	assert.Equal(t, series.DataPoint{}, dp)
}

func TestNilSystemIsSafe(t *testing.T) {
	var cs *System
	_, ok := cs.DataToPixel(series.DataPoint{}, PanelPrice)
	assert.False(t, ok)
	_, ok = cs.PixelToData(geometry.Point2D{}, PanelPrice)
	assert.False(t, ok)
}

func TestBoundsFromDeclarativeLayout(t *testing.T) {
	proj := &fakeProjection{
		width: 400, height: 300, to: 99,
		spans: []PanelSpan{{Top: 0, Height: 0.7}, {Top: 0.72, Height: 0.28}},
	}
	cs := NewSystem(proj, testSeries())

	price, ok := cs.Bounds(PanelPrice)
	require.True(t, ok)
	assert.Equal(t, geometry.NewBounds(0, 400, 0, 210), price)

	volume, ok := cs.Bounds(PanelVolume)
	require.True(t, ok)
	assert.InDelta(t, 216, volume.Top, 1e-9)
	assert.InDelta(t, 300, volume.Bottom, 1e-9)
}

func TestBoundsProbeFallback(t *testing.T) {
	// No declarative layout: bounds come from probing the linear map.
	proj := &fakeProjection{width: 400, height: 300, from: 0, to: 99}
	cs := NewSystem(proj, testSeries())

	b, ok := cs.Bounds(PanelPrice)
	require.True(t, ok)
	// x spans index 0..99 at 4 px/index; y spans value 100..200 at 3 px/unit.
	assert.InDelta(t, 0, b.Left, 1e-6)
	assert.InDelta(t, 396, b.Right, 1e-6)
	assert.InDelta(t, 0, b.Top, 1e-6)
	assert.InDelta(t, 300, b.Bottom, 1e-6)
}

func TestBoundsProbeVolumePanel(t *testing.T) {
	// Volume-panel probe values come from the volume span, not the price
	// range; the fake maps volume 0..1000 onto y 300..220.
	bars := make([]series.Bar, 100)
	for i := range bars {
		bars[i] = series.Bar{Open: 150, High: 200, Low: 100, Close: 150, Volume: 1000}
	}
	proj := &fakeProjection{width: 400, height: 300, from: 0, to: 99}
	cs := NewSystem(proj, series.New(bars))

	b, ok := cs.Bounds(PanelVolume)
	require.True(t, ok)
	assert.InDelta(t, 0, b.Left, 1e-6)
	assert.InDelta(t, 396, b.Right, 1e-6)
	assert.InDelta(t, 220, b.Top, 1e-6)
	assert.InDelta(t, 300, b.Bottom, 1e-6)
}

func TestBoundsFailsWhenHostDown(t *testing.T) {
	proj := &fakeProjection{width: 400, height: 300, failConvert: true, to: 99}
	cs := NewSystem(proj, testSeries())
	_, ok := cs.Bounds(PanelPrice)
	assert.False(t, ok)

	_, ok = cs.Bounds(5)
	assert.False(t, ok)
}

func TestValidAreaUnion(t *testing.T) {
	proj := &fakeProjection{
		width: 400, height: 300, to: 99,
		spans: []PanelSpan{{Top: 0, Height: 0.7}, {Top: 0.72, Height: 0.28}},
	}
	cs := NewSystem(proj, testSeries())

	area, ok := cs.ValidArea()
	require.True(t, ok)
	assert.Equal(t, 0.0, area.Top)
	assert.Equal(t, 300.0, area.Bottom)
}

func TestPanelAt(t *testing.T) {
	proj := &fakeProjection{
		width: 400, height: 300, to: 99,
		spans: []PanelSpan{{Top: 0, Height: 0.7}, {Top: 0.72, Height: 0.28}},
	}
	cs := NewSystem(proj, testSeries())

	assert.Equal(t, PanelPrice, cs.PanelAt(geometry.NewPoint2D(50, 100)))
	assert.Equal(t, PanelVolume, cs.PanelAt(geometry.NewPoint2D(50, 250)))
	assert.Equal(t, -1, cs.PanelAt(geometry.NewPoint2D(50, 214)))
}

func TestFitLinear(t *testing.T) {
	a, b, ok := fitLinear(0, 10, 5, 35)
	require.True(t, ok)
	assert.InDelta(t, 5, a, 1e-9)
	assert.InDelta(t, 10, b, 1e-9)

	// Two identical samples cannot determine a line.
	_, _, ok = fitLinear(2, 4, 2, 4)
	assert.False(t, ok)
}
