package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart-annotator/internal/chart"
	"chart-annotator/internal/config"
	"chart-annotator/internal/coords"
	"chart-annotator/internal/drawing"
	"chart-annotator/internal/series"
	"chart-annotator/pkg/colorutil"
	"chart-annotator/pkg/geometry"
)

func testDrawings() []*drawing.Drawing {
	return []*drawing.Drawing{
		{
			ID:   "a",
			Type: drawing.ToolTrendline,
			DataPoints: []series.DataPoint{
				{Index: 5, Value: 101.5, Date: "20250109"},
				{Index: 12, Value: 98.2, Date: "20250120"},
			},
			Points:    make([]geometry.Point2D, 2),
			Color:     colorutil.Yellow,
			LineWidth: 1.5,
			Visible:   true,
		},
		{
			ID:   "b",
			Type: drawing.ToolPriceChannel,
			DataPoints: []series.DataPoint{
				{Index: 2, Value: 100, Date: "20250106"},
				{Index: 20, Value: 104, Date: "20250130"},
				{Index: 11, Value: 96, Date: "20250117"},
			},
			Points:  make([]geometry.Point2D, 3),
			Color:   colorutil.Cyan,
			Visible: true,
			Locked:  true,
			Config:  drawing.Config{HalfWidth: 50},
		},
	}
}

func TestAnnotationRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "annotations.chann")

	file := NewAnnotationFile("DEMO")
	file.SetDrawings(testDrawings())
	require.NoError(t, file.Save(path))

	loaded, err := LoadAnnotations(path)
	require.NoError(t, err)
	assert.Equal(t, "DEMO", loaded.Symbol)
	require.Len(t, loaded.Drawings, 2)
	assert.Equal(t, drawing.ToolTrendline, loaded.Drawings[0].Type)
	assert.Equal(t, testDrawings()[0].DataPoints, loaded.Drawings[0].DataPoints)
	assert.True(t, loaded.Drawings[1].Locked)
	assert.Equal(t, 50.0, loaded.Drawings[1].Config.HalfWidth)
}

func TestRestoreReprojectsPixels(t *testing.T) {
	data := series.New(series.Generate(60, 100, 42))
	host := chart.New(data, 640, 420)
	cs := coords.NewSystem(host, data)

	file := NewAnnotationFile("DEMO")
	file.SetDrawings(testDrawings())

	restored := file.Restore(cs)
	require.Len(t, restored, 2)
	for _, d := range restored {
		assert.Len(t, d.Points, len(d.DataPoints), "pixel cache matches data points")
	}

	// The trendline's first pixel point matches its data point projection.
	want, ok := cs.DataToPixel(restored[0].DataPoints[0], coords.PanelPrice)
	require.True(t, ok)
	assert.Equal(t, want, restored[0].Points[0])
}

func TestRestoreSkipsUnknownTypes(t *testing.T) {
	data := series.New(series.Generate(10, 100, 1))
	cs := coords.NewSystem(chart.New(data, 640, 420), data)

	file := NewAnnotationFile("")
	file.Drawings = []SavedDrawing{{ID: "x", Type: drawing.ToolType("sparkle")}}
	assert.Empty(t, file.Restore(cs))
}

func TestLoadAnnotationsMissingFile(t *testing.T) {
	_, err := LoadAnnotations(filepath.Join(t.TempDir(), "missing.chann"))
	assert.Error(t, err)
}

func TestStateEvents(t *testing.T) {
	state := NewState(config.Default())

	var got []interface{}
	state.On(EventDrawingsChanged, func(data interface{}) { got = append(got, data) })
	state.Emit(EventDrawingsChanged, "payload")
	require.Len(t, got, 1)
	assert.Equal(t, "payload", got[0])

	// Other event types do not cross-fire.
	state.Emit(EventSeriesLoaded, nil)
	assert.Len(t, got, 1)
}

func TestStateModifiedEmitsOnce(t *testing.T) {
	state := NewState(config.Default())
	count := 0
	state.On(EventModified, func(interface{}) { count++ })

	state.SetModified(true)
	state.SetModified(true)
	state.SetModified(false)
	assert.Equal(t, 2, count)
}
