package drawing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chart-annotator/internal/chart"
	"chart-annotator/internal/config"
	"chart-annotator/internal/coords"
	"chart-annotator/internal/layer"
	"chart-annotator/internal/series"
	"chart-annotator/pkg/geometry"
)

const (
	testW = 640.0
	testH = 420.0
)

// testOptions disables magnetic snapping so points land where clicked.
func testOptions() config.DrawingOptions {
	opts := config.Default().Drawing
	opts.SnapRadius = 0.001
	return opts
}

func testLayer(t *testing.T, opts config.DrawingOptions) *Layer {
	t.Helper()
	data := series.New(series.Generate(60, 100, 42))
	host := chart.New(data, testW, testH)
	cs := coords.NewSystem(host, data)
	return NewLayer(cs, data, &layer.Coordination{}, opts, testW, testH, 1, nil, nil)
}

func press(l *Layer, p geometry.Point2D) {
	l.HandleEvent(layer.At(layer.EventDown, p.X, p.Y))
	l.HandleEvent(layer.At(layer.EventUp, p.X, p.Y))
}

// drawTwoPoint commits a two-anchor drawing between a and b.
func drawTwoPoint(l *Layer, tool ToolType, a, b geometry.Point2D) {
	l.SetTool(tool)
	press(l, a)
	press(l, b)
}

func TestCommitTrendline(t *testing.T) {
	l := testLayer(t, testOptions())
	drawTwoPoint(l, ToolTrendline, geometry.NewPoint2D(100, 100), geometry.NewPoint2D(200, 150))

	require.Len(t, l.Drawings(), 1)
	d := l.Drawings()[0]
	assert.Equal(t, ToolTrendline, d.Type)
	assert.Len(t, d.Points, 2)
	assert.Len(t, d.DataPoints, 2, "pixel and data points stay in lockstep")
	assert.True(t, d.Complete())
	assert.Equal(t, d.ID, l.SelectedID(), "committed drawing is auto-selected")
}

func TestDraftNotInListUntilComplete(t *testing.T) {
	l := testLayer(t, testOptions())
	l.SetTool(ToolTrendline)
	press(l, geometry.NewPoint2D(100, 100))

	assert.Empty(t, l.Drawings(), "one anchor of two is still a draft")
	assert.Equal(t, sessionDrafting, l.session.kind)

	press(l, geometry.NewPoint2D(200, 150))
	assert.Len(t, l.Drawings(), 1)
	assert.Equal(t, sessionIdle, l.session.kind)
}

func TestHorizontalRayCommitsOnOneAnchor(t *testing.T) {
	l := testLayer(t, testOptions())
	l.SetTool(ToolHorizontalRay)
	press(l, geometry.NewPoint2D(150, 120))

	require.Len(t, l.Drawings(), 1)
	assert.Len(t, l.Drawings()[0].Points, 1)
}

func TestAngleBoxClampsSecondPoint(t *testing.T) {
	l := testLayer(t, testOptions())
	drawTwoPoint(l, ToolAngleBox, geometry.NewPoint2D(50, 100), geometry.NewPoint2D(10, 140))

	require.Len(t, l.Drawings(), 1)
	d := l.Drawings()[0]
	assert.Equal(t, 50.0, d.Points[0].X)
	assert.Equal(t, 50.0, d.Points[1].X, "second point clamps to the first point's x")
	assert.Equal(t, 140.0, d.Points[1].Y)
}

func TestAngleBoxFirstPointEditReclamps(t *testing.T) {
	l := testLayer(t, testOptions())
	drawTwoPoint(l, ToolAngleBox, geometry.NewPoint2D(50, 100), geometry.NewPoint2D(120, 140))
	d := l.Drawings()[0]

	// Drag the first anchor to the right of the second.
	l.HandleEvent(layer.At(layer.EventDown, 50, 100))
	require.Equal(t, sessionEditing, l.session.kind)
	l.HandleEvent(layer.At(layer.EventMove, 200, 100))
	l.HandleEvent(layer.At(layer.EventUp, 200, 100))

	assert.Equal(t, 200.0, d.Points[0].X)
	assert.Equal(t, 200.0, d.Points[1].X, "second point follows the new left edge")
}

func TestPriceChannelAutoThirdPoint(t *testing.T) {
	opts := testOptions()
	l := testLayer(t, opts)
	a := geometry.NewPoint2D(100, 150)
	b := geometry.NewPoint2D(300, 150)
	drawTwoPoint(l, ToolPriceChannel, a, b)

	require.Len(t, l.Drawings(), 1)
	d := l.Drawings()[0]
	require.Len(t, d.Points, 3)

	mid := a.Midpoint(b)
	assert.InDelta(t, opts.ChannelHalfWidth, d.Points[2].Distance(mid), 1e-6)
}

func TestChannelControlPointStaysPerpendicular(t *testing.T) {
	l := testLayer(t, testOptions())
	a := geometry.NewPoint2D(100, 200)
	b := geometry.NewPoint2D(300, 120)
	drawTwoPoint(l, ToolPriceChannel, a, b)
	d := l.Drawings()[0]
	control := d.Points[2]

	// Drag the control point to arbitrary targets; it must stay on the
	// perpendicular through the center-line midpoint every time.
	targets := []geometry.Point2D{
		{X: 90, Y: 40}, {X: 400, Y: 300}, {X: 210, Y: 166}, {X: 10, Y: 10},
	}
	dir := b.Sub(a).Unit()
	mid := a.Midpoint(b)
	for _, target := range targets {
		l.HandleEvent(layer.At(layer.EventDown, control.X, control.Y))
		require.Equal(t, sessionEditing, l.session.kind)
		require.Equal(t, 2, l.session.editIndex)
		l.HandleEvent(layer.At(layer.EventMove, target.X, target.Y))
		l.HandleEvent(layer.At(layer.EventUp, target.X, target.Y))

		control = d.Points[2]
		along := control.Sub(mid).Dot(dir)
		assert.InDelta(t, 0, along, 1e-6, "control point slid along the center line")
	}
}

func TestUndoRedoRoundTrip(t *testing.T) {
	l := testLayer(t, testOptions())
	drawTwoPoint(l, ToolTrendline, geometry.NewPoint2D(100, 100), geometry.NewPoint2D(150, 120))
	drawTwoPoint(l, ToolTrendline, geometry.NewPoint2D(200, 100), geometry.NewPoint2D(250, 130))
	drawTwoPoint(l, ToolTrendline, geometry.NewPoint2D(300, 100), geometry.NewPoint2D(350, 140))
	require.Len(t, l.Drawings(), 3)

	ids := []string{l.Drawings()[0].ID, l.Drawings()[1].ID, l.Drawings()[2].ID}

	l.Undo()
	l.Undo()
	l.Undo()
	assert.Empty(t, l.Drawings())

	l.Redo()
	l.Redo()
	l.Redo()
	require.Len(t, l.Drawings(), 3)
	for i, d := range l.Drawings() {
		assert.Equal(t, ids[i], d.ID, "redo restores original order")
	}
}

func TestRedoClearedByForwardMutation(t *testing.T) {
	l := testLayer(t, testOptions())
	drawTwoPoint(l, ToolTrendline, geometry.NewPoint2D(100, 100), geometry.NewPoint2D(150, 120))
	drawTwoPoint(l, ToolTrendline, geometry.NewPoint2D(200, 100), geometry.NewPoint2D(250, 130))

	l.Undo()
	require.True(t, l.CanRedo())

	drawTwoPoint(l, ToolRectangle, geometry.NewPoint2D(300, 100), geometry.NewPoint2D(350, 160))
	assert.False(t, l.CanRedo(), "new commit clears the redo stack")
}

func TestHistoryDepthBounded(t *testing.T) {
	opts := testOptions()
	opts.HistoryDepth = 3
	l := testLayer(t, opts)

	for i := 0; i < 6; i++ {
		x := 80 + float64(i)*60
		drawTwoPoint(l, ToolTrendline, geometry.NewPoint2D(x, 100), geometry.NewPoint2D(x+40, 130))
	}
	require.Len(t, l.Drawings(), 6)

	steps := 0
	for l.CanUndo() {
		l.Undo()
		steps++
	}
	assert.Equal(t, 3, steps)
}

func TestTypeCyclingTrimsChannelThirdPoint(t *testing.T) {
	l := testLayer(t, testOptions())
	drawTwoPoint(l, ToolPriceChannel, geometry.NewPoint2D(100, 150), geometry.NewPoint2D(300, 150))
	d := l.Drawings()[0]
	require.Len(t, d.Points, 3)

	// The channel cycles back to the start of the two-anchor group.
	l.CycleType()
	assert.Equal(t, ToolTrendline, d.Type)
	assert.Len(t, d.Points, 2, "third point dropped for the plain line")
	assert.Len(t, d.DataPoints, 2)
	assert.Equal(t, Config{}, d.Config)
}

func TestTypeCyclingExtendsToChannel(t *testing.T) {
	opts := testOptions()
	l := testLayer(t, opts)
	drawTwoPoint(l, ToolRectangle, geometry.NewPoint2D(100, 150), geometry.NewPoint2D(300, 190))
	d := l.Drawings()[0]

	l.CycleType()
	require.Equal(t, ToolPriceChannel, d.Type)
	require.Len(t, d.Points, 3, "derived control point added")
	assert.Equal(t, opts.ChannelHalfWidth, d.Config.HalfWidth)
}

func TestStrokeHitSelectsWithoutDrawing(t *testing.T) {
	l := testLayer(t, testOptions())
	drawTwoPoint(l, ToolTrendline, geometry.NewPoint2D(100, 100), geometry.NewPoint2D(300, 100))
	id := l.Drawings()[0].ID

	l.SetTool(ToolNone)
	l.selectedID = ""

	// A tap 3px off the stroke selects it; no new draft starts.
	press(l, geometry.NewPoint2D(200, 103))
	assert.Equal(t, id, l.SelectedID())
	assert.Len(t, l.Drawings(), 1)
	assert.Equal(t, sessionIdle, l.session.kind)
}

func TestTapOnEmptySpaceDeselects(t *testing.T) {
	l := testLayer(t, testOptions())
	drawTwoPoint(l, ToolTrendline, geometry.NewPoint2D(100, 100), geometry.NewPoint2D(300, 100))
	require.NotEmpty(t, l.SelectedID())

	l.SetTool(ToolNone)
	press(l, geometry.NewPoint2D(400, 250))
	assert.Empty(t, l.SelectedID())
}

func TestDeleteSelected(t *testing.T) {
	l := testLayer(t, testOptions())
	drawTwoPoint(l, ToolTrendline, geometry.NewPoint2D(100, 100), geometry.NewPoint2D(300, 100))

	l.DeleteSelected()
	assert.Empty(t, l.Drawings())
	assert.Empty(t, l.SelectedID())

	// Undo brings the drawing back.
	l.Undo()
	assert.Len(t, l.Drawings(), 1)
}

func TestClearAll(t *testing.T) {
	l := testLayer(t, testOptions())
	drawTwoPoint(l, ToolTrendline, geometry.NewPoint2D(100, 100), geometry.NewPoint2D(150, 120))
	drawTwoPoint(l, ToolRectangle, geometry.NewPoint2D(200, 100), geometry.NewPoint2D(260, 160))

	l.ClearAll()
	assert.Empty(t, l.Drawings())
	assert.True(t, l.CanUndo())
}

func TestDrawingModeGatesEvents(t *testing.T) {
	l := testLayer(t, testOptions())
	assert.False(t, l.HandleEvent(layer.At(layer.EventDown, 100, 100)),
		"events pass through while drawing mode is off")

	l.SetDrawingMode(true)
	assert.True(t, l.HandleEvent(layer.At(layer.EventDown, 100, 100)))
}

func TestCoordinationFlagTracksMode(t *testing.T) {
	shared := &layer.Coordination{}
	data := series.New(series.Generate(60, 100, 42))
	host := chart.New(data, testW, testH)
	cs := coords.NewSystem(host, data)
	l := NewLayer(cs, data, shared, testOptions(), testW, testH, 1, nil, nil)

	l.SetDrawingMode(true)
	assert.True(t, shared.DrawingActive())
	l.SetTool(ToolTrendline)
	assert.Equal(t, string(ToolTrendline), shared.ActiveTool())

	l.SetDrawingMode(false)
	assert.False(t, shared.DrawingActive())
	assert.Equal(t, "", shared.ActiveTool())
}

func TestEnteringDraftCancelsEdit(t *testing.T) {
	l := testLayer(t, testOptions())
	drawTwoPoint(l, ToolTrendline, geometry.NewPoint2D(100, 100), geometry.NewPoint2D(300, 140))

	// Begin editing an endpoint, then select a tool: the edit session
	// must not survive.
	l.HandleEvent(layer.At(layer.EventDown, 100, 100))
	require.Equal(t, sessionEditing, l.session.kind)
	l.SetTool(ToolRectangle)
	assert.Equal(t, sessionIdle, l.session.kind)
}

func TestReprojectKeepsParity(t *testing.T) {
	l := testLayer(t, testOptions())
	drawTwoPoint(l, ToolTrendline, geometry.NewPoint2D(100, 100), geometry.NewPoint2D(300, 140))
	d := l.Drawings()[0]

	before := make([]series.DataPoint, len(d.DataPoints))
	copy(before, d.DataPoints)

	l.ReprojectAll()
	assert.Equal(t, before, d.DataPoints, "reprojection never rewrites data points")
	assert.Len(t, d.Points, len(d.DataPoints))
}

func TestChannelEndpointDragKeepsHalfWidth(t *testing.T) {
	l := testLayer(t, testOptions())
	a := geometry.NewPoint2D(100, 150)
	b := geometry.NewPoint2D(300, 150)
	drawTwoPoint(l, ToolPriceChannel, a, b)
	d := l.Drawings()[0]
	wantOffset := math.Abs(channelOffset(d))

	l.HandleEvent(layer.At(layer.EventDown, b.X, b.Y))
	require.Equal(t, sessionEditing, l.session.kind)
	l.HandleEvent(layer.At(layer.EventMove, 320, 180))
	l.HandleEvent(layer.At(layer.EventUp, 320, 180))

	assert.InDelta(t, wantOffset, math.Abs(channelOffset(d)), 1e-6,
		"half-width survives center-line edits")
}
