package drawing

import (
	"image"

	"chart-annotator/internal/config"
	"chart-annotator/internal/coords"
	"chart-annotator/internal/layer"
	"chart-annotator/internal/series"
	"chart-annotator/pkg/geometry"
)

// sessionKind enumerates the drawing session states. Drafting and
// endpoint editing are mutually exclusive; entering one cancels the other.
type sessionKind int

const (
	sessionIdle sessionKind = iota
	sessionDrafting
	sessionEditing
)

// session is the tagged state of the current drawing interaction.
type session struct {
	kind      sessionKind
	draft     *Drawing // set while drafting
	editID    string   // set while editing
	editIndex int
	dragging  bool       // pointer held on the edited endpoint
	before    []*Drawing // pre-edit snapshot, pushed to history on release
}

// zIndexDrawing places the layer above the crosshair.
const zIndexDrawing = 20

// Layer is the annotation layer: it owns the committed drawing list,
// the in-progress draft, selection and hover state, and the history.
type Layer struct {
	*layer.BaseLayer

	cs     *coords.System
	data   *series.Series
	shared *layer.Coordination
	opts   config.DrawingOptions

	drawings []*Drawing
	history  *History
	snap     *snapper

	drawingMode bool
	activeTool  ToolType

	session    session
	selectedID string
	hoveredID  string
	pointerPos geometry.Point2D

	chartRaster   func() *image.RGBA
	requestRender func()

	// OnDrawingUpdate fires after every committed mutation with the live list.
	OnDrawingUpdate func([]*Drawing)
	// OnToolChange reports the active tool, ToolNone when drawing is off.
	OnToolChange func(ToolType)
}

// NewLayer creates a drawing layer. chartRaster supplies the host chart
// pixels for the endpoint magnifier; either callback may be nil.
func NewLayer(cs *coords.System, data *series.Series, shared *layer.Coordination,
	opts config.DrawingOptions, w, h, scale float64,
	chartRaster func() *image.RGBA, requestRender func()) *Layer {

	return &Layer{
		BaseLayer:     layer.NewBaseLayer("drawing", zIndexDrawing, w, h, scale),
		cs:            cs,
		data:          data,
		shared:        shared,
		opts:          opts,
		history:       NewHistory(opts.HistoryDepth),
		snap:          &snapper{cs: cs, data: data, radius: opts.SnapRadius},
		chartRaster:   chartRaster,
		requestRender: requestRender,
	}
}

// Drawings returns the live drawing list.
func (l *Layer) Drawings() []*Drawing { return l.drawings }

// SetDrawings replaces the list wholesale, e.g. when loading saved
// annotations. The history is seeded fresh and no update is emitted.
func (l *Layer) SetDrawings(list []*Drawing) {
	l.drawings = list
	l.history = NewHistory(l.opts.HistoryDepth)
	l.session = session{}
	l.selectedID = ""
	l.hoveredID = ""
	l.ReprojectAll()
}

// DrawingMode reports whether the layer intercepts pointer events.
func (l *Layer) DrawingMode() bool { return l.drawingMode }

// SetDrawingMode toggles pointer interception. Turning it off cancels
// any session and releases the shared coordination flag.
func (l *Layer) SetDrawingMode(on bool) {
	if l.drawingMode == on {
		return
	}
	l.drawingMode = on
	l.session = session{}
	if l.shared != nil {
		l.shared.SetDrawingActive(on)
	}
	if !on {
		l.setTool(ToolNone)
	}
	l.redraw()
}

// ActiveTool returns the current tool, ToolNone when only selection and
// editing of existing shapes are allowed.
func (l *Layer) ActiveTool() ToolType { return l.activeTool }

// SetTool selects the drawing tool, cancelling any in-progress draft.
// Selecting a tool implies drawing mode.
func (l *Layer) SetTool(t ToolType) {
	if t != ToolNone && !t.Valid() {
		log.WithField("tool", string(t)).Warn("unknown tool ignored")
		return
	}
	if t != ToolNone && !l.drawingMode {
		l.SetDrawingMode(true)
	}
	l.session = session{}
	l.setTool(t)
	l.redraw()
}

func (l *Layer) setTool(t ToolType) {
	if l.activeTool == t {
		return
	}
	l.activeTool = t
	if l.shared != nil {
		l.shared.SetActiveTool(string(t))
	}
	if l.OnToolChange != nil {
		l.OnToolChange(t)
	}
}

// SetSeries swaps the underlying bar data.
func (l *Layer) SetSeries(data *series.Series) {
	l.data = data
	l.snap.data = data
}

// SelectedID returns the selected drawing's id, "" when none.
func (l *Layer) SelectedID() string { return l.selectedID }

// ReprojectAll recomputes every pixel point from data points, called
// after pan, zoom, or resize.
func (l *Layer) ReprojectAll() {
	for _, d := range l.drawings {
		d.Reproject(l.cs)
	}
	l.redraw()
}

// Resize adjusts the buffer and reprojects the cached pixel points.
func (l *Layer) Resize(w, h float64) {
	l.BaseLayer.Resize(w, h)
	for _, d := range l.drawings {
		d.Reproject(l.cs)
	}
}

// Destroy cancels any session and releases the buffer.
func (l *Layer) Destroy() {
	l.session = session{}
	if l.shared != nil && l.drawingMode {
		l.shared.SetDrawingActive(false)
	}
	l.BaseLayer.Destroy()
}

// HandleEvent intercepts pointer events while drawing mode is on.
func (l *Layer) HandleEvent(ev layer.PointerEvent) bool {
	if l.Destroyed() || !l.drawingMode {
		return false
	}
	if ev.Touches > 1 {
		l.session = session{}
		l.redraw()
		return false
	}

	switch ev.Kind {
	case layer.EventDown:
		return l.handleDown(ev.Pos)
	case layer.EventMove:
		return l.handleMove(ev.Pos)
	case layer.EventUp:
		return l.handleUp(ev.Pos)
	case layer.EventLeave:
		l.session = session{}
		l.hoveredID = ""
		l.redraw()
		return false
	}
	return false
}

func (l *Layer) handleDown(p geometry.Point2D) bool {
	area, ok := l.cs.ValidArea()
	if !ok || !area.Contains(p) {
		return false
	}
	l.pointerPos = p

	// Continue an in-progress draft before anything else.
	if l.session.kind == sessionDrafting {
		l.placeDraftAnchor(p)
		return true
	}

	// Endpoint under the pointer wins: enter edit mode, cancelling any draft.
	if id, idx, ok := l.endpointAt(p); ok {
		l.session = session{
			kind: sessionEditing, editID: id, editIndex: idx,
			dragging: true, before: snapshot(l.drawings),
		}
		l.selectedID = id
		l.redraw()
		return true
	}

	// Stroke hit selects without drawing.
	if d := l.strokeAt(p, area); d != nil {
		l.session = session{}
		l.selectedID = d.ID
		l.redraw()
		return true
	}

	// Empty space with an active tool starts a draft, snapped.
	if l.activeTool.Valid() {
		l.startDraft(p)
		return true
	}

	// No tool: a tap on empty space drops the selection.
	l.selectedID = ""
	l.redraw()
	return true
}

func (l *Layer) handleMove(p geometry.Point2D) bool {
	l.pointerPos = p
	switch l.session.kind {
	case sessionEditing:
		if !l.session.dragging {
			return false
		}
		if d := l.byID(l.session.editID); d != nil && !d.Locked {
			l.applyEditMove(d, l.session.editIndex, p)
			d.syncDataPoints(l.cs, l.data)
		}
		l.redraw()
		return true
	case sessionDrafting:
		l.redraw()
		return true
	}

	// Hover feedback outside any session.
	hovered := ""
	if area, ok := l.cs.ValidArea(); ok {
		if d := l.strokeAt(p, area); d != nil {
			hovered = d.ID
		}
	}
	if hovered != l.hoveredID {
		l.hoveredID = hovered
		l.redraw()
	}
	return false
}

func (l *Layer) handleUp(p geometry.Point2D) bool {
	switch l.session.kind {
	case sessionEditing:
		if !l.session.dragging {
			return false
		}
		before := l.session.before
		l.session = session{}
		l.history.Save(before)
		l.emitUpdate()
		l.redraw()
		return true
	case sessionDrafting:
		draft := l.session.draft
		if draft != nil && len(draft.Points) >= draft.Type.RequiredAnchors() {
			l.commitDraft()
		}
		return true
	}
	return false
}

// startDraft opens a new draft with its first point snapped.
func (l *Layer) startDraft(p geometry.Point2D) {
	draft := newDrawing(l.activeTool, l.opts.LineWidth)
	if l.activeTool == ToolPriceChannel {
		draft.Config.HalfWidth = l.opts.ChannelHalfWidth
	}
	snapped, dp, ok := l.snap.Snap(p)
	if !ok {
		return
	}
	draft.Points = append(draft.Points, snapped)
	draft.DataPoints = append(draft.DataPoints, dp)
	l.session = session{kind: sessionDrafting, draft: draft}
	l.selectedID = ""
	l.redraw()
}

// placeDraftAnchor adds the next user anchor to the draft.
func (l *Layer) placeDraftAnchor(p geometry.Point2D) {
	draft := l.session.draft
	if draft == nil {
		l.session = session{}
		return
	}
	snapped, dp, ok := l.snap.Snap(p)
	if !ok {
		return
	}
	snapped = l.constrainAnchor(draft, snapped)
	draft.Points = append(draft.Points, snapped)
	draft.DataPoints = append(draft.DataPoints, dp)
	draft.syncDataPoints(l.cs, l.data)
	l.redraw()
}

// constrainAnchor applies the tool's placement constraint to the next
// anchor position.
func (l *Layer) constrainAnchor(d *Drawing, p geometry.Point2D) geometry.Point2D {
	if d.Type == ToolAngleBox && len(d.Points) >= 1 && p.X < d.Points[0].X {
		p.X = d.Points[0].X
	}
	return p
}

// commitDraft finalizes the draft: derive the channel's control point,
// refresh data points, append, and push history.
func (l *Layer) commitDraft() {
	draft := l.session.draft
	l.session = session{}
	if draft == nil {
		return
	}
	if draft.Type == ToolPriceChannel && len(draft.Points) == 2 {
		mid, perp := channelMidline(draft.Points[0], draft.Points[1])
		draft.Points = append(draft.Points, geometry.OffsetAlong(mid, perp, draft.Config.HalfWidth))
	}
	if !draft.Complete() {
		return
	}
	draft.syncDataPoints(l.cs, l.data)
	l.history.Save(l.drawings)
	l.drawings = append(l.drawings, draft)
	l.selectedID = draft.ID
	l.emitUpdate()
	l.redraw()
}

// applyEditMove moves one endpoint under the tool's edit constraint.
func (l *Layer) applyEditMove(d *Drawing, idx int, p geometry.Point2D) {
	if idx < 0 || idx >= len(d.Points) {
		return
	}
	switch {
	case d.Type == ToolPriceChannel && idx == 2:
		// The control point only slides along the channel's width axis.
		d.Points[2] = channelControlPoint(d.Points[0], d.Points[1], p)
		return
	case d.Type == ToolPriceChannel:
		offset := channelOffset(d)
		snapped, _, _ := l.snap.Snap(p)
		d.Points[idx] = snapped
		mid, perp := channelMidline(d.Points[0], d.Points[1])
		d.Points[2] = geometry.OffsetAlong(mid, perp, offset)
		return
	case d.Type == ToolAngleBox && idx == 1:
		snapped, _, _ := l.snap.Snap(p)
		if snapped.X < d.Points[0].X {
			snapped.X = d.Points[0].X
		}
		d.Points[1] = snapped
		return
	case d.Type == ToolAngleBox && idx == 0:
		snapped, _, _ := l.snap.Snap(p)
		d.Points[0] = snapped
		if len(d.Points) > 1 && d.Points[1].X < d.Points[0].X {
			d.Points[1].X = d.Points[0].X
		}
		return
	default:
		snapped, _, _ := l.snap.Snap(p)
		d.Points[idx] = snapped
	}
}

// endpointAt finds a drawing endpoint within the hit radius of p,
// preferring the selected drawing, then topmost committed order.
func (l *Layer) endpointAt(p geometry.Point2D) (id string, index int, ok bool) {
	radius := l.opts.EndpointRadius + l.opts.EndpointHitPadding
	if sel := l.byID(l.selectedID); sel != nil {
		if idx, ok := endpointIndexAt(sel, p, radius); ok {
			return sel.ID, idx, true
		}
	}
	for i := len(l.drawings) - 1; i >= 0; i-- {
		d := l.drawings[i]
		if !d.Visible || d.Locked {
			continue
		}
		if idx, ok := endpointIndexAt(d, p, radius); ok {
			return d.ID, idx, true
		}
	}
	return "", 0, false
}

func endpointIndexAt(d *Drawing, p geometry.Point2D, radius float64) (int, bool) {
	for i, pt := range d.Points {
		if pt.Distance(p) <= radius {
			return i, true
		}
	}
	return 0, false
}

// strokeAt returns the topmost visible drawing whose stroke is within
// the hit tolerance of p.
func (l *Layer) strokeAt(p geometry.Point2D, area geometry.Bounds) *Drawing {
	for i := len(l.drawings) - 1; i >= 0; i-- {
		d := l.drawings[i]
		if !d.Visible {
			continue
		}
		if d.hitStroke(p, area, l.opts.StrokeHitTolerance) {
			return d
		}
	}
	return nil
}

func (l *Layer) byID(id string) *Drawing {
	if id == "" {
		return nil
	}
	for _, d := range l.drawings {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// DeleteSelected removes the selected drawing and pushes history.
func (l *Layer) DeleteSelected() {
	if l.byID(l.selectedID) == nil {
		return
	}
	l.history.Save(l.drawings)
	kept := make([]*Drawing, 0, len(l.drawings)-1)
	for _, d := range l.drawings {
		if d.ID != l.selectedID {
			kept = append(kept, d)
		}
	}
	l.drawings = kept
	l.selectedID = ""
	l.session = session{}
	l.emitUpdate()
	l.redraw()
}

// ClearAll removes every drawing and pushes history.
func (l *Layer) ClearAll() {
	if len(l.drawings) == 0 {
		return
	}
	l.history.Save(l.drawings)
	l.drawings = nil
	l.selectedID = ""
	l.hoveredID = ""
	l.session = session{}
	l.emitUpdate()
	l.redraw()
}

// Undo replaces the list with the previous snapshot.
func (l *Layer) Undo() {
	list, ok := l.history.Undo(l.drawings)
	if !ok {
		return
	}
	l.restore(list)
}

// Redo replaces the list with the next snapshot.
func (l *Layer) Redo() {
	list, ok := l.history.Redo(l.drawings)
	if !ok {
		return
	}
	l.restore(list)
}

func (l *Layer) restore(list []*Drawing) {
	l.drawings = list
	l.session = session{}
	if l.byID(l.selectedID) == nil {
		l.selectedID = ""
	}
	if l.byID(l.hoveredID) == nil {
		l.hoveredID = ""
	}
	for _, d := range l.drawings {
		d.Reproject(l.cs)
	}
	l.emitUpdate()
	l.redraw()
}

// CycleType switches the selected drawing to the next tool in its
// anchor-count group, resetting its config and trimming or extending
// the derived points.
func (l *Layer) CycleType() {
	d := l.byID(l.selectedID)
	if d == nil || d.Locked {
		return
	}
	next := d.Type.NextInGroup()
	if next == d.Type {
		return
	}
	l.history.Save(l.drawings)
	d.Type = next
	d.Config = Config{}
	switch {
	case next == ToolPriceChannel:
		d.Config.HalfWidth = l.opts.ChannelHalfWidth
		if len(d.Points) == 2 {
			mid, perp := channelMidline(d.Points[0], d.Points[1])
			d.Points = append(d.Points, geometry.OffsetAlong(mid, perp, d.Config.HalfWidth))
		}
	case len(d.Points) > next.RequiredPoints():
		d.Points = d.Points[:next.RequiredPoints()]
		d.DataPoints = d.DataPoints[:next.RequiredPoints()]
	}
	if next == ToolAngleBox && len(d.Points) == 2 && d.Points[1].X < d.Points[0].X {
		d.Points[1].X = d.Points[0].X
	}
	d.syncDataPoints(l.cs, l.data)
	l.emitUpdate()
	l.redraw()
}

// CanUndo reports whether an undo step exists.
func (l *Layer) CanUndo() bool { return l.history.CanUndo() }

// CanRedo reports whether a redo step exists.
func (l *Layer) CanRedo() bool { return l.history.CanRedo() }

func (l *Layer) emitUpdate() {
	if l.OnDrawingUpdate != nil {
		l.OnDrawingUpdate(l.drawings)
	}
}

func (l *Layer) redraw() {
	if l.requestRender != nil {
		l.requestRender()
	}
}
