package crosshair

import (
	"time"

	"chart-annotator/internal/config"
	"chart-annotator/internal/coords"
	"chart-annotator/internal/layer"
	"chart-annotator/internal/series"
	"chart-annotator/pkg/geometry"
)

// phaseKind enumerates the gesture classifier states. Illegal flag
// combinations are unrepresentable: a gesture is exactly one of these.
type phaseKind int

const (
	phaseIdle phaseKind = iota
	phasePressed
	phaseDragging
)

// inputPhase is the classifier state plus the facts gathered at
// pointer-down that later transitions depend on.
type inputPhase struct {
	kind    phaseKind
	start   geometry.Point2D
	started time.Time
	touch   bool
	target  *Crosshair // drag capture candidate, nil when none was near
}

// Layer is the crosshair layer. It owns at most one free and one snap
// crosshair, classifies pointer gestures into click/drag/double-tap,
// and mirrors its position to linked charts through callbacks.
type Layer struct {
	*layer.BaseLayer

	cs     *coords.System
	data   *series.Series
	modes  *Coordinator
	shared *layer.Coordination
	opts   config.CrosshairOptions

	active     bool
	crosshairs []*Crosshair
	lastPos    geometry.Point2D

	phase         inputPhase
	unsubscribe   func()
	requestRender func()

	// OnDataUpdate carries the bar under the cursor, nil when cleared.
	OnDataUpdate func(*series.Bar)
	// OnStateChange fires when activation flips; hosts gate pan/zoom on it.
	OnStateChange func(hasCrosshair bool)
	// OnPositionChange mirrors the cursor's trade date to linked charts,
	// nil when the cursor is cleared.
	OnPositionChange func(tradeDate *string)
}

// zIndexCrosshair places the layer above the chart, below drawings.
const zIndexCrosshair = 10

// NewLayer creates a crosshair layer bound to the given coordinate
// system, series, shared mode coordinator, and cross-layer coordination
// object. requestRender schedules a compositor pass; it may be nil.
func NewLayer(cs *coords.System, data *series.Series, modes *Coordinator,
	shared *layer.Coordination, opts config.CrosshairOptions,
	w, h, scale float64, requestRender func()) *Layer {

	l := &Layer{
		BaseLayer:     layer.NewBaseLayer("crosshair", zIndexCrosshair, w, h, scale),
		cs:            cs,
		data:          data,
		modes:         modes,
		shared:        shared,
		opts:          opts,
		requestRender: requestRender,
	}
	l.unsubscribe = modes.Subscribe(l.applyMode)
	return l
}

// HasCrosshair reports whether the layer is active or holds a cursor.
func (l *Layer) HasCrosshair() bool {
	return l.active || len(l.crosshairs) > 0
}

// Crosshairs returns the live cursor list.
func (l *Layer) Crosshairs() []*Crosshair {
	return l.crosshairs
}

// SetSeries swaps the underlying bar data.
func (l *Layer) SetSeries(data *series.Series) {
	l.data = data
}

// Destroy unsubscribes from the mode coordinator and releases the buffer.
func (l *Layer) Destroy() {
	if l.unsubscribe != nil {
		l.unsubscribe()
		l.unsubscribe = nil
	}
	l.crosshairs = nil
	l.active = false
	l.BaseLayer.Destroy()
}

// HandleEvent classifies pointer input. Returns true when the gesture
// belongs to this layer.
func (l *Layer) HandleEvent(ev layer.PointerEvent) bool {
	if l.Destroyed() {
		return false
	}
	if l.shared != nil && l.shared.DrawingActive() {
		return false
	}
	if ev.Touches > 1 {
		// Multi-touch belongs to the host's pinch gestures.
		l.phase = inputPhase{}
		return false
	}
	if l.modes.CurrentMode() == ModeNone {
		return false
	}

	switch ev.Kind {
	case layer.EventDown:
		return l.handleDown(ev)
	case layer.EventMove:
		return l.handleMove(ev)
	case layer.EventUp:
		return l.handleUp(ev)
	case layer.EventLeave:
		return l.handleLeave(ev)
	case layer.EventDoubleTap:
		return l.handleDoubleTap(ev)
	}
	return false
}

func (l *Layer) handleDown(ev layer.PointerEvent) bool {
	area, ok := l.cs.ValidArea()
	if !ok || !area.Contains(ev.Pos) {
		return false
	}
	l.phase = inputPhase{
		kind:    phasePressed,
		start:   ev.Pos,
		started: ev.Time,
		touch:   ev.Touch,
		target:  l.captureCandidate(ev.Pos),
	}
	return true
}

func (l *Layer) handleMove(ev layer.PointerEvent) bool {
	switch l.phase.kind {
	case phasePressed:
		if ev.Pos.Distance(l.phase.start) <= l.opts.DragThreshold {
			return true
		}
		if l.phase.target == nil {
			// A drag with no nearby crosshair is the host's pan gesture.
			l.phase = inputPhase{}
			return false
		}
		l.phase.kind = phaseDragging
		fallthrough
	case phaseDragging:
		l.dragTo(l.phase.target, ev.Pos)
		return true
	}

	// Hover on desktop: the cursor follows the pointer while active.
	if l.active && !ev.Touch {
		area, ok := l.cs.ValidArea()
		if !ok || !area.Contains(ev.Pos) {
			l.deactivate()
			return false
		}
		l.moveTo(ev.Pos)
		return true
	}
	return false
}

func (l *Layer) handleUp(ev layer.PointerEvent) bool {
	phase := l.phase
	l.phase = inputPhase{}
	switch phase.kind {
	case phasePressed:
		if ev.Time.Sub(phase.started) > l.opts.ClickMaxDuration {
			return true
		}
		if l.active {
			l.deactivate()
		} else {
			l.activateAt(phase.start)
		}
		return true
	case phaseDragging:
		return true
	}
	return false
}

func (l *Layer) handleLeave(ev layer.PointerEvent) bool {
	l.phase = inputPhase{}
	if ev.Touch || !l.active {
		return false
	}
	l.deactivate()
	return true
}

func (l *Layer) handleDoubleTap(ev layer.PointerEvent) bool {
	if l.inJumpZone(ev.Pos) {
		return false
	}
	if c := l.crosshairAt(ev.Pos, l.opts.ClickRadius); c != nil {
		// Near an existing cursor this is a drag start, not a toggle.
		return false
	}
	if ev.Touch {
		if l.active {
			l.deactivate()
		} else {
			l.activateAt(ev.Pos)
		}
		return true
	}
	l.modes.RequestSwitch()
	return true
}

// captureCandidate returns the nearest unlocked crosshair within the
// drag capture radius of p, or nil.
func (l *Layer) captureCandidate(p geometry.Point2D) *Crosshair {
	var best *Crosshair
	bestDist := l.opts.DragCaptureRadius
	for _, c := range l.crosshairs {
		if c.Locked {
			continue
		}
		if d := c.Pos.Distance(p); d <= bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

// crosshairAt returns a crosshair within radius of p, or nil.
func (l *Layer) crosshairAt(p geometry.Point2D, radius float64) *Crosshair {
	for _, c := range l.crosshairs {
		if c.Pos.Distance(p) <= radius {
			return c
		}
	}
	return nil
}

// inJumpZone reports whether p falls in the reserved right-edge strip
// the host uses for its jump-to-latest gesture.
func (l *Layer) inJumpZone(p geometry.Point2D) bool {
	area, ok := l.cs.ValidArea()
	if !ok {
		return false
	}
	return p.X > area.Left+l.opts.JumpZoneRatio*area.Width()
}

// activateAt clears any existing cursors and creates new ones at p
// according to the shared mode.
func (l *Layer) activateAt(p geometry.Point2D) {
	l.crosshairs = nil
	l.placeAt(p)
	if len(l.crosshairs) == 0 {
		return
	}
	l.active = true
	l.lastPos = p
	l.notifyState()
	l.notifyCursor()
	l.redraw()
}

// deactivate clears all unlocked cursors and the active flag, emitting
// the cleared-position notifications for linked charts.
func (l *Layer) deactivate() {
	kept := l.crosshairs[:0]
	for _, c := range l.crosshairs {
		if c.Locked {
			kept = append(kept, c)
		}
	}
	l.crosshairs = kept
	l.active = false
	l.notifyState()
	if l.OnDataUpdate != nil {
		l.OnDataUpdate(nil)
	}
	if l.OnPositionChange != nil {
		l.OnPositionChange(nil)
	}
	l.redraw()
}

// moveTo repositions every unlocked cursor to follow the pointer.
func (l *Layer) moveTo(p geometry.Point2D) {
	l.lastPos = p
	for _, c := range l.crosshairs {
		if c.Locked {
			continue
		}
		l.positionCursor(c, p)
	}
	l.notifyCursor()
	l.redraw()
}

// dragTo moves a single captured cursor.
func (l *Layer) dragTo(c *Crosshair, p geometry.Point2D) {
	if c == nil {
		return
	}
	if area, ok := l.cs.ValidArea(); ok {
		p = area.Clamp(p)
	}
	l.lastPos = p
	l.positionCursor(c, p)
	l.notifyCursor()
	l.redraw()
}

// positionCursor places one cursor at p per its kind.
func (l *Layer) positionCursor(c *Crosshair, p geometry.Point2D) {
	switch c.Kind {
	case KindSnap:
		if res, ok := snapToKeyPoint(l.cs, l.data, p, l.opts.SnapOrder); ok {
			c.Pos = res.pos
			dp := res.dp
			c.Data = &dp
		}
	default:
		c.Pos = p
		c.Data = l.dataAt(p)
	}
}

// placeAt appends the cursors the current mode calls for, evicting any
// existing cursor of the same kind.
func (l *Layer) placeAt(p geometry.Point2D) {
	mode := l.modes.CurrentMode()
	if mode == ModeFree || mode == ModeDual {
		l.upsert(newCrosshair(KindFree, p, l.dataAt(p)))
	}
	if mode == ModeSnap || mode == ModeDual {
		if res, ok := snapToKeyPoint(l.cs, l.data, p, l.opts.SnapOrder); ok {
			dp := res.dp
			l.upsert(newCrosshair(KindSnap, res.pos, &dp))
		}
	}
}

// upsert inserts c, evicting the previous cursor of the same kind so at
// most one free and one snap cursor exist.
func (l *Layer) upsert(c *Crosshair) {
	kept := l.crosshairs[:0]
	for _, existing := range l.crosshairs {
		if existing.Kind != c.Kind {
			kept = append(kept, existing)
		}
	}
	l.crosshairs = append(kept, c)
}

// dataAt converts p to a data point, preferring the panel under p.
func (l *Layer) dataAt(p geometry.Point2D) *series.DataPoint {
	panel := l.cs.PanelAt(p)
	if panel < 0 {
		panel = coords.PanelPrice
	}
	dp, ok := l.cs.PixelToData(p, panel)
	if !ok {
		return nil
	}
	dp.Index = l.data.ClampIndex(dp.Index)
	if bar := l.data.At(dp.Index); bar != nil {
		dp.Date = bar.TradeDate
	}
	return &dp
}

// SetPositionByDate pins a fixed cursor at the bar with the given trade
// date, or clears the cursors when the date is nil or unknown. Used to
// mirror the cursor across independently mounted charts; the fixed
// cursor ignores local pointer moves, and the call does not re-emit
// OnPositionChange.
func (l *Layer) SetPositionByDate(tradeDate *string) {
	if tradeDate == nil {
		l.clearSilently()
		return
	}
	idx := l.data.IndexOf(*tradeDate)
	if idx < 0 {
		l.clearSilently()
		return
	}
	bar := l.data.At(idx)
	dp := series.DataPoint{Index: idx, Value: bar.Close, Date: bar.TradeDate}
	pos, ok := l.cs.DataToPixel(dp, coords.PanelPrice)
	if !ok {
		l.clearSilently()
		return
	}

	wasActive := l.HasCrosshair()
	c := newCrosshair(KindFixed, pos, &dp)
	c.Locked = true
	l.crosshairs = []*Crosshair{c}
	l.active = true
	l.lastPos = pos
	if !wasActive && l.OnStateChange != nil {
		l.OnStateChange(true)
	}
	if l.OnDataUpdate != nil {
		l.OnDataUpdate(bar)
	}
	l.redraw()
}

// clearSilently removes all cursors without the position notification.
func (l *Layer) clearSilently() {
	wasActive := l.HasCrosshair()
	l.crosshairs = nil
	l.active = false
	l.phase = inputPhase{}
	if wasActive && l.OnStateChange != nil {
		l.OnStateChange(false)
	}
	if wasActive && l.OnDataUpdate != nil {
		l.OnDataUpdate(nil)
	}
	l.redraw()
}

// applyMode reacts to a shared mode change: rebuild the cursors at the
// last position, or clear everything for ModeNone.
func (l *Layer) applyMode(m Mode) {
	if m == ModeNone {
		l.clearSilently()
		return
	}
	if !l.active {
		l.redraw()
		return
	}
	l.crosshairs = nil
	l.placeAt(l.lastPos)
	l.notifyCursor()
	l.redraw()
}

// notifyState reports the activation flag outward.
func (l *Layer) notifyState() {
	if l.OnStateChange != nil {
		l.OnStateChange(l.HasCrosshair())
	}
}

// notifyCursor reports the bar and trade date under the leading cursor.
func (l *Layer) notifyCursor() {
	c := l.leadCursor()
	if c == nil || c.Data == nil {
		return
	}
	bar := l.data.At(c.Data.Index)
	if l.OnDataUpdate != nil {
		l.OnDataUpdate(bar)
	}
	if l.OnPositionChange != nil && bar != nil {
		date := bar.TradeDate
		l.OnPositionChange(&date)
	}
}

// leadCursor picks the cursor that drives callbacks: free over snap.
func (l *Layer) leadCursor() *Crosshair {
	var snap *Crosshair
	for _, c := range l.crosshairs {
		if c.Kind == KindFree {
			return c
		}
		if c.Kind == KindSnap {
			snap = c
		}
	}
	return snap
}

func (l *Layer) redraw() {
	if l.requestRender != nil {
		l.requestRender()
	}
}
