package layer

import (
	"image"
	"image/draw"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "layer")

// frameInterval is the coalescing window standing in for one animation
// frame: any number of RequestRender calls inside it produce one pass.
const frameInterval = 16 * time.Millisecond

// Manager keeps the layer registry ordered by z-index, coalesces render
// requests into a single pass per frame tick, and routes input events
// top-down until a layer consumes them.
type Manager struct {
	mu        sync.Mutex
	layers    []Layer // ascending z-index
	pending   bool
	timer     *time.Timer
	onFrame   func() // host repaint hook, invoked after a render pass
	destroyed bool
}

// NewManager creates an empty layer manager. onFrame is called after each
// coalesced render pass so the host widget can repaint; it may be nil.
func NewManager(onFrame func()) *Manager {
	return &Manager{onFrame: onFrame}
}

// AddLayer registers a layer, keeping the registry sorted ascending by z.
func (m *Manager) AddLayer(l Layer) {
	if l == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.destroyed {
		return
	}
	m.layers = append(m.layers, l)
	sort.SliceStable(m.layers, func(i, j int) bool {
		return m.layers[i].ZIndex() < m.layers[j].ZIndex()
	})
}

// RemoveLayer unregisters a layer without destroying it.
func (m *Manager) RemoveLayer(l Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.layers {
		if existing == l {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			return
		}
	}
}

// Layers returns the registry snapshot in ascending z order.
func (m *Manager) Layers() []Layer {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Layer, len(m.layers))
	copy(out, m.layers)
	return out
}

// RequestRender schedules one render pass for the next frame tick.
// Repeated calls within the same tick coalesce into a single pass.
func (m *Manager) RequestRender() {
	m.mu.Lock()
	if m.destroyed || m.pending {
		m.mu.Unlock()
		return
	}
	m.pending = true
	m.timer = time.AfterFunc(frameInterval, m.renderTick)
	m.mu.Unlock()
}

func (m *Manager) renderTick() {
	m.mu.Lock()
	m.pending = false
	m.timer = nil
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	layers := make([]Layer, len(m.layers))
	copy(layers, m.layers)
	onFrame := m.onFrame
	m.mu.Unlock()

	for _, l := range layers {
		renderLayer(l)
	}
	if onFrame != nil {
		onFrame()
	}
}

// RenderNow performs an immediate synchronous pass over all layers,
// bypassing the coalescing tick. Used by the host raster callback and tests.
func (m *Manager) RenderNow() {
	for _, l := range m.Layers() {
		renderLayer(l)
	}
}

// renderLayer isolates a single layer's render so one broken layer cannot
// blank the others.
func renderLayer(l Layer) {
	defer func() {
		if r := recover(); r != nil {
			log.WithFields(logrus.Fields{"layer": l.Name(), "panic": r}).
				Warn("layer render failed, skipping this frame")
		}
	}()
	l.Render()
}

// DispatchEvent routes an event through the layers from highest z-index to
// lowest, stopping at the first layer that consumes it.
func (m *Manager) DispatchEvent(ev PointerEvent) bool {
	layers := m.Layers()
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i].HandleEvent(ev) {
			return true
		}
	}
	return false
}

// Resize propagates a container resize to every layer and requests a pass.
func (m *Manager) Resize(w, h float64) {
	for _, l := range m.Layers() {
		l.Resize(w, h)
	}
	m.RequestRender()
}

// Composite paints every layer buffer onto dst in ascending z order.
func (m *Manager) Composite(dst *image.RGBA) {
	if dst == nil {
		return
	}
	for _, l := range m.Layers() {
		buf := l.Buffer()
		if buf == nil {
			continue
		}
		draw.Draw(dst, dst.Bounds(), buf, buf.Bounds().Min, draw.Over)
	}
}

// Destroy cancels any pending frame, destroys all layers, and clears the
// registry. Safe to call more than once.
func (m *Manager) Destroy() {
	m.mu.Lock()
	if m.destroyed {
		m.mu.Unlock()
		return
	}
	m.destroyed = true
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.pending = false
	layers := m.layers
	m.layers = nil
	m.mu.Unlock()

	for _, l := range layers {
		l.Destroy()
	}
}
