package layer

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLayer counts renders and optionally consumes events or panics.
type stubLayer struct {
	name      string
	z         int
	renders   int
	consumes  bool
	panics    bool
	events    []PointerEvent
	destroyed bool
}

func (s *stubLayer) Name() string   { return s.name }
func (s *stubLayer) ZIndex() int    { return s.z }
func (s *stubLayer) Render() {
	if s.panics {
		panic("broken layer")
	}
	s.renders++
}
func (s *stubLayer) HandleEvent(ev PointerEvent) bool {
	s.events = append(s.events, ev)
	return s.consumes
}
func (s *stubLayer) Resize(w, h float64)   {}
func (s *stubLayer) Buffer() *image.RGBA   { return nil }
func (s *stubLayer) Destroy()              { s.destroyed = true }

func TestLayersSortedAscendingByZ(t *testing.T) {
	m := NewManager(nil)
	a := &stubLayer{name: "a", z: 30}
	b := &stubLayer{name: "b", z: 10}
	c := &stubLayer{name: "c", z: 20}
	m.AddLayer(a)
	m.AddLayer(b)
	m.AddLayer(c)

	got := m.Layers()
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].Name())
	assert.Equal(t, "c", got[1].Name())
	assert.Equal(t, "a", got[2].Name())
}

func TestDispatchTopmostConsumesFirst(t *testing.T) {
	m := NewManager(nil)
	bottom := &stubLayer{name: "bottom", z: 1, consumes: true}
	top := &stubLayer{name: "top", z: 2, consumes: true}
	m.AddLayer(bottom)
	m.AddLayer(top)

	assert.True(t, m.DispatchEvent(At(EventDown, 5, 5)))
	assert.Len(t, top.events, 1)
	assert.Empty(t, bottom.events, "consumed event must not reach lower layers")
}

func TestDispatchFallsThrough(t *testing.T) {
	m := NewManager(nil)
	bottom := &stubLayer{name: "bottom", z: 1}
	top := &stubLayer{name: "top", z: 2}
	m.AddLayer(bottom)
	m.AddLayer(top)

	assert.False(t, m.DispatchEvent(At(EventMove, 5, 5)))
	assert.Len(t, top.events, 1)
	assert.Len(t, bottom.events, 1)
}

func TestRenderPanicIsolation(t *testing.T) {
	m := NewManager(nil)
	broken := &stubLayer{name: "broken", z: 1, panics: true}
	healthy := &stubLayer{name: "healthy", z: 2}
	m.AddLayer(broken)
	m.AddLayer(healthy)

	assert.NotPanics(t, m.RenderNow)
	assert.Equal(t, 1, healthy.renders, "healthy layer renders despite broken sibling")
}

func TestRequestRenderCoalesces(t *testing.T) {
	frames := make(chan struct{}, 8)
	m := NewManager(func() { frames <- struct{}{} })
	l := &stubLayer{name: "l", z: 1}
	m.AddLayer(l)

	m.RequestRender()
	m.RequestRender()
	m.RequestRender()

	select {
	case <-frames:
	case <-time.After(time.Second):
		t.Fatal("frame callback never fired")
	}
	// Give a straggler tick a chance to prove coalescing failed.
	time.Sleep(3 * frameInterval)
	assert.Len(t, frames, 0, "repeated requests within one tick must coalesce")
	assert.Equal(t, 1, l.renders)
}

func TestCompositeHonorsZOrder(t *testing.T) {
	m := NewManager(nil)
	bottom := NewBaseLayer("bottom", 1, 4, 4, 1)
	top := NewBaseLayer("top", 2, 4, 4, 1)
	bottom.FillRect(boundsOf(0, 4, 0, 4), rgba(255, 0, 0))
	top.FillRect(boundsOf(0, 4, 0, 4), rgba(0, 255, 0))
	m.AddLayer(&paintedLayer{BaseLayer: bottom})
	m.AddLayer(&paintedLayer{BaseLayer: top})

	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	m.Composite(dst)
	got := dst.RGBAAt(2, 2)
	assert.Equal(t, uint8(0), got.R)
	assert.Equal(t, uint8(255), got.G)
}

func TestDestroyIdempotent(t *testing.T) {
	m := NewManager(nil)
	l := &stubLayer{name: "l", z: 1}
	m.AddLayer(l)

	m.Destroy()
	assert.True(t, l.destroyed)
	assert.Empty(t, m.Layers())
	assert.NotPanics(t, m.Destroy)

	// Post-destroy requests are ignored.
	m.RequestRender()
	time.Sleep(2 * frameInterval)
	assert.Equal(t, 0, l.renders)
}

func TestRemoveLayer(t *testing.T) {
	m := NewManager(nil)
	a := &stubLayer{name: "a", z: 1}
	b := &stubLayer{name: "b", z: 2}
	m.AddLayer(a)
	m.AddLayer(b)
	m.RemoveLayer(a)

	got := m.Layers()
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].Name())
	assert.False(t, a.destroyed, "remove must not destroy")
}
