package layer

import "sync"

// Coordination is the small shared object the crosshair and drawing layers
// use to avoid double-handling the same gesture. The drawing layer writes,
// the crosshair layer reads; neither inspects the other's presentation
// state.
type Coordination struct {
	mu            sync.RWMutex
	drawingActive bool
	activeTool    string
}

// SetDrawingActive flags whether the drawing layer currently intercepts
// pointer events.
func (c *Coordination) SetDrawingActive(active bool) {
	c.mu.Lock()
	c.drawingActive = active
	c.mu.Unlock()
}

// DrawingActive reports whether the drawing layer owns pointer input.
func (c *Coordination) DrawingActive() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.drawingActive
}

// SetActiveTool records the drawing tool name ("" when none).
func (c *Coordination) SetActiveTool(tool string) {
	c.mu.Lock()
	c.activeTool = tool
	c.mu.Unlock()
}

// ActiveTool returns the current drawing tool name.
func (c *Coordination) ActiveTool() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeTool
}
