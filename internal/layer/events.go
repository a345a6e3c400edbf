package layer

import (
	"time"

	"chart-annotator/pkg/geometry"
)

// EventKind classifies a pointer event.
type EventKind int

const (
	EventDown EventKind = iota
	EventMove
	EventUp
	EventLeave
	EventDoubleTap
)

func (k EventKind) String() string {
	switch k {
	case EventDown:
		return "down"
	case EventMove:
		return "move"
	case EventUp:
		return "up"
	case EventLeave:
		return "leave"
	case EventDoubleTap:
		return "doubletap"
	default:
		return "unknown"
	}
}

// PointerEvent is the input envelope routed through the layer stack.
// Positions are in CSS pixels relative to the chart container.
type PointerEvent struct {
	Kind    EventKind
	Pos     geometry.Point2D
	Touch   bool // true for touch input, false for mouse
	Touches int  // active touch count; >1 hands the gesture back to the host
	Time    time.Time
}

// At returns a PointerEvent at the given position with the current time.
// Convenience for tests and synthetic gestures.
func At(kind EventKind, x, y float64) PointerEvent {
	return PointerEvent{Kind: kind, Pos: geometry.NewPoint2D(x, y), Time: time.Now()}
}
