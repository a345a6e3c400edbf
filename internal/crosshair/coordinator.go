// Package crosshair implements the multi-mode cursor layer: a free
// cursor, a value-snapped cursor, or both, with touch/mouse gesture
// disambiguation and cross-chart position mirroring.
package crosshair

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "crosshair")

// Mode is the globally selected crosshair mode shared by every mounted
// chart instance.
type Mode int32

const (
	ModeNone Mode = iota
	ModeFree
	ModeSnap
	ModeDual
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeFree:
		return "free"
	case ModeSnap:
		return "snap"
	case ModeDual:
		return "dual"
	default:
		return "invalid"
	}
}

// Valid reports whether m is one of the four defined modes.
func (m Mode) Valid() bool {
	return m >= ModeNone && m <= ModeDual
}

// Coordinator is the shared mode store. Readers never block; mode reads
// go through an atomic. Switch requests serialize through a timed lock:
// after a successful switch the lock stays held for a fixed delay so
// every mounted instance observes the store update before another
// switch is accepted.
type Coordinator struct {
	mode atomic.Int32

	mu        sync.Mutex
	locked    bool
	lockDelay time.Duration
	listeners map[int]func(Mode)
	nextID    int
}

// NewCoordinator creates a coordinator starting at ModeNone.
// A non-positive lockDelay falls back to 200ms.
func NewCoordinator(lockDelay time.Duration) *Coordinator {
	if lockDelay <= 0 {
		lockDelay = 200 * time.Millisecond
	}
	return &Coordinator{
		lockDelay: lockDelay,
		listeners: make(map[int]func(Mode)),
	}
}

// CurrentMode returns the shared mode without blocking.
func (c *Coordinator) CurrentMode() Mode {
	return Mode(c.mode.Load())
}

// RequestSwitch advances the mode in cycling order none, free, snap,
// dual, none. While the timed lock from a previous switch is still held
// the request is rejected and the current mode returned unchanged.
func (c *Coordinator) RequestSwitch() Mode {
	c.mu.Lock()
	if c.locked {
		c.mu.Unlock()
		return c.CurrentMode()
	}
	c.locked = true
	next := (c.CurrentMode() + 1) % 4
	c.mode.Store(int32(next))
	listeners := c.snapshotListeners()
	c.mu.Unlock()

	time.AfterFunc(c.lockDelay, c.releaseLock)
	log.WithField("mode", next).Debug("mode switched")
	for _, fn := range listeners {
		fn(next)
	}
	return next
}

// SetMode writes the mode directly, bypassing the switch lock. Invalid
// values reset to ModeNone. Listeners are notified on change.
func (c *Coordinator) SetMode(m Mode) {
	if !m.Valid() {
		log.WithField("mode", int32(m)).Warn("invalid mode, resetting to none")
		m = ModeNone
	}
	if Mode(c.mode.Swap(int32(m))) == m {
		return
	}
	c.mu.Lock()
	listeners := c.snapshotListeners()
	c.mu.Unlock()
	for _, fn := range listeners {
		fn(m)
	}
}

// Subscribe registers a mode-change listener and returns its remover.
func (c *Coordinator) Subscribe(fn func(Mode)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Coordinator) releaseLock() {
	c.mu.Lock()
	c.locked = false
	c.mu.Unlock()
}

// snapshotListeners copies the listener set, locked by the caller.
func (c *Coordinator) snapshotListeners() []func(Mode) {
	out := make([]func(Mode), 0, len(c.listeners))
	for _, fn := range c.listeners {
		out = append(out, fn)
	}
	return out
}
