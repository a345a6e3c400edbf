// Package app provides application state, events, and annotation
// persistence for the chart annotator.
package app

import (
	"sync"

	"chart-annotator/internal/config"
	"chart-annotator/internal/series"
)

// EventType identifies different application events.
type EventType int

const (
	EventSeriesLoaded EventType = iota
	EventModeChanged
	EventCrosshairMoved
	EventDrawingsChanged
	EventAnnotationsSaved
	EventAnnotationsLoaded
	EventModified
)

// EventListener handles application events.
type EventListener func(data interface{})

// State holds the shared application state: the loaded series, the
// engine options, and the annotation file path.
type State struct {
	mu sync.RWMutex

	AnnotationsPath string
	Modified        bool

	Series  *series.Series
	Options config.Options

	listeners map[EventType][]EventListener
}

// NewState creates application state with the given options.
func NewState(opts config.Options) *State {
	return &State{
		Options:   opts,
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetSeries replaces the loaded bar series.
func (s *State) SetSeries(data *series.Series) {
	s.mu.Lock()
	s.Series = data
	s.mu.Unlock()
	s.Emit(EventSeriesLoaded, data)
}

// SetModified updates the modified flag.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	changed := s.Modified != modified
	s.Modified = modified
	s.mu.Unlock()
	if changed {
		s.Emit(EventModified, modified)
	}
}
