// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

const prefsFile = "preferences.json"

// Prefs stores the window and tool preferences persisted between runs.
type Prefs struct {
	mu   sync.RWMutex
	path string

	WindowWidth   float64 `json:"window_width"`
	WindowHeight  float64 `json:"window_height"`
	LastTool      string  `json:"last_tool,omitempty"`
	CrosshairMode int     `json:"crosshair_mode"`
	Annotations   string  `json:"annotations_path,omitempty"`
}

// Load reads preferences from ~/.config/chart-annotator/preferences.json.
// Defaults are returned when the file does not exist.
func Load() *Prefs {
	p := &Prefs{
		WindowWidth:  1280,
		WindowHeight: 720,
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	dir := filepath.Join(configDir, "chart-annotator")
	p.path = filepath.Join(dir, prefsFile)

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, p)
	if p.WindowWidth < 320 {
		p.WindowWidth = 1280
	}
	if p.WindowHeight < 240 {
		p.WindowHeight = 720
	}
	return p
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return err
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0o644)
}

// SetWindowSize records the last window size.
func (p *Prefs) SetWindowSize(w, h float64) {
	p.mu.Lock()
	p.WindowWidth = w
	p.WindowHeight = h
	p.mu.Unlock()
}

// SetLastTool records the most recently used drawing tool.
func (p *Prefs) SetLastTool(tool string) {
	p.mu.Lock()
	p.LastTool = tool
	p.mu.Unlock()
}

// SetCrosshairMode records the shared crosshair mode.
func (p *Prefs) SetCrosshairMode(mode int) {
	p.mu.Lock()
	p.CrosshairMode = mode
	p.mu.Unlock()
}
