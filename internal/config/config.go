// Package config provides yaml-backed options for the overlay engine.
// Every magic constant the layers depend on lives here so deployments can
// tune them without touching layer code.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Options is the root configuration.
type Options struct {
	Crosshair CrosshairOptions `yaml:"crosshair"`
	Drawing   DrawingOptions   `yaml:"drawing"`
}

// CrosshairOptions tunes gesture classification and mode switching.
type CrosshairOptions struct {
	// ClickMaxDuration is the longest press still classified as a click.
	ClickMaxDuration time.Duration `yaml:"click_max_duration"`
	// DragThreshold is the displacement in pixels that turns a press into a drag.
	DragThreshold float64 `yaml:"drag_threshold"`
	// DragCaptureRadius is how close (pixels) a crosshair must be to the
	// press point to become the drag target.
	DragCaptureRadius float64 `yaml:"drag_capture_radius"`
	// ClickRadius is the hit radius around an existing crosshair within
	// which a double-tap is treated as a drag start, not a mode toggle.
	ClickRadius float64 `yaml:"click_radius"`
	// JumpZoneRatio reserves the right edge of the panel (x > ratio*width)
	// for the host's jump-to-latest gesture.
	JumpZoneRatio float64 `yaml:"jump_zone_ratio"`
	// ModeSwitchLockDelay is how long the shared mode switch stays locked
	// after a switch, letting every mounted instance observe the change.
	ModeSwitchLockDelay time.Duration `yaml:"mode_switch_lock_delay"`
	// SnapOrder lists the OHLC fields in tie-break order for value snapping.
	SnapOrder []string `yaml:"snap_order"`
}

// DrawingOptions tunes the annotation layer.
type DrawingOptions struct {
	// StrokeHitTolerance is the pixel distance for selecting a shape by its stroke.
	StrokeHitTolerance float64 `yaml:"stroke_hit_tolerance"`
	// EndpointRadius is the rendered endpoint handle radius in pixels.
	EndpointRadius float64 `yaml:"endpoint_radius"`
	// EndpointHitPadding widens the endpoint click target beyond its rendered size.
	EndpointHitPadding float64 `yaml:"endpoint_hit_padding"`
	// ChannelHalfWidth is the default perpendicular half-width of a new price channel.
	ChannelHalfWidth float64 `yaml:"channel_half_width"`
	// SnapRadius is how far (pixels) an endpoint reaches for a key point.
	SnapRadius float64 `yaml:"snap_radius"`
	// HistoryDepth bounds the undo stack.
	HistoryDepth int `yaml:"history_depth"`
	// LineWidth is the default stroke width for new drawings.
	LineWidth float64 `yaml:"line_width"`
	// MagnifierRadius is the radius of the endpoint-drag magnifier overlay.
	MagnifierRadius float64 `yaml:"magnifier_radius"`
	// MagnifierZoom is the magnifier's zoom factor.
	MagnifierZoom float64 `yaml:"magnifier_zoom"`
}

// Default returns the built-in options.
func Default() Options {
	return Options{
		Crosshair: CrosshairOptions{
			ClickMaxDuration:    200 * time.Millisecond,
			DragThreshold:       8,
			DragCaptureRadius:   50,
			ClickRadius:         10,
			JumpZoneRatio:       0.85,
			ModeSwitchLockDelay: 200 * time.Millisecond,
			SnapOrder:           []string{"open", "high", "low", "close"},
		},
		Drawing: DrawingOptions{
			StrokeHitTolerance: 5,
			EndpointRadius:     4,
			EndpointHitPadding: 4,
			ChannelHalfWidth:   50,
			SnapRadius:         12,
			HistoryDepth:       50,
			LineWidth:          1.5,
			MagnifierRadius:    40,
			MagnifierZoom:      2,
		},
	}
}

// Load reads options from a yaml file, filling gaps with defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (Options, error) {
	opts := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, nil
		}
		return opts, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	opts.fillDefaults()
	return opts, nil
}

// fillDefaults replaces zero values with the built-in defaults so a partial
// yaml file cannot produce degenerate thresholds.
func (o *Options) fillDefaults() {
	def := Default()
	c := &o.Crosshair
	if c.ClickMaxDuration <= 0 {
		c.ClickMaxDuration = def.Crosshair.ClickMaxDuration
	}
	if c.DragThreshold <= 0 {
		c.DragThreshold = def.Crosshair.DragThreshold
	}
	if c.DragCaptureRadius <= 0 {
		c.DragCaptureRadius = def.Crosshair.DragCaptureRadius
	}
	if c.ClickRadius <= 0 {
		c.ClickRadius = def.Crosshair.ClickRadius
	}
	if c.JumpZoneRatio <= 0 || c.JumpZoneRatio > 1 {
		c.JumpZoneRatio = def.Crosshair.JumpZoneRatio
	}
	if c.ModeSwitchLockDelay <= 0 {
		c.ModeSwitchLockDelay = def.Crosshair.ModeSwitchLockDelay
	}
	if len(c.SnapOrder) == 0 {
		c.SnapOrder = def.Crosshair.SnapOrder
	}
	d := &o.Drawing
	if d.StrokeHitTolerance <= 0 {
		d.StrokeHitTolerance = def.Drawing.StrokeHitTolerance
	}
	if d.EndpointRadius <= 0 {
		d.EndpointRadius = def.Drawing.EndpointRadius
	}
	if d.EndpointHitPadding <= 0 {
		d.EndpointHitPadding = def.Drawing.EndpointHitPadding
	}
	if d.ChannelHalfWidth <= 0 {
		d.ChannelHalfWidth = def.Drawing.ChannelHalfWidth
	}
	if d.SnapRadius <= 0 {
		d.SnapRadius = def.Drawing.SnapRadius
	}
	if d.HistoryDepth <= 0 {
		d.HistoryDepth = def.Drawing.HistoryDepth
	}
	if d.LineWidth <= 0 {
		d.LineWidth = def.Drawing.LineWidth
	}
	if d.MagnifierRadius <= 0 {
		d.MagnifierRadius = def.Drawing.MagnifierRadius
	}
	if d.MagnifierZoom <= 1 {
		d.MagnifierZoom = def.Drawing.MagnifierZoom
	}
}
