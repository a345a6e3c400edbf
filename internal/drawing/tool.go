// Package drawing implements the annotation layer: point-by-point shape
// construction, endpoint editing with tool-specific constraints, type
// cycling, selection, and a bounded undo/redo history.
package drawing

import (
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "drawing")

// ToolType identifies a drawing tool. Tools are grouped by the number
// of user-placed anchor points; type cycling stays within a group.
type ToolType string

const (
	ToolNone           ToolType = ""
	ToolHorizontalRay  ToolType = "horizontal_ray"
	ToolHorizontalLine ToolType = "horizontal_line"
	ToolTrendline      ToolType = "trendline"
	ToolAngleBox       ToolType = "angle_box"
	ToolRectangle      ToolType = "rectangle"
	ToolPriceChannel   ToolType = "price_channel"
)

// toolSpec describes a tool's point requirements.
type toolSpec struct {
	// points is the stored point count of a committed drawing.
	points int
	// anchors is how many points the user places by hand; the price
	// channel derives its third point from the first two.
	anchors int
}

var toolSpecs = map[ToolType]toolSpec{
	ToolHorizontalRay:  {points: 1, anchors: 1},
	ToolHorizontalLine: {points: 1, anchors: 1},
	ToolTrendline:      {points: 2, anchors: 2},
	ToolAngleBox:       {points: 2, anchors: 2},
	ToolRectangle:      {points: 2, anchors: 2},
	ToolPriceChannel:   {points: 3, anchors: 2},
}

// toolGroups lists the cycling order within each anchor-count group.
// The price channel shares the two-anchor group; switching to or from
// it trims or extends the derived third point.
var toolGroups = [][]ToolType{
	{ToolHorizontalRay, ToolHorizontalLine},
	{ToolTrendline, ToolAngleBox, ToolRectangle, ToolPriceChannel},
}

// Valid reports whether t names a known tool.
func (t ToolType) Valid() bool {
	_, ok := toolSpecs[t]
	return ok
}

// RequiredPoints returns the stored point count of a committed drawing.
func (t ToolType) RequiredPoints() int {
	return toolSpecs[t].points
}

// RequiredAnchors returns how many points the user places directly.
func (t ToolType) RequiredAnchors() int {
	return toolSpecs[t].anchors
}

// NextInGroup returns the next tool in t's point-count group, wrapping.
// Tools alone in their group cycle to themselves.
func (t ToolType) NextInGroup() ToolType {
	for _, group := range toolGroups {
		for i, member := range group {
			if member == t {
				return group[(i+1)%len(group)]
			}
		}
	}
	return t
}
