package crosshair

import (
	"image/color"
	"math"

	"github.com/google/uuid"

	"chart-annotator/internal/coords"
	"chart-annotator/internal/series"
	"chart-annotator/pkg/colorutil"
	"chart-annotator/pkg/geometry"
)

// Kind distinguishes the cursor variants a layer instance may hold.
type Kind int

const (
	// KindFree follows the pointer exactly.
	KindFree Kind = iota
	// KindSnap sticks to the nearest OHLC key point of the bar under the pointer.
	KindSnap
	// KindFixed is pinned by an external position sync and ignores local moves.
	KindFixed
)

func (k Kind) String() string {
	switch k {
	case KindFree:
		return "free"
	case KindSnap:
		return "snap"
	case KindFixed:
		return "fixed"
	default:
		return "unknown"
	}
}

// Crosshair is one cursor instance.
type Crosshair struct {
	ID     string
	Kind   Kind
	Pos    geometry.Point2D
	Data   *series.DataPoint
	Locked bool
	Color  color.RGBA
}

func newCrosshair(kind Kind, pos geometry.Point2D, dp *series.DataPoint) *Crosshair {
	col := colorutil.Cyan
	switch kind {
	case KindSnap:
		col = colorutil.Orange
	case KindFixed:
		col = colorutil.Magenta
	}
	return &Crosshair{
		ID:    uuid.NewString(),
		Kind:  kind,
		Pos:   pos,
		Data:  dp,
		Color: col,
	}
}

// snapResult is the outcome of an OHLC snap: the bar-centered pixel
// position and the matching data point.
type snapResult struct {
	pos geometry.Point2D
	dp  series.DataPoint
}

// barValue reads the named OHLC field off a bar. Unknown names report
// ok=false so a misconfigured snap order degrades to fewer candidates.
func barValue(b *series.Bar, field string) (float64, bool) {
	switch field {
	case "open":
		return b.Open, true
	case "high":
		return b.High, true
	case "low":
		return b.Low, true
	case "close":
		return b.Close, true
	default:
		return 0, false
	}
}

// snapToKeyPoint finds the OHLC value of the bar under p whose pixel Y
// is closest to the pointer. Candidates are compared in the configured
// field order with a strict less-than, so the earlier field wins ties.
func snapToKeyPoint(cs *coords.System, data *series.Series, p geometry.Point2D, order []string) (snapResult, bool) {
	dp, ok := cs.PixelToData(p, coords.PanelPrice)
	if !ok {
		return snapResult{}, false
	}
	idx := data.ClampIndex(dp.Index)
	bar := data.At(idx)
	if bar == nil {
		return snapResult{}, false
	}

	best := snapResult{}
	bestDist := math.Inf(1)
	for _, field := range order {
		v, ok := barValue(bar, field)
		if !ok {
			continue
		}
		cand := series.DataPoint{Index: idx, Value: v, Date: bar.TradeDate}
		px, ok := cs.DataToPixel(cand, coords.PanelPrice)
		if !ok {
			continue
		}
		if d := math.Abs(px.Y - p.Y); d < bestDist {
			bestDist = d
			best = snapResult{pos: px, dp: cand}
		}
	}
	if math.IsInf(bestDist, 1) {
		return snapResult{}, false
	}
	return best, true
}
