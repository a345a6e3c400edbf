package drawing

import (
	"chart-annotator/internal/coords"
	"chart-annotator/internal/series"
	"chart-annotator/pkg/geometry"
)

// snapper is the magnetic key-point sub-service: endpoints pull toward
// the OHLC values of the bar under the pointer when within radius.
type snapper struct {
	cs     *coords.System
	data   *series.Series
	radius float64
}

// Snap returns the key point nearest p when one lies within the snap
// radius, otherwise p converted as-is. The second return is the matching
// data point; ok=false means the projection failed entirely.
func (s *snapper) Snap(p geometry.Point2D) (geometry.Point2D, series.DataPoint, bool) {
	dp, ok := s.cs.PixelToData(p, coords.PanelPrice)
	if !ok {
		return p, series.DataPoint{}, false
	}
	dp.Index = s.data.ClampIndex(dp.Index)
	bar := s.data.At(dp.Index)
	if bar == nil {
		return p, dp, true
	}
	dp.Date = bar.TradeDate

	bestDist := s.radius
	best := p
	bestDP := dp
	for _, v := range []float64{bar.Open, bar.High, bar.Low, bar.Close} {
		cand := series.DataPoint{Index: dp.Index, Value: v, Date: bar.TradeDate}
		px, ok := s.cs.DataToPixel(cand, coords.PanelPrice)
		if !ok {
			continue
		}
		if d := p.Distance(px); d < bestDist {
			bestDist = d
			best = px
			bestDP = cand
		}
	}
	return best, bestDP, true
}
