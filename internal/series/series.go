// Package series holds the OHLCV bar data the overlay layers operate on,
// along with the trade-date index used for cross-chart position sync.
package series

import (
	"math"
)

// Bar is one candle of the host chart's data.
type Bar struct {
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	TradeDate string  `json:"trade_date"`
}

// DataPoint is a logical chart coordinate: a series position plus a value.
// Pixel positions are always derived from data points, never the reverse.
type DataPoint struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
	Date  string  `json:"date,omitempty"`
}

// Series is an ordered bar list with an O(1) trade-date lookup.
// The date index is rebuilt in O(n) whenever the bars are replaced.
type Series struct {
	bars      []Bar
	dateIndex map[string]int
}

// New creates a Series from the given bars.
func New(bars []Bar) *Series {
	s := &Series{}
	s.SetBars(bars)
	return s
}

// SetBars replaces the bar list wholesale and rebuilds the date index.
func (s *Series) SetBars(bars []Bar) {
	s.bars = bars
	s.dateIndex = make(map[string]int, len(bars))
	for i, b := range bars {
		if b.TradeDate != "" {
			s.dateIndex[b.TradeDate] = i
		}
	}
}

// Len returns the number of bars.
func (s *Series) Len() int {
	if s == nil {
		return 0
	}
	return len(s.bars)
}

// At returns the bar at index i, or nil when out of range.
func (s *Series) At(i int) *Bar {
	if s == nil || i < 0 || i >= len(s.bars) {
		return nil
	}
	return &s.bars[i]
}

// Last returns the most recent bar, or nil for an empty series.
func (s *Series) Last() *Bar {
	return s.At(len(s.bars) - 1)
}

// IndexOf returns the position of the given trade date, or -1 if unknown.
func (s *Series) IndexOf(tradeDate string) int {
	if s == nil {
		return -1
	}
	if i, ok := s.dateIndex[tradeDate]; ok {
		return i
	}
	return -1
}

// ClampIndex limits i to the valid bar range. Returns -1 for an empty series.
func (s *Series) ClampIndex(i int) int {
	if s.Len() == 0 {
		return -1
	}
	if i < 0 {
		return 0
	}
	if i >= len(s.bars) {
		return len(s.bars) - 1
	}
	return i
}

// ValueRange returns the min low and max high over bars [from, to].
// Returns ok=false when the range contains no bars.
func (s *Series) ValueRange(from, to int) (low, high float64, ok bool) {
	from = s.ClampIndex(from)
	to = s.ClampIndex(to)
	if from < 0 || to < from {
		return 0, 0, false
	}
	low = math.Inf(1)
	high = math.Inf(-1)
	for i := from; i <= to; i++ {
		b := s.bars[i]
		if b.Low < low {
			low = b.Low
		}
		if b.High > high {
			high = b.High
		}
	}
	return low, high, true
}

// MaxVolume returns the largest volume over bars [from, to].
func (s *Series) MaxVolume(from, to int) float64 {
	from = s.ClampIndex(from)
	to = s.ClampIndex(to)
	if from < 0 {
		return 0
	}
	maxV := 0.0
	for i := from; i <= to; i++ {
		if s.bars[i].Volume > maxV {
			maxV = s.bars[i].Volume
		}
	}
	return maxV
}

// Bars returns a copy of the bar list.
func (s *Series) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)
	return out
}
