package series

import (
	"math"
	"math/rand"
	"time"
)

// Generate produces a deterministic random-walk series of n daily bars
// starting at the given price. Used by the demo app and the test suites.
func Generate(n int, start float64, seed int64) []Bar {
	rng := rand.New(rand.NewSource(seed))
	bars := make([]Bar, 0, n)

	day := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	price := start
	for i := 0; i < n; i++ {
		drift := rng.NormFloat64() * start * 0.01
		open := price
		close := price + drift
		spread := math.Abs(rng.NormFloat64()) * start * 0.005
		high := math.Max(open, close) + spread
		low := math.Min(open, close) - spread
		if low < 0.01 {
			low = 0.01
		}
		bars = append(bars, Bar{
			Open:      open,
			High:      high,
			Low:       low,
			Close:     close,
			Volume:    1000 + rng.Float64()*9000,
			TradeDate: day.Format("20060102"),
		})
		price = close
		day = day.AddDate(0, 0, 1)
		// Skip weekends so trade dates look like a real session calendar.
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, 1)
		}
	}
	return bars
}
