// Command snapprobe exercises the OHLC snapping and panel probing
// offline: it generates a bar series, mounts a headless chart, and
// prints the snap decision for a grid of pointer positions.
package main

import (
	"flag"
	"fmt"
	"os"

	"chart-annotator/internal/chart"
	"chart-annotator/internal/config"
	"chart-annotator/internal/coords"
	"chart-annotator/internal/series"
	"chart-annotator/pkg/geometry"
)

func main() {
	bars := flag.Int("bars", 60, "number of generated bars")
	seed := flag.Int64("seed", 42, "random walk seed")
	width := flag.Float64("width", 640, "container width")
	height := flag.Float64("height", 420, "container height")
	step := flag.Float64("step", 48, "probe grid step in pixels")
	flag.Parse()

	data := series.New(series.Generate(*bars, 100, *seed))
	host := chart.New(data, *width, *height)
	cs := coords.NewSystem(host, data)
	opts := config.Default()

	priceBounds, ok := cs.Bounds(coords.PanelPrice)
	if !ok {
		fmt.Fprintln(os.Stderr, "price panel bounds unavailable")
		os.Exit(1)
	}
	fmt.Printf("price panel: left=%.0f right=%.0f top=%.0f bottom=%.0f\n",
		priceBounds.Left, priceBounds.Right, priceBounds.Top, priceBounds.Bottom)
	if vb, ok := cs.Bounds(coords.PanelVolume); ok {
		fmt.Printf("volume panel: left=%.0f right=%.0f top=%.0f bottom=%.0f\n",
			vb.Left, vb.Right, vb.Top, vb.Bottom)
	}

	fmt.Printf("\nsnap order: %v\n\n", opts.Crosshair.SnapOrder)
	for y := priceBounds.Top + *step; y < priceBounds.Bottom; y += *step {
		for x := priceBounds.Left + *step; x < priceBounds.Right; x += *step {
			probe(cs, data, geometry.NewPoint2D(x, y), opts.Crosshair.SnapOrder)
		}
	}
}

// probe prints which OHLC field the pointer at p snaps to.
func probe(cs *coords.System, data *series.Series, p geometry.Point2D, order []string) {
	dp, ok := cs.PixelToData(p, coords.PanelPrice)
	if !ok {
		return
	}
	idx := data.ClampIndex(dp.Index)
	bar := data.At(idx)
	if bar == nil {
		return
	}

	values := map[string]float64{
		"open": bar.Open, "high": bar.High, "low": bar.Low, "close": bar.Close,
	}
	bestField := ""
	bestDist := 0.0
	for _, field := range order {
		px, ok := cs.DataToPixel(series.DataPoint{Index: idx, Value: values[field]}, coords.PanelPrice)
		if !ok {
			continue
		}
		d := px.Y - p.Y
		if d < 0 {
			d = -d
		}
		if bestField == "" || d < bestDist {
			bestField = field
			bestDist = d
		}
	}
	fmt.Printf("(%4.0f,%4.0f) bar=%3d %s -> %-5s (%.2f, dy=%.1f)\n",
		p.X, p.Y, idx, bar.TradeDate, bestField, values[bestField], bestDist)
}
