// Package chart turns hourly score averages into a PNG line plot.
package chart

import (
	"bytes"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"sleepscore-bot/internal/domain"
)

// Render produces a PNG line plot of average score per hour of day, with a
// marker at each data point and grid lines enabled. It is a pure function of
// its input. A single data point renders as a lone marker.
func Render(averages []domain.HourlyAverage) ([]byte, error) {
	if len(averages) == 0 {
		return nil, fmt.Errorf("chart: no data points")
	}

	p := plot.New()
	p.X.Label.Text = "Hour"
	p.Y.Label.Text = "Average Score"
	p.Add(plotter.NewGrid())

	xys := make(plotter.XYs, len(averages))
	for i, avg := range averages {
		xys[i].X = float64(avg.Hour)
		xys[i].Y = avg.Score
	}

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("chart: build series: %w", err)
	}
	p.Add(line, points)

	wt, err := p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("chart: encode png: %w", err)
	}

	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("chart: write png: %w", err)
	}
	return buf.Bytes(), nil
}
