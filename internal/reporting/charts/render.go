// Package charts renders the dashboard charts as PNG images.
package charts

import (
	"bytes"
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"campus-energy/internal/analytics/domain/statistic"
	reporting "campus-energy/internal/reporting/domain"
)

// Fixed artifact names, in composite order.
const (
	TrendDailyFile  = "trend_daily.png"
	AvgWeeklyFile   = "avg_weekly.png"
	PeakScatterFile = "peak_scatter.png"
	DashboardFile   = "dashboard.png"
)

var (
	// ErrRenderFailure is returned when a chart cannot be produced.
	ErrRenderFailure = errors.New("charts: render failure")
	// ErrNoData is returned when a chart has nothing to plot.
	ErrNoData = fmt.Errorf("%w: no data", ErrRenderFailure)
)

// RenderDailyTrend draws one line of daily totals per building.
func RenderDailyTrend(daily []statistic.Bucket) ([]byte, error) {
	if len(daily) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = "Daily consumption over time (per building)"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "kWh (daily)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02"}
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	var (
		names  []string
		series = make(map[string]plotter.XYs)
	)
	for _, b := range daily {
		if _, ok := series[b.Building]; !ok {
			names = append(names, b.Building)
		}
		series[b.Building] = append(series[b.Building], plotter.XY{
			X: float64(b.Key.Label().Unix()),
			Y: b.Value,
		})
	}
	for i, name := range names {
		line, err := plotter.NewLine(series[name])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(name, line)
	}
	return encode(p, 10*vg.Inch, 4*vg.Inch)
}

// RenderWeeklyAverage draws a bar per building of its average weekly total.
func RenderWeeklyAverage(averages []reporting.WeeklyAverage) ([]byte, error) {
	if len(averages) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = "Average weekly usage per building"
	p.X.Label.Text = "Building"
	p.Y.Label.Text = "kWh (weekly average)"

	values := make(plotter.Values, len(averages))
	names := make([]string, len(averages))
	for i, avg := range averages {
		values[i] = avg.Value
		names[i] = avg.Building
	}
	bars, err := plotter.NewBarChart(values, vg.Points(30))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	return encode(p, 6*vg.Inch, 4*vg.Inch)
}

// RenderPeakScatter draws, per building, the total consumed during its peak hour of day.
func RenderPeakScatter(peaks []reporting.PeakHour) ([]byte, error) {
	if len(peaks) == 0 {
		return nil, ErrNoData
	}
	p := plot.New()
	p.Title.Text = "Peak-hour consumption by building"
	p.X.Label.Text = "Building"
	p.Y.Label.Text = "kWh (peak hour aggregated)"

	xys := make(plotter.XYs, len(peaks))
	names := make([]string, len(peaks))
	for i, peak := range peaks {
		xys[i] = plotter.XY{X: float64(i), Y: peak.Total}
		names[i] = fmt.Sprintf("%s (%02d:00)", peak.Building, peak.Hour)
	}
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	scatter.GlyphStyle.Color = plotutil.Color(1)
	scatter.GlyphStyle.Radius = vg.Points(4)
	p.Add(scatter)
	p.NominalX(names...)
	return encode(p, 6*vg.Inch, 4*vg.Inch)
}

func encode(p *plot.Plot, width, height vg.Length) (out []byte, err error) {
	// gonum/plot panics on some degenerate axes; surface that as a render failure.
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrRenderFailure, r)
		}
	}()
	writer, err := p.WriterTo(width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	var buf bytes.Buffer
	if _, err := writer.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	return buf.Bytes(), nil
}
