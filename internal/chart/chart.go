// Package chart renders survey chart data to PNG images.
package chart

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when there is nothing to draw.
var ErrNoData = errors.New("chart: no data")

const (
	barWidth   = 48
	barSpacing = 24
	minWidth   = 640
	height     = 480
)

// Bar is one labelled value.
type Bar struct {
	Label string
	Value float64
}

// FromGroups converts aggregate output into bars.
func FromGroups(gs []survey.GroupValue) []Bar {
	out := make([]Bar, 0, len(gs))
	for _, g := range gs {
		out = append(out, Bar{Label: g.Key, Value: g.Value})
	}
	return out
}

// FromCounts converts value counts into bars.
func FromCounts(cs []survey.Count) []Bar {
	out := make([]Bar, 0, len(cs))
	for _, c := range cs {
		out = append(out, Bar{Label: c.Value, Value: float64(c.N)})
	}
	return out
}

// Bars renders a vertical bar chart.
func Bars(w io.Writer, title string, bars []Bar) error {
	if len(bars) == 0 {
		return ErrNoData
	}
	lo, hi := 0.0, 0.0
	values := make([]gochart.Value, 0, len(bars))
	for _, b := range bars {
		if math.IsNaN(b.Value) || math.IsInf(b.Value, 0) {
			continue
		}
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
		values = append(values, gochart.Value{Label: b.Label, Value: b.Value})
	}
	if len(values) == 0 {
		return ErrNoData
	}
	lo, hi = pad(lo, hi)
	if lo > 0 {
		lo = 0
	}
	bc := gochart.BarChart{
		Title:      title,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Width:      max(minWidth, len(values)*(barWidth+barSpacing)+160),
		Height:     height,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		YAxis:      gochart.YAxis{Range: &gochart.ContinuousRange{Min: lo, Max: hi}},
		Bars:       values,
	}
	if err := bc.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

// Pie renders bars as slices of a circle labelled with their share. Bars with
// a non-positive value are left out.
func Pie(w io.Writer, title string, bars []Bar) error {
	total := 0.0
	for _, b := range bars {
		if b.Value > 0 && !math.IsInf(b.Value, 0) {
			total += b.Value
		}
	}
	if total == 0 {
		return ErrNoData
	}
	values := make([]gochart.Value, 0, len(bars))
	for _, b := range bars {
		if b.Value <= 0 || math.IsInf(b.Value, 0) {
			continue
		}
		values = append(values, gochart.Value{
			Label: fmt.Sprintf("%s (%.1f%%)", b.Label, b.Value*100/total),
			Value: b.Value,
		})
	}
	pc := gochart.PieChart{
		Title:      title,
		Background: gochart.Style{Padding: gochart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		Width:      height,
		Height:     height,
		Values:     values,
	}
	if err := pc.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}

// Histogram renders histogram bins as adjacent bars labelled by range.
func Histogram(w io.Writer, title string, bins []survey.Bin) error {
	bars := make([]Bar, 0, len(bins))
	for _, b := range bins {
		bars = append(bars, Bar{Label: fmt.Sprintf("%.2f-%.2f", b.Lo, b.Hi), Value: float64(b.Count)})
	}
	return Bars(w, title, bars)
}

// Scatter renders a scatter plot of paired values and, when line is non-nil,
// its fitted trendline.
func Scatter(w io.Writer, title, xName, yName string, xs, ys []float64, line *survey.Line) error {
	if len(xs) == 0 || len(xs) != len(ys) {
		return ErrNoData
	}
	xlo, xhi := bounds(xs)
	ylo, yhi := bounds(ys)
	series := []gochart.Series{gochart.ContinuousSeries{
		Name:    "responses",
		XValues: xs,
		YValues: ys,
		Style: gochart.Style{
			StrokeWidth: gochart.Disabled,
			DotWidth:    3,
			DotColor:    drawing.ColorFromHex("1f77b4"),
		},
	}}
	if line != nil {
		a, b := line.At(xlo), line.At(xhi)
		ylo, yhi = math.Min(ylo, math.Min(a, b)), math.Max(yhi, math.Max(a, b))
		series = append(series, gochart.ContinuousSeries{
			Name:    fmt.Sprintf("trend (r=%.2f)", line.R),
			XValues: []float64{xlo, xhi},
			YValues: []float64{a, b},
			Style:   gochart.Style{StrokeColor: drawing.ColorFromHex("d62728"), StrokeWidth: 2},
		})
	}
	xlo, xhi = pad(xlo, xhi)
	ylo, yhi = pad(ylo, yhi)
	c := gochart.Chart{
		Title:      title,
		Width:      minWidth + 160,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: xName, Range: &gochart.ContinuousRange{Min: xlo, Max: xhi}},
		YAxis:      gochart.YAxis{Name: yName, Range: &gochart.ContinuousRange{Min: ylo, Max: yhi}},
		Series:     series,
	}
	c.Elements = []gochart.Renderable{gochart.Legend(&c)}
	if err := c.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render scatter: %w", err)
	}
	return nil
}

func bounds(vs []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// pad widens a range by 5% so points do not sit on the frame; a degenerate
// range becomes +-1 around its value.
func pad(lo, hi float64) (float64, float64) {
	if hi <= lo {
		return lo - 1, hi + 1
	}
	d := (hi - lo) * 0.05
	return lo - d, hi + d
}
