package chart

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// BoxPlot renders one box per series. Empty series are skipped.
func BoxPlot(w io.Writer, title, yName string, series []survey.Series) error {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Y.Label.Text = yName
	var names []string
	for _, s := range series {
		vals := finite(s.Values)
		if len(vals) == 0 {
			continue
		}
		b, err := plotter.NewBoxPlot(vg.Points(24), float64(len(names)), plotter.Values(vals))
		if err != nil {
			return fmt.Errorf("box %s: %w", s.Key, err)
		}
		p.Add(b)
		names = append(names, s.Key)
	}
	if len(names) == 0 {
		return ErrNoData
	}
	p.NominalX(names...)
	p.Add(plotter.NewGrid())
	return save(p, w, vg.Length(1.6*float64(len(names))+3)*vg.Inch, 4*vg.Inch)
}

// GroupedBars renders a cross tabulation as one cluster of bars per row value,
// one bar per column value, with a legend for the columns.
func GroupedBars(w io.Writer, title, xName string, ct *survey.CrossTab) error {
	if ct == nil || len(ct.Rows) == 0 || len(ct.Cols) == 0 {
		return ErrNoData
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xName
	p.Y.Label.Text = "Count"
	p.Legend.Top = true

	width := vg.Points(16)
	n := len(ct.Cols)
	for j, col := range ct.Cols {
		values := make(plotter.Values, len(ct.Rows))
		for i := range ct.Rows {
			values[i] = float64(ct.Counts[i][j])
		}
		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return fmt.Errorf("bars %s: %w", col, err)
		}
		bars.Color = plotutil.Color(j)
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = vg.Length(float64(j)-float64(n-1)/2) * width
		p.Add(bars)
		p.Legend.Add(col, bars)
	}
	p.Y.Min = 0
	p.NominalX(ct.Rows...)
	p.Add(plotter.NewGrid())
	return save(p, w, vg.Length(0.4*float64(n*len(ct.Rows))+3)*vg.Inch, 4*vg.Inch)
}

// Heatmap renders a correlation matrix on a blue-red scale fixed to [-1, 1].
// Undefined cells are drawn as 0 and labelled "n/a".
func Heatmap(w io.Writer, title string, m *survey.CorrMatrix) error {
	if m == nil || len(m.Fields) == 0 {
		return ErrNoData
	}
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)

	g := corrGrid{m}
	h := plotter.NewHeatMap(g, cmap.Palette(64))
	h.Min, h.Max = -1, 1

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Add(h)

	n := len(m.Fields)
	var xys plotter.XYs
	var labels []string
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			xys = append(xys, plotter.XY{X: float64(j), Y: float64(i)})
			if v := m.Values[i][j]; math.IsNaN(v) {
				labels = append(labels, "n/a")
			} else {
				labels = append(labels, strconv.FormatFloat(v, 'f', 2, 64))
			}
		}
	}
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return fmt.Errorf("heatmap labels: %w", err)
	}
	p.Add(l)
	p.NominalX(m.Fields...)
	p.NominalY(m.Fields...)
	side := vg.Length(1.2*float64(n)+2) * vg.Inch
	return save(p, w, side, side)
}

// corrGrid adapts a CorrMatrix to plotter.GridXYZ; column c is field c on the
// x axis and row r is field r on the y axis.
type corrGrid struct{ m *survey.CorrMatrix }

func (g corrGrid) Dims() (c, r int) { return len(g.m.Fields), len(g.m.Fields) }

func (g corrGrid) Z(c, r int) float64 {
	v := g.m.Values[r][c]
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

func finite(vs []float64) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func save(p *plot.Plot, w io.Writer, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}
