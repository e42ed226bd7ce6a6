package survey

import (
	"fmt"
	"math"
	"sort"
)

// Count is the number of rows holding one value.
type Count struct {
	Value string `json:"value"`
	N     int    `json:"n"`
}

// ValueCounts counts the non-null values of a field, most frequent first.
// Band fields keep their declared label order instead.
func ValueCounts(t *Table, field string) ([]Count, error) {
	c, err := t.column(field)
	if err != nil {
		return nil, fmt.Errorf("value counts: %w", err)
	}
	counts := map[string]int{}
	for i := 0; i < t.rows; i++ {
		if v := c.value(i); v != "" {
			counts[v]++
		}
	}
	out := make([]Count, 0, len(counts))
	for _, k := range t.groupKeys(c, nil) {
		out = append(out, Count{Value: k, N: counts[k]})
	}
	if c.kind != KindBand {
		sort.SliceStable(out, func(i, j int) bool { return out[i].N > out[j].N })
	}
	return out, nil
}

// CrossTab counts rows per pair of values of two fields.
type CrossTab struct {
	RowField, ColField string
	Rows, Cols         []string
	Counts             [][]int
}

// CrossCounts tabulates two fields against each other. Rows with a null in
// either field are skipped.
func CrossCounts(t *Table, rowField, colField string) (*CrossTab, error) {
	rc, err := t.column(rowField)
	if err != nil {
		return nil, fmt.Errorf("cross counts: %w", err)
	}
	cc, err := t.column(colField)
	if err != nil {
		return nil, fmt.Errorf("cross counts: %w", err)
	}
	ct := &CrossTab{RowField: rowField, ColField: colField, Rows: t.groupKeys(rc, nil), Cols: t.groupKeys(cc, nil)}
	ri := map[string]int{}
	for i, k := range ct.Rows {
		ri[k] = i
	}
	ci := map[string]int{}
	for i, k := range ct.Cols {
		ci[k] = i
	}
	ct.Counts = make([][]int, len(ct.Rows))
	for i := range ct.Counts {
		ct.Counts[i] = make([]int, len(ct.Cols))
	}
	for i := 0; i < t.rows; i++ {
		r, c := rc.value(i), cc.value(i)
		if r == "" || c == "" {
			continue
		}
		ct.Counts[ri[r]][ci[c]]++
	}
	return ct, nil
}

// Bin is one histogram bucket [Lo, Hi); the last bin includes Hi.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// Histogram splits a numeric field into equal-width bins between its min and max.
func Histogram(t *Table, field string, bins int) ([]Bin, error) {
	vals, err := t.Floats(field)
	if err != nil {
		return nil, fmt.Errorf("histogram: %w", err)
	}
	xs := sortedPresent(vals)
	if len(xs) == 0 {
		return nil, nil
	}
	if bins <= 0 {
		bins = 10
	}
	lo, hi := xs[0], xs[len(xs)-1]
	if lo == hi {
		return []Bin{{Lo: lo, Hi: hi, Count: len(xs)}}, nil
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = lo + float64(i)*width
		out[i].Hi = lo + float64(i+1)*width
	}
	out[bins-1].Hi = hi
	for _, x := range xs {
		i := int((x - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out, nil
}

// Series is the list of values of one group.
type Series struct {
	Key    string    `json:"key"`
	Values []float64 `json:"values"`
}

// GroupSeries collects the present values of a numeric field per group, in
// aggregate group order.
func GroupSeries(t *Table, group, value string, order []string) ([]Series, error) {
	gc, err := t.column(group)
	if err != nil {
		return nil, fmt.Errorf("group series: %w", err)
	}
	vals, err := t.Floats(value)
	if err != nil {
		return nil, fmt.Errorf("group series: %w", err)
	}
	byKey := map[string][]float64{}
	for i := 0; i < t.rows; i++ {
		k := gc.value(i)
		if k == "" || math.IsNaN(vals[i]) {
			continue
		}
		byKey[k] = append(byKey[k], vals[i])
	}
	var out []Series
	for _, k := range t.groupKeys(gc, order) {
		if len(byKey[k]) == 0 {
			continue
		}
		out = append(out, Series{Key: k, Values: byKey[k]})
	}
	return out, nil
}

// BoxStats summarizes a distribution for a box plot. Outliers counts values
// whose robust z-score (median/MAD) exceeds 3.5.
type BoxStats struct {
	N        int     `json:"n"`
	Min      float64 `json:"min"`
	Q1       float64 `json:"q1"`
	Median   float64 `json:"median"`
	Q3       float64 `json:"q3"`
	Max      float64 `json:"max"`
	Mean     float64 `json:"mean"`
	Outliers int     `json:"outliers"`
}

const outlierThreshold = 3.5

// Box computes BoxStats over the present values.
func Box(values []float64) BoxStats {
	xs := sortedPresent(values)
	if len(xs) == 0 {
		return BoxStats{}
	}
	m, _ := mean(xs)
	b := BoxStats{
		N:      len(xs),
		Min:    xs[0],
		Q1:     quantile(xs, 0.25),
		Median: quantile(xs, 0.5),
		Q3:     quantile(xs, 0.75),
		Max:    xs[len(xs)-1],
		Mean:   m,
	}
	med, mad := medianMAD(xs)
	if mad > 0 {
		for _, x := range xs {
			if math.Abs(0.6745*(x-med)/mad) > outlierThreshold {
				b.Outliers++
			}
		}
	}
	return b
}

// Line is an ordinary least squares fit y = Slope*x + Intercept.
type Line struct {
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	R         float64 `json:"r"`
	N         int     `json:"n"`
}

// At evaluates the line.
func (l Line) At(x float64) float64 { return l.Slope*x + l.Intercept }

// Trendline fits y on x over rows where both are present.
func Trendline(t *Table, x, y string) (Line, error) {
	xs, err := t.Floats(x)
	if err != nil {
		return Line{}, fmt.Errorf("trendline: %w", err)
	}
	ys, err := t.Floats(y)
	if err != nil {
		return Line{}, fmt.Errorf("trendline: %w", err)
	}
	var sx, sy, first float64
	n := 0
	constX := true
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		if n == 0 {
			first = xs[i]
		}
		constX = constX && xs[i] == first
		sx += xs[i]
		sy += ys[i]
		n++
	}
	if n < 2 {
		return Line{}, &InsufficientDataError{A: x, B: y, N: n}
	}
	if constX {
		return Line{}, &InsufficientDataError{A: x, B: y, N: n, Reason: "zero variance in " + x}
	}
	mx, my := sx/float64(n), sy/float64(n)
	var sxx, sxy float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		sxx += (xs[i] - mx) * (xs[i] - mx)
		sxy += (xs[i] - mx) * (ys[i] - my)
	}
	slope := sxy / sxx
	r, _, _ := pearson(xs, ys)
	return Line{Slope: slope, Intercept: my - slope*mx, R: r, N: n}, nil
}

// Pairs returns the rows where both fields are present, for scatter plots.
func Pairs(t *Table, x, y string) ([]float64, []float64, error) {
	xs, err := t.Floats(x)
	if err != nil {
		return nil, nil, err
	}
	ys, err := t.Floats(y)
	if err != nil {
		return nil, nil, err
	}
	var ox, oy []float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		ox = append(ox, xs[i])
		oy = append(oy, ys[i])
	}
	return ox, oy, nil
}
