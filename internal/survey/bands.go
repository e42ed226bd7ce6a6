package survey

import (
	"fmt"
	"math"
)

// edges returns the boundaries used for a load. A dynamic top is max+1 of the
// source values, kept above the last fixed boundary.
func (r BandRule) edges(src []float64) []float64 {
	b := append([]float64(nil), r.Boundaries...)
	if !r.DynamicTop {
		return b
	}
	top := math.Inf(-1)
	for _, v := range src {
		if !math.IsNaN(v) && v > top {
			top = v
		}
	}
	top++
	if last := b[len(b)-1]; math.IsInf(top, -1) || top <= last {
		top = last + 1
	}
	return append(b, top)
}

func (r BandRule) interval() Interval {
	if r.Interval == "" {
		return RightClosed
	}
	return r.Interval
}

// bucket returns the label index for v. Values beyond either end clamp into the
// edge bucket.
func bucket(v float64, edges []float64, iv Interval) int {
	k := len(edges) - 1
	for i := 0; i < k; i++ {
		if iv == RightOpen && v < edges[i+1] {
			return i
		}
		if iv != RightOpen && v <= edges[i+1] {
			return i
		}
	}
	return k - 1
}

// Band assigns a label to every value under rule r. It is exposed for callers
// that band values outside a table.
func Band(r BandRule, vals []float64) []string {
	edges := r.edges(vals)
	out := make([]string, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		out[i] = r.Labels[bucket(v, edges, r.interval())]
	}
	if m, ok := mode(out); ok {
		for i := range out {
			if out[i] == "" {
				out[i] = m
			}
		}
	}
	return out
}

func applyBands(cols []*column, rules []BandRule, empty map[string]bool, sum *Summary) []*column {
	byName := map[string]int{}
	for i, c := range cols {
		byName[c.name] = i
	}
	for _, r := range rules {
		si, ok := byName[r.Source]
		if !ok {
			sum.Warnings = append(sum.Warnings, fmt.Sprintf("band %q skipped: source %q missing", r.Name, r.Source))
			continue
		}
		if empty[r.Source] {
			sum.Warnings = append(sum.Warnings, fmt.Sprintf("band %q skipped: source %q has no values", r.Name, r.Source))
			continue
		}
		src := cols[si]
		if src.kind != KindNumeric {
			sum.Warnings = append(sum.Warnings, fmt.Sprintf("band %q skipped: source %q is not numeric", r.Name, r.Source))
			continue
		}
		sum.Bands[r.Name] = r.edges(src.nums)
		c := &column{name: r.Name, kind: KindBand, strs: Band(r, src.nums), labels: append([]string(nil), r.Labels...)}
		if i, exists := byName[r.Name]; exists {
			sum.Warnings = append(sum.Warnings, fmt.Sprintf("band %q replaces an input column of the same name", r.Name))
			cols[i] = c
			continue
		}
		byName[r.Name] = len(cols)
		cols = append(cols, c)
	}
	return cols
}
