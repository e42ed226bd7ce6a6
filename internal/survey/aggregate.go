package survey

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// AggFunc names an aggregation applied per group.
type AggFunc string

const (
	AggMean   AggFunc = "mean"
	AggCount  AggFunc = "count"
	AggSum    AggFunc = "sum"
	AggMin    AggFunc = "min"
	AggMax    AggFunc = "max"
	AggMedian AggFunc = "median"
	AggCorr   AggFunc = "corr"
)

// ParseAggFunc accepts the names above case-insensitively.
func ParseAggFunc(s string) (AggFunc, error) {
	f := AggFunc(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case AggMean, AggCount, AggSum, AggMin, AggMax, AggMedian, AggCorr:
		return f, nil
	case "avg", "average":
		return AggMean, nil
	}
	return "", fmt.Errorf("unknown aggregate %q (use mean|count|sum|min|max|median|corr)", s)
}

// AggregateSpec describes a grouped aggregation. PairField is the second
// variable for AggCorr. Order, when set, fixes the group order.
type AggregateSpec struct {
	GroupField string
	ValueField string
	Func       AggFunc
	PairField  string
	Order      []string
}

// GroupValue is one group's aggregate. N is the number of values used.
type GroupValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	N     int     `json:"n"`
}

// Aggregate groups by one field and reduces a numeric field with fn.
func (t *Table) Aggregate(group, value string, fn AggFunc) ([]GroupValue, error) {
	return Aggregate(t, AggregateSpec{GroupField: group, ValueField: value, Func: fn})
}

// Aggregate computes one value per group. Groups follow spec.Order, then the
// band's declared label order, then ascending key. Groups without usable values
// are left out. Rows with a null group key are skipped.
func Aggregate(t *Table, spec AggregateSpec) ([]GroupValue, error) {
	gc, err := t.column(spec.GroupField)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	fn := spec.Func
	if fn == "" {
		fn = AggMean
	}
	var vals, pair []float64
	if spec.ValueField != "" || fn != AggCount {
		if vals, err = t.Floats(spec.ValueField); err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}
	}
	if fn == AggCorr {
		if spec.PairField == "" {
			return nil, fmt.Errorf("aggregate: corr needs a pair field")
		}
		if pair, err = t.Floats(spec.PairField); err != nil {
			return nil, fmt.Errorf("aggregate: %w", err)
		}
	}

	rowsByKey := map[string][]int{}
	for i := 0; i < t.rows; i++ {
		k := gc.value(i)
		if k == "" {
			continue
		}
		rowsByKey[k] = append(rowsByKey[k], i)
	}

	var out []GroupValue
	for _, k := range t.groupKeys(gc, spec.Order) {
		idx := rowsByKey[k]
		if fn == AggCount && vals == nil {
			out = append(out, GroupValue{Key: k, Value: float64(len(idx)), N: len(idx)})
			continue
		}
		xs := make([]float64, len(idx))
		for j, i := range idx {
			xs[j] = vals[i]
		}
		if fn == AggCorr {
			ys := make([]float64, len(idx))
			for j, i := range idx {
				ys[j] = pair[i]
			}
			r, n, reason := pearson(xs, ys)
			if reason != "" {
				continue
			}
			out = append(out, GroupValue{Key: k, Value: r, N: n})
			continue
		}
		v, n := reduce(present(xs), fn)
		if n == 0 {
			continue
		}
		out = append(out, GroupValue{Key: k, Value: v, N: n})
	}
	return out, nil
}

func reduce(xs []float64, fn AggFunc) (float64, int) {
	n := len(xs)
	if n == 0 {
		return math.NaN(), 0
	}
	switch fn {
	case AggCount:
		return float64(n), n
	case AggSum:
		var s float64
		for _, x := range xs {
			s += x
		}
		return s, n
	case AggMin:
		m := xs[0]
		for _, x := range xs[1:] {
			m = math.Min(m, x)
		}
		return m, n
	case AggMax:
		m := xs[0]
		for _, x := range xs[1:] {
			m = math.Max(m, x)
		}
		return m, n
	case AggMedian:
		cp := append([]float64(nil), xs...)
		sort.Float64s(cp)
		return quantile(cp, 0.5), n
	default:
		return mean(xs)
	}
}

// SortByValue orders groups by descending value, keeping the original order
// for ties.
func SortByValue(gs []GroupValue) []GroupValue {
	out := append([]GroupValue(nil), gs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}
