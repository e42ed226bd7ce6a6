package survey

import (
	"math"
	"sort"
)

func mean(vals []float64) (float64, int) {
	var sum float64
	n := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN(), 0
	}
	return sum / float64(n), n
}

// present returns the non-null values of vals.
func present(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func sortedPresent(vals []float64) []float64 {
	out := present(vals)
	sort.Float64s(out)
	return out
}

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

// quantile interpolates linearly between closest ranks of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// pearson computes the correlation of xs and ys over rows where both are
// present. r is NaN, with a reason, when fewer than two rows pair up or either
// side has no variance.
func pearson(xs, ys []float64) (r float64, n int, reason string) {
	var sumX, sumY, firstX, firstY float64
	constX, constY := true, true
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		if n == 0 {
			firstX, firstY = xs[i], ys[i]
		}
		constX = constX && xs[i] == firstX
		constY = constY && ys[i] == firstY
		n++
		sumX += xs[i]
		sumY += ys[i]
	}
	if n < 2 {
		return math.NaN(), n, "fewer than 2 joint observations"
	}
	if constX || constY {
		return math.NaN(), n, "zero variance"
	}
	mx, my := sumX/float64(n), sumY/float64(n)
	var sxx, syy, sxy float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		dx, dy := xs[i]-mx, ys[i]-my
		sxx += dx * dx
		syy += dy * dy
		sxy += dx * dy
	}
	r = sxy / math.Sqrt(sxx*syy)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, n, ""
}
