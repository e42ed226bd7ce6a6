package survey

import (
	"fmt"
	"math"
)

// CorrMatrix is a symmetric Pearson correlation matrix over named fields.
// Values[i][j] is NaN when the pair is undefined; each such pair is listed once
// in Undefined.
type CorrMatrix struct {
	Fields    []string
	Values    [][]float64
	N         [][]int
	Undefined []*InsufficientDataError
}

// At returns the correlation between two fields of the matrix.
func (m *CorrMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, f := range m.Fields {
		if f == a && i < 0 {
			i = k
		}
		if f == b && j < 0 {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return m.Values[i][j], !math.IsNaN(m.Values[i][j])
}

// CorrelationMatrix computes pairwise-complete Pearson correlations. The
// diagonal is exactly 1. Unknown or non-numeric fields are an error.
func CorrelationMatrix(t *Table, fields []string) (*CorrMatrix, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("correlation: no fields")
	}
	cols := make([][]float64, len(fields))
	for i, f := range fields {
		v, err := t.Floats(f)
		if err != nil {
			return nil, fmt.Errorf("correlation: %w", err)
		}
		cols[i] = v
	}
	k := len(fields)
	m := &CorrMatrix{Fields: append([]string(nil), fields...), Values: make([][]float64, k), N: make([][]int, k)}
	for i := range m.Values {
		m.Values[i] = make([]float64, k)
		m.N[i] = make([]int, k)
	}
	for i := 0; i < k; i++ {
		_, n := mean(cols[i])
		m.Values[i][i] = 1
		m.N[i][i] = n
		for j := i + 1; j < k; j++ {
			r, n, reason := pearson(cols[i], cols[j])
			m.Values[i][j], m.Values[j][i] = r, r
			m.N[i][j], m.N[j][i] = n, n
			if reason != "" {
				m.Undefined = append(m.Undefined, &InsufficientDataError{A: fields[i], B: fields[j], N: n, Reason: reason})
			}
		}
	}
	return m, nil
}
