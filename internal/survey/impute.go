package survey

import (
	"fmt"
	"math"
)

// impute fills nulls in place: numeric columns with the mean of their present
// values, categorical columns with their most frequent value (first seen wins
// ties). Numeric columns with nothing to average stay null; they are returned in
// empty and reported as *EmptyColumnError.
func impute(cols []*column, rows int, sum *Summary) (errs []error, empty map[string]bool) {
	empty = map[string]bool{}
	if rows == 0 {
		return nil, empty
	}
	for _, c := range cols {
		switch c.kind {
		case KindNumeric:
			m, n := mean(c.nums)
			if n == 0 {
				empty[c.name] = true
				errs = append(errs, &EmptyColumnError{Field: c.name, Rows: rows})
				continue
			}
			filled := 0
			for i, v := range c.nums {
				if math.IsNaN(v) {
					c.nums[i] = m
					filled++
				}
			}
			if filled > 0 {
				sum.Imputed[c.name] = filled
			}
		case KindCategorical:
			m, ok := mode(c.strs)
			if !ok {
				sum.Warnings = append(sum.Warnings, fmt.Sprintf("categorical field %q has no values; left empty", c.name))
				continue
			}
			filled := 0
			for i, v := range c.strs {
				if v == "" {
					c.strs[i] = m
					filled++
				}
			}
			if filled > 0 {
				sum.Imputed[c.name] = filled
			}
		}
	}
	return errs, empty
}

// mode returns the most frequent non-empty value; ties go to the value seen first.
func mode(vals []string) (string, bool) {
	counts := map[string]int{}
	best, bestN := "", 0
	for _, v := range vals {
		if v == "" {
			continue
		}
		counts[v]++
	}
	for _, v := range vals {
		if v == "" {
			continue
		}
		if counts[v] > bestN {
			best, bestN = v, counts[v]
		}
	}
	return best, bestN > 0
}
