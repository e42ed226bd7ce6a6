package survey

import (
	"fmt"
	"strings"
)

// Metric is the value of one MetricRule. Shares are percentages.
type Metric struct {
	Name  string  `json:"name"`
	Field string  `json:"field"`
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
	N     int     `json:"n"`
}

// Metrics evaluates rules against t. Rules naming a missing field are skipped
// and reported in the returned errors.
func Metrics(t *Table, rules []MetricRule) ([]Metric, []error) {
	var out []Metric
	var errs []error
	for _, r := range rules {
		m := Metric{Name: r.Name, Field: r.Field, Kind: r.Kind}
		switch r.Kind {
		case "mean":
			vals, err := t.Floats(r.Field)
			if err != nil {
				errs = append(errs, fmt.Errorf("metric %q: %w", r.Name, err))
				continue
			}
			v, n := mean(vals)
			if n == 0 {
				errs = append(errs, fmt.Errorf("metric %q: %w", r.Name, &EmptyColumnError{Field: r.Field, Rows: t.rows}))
				continue
			}
			m.Value, m.N = v, n
		case "share":
			vals, err := t.Strings(r.Field)
			if err != nil {
				errs = append(errs, fmt.Errorf("metric %q: %w", r.Name, err))
				continue
			}
			match := strings.TrimSpace(r.Match)
			hits := 0
			for _, v := range vals {
				if v == "" {
					continue
				}
				m.N++
				if strings.EqualFold(strings.TrimSpace(v), match) {
					hits++
				}
			}
			if m.N == 0 {
				errs = append(errs, fmt.Errorf("metric %q: field %q has no values", r.Name, r.Field))
				continue
			}
			m.Value = 100 * float64(hits) / float64(m.N)
		default:
			errs = append(errs, fmt.Errorf("metric %q: unknown kind %q", r.Name, r.Kind))
			continue
		}
		out = append(out, m)
	}
	return out, errs
}
