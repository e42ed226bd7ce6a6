package survey

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind is the role a column plays in the canonical table.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindBand        Kind = "band"
	KindText        Kind = "text"
)

type column struct {
	name   string
	kind   Kind
	nums   []float64 // numeric columns; NaN is null
	strs   []string  // every other kind; "" is null
	labels []string  // band label order
}

func (c *column) value(i int) string {
	if c.kind == KindNumeric {
		if math.IsNaN(c.nums[i]) {
			return ""
		}
		return formatNumber(c.nums[i])
	}
	return c.strs[i]
}

func (c *column) subset(idx []int) *column {
	out := &column{name: c.name, kind: c.kind, labels: c.labels}
	if c.kind == KindNumeric {
		out.nums = make([]float64, len(idx))
		for j, i := range idx {
			out.nums[j] = c.nums[i]
		}
		return out
	}
	out.strs = make([]string, len(idx))
	for j, i := range idx {
		out.strs[j] = c.strs[i]
	}
	return out
}

// Summary describes what one load did to its source.
type Summary struct {
	Source   string               `json:"source"`
	Encoding string               `json:"encoding,omitempty"`
	RawRows  int                  `json:"raw_rows"`
	Rows     int                  `json:"rows"`
	Coerced  map[string]int       `json:"coerced,omitempty"`
	Imputed  map[string]int       `json:"imputed,omitempty"`
	Dropped  []string             `json:"dropped,omitempty"`
	Bands    map[string][]float64 `json:"bands,omitempty"`
	Filtered int                  `json:"filtered"`
	Warnings []string             `json:"warnings,omitempty"`
}

func (s Summary) clone() Summary {
	out := s
	out.Coerced = make(map[string]int, len(s.Coerced))
	for k, v := range s.Coerced {
		out.Coerced[k] = v
	}
	out.Imputed = make(map[string]int, len(s.Imputed))
	for k, v := range s.Imputed {
		out.Imputed[k] = v
	}
	out.Bands = make(map[string][]float64, len(s.Bands))
	for k, v := range s.Bands {
		out.Bands[k] = append([]float64(nil), v...)
	}
	out.Dropped = append([]string(nil), s.Dropped...)
	out.Warnings = append([]string(nil), s.Warnings...)
	return out
}

// Table is the canonical, normalized form of one survey source. It is never
// modified after the pipeline returns it; every accessor hands out copies.
type Table struct {
	id      string
	cols    []*column
	index   map[string]int
	rows    int
	summary Summary
	errs    []error
}

func newTable(id string, cols []*column, rows int, sum Summary, errs []error) *Table {
	t := &Table{id: id, cols: cols, rows: rows, summary: sum, errs: errs, index: make(map[string]int, len(cols))}
	for i, c := range cols {
		t.index[c.name] = i
	}
	return t
}

// ID is derived from the source content and the configuration, so the same
// input normalized under the same schema always gets the same ID.
func (t *Table) ID() string { return t.id }

// Name is the source name the table was loaded from.
func (t *Table) Name() string { return t.summary.Source }

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Columns returns column names in table order.
func (t *Table) Columns() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.name
	}
	return out
}

// Has reports whether the table has a column.
func (t *Table) Has(field string) bool {
	_, ok := t.index[field]
	return ok
}

// Kind returns the kind of a column.
func (t *Table) Kind(field string) (Kind, bool) {
	c, err := t.column(field)
	if err != nil {
		return "", false
	}
	return c.kind, true
}

func (t *Table) column(field string) (*column, error) {
	i, ok := t.index[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return t.cols[i], nil
}

// Floats returns a copy of a numeric column; null values are NaN.
func (t *Table) Floats(field string) ([]float64, error) {
	c, err := t.column(field)
	if err != nil {
		return nil, err
	}
	if c.kind != KindNumeric {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotNumeric, field, c.kind)
	}
	return append([]float64(nil), c.nums...), nil
}

// Strings returns a copy of a column rendered as text; null values are "".
func (t *Table) Strings(field string) ([]string, error) {
	c, err := t.column(field)
	if err != nil {
		return nil, err
	}
	if c.kind != KindNumeric {
		return append([]string(nil), c.strs...), nil
	}
	out := make([]string, t.rows)
	for i := range out {
		out[i] = c.value(i)
	}
	return out, nil
}

// BandLabels returns the declared label order of a band column, or nil.
func (t *Table) BandLabels(field string) []string {
	c, err := t.column(field)
	if err != nil || c.kind != KindBand {
		return nil
	}
	return append([]string(nil), c.labels...)
}

// Summary returns what the pipeline did while building the table.
func (t *Table) Summary() Summary { return t.summary.clone() }

// Errors returns field-scoped errors such as *EmptyColumnError.
func (t *Table) Errors() []error { return append([]error(nil), t.errs...) }

// Head returns the header and up to n rows as text.
func (t *Table) Head(n int) ([]string, [][]string) {
	if n < 0 || n > t.rows {
		n = t.rows
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(t.cols))
		for j, c := range t.cols {
			row[j] = c.value(i)
		}
		rows[i] = row
	}
	return t.Columns(), rows
}

// Maps returns every row keyed by column name, with numbers as float64 and
// nulls as nil. Suitable for JSON output.
func (t *Table) Maps() []map[string]any {
	out := make([]map[string]any, t.rows)
	for i := range out {
		m := make(map[string]any, len(t.cols))
		for _, c := range t.cols {
			switch {
			case c.kind == KindNumeric && math.IsNaN(c.nums[i]):
				m[c.name] = nil
			case c.kind == KindNumeric:
				m[c.name] = c.nums[i]
			case c.strs[i] == "":
				m[c.name] = nil
			default:
				m[c.name] = c.strs[i]
			}
		}
		out[i] = m
	}
	return out
}

// Record is the typed view of one canonical row. Missing numeric values are
// NaN; columns outside the canonical set are carried in Extra.
type Record struct {
	CGPA                  float64
	Gender                string
	AttendancePct         float64
	StudyHoursDaily       float64
	StudySessionsDaily    float64
	SocialMediaHoursDaily float64
	ScholarshipStatus     string
	FamilyIncome          float64
	AdmissionYear         int
	AttendanceBand        string
	SocialMediaBand       string
	IncomeBand            string
	Extra                 map[string]string
}

// Records returns the typed view of every row.
func (t *Table) Records() []Record {
	num := func(field string, i int) float64 {
		if j, ok := t.index[field]; ok && t.cols[j].kind == KindNumeric {
			return t.cols[j].nums[i]
		}
		return math.NaN()
	}
	str := func(field string, i int) string {
		if j, ok := t.index[field]; ok {
			return t.cols[j].value(i)
		}
		return ""
	}
	typed := map[string]bool{
		FieldCGPA: true, FieldGender: true, FieldAttendancePct: true, FieldStudyHours: true,
		FieldStudySessions: true, FieldSocialMediaHours: true, FieldScholarship: true,
		FieldFamilyIncome: true, FieldAdmissionYear: true, FieldAttendanceBand: true,
		FieldSocialMediaBand: true, FieldIncomeBand: true,
	}
	out := make([]Record, t.rows)
	for i := range out {
		r := Record{
			CGPA:                  num(FieldCGPA, i),
			Gender:                str(FieldGender, i),
			AttendancePct:         num(FieldAttendancePct, i),
			StudyHoursDaily:       num(FieldStudyHours, i),
			StudySessionsDaily:    num(FieldStudySessions, i),
			SocialMediaHoursDaily: num(FieldSocialMediaHours, i),
			ScholarshipStatus:     str(FieldScholarship, i),
			FamilyIncome:          num(FieldFamilyIncome, i),
			AdmissionYear:         parseYear(str(FieldAdmissionYear, i)),
			AttendanceBand:        str(FieldAttendanceBand, i),
			SocialMediaBand:       str(FieldSocialMediaBand, i),
			IncomeBand:            str(FieldIncomeBand, i),
		}
		for _, c := range t.cols {
			if typed[c.name] {
				continue
			}
			if r.Extra == nil {
				r.Extra = map[string]string{}
			}
			r.Extra[c.name] = c.value(i)
		}
		out[i] = r
	}
	return out
}

// parseYear returns the integral year in s, or 0.
func parseYear(s string) int {
	f, ok := ParseNumeric(s)
	if !ok || f != math.Trunc(f) || math.Abs(f) > 1e6 {
		return 0
	}
	return int(f)
}

// groupKeys returns the distinct non-null values of a column in display order:
// the explicit order first, then the band order, then ascending (numerically for
// numeric columns).
func (t *Table) groupKeys(c *column, order []string) []string {
	present := map[string]bool{}
	var keys []string
	for i := 0; i < t.rows; i++ {
		k := c.value(i)
		if k == "" || present[k] {
			continue
		}
		present[k] = true
		keys = append(keys, k)
	}
	rank := map[string]int{}
	switch {
	case len(order) > 0:
		for i, k := range order {
			if _, ok := rank[k]; !ok {
				rank[k] = i
			}
		}
	case c.kind == KindBand:
		for i, k := range c.labels {
			rank[k] = i
		}
	}
	less := func(a, b string) bool {
		if c.kind == KindNumeric {
			fa, _ := strconv.ParseFloat(a, 64)
			fb, _ := strconv.ParseFloat(b, 64)
			return fa < fb
		}
		return a < b
	}
	sort.SliceStable(keys, func(i, j int) bool {
		ri, iok := rank[keys[i]]
		rj, jok := rank[keys[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return less(keys[i], keys[j])
		}
	})
	return keys
}
