package survey

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/google/uuid"
)

// tableNamespace seeds name-based table IDs.
var tableNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("surveyloom/table"))

// parseCSV splits decoded text into a header and data rows. Every data row must
// have as many fields as the header.
func parseCSV(text string) ([]string, [][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = 0
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, rowError(0, err)
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, rowError(len(rows)+1, err)
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

func rowError(row int, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		line := pe.StartLine
		if line == 0 {
			line = pe.Line
		}
		return &MalformedRowError{Row: row, Line: line, Err: pe.Err}
	}
	return &MalformedRowError{Row: row, Err: err}
}

// renameColumns maps raw headers to canonical names. When two headers map to
// the same name, the later one wins and the earlier one is reported as dropped.
func renameColumns(header []string, aliases map[string]string) (names []string, keep []int, dropped []string, warnings []string) {
	exact := make(map[string]string, len(aliases))
	folded := make(map[string]string, len(aliases))
	for _, k := range sortedKeys(aliases) {
		v := aliases[k]
		k = strings.TrimSpace(k)
		exact[k] = v
		if _, ok := folded[strings.ToLower(k)]; !ok {
			folded[strings.ToLower(k)] = v
		}
	}
	names = make([]string, len(header))
	owner := map[string]int{}
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		name := h
		if v, ok := exact[h]; ok {
			name = v
		} else if v, ok := folded[strings.ToLower(h)]; ok {
			name = v
		}
		names[i] = name
		owner[name] = i
	}
	for i, name := range names {
		if owner[name] == i {
			keep = append(keep, i)
			continue
		}
		raw := strings.TrimSpace(header[i])
		dropped = append(dropped, raw)
		warnings = append(warnings, fmt.Sprintf("column %q (position %d) shadowed by position %d as %q", raw, i+1, owner[name]+1, name))
	}
	return names, keep, dropped, warnings
}

// normalize runs rename, coercion, imputation, banding and the admission-year
// filter over parsed rows.
func normalize(ctx context.Context, cfg Config, key string, sum Summary, header []string, rows [][]string) (*Table, error) {
	for i, row := range rows {
		if len(row) != len(header) {
			return nil, &MalformedRowError{Row: i + 1, Line: i + 2, Err: csv.ErrFieldCount}
		}
	}
	sum.RawRows = len(rows)
	sum.Coerced = map[string]int{}
	sum.Imputed = map[string]int{}
	sum.Bands = map[string][]float64{}

	names, keep, dropped, warnings := renameColumns(header, cfg.ColumnAliases)
	sum.Dropped = dropped
	sum.Warnings = append(sum.Warnings, warnings...)

	numeric := fieldSet(cfg.NumericFields)
	categorical := fieldSet(cfg.CategoricalFields)
	cols := make([]*column, 0, len(keep))
	for _, pos := range keep {
		c := &column{name: names[pos], kind: KindText}
		switch {
		case numeric[c.name]:
			c.kind = KindNumeric
			c.nums = make([]float64, len(rows))
			for i, row := range rows {
				v, ok := ParseNumeric(row[pos])
				if !ok {
					if strings.TrimSpace(row[pos]) != "" {
						sum.Coerced[c.name]++
					}
					v = math.NaN()
				}
				c.nums[i] = v
			}
		default:
			if categorical[c.name] {
				c.kind = KindCategorical
			}
			c.strs = make([]string, len(rows))
			for i, row := range rows {
				c.strs[i] = strings.TrimSpace(row[pos])
			}
		}
		cols = append(cols, c)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	errs, empty := impute(cols, len(rows), &sum)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cols = applyBands(cols, cfg.BandRules, empty, &sum)

	n := len(rows)
	if idx, ok := admissionFilter(cols, cfg); ok {
		for i, c := range cols {
			cols[i] = c.subset(idx)
		}
		sum.Filtered = n - len(idx)
		n = len(idx)
	}
	sum.Rows = n
	id := uuid.NewSHA1(tableNamespace, []byte(key)).String()
	return newTable(id, cols, n, sum, errs), nil
}

// admissionFilter returns the rows whose admission year equals the target. ok is
// false when no filter applies.
func admissionFilter(cols []*column, cfg Config) ([]int, bool) {
	if cfg.AdmissionYearField == "" || cfg.TargetAdmissionYear == 0 {
		return nil, false
	}
	for _, c := range cols {
		if c.name != cfg.AdmissionYearField {
			continue
		}
		idx := []int{}
		for i := range c.strs {
			if parseYear(c.strs[i]) == cfg.TargetAdmissionYear {
				idx = append(idx, i)
			}
		}
		return idx, true
	}
	return nil, false
}
