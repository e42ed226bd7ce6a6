package report

import (
	"fmt"
	"sort"
	"strings"
)

// Markdown renders the report as plain sections, one per page.
func (r *Report) Markdown() string {
	var b strings.Builder
	s := r.Summary
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if s.Encoding != "" {
		b.WriteString(fmt.Sprintf("Encoding: %s\n", s.Encoding))
	}
	if s.Filtered > 0 {
		b.WriteString(fmt.Sprintf("Rows: %d (raw %d, filtered out %d)\n", s.Rows, s.RawRows, s.Filtered))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", s.Rows))
	}
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Columns)))
	if r.ID != "" {
		b.WriteString(fmt.Sprintf("Table ID: %s\n", r.ID))
	}

	if len(r.Metrics) > 0 {
		b.WriteString("\n[METRICS]\n")
		for _, m := range r.Metrics {
			if m.Kind == "share" {
				b.WriteString(fmt.Sprintf("- %s: %.1f%% (n=%d)\n", m.Name, m.Value, m.N))
			} else {
				b.WriteString(fmt.Sprintf("- %s: %.2f (n=%d)\n", m.Name, m.Value, m.N))
			}
		}
	}

	for _, p := range r.Pages {
		b.WriteString(fmt.Sprintf("\n[%s]\n", strings.ToUpper(p.Title)))
		for _, c := range p.Charts {
			b.WriteString(fmt.Sprintf("### %s\n", c.Title))
			if c.File != "" {
				b.WriteString(fmt.Sprintf("![%s](%s)\n", c.Title, c.File))
			}
			for _, l := range c.Lines {
				b.WriteString("- ")
				b.WriteString(safeVal(l))
				b.WriteString("\n")
			}
		}
		for _, n := range p.Notes {
			b.WriteString(fmt.Sprintf("> %s\n", n))
		}
	}

	if len(s.Coerced)+len(s.Imputed)+len(s.Dropped)+len(s.Bands) > 0 {
		b.WriteString("\n[NORMALIZATION]\n")
		for _, k := range sortedKeys(s.Coerced) {
			b.WriteString(fmt.Sprintf("- %s: %d unparseable values set to null\n", k, s.Coerced[k]))
		}
		for _, k := range sortedKeys(s.Imputed) {
			b.WriteString(fmt.Sprintf("- %s: %d values imputed\n", k, s.Imputed[k]))
		}
		bands := make([]string, 0, len(s.Bands))
		for k := range s.Bands {
			bands = append(bands, k)
		}
		sort.Strings(bands)
		for _, k := range bands {
			edges := make([]string, 0, len(s.Bands[k]))
			for _, e := range s.Bands[k] {
				edges = append(edges, fmt.Sprintf("%g", e))
			}
			b.WriteString(fmt.Sprintf("- %s: boundaries %s\n", k, strings.Join(edges, ", ")))
		}
		if len(s.Dropped) > 0 {
			b.WriteString(fmt.Sprintf("- dropped columns: %s\n", strings.Join(s.Dropped, ", ")))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, h := range r.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(h))
		}
		b.WriteString(" |\n| ")
		for i := range r.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Header {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Notes) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, n := range r.Notes {
			b.WriteString("- ")
			b.WriteString(n)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}
func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
