// Package report assembles the dashboard pages of a survey table: chart data,
// headline metrics and a Markdown rendering.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/surveyloom-cli/internal/chart"
	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

// Page keys.
const (
	PageOverview    = "overview"
	PageStudyHabits = "study-habits"
	PageNonAcademic = "non-academic"
	PageArts        = "arts-faculty"
)

// Kind is how a chart is drawn.
type Kind string

const (
	KindBar       Kind = "bar"
	KindHistogram Kind = "histogram"
	KindScatter   Kind = "scatter"
	KindBox       Kind = "box"
	KindHeatmap   Kind = "heatmap"
	KindPie       Kind = "pie"
	KindGrouped   Kind = "grouped"
)

// Chart is the data behind one dashboard figure. Lines is its textual form for
// the Markdown report; File is set once the PNG has been written.
type Chart struct {
	Title  string
	Kind   Kind
	XName  string
	YName  string
	Bars   []chart.Bar
	Bins   []survey.Bin
	X, Y   []float64
	Line   *survey.Line
	Series []survey.Series
	Corr   *survey.CorrMatrix
	Cross  *survey.CrossTab
	Lines  []string
	File   string
}

// Page is one dashboard page.
type Page struct {
	Key    string
	Title  string
	Charts []*Chart
	Notes  []string
}

func (p *Page) add(c *Chart, err error) {
	if err != nil {
		p.Notes = append(p.Notes, fmt.Sprintf("skipped %q: %v", c.Title, err))
		return
	}
	p.Charts = append(p.Charts, c)
}

// Options controls report construction.
type Options struct {
	HistogramBins int
	SampleRows    int
	// Pages restricts the report to the given page keys; empty means all.
	Pages []string
}

// Report is a rendered view of one survey table.
type Report struct {
	Name    string
	ID      string
	Columns []string
	Summary survey.Summary
	Metrics []survey.Metric
	Pages   []*Page
	Header  []string
	Samples [][]string
	Notes   []string
}

type pageDef struct {
	key, title string
	build      func(p *Page, t *survey.Table, opt Options)
}

var pages = []pageDef{
	{PageOverview, "Performance overview", buildOverview},
	{PageStudyHabits, "Study habits and performance", buildStudyHabits},
	{PageNonAcademic, "Non-academic factors", buildNonAcademic},
	{PageArts, "Arts faculty overview", buildArts},
}

// PageKeys lists the available pages in display order.
func PageKeys() []string {
	out := make([]string, 0, len(pages))
	for _, p := range pages {
		out = append(out, p.key)
	}
	return out
}

// ValidatePages rejects unknown page keys.
func ValidatePages(keys []string) error {
	for _, k := range keys {
		found := false
		for _, p := range pages {
			if p.key == k {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("unknown page %q (available: %s)", k, strings.Join(PageKeys(), ", "))
		}
	}
	return nil
}

// Build computes every requested page of the dashboard. Charts whose fields are
// missing from the table are skipped with a note on their page.
func Build(t *survey.Table, rules []survey.MetricRule, opt Options) *Report {
	if opt.HistogramBins <= 0 {
		opt.HistogramBins = 20
	}
	r := &Report{
		Name:    t.Name(),
		ID:      t.ID(),
		Columns: t.Columns(),
		Summary: t.Summary(),
	}
	ms, errs := survey.Metrics(t, rules)
	r.Metrics = ms
	for _, e := range errs {
		r.Notes = append(r.Notes, e.Error())
	}
	for _, def := range pages {
		if len(opt.Pages) > 0 && !contains(opt.Pages, def.key) {
			continue
		}
		p := &Page{Key: def.key, Title: def.title}
		def.build(p, t, opt)
		r.Pages = append(r.Pages, p)
	}
	for _, e := range t.Errors() {
		r.Notes = append(r.Notes, e.Error())
	}
	r.Notes = append(r.Notes, r.Summary.Warnings...)
	if opt.SampleRows > 0 {
		r.Header, r.Samples = t.Head(opt.SampleRows)
	}
	return r
}

func buildOverview(p *Page, t *survey.Table, opt Options) {
	p.add(histChart(t, "Distribution of CGPA", survey.FieldCGPA, "CGPA", opt.HistogramBins))

	p.add(countChart(t, "Gender distribution", KindPie, survey.FieldGender, "Gender"))

	byGender := &Chart{Title: "Average CGPA by gender", Kind: KindBar, XName: "Gender", YName: "Average CGPA"}
	groups, err := t.Aggregate(survey.FieldGender, survey.FieldCGPA, survey.AggMean)
	if err == nil {
		groups = survey.SortByValue(groups)
		byGender.Bars = chart.FromGroups(groups)
		byGender.Lines = groupLines(groups)
	}
	p.add(byGender, err)
}

func buildStudyHabits(p *Page, t *survey.Table, opt Options) {
	sc := &Chart{Title: "Study hours per day vs CGPA", Kind: KindScatter, XName: "Study hours per day", YName: "CGPA"}
	xs, ys, err := survey.Pairs(t, survey.FieldStudyHours, survey.FieldCGPA)
	if err == nil {
		sc.X, sc.Y = xs, ys
		line, lerr := survey.Trendline(t, survey.FieldStudyHours, survey.FieldCGPA)
		if lerr != nil {
			sc.Lines = append(sc.Lines, fmt.Sprintf("no trendline: %v", lerr))
		} else {
			sc.Line = &line
			sc.Lines = append(sc.Lines, fmt.Sprintf("slope %.3f, intercept %.3f, r=%.3f (n=%d)", line.Slope, line.Intercept, line.R, line.N))
		}
	}
	p.add(sc, err)

	p.add(boxChart(t, "CGPA by attendance category", survey.FieldAttendanceBand, "Attendance category"))

	hm := &Chart{Title: "Correlation of study habits and CGPA", Kind: KindHeatmap}
	var fields []string
	for _, f := range []string{survey.FieldStudyHours, survey.FieldAttendancePct, survey.FieldStudySessions, survey.FieldCGPA} {
		if k, ok := t.Kind(f); ok && k == survey.KindNumeric {
			fields = append(fields, f)
		}
	}
	if len(fields) < 2 {
		p.add(hm, fmt.Errorf("need at least 2 numeric fields, have %d", len(fields)))
		return
	}
	m, err := survey.CorrelationMatrix(t, fields)
	if err == nil {
		hm.Corr = m
		hm.Lines = corrLines(m)
	}
	p.add(hm, err)
}

func buildNonAcademic(p *Page, t *survey.Table, opt Options) {
	sm := &Chart{Title: "Average CGPA by social media usage", Kind: KindBar, XName: "Social media usage (hours/day)", YName: "Average CGPA"}
	groups, err := t.Aggregate(survey.FieldSocialMediaBand, survey.FieldCGPA, survey.AggMean)
	if err == nil {
		sm.Bars = chart.FromGroups(groups)
		sm.Lines = groupLines(groups)
	}
	p.add(sm, err)

	p.add(boxChart(t, "CGPA by scholarship status", survey.FieldScholarship, "Scholarship status"))
	p.add(boxChart(t, "CGPA by family income category", survey.FieldIncomeBand, "Family income category"))
}

func buildArts(p *Page, t *survey.Table, opt Options) {
	p.add(countChart(t, "Distribution of arts programs", KindBar, survey.FieldProgram, "Arts program"))
	p.add(histChart(t, "Distribution of S.S.C GPA", survey.FieldSSCGPA, "S.S.C GPA", opt.HistogramBins))
	p.add(histChart(t, "Distribution of H.S.C GPA", survey.FieldHSCGPA, "H.S.C GPA", opt.HistogramBins))

	mg := &Chart{Title: "Class modality by gender", Kind: KindGrouped, XName: "Class modality", YName: "Count"}
	ct, err := survey.CrossCounts(t, survey.FieldClassModality, survey.FieldGender)
	if err == nil {
		mg.Cross = ct
		for i, row := range ct.Rows {
			parts := make([]string, 0, len(ct.Cols))
			for j, col := range ct.Cols {
				parts = append(parts, fmt.Sprintf("%s %d", col, ct.Counts[i][j]))
			}
			mg.Lines = append(mg.Lines, fmt.Sprintf("%s: %s", row, strings.Join(parts, ", ")))
		}
	}
	p.add(mg, err)

	p.add(countChart(t, "Class modality (overall)", KindBar, survey.FieldClassModality, "Class modality"))
}

// countChart charts the value counts of one field with each value's share.
func countChart(t *survey.Table, title string, kind Kind, field, xName string) (*Chart, error) {
	c := &Chart{Title: title, Kind: kind, XName: xName, YName: "Count"}
	counts, err := survey.ValueCounts(t, field)
	if err != nil {
		return c, err
	}
	total := 0
	for _, n := range counts {
		total += n.N
	}
	c.Bars = chart.FromCounts(counts)
	for _, n := range counts {
		c.Lines = append(c.Lines, fmt.Sprintf("%s: %d (%.1f%%)", n.Value, n.N, pct(n.N, total)))
	}
	return c, nil
}

func histChart(t *survey.Table, title, field, xName string, bins int) (*Chart, error) {
	c := &Chart{Title: title, Kind: KindHistogram, XName: xName, YName: "Frequency"}
	hb, err := survey.Histogram(t, field, bins)
	if err != nil {
		return c, err
	}
	c.Bins = hb
	for _, b := range hb {
		if b.Count > 0 {
			c.Lines = append(c.Lines, fmt.Sprintf("%.2f-%.2f: %d", b.Lo, b.Hi, b.Count))
		}
	}
	return c, nil
}

func boxChart(t *survey.Table, title, group, xName string) (*Chart, error) {
	c := &Chart{Title: title, Kind: KindBox, XName: xName, YName: "CGPA"}
	series, err := survey.GroupSeries(t, group, survey.FieldCGPA, nil)
	if err != nil {
		return c, err
	}
	c.Series = series
	for _, s := range series {
		b := survey.Box(s.Values)
		c.Lines = append(c.Lines, fmt.Sprintf("%s: n=%d, median %.2f, IQR %.2f-%.2f, range %.2f-%.2f",
			s.Key, b.N, b.Median, b.Q1, b.Q3, b.Min, b.Max))
	}
	return c, nil
}

func groupLines(gs []survey.GroupValue) []string {
	out := make([]string, 0, len(gs))
	for _, g := range gs {
		out = append(out, fmt.Sprintf("%s: %.2f (n=%d)", g.Key, g.Value, g.N))
	}
	return out
}

// corrLines lists the off-diagonal pairs by descending |r|, then the undefined ones.
func corrLines(m *survey.CorrMatrix) []string {
	type pr struct {
		A, B string
		R    float64
	}
	var pairs []pr
	n := len(m.Fields)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if v := m.Values[i][j]; !math.IsNaN(v) {
				pairs = append(pairs, pr{A: m.Fields[i], B: m.Fields[j], R: v})
			}
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return math.Abs(pairs[i].R) > math.Abs(pairs[j].R) })
	var out []string
	for _, p := range pairs {
		out = append(out, fmt.Sprintf("%s ~ %s: r=%.3f", p.A, p.B, p.R))
	}
	for _, u := range m.Undefined {
		out = append(out, fmt.Sprintf("%s ~ %s: undefined (%s)", u.A, u.B, u.Reason))
	}
	return out
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100.0 / float64(total)
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}
