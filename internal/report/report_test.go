package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
)

const fullCSV = `What is your current CGPA?,Gender,How many hour do you study daily?,How many times do you seat for study in a day?,Average attendance on class,How many hour do you spent daily in social media?,Do you have meritorious scholarship ?,What is your monthly family income?,Do you have personal Computer?,S.S.C (GPA),H.S.C (GPA),Arts Program,Classes are mostly
3.6,Female,4,3,90,1,Yes,40000,Yes,4.5,4.2,English,Offline
3.2,Male,3,2,80,2,No,120000,Yes,4.0,3.8,History,Online
2.7,Male,1,1,60,6,No,200000,No,3.5,3.1,English,Offline
3.0,Female,2,2,75,3,Yes,60000,No,5.0,4.6,Philosophy,Offline
`

func load(t *testing.T, src string) *survey.Table {
	t.Helper()
	l, err := survey.NewLoader(survey.DefaultConfig())
	if err != nil {
		t.Fatalf("loader: %v", err)
	}
	tbl, err := l.LoadBytes(context.Background(), "survey.csv", []byte(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return tbl
}

func chartByTitle(r *Report, title string) *Chart {
	for _, p := range r.Pages {
		for _, c := range p.Charts {
			if c.Title == title {
				return c
			}
		}
	}
	return nil
}

func TestBuildAllPages(t *testing.T) {
	tbl := load(t, fullCSV)
	r := Build(tbl, survey.DefaultConfig().Metrics, Options{SampleRows: 2})
	if len(r.Pages) != 4 {
		t.Fatalf("pages = %d", len(r.Pages))
	}
	for _, p := range r.Pages {
		want := 3
		if p.Key == PageArts {
			want = 5
		}
		if len(p.Charts) != want || len(p.Notes) != 0 {
			t.Fatalf("page %s: charts=%d notes=%v", p.Key, len(p.Charts), p.Notes)
		}
	}
	gender := chartByTitle(r, "Gender distribution")
	if gender == nil || gender.Kind != KindPie || gender.Lines[0] != "Female: 2 (50.0%)" {
		t.Fatalf("gender = %+v", gender)
	}
	byGender := chartByTitle(r, "Average CGPA by gender")
	if byGender == nil || byGender.Bars[0].Label != "Female" || byGender.Lines[0] != "Female: 3.30 (n=2)" {
		t.Fatalf("by gender = %+v", byGender)
	}
	att := chartByTitle(r, "CGPA by attendance category")
	if att == nil || len(att.Series) != 3 || att.Series[0].Key != "Low (<=70%)" {
		t.Fatalf("attendance box = %+v", att)
	}
	sm := chartByTitle(r, "Average CGPA by social media usage")
	if sm == nil || len(sm.Bars) != 3 || sm.Bars[0].Label != "1-2 hours" || sm.Bars[2].Label != ">5 hours" {
		t.Fatalf("social media bars = %+v", sm)
	}
	hm := chartByTitle(r, "Correlation of study habits and CGPA")
	if hm == nil || len(hm.Corr.Fields) != 4 || len(hm.Lines) != 6 {
		t.Fatalf("heatmap = %+v", hm)
	}
	sc := chartByTitle(r, "Study hours per day vs CGPA")
	if sc == nil || sc.Line == nil || sc.Line.Slope <= 0 {
		t.Fatalf("scatter = %+v", sc)
	}
	// consultancy is not in the fixture
	if len(r.Notes) != 1 || !strings.Contains(r.Notes[0], "consultancy") {
		t.Fatalf("notes = %v", r.Notes)
	}
	if len(r.Metrics) != 3 || len(r.Samples) != 2 {
		t.Fatalf("metrics=%d samples=%d", len(r.Metrics), len(r.Samples))
	}
}

func TestBuildArtsFacultyPage(t *testing.T) {
	tbl := load(t, fullCSV)
	r := Build(tbl, nil, Options{Pages: []string{PageArts}, HistogramBins: 4})
	if len(r.Pages) != 1 || r.Pages[0].Title != "Arts faculty overview" {
		t.Fatalf("pages = %+v", r.Pages)
	}
	prog := chartByTitle(r, "Distribution of arts programs")
	if prog == nil || prog.Kind != KindBar || len(prog.Bars) != 3 || prog.Bars[0].Label != "English" || prog.Bars[0].Value != 2 {
		t.Fatalf("programs = %+v", prog)
	}
	ssc := chartByTitle(r, "Distribution of S.S.C GPA")
	if ssc == nil || len(ssc.Bins) != 4 || ssc.Bins[0].Lo != 3.5 || ssc.Bins[3].Hi != 5 {
		t.Fatalf("ssc = %+v", ssc)
	}
	if hsc := chartByTitle(r, "Distribution of H.S.C GPA"); hsc == nil || len(hsc.Bins) != 4 {
		t.Fatalf("hsc = %+v", hsc)
	}
	mg := chartByTitle(r, "Class modality by gender")
	if mg == nil || mg.Kind != KindGrouped || mg.Cross == nil {
		t.Fatalf("modality by gender = %+v", mg)
	}
	if len(mg.Lines) != 2 || mg.Lines[0] != "Offline: Female 2, Male 1" || mg.Lines[1] != "Online: Female 0, Male 1" {
		t.Fatalf("modality lines = %v", mg.Lines)
	}
	overall := chartByTitle(r, "Class modality (overall)")
	if overall == nil || overall.Lines[0] != "Offline: 3 (75.0%)" {
		t.Fatalf("overall = %+v", overall)
	}

	dir := t.TempDir()
	files, err := r.WriteCharts(dir)
	if err != nil {
		t.Fatalf("write charts: %v", err)
	}
	if len(files) != 5 || mg.File != filepath.Join(dir, "arts-faculty-class-modality-by-gender.png") {
		t.Fatalf("files = %v", files)
	}
	if !strings.Contains(r.Markdown(), "[ARTS FACULTY OVERVIEW]") {
		t.Fatalf("markdown missing arts page")
	}
}

func TestBuildSkipsChartsWithMissingFields(t *testing.T) {
	tbl := load(t, "What is your current CGPA?,Gender\n3.1,Male\n3.4,Female\n")
	r := Build(tbl, nil, Options{Pages: []string{PageStudyHabits}})
	if len(r.Pages) != 1 || r.Pages[0].Key != PageStudyHabits {
		t.Fatalf("pages = %+v", r.Pages)
	}
	p := r.Pages[0]
	if len(p.Charts) != 0 || len(p.Notes) != 3 {
		t.Fatalf("charts=%d notes=%v", len(p.Charts), p.Notes)
	}
	md := r.Markdown()
	if !strings.Contains(md, "[STUDY HABITS AND PERFORMANCE]") || !strings.Contains(md, "> skipped") {
		t.Fatalf("markdown:\n%s", md)
	}
}

func TestValidatePages(t *testing.T) {
	if err := ValidatePages([]string{PageOverview, PageNonAcademic, PageArts}); err != nil {
		t.Fatalf("valid pages rejected: %v", err)
	}
	if err := ValidatePages([]string{"summary"}); err == nil {
		t.Fatalf("unknown page accepted")
	}
}

func TestMarkdownSections(t *testing.T) {
	tbl := load(t, fullCSV)
	md := Build(tbl, survey.DefaultConfig().Metrics, Options{SampleRows: 1}).Markdown()
	for _, want := range []string{
		"[DATASET SUMMARY]",
		"File: survey.csv",
		"Rows: 4",
		"[METRICS]",
		"- Digital skill (owns a PC): 50.0% (n=4)",
		"[PERFORMANCE OVERVIEW]",
		"### Average CGPA by gender",
		"[NON-ACADEMIC FACTORS]",
		"[NORMALIZATION]",
		"- social_media_band: boundaries -1, 0, 2, 5, 7",
		"[HEAD AND SAMPLE ROWS]",
		"[NOTES]",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestWriteCharts(t *testing.T) {
	tbl := load(t, fullCSV)
	r := Build(tbl, nil, Options{})
	dir := filepath.Join(t.TempDir(), "charts")
	files, err := r.WriteCharts(dir)
	if err != nil {
		t.Fatalf("write charts: %v", err)
	}
	if len(files) != 14 {
		t.Fatalf("files = %v", files)
	}
	for _, f := range files {
		b, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if !bytes.HasPrefix(b, []byte("\x89PNG")) {
			t.Fatalf("%s is not a PNG", f)
		}
	}
	if c := chartByTitle(r, "Average CGPA by gender"); c.File != filepath.Join(dir, "overview-average-cgpa-by-gender.png") {
		t.Fatalf("file = %s", c.File)
	}
	if !strings.Contains(r.Markdown(), "![Distribution of CGPA](") {
		t.Fatalf("markdown does not link charts")
	}
}
