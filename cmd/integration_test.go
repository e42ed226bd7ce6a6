package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const surveyCSV = `What is your current CGPA?,Gender,How many hour do you study daily?,How many times do you seat for study in a day?,Average attendance on class,How many hour do you spent daily in social media?,Do you have meritorious scholarship ?,What is your monthly family income?,Do you have personal Computer?,Admission year
3.6,Female,4,3,90,1,Yes,40000,Yes,2023
3.2,Male,3,2,80,2,No,120000,Yes,2023
2.7,Male,1,1,60,6,No,200000,No,2022
3.0,Female,2,2,75,3,Yes,60000,No,2023
`

// resetFlags restores every flag to its default so state does not leak
// between invocations of the shared root command.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v", args, err)
	}
	return out
}

// isolate points HOME at a temp dir and writes the survey fixture there.
func isolate(t *testing.T) (home, csvPath string) {
	t.Helper()
	home = t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	os.Setenv("HOME", home)
	csvPath = filepath.Join(home, "survey.csv")
	if err := os.WriteFile(csvPath, []byte(surveyCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return home, csvPath
}

func TestCLI_LoadJSON(t *testing.T) {
	_, path := isolate(t)
	out := runCmd(t, "load", path, "--json", "--rows", "2")
	var v struct {
		ID      string           `json:"id"`
		Summary survey.Summary   `json:"summary"`
		Rows    []map[string]any `json:"rows"`
	}
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if v.ID == "" || v.Summary.Rows != 4 || len(v.Rows) != 2 {
		t.Fatalf("view = %+v", v)
	}
	if v.Rows[0]["attendance_band"] != "High (>85%)" {
		t.Fatalf("row 0 = %v", v.Rows[0])
	}

	out = runCmd(t, "load", path, "--json", "--year", "2023")
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Summary.Rows != 3 || v.Summary.Filtered != 1 {
		t.Fatalf("filtered summary = %+v", v.Summary)
	}
}

func TestCLI_LoadTable(t *testing.T) {
	_, path := isolate(t)
	out := runCmd(t, "load", path)
	for _, want := range []string{"Loaded survey.csv: 4 rows", "table id:", "attendance_band"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if _, err := execute(t, "load", filepath.Join(filepath.Dir(path), "missing.csv")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestCLI_AggregateCorrMetrics(t *testing.T) {
	_, path := isolate(t)
	out := runCmd(t, "aggregate", path, "-g", "gender", "-v", "cgpa", "--json")
	var groups []survey.GroupValue
	if err := json.Unmarshal([]byte(out), &groups); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(groups) != 2 || groups[0].Key != "Female" || groups[0].N != 2 {
		t.Fatalf("groups = %+v", groups)
	}
	out = runCmd(t, "aggregate", path, "-g", "income_band", "-f", "count")
	if !strings.Contains(out, "Low Income") || !strings.Contains(out, "High Income") {
		t.Fatalf("count table:\n%s", out)
	}
	if _, err := execute(t, "aggregate", path, "-g", "gender", "-f", "mode", "-v", "cgpa"); err == nil {
		t.Fatalf("expected error for unknown aggregate")
	}

	out = runCmd(t, "corr", path, "--json")
	var m struct {
		Fields []string     `json:"fields"`
		Values [][]*float64 `json:"values"`
	}
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatalf("decode corr: %v", err)
	}
	if len(m.Fields) != 4 || m.Values[0][0] == nil || *m.Values[0][0] != 1 {
		t.Fatalf("corr = %+v", m)
	}

	out = runCmd(t, "metrics", path)
	if !strings.Contains(out, "50.0%") || !strings.Contains(out, "Seeks consultancy") {
		t.Fatalf("metrics output:\n%s", out)
	}
}

func TestCLI_ReportWritesMarkdownAndCharts(t *testing.T) {
	home, path := isolate(t)
	md := filepath.Join(home, "report.md")
	charts := filepath.Join(home, "charts")
	runCmd(t, "report", path, "-o", md, "--charts-dir", charts, "--sample-rows", "0")
	body, err := os.ReadFile(md)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	for _, want := range []string{"[PERFORMANCE OVERVIEW]", "[STUDY HABITS AND PERFORMANCE]", "[NON-ACADEMIC FACTORS]", "[ARTS FACULTY OVERVIEW]", "skipped \"Class modality by gender\"", "![Distribution of CGPA]"} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("report missing %q", want)
		}
	}
	if strings.Contains(string(body), "[HEAD AND SAMPLE ROWS]") {
		t.Fatalf("expected no sample rows")
	}
	pngs, _ := filepath.Glob(filepath.Join(charts, "*.png"))
	if len(pngs) != 9 {
		t.Fatalf("charts = %v", pngs)
	}
	if _, err := execute(t, "report", path, "--pages", "summary"); err == nil {
		t.Fatalf("expected error for unknown page")
	}
}

func TestCLI_ChartCommand(t *testing.T) {
	home, path := isolate(t)
	png := filepath.Join(home, "scatter.png")
	runCmd(t, "chart", "scatter", path, "--x", "study_hours_daily", "--y", "cgpa", "-o", png)
	b, err := os.ReadFile(png)
	if err != nil || !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("scatter png: %v", err)
	}
	runCmd(t, "chart", "bar", path, "--group", "social_media_band", "--y", "cgpa", "-o", png)
	runCmd(t, "chart", "pie", path, "--group", "gender", "-o", png)
	runCmd(t, "chart", "grouped", path, "--x", "scholarship_status", "--group", "gender", "-o", png)
	b, err = os.ReadFile(png)
	if err != nil || !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("grouped png: %v", err)
	}
	if _, err := execute(t, "chart", "violin", path, "-o", png); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	if _, err := execute(t, "chart", "grouped", path, "--x", "gender", "-o", png); err == nil {
		t.Fatalf("expected error for missing --group")
	}
	if _, err := execute(t, "chart", "box", path, "--group", "gender", "-o", png); err == nil {
		t.Fatalf("expected error for missing --y")
	}
}

func TestCLI_Batch(t *testing.T) {
	home, path := isolate(t)
	second := filepath.Join(home, "survey2.csv")
	if err := os.WriteFile(second, []byte(surveyCSV), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := runCmd(t, "batch", filepath.Join(home, "*.csv"), path)
	for _, want := range []string{"[1/2] Loading survey.csv", "[2/2] Loading survey2.csv", "Table ID", "Loaded 2 sources"} {
		if !strings.Contains(out, want) {
			t.Fatalf("batch output missing %q:\n%s", want, out)
		}
	}
	if _, err := execute(t, "batch", filepath.Join(home, "*.parquet")); err == nil {
		t.Fatalf("expected no-match error")
	}
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home, path := isolate(t)
	runCmd(t, "config", "set", "target_admission_year", "2022")
	if _, err := os.Stat(filepath.Join(home, ".surveyloom", "config.yaml")); err != nil {
		t.Fatalf("config not saved: %v", err)
	}
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "survey.target_admission_year: 2022") {
		t.Fatalf("show output:\n%s", out)
	}
	out = runCmd(t, "load", path, "--json")
	var v struct {
		Summary survey.Summary `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.Summary.Rows != 1 {
		t.Fatalf("saved year filter not applied: %+v", v.Summary)
	}
	if _, err := execute(t, "config", "set", "encodings", "ebcdic"); err == nil {
		t.Fatalf("expected validation error")
	}
	if _, err := execute(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}
