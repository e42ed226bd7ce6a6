package survey

import (
	"context"
	"errors"
	"testing"
)

func TestValueCountsAndCrossCounts(t *testing.T) {
	tbl := loadSurvey(t)
	counts, err := ValueCounts(tbl, FieldGender)
	if err != nil {
		t.Fatalf("value counts: %v", err)
	}
	if len(counts) != 2 || counts[0] != (Count{Value: "Male", N: 3}) || counts[1] != (Count{Value: "Female", N: 1}) {
		t.Fatalf("counts = %+v", counts)
	}
	bands, _ := ValueCounts(tbl, FieldAttendanceBand)
	if bands[0].Value != "Low (<=70%)" || bands[0].N != 2 {
		t.Fatalf("band counts = %+v", bands)
	}
	ct, err := CrossCounts(tbl, FieldGender, FieldScholarship)
	if err != nil {
		t.Fatalf("cross counts: %v", err)
	}
	// rows: Female, Male; cols: No, Yes
	if ct.Counts[0][0] != 1 || ct.Counts[1][0] != 1 || ct.Counts[1][1] != 2 {
		t.Fatalf("cross = %+v", ct)
	}
}

func TestHistogram(t *testing.T) {
	cfg := Config{NumericFields: []string{"x"}}
	tbl, err := newTestLoader(t, cfg).LoadBytes(context.Background(), "h.csv", []byte("x\n0\n1\n2\n3\n4\n10\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	bins, err := Histogram(tbl, "x", 5)
	if err != nil {
		t.Fatalf("histogram: %v", err)
	}
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	if len(bins) != 5 || total != 6 || bins[0].Count != 2 || bins[4].Count != 1 || bins[4].Hi != 10 {
		t.Fatalf("bins = %+v", bins)
	}
}

func TestGroupSeriesAndBox(t *testing.T) {
	tbl := loadSurvey(t)
	series, err := GroupSeries(tbl, FieldAttendanceBand, FieldCGPA, nil)
	if err != nil {
		t.Fatalf("group series: %v", err)
	}
	if len(series) != 3 || series[0].Key != "Low (<=70%)" || len(series[0].Values) != 2 {
		t.Fatalf("series = %+v", series)
	}
	b := Box([]float64{1, 2, 3, 4, 100})
	if b.N != 5 || b.Min != 1 || b.Q1 != 2 || b.Median != 3 || b.Q3 != 4 || b.Max != 100 || b.Outliers != 1 {
		t.Fatalf("box = %+v", b)
	}
}

func TestTrendline(t *testing.T) {
	cfg := Config{NumericFields: []string{"x", "y", "k"}}
	tbl, err := newTestLoader(t, cfg).LoadBytes(context.Background(), "t.csv", []byte("x,y,k\n1,3,1\n2,5,1\n3,7,1\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	line, err := Trendline(tbl, "x", "y")
	if err != nil {
		t.Fatalf("trendline: %v", err)
	}
	if !almostEqual(line.Slope, 2, 1e-12) || !almostEqual(line.Intercept, 1, 1e-12) || line.N != 3 {
		t.Fatalf("line = %+v", line)
	}
	if !almostEqual(line.At(10), 21, 1e-9) {
		t.Fatalf("At(10) = %v", line.At(10))
	}
	_, err = Trendline(tbl, "k", "y")
	var ie *InsufficientDataError
	if !errors.As(err, &ie) {
		t.Fatalf("constant x should be insufficient, got %v", err)
	}
}

func TestMetrics(t *testing.T) {
	tbl := loadSurvey(t)
	ms, errs := Metrics(tbl, DefaultConfig().Metrics)
	// consultancy_status is not in the fixture
	if len(errs) != 1 || !errors.Is(errs[0], ErrUnknownField) {
		t.Fatalf("errs = %v", errs)
	}
	got := map[string]Metric{}
	for _, m := range ms {
		got[m.Field] = m
	}
	if m := got[FieldCGPA]; !almostEqual(m.Value, (3.5+2.8+3.9+(3.5+2.8+3.9)/3)/4, 1e-12) || m.N != 4 {
		t.Fatalf("cgpa metric = %+v", m)
	}
	if m := got[FieldPCStatus]; m.Value != 75 || m.N != 4 {
		t.Fatalf("pc metric = %+v", m)
	}
	if m := got[FieldScholarship]; m.Value != 50 {
		t.Fatalf("scholarship metric = %+v", m)
	}
}
