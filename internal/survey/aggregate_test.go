package survey

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"
)

func loadSurvey(t *testing.T) *Table {
	t.Helper()
	tbl, err := newTestLoader(t, DefaultConfig()).LoadBytes(context.Background(), "s.csv", []byte(surveyCSV))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return tbl
}

func TestAggregateFollowsBandOrder(t *testing.T) {
	cfg := Config{
		NumericFields: []string{"attendance", "cgpa"},
		BandRules: []BandRule{{
			Name:       "band",
			Source:     "attendance",
			Boundaries: []float64{0, 70, 85, 100},
			Labels:     []string{"Low Attendance", "Medium Attendance", "High Attendance"},
		}},
	}
	src := "attendance,cgpa\n90,3.8\n60,2.5\n80,3.1\n95,3.6\n"
	tbl, err := newTestLoader(t, cfg).LoadBytes(context.Background(), "b.csv", []byte(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	groups, err := tbl.Aggregate("band", "cgpa", AggMean)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	var keys []string
	for _, g := range groups {
		keys = append(keys, g.Key)
	}
	want := []string{"Low Attendance", "Medium Attendance", "High Attendance"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	if !almostEqual(groups[2].Value, 3.7, 1e-12) || groups[2].N != 2 {
		t.Fatalf("high group = %+v", groups[2])
	}
}

func TestAggregateCountByBand(t *testing.T) {
	tbl := loadSurvey(t)
	groups, err := Aggregate(tbl, AggregateSpec{GroupField: FieldIncomeBand, Func: AggCount})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	// the missing income is imputed to the mean, which lands in Medium
	want := []GroupValue{
		{Key: "Low Income", Value: 1, N: 1},
		{Key: "Medium Income", Value: 2, N: 2},
		{Key: "High Income", Value: 1, N: 1},
	}
	if !reflect.DeepEqual(groups, want) {
		t.Fatalf("groups = %+v, want %+v", groups, want)
	}
}

func TestAggregateOmitsEmptyGroups(t *testing.T) {
	cfg := Config{NumericFields: []string{"x", "y"}, BandRules: []BandRule{{
		Name: "band", Source: "x", Boundaries: []float64{0, 10, 20, 30}, Labels: []string{"a", "b", "c"},
	}}}
	tbl, err := newTestLoader(t, cfg).LoadBytes(context.Background(), "o.csv", []byte("x,y\n5,1\n25,2\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	groups, err := tbl.Aggregate("band", "y", AggMean)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(groups) != 2 || groups[0].Key != "a" || groups[1].Key != "c" {
		t.Fatalf("groups = %+v", groups)
	}
}

func TestAggregateFunctions(t *testing.T) {
	cfg := Config{NumericFields: []string{"v", "w"}}
	src := "g,v,w\na,1,2\na,3,6\nb,5,1\nb,,2\nb,9,3\n"
	tbl, err := newTestLoader(t, cfg).LoadBytes(context.Background(), "f.csv", []byte(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// b's null v is imputed with the column mean (1+3+5+9)/4 = 4.5
	cases := []struct {
		fn   AggFunc
		a, b float64
	}{
		{AggMean, 2, (5 + 4.5 + 9) / 3},
		{AggSum, 4, 18.5},
		{AggMin, 1, 4.5},
		{AggMax, 3, 9},
		{AggMedian, 2, 5},
		{AggCount, 2, 3},
	}
	for _, c := range cases {
		groups, err := tbl.Aggregate("g", "v", c.fn)
		if err != nil {
			t.Fatalf("%s: %v", c.fn, err)
		}
		if len(groups) != 2 || !almostEqual(groups[0].Value, c.a, 1e-12) || !almostEqual(groups[1].Value, c.b, 1e-12) {
			t.Fatalf("%s = %+v, want %v/%v", c.fn, groups, c.a, c.b)
		}
	}
	groups, err := Aggregate(tbl, AggregateSpec{GroupField: "g", ValueField: "v", Func: AggCorr, PairField: "w"})
	if err != nil {
		t.Fatalf("corr: %v", err)
	}
	if len(groups) != 2 || !almostEqual(groups[0].Value, 1, 1e-12) {
		t.Fatalf("corr groups = %+v", groups)
	}
}

func TestAggregateExplicitOrderAndErrors(t *testing.T) {
	tbl := loadSurvey(t)
	groups, err := Aggregate(tbl, AggregateSpec{GroupField: FieldGender, ValueField: FieldCGPA, Order: []string{"Male", "Female"}})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if groups[0].Key != "Male" || groups[1].Key != "Female" {
		t.Fatalf("order = %+v", groups)
	}
	if _, err := tbl.Aggregate("nope", FieldCGPA, AggMean); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("want ErrUnknownField, got %v", err)
	}
	if _, err := tbl.Aggregate(FieldCGPA, FieldGender, AggMean); !errors.Is(err, ErrNotNumeric) {
		t.Fatalf("want ErrNotNumeric, got %v", err)
	}
	if _, err := ParseAggFunc("mode"); err == nil {
		t.Fatalf("unknown aggregate accepted")
	}
}

func TestCorrelationMatrixSingleField(t *testing.T) {
	tbl := loadSurvey(t)
	m, err := CorrelationMatrix(tbl, []string{FieldCGPA})
	if err != nil {
		t.Fatalf("corr: %v", err)
	}
	if len(m.Values) != 1 || len(m.Values[0]) != 1 || m.Values[0][0] != 1.0 {
		t.Fatalf("matrix = %v, want [[1]]", m.Values)
	}
}

func TestCorrelationMatrix(t *testing.T) {
	cfg := Config{NumericFields: []string{"x", "y", "z", "c"}}
	src := "x,y,z,c\n1,2,5,7\n2,4,3,7\n3,6,4,7\n4,8,1,7\n"
	tbl, err := newTestLoader(t, cfg).LoadBytes(context.Background(), "c.csv", []byte(src))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	m, err := CorrelationMatrix(tbl, []string{"x", "y", "z", "c"})
	if err != nil {
		t.Fatalf("corr: %v", err)
	}
	if r, ok := m.At("x", "y"); !ok || !almostEqual(r, 1, 1e-12) {
		t.Fatalf("r(x,y) = %v", r)
	}
	if r, _ := m.At("y", "x"); !almostEqual(r, m.Values[0][1], 0) {
		t.Fatalf("matrix not symmetric")
	}
	if r, ok := m.At("x", "z"); !ok || r >= 0 {
		t.Fatalf("r(x,z) = %v, want negative", r)
	}
	if _, ok := m.At("x", "c"); ok {
		t.Fatalf("constant column must be undefined")
	}
	for i := range m.Fields {
		if m.Values[i][i] != 1 {
			t.Fatalf("diagonal %d = %v", i, m.Values[i][i])
		}
	}
	if len(m.Undefined) != 3 {
		t.Fatalf("undefined = %v", m.Undefined)
	}
	var ie *InsufficientDataError
	if !errors.As(error(m.Undefined[0]), &ie) || ie.Reason != "zero variance" {
		t.Fatalf("undefined[0] = %v", m.Undefined[0])
	}
	if _, err := CorrelationMatrix(tbl, []string{"x", "missing"}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("want ErrUnknownField, got %v", err)
	}
}

func TestPearsonNeedsTwoJointObservations(t *testing.T) {
	nan := math.NaN()
	r, n, reason := pearson([]float64{1, nan, 3}, []float64{nan, 2, 5})
	if !math.IsNaN(r) || n != 1 || reason == "" {
		t.Fatalf("r=%v n=%d reason=%q", r, n, reason)
	}
}
