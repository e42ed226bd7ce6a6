package survey

import (
	"math"
	"testing"
)

func TestBandBoundaries(t *testing.T) {
	attendance := DefaultConfig().BandRules[0]
	cases := []struct {
		v    float64
		want string
	}{
		{0, "Low (<=70%)"},
		{-5, "Low (<=70%)"},
		{70, "Low (<=70%)"},
		{70.01, "Medium (71-85%)"},
		{85, "Medium (71-85%)"},
		{85.5, "High (>85%)"},
		{100, "High (>85%)"},
		{140, "High (>85%)"},
	}
	vals := make([]float64, len(cases))
	for i, c := range cases {
		vals[i] = c.v
	}
	got := Band(attendance, vals)
	for i, c := range cases {
		if got[i] != c.want {
			t.Errorf("Band(%v) = %q, want %q", c.v, got[i], c.want)
		}
	}
}

func TestBandRightOpen(t *testing.T) {
	r := BandRule{Name: "b", Source: "x", Boundaries: []float64{0, 10, 20}, Labels: []string{"lo", "hi"}, Interval: RightOpen}
	got := Band(r, []float64{0, 9.99, 10, 20, 25})
	want := []string{"lo", "lo", "hi", "hi", "hi"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Band = %v, want %v", got, want)
		}
	}
}

func TestBandBackfillsNullsWithMode(t *testing.T) {
	r := BandRule{Name: "b", Source: "x", Boundaries: []float64{0, 10, 20}, Labels: []string{"lo", "hi"}}
	got := Band(r, []float64{15, math.NaN(), 18, 2})
	if got[1] != "hi" {
		t.Fatalf("null backfill = %q, want hi", got[1])
	}
}

func TestDynamicTopStaysAboveFixedBoundaries(t *testing.T) {
	r := DefaultConfig().BandRules[1]
	edges := r.edges([]float64{0, 1, 2})
	if len(edges) != 5 || edges[4] != 6 {
		t.Fatalf("edges = %v, want top kept above 5", edges)
	}
	edges = r.edges([]float64{0, 9})
	if edges[4] != 10 {
		t.Fatalf("edges = %v, want top 10", edges)
	}
}
