package survey

import (
	"math"
	"testing"
)

func TestParseNumeric(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3.5", 3.5, true},
		{" 80% ", 80, true},
		{"  42 ", 42, true},
		{"12,500", 12500, true},
		{"-1,234,567.25", -1234567.25, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"   ", 0, false},
		{"n/a", 0, false},
		{"1,2", 0, false},
		{"12,50,000", 0, false},
		{"1.5,000", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"-infinity", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumeric(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("ParseNumeric(%q) = %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestParseNumericIsIdempotent(t *testing.T) {
	for _, in := range []string{"3.15", "12,500", "80%", "0.1", "-0", "1e-7", "123456789.123"} {
		v, ok := ParseNumeric(in)
		if !ok {
			t.Fatalf("ParseNumeric(%q) failed", in)
		}
		again, ok := ParseNumeric(formatNumber(v))
		if !ok || again != v {
			t.Fatalf("round trip of %q: %v -> %v", in, v, again)
		}
	}
}

func TestQuantileAndMAD(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 100}
	if q := quantile(xs, 0.5); q != 3 {
		t.Fatalf("median = %v", q)
	}
	if q := quantile(xs, 0.25); q != 2 {
		t.Fatalf("q1 = %v", q)
	}
	med, mad := medianMAD(xs)
	if med != 3 || mad != 1 {
		t.Fatalf("median/mad = %v/%v", med, mad)
	}
	if !math.IsNaN(quantile(nil, 0.5)) {
		t.Fatalf("quantile of empty should be NaN")
	}
}
