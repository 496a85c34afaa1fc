package record

import (
	"math"
	"testing"
	"time"
)

func parseOne(t *testing.T, input string) Record {
	t.Helper()
	records := NewParser().Feed(input)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	return records[0]
}

func TestExtractExplicitFieldPath(t *testing.T) {
	rec := parseOne(t, "twist:\n  linear:\n    x: 1.5\n---\n")
	sample, ok := Extract(rec, "twist.linear.x", time.Unix(0, 0))
	if !ok {
		t.Fatalf("expected a sample")
	}
	if sample.V != 1.5 {
		t.Fatalf("expected value 1.5, got %v", sample.V)
	}
}

func TestExtractExplicitFieldPathAbsent(t *testing.T) {
	rec := parseOne(t, "data: 3.14\n---\n")
	if _, ok := Extract(rec, "missing.path", time.Unix(0, 0)); ok {
		t.Fatalf("expected no sample for absent path")
	}
}

func TestExtractAutoPrefersData(t *testing.T) {
	rec := parseOne(t, "other: 99\ndata: 3.14\n---\n")
	sample, ok := Extract(rec, "", time.Unix(0, 0))
	if !ok || sample.V != 3.14 {
		t.Fatalf("expected data 3.14, got %v (ok=%t)", sample.V, ok)
	}
}

func TestExtractAutoFirstNumericLeaf(t *testing.T) {
	rec := parseOne(t, "a:\n  label: north\n  b: 2\n---\n")
	sample, ok := Extract(rec, "", time.Unix(0, 0))
	if !ok || sample.V != 2 {
		t.Fatalf("expected first numeric leaf 2, got %v (ok=%t)", sample.V, ok)
	}
}

func TestExtractAutoNoNumericLeaf(t *testing.T) {
	rec := parseOne(t, "label: north\nframe: map\n---\n")
	if _, ok := Extract(rec, "", time.Unix(0, 0)); ok {
		t.Fatalf("expected no sample")
	}
}

func TestExtractUsesHeaderStamp(t *testing.T) {
	rec := parseOne(t, "header:\n  stamp:\n    sec: 7\n    nanosec: 500000000\ndata: 1\n---\n")
	sample, ok := Extract(rec, "", time.Unix(99, 0))
	if !ok {
		t.Fatalf("expected a sample")
	}
	if math.Abs(sample.T-7.5) > 1e-9 {
		t.Fatalf("expected t 7.5, got %v", sample.T)
	}
}

func TestExtractFallsBackToTopLevelStamp(t *testing.T) {
	rec := parseOne(t, "stamp:\n  sec: 3\n  nanosec: 0\ndata: 1\n---\n")
	sample, ok := Extract(rec, "", time.Unix(99, 0))
	if !ok || sample.T != 3 {
		t.Fatalf("expected t 3, got %v (ok=%t)", sample.T, ok)
	}
}

func TestExtractWallClockWhenNoStamp(t *testing.T) {
	received := time.Unix(1700000000, 250000000)
	rec := parseOne(t, "data: 1\n---\n")
	sample, ok := Extract(rec, "", received)
	if !ok {
		t.Fatalf("expected a sample")
	}
	want := float64(received.UnixNano()) / 1e9
	if math.Abs(sample.T-want) > 1e-6 {
		t.Fatalf("expected wall-clock t %v, got %v", want, sample.T)
	}
}

func TestNumericScalarRules(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42,", 42, true},
		{"'true'", 1, true},
		{"abc", 0, false},
		{"3.14", 3.14, true},
		{"-0.5", -0.5, true},
		{"  7  ", 7, true},
		{`"2.5"`, 2.5, true},
		{"False", 0, true},
		{"TRUE", 1, true},
		{"1e3", 1000, true},
		{"''", 0, false},
		{"", 0, false},
		{"'mixed\"", 0, false},
	}
	for _, tc := range cases {
		got, ok := Numeric(tc.in)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("Numeric(%q) = %v, %t; want %v, %t", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
