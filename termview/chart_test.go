package termview

import (
	"strings"
	"testing"

	"pkt.systems/echowave/schema"
)

func TestRenderChartPlacesExtremes(t *testing.T) {
	samples := []schema.Sample{
		{T: 0, V: 0},
		{T: 1, V: 10},
		{T: 2, V: 5},
	}
	lines := renderChart(samples, 40, 8)
	if len(lines) != 8 {
		t.Fatalf("expected 8 rows, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "*") {
		t.Fatalf("maximum should land on the top row: %q", lines[0])
	}
	if !strings.Contains(lines[len(lines)-1], "*") {
		t.Fatalf("minimum should land on the bottom row: %q", lines[len(lines)-1])
	}
	if !strings.Contains(lines[0], "10") {
		t.Fatalf("top gutter should label the maximum: %q", lines[0])
	}
	if !strings.Contains(lines[len(lines)-1], "0") {
		t.Fatalf("bottom gutter should label the minimum: %q", lines[len(lines)-1])
	}
}

func TestRenderChartConnectsJumps(t *testing.T) {
	samples := []schema.Sample{
		{T: 0, V: 0},
		{T: 1, V: 100},
	}
	lines := renderChart(samples, 40, 10)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "|") {
		t.Fatal("expected vertical connector between distant rows")
	}
}

func TestRenderChartTooFewSamples(t *testing.T) {
	for _, samples := range [][]schema.Sample{nil, {{T: 1, V: 2}}} {
		lines := renderChart(samples, 40, 6)
		joined := strings.Join(lines, "\n")
		if !strings.Contains(joined, "waiting for samples") {
			t.Fatalf("expected placeholder for %d samples, got %q", len(samples), joined)
		}
		if strings.Contains(joined, "*") {
			t.Fatal("no points should be drawn with fewer than two samples")
		}
	}
}

func TestRenderChartFlatSignal(t *testing.T) {
	samples := []schema.Sample{{T: 0, V: 3}, {T: 1, V: 3}, {T: 2, V: 3}}
	lines := renderChart(samples, 40, 6)
	stars := 0
	for _, line := range lines {
		stars += strings.Count(line, "*")
	}
	if stars != 3 {
		t.Fatalf("expected 3 points on a flat signal, got %d", stars)
	}
}

func TestRenderChartWindowsToWidth(t *testing.T) {
	var samples []schema.Sample
	for i := 0; i < 200; i++ {
		samples = append(samples, schema.Sample{T: float64(i), V: float64(i)})
	}
	width := 40
	lines := renderChart(samples, width, 8)
	for _, line := range lines {
		if len([]rune(line)) > width {
			t.Fatalf("row wider than requested width: %q", line)
		}
	}
	// Newest samples win: the right edge carries the maximum.
	if !strings.Contains(lines[0], "199") {
		t.Fatalf("expected window to end at the newest sample, got %q", lines[0])
	}
}
