package termview

import (
	"fmt"
	"strings"

	"pkt.systems/echowave/schema"
)

const gutterWidth = 11

// renderChart draws an ASCII waveform of the samples into a
// width x height cell, one column per sample, newest on the right.
// Fewer than two samples yields a placeholder: a single point has no
// usable vertical scale.
func renderChart(samples []schema.Sample, width, height int) []string {
	if width <= gutterWidth+2 {
		width = gutterWidth + 2
	}
	if height < 2 {
		height = 2
	}
	cols := width - gutterWidth
	if len(samples) > cols {
		samples = samples[len(samples)-cols:]
	}

	if len(samples) < 2 {
		lines := make([]string, height)
		message := "waiting for samples"
		for i := range lines {
			if i == height/2 {
				lines[i] = strings.Repeat(" ", gutterWidth) + message
			} else {
				lines[i] = ""
			}
		}
		return lines
	}

	vmin, vmax := samples[0].V, samples[0].V
	for _, sample := range samples[1:] {
		if sample.V < vmin {
			vmin = sample.V
		}
		if sample.V > vmax {
			vmax = sample.V
		}
	}
	if vmin == vmax {
		// Flat signal still needs a span to land on a row.
		vmin--
		vmax++
	}

	grid := make([][]byte, height)
	for i := range grid {
		grid[i] = []byte(strings.Repeat(" ", cols))
	}
	rowFor := func(v float64) int {
		frac := (v - vmin) / (vmax - vmin)
		row := int(float64(height-1) * (1 - frac))
		if row < 0 {
			row = 0
		}
		if row >= height {
			row = height - 1
		}
		return row
	}

	prevRow := -1
	for col, sample := range samples {
		row := rowFor(sample.V)
		grid[row][col] = '*'
		if prevRow >= 0 {
			lo, hi := prevRow, row
			if lo > hi {
				lo, hi = hi, lo
			}
			for r := lo + 1; r < hi; r++ {
				if grid[r][col] == ' ' {
					grid[r][col] = '|'
				}
			}
		}
		prevRow = row
	}

	lines := make([]string, height)
	for i := range grid {
		gutter := strings.Repeat(" ", gutterWidth-1) + "|"
		switch i {
		case 0:
			gutter = fmt.Sprintf("%9.4g |", vmax)
		case height - 1:
			gutter = fmt.Sprintf("%9.4g |", vmin)
		}
		lines[i] = gutter + string(grid[i])
	}
	return lines
}
