package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/olivier-w/wavescope/internal/wave"
)

const (
	cellBlank uint8 = iota
	cellAxis
	cellPeak
	cellRMS
	cellPlayhead
)

// renderChannel draws one channel's column summaries as a band of rows.
// Each column shows the min/max extent as a thin trace with the RMS
// envelope filled solid inside it. playheadCol < 0 means no playhead.
func renderChannel(v wave.View, width, height, playheadCol int) string {
	if width < 1 || height < 1 {
		return ""
	}

	mask := make([][]uint8, height)
	for r := range mask {
		mask[r] = make([]uint8, width)
	}

	mid := ampToRow(0, height)
	for c := 0; c < width; c++ {
		mask[mid][c] = cellAxis
	}

	cols := len(v.Min)
	if cols > width {
		cols = width
	}
	for c := 0; c < cols; c++ {
		top := ampToRow(float64(v.Max[c]), height)
		bot := ampToRow(float64(v.Min[c]), height)
		for r := top; r <= bot; r++ {
			mask[r][c] = cellPeak
		}
		rms := float64(v.RMS[c])
		for r := ampToRow(rms, height); r <= ampToRow(-rms, height); r++ {
			mask[r][c] = cellRMS
		}
	}

	if playheadCol >= 0 && playheadCol < width {
		for r := range mask {
			mask[r][playheadCol] = cellPlayhead
		}
	}

	var out strings.Builder
	for r := range mask {
		if r > 0 {
			out.WriteByte('\n')
		}
		// Group runs of equal cells so styling cost stays per-run.
		c := 0
		for c < width {
			m := mask[r][c]
			start := c
			for c < width && mask[r][c] == m {
				c++
			}
			run := strings.Repeat(cellGlyph(m), c-start)
			if style := cellStyle(m); style != nil {
				run = style.Render(run)
			}
			out.WriteString(run)
		}
	}
	return out.String()
}

func cellGlyph(m uint8) string {
	switch m {
	case cellAxis:
		return "·"
	case cellPeak:
		return "│"
	case cellRMS:
		return "█"
	case cellPlayhead:
		return "┃"
	}
	return " "
}

func cellStyle(m uint8) *lipgloss.Style {
	switch m {
	case cellAxis:
		return &axisStyle
	case cellPeak:
		return &peakStyle
	case cellRMS:
		return &rmsStyle
	case cellPlayhead:
		return &playheadStyle
	}
	return nil
}

// ampToRow maps an amplitude in [-1, 1] onto a row, +1 at the top.
func ampToRow(amp float64, height int) int {
	if height <= 1 {
		return 0
	}
	if amp > 1 {
		amp = 1
	} else if amp < -1 {
		amp = -1
	}
	span := height - 1
	row := int(math.Round((1 - (amp+1)/2) * float64(span)))
	if row < 0 {
		row = 0
	}
	if row >= height {
		row = height - 1
	}
	return row
}
