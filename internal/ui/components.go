package ui

import (
	"fmt"
	"strings"

	"github.com/olivier-w/wavescope/internal/util"
)

// renderTimeRuler draws tick marks with timecodes under the waveform.
// t0 is the left-edge time in seconds, pps the columns per second.
func renderTimeRuler(t0, pps float64, width int) string {
	if width < 8 || pps <= 0 {
		return ""
	}

	// Pick a tick spacing that leaves room for a timecode label.
	const minTickCols = 14
	tickSecs := niceTickInterval(float64(minTickCols) / pps)

	firstTick := tickSecs * float64(int(t0/tickSecs))
	if firstTick < t0 {
		firstTick += tickSecs
	}

	runes := []rune(strings.Repeat("─", width))
	var labels strings.Builder
	lastLabelEnd := 0
	for t := firstTick; ; t += tickSecs {
		c := int((t-t0)*pps + 0.5)
		if c >= width {
			break
		}
		if c < 0 {
			continue
		}
		runes[c] = '┼'
		label := util.FormatTimecode(t)
		if c >= lastLabelEnd && c+len(label) <= width {
			labels.WriteString(strings.Repeat(" ", c-lastLabelEnd))
			labels.WriteString(label)
			lastLabelEnd = c + len(label)
		}
	}

	return rulerStyle.Render(string(runes)) + "\n  " + rulerStyle.Render(labels.String())
}

// niceTickInterval rounds up to a 1/2/5-series interval in seconds.
func niceTickInterval(min float64) float64 {
	if min <= 0 {
		return 1
	}
	mag := 1.0
	for mag < min {
		mag *= 10
	}
	for mag/10 >= min {
		mag /= 10
	}
	for _, f := range []float64{mag / 10, mag / 5, mag / 2} {
		if f >= min {
			return f
		}
	}
	return mag
}

func renderVolumePercent(vol float64) string {
	return fmt.Sprintf("vol %d%%", int(vol*100))
}
