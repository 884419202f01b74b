package util

import (
	"fmt"
	"time"
)

// FormatDuration formats a duration as m:ss.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	m := total / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

// FormatTimecode formats a position in seconds as m:ss.mmm.
func FormatTimecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int(seconds*1000 + 0.5)
	m := ms / 60000
	s := ms % 60000 / 1000
	frac := ms % 1000
	return fmt.Sprintf("%d:%02d.%03d", m, s, frac)
}
