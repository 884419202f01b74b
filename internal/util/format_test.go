package util

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00"},
		{59 * time.Second, "0:59"},
		{61 * time.Second, "1:01"},
		{10 * time.Minute, "10:00"},
		{-time.Second, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatTimecode(t *testing.T) {
	tests := []struct {
		secs float64
		want string
	}{
		{0, "0:00.000"},
		{0.01, "0:00.010"},
		{1.5, "0:01.500"},
		{61.25, "1:01.250"},
		{-3, "0:00.000"},
	}
	for _, tt := range tests {
		if got := FormatTimecode(tt.secs); got != tt.want {
			t.Errorf("FormatTimecode(%v) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
