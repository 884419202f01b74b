package ui

import (
	"strings"
	"testing"
)

func TestNiceTickInterval(t *testing.T) {
	tests := []struct {
		min  float64
		want float64
	}{
		{0.08, 0.1},
		{0.14, 0.2},
		{0.3, 0.5},
		{0.7, 1},
		{1.4, 2},
		{3, 5},
		{7, 10},
	}
	for _, tt := range tests {
		if got := niceTickInterval(tt.min); got != tt.want {
			t.Errorf("niceTickInterval(%v) = %v, want %v", tt.min, got, tt.want)
		}
	}
}

func TestRenderTimeRulerMarksAndLabels(t *testing.T) {
	out := renderTimeRuler(0, 10, 60)
	if !strings.Contains(out, "┼") {
		t.Fatal("expected tick marks in ruler")
	}
	if !strings.Contains(out, "0:02.000") {
		t.Fatalf("expected timecode label in ruler, got %q", out)
	}
}

func TestRenderTimeRulerDegenerate(t *testing.T) {
	if out := renderTimeRuler(0, 0, 60); out != "" {
		t.Fatalf("expected empty ruler for zero scale, got %q", out)
	}
	if out := renderTimeRuler(0, 10, 4); out != "" {
		t.Fatalf("expected empty ruler for tiny width, got %q", out)
	}
}
