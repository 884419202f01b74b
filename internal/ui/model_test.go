package ui

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/olivier-w/wavescope/internal/clip"
	"github.com/olivier-w/wavescope/internal/track"
)

// newTestViewer builds a viewer around a fully loaded clip of the given
// duration, sized to an 80x24 window.
func newTestViewer(t *testing.T, rate int, seconds float64) Model {
	t.Helper()
	c := clip.New(rate, 1)
	frames := make([]int16, int(float64(rate)*seconds))
	for i := range frames {
		frames[i] = int16(8000 * math.Sin(float64(i)*0.05))
	}
	c.Append(frames)
	c.Flush()

	tr := &track.Track{
		Path: filepath.Join(t.TempDir(), "take.wav"),
		Meta: track.Metadata{Title: "take"},
		Clip: c,
	}
	m := New(tr, nil)
	model, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return model.(Model)
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestScrollClampsToClipBounds(t *testing.T) {
	m := newTestViewer(t, 44100, 2.0)
	m.follow = false

	model, _ := m.handleKey(tea.KeyMsg{Type: tea.KeyLeft})
	m = model.(Model)
	if m.t0 != 0 {
		t.Fatalf("scroll left at origin moved t0 to %v", m.t0)
	}

	for i := 0; i < 100; i++ {
		model, _ = m.handleKey(tea.KeyMsg{Type: tea.KeyRight})
		m = model.(Model)
	}
	if max := m.maxOrigin(); m.t0 != max {
		t.Fatalf("t0 = %v, want clamp at %v", m.t0, max)
	}
}

func TestZoomKeepsScaleWithinLimits(t *testing.T) {
	m := newTestViewer(t, 44100, 2.0)

	for i := 0; i < 40; i++ {
		model, _ := m.handleKey(keyRune('-'))
		m = model.(Model)
	}
	if m.pps < 0.01 {
		t.Fatalf("pps = %v, want >= 0.01", m.pps)
	}

	for i := 0; i < 60; i++ {
		model, _ := m.handleKey(keyRune('+'))
		m = model.(Model)
	}
	if m.pps > 44100 {
		t.Fatalf("pps = %v, want <= sample rate", m.pps)
	}
}

func TestZoomFitShowsWholeClip(t *testing.T) {
	m := newTestViewer(t, 44100, 3.0)

	model, _ := m.handleKey(keyRune('0'))
	m = model.(Model)

	if m.t0 != 0 {
		t.Fatalf("t0 = %v, want 0 after fit", m.t0)
	}
	if span := m.visibleSpan(); span < 3.0-1e-9 {
		t.Fatalf("visible span = %v, want >= clip duration 3.0", span)
	}
}

func TestFollowTracksLiveEnd(t *testing.T) {
	m := newTestViewer(t, 1000, 2.0)
	if !m.follow {
		t.Fatal("expected follow enabled on a fresh viewer")
	}

	model, _ := m.Update(tickMsg(time.Now()))
	m = model.(Model)
	if m.t0 != m.maxOrigin() {
		t.Fatalf("t0 = %v, want live end origin %v", m.t0, m.maxOrigin())
	}

	before := m.t0
	m.track.Clip.Append(make([]int16, 1000))
	m.track.Clip.Flush()
	model, _ = m.Update(tickMsg(time.Now()))
	m = model.(Model)
	if m.t0 <= before {
		t.Fatalf("t0 = %v, want to advance past %v after more samples", m.t0, before)
	}
}

func TestSeekKeysIgnoredWithoutPlayback(t *testing.T) {
	m := newTestViewer(t, 44100, 2.0)

	model, cmd := m.handleKey(keyRune(','))
	m = model.(Model)
	if cmd != nil {
		t.Fatalf("seek back without a player returned a command")
	}

	model, cmd = m.handleKey(keyRune('.'))
	if cmd != nil {
		t.Fatalf("seek forward without a player returned a command")
	}
	if model.(Model).player != nil {
		t.Fatalf("seek keys started a player")
	}
}

func TestTrimKeysAdjustClip(t *testing.T) {
	m := newTestViewer(t, 1000, 2.0)
	m.follow = false
	m.scroll.snap(0.5)

	model, _ := m.handleKey(keyRune('['))
	m = model.(Model)
	if got := m.track.Clip.TrimLeft(); got != 0.5 {
		t.Fatalf("TrimLeft() = %v, want 0.5", got)
	}
	if m.t0 != 0 {
		t.Fatalf("t0 = %v, want 0 after trimming to view start", m.t0)
	}

	model, _ = m.handleKey(keyRune(']'))
	m = model.(Model)
	if got := m.track.Clip.TrimLeft(); got != 0 {
		t.Fatalf("TrimLeft() = %v, want 0 after reset", got)
	}
}

func TestLoadStatusUpdatesAndStops(t *testing.T) {
	ch := make(chan track.LoadStatus, 1)
	c := clip.New(1000, 1)
	m := New(&track.Track{Meta: track.Metadata{Title: "x"}, Clip: c}, ch)
	if !m.loading {
		t.Fatal("expected loading state with a live channel")
	}

	model, cmd := m.Update(loadStatusMsg{Frames: 500, TotalFrames: 1000})
	m = model.(Model)
	if m.loadFrames != 500 || cmd == nil {
		t.Fatalf("progress not recorded or wait not rearmed: frames=%d cmd=%v", m.loadFrames, cmd)
	}

	model, _ = m.Update(loadStatusMsg{Frames: 1000, TotalFrames: 1000, Done: true})
	m = model.(Model)
	if m.loading {
		t.Fatal("expected loading cleared after terminal status")
	}
}

func TestLoadFailureShowsStatus(t *testing.T) {
	c := clip.New(1000, 1)
	m := New(&track.Track{Meta: track.Metadata{Title: "x"}, Clip: c}, make(chan track.LoadStatus))

	model, _ := m.Update(loadStatusMsg{Done: true, Err: os.ErrNotExist})
	m = model.(Model)
	if m.statusMsg == "" || !strings.Contains(m.statusMsg, "Load failed") {
		t.Fatalf("statusMsg = %q, want load failure notice", m.statusMsg)
	}
}

func TestExportKeyRunsOnce(t *testing.T) {
	m := newTestViewer(t, 8000, 0.5)

	model, cmd := m.handleKey(keyRune('s'))
	m = model.(Model)
	if cmd == nil {
		t.Fatal("expected export command")
	}
	if !m.exporting {
		t.Fatal("expected exporting state")
	}

	if _, again := m.handleKey(keyRune('s')); again != nil {
		t.Fatal("expected second export key to be ignored while running")
	}

	msg, ok := cmd().(exportDoneMsg)
	if !ok {
		t.Fatalf("expected exportDoneMsg, got %T", msg)
	}
	if msg.err != nil {
		t.Fatalf("export error = %v", msg.err)
	}
	if _, err := os.Stat(msg.path); err != nil {
		t.Fatalf("exported file missing: %v", err)
	}

	model, _ = m.Update(msg)
	m = model.(Model)
	if m.exporting {
		t.Fatal("expected exporting cleared after done message")
	}
	if !strings.Contains(m.statusMsg, "Exported") {
		t.Fatalf("statusMsg = %q, want export notice", m.statusMsg)
	}
}

func TestViewRendersWaveformBand(t *testing.T) {
	m := newTestViewer(t, 44100, 1.0)
	m.follow = false
	m.scroll.snap(0)

	view := m.View()
	if !strings.Contains(view, "wavescope") {
		t.Fatal("expected app header in view")
	}
	if !strings.Contains(view, "44100 Hz") {
		t.Fatal("expected sample rate in info line")
	}
	if !strings.Contains(view, "█") {
		t.Fatal("expected rendered waveform cells in view")
	}
}

func TestQuitClearsView(t *testing.T) {
	m := newTestViewer(t, 8000, 0.5)

	model, cmd := m.handleKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = model.(Model)
	if !m.quitting || cmd == nil {
		t.Fatal("expected quit state and command")
	}
	if m.View() != "" {
		t.Fatal("expected empty view while quitting")
	}
}
