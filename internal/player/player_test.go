package player

import (
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/olivier-w/wavescope/internal/clip"
)

func newStereoClip(t *testing.T, rate, frames int, left, right int16) *clip.Clip {
	t.Helper()
	c := clip.New(rate, 2)
	buf := make([]int16, 0, frames*2)
	for i := 0; i < frames; i++ {
		buf = append(buf, left, right)
	}
	c.Append(buf)
	c.Flush()
	return c
}

func readFrames(t *testing.T, s *clipSource, frames int) []int16 {
	t.Helper()
	raw := make([]byte, frames*frameBytes)
	n, err := s.Read(raw)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	out := make([]int16, n/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}
	return out
}

func TestClipSourceReadsCommittedStereo(t *testing.T) {
	c := newStereoClip(t, sampleRate, 8, 16384, -16384)
	s := newClipSource(c)

	if got := s.TotalFrames(); got != 8 {
		t.Fatalf("TotalFrames() = %d, want 8", got)
	}

	out := readFrames(t, s, 8)
	if len(out) != 16 {
		t.Fatalf("got %d samples, want 16", len(out))
	}
	for i := 0; i < 8; i++ {
		if out[i*2] != 16383 || out[i*2+1] != -16383 {
			t.Fatalf("frame %d = (%d, %d), want (16383, -16383)", i, out[i*2], out[i*2+1])
		}
	}
	if s.Pos() != 8 {
		t.Errorf("Pos() = %d, want 8", s.Pos())
	}
}

func TestClipSourceMonoDuplicates(t *testing.T) {
	c := clip.New(sampleRate, 1)
	c.Append([]int16{8192, 8192, 8192, 8192})
	c.Flush()
	s := newClipSource(c)

	out := readFrames(t, s, 4)
	for i := 0; i < 4; i++ {
		if out[i*2] != out[i*2+1] {
			t.Fatalf("frame %d channels differ: %d vs %d", i, out[i*2], out[i*2+1])
		}
	}
}

func TestClipSourceResamplesToDeviceRate(t *testing.T) {
	c := clip.New(sampleRate/2, 1)
	c.Append([]int16{1024, 2048, 4096, 8192, 16384})
	c.Flush()
	s := newClipSource(c)

	if got := s.TotalFrames(); got != 10 {
		t.Fatalf("TotalFrames() = %d, want 10", got)
	}

	// Nearest-neighbor upsampling repeats each source sample twice.
	out := readFrames(t, s, 10)
	for i := 0; i < 10; i += 2 {
		if out[i*2] != out[(i+1)*2] {
			t.Fatalf("output frames %d and %d differ: %d vs %d", i, i+1, out[i*2], out[(i+1)*2])
		}
	}
}

func TestClipSourceEOFPastEnd(t *testing.T) {
	c := newStereoClip(t, sampleRate, 4, 100, 100)
	s := newClipSource(c)
	s.SetPos(4)

	raw := make([]byte, frameBytes)
	if _, err := s.Read(raw); err != io.EOF {
		t.Fatalf("Read() error = %v, want io.EOF", err)
	}
}

func TestClipSourceExcludesPendingSamples(t *testing.T) {
	c := clip.New(sampleRate, 1)
	c.Append([]int16{100, 200, 300})
	// No flush: samples are still pending.
	s := newClipSource(c)
	if got := s.TotalFrames(); got != 0 {
		t.Fatalf("TotalFrames() = %d, want 0 before flush", got)
	}

	c.Flush()
	if got := s.TotalFrames(); got != 3 {
		t.Fatalf("TotalFrames() = %d, want 3 after flush", got)
	}
}

func TestSeekClampsToCommittedRange(t *testing.T) {
	c := newStereoClip(t, sampleRate, sampleRate*2, 100, 100)
	p := &Player{source: newClipSource(c)}

	p.Seek(-time.Second)
	if got := p.source.Pos(); got != 0 {
		t.Fatalf("Pos() after backward seek from start = %d, want 0", got)
	}

	p.Seek(500 * time.Millisecond)
	if got := p.source.Pos(); got != sampleRate/2 {
		t.Fatalf("Pos() = %d, want %d", got, sampleRate/2)
	}

	p.Seek(time.Hour)
	if got, total := p.source.Pos(), p.source.TotalFrames(); got != total {
		t.Fatalf("Pos() after forward seek past end = %d, want %d", got, total)
	}
}

func TestDurationReportsCommittedLength(t *testing.T) {
	c := newStereoClip(t, sampleRate, sampleRate, 100, 100)
	p := &Player{source: newClipSource(c)}

	if got := p.Duration(); got != time.Second {
		t.Fatalf("Duration() = %v, want %v", got, time.Second)
	}
}

func TestClipSourceSetPosResumesThere(t *testing.T) {
	c := clip.New(sampleRate, 1)
	c.Append([]int16{1000, 2000, 3000, 4000})
	c.Flush()
	s := newClipSource(c)
	s.SetPos(2)

	out := readFrames(t, s, 2)
	sample := float32(3000)
	want := int16(sample / 32768.0 * 32767)
	if out[0] != want {
		t.Fatalf("first sample after seek = %d, want %d", out[0], want)
	}
}
