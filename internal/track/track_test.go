package track

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/olivier-w/wavescope/internal/clip"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestIsSupportedExt(t *testing.T) {
	tests := []struct {
		ext  string
		want bool
	}{
		{".wav", true},
		{".WAV", true},
		{".mp3", true},
		{".flac", true},
		{".ogg", true},
		{".aac", false},
		{".txt", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsSupportedExt(tt.ext); got != tt.want {
			t.Errorf("IsSupportedExt(%q) = %v, want %v", tt.ext, got, tt.want)
		}
	}
}

func TestScaleToInt16(t *testing.T) {
	tests := []struct {
		name     string
		v        int
		bitDepth int
		want     int16
	}{
		{"8-bit midpoint", 128, 8, 0},
		{"8-bit max", 255, 8, 32512},
		{"8-bit min", 0, 8, -32768},
		{"16-bit passthrough", 12345, 16, 12345},
		{"16-bit negative", -12345, 16, -12345},
		{"24-bit full scale", 1<<23 - 1, 24, 32767},
		{"24-bit negative", -(1 << 23), 24, -32768},
		{"32-bit full scale", 1<<31 - 1, 32, 32767},
		{"out of range clamps", 40000, 16, 32767},
	}
	for _, tt := range tests {
		if got := scaleToInt16(tt.v, tt.bitDepth); got != tt.want {
			t.Errorf("%s: scaleToInt16(%d, %d) = %d, want %d", tt.name, tt.v, tt.bitDepth, got, tt.want)
		}
	}
}

func TestOpenDecoderUnsupported(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	writeFile(t, path, []byte("not audio"))

	if _, err := OpenDecoder(path); err == nil {
		t.Fatal("OpenDecoder() expected error for unsupported extension")
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, _, err := Open(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Fatal("Open() expected error for missing file")
	}
}

func TestExportThenOpenRoundTrip(t *testing.T) {
	src := clip.New(8000, 2)
	frames := make([]int16, 0, 2000)
	for i := 0; i < 1000; i++ {
		frames = append(frames, int16(i*16), int16(-i*16))
	}
	src.Append(frames)
	src.Flush()

	path := filepath.Join(t.TempDir(), "ramp.wav")
	if err := ExportWAV(path, src); err != nil {
		t.Fatalf("ExportWAV() error = %v", err)
	}

	tr, status, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	var final LoadStatus
	for s := range status {
		final = s
	}
	if final.Err != nil {
		t.Fatalf("decode error = %v", final.Err)
	}
	if !final.Done {
		t.Fatal("last status not marked Done")
	}
	if final.Frames != 1000 {
		t.Errorf("Frames = %d, want 1000", final.Frames)
	}

	c := tr.Clip
	if c.Rate() != 8000 || c.Channels() != 2 {
		t.Fatalf("got rate=%d channels=%d, want 8000/2", c.Rate(), c.Channels())
	}
	if c.NumSamples() != 1000 {
		t.Fatalf("NumSamples() = %d, want 1000", c.NumSamples())
	}

	// Committed samples survive the int16 round trip within quantization.
	want := make([]float32, 1000)
	got := make([]float32, 1000)
	src.Committed(0).ReadAt(want, 0)
	c.Committed(0).ReadAt(got, 0)
	const tol = 2.0 / 32768.0
	for i := range want {
		d := got[i] - want[i]
		if d < -tol || d > tol {
			t.Fatalf("sample %d = %v, want %v (±%v)", i, got[i], want[i], tol)
		}
	}
}

func TestExportedFileProperties(t *testing.T) {
	src := clip.New(44100, 1)
	frames := make([]int16, 5000)
	for i := range frames {
		frames[i] = 16384
	}
	src.Append(frames)
	src.Flush()

	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := ExportWAV(path, src); err != nil {
		t.Fatalf("ExportWAV() error = %v", err)
	}

	dec, err := OpenDecoder(path)
	if err != nil {
		t.Fatalf("OpenDecoder() error = %v", err)
	}
	defer dec.Close()

	if dec.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", dec.SampleRate())
	}
	if dec.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1", dec.Channels())
	}
	if dec.TotalFrames() != 5000 {
		t.Errorf("TotalFrames() = %d, want 5000", dec.TotalFrames())
	}
}

func TestReadMetadataFilenameFallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "My Session Take 3.wav")
	writeFile(t, path, []byte("RIFF"))

	m := ReadMetadata(path)
	if m.Title != "My Session Take 3" {
		t.Errorf("Title = %q, want %q", m.Title, "My Session Take 3")
	}
	if m.Artist != "" {
		t.Errorf("Artist = %q, want empty", m.Artist)
	}
}
