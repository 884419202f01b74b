package track

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/olivier-w/wavescope/internal/clip"
	"github.com/olivier-w/wavescope/internal/wave"
)

// ExportWAV writes the clip's committed samples to path as 16-bit PCM WAV.
func ExportWAV(path string, c *clip.Clip) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	channels := c.Channels()
	enc := wav.NewEncoder(f, c.Rate(), 16, channels, 1)

	const block = int64(4096)
	total := c.NumSamples()
	fbuf := make([]float32, block)
	i16 := make([]int16, block)
	for off := int64(0); off < total; off += block {
		cnt := block
		if total-off < cnt {
			cnt = total - off
		}
		data := make([]int, int(cnt)*channels)
		for ch := 0; ch < channels; ch++ {
			got := c.Committed(ch).ReadAt(fbuf[:cnt], off)
			wave.Float32ToInt16(i16[:got], fbuf[:got])
			for i := 0; i < got; i++ {
				data[i*channels+ch] = int(i16[i])
			}
		}
		buf := &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: c.Rate()},
			Data:           data,
			SourceBitDepth: 16,
		}
		if err := enc.Write(buf); err != nil {
			f.Close()
			return fmt.Errorf("writing WAV data: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("finalizing WAV: %w", err)
	}
	return f.Close()
}
