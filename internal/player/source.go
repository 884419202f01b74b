package player

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/olivier-w/wavescope/internal/clip"
)

// clipSource streams a clip's committed samples as interleaved signed 16-bit
// little-endian stereo at the output device rate. Clips with other rates or
// channel layouts are mapped with nearest-neighbor resampling, mono is
// duplicated to both outputs, and extra channels beyond two are dropped.
type clipSource struct {
	c *clip.Clip

	mu  sync.Mutex
	pos int64 // output frame position

	fbuf [channelCount][]float32
}

func newClipSource(c *clip.Clip) *clipSource {
	return &clipSource{c: c}
}

// srcIndex maps an output frame onto a clip sample index.
func (s *clipSource) srcIndex(outFrame int64) int64 {
	return outFrame * int64(s.c.Rate()) / sampleRate
}

// TotalFrames returns the output frame count covering the committed samples.
func (s *clipSource) TotalFrames() int64 {
	return s.c.NumSamples() * sampleRate / int64(s.c.Rate())
}

func (s *clipSource) Pos() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func (s *clipSource) SetPos(pos int64) {
	s.mu.Lock()
	s.pos = pos
	s.mu.Unlock()
}

func (s *clipSource) Read(p []byte) (int, error) {
	frames := len(p) / frameBytes
	if frames == 0 {
		return 0, nil
	}

	total := s.TotalFrames()
	pos := s.Pos()
	if pos >= total {
		return 0, io.EOF
	}
	if int64(frames) > total-pos {
		frames = int(total - pos)
	}

	// Pull the covered source range once per channel, then index into it
	// per output frame.
	srcLo := s.srcIndex(pos)
	srcHi := s.srcIndex(pos+int64(frames)-1) + 1
	n := int(srcHi - srcLo)
	clipChans := s.c.Channels()
	for ch := 0; ch < channelCount; ch++ {
		if cap(s.fbuf[ch]) < n {
			s.fbuf[ch] = make([]float32, n)
		}
		s.fbuf[ch] = s.fbuf[ch][:n]
		src := ch
		if src >= clipChans {
			src = clipChans - 1
		}
		got := s.c.Committed(src).ReadAt(s.fbuf[ch], srcLo)
		for i := got; i < n; i++ {
			s.fbuf[ch][i] = 0
		}
	}

	for i := 0; i < frames; i++ {
		si := s.srcIndex(pos+int64(i)) - srcLo
		for ch := 0; ch < channelCount; ch++ {
			v := s.fbuf[ch][si]
			if v > 1.0 {
				v = 1.0
			} else if v < -1.0 {
				v = -1.0
			}
			binary.LittleEndian.PutUint16(p[i*frameBytes+ch*2:], uint16(int16(v*32767)))
		}
	}

	s.mu.Lock()
	s.pos += int64(frames)
	s.mu.Unlock()
	return frames * frameBytes, nil
}
