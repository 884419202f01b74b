package track

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"

	"github.com/olivier-w/wavescope/internal/wave"
)

// blockFrames is the nominal frame count delivered per ReadBlock.
const blockFrames = 4096

// BlockDecoder yields interleaved signed 16-bit sample frames, one block at
// a time, until io.EOF.
type BlockDecoder interface {
	ReadBlock() ([]int16, error)
	SampleRate() int
	Channels() int
	// TotalFrames is the expected frame count, or -1 when unknown.
	TotalFrames() int64
	Close() error
}

// OpenDecoder opens path with the decoder matching its extension.
func OpenDecoder(path string) (BlockDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var d BlockDecoder
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".wav":
		d, err = newWAVBlockDecoder(f)
	case ".mp3":
		d, err = newMP3BlockDecoder(f)
	case ".flac":
		d, err = newFLACBlockDecoder(f)
	case ".ogg":
		d, err = newOGGBlockDecoder(f)
	default:
		err = fmt.Errorf("unsupported format: %s", ext)
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return d, nil
}

// scaleToInt16 maps a raw WAV sample of the given bit depth onto int16.
func scaleToInt16(v, bitDepth int) int16 {
	switch bitDepth {
	case 8:
		// 8-bit WAV is unsigned
		v = (v - 128) << 8
	case 24:
		v >>= 8
	case 32:
		v >>= 16
	}
	if v > 32767 {
		v = 32767
	} else if v < -32768 {
		v = -32768
	}
	return int16(v)
}

// --- WAV ---

type wavBlockDecoder struct {
	f        *os.File
	dec      *wav.Decoder
	buf      *audio.IntBuffer
	bitDepth int
	channels int
	rate     int
	total    int64
}

func newWAVBlockDecoder(f *os.File) (*wavBlockDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("reading WAV PCM data: %w", err)
	}

	channels := int(dec.NumChans)
	rate := int(dec.SampleRate)
	bitDepth := int(dec.BitDepth)
	total := int64(-1)
	if frameBytes := int64(channels * bitDepth / 8); frameBytes > 0 {
		total = dec.PCMLen() / frameBytes
	}

	return &wavBlockDecoder{
		f:   f,
		dec: dec,
		buf: &audio.IntBuffer{
			Format: &audio.Format{NumChannels: channels, SampleRate: rate},
			Data:   make([]int, blockFrames*channels),
		},
		bitDepth: bitDepth,
		channels: channels,
		rate:     rate,
		total:    total,
	}, nil
}

func (d *wavBlockDecoder) ReadBlock() ([]int16, error) {
	n, err := d.dec.PCMBuffer(d.buf)
	if n == 0 {
		if err != nil && err != io.EOF {
			return nil, err
		}
		return nil, io.EOF
	}
	n -= n % d.channels
	out := make([]int16, n)
	for i, v := range d.buf.Data[:n] {
		out[i] = scaleToInt16(v, d.bitDepth)
	}
	return out, nil
}

func (d *wavBlockDecoder) SampleRate() int    { return d.rate }
func (d *wavBlockDecoder) Channels() int      { return d.channels }
func (d *wavBlockDecoder) TotalFrames() int64 { return d.total }
func (d *wavBlockDecoder) Close() error       { return d.f.Close() }

// --- MP3 ---

type mp3BlockDecoder struct {
	f   *os.File
	dec *mp3.Decoder
	raw []byte
}

func newMP3BlockDecoder(f *os.File) (*mp3BlockDecoder, error) {
	dec, err := mp3.NewDecoder(f)
	if err != nil {
		return nil, err
	}
	// go-mp3 always produces 16-bit stereo: 4 bytes per frame.
	return &mp3BlockDecoder{f: f, dec: dec, raw: make([]byte, blockFrames*4)}, nil
}

func (d *mp3BlockDecoder) ReadBlock() ([]int16, error) {
	n, err := d.dec.Read(d.raw)
	if n == 0 {
		if err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	n -= n % 4
	out := make([]int16, n/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(d.raw[i*2:]))
	}
	return out, nil
}

func (d *mp3BlockDecoder) SampleRate() int    { return d.dec.SampleRate() }
func (d *mp3BlockDecoder) Channels() int      { return 2 }
func (d *mp3BlockDecoder) TotalFrames() int64 { return d.dec.Length() / 4 }
func (d *mp3BlockDecoder) Close() error       { return d.f.Close() }

// --- FLAC ---

type flacBlockDecoder struct {
	f        *os.File
	stream   *flac.Stream
	rate     int
	channels int
	bps      int
	total    int64
}

func newFLACBlockDecoder(f *os.File) (*flacBlockDecoder, error) {
	stream, err := flac.New(f)
	if err != nil {
		return nil, fmt.Errorf("decoding FLAC: %w", err)
	}
	info := stream.Info
	return &flacBlockDecoder{
		f:        f,
		stream:   stream,
		rate:     int(info.SampleRate),
		channels: int(info.NChannels),
		bps:      int(info.BitsPerSample),
		total:    int64(info.NSamples),
	}, nil
}

func (d *flacBlockDecoder) ReadBlock() ([]int16, error) {
	frame, err := d.stream.ParseNext()
	if err != nil {
		return nil, err
	}

	n := int(frame.Subframes[0].NSamples)
	out := make([]int16, n*d.channels)
	for i := 0; i < n; i++ {
		for ch := 0; ch < d.channels; ch++ {
			sample := int(frame.Subframes[ch].Samples[i])
			switch {
			case d.bps > 16:
				sample >>= (d.bps - 16)
			case d.bps < 16:
				sample <<= (16 - d.bps)
			}
			if sample > 32767 {
				sample = 32767
			} else if sample < -32768 {
				sample = -32768
			}
			out[i*d.channels+ch] = int16(sample)
		}
	}
	return out, nil
}

func (d *flacBlockDecoder) SampleRate() int    { return d.rate }
func (d *flacBlockDecoder) Channels() int      { return d.channels }
func (d *flacBlockDecoder) TotalFrames() int64 { return d.total }
func (d *flacBlockDecoder) Close() error       { return d.f.Close() }

// --- OGG Vorbis ---

type oggBlockDecoder struct {
	f    *os.File
	r    *oggvorbis.Reader
	fbuf []float32
}

func newOGGBlockDecoder(f *os.File) (*oggBlockDecoder, error) {
	r, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("decoding OGG: %w", err)
	}
	return &oggBlockDecoder{f: f, r: r, fbuf: make([]float32, blockFrames*r.Channels())}, nil
}

func (d *oggBlockDecoder) ReadBlock() ([]int16, error) {
	n, err := d.r.Read(d.fbuf)
	if n == 0 {
		if err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	n -= n % d.r.Channels()
	out := make([]int16, n)
	wave.Float32ToInt16(out, d.fbuf[:n])
	return out, nil
}

func (d *oggBlockDecoder) SampleRate() int    { return d.r.SampleRate() }
func (d *oggBlockDecoder) Channels() int      { return d.r.Channels() }
func (d *oggBlockDecoder) TotalFrames() int64 { return d.r.Length() }
func (d *oggBlockDecoder) Close() error       { return d.f.Close() }
