package track

import (
	"fmt"
	"io"

	"github.com/olivier-w/wavescope/internal/clip"
)

// LoadStatus reports decode progress for a track being loaded.
type LoadStatus struct {
	// Frames decoded so far.
	Frames int64
	// TotalFrames expected, or -1 when the container does not say.
	TotalFrames int64
	// Done is true on the final status, with Err set if decoding failed.
	Done bool
	Err  error
}

// Track is an audio file decoded into a Clip.
type Track struct {
	Path string
	Meta Metadata
	Clip *clip.Clip
}

// Open opens path and starts decoding it into a fresh Clip in the background.
// The Track is usable immediately; status carries progress updates and exactly
// one terminal Done status before closing.
func Open(path string) (*Track, <-chan LoadStatus, error) {
	dec, err := OpenDecoder(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}

	tr := &Track{
		Path: path,
		Meta: ReadMetadata(path),
		Clip: clip.New(dec.SampleRate(), dec.Channels()),
	}

	status := make(chan LoadStatus, 1)
	go decodeLoop(dec, tr.Clip, status)
	return tr, status, nil
}

func decodeLoop(dec BlockDecoder, c *clip.Clip, status chan<- LoadStatus) {
	defer close(status)
	defer dec.Close()

	total := dec.TotalFrames()
	channels := dec.Channels()
	var frames int64
	for {
		block, err := dec.ReadBlock()
		if err == io.EOF {
			break
		}
		if err != nil {
			c.Flush()
			status <- LoadStatus{Frames: frames, TotalFrames: total, Done: true, Err: fmt.Errorf("decoding audio: %w", err)}
			return
		}
		c.Append(block)
		frames += int64(len(block) / channels)

		// Progress updates are best-effort; never stall the decode on a
		// slow consumer.
		select {
		case status <- LoadStatus{Frames: frames, TotalFrames: total}:
		default:
		}
	}

	c.Flush()
	status <- LoadStatus{Frames: frames, TotalFrames: total, Done: true}
}
