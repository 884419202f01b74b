// Package clip owns the samples of one audio clip: per-channel committed
// stores plus an append buffer of newly written samples that have not been
// flushed yet. The append buffer keeps the decoder's int16 format; samples
// are converted to float32 when committed.
package clip

import (
	"sync"
	"time"

	"github.com/olivier-w/wavescope/internal/store"
	"github.com/olivier-w/wavescope/internal/wave"
)

// DefaultFlushThreshold is the pending sample count per channel at which an
// append triggers a commit to the store.
const DefaultFlushThreshold = 32768

// Clip holds one audio clip's samples. Appends may come from a background
// loader while a display or playback path reads; the append buffer is
// guarded so a reader always sees a consistent length/content pair.
type Clip struct {
	rate     int
	channels int
	flushAt  int
	onChange func()

	mu      sync.Mutex
	pending [][]int16
	trim    float64

	stores []*store.Memory
}

// New creates an empty clip with the given sample rate and channel count.
func New(rate, channels int) *Clip {
	if channels < 1 {
		channels = 1
	}
	c := &Clip{
		rate:     rate,
		channels: channels,
		flushAt:  DefaultFlushThreshold,
		pending:  make([][]int16, channels),
		stores:   make([]*store.Memory, channels),
	}
	for i := range c.stores {
		c.stores[i] = store.NewMemory()
	}
	return c
}

// SetOnChange registers the callback fired after every content mutation.
// Must be called before the clip is shared with a writer.
func (c *Clip) SetOnChange(fn func()) {
	c.onChange = fn
}

func (c *Clip) Rate() int     { return c.rate }
func (c *Clip) Channels() int { return c.channels }

// TrimLeft returns the leading trim in seconds, added to every display
// request's time origin.
func (c *Clip) TrimLeft() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trim
}

// SetTrimLeft adjusts the leading trim. Sample positions stay meaningful,
// so cached summaries survive a trim change.
func (c *Clip) SetTrimLeft(trim float64) {
	if trim < 0 {
		trim = 0
	}
	c.mu.Lock()
	c.trim = trim
	c.mu.Unlock()
}

// Store returns the committed-sample summarizer for a channel.
func (c *Clip) Store(ch int) wave.Summarizer {
	return c.stores[ch]
}

// Committed returns a channel's committed sample store.
func (c *Clip) Committed(ch int) *store.Memory {
	return c.stores[ch]
}

// Pending returns a consistent snapshot of a channel's append buffer.
func (c *Clip) Pending(ch int) wave.Pending {
	c.mu.Lock()
	buf := c.pending[ch]
	cp := make([]int16, len(buf))
	copy(cp, buf)
	c.mu.Unlock()
	return wave.Pending{Format: wave.FormatInt16, I16: cp}
}

// PendingLen returns the per-channel pending sample count.
func (c *Clip) PendingLen() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.pending[0]))
}

// Append adds interleaved int16 frames, splitting them per channel. When
// the pending count crosses the flush threshold the buffered samples are
// committed in the same lock hold.
func (c *Clip) Append(frames []int16) {
	if len(frames) < c.channels {
		return
	}
	c.mu.Lock()
	n := len(frames) / c.channels
	for ch := 0; ch < c.channels; ch++ {
		buf := c.pending[ch]
		for i := 0; i < n; i++ {
			buf = append(buf, frames[i*c.channels+ch])
		}
		c.pending[ch] = buf
	}
	if len(c.pending[0]) >= c.flushAt {
		c.commitLocked()
	}
	c.mu.Unlock()
	c.notify()
}

// Flush commits all pending samples to the stores.
func (c *Clip) Flush() {
	c.mu.Lock()
	c.commitLocked()
	c.mu.Unlock()
	c.notify()
}

func (c *Clip) commitLocked() {
	for ch := range c.pending {
		buf := c.pending[ch]
		if len(buf) == 0 {
			continue
		}
		f := make([]float32, len(buf))
		wave.Int16ToFloat32(f, buf)
		c.stores[ch].Append(f)
		c.pending[ch] = buf[:0]
	}
}

// NumSamples returns the committed per-channel sample count.
func (c *Clip) NumSamples() int64 {
	return c.stores[0].NumSamples()
}

// TotalSamples returns committed plus pending samples per channel.
func (c *Clip) TotalSamples() int64 {
	return c.NumSamples() + c.PendingLen()
}

// Duration returns the clip length including pending samples.
func (c *Clip) Duration() time.Duration {
	if c.rate <= 0 {
		return 0
	}
	secs := float64(c.TotalSamples()) / float64(c.rate)
	return time.Duration(secs * float64(time.Second))
}

func (c *Clip) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
