// Package wave maintains per-pixel min/max/RMS summaries of an audio clip
// for screen rendering. A summary is cached per channel and, when the view
// scrolls at an unchanged zoom, the overlapping columns are copied instead
// of recomputed; only the newly exposed columns are summarized from the
// clip's committed store or its not-yet-committed append buffer.
package wave

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Summarizer produces per-column summaries from committed samples.
// Implementations fill one summary triple per column i from the half-open
// sample range where[i]..where[i+1].
type Summarizer interface {
	NumSamples() int64
	Summarize(minv, maxv, rmsv []float32, where []int64) error
}

// Pending is a consistent snapshot of a clip's append buffer: samples past
// the committed length that have not been flushed yet. Length and contents
// are captured under one lock hold by the provider, so a torn pair is never
// observed here.
type Pending struct {
	Format SampleFormat
	I16    []int16
	F32    []float32
}

// Len returns the number of pending samples.
func (p Pending) Len() int64 {
	if p.Format == FormatFloat32 {
		return int64(len(p.F32))
	}
	return int64(len(p.I16))
}

// Clip is the view of the owning clip that the cache needs.
type Clip interface {
	Rate() int
	Channels() int
	TrimLeft() float64
	Store(ch int) Summarizer
	Pending(ch int) Pending
}

// entry is one channel's cached summary: len columns at zoom pps, with
// column 0 at time start. A zero-length entry is the empty state and never
// satisfies a reuse match. Entries are not mutated after installation;
// replacing one leaves its arrays alive for any View still holding them.
type entry struct {
	gen   int64
	len   int
	start float64
	pps   float64
	rate  int
	where []int64
	min   []float32
	max   []float32
	rms   []float32
}

func newEntry(n int, pps float64, rate int, t0 float64, gen int64) *entry {
	return &entry{
		gen:   gen,
		len:   n,
		start: t0,
		pps:   pps,
		rate:  rate,
		where: make([]int64, n+1),
		min:   make([]float32, n),
		max:   make([]float32, n),
		rms:   make([]float32, n),
	}
}

func (e *entry) view(width int) View {
	return View{
		Min:   e.min[:width],
		Max:   e.max[:width],
		RMS:   e.rms[:width],
		Where: e.where[:width+1],
	}
}

// View is a read-only window onto a summary entry. Index i holds the
// min/max/RMS of the sample range Where[i]..Where[i+1]. The backing storage
// stays valid after the cache moves on to a new entry; callers must not
// write through it.
type View struct {
	Min   []float32
	Max   []float32
	RMS   []float32
	Where []int64
}

// SummaryCache serves display requests for one clip, one cached entry per
// channel. Display requests are expected to be serialized by the caller
// (one in-flight request per clip); only the generation counter may be
// bumped concurrently by whoever mutates the clip.
type SummaryCache struct {
	clip    Clip
	entries []*entry
	gen     atomic.Int64
}

// NewSummaryCache creates a cache with an empty entry per channel.
func NewSummaryCache(c Clip) *SummaryCache {
	entries := make([]*entry, c.Channels())
	for i := range entries {
		entries[i] = &entry{}
	}
	return &SummaryCache{clip: c, entries: entries}
}

// MarkChanged records a content mutation. Existing entries stay in place
// but fail the generation check on their next use.
func (sc *SummaryCache) MarkChanged() {
	sc.gen.Add(1)
}

// Invalidate drops every channel's entry. Used when cached sample positions
// are no longer meaningful, such as after a destructive edit.
func (sc *SummaryCache) Invalidate() {
	for i := range sc.entries {
		sc.entries[i] = &entry{}
	}
}

// Display returns width summary columns for channel ch with column 0 at
// time t0 and zoom pps (pixels per second). Overlapping columns of the
// previous request are reused when the zoom matches within tolerance; the
// rest are recomputed. On failure the previously cached entry remains
// installed and served.
func (sc *SummaryCache) Display(ch, width int, t0, pps float64) (View, error) {
	if width <= 0 || pps <= 0 {
		return View{}, nil
	}

	t0 += sc.clip.TrimLeft()
	rate := sc.clip.Rate()
	gen := sc.gen.Load()
	cur := sc.entries[ch]

	tstep := 1.0 / pps
	samplesPerPixel := float64(rate) * tstep

	// Tolerant zoom comparison: the timing drift accumulated across the
	// whole width must stay under one sample period.
	match := cur.len > 0 &&
		cur.gen == gen &&
		math.Abs(tstep-1.0/cur.pps)*float64(width) < 1.0/float64(rate)

	if match && cur.start == t0 && cur.len >= width {
		// Satisfied entirely from the cache.
		return cur.view(width), nil
	}

	old := cur
	oldX0 := 0
	correction := 0.0
	copyBegin, copyEnd := 0, 0
	if match {
		oldX0, correction = findCorrection(old.where, old.len, width, t0, rate, samplesPerPixel)
		copyBegin = clampInt(-oldX0, 0, width)
		copyEnd = clampInt(old.len-oldX0, 0, width)
	}
	if copyEnd <= copyBegin {
		old = nil
	}

	ne := newEntry(width, pps, rate, t0, gen)
	fillWhere(ne.where, width, correction, t0, rate, samplesPerPixel)

	// The column range we must summarize from the clip. Reuse is only
	// applied when the copied window touches an edge of the new grid;
	// a window in the middle would split the remainder in two, and the
	// store expects one interval.
	p0, p1 := 0, width
	if old != nil {
		if copyBegin == 0 {
			p0 = copyEnd
		}
		if copyEnd >= width {
			p1 = copyBegin
		}

		src := copyBegin + oldX0
		n := copyEnd - copyBegin
		copy(ne.min[copyBegin:copyEnd], old.min[src:src+n])
		copy(ne.max[copyBegin:copyEnd], old.max[src:src+n])
		copy(ne.rms[copyBegin:copyEnd], old.rms[src:src+n])
	}

	if p1 > p0 {
		if err := sc.summarize(ch, ne.min, ne.max, ne.rms, ne.where, p0, p1); err != nil {
			return View{}, err
		}
	}

	sc.entries[ch] = ne
	return ne.view(width), nil
}

// DisplayInto fills caller-owned buffers instead of cache storage. The
// request is always recomputed in full: the destination cannot alias the
// cache's arrays, and no entry is installed or consulted.
func (sc *SummaryCache) DisplayInto(ch int, minv, maxv, rmsv []float32, where []int64, t0, pps float64) error {
	width := len(minv)
	if len(maxv) != width || len(rmsv) != width || len(where) != width+1 {
		return fmt.Errorf("wave: mismatched display buffers: %d/%d/%d columns, %d boundaries",
			len(minv), len(maxv), len(rmsv), len(where))
	}
	if width == 0 || pps <= 0 {
		return nil
	}

	t0 += sc.clip.TrimLeft()
	rate := sc.clip.Rate()
	samplesPerPixel := float64(rate) / pps

	fillWhere(where, width, 0, t0, rate, samplesPerPixel)
	return sc.summarize(ch, minv, maxv, rmsv, where, 0, width)
}

// summarize computes columns [p0, p1). Columns lying wholly past the
// committed sample count are filled from the append buffer first; whatever
// remains is one contiguous interval delegated to the store.
func (sc *SummaryCache) summarize(ch int, minv, maxv, rmsv []float32, where []int64, p0, p1 int) error {
	st := sc.clip.Store(ch)
	numSamples := st.NumSamples()

	a := p0
	for a < p1 && where[a] < numSamples {
		a++
	}
	if a < p1 {
		if summarizePending(minv, maxv, rmsv, where, a, p1, numSamples, sc.clip.Pending(ch)) {
			p1 = a
		}
	}

	if p1 > p0 {
		if err := st.Summarize(minv[p0:p1], maxv[p0:p1], rmsv[p0:p1], where[p0:p1+1]); err != nil {
			return fmt.Errorf("wave: summarize columns [%d,%d): %w", p0, p1, err)
		}
	}
	return nil
}

// summarizePending fills columns [a, p1), whose sample ranges start at or
// past the committed length, from the pending snapshot. It stops at the
// first column it cannot resolve, which keeps the store's remaining range
// contiguous, and reports whether it filled anything.
func summarizePending(minv, maxv, rmsv []float32, where []int64, a, p1 int, numSamples int64, pending Pending) bool {
	pendLen := pending.Len()
	updated := false
	var tmp []float32

	for i := a; i < p1; i++ {
		left := where[i] - numSamples
		right := where[i+1] - numSamples
		if right > pendLen {
			right = pendLen
		}
		if right <= left {
			break
		}

		n := int(right - left)
		var s []float32
		if pending.Format == FormatFloat32 {
			s = pending.F32[left:right]
		} else {
			if cap(tmp) < n {
				tmp = make([]float32, n)
			}
			tmp = tmp[:n]
			Int16ToFloat32(tmp, pending.I16[left:right])
			s = tmp
		}

		mn, mx := s[0], s[0]
		sumsq := float64(s[0]) * float64(s[0])
		for _, v := range s[1:] {
			if v < mn {
				mn = v
			}
			if v > mx {
				mx = v
			}
			sumsq += float64(v) * float64(v)
		}
		minv[i] = mn
		maxv[i] = mx
		rmsv[i] = float32(math.Sqrt(sumsq / float64(n)))
		updated = true
	}
	return updated
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
