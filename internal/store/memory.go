// Package store holds committed (flushed) samples for one audio channel and
// answers per-column min/max/RMS queries over them.
package store

import (
	"fmt"
	"math"
	"sync"
)

// Memory is an in-memory committed sample store for a single channel.
// Appends and reads may come from different goroutines.
type Memory struct {
	mu      sync.RWMutex
	samples []float32
}

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{}
}

// Append commits samples to the end of the store.
func (m *Memory) Append(samples []float32) {
	m.mu.Lock()
	m.samples = append(m.samples, samples...)
	m.mu.Unlock()
}

// NumSamples returns the committed sample count.
func (m *Memory) NumSamples() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.samples))
}

// ReadAt copies committed samples starting at off into dst and returns the
// number copied, which is short when off is near the end.
func (m *Memory) ReadAt(dst []float32, off int64) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if off < 0 || off >= int64(len(m.samples)) {
		return 0
	}
	return copy(dst, m.samples[off:])
}

// Summarize fills one min/max/RMS triple per column i from the half-open
// sample range where[i]..where[i+1], reading committed samples only. Ranges
// are clamped to the committed length: a zero-width column answers with the
// single sample at its (clamped) left boundary, and a column wholly past
// the data comes back as zeros.
func (m *Memory) Summarize(minv, maxv, rmsv []float32, where []int64) error {
	if len(where) != len(minv)+1 || len(maxv) != len(minv) || len(rmsv) != len(minv) {
		return fmt.Errorf("store: mismatched summary buffers: %d/%d/%d columns, %d boundaries",
			len(minv), len(maxv), len(rmsv), len(where))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	n := int64(len(m.samples))

	for i := range minv {
		lo := clampI64(where[i], 0, n)
		hi := clampI64(where[i+1], 0, n)

		if hi <= lo {
			if lo < n {
				v := m.samples[lo]
				minv[i], maxv[i] = v, v
				rmsv[i] = float32(math.Abs(float64(v)))
			} else {
				minv[i], maxv[i], rmsv[i] = 0, 0, 0
			}
			continue
		}

		s := m.samples[lo:hi]
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
		rmsv[i] = float32(math.Sqrt(sumsq / float64(len(s))))
	}
	return nil
}

func clampI64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
