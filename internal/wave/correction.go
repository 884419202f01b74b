package wave

import "math"

// findCorrection maps pixel 0 of a freshly requested grid onto an existing
// entry's grid. It returns the integer column of the old grid that the new
// origin lands on (possibly out of bounds) and a residual correction in
// sample units, clamped to one column's worth of samples. Feeding the
// correction back into fillWhere keeps boundary values phase-locked to the
// old grid instead of drifting as caches are copied from copies.
//
// When the two grids are disjoint, or the old grid is too short to define a
// phase, the offset is reported as oldLen with zero correction.
func findCorrection(oldWhere []int64, oldLen, newLen int, t0 float64, rate int, samplesPerPixel float64) (oldX0 int, correction float64) {
	// Recover the old grid's fractional origin from its second boundary;
	// the first one may have been clamped to zero.
	oldWhere0 := float64(oldWhere[1]) - samplesPerPixel
	oldWhereLast := oldWhere0 + float64(oldLen)*samplesPerPixel
	denom := oldWhereLast - oldWhere0

	// The sample position pixel 0 would get with no correction.
	guessWhere0 := t0 * float64(rate)

	if oldWhereLast <= guessWhere0 ||
		guessWhere0+float64(newLen)*samplesPerPixel <= oldWhere0 ||
		denom < 0.5 {
		return oldLen, 0
	}

	oldX0 = int(math.Floor(0.5 + float64(oldLen)*(guessWhere0-oldWhere0)/denom))
	where0 := oldWhere0 + float64(oldX0)*samplesPerPixel
	correction = where0 - guessWhere0
	if correction < -samplesPerPixel {
		correction = -samplesPerPixel
	}
	if correction > samplesPerPixel {
		correction = samplesPerPixel
	}
	return oldX0, correction
}

// fillWhere populates n+1 column boundaries in sample units for a grid
// starting at time t0. Boundaries are clamped to be non-negative, which
// together with the monotone floor keeps the sequence non-decreasing; equal
// neighbours denote a zero-width column.
func fillWhere(where []int64, n int, correction, t0 float64, rate int, samplesPerPixel float64) {
	w0 := 0.5 + correction + t0*float64(rate)
	for x := 0; x <= n; x++ {
		w := math.Floor(w0 + float64(x)*samplesPerPixel)
		if w < 0 {
			w = 0
		}
		where[x] = int64(w)
	}
}
