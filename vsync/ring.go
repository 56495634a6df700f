// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package vsync

// sampleRing is the bounded FIFO history of accepted vsync timestamps (C1).
// It never holds more than capacity samples; the oldest is evicted first
// when a new one is accepted past capacity. It also filters obviously bad
// input before it ever reaches the regressor: near-duplicates, samples that
// arrive implausibly close together for the mode's nominal cadence, and
// samples separated by a gap so large it can only mean a display sleep or
// idle period.
//
// The gap classification is relative to the active mode's nominal period,
// not to the ring's own fitted slope, so it keeps working even when the
// ring is empty or not yet trusted.
type sampleRing struct {
	samples   []Clock
	capacity  int
	nominal   Clock
	tolerance float64 // e.g. 0.25 for 25%
	gapFactor float64 // multiple of nominal period treated as a sleep/idle gap
	epsilon   Clock   // minimum distinguishable gap, guards against duplicates
}

const (
	// ringGapFactor is deliberately well above the largest missed-vsync
	// run a real trace exhibits (the b/190331974 trace has a gap of almost
	// 8x the nominal period from a compositor stall) so an ordinary run of
	// missed frames never triggers a flush; timestamp-derived ordinals in
	// the regressor absorb those gaps instead. Only a gap consistent with
	// a display sleep/idle period should trip it.
	ringGapFactor = 32.0
	ringEpsilon   = Clock(1000) // 1us
)

// newSampleRing returns an empty ring configured for the given mode.
func newSampleRing(capacity int, nominalPeriod Clock, tolerancePercent int) *sampleRing {
	return &sampleRing{
		samples:   make([]Clock, 0, capacity),
		capacity:  capacity,
		nominal:   nominalPeriod,
		tolerance: float64(tolerancePercent) / 100,
		gapFactor: ringGapFactor,
		epsilon:   ringEpsilon,
	}
}

// add attempts to accept ts into the ring. It reports whether ts was
// accepted, and whether accepting it (or rejecting it as a too-large gap)
// caused the ring to be flushed and re-seeded with ts as its sole member.
func (r *sampleRing) add(ts Clock) (accepted bool, flushed bool) {
	if len(r.samples) == 0 {
		r.samples = append(r.samples, ts)
		return true, false
	}
	newest := r.samples[len(r.samples)-1]
	delta := ts - newest
	if delta <= r.epsilon {
		return false, false
	}
	gapHigh := Clock(float64(r.nominal) * r.gapFactor)
	if delta > gapHigh {
		r.samples = r.samples[:0]
		r.samples = append(r.samples, ts)
		return false, true
	}
	gapLow := Clock(float64(r.nominal) * (1 - r.tolerance))
	if delta < gapLow {
		return false, false
	}
	r.samples = append(r.samples, ts)
	if len(r.samples) > r.capacity {
		r.samples = r.samples[1:]
	}
	return true, false
}

// clear empties the ring.
func (r *sampleRing) clear() {
	r.samples = r.samples[:0]
}

// size returns the number of samples currently retained.
func (r *sampleRing) size() int {
	return len(r.samples)
}

// view returns the retained samples, oldest first. The caller must not
// mutate the returned slice.
func (r *sampleRing) view() []Clock {
	return r.samples
}

// newest returns the most recently accepted sample, if any.
func (r *sampleRing) newest() (Clock, bool) {
	if len(r.samples) == 0 {
		return 0, false
	}
	return r.samples[len(r.samples)-1], true
}

// oldest returns the oldest retained sample, if any.
func (r *sampleRing) oldest() (Clock, bool) {
	if len(r.samples) == 0 {
		return 0, false
	}
	return r.samples[0], true
}
