// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package tracegen

import "math/rand"

// jitterGenerator produces a smoothed jitter magnitude to add to an
// otherwise-nominal inter-frame delta. It mirrors the exponential-smoothing
// technique of a jitter estimator run against a live sample stream, but in
// reverse: rather than estimating jitter from observed gaps, it smooths a
// random walk of raw jitter samples toward a running value, so consecutive
// synthesized deltas drift gradually instead of jumping independently.
type jitterGenerator struct {
	rng    *rand.Rand
	bound  int64
	jitter int64
}

func newJitterGenerator(rng *rand.Rand, bound int64) *jitterGenerator {
	if bound < 0 {
		bound = 0
	}
	return &jitterGenerator{rng: rng, bound: bound}
}

// next returns the next jitter value, in the same units as bound.
func (j *jitterGenerator) next() int64 {
	if j.bound == 0 {
		return 0
	}
	raw := j.rng.Int63n(2*j.bound+1) - j.bound
	j.jitter = (j.jitter + raw) / 2
	return j.jitter
}
