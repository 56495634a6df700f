// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

// Package tracegen synthesizes vsync timestamp traces for exercising
// vsync.Predictor without real display hardware: cmd/vsyncsim drives a
// Predictor against a generated trace by default, and tests wanting a
// randomized but reproducible trace use it directly.
package tracegen

import (
	"math/rand"

	"github.com/heistp/vsyncpredictor/vsync"
)

// Options configures a synthetic vsync trace.
type Options struct {
	NominalPeriod     vsync.Clock
	JitterFraction    float64 // fraction of NominalPeriod used as jitter bound
	OutlierEvery      int     // inject one oversized gap every N samples; 0 disables
	OutlierMultiplier float64
	IdleGapEvery      int // inject one idle-sleep-sized gap every N samples; 0 disables
	IdleGapMultiplier float64
	Seed              int64
}

// DefaultOptions returns options for a mildly jittery trace with no
// outliers or idle gaps, at the given nominal period.
func DefaultOptions(nominalPeriod vsync.Clock) Options {
	return Options{
		NominalPeriod:     nominalPeriod,
		JitterFraction:    0.02,
		OutlierMultiplier: 3,
		IdleGapMultiplier: 5,
		Seed:              1,
	}
}

// Generate returns n synthetic vsync timestamps starting after t0, spaced
// by NominalPeriod plus jitter, with optional periodic outliers and idle
// gaps injected per opts.
func Generate(n int, t0 vsync.Clock, opts Options) []vsync.Clock {
	rng := rand.New(rand.NewSource(opts.Seed))
	bound := int64(float64(opts.NominalPeriod) * opts.JitterFraction)
	jg := newJitterGenerator(rng, bound)

	ts := make([]vsync.Clock, 0, n)
	now := t0
	for i := 0; i < n; i++ {
		delta := opts.NominalPeriod + vsync.Clock(jg.next())
		switch {
		case opts.OutlierEvery > 0 && i > 0 && i%opts.OutlierEvery == 0:
			delta = vsync.Clock(float64(opts.NominalPeriod) * opts.OutlierMultiplier)
		case opts.IdleGapEvery > 0 && i > 0 && i%opts.IdleGapEvery == 0:
			delta = vsync.Clock(float64(opts.NominalPeriod) * opts.IdleGapMultiplier)
		}
		if delta < 1 {
			delta = 1
		}
		now += delta
		ts = append(ts, now)
	}
	return ts
}
