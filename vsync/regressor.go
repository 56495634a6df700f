// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package vsync

// fitResult is the outcome of attempting a regression fit over a sample
// window.
type fitResult struct {
	model    Model
	trusted  bool
	dropped  int // number of samples excluded as outliers on the final pass
}

// fitSamples fits a line through samples (oldest first) against the oldest
// sample as anchor, then performs one outlier-rejection pass: any sample
// whose residual against the first fit exceeds tolerance*nominalPeriod is
// dropped and the line is refit over the remainder. If the refit's slope
// still falls outside [nominalPeriod*(1-tolerance), nominalPeriod*(1+tolerance)],
// the fit is reported untrusted and the caller should fall back to the
// synthetic model.
//
// Ordinals are derived from elapsed time, not insertion order: a sample's
// ordinal is round((sample-anchor)/nominalPeriod), so a run of missed
// vsyncs leaves a gap in x rather than being treated as back-to-back. A
// trace that's merely discontinuous (a few dropped frames) still regresses
// correctly; only insertion-index ordinals would get that wrong.
//
// The anchor is fixed at samples[0] for both the initial fit and any
// refit, even if samples[0] itself is dropped as an outlier: the caller
// (Predictor.currentModel) always anchors a locked prediction at the
// ring's oldest retained sample, so the intercept this returns has to stay
// relative to that same point or every prediction would be off by however
// far the refit's anchor drifted.
//
// All sums are accumulated in int64 after subtracting the anchor timestamp
// from every sample (the "bias subtraction" of spec-speak): since every
// accepted gap is at most ringGapFactor nominal periods, ordinals are
// bounded by the ring's capacity times ringGapFactor and bias-subtracted
// timestamps by that many nominal periods, so with the default capacity and
// display-rate periods the int64 sums stay in range even though raw
// monotonic timestamps themselves can be enormous.
func fitSamples(samples []Clock, nominalPeriod Clock, tolerancePercent int) fitResult {
	n := len(samples)
	if n < 2 {
		return fitResult{trusted: false}
	}
	tol := float64(tolerancePercent) / 100

	anchor := samples[0]
	slope, intercept := ols(samples, anchor, nominalPeriod)

	lo := Clock(float64(nominalPeriod) * (1 - tol))
	hi := Clock(float64(nominalPeriod) * (1 + tol))

	kept := samples
	dropped := 0
	tolNs := Clock(float64(nominalPeriod) * tol)
	var outliers []int
	for i, s := range samples {
		x := ordinal(s, anchor, nominalPeriod)
		predicted := anchor + Clock(x)*slope + intercept
		if (s - predicted).Abs() > tolNs {
			outliers = append(outliers, i)
		}
	}
	if len(outliers) > 0 {
		kept = make([]Clock, 0, n-len(outliers))
		oi := 0
		for i, s := range samples {
			if oi < len(outliers) && outliers[oi] == i {
				oi++
				dropped++
				continue
			}
			kept = append(kept, s)
		}
		if len(kept) < 2 {
			return fitResult{trusted: false, dropped: dropped}
		}
		slope, intercept = ols(kept, anchor, nominalPeriod)
	}

	trusted := slope >= lo && slope <= hi
	return fitResult{
		model:   Model{Slope: slope, Intercept: intercept},
		trusted: trusted,
		dropped: dropped,
	}
}

// ordinal returns the timestamp-derived ordinal of s relative to anchor: the
// nearest whole number of nominalPeriod-sized steps between them.
func ordinal(s, anchor, nominalPeriod Clock) int64 {
	return roundDiv(int64(s-anchor), int64(nominalPeriod))
}

// ols fits y = x*slope + intercept over samples, with x_i the timestamp-
// derived ordinal of samples[i] and y_i = samples[i] - anchor, by ordinary
// least squares.
func ols(samples []Clock, anchor, nominalPeriod Clock) (slope, intercept Clock) {
	n := int64(len(samples))
	var sumX, sumY, sumXY, sumX2 int64
	for _, s := range samples {
		x := ordinal(s, anchor, nominalPeriod)
		y := int64(s - anchor)
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}
	den := n*sumX2 - sumX*sumX
	if den == 0 {
		// All ordinals identical (n==1 handled by caller) or a degenerate
		// spread; fall back to the mean gap between consecutive samples.
		if n > 1 && sumX != 0 {
			slope = Clock(roundDiv(sumY, sumX))
		}
		return
	}
	slopeNum := n*sumXY - sumX*sumY
	interceptNum := sumY*sumX2 - sumX*sumXY
	slope = Clock(roundDiv(slopeNum, den))
	intercept = Clock(roundDiv(interceptNum, den))
	return
}
