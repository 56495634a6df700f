// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package vsync

// syntheticModel returns the C3 Synthetic Model for a mode with the given
// nominal period: a trivial model whose slope is exactly the hardware
// cadence and whose intercept is zero. It stands in for a trusted
// regression fit in the FRESH, WARMING and UNTRUSTED states, anchored by the
// caller to the most recent accepted sample (or the arbitrary monotonic
// origin, if none has been seen yet).
func syntheticModel(nominalPeriod Clock) Model {
	return Model{Slope: nominalPeriod, Intercept: 0}
}
