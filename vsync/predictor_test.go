// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package vsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColdStartSynthetic(t *testing.T) {
	p := NewPredictor(NewDisplayMode(1, 1000))
	assert.Equal(t, Clock(1000), p.NextAnticipatedVSyncTimeFrom(0))
	assert.Equal(t, Clock(1000), p.NextAnticipatedVSyncTimeFrom(500))
	assert.Equal(t, Clock(2000), p.NextAnticipatedVSyncTimeFrom(1500))
}

func TestWarmUpThenLock(t *testing.T) {
	p := NewPredictor(NewDisplayMode(1, 1000))
	for i, ts := range []Clock{1000, 2000, 3000, 4000, 5000, 6000} {
		require.True(t, p.AddVsyncTimestamp(ts))
		if i < 5 {
			assert.True(t, p.NeedsMoreSamples())
		} else {
			assert.False(t, p.NeedsMoreSamples())
		}
	}
	m := p.GetVSyncPredictionModel()
	assert.Equal(t, Clock(1000), m.Slope)
	assert.Equal(t, Clock(0), m.Intercept)
	assert.Equal(t, Clock(7000), p.NextAnticipatedVSyncTimeFrom(6500))
}

func Test60HzHighVarianceTrace(t *testing.T) {
	p := NewPredictor(NewDisplayMode(1, 16_600_000))
	for _, ts := range []Clock{
		15492949, 32325658, 49534984, 67496129, 84652891,
		100332564, 117737004, 132125931, 149291099, 165199602,
	} {
		p.AddVsyncTimestamp(ts)
	}
	m := p.GetVSyncPredictionModel()
	assert.InDelta(t, 16_639_242, int64(m.Slope), 100)
	assert.InDelta(t, 1_049_341, int64(m.Intercept), 100)
}

func TestDuplicateDefenseRealTrace(t *testing.T) {
	// History size 10 matches the real tracker fixture this trace and its
	// expected slope/intercept were captured from; a wider window averages
	// over samples the original test never saw together.
	p := NewPredictor(NewDisplayMode(1, 16_666_666), WithHistorySize(10))
	simulatedVsyncs := []Clock{
		198353408177, 198370074844, 198371400000, 198374274000, 198390941000, 198407565000,
		198540887994, 198607538588, 198624218276, 198657655939, 198674224176, 198690880955,
		198724204319, 198740988133, 198758166681, 198790869196, 198824205052, 198840871678,
		198857715631, 198890885797, 198924199640, 198940873834, 198974204401,
	}
	for _, ts := range simulatedVsyncs {
		p.AddVsyncTimestamp(ts)
	}
	m := p.GetVSyncPredictionModel()
	assert.InDelta(t, 16_644_742, int64(m.Slope), 100)
	assert.InDelta(t, 125_626, int64(m.Intercept), 100)
}

func TestRenderRateDivisorScenario(t *testing.T) {
	p := NewPredictor(NewDisplayMode(1, 1000))
	for _, ts := range []Clock{1000, 2000, 3000, 4000, 5000, 6000} {
		p.AddVsyncTimestamp(ts)
	}
	p.SetRenderRate(3000)
	assert.Equal(t, Clock(1000), p.NextAnticipatedVSyncTimeFrom(0))
	assert.Equal(t, Clock(4000), p.NextAnticipatedVSyncTimeFrom(1100))
	assert.Equal(t, Clock(7000), p.NextAnticipatedVSyncTimeFrom(4100))
}

func TestVRRGridScenario(t *testing.T) {
	mode := NewVRRDisplayMode(1, 500, 1000)
	p := NewPredictor(mode)
	p.SetRenderRate(1000)
	p.AddVsyncTimestamp(0)

	assert.Equal(t, Clock(1000), p.NextAnticipatedVSyncTimeFrom(700))
	assert.Equal(t, Clock(2000), p.NextAnticipatedVSyncTimeFrom(1000))

	p.OnFrameBegin(2000, 1500)
	assert.Equal(t, Clock(3500), p.NextAnticipatedVSyncTimeFrom(2000, 2000))

	p.OnFrameMissed(4500)
	assert.Equal(t, Clock(5000), p.NextAnticipatedVSyncTimeFrom(4500, 4500))
}

func TestMonotonicPredictions(t *testing.T) {
	p := NewPredictor(NewDisplayMode(1, 1000))
	for _, ts := range []Clock{1000, 2000, 3000, 4000, 5000, 6000} {
		p.AddVsyncTimestamp(ts)
	}
	var prev Clock = -1
	for t0 := Clock(0); t0 < 20000; t0 += 137 {
		v := p.NextAnticipatedVSyncTimeFrom(t0)
		assert.GreaterOrEqual(t, int64(v), int64(t0))
		assert.GreaterOrEqual(t, int64(v), int64(prev))
		prev = v
	}
}

func TestResetIdempotence(t *testing.T) {
	p := NewPredictor(NewDisplayMode(1, 1000))
	for _, ts := range []Clock{1000, 2000, 3000, 4000, 5000, 6000} {
		p.AddVsyncTimestamp(ts)
	}
	p.ResetModel()
	d1 := p.Diagnostics()
	p.ResetModel()
	d2 := p.Diagnostics()
	assert.Equal(t, d1, d2)
}

func TestModeRoundTrip(t *testing.T) {
	modeA := NewDisplayMode(1, 1000)
	modeB := NewDisplayMode(2, 2000)
	p := NewPredictor(modeA)
	for _, ts := range []Clock{1000, 2000, 3000, 4000, 5000, 6000} {
		p.AddVsyncTimestamp(ts)
	}
	modelBefore := p.GetVSyncPredictionModel()

	p.SetActiveMode(modeB)
	assert.True(t, p.NeedsMoreSamples())

	p.SetActiveMode(modeA)
	assert.False(t, p.NeedsMoreSamples())
	assert.Equal(t, modelBefore, p.GetVSyncPredictionModel())
}

func TestSetActiveModeNoOpOnSameID(t *testing.T) {
	mode := NewDisplayMode(1, 1000)
	p := NewPredictor(mode)
	p.AddVsyncTimestamp(1000)
	before := p.Diagnostics()
	p.SetActiveMode(mode)
	after := p.Diagnostics()
	assert.Equal(t, before, after)
}

func TestIsVSyncInPhaseForDivisors(t *testing.T) {
	p := NewPredictor(NewDisplayMode(1, 1000))
	for _, ts := range []Clock{1000, 2000, 3000, 4000, 5000, 6000} {
		p.AddVsyncTimestamp(ts)
	}
	assert.True(t, p.IsVSyncInPhase(5000, 2000))
	assert.False(t, p.IsVSyncInPhase(4000, 700))
}
