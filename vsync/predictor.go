// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package vsync

import "sync"

// Predictor is the C4 Predictor Core: the public surface of this package.
// A Predictor owns no thread, does no I/O, and serializes all access
// through a single non-recursive mutex. Every exported method is safe for
// concurrent use.
type Predictor struct {
	mu sync.Mutex

	cfg Config

	modeID ModeID
	mode   DisplayMode

	ring          *sampleRing
	fit           Model
	locked        bool
	renderDivisor int
	vrr           vrrState

	stash map[ModeID]*modeStash

	log logger
}

// NewPredictor returns a Predictor for the given initial DisplayMode,
// configured by opts. Unset options take the defaults in spec: history size
// 20, minimum samples 6, outlier tolerance 25%.
func NewPredictor(mode DisplayMode, opts ...Option) *Predictor {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &Predictor{
		cfg:           cfg,
		modeID:        mode.ModeID,
		mode:          mode,
		ring:          newSampleRing(cfg.HistorySize, mode.NominalPeriod, cfg.OutlierTolerancePercent),
		renderDivisor: 1,
		stash:         make(map[ModeID]*modeStash),
		log:           newLogger(cfg.Logger),
	}
}

// SetActiveMode switches the predictor to mode. If mode.ModeID equals the
// currently active mode, this is a no-op. Otherwise the current mode's
// ring, fit and render-rate divisor are stashed, and either restored (if
// this mode was previously active and stashed) or reset to a fresh WARMING
// state with an empty ring.
func (p *Predictor) SetActiveMode(mode DisplayMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if mode.ModeID == p.modeID {
		return
	}
	p.stash[p.modeID] = &modeStash{
		ring:          p.ring,
		fit:           p.fit,
		locked:        p.locked,
		renderDivisor: p.renderDivisor,
		vrr:           p.vrr,
	}
	p.modeID = mode.ModeID
	p.mode = mode
	if s, ok := p.stash[mode.ModeID]; ok {
		p.ring = s.ring
		p.fit = s.fit
		p.locked = s.locked
		p.renderDivisor = s.renderDivisor
		p.vrr = s.vrr
		p.log.modeRestored(mode.ModeID)
		return
	}
	p.ring = newSampleRing(p.cfg.HistorySize, mode.NominalPeriod, p.cfg.OutlierTolerancePercent)
	p.fit = Model{}
	p.locked = false
	p.renderDivisor = 1
	p.vrr = vrrState{}
	p.log.modeEntered(mode.ModeID, mode.NominalPeriod)
}

// SetRenderRate configures a render-rate divisor: periodNs must be within 1%
// of an integer multiple of the active model's current slope. If it isn't,
// any previously configured divisor is discarded and the hardware cadence
// is used undivided, per the misconfiguration handling in the predictor's
// error-handling design (there are no error returns on this hot path).
func (p *Predictor) SetRenderRate(periodNs Clock) {
	p.mu.Lock()
	defer p.mu.Unlock()
	model, _ := p.currentModel()
	n, ok := renderRateDivisor(periodNs, model.Slope)
	if !ok {
		p.renderDivisor = 1
		p.log.renderRateRejected(periodNs)
		return
	}
	p.renderDivisor = n
}

// AddVsyncTimestamp offers ts to the sample ring and, once enough samples
// are retained, attempts a regression fit. It reports whether ts was
// accepted into the ring; a false return is a signal to the caller that the
// model may need resetting, not necessarily an error in ts itself (a
// too-close duplicate is also rejected without disturbing the ring).
func (p *Predictor) AddVsyncTimestamp(ts Clock) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	accepted, flushed := p.ring.add(ts)
	if flushed {
		p.fit = Model{}
		p.locked = false
		p.log.ringFlushed(p.modeID, ts)
	}
	if accepted && p.ring.size() >= p.cfg.MinSamples {
		res := fitSamples(p.ring.view(), p.mode.NominalPeriod, p.cfg.OutlierTolerancePercent)
		if res.trusted {
			p.fit = res.model
			p.locked = true
		} else {
			p.fit = Model{}
			p.locked = false
			p.log.fitUntrusted(p.modeID, res.dropped)
		}
	}
	return accepted
}

// NeedsMoreSamples reports whether the predictor is relying on the
// synthetic model rather than a trusted regression fit.
func (p *Predictor) NeedsMoreSamples() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.locked
}

// NextAnticipatedVSyncTimeFrom returns the next predicted vsync strictly
// after referenceNs. If the active mode is VRR, the result additionally
// strictly exceeds any outstanding missed-frame floor recorded by
// OnFrameMissed, and, when lastConfirmedPresentNs is supplied while an
// OnFrameBegin commitment is outstanding, strictly exceeds
// lastConfirmedPresentNs plus the mode's minimum frame interval; without an
// outstanding commitment lastConfirmedPresentNs has no effect.
// lastConfirmedPresentNs is variadic to make it optional;
// at most one value is meaningful, and further values are ignored.
//
// A render-rate divisor still applies in VRR mode, but only while no frame
// commitment is outstanding: before the first OnFrameBegin (or after one
// has been invalidated by OnFrameMissed), SetRenderRate's divisor thins the
// free-running hardware grid the same way it does in fixed-cadence mode.
// Once a commitment is active, the compositor's own committed-present and
// missed-floor constraints govern the grid directly off the model's slope,
// and the divisor no longer applies.
func (p *Predictor) NextAnticipatedVSyncTimeFrom(referenceNs Clock, lastConfirmedPresentNs ...Clock) Clock {
	p.mu.Lock()
	defer p.mu.Unlock()
	model, anchor := p.currentModel()
	if p.mode.VRR != nil {
		var lcp *Clock
		if len(lastConfirmedPresentNs) > 0 {
			v := lastConfirmedPresentNs[0]
			lcp = &v
		}
		threshold := p.vrr.threshold(referenceNs, lcp, p.mode.VRR.MinFrameInterval)
		slope := model.Slope
		if !p.vrr.hasCommitted && p.renderDivisor > 1 {
			slope = model.Slope * Clock(p.renderDivisor)
		}
		k := nextOrdinal(anchor, slope, model.Intercept, threshold)
		return anchor + Clock(k)*slope + model.Intercept
	}
	k := nextOrdinal(anchor, model.Slope, model.Intercept, referenceNs)
	k = applyRenderRateDivisor(k, p.renderDivisor)
	return anchor + Clock(k)*model.Slope + model.Intercept
}

// IsVSyncInPhase reports whether ts falls within half a slope of a hardware
// vsync whose ordinal, counted from the active model's anchor, is a
// multiple of dividedPeriodNs/slope. dividedPeriodNs that isn't an integer
// multiple of the slope (within 1%) is not a valid divisor and always
// returns false.
func (p *Predictor) IsVSyncInPhase(ts Clock, dividedPeriodNs Clock) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	model, anchor := p.currentModel()
	if model.Slope <= 0 {
		return false
	}
	n, ok := renderRateDivisor(dividedPeriodNs, model.Slope)
	if !ok {
		return false
	}
	rel := int64(ts - anchor - model.Intercept)
	k := roundDiv(rel, int64(model.Slope))
	residual := rel - k*int64(model.Slope)
	if residual < 0 {
		residual = -residual
	}
	if Clock(residual) > model.Slope/2 {
		return false
	}
	if k < 0 {
		k = -k
	}
	return k%int64(n) == 0
}

// GetVSyncPredictionModel returns the model currently in effect: the
// trusted regression fit if the predictor is LOCKED, or the synthetic
// fallback model otherwise. It always returns a usable model, never a zero
// value.
func (p *Predictor) GetVSyncPredictionModel() Model {
	p.mu.Lock()
	defer p.mu.Unlock()
	model, _ := p.currentModel()
	return model
}

// ResetModel drops the active mode's ring and cached fit, and clears any
// pending VRR commitment. The synthetic model immediately takes over,
// reporting the active mode's nominal period with zero intercept.
func (p *Predictor) ResetModel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ring.clear()
	p.fit = Model{}
	p.locked = false
	p.vrr = vrrState{}
	p.log.modelReset(p.modeID)
}

// OnFrameBegin records that the compositor has committed to presenting at
// expectedPresentNs, having started the commit at committedAtNs. It only
// has an effect on VRR modes.
func (p *Predictor) OnFrameBegin(expectedPresentNs, committedAtNs Clock) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vrr.onFrameBegin(expectedPresentNs, committedAtNs)
}

// OnFrameMissed records that the present expected at missedPresentNs did
// not happen, invalidating it as a committed anchor and requiring the next
// prediction to strictly exceed it.
func (p *Predictor) OnFrameMissed(missedPresentNs Clock) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.vrr.onFrameMissed(missedPresentNs)
}

// Diagnostics dumps the ring's contents and the predictor's state-machine
// state, for tooling rather than for prediction itself.
type Diagnostics struct {
	State   string
	Samples []Clock
	Model   Model
}

// Diagnostics returns a snapshot of the predictor's internal state.
func (p *Predictor) Diagnostics() Diagnostics {
	p.mu.Lock()
	defer p.mu.Unlock()
	model, _ := p.currentModel()
	state := "warming"
	switch {
	case p.ring.size() == 0:
		state = "fresh"
	case p.locked:
		state = "locked"
	case p.ring.size() >= p.cfg.MinSamples:
		state = "untrusted"
	}
	samples := make([]Clock, p.ring.size())
	copy(samples, p.ring.view())
	return Diagnostics{State: state, Samples: samples, Model: model}
}

// currentModel returns the model currently in effect along with its
// anchor: the oldest retained sample for a trusted regression fit, or the
// most recent accepted sample (or the arbitrary monotonic origin, if none)
// for the synthetic fallback.
func (p *Predictor) currentModel() (Model, Clock) {
	if p.locked {
		anchor, _ := p.ring.oldest()
		return p.fit, anchor
	}
	anchor, ok := p.ring.newest()
	if !ok {
		anchor = 0
	}
	return syntheticModel(p.mode.NominalPeriod), anchor
}
