// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package vsync

import (
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps a Predictor and records Prometheus counters and histograms
// around its operations. It is entirely optional: a Predictor used without
// a Metrics wrapper behaves identically, just unobserved. Metrics registers
// itself into reg, so callers embedding this library keep control over
// their own registry rather than being forced onto the global default one.
type Metrics struct {
	p *Predictor

	samplesAccepted prometheus.Counter
	samplesRejected prometheus.Counter
	ringFlushes     prometheus.Counter
	transitions     *prometheus.CounterVec
	leadTime        prometheus.Histogram
}

// NewMetrics returns a Metrics wrapping p, with all instruments registered
// into reg.
func NewMetrics(p *Predictor, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		p: p,
		samplesAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vsync",
			Name:      "samples_accepted_total",
			Help:      "Vsync timestamps accepted into the sample ring.",
		}),
		samplesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vsync",
			Name:      "samples_rejected_total",
			Help:      "Vsync timestamps rejected by the sample ring.",
		}),
		ringFlushes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vsync",
			Name:      "ring_flushes_total",
			Help:      "Sample ring flushes caused by an implausibly large gap.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "vsync",
			Name:      "state_transitions_total",
			Help:      "State-machine transitions, labeled by target state.",
		}, []string{"state"}),
		leadTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "vsync",
			Name:      "predicted_lead_time_seconds",
			Help:      "Predicted vsync time minus reference time, in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
	}
	reg.MustRegister(m.samplesAccepted, m.samplesRejected, m.ringFlushes, m.transitions, m.leadTime)
	return m
}

// AddVsyncTimestamp wraps Predictor.AddVsyncTimestamp, recording acceptance,
// ring flushes and the resulting state-machine state.
func (m *Metrics) AddVsyncTimestamp(ts Clock) bool {
	before := m.p.Diagnostics()
	accepted := m.p.AddVsyncTimestamp(ts)
	after := m.p.Diagnostics()
	if accepted {
		m.samplesAccepted.Inc()
	} else {
		m.samplesRejected.Inc()
		// A rejected sample leaves the ring untouched unless its gap was
		// large enough to flush it.
		if !slices.Equal(before.Samples, after.Samples) {
			m.ringFlushes.Inc()
		}
	}
	if after.State != before.State {
		m.transitions.WithLabelValues(after.State).Inc()
	}
	return accepted
}

// NextAnticipatedVSyncTimeFrom wraps Predictor.NextAnticipatedVSyncTimeFrom,
// recording the lead time of the prediction.
func (m *Metrics) NextAnticipatedVSyncTimeFrom(referenceNs Clock, lastConfirmedPresentNs ...Clock) Clock {
	v := m.p.NextAnticipatedVSyncTimeFrom(referenceNs, lastConfirmedPresentNs...)
	lead := time.Duration(v - referenceNs)
	m.leadTime.Observe(lead.Seconds())
	return v
}

// Predictor returns the wrapped Predictor, for operations Metrics doesn't
// itself instrument.
func (m *Metrics) Predictor() *Predictor {
	return m.p
}
