// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package vsync

import "github.com/go-logr/logr"

// logger wraps a logr.Logger with the small, fixed vocabulary of events the
// predictor ever reports. None of these are called from
// AddVsyncTimestamp's or NextAnticipatedVSyncTimeFrom's hot path except the
// rare branches where something unusual happens (a flush, an untrusted
// fit); steady-state operation logs nothing.
type logger struct {
	l logr.Logger
}

func newLogger(l logr.Logger) logger {
	return logger{l: l}
}

func (g logger) modeEntered(id ModeID, nominalPeriod Clock) {
	g.l.V(1).Info("mode entered", "modeID", id, "nominalPeriod", int64(nominalPeriod))
}

func (g logger) modeRestored(id ModeID) {
	g.l.V(1).Info("mode restored from stash", "modeID", id)
}

func (g logger) ringFlushed(id ModeID, ts Clock) {
	g.l.V(1).Info("ring flushed on large gap", "modeID", id, "ts", int64(ts))
}

func (g logger) fitUntrusted(id ModeID, dropped int) {
	g.l.V(1).Info("regression fit untrusted", "modeID", id, "droppedOutliers", dropped)
}

func (g logger) modelReset(id ModeID) {
	g.l.Info("model reset", "modeID", id)
}

func (g logger) renderRateRejected(periodNs Clock) {
	g.l.V(1).Info("render rate request rejected, divisor reset to 1", "requestedPeriodNs", int64(periodNs))
}
