// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package vsync

import "github.com/go-logr/logr"

// Config holds construction-time tuning for a Predictor. Use Option values
// with NewPredictor rather than constructing Config directly; the zero
// Config is not valid on its own since defaults are applied by
// NewPredictor, not by the struct's zero value.
type Config struct {
	HistorySize             int
	MinSamples              int
	OutlierTolerancePercent int
	Logger                  logr.Logger
}

// Option configures a Predictor at construction time.
type Option func(*Config)

// WithHistorySize sets the sample ring's capacity. Default 20.
func WithHistorySize(n int) Option {
	return func(c *Config) { c.HistorySize = n }
}

// WithMinSamples sets the minimum number of retained samples required
// before a regression fit is attempted. Default 6.
func WithMinSamples(n int) Option {
	return func(c *Config) { c.MinSamples = n }
}

// WithOutlierTolerancePercent sets the tolerance, as a percentage of the
// active mode's nominal period, used both for gap classification in the
// sample ring and for outlier rejection and fit trust in the regressor.
// Default 25.
func WithOutlierTolerancePercent(p int) Option {
	return func(c *Config) { c.OutlierTolerancePercent = p }
}

// WithLogger injects a logr.Logger for diagnostic events (mode switches,
// ring flushes, fit rejections). Steady-state operation logs nothing;
// AddVsyncTimestamp logs only when it flushes the ring or a fit comes out
// untrusted, and NextAnticipatedVSyncTimeFrom never logs. Defaults to
// logr.Discard().
func WithLogger(l logr.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

func defaultConfig() Config {
	return Config{
		HistorySize:             20,
		MinSamples:              6,
		OutlierTolerancePercent: 25,
		Logger:                  logr.Discard(),
	}
}
