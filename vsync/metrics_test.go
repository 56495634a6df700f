// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package vsync

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsWrapsPredictor(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPredictor(NewDisplayMode(1, 1000))
	m := NewMetrics(p, reg)
	require.NotNil(t, m)

	assert.True(t, m.AddVsyncTimestamp(1000))
	v := m.NextAnticipatedVSyncTimeFrom(500)
	assert.Equal(t, Clock(1000), v)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
