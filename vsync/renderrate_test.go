// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package vsync

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderRateDivisorExactMultiple(t *testing.T) {
	n, ok := renderRateDivisor(3000, 1000)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestRenderRateDivisorWithinOnePercent(t *testing.T) {
	n, ok := renderRateDivisor(3005, 1000)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
}

func TestRenderRateDivisorRejectsNonDivisor(t *testing.T) {
	_, ok := renderRateDivisor(3500, 1000)
	assert.False(t, ok)
}

func TestRenderRateDivisorRejectsSubUnity(t *testing.T) {
	_, ok := renderRateDivisor(400, 1000)
	assert.False(t, ok)
}

func TestApplyRenderRateDivisorIdentityWhenUnset(t *testing.T) {
	assert.Equal(t, int64(5), applyRenderRateDivisor(5, 1))
}

func TestApplyRenderRateDivisorRoundsUp(t *testing.T) {
	assert.Equal(t, int64(6), applyRenderRateDivisor(5, 3))
	assert.Equal(t, int64(0), applyRenderRateDivisor(0, 3))
	assert.Equal(t, int64(0), applyRenderRateDivisor(-1, 3))
}
