// SPDX-License-Identifier: GPL-3.0
// Copyright 2024 Pete Heist

package vsync

// ModeID identifies a DisplayMode. Callers choose their own scheme (an
// index into a mode list, a hardware mode ID, etc.); the predictor only
// uses it as a map key to remember per-mode state across switches.
type ModeID int

// VRRConfig configures a variable-refresh-rate mode. A nil *VRRConfig on a
// DisplayMode means the mode runs at a fixed cadence.
type VRRConfig struct {
	// MinFrameInterval is the minimum nanosecond spacing the display
	// guarantees between two presents.
	MinFrameInterval Clock
}

// DisplayMode describes a display timing configuration. It is immutable
// once constructed; replacing the active mode always means switching to a
// different DisplayMode value, never mutating fields of the current one.
type DisplayMode struct {
	ModeID        ModeID
	NominalPeriod Clock
	VRR           *VRRConfig
	Resolution    string
	Group         int
}

// NewDisplayMode returns a fixed-cadence DisplayMode.
func NewDisplayMode(id ModeID, nominalPeriod Clock) DisplayMode {
	return DisplayMode{ModeID: id, NominalPeriod: nominalPeriod}
}

// NewVRRDisplayMode returns a variable-refresh-rate DisplayMode.
func NewVRRDisplayMode(id ModeID, nominalPeriod, minFrameInterval Clock) DisplayMode {
	return DisplayMode{
		ModeID:        id,
		NominalPeriod: nominalPeriod,
		VRR:           &VRRConfig{MinFrameInterval: minFrameInterval},
	}
}

// modeStash holds the per-mode state the Mode Controller (C7) preserves
// across switches away from and back to a mode: the sample ring, the last
// trusted fit (if any) and the render-rate divisor in effect for that mode.
type modeStash struct {
	ring          *sampleRing
	fit           Model
	locked        bool
	renderDivisor int
	vrr           vrrState
}
