// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package dop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCMRateForKnownRates(t *testing.T) {
	rate, err := PCMRateFor(dsd64Rate)
	require.NoError(t, err)
	assert.Equal(t, dop64Rate, rate)

	rate, err = PCMRateFor(dsd128Rate)
	require.NoError(t, err)
	assert.Equal(t, dop128Rate, rate)
}

func TestPCMRateForRejectsUnknownRate(t *testing.T) {
	_, err := PCMRateFor(44100)
	assert.Error(t, err)
}

func TestMarkerAlternatesPerFrame(t *testing.T) {
	enc := NewEncoder(2, Interleaved, MSBFirst)
	src := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0x11, 0x22, 0x33, 0x44} // 2 frames, 2 channels
	out := enc.Encode(src, nil)
	require.Len(t, out, 4)

	assert.Equal(t, byte(markerA), byte(out[0]>>24))
	assert.Equal(t, byte(markerA), byte(out[1]>>24))
	assert.Equal(t, byte(markerB), byte(out[2]>>24))
	assert.Equal(t, byte(markerB), byte(out[3]>>24))
}

func TestMarkerPersistsAcrossCalls(t *testing.T) {
	enc := NewEncoder(1, Interleaved, MSBFirst)
	out1 := enc.Encode([]byte{0x01, 0x02}, nil)
	out2 := enc.Encode([]byte{0x03, 0x04}, nil)
	assert.Equal(t, byte(markerA), byte(out1[0]>>24))
	assert.Equal(t, byte(markerB), byte(out2[0]>>24))
}

func TestEncodeInterleavedByteOrder(t *testing.T) {
	enc := NewEncoder(2, Interleaved, MSBFirst)
	src := []byte{0xAA, 0xBB, 0xCC, 0xDD} // L=AA,BB  R=CC,DD
	out := enc.Encode(src, nil)
	require.Len(t, out, 2)

	left := out[0]
	assert.Equal(t, byte(0xAA), byte(left>>16))
	assert.Equal(t, byte(0xBB), byte(left>>8))
	assert.Equal(t, byte(0x00), byte(left))

	right := out[1]
	assert.Equal(t, byte(0xCC), byte(right>>16))
	assert.Equal(t, byte(0xDD), byte(right>>8))
}

func TestEncodePlanarLayout(t *testing.T) {
	enc := NewEncoder(2, Planar, MSBFirst)
	// channel 0: AA BB CC DD (2 frames); channel 1: 11 22 33 44 (2 frames)
	src := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0x11, 0x22, 0x33, 0x44}
	out := enc.Encode(src, nil)
	require.Len(t, out, 4)

	// frame 0: ch0=AA,BB ch1=11,22 ; frame 1: ch0=CC,DD ch1=33,44
	assert.Equal(t, byte(0xAA), byte(out[0]>>16))
	assert.Equal(t, byte(0x11), byte(out[1]>>16))
	assert.Equal(t, byte(0xCC), byte(out[2]>>16))
	assert.Equal(t, byte(0x33), byte(out[3]>>16))
}

func TestLSBFirstReversesBits(t *testing.T) {
	enc := NewEncoder(1, Interleaved, LSBFirst)
	out := enc.Encode([]byte{0b10000000, 0b00000001}, nil)
	require.Len(t, out, 1)
	assert.Equal(t, byte(0b00000001), byte(out[0]>>16))
	assert.Equal(t, byte(0b10000000), byte(out[0]>>8))
}

func TestPrimerMillisThresholds(t *testing.T) {
	assert.Equal(t, 200, PrimerMillis(176_400))
	assert.Equal(t, 100, PrimerMillis(352_800))
	assert.Equal(t, 50, PrimerMillis(768_000))
}

func TestSilenceCarriesMarkersOnly(t *testing.T) {
	enc := NewEncoder(2, Interleaved, MSBFirst)
	out := enc.Silence(1)
	require.Len(t, out, 2)
	assert.Equal(t, byte(markerA), byte(out[0]>>24))
	assert.Equal(t, int32(0), out[0]&0x00FFFFFF)
}

func TestPCMDrainSilenceSizing(t *testing.T) {
	out := PCMDrainSilence(2, 44100, 100)
	assert.Len(t, out, 2*4410)
	for _, s := range out {
		assert.Zero(t, s)
	}
}

func TestToFloat32Normalizes(t *testing.T) {
	samples := []int32{(1 << 20) << 8} // a packed 24-bit-left-aligned value, well within range
	out := ToFloat32(samples)
	assert.InDelta(t, 0.125, out[0], 1e-6)
}
