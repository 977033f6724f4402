// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package dop packs 1-bit DSD data into 24-bit-left-aligned-in-32 PCM
// samples so a DoP-aware DAC can recover the DSD stream over a standard
// PCM link, per spec.md §4.6.
package dop

import "github.com/rmpd/rmpd/internal/rmpderr"

// Layout describes how DSD bytes are arranged in an encoder's input buffer.
type Layout int

const (
	// Planar holds all bytes for channel 0, then channel 1, etc.
	Planar Layout = iota
	// Interleaved holds L0, R0, L1, R1, ...
	Interleaved
)

// BitOrder describes how bits are packed within each DSD byte.
type BitOrder int

const (
	MSBFirst BitOrder = iota
	LSBFirst
)

const (
	dsd64Rate  = 2_822_400
	dsd128Rate = 5_644_800
	dop64Rate  = 176_400
	dop128Rate = 352_800

	markerA byte = 0x05
	markerB byte = 0xFA
)

// PCMRateFor maps a DSD sample rate to its DoP-carrier PCM sample rate.
func PCMRateFor(dsdRate int) (int, error) {
	switch dsdRate {
	case dsd64Rate:
		return dop64Rate, nil
	case dsd128Rate:
		return dop128Rate, nil
	default:
		return 0, rmpderr.Newf(rmpderr.Argument, "unsupported DSD sample rate: %d", dsdRate)
	}
}

// Encoder packs DSD bytes into DoP-marked 32-bit PCM frames. The marker
// alternates per output frame and its state persists across Encode calls,
// so an Encoder must not be shared across independent streams.
type Encoder struct {
	Channels int
	Layout   Layout
	BitOrder BitOrder

	markerHigh bool // true selects markerA next, false selects markerB
}

// NewEncoder returns an Encoder primed to start with the 0x05 marker.
func NewEncoder(channels int, layout Layout, bitOrder BitOrder) *Encoder {
	return &Encoder{Channels: channels, Layout: layout, BitOrder: bitOrder, markerHigh: true}
}

// Encode consumes 2*channels DSD bytes per output frame from src and
// appends one int32 PCM sample per channel per frame to dst, always in
// interleaved output order, per spec.md §4.6.
func (e *Encoder) Encode(src []byte, dst []int32) []int32 {
	bytesPerFrame := 2 * e.Channels
	frames := len(src) / bytesPerFrame

	for f := 0; f < frames; f++ {
		marker := markerB
		if e.markerHigh {
			marker = markerA
		}
		e.markerHigh = !e.markerHigh

		for ch := 0; ch < e.Channels; ch++ {
			b0, b1 := e.dsdBytes(src, f, ch, frames)
			if e.BitOrder == LSBFirst {
				b0, b1 = reverseBits(b0), reverseBits(b1)
			}
			sample := int32(marker)<<24 | int32(b0)<<16 | int32(b1)<<8
			dst = append(dst, sample)
		}
	}
	return dst
}

func (e *Encoder) dsdBytes(src []byte, frame, channel, totalFrames int) (byte, byte) {
	if e.Layout == Interleaved {
		base := frame*2*e.Channels + channel*2
		return src[base], src[base+1]
	}
	base := channel*2*totalFrames + frame*2
	return src[base], src[base+1]
}

func reverseBits(b byte) byte {
	var out byte
	for i := 0; i < 8; i++ {
		out <<= 1
		out |= (b >> i) & 1
	}
	return out
}

// PrimerMillis returns the silence-priming duration a sink should be fed
// before music begins, so the DAC latches into DoP mode.
func PrimerMillis(pcmSampleRate int) int {
	switch {
	case pcmSampleRate <= 200_000:
		return 200
	case pcmSampleRate <= 400_000:
		return 100
	default:
		return 50
	}
}

// Silence returns frames of DoP-marked silence (zero DSD data, alternating
// markers), suitable for DAC priming. The encoder's marker state is
// advanced as if these frames had been produced by Encode.
func (e *Encoder) Silence(frames int) []int32 {
	var out []int32
	for f := 0; f < frames; f++ {
		marker := markerB
		if e.markerHigh {
			marker = markerA
		}
		e.markerHigh = !e.markerHigh
		for ch := 0; ch < e.Channels; ch++ {
			out = append(out, int32(marker)<<24)
		}
	}
	return out
}

// PCMDrainSilence returns unmarked plain PCM zero samples to switch a DAC
// back out of DoP mode before a non-DSD track plays, sized for at least
// minMillis of audio at the given sample rate.
func PCMDrainSilence(channels, sampleRate, minMillis int) []int32 {
	frames := (sampleRate*minMillis + 999) / 1000
	return make([]int32, frames*channels)
}

// ToFloat32 normalizes packed DoP samples by 2^23 for sinks that only
// accept float32 input. This is lossy for DoP — callers should prefer a
// native 24/32-bit integer sink — and is a documented fallback path only.
func ToFloat32(samples []int32) []float32 {
	const scale = 1.0 / (1 << 23)
	out := make([]float32, len(samples))
	for i, s := range samples {
		out[i] = float32(s>>8) * scale
	}
	return out
}
