// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package playback implements the state machine driving one audio stream
// at a time, per spec.md §4.5: decode -> scale -> sink, with ReplayGain
// scaling wired in from original_source/rmpd-player/src/engine.rs. The
// crossfade setting is stored and reported, but no dual-stream mixing is
// performed: a second song is never opened while the first is playing.
package playback

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rmpd/rmpd/internal/eventbus"
	"github.com/rmpd/rmpd/internal/logging"
	"github.com/rmpd/rmpd/internal/metrics"
	"github.com/rmpd/rmpd/internal/rmpderr"
)

// State is one of the three playback states, mirrored in an atomic byte so
// the protocol layer can read it without the engine's exclusive lock.
type State int32

const (
	StateStop State = iota
	StatePlay
	StatePause
)

func (s State) String() string {
	switch s {
	case StatePlay:
		return "play"
	case StatePause:
		return "pause"
	default:
		return "stop"
	}
}

// SampleFormat is the negotiated PCM sample representation, shared with the
// DoP encoder's frame packing.
type SampleFormat int

const (
	FormatF32 SampleFormat = iota
	FormatI16
	FormatI32
	FormatI24in32
)

// ReplayGainMode selects which ReplayGain tag pair (if any) scales decoded
// samples alongside the user volume.
type ReplayGainMode string

const (
	ReplayGainOff   ReplayGainMode = "off"
	ReplayGainTrack ReplayGainMode = "track"
	ReplayGainAlbum ReplayGainMode = "album"
	ReplayGainAuto  ReplayGainMode = "auto"
)

// Decoder is the external collaborator that turns a song's absolute path
// into a readable sample stream. rmpd never implements container/codec
// parsing itself.
type Decoder interface {
	SampleRate() int
	Channels() int
	BitsPerSample() int
	Duration() (time.Duration, bool)
	Read(buf []float32) (int, error)
	Seek(seconds float64) error
	CurrentBitrate() (uint32, bool)
	Close() error
}

// DecoderOpener opens a Decoder for a song's absolute path, given
// container/extension hints.
type DecoderOpener interface {
	Open(ctx context.Context, absPath string) (Decoder, error)
}

// Sink is the external collaborator representing the audio output device.
type Sink interface {
	Configure(format SampleFormat, sampleRate, channels int) error
	Write(samples []float32) error
	Pause() error
	Resume() error
	Stop() error
}

// Song is the minimal per-track data the engine needs; the catalog's fuller
// Song type is mapped into this at the call site.
type Song struct {
	AbsPath        string
	ReplayGainDB   float64 // track gain in dB, 0 if unset
	AlbumGainDB    float64
}

const (
	decodeBufferFrames = 4096
	pauseSleep         = 100 * time.Millisecond
)

// Engine drives one audio stream. Exactly one decode/output loop runs at a
// time; a new play() stops the previous loop before starting the next.
type Engine struct {
	opener DecoderOpener
	sink   Sink
	bus    *eventbus.Bus

	state atomic.Int32 // State, read without the lock

	mu              sync.Mutex
	volume          uint8 // 0-100
	replayGainMode  ReplayGainMode
	crossfadeSecs   int
	current         *Song
	decoder         Decoder
	elapsedFrames   int64
	cancel          context.CancelFunc
	loopDone        chan struct{}
	pendingSeek     *float64

	lastBitrate atomic.Uint32
}

// Snapshot is a read-only view of engine state for the `status` command;
// it never blocks on the decode loop.
type Snapshot struct {
	SampleRate    int
	Bits          int
	Channels      int
	Bitrate       int
	Duration      float64
	CrossfadeSecs int
}

// Snapshot returns the current audio format, bitrate, and track duration.
// Zero values mean no track is loaded.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	snap := Snapshot{CrossfadeSecs: e.crossfadeSecs, Bitrate: int(e.lastBitrate.Load())}
	if e.decoder == nil {
		return snap
	}
	snap.SampleRate = e.decoder.SampleRate()
	snap.Bits = e.decoder.BitsPerSample()
	snap.Channels = e.decoder.Channels()
	if d, ok := e.decoder.Duration(); ok {
		snap.Duration = d.Seconds()
	}
	return snap
}

// New creates an Engine. bus may be nil in tests that don't need events.
func New(opener DecoderOpener, sink Sink, bus *eventbus.Bus) *Engine {
	e := &Engine{opener: opener, sink: sink, bus: bus, volume: 100}
	e.state.Store(int32(StateStop))
	return e
}

// State returns the current playback state without acquiring the lock.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// SetVolume sets linear amplitude scaling applied in the engine; hardware
// mixers are never used.
func (e *Engine) SetVolume(volume uint8) {
	if volume > 100 {
		volume = 100
	}
	e.mu.Lock()
	e.volume = volume
	e.mu.Unlock()
}

// Volume returns the current volume.
func (e *Engine) Volume() uint8 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

// SetReplayGainMode selects the ReplayGain scaling applied alongside volume.
func (e *Engine) SetReplayGainMode(mode ReplayGainMode) {
	e.mu.Lock()
	e.replayGainMode = mode
	e.mu.Unlock()
}

// ReplayGainMode returns the current mode.
func (e *Engine) ReplayGainMode() ReplayGainMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.replayGainMode
}

// SetCrossfade records the crossfade window in seconds, as reported in the
// engine's snapshot. The value does not change playback: songs are not mixed.
func (e *Engine) SetCrossfade(seconds int) {
	e.mu.Lock()
	e.crossfadeSecs = seconds
	e.mu.Unlock()
}

// Elapsed returns playback position in seconds for the current track.
func (e *Engine) Elapsed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.decoder == nil {
		return 0
	}
	return float64(e.elapsedFrames) / float64(e.decoder.SampleRate())
}

// Play opens song and starts the decode/output loop on a dedicated
// goroutine, stopping any loop already running.
func (e *Engine) Play(ctx context.Context, song Song) error {
	e.stopLoopLocked()

	decoder, err := e.opener.Open(ctx, song.AbsPath)
	if err != nil {
		return rmpderr.Wrap(rmpderr.Player, err)
	}

	format := FormatF32
	if err := e.sink.Configure(format, decoder.SampleRate(), decoder.Channels()); err != nil {
		decoder.Close()
		return rmpderr.Wrap(rmpderr.Player, err)
	}

	e.mu.Lock()
	e.current = &song
	e.decoder = decoder
	e.elapsedFrames = 0
	e.pendingSeek = nil
	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	done := make(chan struct{})
	e.loopDone = done
	e.mu.Unlock()

	e.state.Store(int32(StatePlay))
	metrics.SetPlaybackState(int(StatePlay))

	go e.runLoop(loopCtx, done)
	return nil
}

// Pause toggles the pause state without tearing down the decoder.
func (e *Engine) Pause() error {
	return e.SetPause(e.State() != StatePause)
}

// SetPause sets the pause state explicitly.
func (e *Engine) SetPause(pause bool) error {
	if e.State() == StateStop {
		return rmpderr.New(rmpderr.Player, "not playing")
	}
	if pause {
		e.state.Store(int32(StatePause))
	} else {
		e.state.Store(int32(StatePlay))
	}
	metrics.SetPlaybackState(int(e.State()))
	return nil
}

// Stop tears down the current decode/output loop.
func (e *Engine) Stop() {
	e.stopLoopLocked()
	e.state.Store(int32(StateStop))
	metrics.SetPlaybackState(int(StateStop))
	_ = e.sink.Stop()
}

// Seek requests a seek to the given position in seconds. Negative values
// are rejected; seeking past end of stream is decoder-defined.
func (e *Engine) Seek(seconds float64) error {
	if seconds < 0 {
		return rmpderr.New(rmpderr.Argument, "seek position must not be negative")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.decoder == nil {
		return rmpderr.New(rmpderr.Player, "not playing")
	}
	e.pendingSeek = &seconds
	return nil
}

func (e *Engine) stopLoopLocked() {
	e.mu.Lock()
	cancel := e.cancel
	done := e.loopDone
	decoder := e.decoder
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	if decoder != nil {
		decoder.Close()
	}

	e.mu.Lock()
	e.decoder = nil
	e.cancel = nil
	e.loopDone = nil
	e.mu.Unlock()
}

// gainScalar converts a ReplayGain dB value to a linear amplitude scalar.
func gainScalar(db float64) float64 {
	if db == 0 {
		return 1
	}
	return math.Pow(10, db/20)
}

func (e *Engine) runLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	buf := make([]float32, decodeBufferFrames)
	framesSincePositionEvent := int64(0)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		e.mu.Lock()
		decoder := e.decoder
		seek := e.pendingSeek
		e.pendingSeek = nil
		volume := e.volume
		mode := e.replayGainMode
		song := e.current
		e.mu.Unlock()

		if decoder == nil {
			return
		}

		if seek != nil {
			if err := decoder.Seek(*seek); err != nil {
				logging.Warn().Err(err).Msg("seek failed")
			} else {
				e.mu.Lock()
				e.elapsedFrames = int64(*seek * float64(decoder.SampleRate()))
				e.mu.Unlock()
				e.publish(eventbus.PositionChanged, *seek)
			}
			continue
		}

		if e.State() == StatePause {
			_ = e.sink.Pause()
			time.Sleep(pauseSleep)
			continue
		}
		_ = e.sink.Resume()

		n, err := decoder.Read(buf)
		if err != nil || n == 0 {
			if err != nil {
				metrics.PlaybackDecodeErrors.Inc()
				logging.Warn().Err(err).Msg("decoder aborted current track")
			}
			e.publish(eventbus.SongFinished, song)
			return
		}

		samples := buf[:n]
		scalar := float64(volume) / 100
		if mode != ReplayGainOff && song != nil {
			gainDB := song.ReplayGainDB
			if mode == ReplayGainAlbum {
				gainDB = song.AlbumGainDB
			}
			scalar *= gainScalar(gainDB)
		}
		for i := range samples {
			samples[i] *= float32(scalar)
		}

		if err := e.sink.Write(samples); err != nil {
			metrics.PlaybackUnderruns.Inc()
			logging.Warn().Err(err).Msg("sink write failed")
		}

		channels := decoder.Channels()
		if channels == 0 {
			channels = 1
		}
		frames := int64(n / channels)
		e.mu.Lock()
		e.elapsedFrames += frames
		elapsedFrames := e.elapsedFrames
		e.mu.Unlock()

		framesSincePositionEvent += frames
		if framesSincePositionEvent >= int64(decoder.SampleRate()) {
			framesSincePositionEvent = 0
			elapsedSeconds := float64(elapsedFrames) / float64(decoder.SampleRate())
			e.publish(eventbus.PositionChanged, elapsedSeconds)
			if bitrate, ok := decoder.CurrentBitrate(); ok {
				e.lastBitrate.Store(bitrate)
				e.publish(eventbus.BitrateChanged, bitrate)
			}
		}
	}
}

func (e *Engine) publish(kind eventbus.Kind, payload interface{}) {
	if e.bus != nil {
		e.bus.Publish(kind, payload)
	}
}
