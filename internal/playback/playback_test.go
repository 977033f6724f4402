// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package playback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmpd/rmpd/internal/eventbus"
)

// fakeDecoder yields a fixed number of frames then EOF (n=0, err=nil).
type fakeDecoder struct {
	mu          sync.Mutex
	sampleRate  int
	channels    int
	framesLeft  int
	seekCalls   []float64
	closed      bool
}

func newFakeDecoder(frames int) *fakeDecoder {
	return &fakeDecoder{sampleRate: 44100, channels: 2, framesLeft: frames}
}

func (d *fakeDecoder) SampleRate() int    { return d.sampleRate }
func (d *fakeDecoder) Channels() int      { return d.channels }
func (d *fakeDecoder) BitsPerSample() int { return 32 }
func (d *fakeDecoder) Duration() (time.Duration, bool) {
	return 0, false
}
func (d *fakeDecoder) Read(buf []float32) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.framesLeft <= 0 {
		return 0, nil
	}
	n := len(buf) / d.channels
	if n > d.framesLeft {
		n = d.framesLeft
	}
	d.framesLeft -= n
	written := n * d.channels
	for i := 0; i < written; i++ {
		buf[i] = 1
	}
	return written, nil
}
func (d *fakeDecoder) Seek(seconds float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seekCalls = append(d.seekCalls, seconds)
	return nil
}
func (d *fakeDecoder) CurrentBitrate() (uint32, bool) { return 320000, true }
func (d *fakeDecoder) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

type fakeOpener struct {
	decoder *fakeDecoder
}

func (o *fakeOpener) Open(ctx context.Context, absPath string) (Decoder, error) {
	return o.decoder, nil
}

type fakeSink struct {
	mu      sync.Mutex
	written int
	paused  bool
}

func (s *fakeSink) Configure(format SampleFormat, sampleRate, channels int) error { return nil }
func (s *fakeSink) Write(samples []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written += len(samples)
	return nil
}
func (s *fakeSink) Pause() error  { s.paused = true; return nil }
func (s *fakeSink) Resume() error { s.paused = false; return nil }
func (s *fakeSink) Stop() error   { return nil }

func TestPlayTransitionsToPlayState(t *testing.T) {
	decoder := newFakeDecoder(100)
	engine := New(&fakeOpener{decoder: decoder}, &fakeSink{}, nil)

	require.NoError(t, engine.Play(context.Background(), Song{AbsPath: "/music/a.flac"}))
	assert.Equal(t, StatePlay, engine.State())
	engine.Stop()
	assert.Equal(t, StateStop, engine.State())
}

func TestSongFinishedPublishedOnEOF(t *testing.T) {
	decoder := newFakeDecoder(10)
	bus := eventbus.New()
	defer bus.Close()

	sub, err := bus.Subscribe(context.Background(), "test")
	require.NoError(t, err)

	engine := New(&fakeOpener{decoder: decoder}, &fakeSink{}, bus)
	require.NoError(t, engine.Play(context.Background(), Song{AbsPath: "/music/a.flac"}))

	select {
	case ev := <-sub:
		assert.Equal(t, eventbus.SongFinished, ev.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SongFinished")
	}
	engine.Stop()
}

func TestSeekRejectsNegative(t *testing.T) {
	decoder := newFakeDecoder(100)
	engine := New(&fakeOpener{decoder: decoder}, &fakeSink{}, nil)
	require.NoError(t, engine.Play(context.Background(), Song{AbsPath: "/music/a.flac"}))
	defer engine.Stop()

	assert.Error(t, engine.Seek(-1))
}

func TestSetPauseRequiresPlaying(t *testing.T) {
	engine := New(&fakeOpener{decoder: newFakeDecoder(100)}, &fakeSink{}, nil)
	assert.Error(t, engine.SetPause(true))
}

func TestSetVolumeClampsTo100(t *testing.T) {
	engine := New(&fakeOpener{decoder: newFakeDecoder(100)}, &fakeSink{}, nil)
	engine.SetVolume(150)
	assert.Equal(t, uint8(100), engine.Volume())
}

func TestReplayGainModeRoundTrip(t *testing.T) {
	engine := New(&fakeOpener{decoder: newFakeDecoder(100)}, &fakeSink{}, nil)
	engine.SetReplayGainMode(ReplayGainAlbum)
	assert.Equal(t, ReplayGainAlbum, engine.ReplayGainMode())
}

func TestGainScalarUnityAtZeroDB(t *testing.T) {
	assert.InDelta(t, 1.0, gainScalar(0), 0.0001)
}

func TestGainScalarAttenuatesNegativeDB(t *testing.T) {
	assert.Less(t, gainScalar(-6), 1.0)
}
