// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rmpd/rmpd/internal/advancer"
	"github.com/rmpd/rmpd/internal/catalog"
	"github.com/rmpd/rmpd/internal/eventbus"
	"github.com/rmpd/rmpd/internal/mount"
	"github.com/rmpd/rmpd/internal/output"
	"github.com/rmpd/rmpd/internal/partition"
	"github.com/rmpd/rmpd/internal/playback"
	"github.com/rmpd/rmpd/internal/security"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	store, err := catalog.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	bus := eventbus.New()
	t.Cleanup(func() { _ = bus.Close() })

	d := &Daemon{
		Store:      store,
		Partitions: partition.NewManager(),
		Engine:     playback.New(nil, nil, bus),
		Status:     advancer.NewStatus(),
		Mounts:     mount.NewManager(nil),
		Outputs:    output.NewManager(nil),
		Auth:       security.NewAuthenticator(""),
		Bus:        bus,
	}
	return NewSession(d, 8192)
}

func TestHandleSetVolRejectsOutOfRange(t *testing.T) {
	s := newTestSession(t)
	_, err := handleSetVol(context.Background(), s, []string{"150"})
	require.Error(t, err)
}

func TestHandleSetVolAcceptsBoundary(t *testing.T) {
	s := newTestSession(t)
	_, err := handleSetVol(context.Background(), s, []string{"100"})
	require.NoError(t, err)
	require.Equal(t, uint8(100), s.d.Engine.Volume())
}

func TestHandleCrossfadeRejectsNegative(t *testing.T) {
	s := newTestSession(t)
	_, err := handleCrossfade(context.Background(), s, []string{"-1"})
	require.Error(t, err)
}

func TestHandlePrioRejectsOutOfRange(t *testing.T) {
	s := newTestSession(t)
	_, err := handlePrio(context.Background(), s, []string{"300", "0:1"})
	require.Error(t, err)
}

type fakeFingerprinter struct{}

func (fakeFingerprinter) Fingerprint(absPath string) (string, error) {
	return "fp:" + absPath, nil
}

func TestHandleGetFingerprintRequiresCollaborator(t *testing.T) {
	s := newTestSession(t)
	_, err := s.d.Store.AddSong(context.Background(), catalog.Song{Path: "a/song.flac"})
	require.NoError(t, err)

	_, err = handleGetFingerprint(context.Background(), s, []string{"a/song.flac"})
	require.Error(t, err)
}

func TestHandleGetFingerprintDelegatesToCollaborator(t *testing.T) {
	s := newTestSession(t)
	s.d.Fingerprinter = fakeFingerprinter{}
	s.d.MusicRoot = "/music"
	_, err := s.d.Store.AddSong(context.Background(), catalog.Song{Path: "a/song.flac"})
	require.NoError(t, err)

	resp, err := handleGetFingerprint(context.Background(), s, []string{"a/song.flac"})
	require.NoError(t, err)
	require.Contains(t, resp.String(), "fp:/music/a/song.flac")
}
