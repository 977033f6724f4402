// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package statefile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")

	state := State{
		Volume: 80, PlayState: "play", Current: 2, HasCurrent: true,
		Elapsed: 12.5, HasElapsed: true, Random: true, Repeat: false,
		Single: 2, Consume: 1, Crossfade: 5, MixrampDB: -17.0, MixrampDelay: 1.5,
		Playlist: []PlaylistEntry{{Position: 0, Path: "a.flac"}, {Position: 1, Path: "b.flac"}},
	}
	require.NoError(t, Save(path, state))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 80, loaded.Volume)
	assert.Equal(t, "play", loaded.PlayState)
	assert.Equal(t, 2, loaded.Current)
	assert.True(t, loaded.HasCurrent)
	assert.InDelta(t, 12.5, loaded.Elapsed, 1e-6)
	assert.True(t, loaded.Random)
	assert.False(t, loaded.Repeat)
	assert.Equal(t, 2, loaded.Single)
	assert.Equal(t, 1, loaded.Consume)
	assert.Equal(t, 5, loaded.Crossfade)
	assert.InDelta(t, -17.0, loaded.MixrampDB, 1e-6)
	assert.InDelta(t, 1.5, loaded.MixrampDelay, 1e-6)
	require.Len(t, loaded.Playlist, 2)
	assert.Equal(t, "a.flac", loaded.Playlist[0].Path)
}

func TestSaveOmitsAbsentCurrentAndTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	require.NoError(t, Save(path, Default()))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.False(t, loaded.HasCurrent)
	assert.False(t, loaded.HasElapsed)
}

func TestLoadIgnoresUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	content := "sw_volume: 50\nfuture_key: something\nstate: stop\nplaylist_begin\nplaylist_end\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, loaded.Volume)
}

func TestLoadDefaultsMalformedNumericFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	content := "sw_volume: not-a-number\nstate: play\ncrossfade: garbage\nmixrampdb: nope\nmixrampdelay: nope\n" +
		"playlist_begin\nplaylist_end\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100, loaded.Volume)
	assert.Equal(t, 0, loaded.Crossfade)
	assert.InDelta(t, 0.0, loaded.MixrampDB, 1e-6)
	assert.InDelta(t, -1.0, loaded.MixrampDelay, 1e-6)
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
