// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"sort"

	"github.com/rmpd/rmpd/internal/eventbus"
)

// Subsystem is one of the closed set of names a client can idle on.
type Subsystem string

const (
	SubsystemDatabase       Subsystem = "database"
	SubsystemUpdate         Subsystem = "update"
	SubsystemStoredPlaylist Subsystem = "stored_playlist"
	SubsystemPlaylist       Subsystem = "playlist"
	SubsystemPlayer         Subsystem = "player"
	SubsystemMixer          Subsystem = "mixer"
	SubsystemOutput         Subsystem = "output"
	SubsystemOptions        Subsystem = "options"
	SubsystemPartition      Subsystem = "partition"
	SubsystemSticker        Subsystem = "sticker"
	SubsystemSubscription   Subsystem = "subscription"
	SubsystemMessage        Subsystem = "message"
	SubsystemNeighbor       Subsystem = "neighbor"
	SubsystemMount          Subsystem = "mount"
)

// AllSubsystems is the closed set recognized by `idle`.
var AllSubsystems = []Subsystem{
	SubsystemDatabase, SubsystemUpdate, SubsystemStoredPlaylist, SubsystemPlaylist,
	SubsystemPlayer, SubsystemMixer, SubsystemOutput, SubsystemOptions,
	SubsystemPartition, SubsystemSticker, SubsystemSubscription, SubsystemMessage,
	SubsystemNeighbor, SubsystemMount,
}

// eventSubsystems maps an event bus Kind to the subsystem(s) it wakes an
// idling client for, per spec.md §4.10's closed event-to-subsystem table.
func eventSubsystems(kind eventbus.Kind, updateJobRunning bool) []Subsystem {
	switch kind {
	case eventbus.PlayerStateChanged, eventbus.SongChanged, eventbus.SongFinished,
		eventbus.PositionChanged, eventbus.BitrateChanged:
		return []Subsystem{SubsystemPlayer}
	case eventbus.VolumeChanged:
		return []Subsystem{SubsystemMixer}
	case eventbus.SongAdded, eventbus.SongUpdated, eventbus.SongDeleted:
		if updateJobRunning {
			return []Subsystem{SubsystemDatabase, SubsystemUpdate}
		}
		return []Subsystem{SubsystemDatabase}
	case eventbus.DatabaseUpdateStarted, eventbus.DatabaseUpdateProgress, eventbus.DatabaseUpdateFinished:
		return []Subsystem{SubsystemUpdate}
	default:
		return nil
	}
}

// idleTracker accumulates pending subsystem wakeups for one connection
// between `idle` calls, coalescing repeats of the same subsystem into one
// `changed:` line.
type idleTracker struct {
	pending map[Subsystem]bool
}

func newIdleTracker() *idleTracker {
	return &idleTracker{pending: make(map[Subsystem]bool)}
}

// Mark records subsystem as changed, to be reported on the next idle/noidle.
func (t *idleTracker) Mark(s Subsystem) {
	t.pending[s] = true
}

// Drain returns every pending subsystem (sorted for determinism) and clears
// the accumulator.
func (t *idleTracker) Drain() []Subsystem {
	out := make([]Subsystem, 0, len(t.pending))
	for s := range t.pending {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	t.pending = make(map[Subsystem]bool)
	return out
}

// Matches reports whether any pending subsystem is in the requested filter
// set (empty filter means "any subsystem").
func (t *idleTracker) Matches(filter []Subsystem) bool {
	if len(t.pending) == 0 {
		return false
	}
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if t.pending[f] {
			return true
		}
	}
	return false
}
