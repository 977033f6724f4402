// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package advancer implements the Queue Advancer, per spec.md §4.12: a
// SongFinished subscriber that picks the next queue position according to
// the random/repeat/single/consume state machine and drives the playback
// engine into it.
package advancer

import (
	"context"
	"math/rand"
	"sync"

	"github.com/rmpd/rmpd/internal/eventbus"
	"github.com/rmpd/rmpd/internal/logging"
	"github.com/rmpd/rmpd/internal/queue"
)

// TriState mirrors MPD's single/consume encoding: off, on, or one-shot
// (auto-reverts to off after it fires once).
type TriState int

const (
	Off TriState = iota
	On
	Oneshot
)

// Engine is the subset of the playback engine's surface the advancer
// drives; kept as an interface so tests don't need a real decoder/sink.
type Engine interface {
	Play(ctx context.Context, song PlaySong) error
	Stop()
}

// PlaySong is the minimal per-track data passed to Engine.Play. The queue
// item's path is resolved to this by the caller (catalog lookup or a
// direct path for "add by uri" items).
type PlaySong struct {
	Path string
}

// Status is the tri-state/boolean mode flags the advancer consults and
// mutates; the owning partition/connection-state component is the source
// of truth and reads these back after each SongFinished.
type Status struct {
	mu      sync.Mutex
	Random  bool
	Repeat  bool
	Single  TriState
	Consume TriState

	CurrentPos int // -1 when stopped

	MixrampDB    float64
	MixrampDelay float64
}

func NewStatus() *Status {
	return &Status{CurrentPos: -1}
}

// Advancer owns one partition's queue/engine pairing and reacts to
// SongFinished events published for that partition.
type Advancer struct {
	q      *queue.Queue
	engine Engine
	bus    *eventbus.Bus
	status *Status
}

// New creates an Advancer. Run must be called to start consuming events.
func New(q *queue.Queue, engine Engine, bus *eventbus.Bus, status *Status) *Advancer {
	return &Advancer{q: q, engine: engine, bus: bus, status: status}
}

// Run subscribes to the event bus and reacts to SongFinished until ctx is
// canceled.
func (a *Advancer) Run(ctx context.Context, subscriberID string) error {
	events, err := a.bus.Subscribe(ctx, subscriberID)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if ev.Kind == eventbus.SongFinished {
				a.onSongFinished(ctx)
			}
		}
	}
}

// onSongFinished implements the random/repeat/consume state machine of
// spec.md §4.12; for single=oneshot it only resets Single to Off.
func (a *Advancer) onSongFinished(ctx context.Context) {
	a.status.mu.Lock()
	current := a.status.CurrentPos
	random := a.status.Random
	repeat := a.status.Repeat
	single := a.status.Single
	consume := a.status.Consume
	a.status.mu.Unlock()

	length := a.q.Len()
	if length == 0 {
		a.stop()
		return
	}

	var next int
	stopAfter := false

	switch {
	case random:
		next = rand.Intn(length)
	default:
		next = current + 1
		if next >= length {
			if !repeat {
				a.stop()
				a.consumeIfNeeded(current, consume)
				return
			}
			next = 0
		}
	}

	if consume == On || consume == Oneshot {
		a.q.Delete(current)
		if next > current {
			next--
		}
		if consume == Oneshot {
			a.status.mu.Lock()
			a.status.Consume = Off
			a.status.mu.Unlock()
		}
		length = a.q.Len()
		if length == 0 {
			a.stop()
			return
		}
		if next >= length {
			next = length - 1
		}
	}

	if single == Oneshot {
		stopAfter = true
		a.status.mu.Lock()
		a.status.Single = Off
		a.status.mu.Unlock()
	}

	item, ok := a.q.Item(next)
	if !ok {
		a.stop()
		return
	}

	a.status.mu.Lock()
	a.status.CurrentPos = next
	a.status.mu.Unlock()

	if err := a.engine.Play(ctx, PlaySong{Path: item.Path}); err != nil {
		logging.Warn().Err(err).Str("path", item.Path).Msg("advancer failed to start next song")
		a.stop()
		return
	}

	if stopAfter {
		// single=oneshot only resets Single to Off. The selected song
		// plays and no stop is arranged after it: its own SongFinished is
		// handled like any other and advances to the following position.
		_ = stopAfter
	}
}

func (a *Advancer) consumeIfNeeded(pos int, consume TriState) {
	if consume == Off {
		return
	}
	a.q.Delete(pos)
	if consume == Oneshot {
		a.status.mu.Lock()
		a.status.Consume = Off
		a.status.mu.Unlock()
	}
}

func (a *Advancer) stop() {
	a.engine.Stop()
	a.status.mu.Lock()
	a.status.CurrentPos = -1
	a.status.mu.Unlock()
	a.bus.Publish(eventbus.PlayerStateChanged, "stop")
}
