// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package eventbus broadcasts player-subsystem events to many subscribers
// with lossy catch-up: a subscriber that falls behind skips to the newest
// available event rather than blocking the publisher.
package eventbus

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/rmpd/rmpd/internal/cache"
	"github.com/rmpd/rmpd/internal/logging"
	"github.com/rmpd/rmpd/internal/metrics"
)

// Kind is the closed set of event kinds a component may publish.
type Kind string

const (
	DatabaseUpdateStarted  Kind = "DatabaseUpdateStarted"
	DatabaseUpdateFinished Kind = "DatabaseUpdateFinished"
	DatabaseUpdateProgress Kind = "DatabaseUpdateProgress"
	PlayerStateChanged     Kind = "PlayerStateChanged"
	SongChanged            Kind = "SongChanged"
	SongAdded              Kind = "SongAdded"
	SongUpdated            Kind = "SongUpdated"
	SongDeleted            Kind = "SongDeleted"
	SongFinished           Kind = "SongFinished"
	VolumeChanged          Kind = "VolumeChanged"
	PositionChanged        Kind = "PositionChanged"
	BitrateChanged         Kind = "BitrateChanged"
	FilesystemWatchStarted Kind = "FilesystemWatchStarted"
	FilesystemWatchStopped Kind = "FilesystemWatchStopped"
)

// DatabaseUpdateProgressPayload is the payload for DatabaseUpdateProgress.
type DatabaseUpdateProgressPayload struct {
	Scanned int
	Total   int
}

// SongDeletedPayload is the payload for SongDeleted.
type SongDeletedPayload struct {
	Path string
}

// Event is one published notification. Payload is kind-specific and left as
// interface{}; subscribers type-assert based on Kind.
type Event struct {
	Kind      Kind
	Payload   interface{}
	Published time.Time
}

const topic = "rmpd.events"

// bufferSize is the bounded-channel capacity spec.md §4.1 requires (>= 1024).
const bufferSize = 1024

// registryTTL bounds how long a published Event's typed payload survives in
// the side registry, comfortably longer than any subscriber's processing lag.
const registryTTL = 2 * time.Minute

// Bus is a broadcast fan-out of Events, backed by a watermill gochannel
// pub/sub. Publish never blocks: a subscriber whose channel is full is
// dropped from the slow path and catches up from the next published event.
//
// watermill's Message carries an opaque byte payload meant for wire
// transport; since this bus is purely in-process, the typed Event is kept
// in a side TTL-backed registry keyed by message UUID instead of being
// serialized, so subscribers get the original Go value back (not a
// re-decoded map) after a type assertion on Kind.
type Bus struct {
	pubsub   *gochannel.GoChannel
	registry *cache.Cache
	lag      *cache.SlidingWindowStore
}

// New creates a Bus. Close releases the underlying pub/sub.
func New() *Bus {
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            bufferSize,
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NopLogger{},
	)
	return &Bus{
		pubsub:   pubsub,
		registry: cache.New(registryTTL),
		lag:      cache.NewSlidingWindowStore(5*time.Minute, 10, 0),
	}
}

// Publish fans an event out to every subscriber. Never blocks the caller.
func (b *Bus) Publish(kind Kind, payload interface{}) {
	id := watermill.NewUUID()
	ev := Event{Kind: kind, Payload: payload, Published: time.Now()}
	b.registry.Set(id, ev)

	msg := message.NewMessage(id, []byte(id))
	if err := b.pubsub.Publish(topic, msg); err != nil {
		logging.Warn().Err(err).Str("kind", string(kind)).Msg("event publish dropped")
		return
	}
	metrics.RecordEventBusPublish(string(kind))
}

// Subscribe returns a channel of Events for this subscriber. id identifies
// the subscriber for lag accounting (e.g. a connection ID).
func (b *Bus) Subscribe(ctx context.Context, subscriberID string) (<-chan Event, error) {
	raw, err := b.pubsub.Subscribe(ctx, topic)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, bufferSize)
	go func() {
		defer close(out)
		for msg := range raw {
			msg.Ack()
			data, ok := b.registry.Get(string(msg.Payload))
			if !ok {
				continue // registry entry expired before delivery; skip
			}
			ev := data.(Event)

			select {
			case out <- ev:
				metrics.RecordEventBusDelivery(string(ev.Kind))
				continue
			default:
			}

			// Slow subscriber: drop the oldest buffered event, record lag,
			// and deliver the newest one in its place.
			b.lag.Increment(subscriberID)
			metrics.RecordEventBusDrop(subscriberID)
			metrics.UpdateEventBusLag(subscriberID, b.lag.Count(subscriberID))
			select {
			case <-out:
			default:
			}
			select {
			case out <- ev:
				metrics.RecordEventBusDelivery(string(ev.Kind))
			default:
			}
		}
	}()
	return out, nil
}

// LagSamples returns how many events subscriber id has dropped within the
// trailing window, for observability.
func (b *Bus) LagSamples(subscriberID string) int64 {
	return b.lag.Count(subscriberID)
}

// Close releases the underlying pub/sub and all subscriber channels.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
