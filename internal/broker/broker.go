// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package broker implements the client messaging channels behind the
// `subscribe`/`sendmessage`/`readmessages` commands, per spec.md §4.14.
package broker

import (
	"sort"
	"sync"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

// capacity is the bounded FIFO size per channel; the oldest message is
// dropped once a channel is full.
const capacity = 100

// Broker holds one partition's named message channels.
type Broker struct {
	mu       sync.Mutex
	channels map[string][]string
}

// New returns an empty broker, scoped to a single partition by convention
// (the partition manager owns one Broker per partition).
func New() *Broker {
	return &Broker{channels: make(map[string][]string)}
}

// SendMessage appends text to channel, dropping the oldest message first
// if the channel is already at capacity.
func (b *Broker) SendMessage(channel, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	queue := b.channels[channel]
	if len(queue) >= capacity {
		queue = queue[1:]
	}
	b.channels[channel] = append(queue, text)
}

// ReadMessages drains and returns every message from every channel named
// in subscribed, in a per-channel FIFO order. Channel names not present
// in subscribed are left untouched.
func (b *Broker) ReadMessages(subscribed []string) map[string][]string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make(map[string][]string)
	for _, channel := range subscribed {
		if msgs, ok := b.channels[channel]; ok && len(msgs) > 0 {
			out[channel] = msgs
			delete(b.channels, channel)
		}
	}
	return out
}

// ListChannels returns the names of every channel currently holding at
// least one undelivered message, sorted for deterministic output.
func (b *Broker) ListChannels() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	names := make([]string, 0, len(b.channels))
	for name, msgs := range b.channels {
		if len(msgs) > 0 {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// validChannelName rejects empty names, per the protocol's channel-name
// constraints mirrored from subscribe/unsubscribe validation.
func validChannelName(name string) error {
	if name == "" {
		return rmpderr.New(rmpderr.Argument, "channel name must not be empty")
	}
	return nil
}

// Subscribe validates a channel name before a connection starts tracking
// it as subscribed; the broker itself does not track per-connection
// subscriptions, that belongs to connection state (§4.11).
func Subscribe(name string) error {
	return validChannelName(name)
}
