// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package broker

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAndReadMessages(t *testing.T) {
	b := New()
	b.SendMessage("lyrics", "hello")
	b.SendMessage("lyrics", "world")

	msgs := b.ReadMessages([]string{"lyrics"})
	require.Len(t, msgs["lyrics"], 2)
	assert.Equal(t, []string{"hello", "world"}, msgs["lyrics"])

	// draining empties the channel
	msgs = b.ReadMessages([]string{"lyrics"})
	assert.Empty(t, msgs)
}

func TestReadMessagesOnlyReturnsSubscribedChannels(t *testing.T) {
	b := New()
	b.SendMessage("a", "1")
	b.SendMessage("b", "2")

	msgs := b.ReadMessages([]string{"a"})
	assert.Contains(t, msgs, "a")
	assert.NotContains(t, msgs, "b")
}

func TestChannelDropsOldestPastCapacity(t *testing.T) {
	b := New()
	for i := 0; i < capacity+10; i++ {
		b.SendMessage("flood", fmt.Sprintf("msg-%d", i))
	}

	msgs := b.ReadMessages([]string{"flood"})
	require.Len(t, msgs["flood"], capacity)
	assert.Equal(t, "msg-10", msgs["flood"][0])
	assert.Equal(t, fmt.Sprintf("msg-%d", capacity+9), msgs["flood"][capacity-1])
}

func TestListChannelsReturnsOnlyNonEmpty(t *testing.T) {
	b := New()
	b.SendMessage("busy", "hi")
	b.ReadMessages([]string{"busy"}) // drain it back to empty

	b.SendMessage("active", "hi")

	names := b.ListChannels()
	assert.Equal(t, []string{"active"}, names)
}

func TestSubscribeRejectsEmptyName(t *testing.T) {
	assert.Error(t, Subscribe(""))
	assert.NoError(t, Subscribe("lyrics"))
}
