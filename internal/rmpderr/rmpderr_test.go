// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package rmpderr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindACKCode(t *testing.T) {
	cases := []struct {
		kind Kind
		code int
	}{
		{Argument, 2},
		{Parse, 2},
		{UnknownCommand, 5},
		{Exists, 51},
		{NotExists, 52},
		{System, 50},
		{Player, 50},
		{Storage, 50},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.kind.ACKCode(), tc.kind.String())
	}
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(System, nil))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(System, cause)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
}

func TestAsUnwrapsChain(t *testing.T) {
	base := New(NotExists, "playlist missing")
	wrapped := fmt.Errorf("loading playlist: %w", base)

	found, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, NotExists, found.Kind)
}
