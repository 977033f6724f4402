// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoPasswordConfiguredAllowsEverything(t *testing.T) {
	auth := NewAuthenticator("")
	assert.False(t, auth.RequiresPassword())
	assert.True(t, auth.Allow("kill", false))
	assert.NoError(t, auth.Check("anything"))
}

func TestPasswordCheckRoundTrip(t *testing.T) {
	hash, err := HashPassword("letmein")
	require.NoError(t, err)

	auth := NewAuthenticator(hash)
	assert.NoError(t, auth.Check("letmein"))

	err = auth.Check("wrong")
	require.Error(t, err)
	rerr, ok := err.(interface{ Error() string })
	require.True(t, ok)
	assert.Contains(t, rerr.Error(), "incorrect password")
}

func TestAllowGatesControlCommandsPreAuth(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	auth := NewAuthenticator(hash)

	assert.True(t, auth.Allow("ping", false))
	assert.True(t, auth.Allow("password", false))
	assert.False(t, auth.Allow("play", false))
	assert.False(t, auth.Allow("kill", false))

	assert.True(t, auth.Allow("play", true))
	assert.True(t, auth.Allow("kill", true))
}

func TestPermissionForDefaultsToControl(t *testing.T) {
	assert.Equal(t, PermissionRead, PermissionFor("ping"))
	assert.Equal(t, PermissionAdmin, PermissionFor("kill"))
	assert.Equal(t, PermissionControl, PermissionFor("play"))
	assert.Equal(t, PermissionControl, PermissionFor("some_unknown_future_command"))
}
