// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package security implements rmpd's single-tier authentication: a shared
// password checked in constant time, and a static per-command permission
// table distinguishing pre-auth commands from ones requiring that password.
package security

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

// Permission is the level a command requires.
type Permission int

const (
	// PermissionRead commands are reachable before authentication.
	PermissionRead Permission = iota
	// PermissionControl commands mutate playback/queue/catalog state.
	PermissionControl
	// PermissionAdmin commands affect the server process itself (kill, partitions).
	PermissionAdmin
)

// commandPermissions mirrors MPD's default permission groups. Anything not
// listed defaults to PermissionControl (the common case for mutating
// commands), so the table only needs to carry the exceptions.
var commandPermissions = map[string]Permission{
	"ping":        PermissionRead,
	"close":       PermissionRead,
	"commands":    PermissionRead,
	"notcommands": PermissionRead,
	"password":    PermissionRead,
	"tagtypes":    PermissionRead,
	"urlhandlers": PermissionRead,
	"decoders":    PermissionRead,

	"kill":         PermissionAdmin,
	"newpartition": PermissionAdmin,
	"delpartition": PermissionAdmin,
	"mount":        PermissionAdmin,
	"unmount":      PermissionAdmin,
}

// PermissionFor returns the permission level a command name requires.
// Unrecognized commands are treated as PermissionControl; the framer has
// already rejected truly unknown commands before permission checking runs.
func PermissionFor(command string) Permission {
	if p, ok := commandPermissions[command]; ok {
		return p
	}
	return PermissionControl
}

// Authenticator checks the single shared password and tracks whether a
// given connection has supplied it.
type Authenticator struct {
	hash []byte // bcrypt hash; nil means no password is required
}

// NewAuthenticator builds an Authenticator from a bcrypt hash produced by
// the external config loader. An empty hash means every connection is
// treated as already authenticated.
func NewAuthenticator(bcryptHash string) *Authenticator {
	if bcryptHash == "" {
		return &Authenticator{}
	}
	return &Authenticator{hash: []byte(bcryptHash)}
}

// RequiresPassword reports whether any password has been configured.
func (a *Authenticator) RequiresPassword() bool {
	return len(a.hash) > 0
}

// Check compares candidate against the configured password in constant
// time via bcrypt. Returns a Password error (ACK code 3) on mismatch,
// matching the `password` command's documented ACK behavior.
func (a *Authenticator) Check(candidate string) error {
	if !a.RequiresPassword() {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(candidate)); err != nil {
		return rmpderr.New(rmpderr.Password, "incorrect password")
	}
	return nil
}

// Allow reports whether a connection in the given auth state may invoke
// command. A connection that has authenticated (or no password is
// configured) may invoke anything; otherwise only PermissionRead commands
// are reachable.
func (a *Authenticator) Allow(command string, authenticated bool) bool {
	if !a.RequiresPassword() || authenticated {
		return true
	}
	return PermissionFor(command) == PermissionRead
}

// HashPassword is a helper for the external config loader to produce the
// bcrypt hash this package expects to be handed at construction time.
func HashPassword(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", rmpderr.Wrap(rmpderr.System, err)
	}
	return string(hashed), nil
}
