// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"context"

	"github.com/rmpd/rmpd/internal/advancer"
	"github.com/rmpd/rmpd/internal/catalog"
	"github.com/rmpd/rmpd/internal/eventbus"
	"github.com/rmpd/rmpd/internal/mount"
	"github.com/rmpd/rmpd/internal/output"
	"github.com/rmpd/rmpd/internal/partition"
	"github.com/rmpd/rmpd/internal/playback"
	"github.com/rmpd/rmpd/internal/rmpderr"
	"github.com/rmpd/rmpd/internal/security"
)

// Fingerprinter computes an acoustic fingerprint for a cataloged song,
// keyed by its absolute path. Implemented outside this package by whatever
// decoder/Chromaprint binding backs playback; used only by getfingerprint.
type Fingerprinter interface {
	Fingerprint(absPath string) (string, error)
}

// Daemon bundles every shared component one Session needs to execute
// commands; one Daemon backs every connection, one Session per connection.
type Daemon struct {
	Store         *catalog.Store
	Partitions    *partition.Manager
	Engine        *playback.Engine
	Status        *advancer.Status
	Mounts        *mount.Manager
	Outputs       *output.Manager
	Auth          *security.Authenticator
	Bus           *eventbus.Bus
	TagReader     catalog.TagReader
	Fingerprinter Fingerprinter
	MusicRoot     string
	StateFilePath string
	UpdateJobID   int // 0 means no rescan running
}

// Session is one client connection's mutable state plus a reference to the
// shared Daemon.
type Session struct {
	d    *Daemon
	Conn *ConnState
}

// NewSession starts a connection in the documented default state.
func NewSession(d *Daemon, binaryLimit int) *Session {
	return &Session{d: d, Conn: NewConnState(binaryLimit)}
}

// partition returns the connection's current partition, falling back to
// default if it has somehow been deleted out from under the connection.
func (s *Session) partition() *partition.Partition {
	if p, ok := s.d.Partitions.Get(s.Conn.Partition); ok {
		return p
	}
	p, _ := s.d.Partitions.Get(partition.DefaultName)
	return p
}

// Handle dispatches one parsed command and returns its Response.
func (s *Session) Handle(ctx context.Context, cmd Command) (*Response, error) {
	if !s.d.Auth.Allow(cmd.Name, s.Conn.Authenticated) {
		return nil, rmpderr.Newf(rmpderr.Permission, "you don't have permission for %q", cmd.Name)
	}

	handler, ok := handlers[cmd.Name]
	if !ok {
		return nil, rmpderr.Newf(rmpderr.UnknownCommand, "unknown command %q", cmd.Name)
	}
	return handler(ctx, s, cmd.Args)
}
