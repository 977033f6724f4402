// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"context"
	"errors"
)

// ErrCloseConnection is returned by the `close` handler. The connection
// loop recognizes it and tears down the socket without writing a response
// or an ACK.
var ErrCloseConnection = errors.New("client requested close")

// ErrKillDaemon is returned by the `kill` handler. The connection loop's
// owning server recognizes it and initiates a full shutdown after closing
// this connection.
var ErrKillDaemon = errors.New("client requested daemon shutdown")

// HandlerFunc executes one command against a Session and returns the
// accumulated response fields. Binary payloads, which don't fit the
// Key: value text model, ride on the same Response via SetBinary
// (response.go); the handlers that produce them are in handlers_binary.go.
type HandlerFunc func(ctx context.Context, s *Session, args []string) (*Response, error)

// handlers is the command dispatch table. Each handlers_*.go file
// registers its slice of commands via init() so the full protocol command
// taxonomy (spec.md §4.8) lives close to its implementation.
var handlers = map[string]HandlerFunc{}

func register(name string, fn HandlerFunc) {
	handlers[name] = fn
}

// CommandNames returns every registered command name, for `commands` and
// `notcommands`.
func CommandNames() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	return names
}
