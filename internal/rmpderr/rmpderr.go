// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package rmpderr defines the closed error-kind taxonomy used across rmpd's
// components and the numeric ACK codes the protocol layer maps them to.
package rmpderr

import "fmt"

// Kind is one of the closed set of error categories a component can raise.
type Kind int

const (
	// Argument covers malformed commands, bad ranges, and unknown option values.
	Argument Kind = iota
	// UnknownCommand is emitted when the framer does not recognize the first token.
	UnknownCommand
	// Exists covers stored-playlist/mount/partition name collisions.
	Exists
	// NotExists covers missing songs, playlists, mounts, or partitions.
	NotExists
	// System covers catalog I/O failure, sink open failure, file-not-found.
	System
	// Parse covers filter-grammar errors, surfaced to the client as Argument.
	Parse
	// Player covers decoder/seek/open failures.
	Player
	// Storage covers mount-backend failures.
	Storage
	// Password covers `password` command rejections (ACK code 3).
	Password
	// Permission covers commands a connection isn't authorized for yet (ACK code 4).
	Permission
	// PlaylistLoad covers `load`/`save` failures specific to stored playlists (ACK code 55).
	PlaylistLoad
)

func (k Kind) String() string {
	switch k {
	case Argument:
		return "argument"
	case UnknownCommand:
		return "unknown_command"
	case Exists:
		return "exists"
	case NotExists:
		return "not_exists"
	case System:
		return "system"
	case Parse:
		return "parse"
	case Player:
		return "player"
	case Storage:
		return "storage"
	case Password:
		return "password"
	case Permission:
		return "permission"
	case PlaylistLoad:
		return "playlist_load"
	default:
		return "unknown"
	}
}

// ACKCode returns the MPD numeric error code for the kind.
func (k Kind) ACKCode() int {
	switch k {
	case Argument, Parse:
		return 2
	case UnknownCommand:
		return 5
	case Password:
		return 3
	case Permission:
		return 4
	case Exists:
		return 51
	case NotExists:
		return 52
	case PlaylistLoad:
		return 55
	case System, Player, Storage:
		return 50
	default:
		return 50
	}
}

// Error is the typed error every component package returns. The protocol
// layer reads Kind directly instead of pattern-matching an opaque error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf constructs an Error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to a lower-level error without losing it.
func Wrap(kind Kind, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: err.Error(), Err: err}
}

// As reports whether err is (or wraps) an *Error and returns it.
func As(err error) (*Error, bool) {
	var e *Error
	if ok := errorsAs(err, &e); ok {
		return e, true
	}
	return nil, false
}

func errorsAs(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
