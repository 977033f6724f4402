// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package rmpdoptions holds the plain configuration struct the daemon core
// is constructed from. Loading this struct from a config file or flags is
// an external collaborator's responsibility (see SPEC_FULL.md Ambient
// Stack / Configuration); this package never reads a file or parses argv.
package rmpdoptions

import "time"

// Options configures one daemon instance. The out-of-scope CLI/config
// loader builds one of these and hands it to the daemon constructor.
type Options struct {
	// ListenAddress is the MPD wire-protocol TCP (or unix-socket) address.
	ListenAddress string

	// CompanionHTTPAddress serves /healthz, /metrics, /docs, /ws. Empty
	// disables the companion surface entirely.
	CompanionHTTPAddress string

	MusicDirectory    string
	DBFile            string
	StateFile         string
	PlaylistDirectory string

	// ReadTimeout terminates connections that are inactive and not in
	// MPD-idle mode. Default 60s; MPD-idle connections never time out.
	ReadTimeout time.Duration

	// BinaryLimit is the default per-connection chunk-size cap for binary
	// responses. Must be >= 64, the smallest size the `binarylimit` command
	// accepts; the daemon hands this value to each connection unchecked.
	BinaryLimit int

	// DoP primer/drain timings, overridable for DAC-specific tuning.
	DoPPrimerMsLow  int // sample_rate <= 200kHz
	DoPPrimerMsMid  int // sample_rate <= 400kHz
	DoPPrimerMsHigh int // above 400kHz
	DoPDrainMs      int

	// PasswordHash is the bcrypt hash of the single shared password. Empty
	// means no password is required (every connection is pre-authenticated).
	PasswordHash string

	LogLevel  string
	LogFormat string
}

// DefaultOptions returns the documented defaults for fields the wire
// protocol specifies a default for (binarylimit, read timeout, DoP timing).
func DefaultOptions() Options {
	return Options{
		ListenAddress: "127.0.0.1:6600",
		ReadTimeout:   60 * time.Second,
		BinaryLimit:   8192,

		DoPPrimerMsLow:  200,
		DoPPrimerMsMid:  100,
		DoPPrimerMsHigh: 50,
		DoPDrainMs:      100,

		LogLevel:  "info",
		LogFormat: "json",
	}
}
