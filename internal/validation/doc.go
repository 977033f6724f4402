// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package validation backs internal/protocol's command-argument bounds
// checks.
//
// # Quick Start
//
// A handler parses its positional args into a small struct tagged for the
// bounds it needs, then calls ValidateStruct:
//
//	type volumeArgs struct {
//	    Volume int `validate:"min=0,max=100"`
//	}
//
//	if verr := validation.ValidateStruct(volumeArgs{Volume: v}); verr != nil {
//	    return nil, rmpderr.New(rmpderr.Argument, verr.Error())
//	}
//
// # Scope
//
// Only a handful of MPD commands carry numeric ranges worth a shared check
// (setvol's 0-100 volume, crossfade's non-negative seconds, prio/prioid's
// 0-255 priority); most handlers still parse []string args directly, per
// the command-dispatch style the rest of internal/protocol uses. This
// package exists for the subset that benefits from a struct-tag check, not
// as a blanket request-validation layer.
package validation
