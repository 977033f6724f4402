// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"fmt"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

// ackLine formats a protocol ACK line per spec.md §4.8: the code, the index
// of the failing command within a command list (0 outside one), the
// command name, and a human-readable message.
func ackLine(code int, listIdx int, command, message string) string {
	return fmt.Sprintf("ACK [%d@%d] {%s} %s\n", code, listIdx, command, message)
}

// ackForError renders err (an *rmpderr.Error if possible, otherwise a
// generic system failure) as an ACK line.
func ackForError(err error, listIdx int, command string) string {
	if rerr, ok := rmpderr.As(err); ok {
		return ackLine(rerr.Kind.ACKCode(), listIdx, command, rerr.Message)
	}
	return ackLine(rmpderr.System.ACKCode(), listIdx, command, err.Error())
}
