// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package protocol implements the line-oriented MPD wire protocol: command
// framing, command lists, the response builder, the idle subsystem, and
// per-connection state, per spec.md §4.8-4.11.
package protocol

import (
	"strings"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

// ProtocolVersion is reported in the server greeting line.
const ProtocolVersion = "0.24.0"

// Greeting is written once, immediately after accept.
func Greeting() string {
	return "OK MPD " + ProtocolVersion + "\n"
}

// Command is one parsed protocol command line.
type Command struct {
	Name string
	Args []string
}

// parseLine tokenizes one command line into a Command. Arguments are
// either bare whitespace-delimited tokens or "..." double-quoted tokens;
// quote content is taken literally (no escape processing beyond the
// closing quote), matching spec.md §4.8's simple-case tokenizer.
func parseLine(line string) (Command, error) {
	tokens, err := tokenize(line)
	if err != nil {
		return Command{}, err
	}
	if len(tokens) == 0 {
		return Command{}, rmpderr.New(rmpderr.UnknownCommand, "empty command")
	}
	return Command{Name: tokens[0], Args: tokens[1:]}, nil
}

func tokenize(line string) ([]string, error) {
	var tokens []string
	var cur strings.Builder
	inQuotes := false
	hasToken := false

	flush := func() {
		if hasToken {
			tokens = append(tokens, cur.String())
			cur.Reset()
			hasToken = false
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes {
				inQuotes = false
				hasToken = true
				continue
			}
			inQuotes = true
			hasToken = true
		case c == ' ' || c == '\t':
			if inQuotes {
				cur.WriteByte(c)
				continue
			}
			flush()
		default:
			cur.WriteByte(c)
			hasToken = true
		}
	}
	if inQuotes {
		return nil, rmpderr.New(rmpderr.Argument, "unterminated quoted argument")
	}
	flush()
	return tokens, nil
}

// splitLines splits raw input on \n, trims a trailing \r from each line,
// and drops blank lines, per spec.md §4.8 step 1.
func splitLines(input string) []string {
	raw := strings.Split(input, "\n")
	out := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

const (
	commandListBegin   = "command_list_begin"
	commandListOKBegin = "command_list_ok_begin"
	commandListEnd     = "command_list_end"
)
