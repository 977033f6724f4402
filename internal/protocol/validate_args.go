// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"github.com/rmpd/rmpd/internal/rmpderr"
	"github.com/rmpd/rmpd/internal/validation"
)

// volumeArgs validates setvol's single parameter against MPD's documented
// 0-100 range.
type volumeArgs struct {
	Volume int `validate:"min=0,max=100"`
}

// priorityArgs validates prio/prioid's priority parameter against MPD's
// documented 0-255 range (queue.Item.Priority is a uint8).
type priorityArgs struct {
	Priority int `validate:"min=0,max=255"`
}

// crossfadeArgs validates crossfade's seconds parameter.
type crossfadeArgs struct {
	Seconds int `validate:"min=0"`
}

// validateArgs runs v through go-playground/validator via internal/validation
// and maps any failure onto the closed Argument ACK kind, so every numeric
// command parameter shares one validation and error-reporting path instead
// of each handler hand-rolling its own bounds check.
func validateArgs(v interface{}) error {
	if verr := validation.ValidateStruct(v); verr != nil {
		return rmpderr.New(rmpderr.Argument, verr.Error())
	}
	return nil
}
