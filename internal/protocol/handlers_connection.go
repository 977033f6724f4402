// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"context"
	"sort"
	"strconv"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

func init() {
	register("ping", handlePing)
	register("close", handleClose)
	register("password", handlePassword)
	register("binarylimit", handleBinaryLimit)
	register("protocol", handleProtocol)
	register("commands", handleCommands)
	register("notcommands", handleNotCommands)
	register("tagtypes", handleTagTypes)
	register("urlhandlers", handleURLHandlers)
	register("decoders", handleDecoders)
}

func handlePing(ctx context.Context, s *Session, args []string) (*Response, error) {
	return &Response{}, nil
}

func handleClose(ctx context.Context, s *Session, args []string) (*Response, error) {
	return nil, ErrCloseConnection
}

func handlePassword(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "password requires a value")
	}
	if err := s.d.Auth.Check(args[0]); err != nil {
		return nil, err
	}
	s.Conn.Authenticated = true
	return &Response{}, nil
}

func handleBinaryLimit(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "binarylimit requires a size")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 64 {
		return nil, rmpderr.New(rmpderr.Argument, "size must be an integer of at least 64")
	}
	s.Conn.BinaryLimit = n
	r := &Response{}
	r.Fieldf("binarylimit", "%d", n)
	return r, nil
}

// setEnableDisable applies the enable/disable/clear/all/reset subcommand
// form shared by `protocol` and `tagtypes` to the given tagSet wrapper.
func setEnableDisable(args []string, enable, disable, clear, all, reset func([]string)) error {
	if len(args) == 0 {
		return nil
	}
	switch args[0] {
	case "available":
		return nil
	case "all":
		all(nil)
	case "clear":
		clear(nil)
	case "enable":
		enable(args[1:])
	case "disable":
		disable(args[1:])
	case "reset":
		reset(args[1:])
	default:
		return rmpderr.Newf(rmpderr.Argument, "unknown subcommand %q", args[0])
	}
	return nil
}

func handleProtocol(ctx context.Context, s *Session, args []string) (*Response, error) {
	if err := setEnableDisable(args,
		s.Conn.EnableFeatures, s.Conn.DisableFeatures,
		func([]string) { s.Conn.ClearFeatures() },
		func([]string) { s.Conn.AllFeaturesEnabled() },
		s.Conn.ResetFeatures,
	); err != nil {
		return nil, err
	}
	r := &Response{}
	for _, name := range s.Conn.EnabledFeatureNames() {
		r.Field("feature", name)
	}
	return r, nil
}

func handleTagTypes(ctx context.Context, s *Session, args []string) (*Response, error) {
	if err := setEnableDisable(args,
		s.Conn.EnableTags, s.Conn.DisableTags,
		func([]string) { s.Conn.ClearTags() },
		func([]string) { s.Conn.AllTags() },
		s.Conn.ResetTags,
	); err != nil {
		return nil, err
	}
	r := &Response{}
	for _, name := range s.Conn.EnabledTagTypes() {
		r.Field("tagtype", name)
	}
	return r, nil
}

func handleCommands(ctx context.Context, s *Session, args []string) (*Response, error) {
	names := CommandNames()
	sort.Strings(names)
	r := &Response{}
	for _, name := range names {
		if s.d.Auth.Allow(name, s.Conn.Authenticated) {
			r.Field("command", name)
		}
	}
	return r, nil
}

func handleNotCommands(ctx context.Context, s *Session, args []string) (*Response, error) {
	names := CommandNames()
	sort.Strings(names)
	r := &Response{}
	for _, name := range names {
		if !s.d.Auth.Allow(name, s.Conn.Authenticated) {
			r.Field("command", name)
		}
	}
	return r, nil
}

func handleURLHandlers(ctx context.Context, s *Session, args []string) (*Response, error) {
	r := &Response{}
	for _, scheme := range []string{"file", "http", "https"} {
		r.Field("handler", scheme+"://")
	}
	return r, nil
}

func handleDecoders(ctx context.Context, s *Session, args []string) (*Response, error) {
	return &Response{}, nil
}
