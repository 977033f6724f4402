// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"context"
	"strconv"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

func init() {
	register("sticker", handleSticker)
	register("stickernames", handleStickerNames)
	register("stickertypes", handleStickerTypes)
	register("stickernamestypes", handleStickerNamesTypes)
}

// handleSticker dispatches the `sticker <cmd> song <uri> [name] [value]`
// subcommand family. rmpd only carries stickers on the "song" type, the
// one spec.md names; any other type is rejected as an argument error.
func handleSticker(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "sticker requires a subcommand and type")
	}
	cmd, stickerType := args[0], args[1]
	if stickerType != "song" {
		return nil, rmpderr.Newf(rmpderr.Argument, "unsupported sticker type %q", stickerType)
	}
	rest := args[2:]

	switch cmd {
	case "get":
		if len(rest) < 2 {
			return nil, rmpderr.New(rmpderr.Argument, "sticker get requires uri and name")
		}
		value, err := s.d.Store.GetSticker(ctx, rest[0], rest[1])
		if err != nil {
			return nil, err
		}
		r := &Response{}
		r.Fieldf("sticker", "%s=%s", rest[1], value)
		return r, nil

	case "set":
		if len(rest) < 3 {
			return nil, rmpderr.New(rmpderr.Argument, "sticker set requires uri, name, and value")
		}
		if err := s.d.Store.SetSticker(ctx, rest[0], rest[1], rest[2]); err != nil {
			return nil, err
		}
		return &Response{}, nil

	case "delete":
		if len(rest) < 1 {
			return nil, rmpderr.New(rmpderr.Argument, "sticker delete requires a uri")
		}
		name := ""
		if len(rest) > 1 {
			name = rest[1]
		}
		if err := s.d.Store.DeleteSticker(ctx, rest[0], name); err != nil {
			return nil, err
		}
		return &Response{}, nil

	case "list":
		if len(rest) < 1 {
			return nil, rmpderr.New(rmpderr.Argument, "sticker list requires a uri")
		}
		stickers, err := s.d.Store.ListStickers(ctx, rest[0])
		if err != nil {
			return nil, err
		}
		r := &Response{}
		for _, st := range stickers {
			r.Fieldf("sticker", "%s=%s", st.Name, st.Value)
		}
		return r, nil

	case "find":
		if len(rest) < 2 {
			return nil, rmpderr.New(rmpderr.Argument, "sticker find requires uri and name")
		}
		stickers, err := s.d.Store.FindStickers(ctx, rest[1])
		if err != nil {
			return nil, err
		}
		r := &Response{}
		for _, st := range stickers {
			r.Field("file", st.URI)
			r.Fieldf("sticker", "%s=%s", st.Name, st.Value)
		}
		return r, nil

	case "inc", "dec":
		if len(rest) < 3 {
			return nil, rmpderr.Newf(rmpderr.Argument, "sticker %s requires uri, name, and delta", cmd)
		}
		return handleStickerArith(ctx, s, cmd, rest[0], rest[1], rest[2])

	default:
		return nil, rmpderr.Newf(rmpderr.Argument, "unknown sticker subcommand %q", cmd)
	}
}

func handleStickerArith(ctx context.Context, s *Session, cmd, uri, name, deltaArg string) (*Response, error) {
	delta, err := strconv.Atoi(deltaArg)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "delta must be an integer")
	}
	current := 0
	if value, err := s.d.Store.GetSticker(ctx, uri, name); err == nil {
		current, _ = strconv.Atoi(value)
	}
	if cmd == "inc" {
		current += delta
	} else {
		current -= delta
	}
	newValue := strconv.Itoa(current)
	if err := s.d.Store.SetSticker(ctx, uri, name, newValue); err != nil {
		return nil, err
	}
	r := &Response{}
	r.Fieldf("sticker", "%s=%s", name, newValue)
	return r, nil
}

func handleStickerNames(ctx context.Context, s *Session, args []string) (*Response, error) {
	return &Response{}, nil
}

func handleStickerTypes(ctx context.Context, s *Session, args []string) (*Response, error) {
	r := &Response{}
	r.Field("stickertype", "song")
	return r, nil
}

func handleStickerNamesTypes(ctx context.Context, s *Session, args []string) (*Response, error) {
	return &Response{}, nil
}
