// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"context"
	"strconv"
	"strings"

	"github.com/rmpd/rmpd/internal/playback"
	"github.com/rmpd/rmpd/internal/rmpderr"
)

func init() {
	register("play", handlePlay)
	register("playid", handlePlayID)
	register("pause", handlePause)
	register("stop", handleStop)
	register("next", handleNext)
	register("previous", handlePrevious)
	register("seek", handleSeek)
	register("seekid", handleSeekID)
	register("seekcur", handleSeekCur)
}

func playPosition(ctx context.Context, s *Session, pos int) error {
	p := s.partition()
	item, ok := p.Queue.Item(pos)
	if !ok {
		return rmpderr.Newf(rmpderr.Argument, "no such song at position %d", pos)
	}
	if err := s.d.Engine.Play(ctx, playback.Song{AbsPath: item.Path}); err != nil {
		return err
	}
	s.d.Status.CurrentPos = pos
	return nil
}

func handlePlay(ctx context.Context, s *Session, args []string) (*Response, error) {
	pos := 0
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, rmpderr.New(rmpderr.Argument, "position must be an integer")
		}
		pos = n
	}
	if err := playPosition(ctx, s, pos); err != nil {
		return nil, err
	}
	return &Response{}, nil
}

func handlePlayID(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "playid requires an id")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "id must be an integer")
	}
	p := s.partition()
	item, pos, ok := p.Queue.ItemByID(id)
	if !ok {
		return nil, rmpderr.Newf(rmpderr.Argument, "no such song id %d", id)
	}
	if err := s.d.Engine.Play(ctx, playback.Song{AbsPath: item.Path}); err != nil {
		return nil, err
	}
	s.d.Status.CurrentPos = pos
	return &Response{}, nil
}

func handlePause(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return &Response{}, s.d.Engine.Pause()
	}
	pause := args[0] == "1"
	return &Response{}, s.d.Engine.SetPause(pause)
}

func handleStop(ctx context.Context, s *Session, args []string) (*Response, error) {
	s.d.Engine.Stop()
	s.d.Status.CurrentPos = -1
	return &Response{}, nil
}

func handleNext(ctx context.Context, s *Session, args []string) (*Response, error) {
	p := s.partition()
	next := s.d.Status.CurrentPos + 1
	if next >= p.Queue.Len() {
		return nil, rmpderr.New(rmpderr.Argument, "no next song")
	}
	return &Response{}, playPosition(ctx, s, next)
}

func handlePrevious(ctx context.Context, s *Session, args []string) (*Response, error) {
	prev := s.d.Status.CurrentPos - 1
	if prev < 0 {
		return nil, rmpderr.New(rmpderr.Argument, "no previous song")
	}
	return &Response{}, playPosition(ctx, s, prev)
}

func handleSeek(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "seek requires position and time")
	}
	pos, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "position must be an integer")
	}
	seconds, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "time must be numeric")
	}
	if pos != s.d.Status.CurrentPos {
		if err := playPosition(ctx, s, pos); err != nil {
			return nil, err
		}
	}
	return &Response{}, s.d.Engine.Seek(seconds)
}

func handleSeekID(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "seekid requires id and time")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "id must be an integer")
	}
	seconds, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "time must be numeric")
	}
	p := s.partition()
	_, pos, ok := p.Queue.ItemByID(id)
	if !ok {
		return nil, rmpderr.Newf(rmpderr.Argument, "no such song id %d", id)
	}
	if pos != s.d.Status.CurrentPos {
		if err := playPosition(ctx, s, pos); err != nil {
			return nil, err
		}
	}
	return &Response{}, s.d.Engine.Seek(seconds)
}

func handleSeekCur(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "seekcur requires a time")
	}
	arg := args[0]
	relative := strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-")
	seconds, err := strconv.ParseFloat(strings.TrimPrefix(strings.TrimPrefix(arg, "+"), "-"), 64)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "time must be numeric")
	}
	if relative {
		target := s.d.Engine.Elapsed() + seconds
		if strings.HasPrefix(arg, "-") {
			target = s.d.Engine.Elapsed() - seconds
		}
		return &Response{}, s.d.Engine.Seek(target)
	}
	return &Response{}, s.d.Engine.Seek(seconds)
}
