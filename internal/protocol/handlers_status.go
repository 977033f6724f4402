// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"context"
	"strconv"

	"github.com/rmpd/rmpd/internal/advancer"
	"github.com/rmpd/rmpd/internal/playback"
	"github.com/rmpd/rmpd/internal/rmpderr"
)

func init() {
	register("status", handleStatus)
	register("stats", handleStats)
	register("idle", handleIdle)
	register("noidle", handleNoIdle)
	register("setvol", handleSetVol)
	register("volume", handleVolumeRelative)
	register("getvol", handleGetVol)
	register("repeat", handleRepeat)
	register("random", handleRandom)
	register("single", handleSingle)
	register("consume", handleConsume)
	register("crossfade", handleCrossfade)
	register("mixrampdb", handleMixrampDB)
	register("mixrampdelay", handleMixrampDelay)
	register("replay_gain_mode", handleReplayGainMode)
	register("replay_gain_status", handleReplayGainStatus)
}

func boolArg(args []string) (bool, error) {
	if len(args) == 0 {
		return false, rmpderr.New(rmpderr.Argument, "expected 0 or 1")
	}
	switch args[0] {
	case "1":
		return true, nil
	case "0":
		return false, nil
	default:
		return false, rmpderr.New(rmpderr.Argument, "expected 0 or 1")
	}
}

func triStateArg(args []string) (advancer.TriState, error) {
	if len(args) == 0 {
		return advancer.Off, rmpderr.New(rmpderr.Argument, "expected 0, 1, or oneshot")
	}
	switch args[0] {
	case "0":
		return advancer.Off, nil
	case "1":
		return advancer.On, nil
	case "oneshot":
		return advancer.Oneshot, nil
	default:
		return advancer.Off, rmpderr.New(rmpderr.Argument, "expected 0, 1, or oneshot")
	}
}

func handleStatus(ctx context.Context, s *Session, args []string) (*Response, error) {
	eng := s.d.Engine
	snap := eng.Snapshot()
	p := s.partition()
	status := s.d.Status

	var currentID uint64
	if status.CurrentPos >= 0 {
		if item, ok := p.Queue.Item(status.CurrentPos); ok {
			currentID = item.ID
		}
	}

	ps := PlayerStatus{
		Volume:          int(eng.Volume()),
		State:           eng.State(),
		CurrentPos:      status.CurrentPos,
		CurrentID:       currentID,
		Elapsed:         eng.Elapsed(),
		Duration:        snap.Duration,
		Bitrate:         snap.Bitrate,
		SampleRate:      snap.SampleRate,
		Bits:            snap.Bits,
		Channels:        snap.Channels,
		Random:          status.Random,
		Repeat:          status.Repeat,
		Single:          int(status.Single),
		Consume:         int(status.Consume),
		CrossfadeSecs:   snap.CrossfadeSecs,
		MixrampDB:       status.MixrampDB,
		MixrampDelay:    status.MixrampDelay,
		PlaylistVersion: p.Queue.Version(),
		PlaylistLength:  p.Queue.Len(),
		UpdatingJobID:   s.d.UpdateJobID,
	}

	r := &Response{}
	r.WriteStatus(ps)
	return r, nil
}

func handleStats(ctx context.Context, s *Session, args []string) (*Response, error) {
	stats, err := s.d.Store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	r := &Response{}
	r.Fieldf("artists", "%d", stats.Artists)
	r.Fieldf("albums", "%d", stats.Albums)
	r.Fieldf("songs", "%d", stats.Songs)
	r.Fieldf("uptime", "%d", 0)
	r.Fieldf("playtime", "%d", 0)
	r.Fieldf("db_playtime", "%d", int(stats.DBPlayTime))
	r.Fieldf("db_update", "%d", 0)
	return r, nil
}

// handleIdle blocks until a subsystem this connection cares about changes,
// or the client sends noidle (ctx is canceled by the connection loop in
// that case). Any subsystem already pending from before the idle call is
// reported immediately.
func handleIdle(ctx context.Context, s *Session, args []string) (*Response, error) {
	filter := make([]Subsystem, 0, len(args))
	for _, a := range args {
		filter = append(filter, Subsystem(a))
	}

	if s.Conn.IdleMatches(filter) {
		return drainIdleResponse(s, filter), nil
	}

	if s.d.Bus == nil {
		<-ctx.Done()
		return &Response{}, nil
	}

	events, err := s.d.Bus.Subscribe(ctx, "idle-"+s.Conn.Partition)
	if err != nil {
		return nil, rmpderr.Wrap(rmpderr.System, err)
	}
	for {
		select {
		case <-ctx.Done():
			return &Response{}, nil
		case ev, ok := <-events:
			if !ok {
				return &Response{}, nil
			}
			for _, sub := range eventSubsystems(ev.Kind, s.d.UpdateJobID != 0) {
				s.Conn.MarkIdle(sub)
			}
			if s.Conn.IdleMatches(filter) {
				return drainIdleResponse(s, filter), nil
			}
		}
	}
}

func drainIdleResponse(s *Session, filter []Subsystem) *Response {
	r := &Response{}
	for _, sub := range s.Conn.DrainIdle() {
		if len(filter) == 0 || containsSubsystem(filter, sub) {
			r.Field("changed", string(sub))
		}
	}
	return r
}

func containsSubsystem(list []Subsystem, s Subsystem) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// handleNoIdle is a no-op here: the connection loop is responsible for
// canceling the context passed into a pending idle call when noidle
// arrives on the same connection.
func handleNoIdle(ctx context.Context, s *Session, args []string) (*Response, error) {
	return &Response{}, nil
}

func handleSetVol(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "setvol requires a volume")
	}
	v, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "volume must be an integer")
	}
	if err := validateArgs(volumeArgs{Volume: v}); err != nil {
		return nil, err
	}
	s.d.Engine.SetVolume(uint8(v))
	return &Response{}, nil
}

func handleVolumeRelative(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "volume requires a delta")
	}
	delta, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "delta must be an integer")
	}
	eng := s.d.Engine
	v := int(eng.Volume()) + delta
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	eng.SetVolume(uint8(v))
	return &Response{}, nil
}

func handleGetVol(ctx context.Context, s *Session, args []string) (*Response, error) {
	r := &Response{}
	r.Fieldf("volume", "%d", s.d.Engine.Volume())
	return r, nil
}

func handleRepeat(ctx context.Context, s *Session, args []string) (*Response, error) {
	v, err := boolArg(args)
	if err != nil {
		return nil, err
	}
	s.d.Status.Repeat = v
	return &Response{}, nil
}

func handleRandom(ctx context.Context, s *Session, args []string) (*Response, error) {
	v, err := boolArg(args)
	if err != nil {
		return nil, err
	}
	s.d.Status.Random = v
	return &Response{}, nil
}

func handleSingle(ctx context.Context, s *Session, args []string) (*Response, error) {
	v, err := triStateArg(args)
	if err != nil {
		return nil, err
	}
	s.d.Status.Single = v
	return &Response{}, nil
}

func handleConsume(ctx context.Context, s *Session, args []string) (*Response, error) {
	v, err := triStateArg(args)
	if err != nil {
		return nil, err
	}
	s.d.Status.Consume = v
	return &Response{}, nil
}

func handleCrossfade(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "crossfade requires seconds")
	}
	seconds, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "seconds must be an integer")
	}
	if err := validateArgs(crossfadeArgs{Seconds: seconds}); err != nil {
		return nil, err
	}
	s.d.Engine.SetCrossfade(seconds)
	return &Response{}, nil
}

func handleMixrampDB(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "mixrampdb requires a value")
	}
	db, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "value must be numeric")
	}
	s.d.Status.MixrampDB = db
	return &Response{}, nil
}

func handleMixrampDelay(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "mixrampdelay requires a value")
	}
	delay, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "value must be numeric")
	}
	s.d.Status.MixrampDelay = delay
	return &Response{}, nil
}

func handleReplayGainMode(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "replay_gain_mode requires a mode")
	}
	mode := playback.ReplayGainMode(args[0])
	switch mode {
	case playback.ReplayGainOff, playback.ReplayGainTrack, playback.ReplayGainAlbum, playback.ReplayGainAuto:
		s.d.Engine.SetReplayGainMode(mode)
		return &Response{}, nil
	default:
		return nil, rmpderr.Newf(rmpderr.Argument, "unrecognized replay gain mode %q", args[0])
	}
}

func handleReplayGainStatus(ctx context.Context, s *Session, args []string) (*Response, error) {
	r := &Response{}
	r.Field("replay_gain_mode", string(s.d.Engine.ReplayGainMode()))
	return r, nil
}
