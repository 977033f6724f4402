// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"context"
	"sort"
	"strconv"

	"github.com/rmpd/rmpd/internal/broker"
	"github.com/rmpd/rmpd/internal/rmpderr"
)

func init() {
	register("outputs", handleOutputs)
	register("enableoutput", handleEnableOutput)
	register("disableoutput", handleDisableOutput)
	register("toggleoutput", handleToggleOutput)
	register("outputset", handleOutputSet)
	register("partition", handlePartitionSwitch)
	register("listpartitions", handleListPartitions)
	register("newpartition", handleNewPartition)
	register("delpartition", handleDelPartition)
	register("moveoutput", handleMoveOutput)
	register("mount", handleMount)
	register("unmount", handleUnmount)
	register("listmounts", handleListMounts)
	register("listneighbors", handleListNeighbors)
	register("subscribe", handleSubscribe)
	register("unsubscribe", handleUnsubscribe)
	register("channels", handleChannels)
	register("readmessages", handleReadMessages)
	register("sendmessage", handleSendMessage)
	register("config", handleConfig)
	register("kill", handleKill)
	register("clearerror", handleClearError)
}

func handleOutputs(ctx context.Context, s *Session, args []string) (*Response, error) {
	r := &Response{}
	for i, o := range s.d.Outputs.List() {
		r.Fieldf("outputid", "%d", i)
		r.Field("outputname", o.Name)
		r.Field("plugin", o.Plugin)
		r.Fieldf("outputenabled", "%d", boolBit(o.Enabled))
		for k, v := range o.Attributes {
			r.Fieldf("attribute", "%s=%s", k, v)
		}
	}
	return r, nil
}

func outputIDArg(s *Session, args []string) (string, error) {
	if len(args) == 0 {
		return "", rmpderr.New(rmpderr.Argument, "expected an output id")
	}
	ids := s.d.Outputs.IDs()
	idx, err := strconv.Atoi(args[0])
	if err == nil {
		if idx < 0 || idx >= len(ids) {
			return "", rmpderr.Newf(rmpderr.Argument, "no such output: %s", args[0])
		}
		return ids[idx], nil
	}
	return args[0], nil
}

func handleEnableOutput(ctx context.Context, s *Session, args []string) (*Response, error) {
	id, err := outputIDArg(s, args)
	if err != nil {
		return nil, err
	}
	if err := s.d.Outputs.Enable(id); err != nil {
		return nil, err
	}
	return &Response{}, nil
}

func handleDisableOutput(ctx context.Context, s *Session, args []string) (*Response, error) {
	id, err := outputIDArg(s, args)
	if err != nil {
		return nil, err
	}
	if err := s.d.Outputs.Disable(id); err != nil {
		return nil, err
	}
	return &Response{}, nil
}

func handleToggleOutput(ctx context.Context, s *Session, args []string) (*Response, error) {
	id, err := outputIDArg(s, args)
	if err != nil {
		return nil, err
	}
	if err := s.d.Outputs.Toggle(id); err != nil {
		return nil, err
	}
	return &Response{}, nil
}

func handleOutputSet(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 3 {
		return nil, rmpderr.New(rmpderr.Argument, "outputset requires id, name, and value")
	}
	id, err := outputIDArg(s, args[:1])
	if err != nil {
		return nil, err
	}
	if err := s.d.Outputs.SetAttribute(id, args[1], args[2]); err != nil {
		return nil, err
	}
	return &Response{}, nil
}

func handlePartitionSwitch(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "partition requires a name")
	}
	if _, ok := s.d.Partitions.Get(args[0]); !ok {
		return nil, rmpderr.Newf(rmpderr.NotExists, "no such partition: %q", args[0])
	}
	s.Conn.Partition = args[0]
	return &Response{}, nil
}

func handleListPartitions(ctx context.Context, s *Session, args []string) (*Response, error) {
	r := &Response{}
	for _, name := range s.d.Partitions.List() {
		r.Field("partition", name)
	}
	return r, nil
}

func handleNewPartition(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "newpartition requires a name")
	}
	if err := s.d.Partitions.NewPartition(args[0]); err != nil {
		return nil, err
	}
	return &Response{}, nil
}

func handleDelPartition(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "delpartition requires a name")
	}
	if err := s.d.Partitions.DeletePartition(args[0]); err != nil {
		return nil, err
	}
	return &Response{}, nil
}

func handleMoveOutput(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 1 {
		return nil, rmpderr.New(rmpderr.Argument, "moveoutput requires an output name")
	}
	for _, name := range s.d.Partitions.List() {
		if name == s.Conn.Partition {
			continue
		}
		if p, ok := s.d.Partitions.Get(name); ok {
			for _, id := range p.Outputs {
				if id == args[0] {
					return &Response{}, s.d.Partitions.MoveOutput(args[0], name, s.Conn.Partition)
				}
			}
		}
	}
	return nil, rmpderr.Newf(rmpderr.NotExists, "output %q not assigned to another partition", args[0])
}

func handleMount(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "mount requires a path and uri")
	}
	if err := s.d.Mounts.Mount(ctx, args[0], args[1], nil); err != nil {
		return nil, err
	}
	return &Response{}, nil
}

func handleUnmount(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "unmount requires a path")
	}
	if err := s.d.Mounts.Unmount(ctx, args[0]); err != nil {
		return nil, err
	}
	return &Response{}, nil
}

func handleListMounts(ctx context.Context, s *Session, args []string) (*Response, error) {
	r := &Response{}
	for _, p := range s.d.Mounts.List() {
		r.Field("mount", p.VirtualPath)
		r.Field("storage", p.SourceURI)
	}
	return r, nil
}

func handleListNeighbors(ctx context.Context, s *Session, args []string) (*Response, error) {
	// rmpd does not implement network neighbor discovery (DLNA/SMB/NFS
	// browsing); the command is accepted and always reports none.
	return &Response{}, nil
}

func handleSubscribe(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "subscribe requires a channel")
	}
	if err := broker.Subscribe(args[0]); err != nil {
		return nil, err
	}
	if !s.Conn.Subscribe(args[0]) {
		return nil, rmpderr.Newf(rmpderr.Exists, "already subscribed to %q", args[0])
	}
	return &Response{}, nil
}

func handleUnsubscribe(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "unsubscribe requires a channel")
	}
	if !s.Conn.Unsubscribe(args[0]) {
		return nil, rmpderr.Newf(rmpderr.NotExists, "not subscribed to %q", args[0])
	}
	return &Response{}, nil
}

func handleChannels(ctx context.Context, s *Session, args []string) (*Response, error) {
	names := s.partition().Broker.ListChannels()
	sort.Strings(names)
	r := &Response{}
	for _, name := range names {
		r.Field("channel", name)
	}
	return r, nil
}

func handleReadMessages(ctx context.Context, s *Session, args []string) (*Response, error) {
	byChannel := s.partition().Broker.ReadMessages(s.Conn.Channels)
	r := &Response{}
	channels := make([]string, 0, len(byChannel))
	for ch := range byChannel {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	for _, ch := range channels {
		for _, msg := range byChannel[ch] {
			r.Field("channel", ch)
			r.Field("message", msg)
		}
	}
	return r, nil
}

func handleSendMessage(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "sendmessage requires channel and text")
	}
	s.partition().Broker.SendMessage(args[0], args[1])
	return &Response{}, nil
}

func handleConfig(ctx context.Context, s *Session, args []string) (*Response, error) {
	r := &Response{}
	r.Field("music_directory", s.d.MusicRoot)
	return r, nil
}

func handleKill(ctx context.Context, s *Session, args []string) (*Response, error) {
	return nil, ErrKillDaemon
}

func handleClearError(ctx context.Context, s *Session, args []string) (*Response, error) {
	return &Response{}, nil
}
