// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"context"
	"strconv"
	"strings"

	"github.com/rmpd/rmpd/internal/queue"
	"github.com/rmpd/rmpd/internal/rmpderr"
)

func init() {
	register("add", handleAdd)
	register("addid", handleAddID)
	register("delete", handleDelete)
	register("deleteid", handleDeleteID)
	register("clear", handleClear)
	register("move", handleMove)
	register("moveid", handleMoveID)
	register("swap", handleSwap)
	register("swapid", handleSwapID)
	register("shuffle", handleShuffle)
	register("prio", handlePrio)
	register("prioid", handlePrioID)
	register("rangeid", handleRangeID)
	register("addtagid", handleAddTagID)
	register("cleartagid", handleClearTagID)
	register("playlistinfo", handlePlaylistInfo)
	register("playlistid", handlePlaylistID)
	register("plchanges", handlePlChanges)
	register("plchangesposid", handlePlChangesPosID)
	register("playlistfind", handlePlaylistFind)
	register("playlistsearch", handlePlaylistSearch)
	register("currentsong", handleCurrentSong)
}

// parseRange parses "start:end" (MPD's half-open range syntax) or a bare
// integer as [n, n+1).
func parseRange(s string) (int, int, error) {
	if idx := strings.Index(s, ":"); idx >= 0 {
		start, err := strconv.Atoi(s[:idx])
		if err != nil {
			return 0, 0, rmpderr.New(rmpderr.Argument, "invalid range start")
		}
		end, err := strconv.Atoi(s[idx+1:])
		if err != nil {
			return 0, 0, rmpderr.New(rmpderr.Argument, "invalid range end")
		}
		return start, end, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, 0, rmpderr.New(rmpderr.Argument, "invalid position")
	}
	return n, n + 1, nil
}

func handleAdd(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "add requires a uri")
	}
	s.partition().Queue.Add(args[0])
	return &Response{}, nil
}

func handleAddID(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "addid requires a uri")
	}
	q := s.partition().Queue
	var id uint64
	if len(args) > 1 {
		pos, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, rmpderr.New(rmpderr.Argument, "position must be an integer")
		}
		id = q.AddAt(args[0], pos)
	} else {
		id = q.Add(args[0])
	}
	r := &Response{}
	r.Fieldf("Id", "%d", id)
	return r, nil
}

func handleDelete(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "delete requires a position or range")
	}
	start, end, err := parseRange(args[0])
	if err != nil {
		return nil, err
	}
	q := s.partition().Queue
	for pos := end - 1; pos >= start; pos-- {
		q.Delete(pos)
	}
	return &Response{}, nil
}

func handleDeleteID(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "deleteid requires an id")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "id must be an integer")
	}
	if _, ok := s.partition().Queue.DeleteID(id); !ok {
		return nil, rmpderr.Newf(rmpderr.Argument, "no such song id %d", id)
	}
	return &Response{}, nil
}

func handleClear(ctx context.Context, s *Session, args []string) (*Response, error) {
	s.partition().Queue.Clear()
	return &Response{}, nil
}

func handleMove(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "move requires from and to")
	}
	from, _, err := parseRange(args[0])
	if err != nil {
		return nil, err
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "to must be an integer")
	}
	if ok := s.partition().Queue.Move(from, to); !ok {
		return nil, rmpderr.New(rmpderr.Argument, "move out of range")
	}
	return &Response{}, nil
}

func handleMoveID(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "moveid requires id and to")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "id must be an integer")
	}
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "to must be an integer")
	}
	if ok := s.partition().Queue.MoveByID(id, to); !ok {
		return nil, rmpderr.New(rmpderr.Argument, "moveid out of range")
	}
	return &Response{}, nil
}

func handleSwap(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "swap requires two positions")
	}
	a, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "position must be an integer")
	}
	b, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "position must be an integer")
	}
	if ok := s.partition().Queue.Swap(a, b); !ok {
		return nil, rmpderr.New(rmpderr.Argument, "swap out of range")
	}
	return &Response{}, nil
}

func handleSwapID(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "swapid requires two ids")
	}
	a, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "id must be an integer")
	}
	b, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "id must be an integer")
	}
	if ok := s.partition().Queue.SwapByID(a, b); !ok {
		return nil, rmpderr.New(rmpderr.Argument, "swapid: unknown id")
	}
	return &Response{}, nil
}

func handleShuffle(ctx context.Context, s *Session, args []string) (*Response, error) {
	q := s.partition().Queue
	if len(args) == 0 {
		q.Shuffle()
		return &Response{}, nil
	}
	start, end, err := parseRange(args[0])
	if err != nil {
		return nil, err
	}
	if err := q.ShuffleRange(start, end); err != nil {
		return nil, err
	}
	return &Response{}, nil
}

func handlePrio(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "prio requires a priority and at least one range")
	}
	priority, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "priority must be an integer")
	}
	if err := validateArgs(priorityArgs{Priority: priority}); err != nil {
		return nil, err
	}
	q := s.partition().Queue
	for _, rangeArg := range args[1:] {
		start, end, err := parseRange(rangeArg)
		if err != nil {
			return nil, err
		}
		if err := q.SetPriorityRange(uint8(priority), queue.Range{Start: start, End: end}); err != nil {
			return nil, err
		}
	}
	return &Response{}, nil
}

func handlePrioID(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "prioid requires a priority and at least one id")
	}
	priority, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "priority must be an integer")
	}
	if err := validateArgs(priorityArgs{Priority: priority}); err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(args)-1)
	for _, idArg := range args[1:] {
		id, err := strconv.ParseUint(idArg, 10, 64)
		if err != nil {
			return nil, rmpderr.New(rmpderr.Argument, "id must be an integer")
		}
		ids = append(ids, id)
	}
	s.partition().Queue.SetPriorityIDs(uint8(priority), ids)
	return &Response{}, nil
}

func handleRangeID(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "rangeid requires id and start:end")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "id must be an integer")
	}
	start, end, err := parseRange(args[1])
	if err != nil {
		return nil, err
	}
	r := &queue.PlaybackRange{Start: float64(start), End: float64(end)}
	if ok := s.partition().Queue.SetRangeByID(id, r); !ok {
		return nil, rmpderr.New(rmpderr.Argument, "rangeid: unknown id")
	}
	return &Response{}, nil
}

func handleAddTagID(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 3 {
		return nil, rmpderr.New(rmpderr.Argument, "addtagid requires id, tag, and value")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "id must be an integer")
	}
	if ok := s.partition().Queue.AddTagByID(id, args[1], strings.Join(args[2:], " ")); !ok {
		return nil, rmpderr.New(rmpderr.Argument, "addtagid: unknown id")
	}
	return &Response{}, nil
}

func handleClearTagID(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "cleartagid requires an id")
	}
	id, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "id must be an integer")
	}
	tag := ""
	if len(args) > 1 {
		tag = args[1]
	}
	if ok := s.partition().Queue.ClearTagsByID(id, tag); !ok {
		return nil, rmpderr.New(rmpderr.Argument, "cleartagid: unknown id")
	}
	return &Response{}, nil
}

func (s *Session) writeQueueItem(r *Response, it queue.Item) {
	song, err := s.d.Store.GetSongByPath(context.Background(), it.Path)
	if err != nil {
		r.Field("file", it.Path)
		r.Fieldf("Id", "%d", it.ID)
		return
	}
	r.WriteSong(song, -1, it.ID)
}

func handlePlaylistInfo(ctx context.Context, s *Session, args []string) (*Response, error) {
	q := s.partition().Queue
	items := q.Items()
	start, end := 0, len(items)
	if len(args) > 0 {
		var err error
		start, end, err = parseRange(args[0])
		if err != nil {
			return nil, err
		}
	}
	r := &Response{}
	for pos := start; pos < end && pos < len(items); pos++ {
		s.writeQueueItem(r, items[pos])
	}
	return r, nil
}

func handlePlaylistID(ctx context.Context, s *Session, args []string) (*Response, error) {
	q := s.partition().Queue
	r := &Response{}
	if len(args) > 0 {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return nil, rmpderr.New(rmpderr.Argument, "id must be an integer")
		}
		item, _, ok := q.ItemByID(id)
		if !ok {
			return nil, rmpderr.Newf(rmpderr.Argument, "no such song id %d", id)
		}
		s.writeQueueItem(r, item)
		return r, nil
	}
	for _, it := range q.Items() {
		s.writeQueueItem(r, it)
	}
	return r, nil
}

func handlePlChanges(ctx context.Context, s *Session, args []string) (*Response, error) {
	// version is accepted but not used for delta computation in this
	// implementation: every call reports the full current playlist, which
	// is a conforming (if coarse) response to "what changed since v".
	r := &Response{}
	for _, it := range s.partition().Queue.Items() {
		s.writeQueueItem(r, it)
	}
	return r, nil
}

func handlePlChangesPosID(ctx context.Context, s *Session, args []string) (*Response, error) {
	r := &Response{}
	for pos, it := range s.partition().Queue.Items() {
		r.Fieldf("cpos", "%d", pos)
		r.Fieldf("Id", "%d", it.ID)
	}
	return r, nil
}

func findByTagInQueue(s *Session, tag, value string) []queue.Item {
	var out []queue.Item
	for _, it := range s.partition().Queue.Items() {
		if v, ok := it.Tags[tag]; ok && v == value {
			out = append(out, it)
		}
	}
	return out
}

func handlePlaylistFind(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "playlistfind requires tag and value")
	}
	r := &Response{}
	for _, it := range findByTagInQueue(s, args[0], args[1]) {
		s.writeQueueItem(r, it)
	}
	return r, nil
}

func handlePlaylistSearch(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "playlistsearch requires tag and value")
	}
	r := &Response{}
	lowerValue := strings.ToLower(args[1])
	for _, it := range s.partition().Queue.Items() {
		if v, ok := it.Tags[args[0]]; ok && strings.Contains(strings.ToLower(v), lowerValue) {
			s.writeQueueItem(r, it)
		}
	}
	return r, nil
}

func handleCurrentSong(ctx context.Context, s *Session, args []string) (*Response, error) {
	pos := s.d.Status.CurrentPos
	if pos < 0 {
		return &Response{}, nil
	}
	item, ok := s.partition().Queue.Item(pos)
	if !ok {
		return &Response{}, nil
	}
	r := &Response{}
	s.writeQueueItem(r, item)
	return r, nil
}
