// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"context"
	"strconv"
	"strings"

	"github.com/rmpd/rmpd/internal/catalog"
	"github.com/rmpd/rmpd/internal/rmpderr"
)

func init() {
	register("listplaylists", handleListPlaylists)
	register("listplaylist", handleListPlaylist)
	register("listplaylistinfo", handleListPlaylistInfo)
	register("load", handleLoad)
	register("save", handleSave)
	register("playlistadd", handlePlaylistAdd)
	register("playlistclear", handlePlaylistClear)
	register("playlistdelete", handlePlaylistDelete)
	register("playlistmove", handlePlaylistMove)
	register("rm", handleRm)
	register("rename", handleRename)
	register("searchplaylist", handleSearchPlaylist)
	register("playlistlength", handlePlaylistLength)
}

// asPlaylistLoad rewraps a not-found/system error from the catalog's
// stored-playlist operations as the dedicated ACK 55 kind, per spec.md's
// closed ACK code table.
func asPlaylistLoad(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := rmpderr.As(err); ok {
		return rmpderr.New(rmpderr.PlaylistLoad, e.Message)
	}
	return rmpderr.Wrap(rmpderr.PlaylistLoad, err)
}

func handleListPlaylists(ctx context.Context, s *Session, args []string) (*Response, error) {
	playlists, err := s.d.Store.ListPlaylists(ctx)
	if err != nil {
		return nil, err
	}
	r := &Response{}
	for _, p := range playlists {
		r.Field("playlist", p.Name)
		r.Field("Last-Modified", p.Mtime.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return r, nil
}

func loadPlaylistOrErr(ctx context.Context, s *Session, name string) ([]catalog.PlaylistItem, error) {
	items, err := s.d.Store.LoadPlaylist(ctx, name)
	if err != nil {
		return nil, asPlaylistLoad(err)
	}
	return items, nil
}

func handleListPlaylist(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "listplaylist requires a name")
	}
	items, err := loadPlaylistOrErr(ctx, s, args[0])
	if err != nil {
		return nil, err
	}
	r := &Response{}
	for _, item := range items {
		r.Field("file", item.URI)
	}
	return r, nil
}

func handleListPlaylistInfo(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "listplaylistinfo requires a name")
	}
	items, err := loadPlaylistOrErr(ctx, s, args[0])
	if err != nil {
		return nil, err
	}
	r := &Response{}
	for pos, item := range items {
		song, err := s.d.Store.GetSongByPath(ctx, item.URI)
		if err != nil {
			r.Field("file", item.URI)
			r.Fieldf("Pos", "%d", pos)
			continue
		}
		r.WriteSong(song, pos, 0)
	}
	return r, nil
}

func handleLoad(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "load requires a name")
	}
	items, err := loadPlaylistOrErr(ctx, s, args[0])
	if err != nil {
		return nil, err
	}
	q := s.partition().Queue
	for _, item := range items {
		q.Add(item.URI)
	}
	return &Response{}, nil
}

func handleSave(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "save requires a name")
	}
	var uris []string
	for _, item := range s.partition().Queue.Items() {
		uris = append(uris, item.Path)
	}
	if err := s.d.Store.CreatePlaylist(ctx, args[0], uris); err != nil {
		return nil, asPlaylistLoad(err)
	}
	return &Response{}, nil
}

func handlePlaylistAdd(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "playlistadd requires name and uri")
	}
	items, err := loadPlaylistOrErr(ctx, s, args[0])
	if err != nil {
		return nil, err
	}
	uris := playlistURIs(items)
	uris = append(uris, args[1])
	if err := s.d.Store.CreatePlaylist(ctx, args[0], uris); err != nil {
		return nil, asPlaylistLoad(err)
	}
	return &Response{}, nil
}

func handlePlaylistClear(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "playlistclear requires a name")
	}
	if err := s.d.Store.CreatePlaylist(ctx, args[0], nil); err != nil {
		return nil, asPlaylistLoad(err)
	}
	return &Response{}, nil
}

func handlePlaylistDelete(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "playlistdelete requires name and position")
	}
	pos, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "position must be an integer")
	}
	items, err := loadPlaylistOrErr(ctx, s, args[0])
	if err != nil {
		return nil, err
	}
	uris := playlistURIs(items)
	if pos < 0 || pos >= len(uris) {
		return nil, rmpderr.Newf(rmpderr.Argument, "position %d out of range", pos)
	}
	uris = append(uris[:pos], uris[pos+1:]...)
	if err := s.d.Store.CreatePlaylist(ctx, args[0], uris); err != nil {
		return nil, asPlaylistLoad(err)
	}
	return &Response{}, nil
}

func handlePlaylistMove(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 3 {
		return nil, rmpderr.New(rmpderr.Argument, "playlistmove requires name, from, and to")
	}
	from, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "from must be an integer")
	}
	to, err := strconv.Atoi(args[2])
	if err != nil {
		return nil, rmpderr.New(rmpderr.Argument, "to must be an integer")
	}
	items, err := loadPlaylistOrErr(ctx, s, args[0])
	if err != nil {
		return nil, err
	}
	uris := playlistURIs(items)
	if from < 0 || from >= len(uris) || to < 0 || to >= len(uris) {
		return nil, rmpderr.New(rmpderr.Argument, "playlistmove out of range")
	}
	uri := uris[from]
	uris = append(uris[:from], uris[from+1:]...)
	uris = append(uris, "")
	copy(uris[to+1:], uris[to:])
	uris[to] = uri
	if err := s.d.Store.CreatePlaylist(ctx, args[0], uris); err != nil {
		return nil, asPlaylistLoad(err)
	}
	return &Response{}, nil
}

func handleRm(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "rm requires a name")
	}
	if err := s.d.Store.RemovePlaylist(ctx, args[0]); err != nil {
		return nil, asPlaylistLoad(err)
	}
	return &Response{}, nil
}

func handleRename(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "rename requires old and new name")
	}
	if err := s.d.Store.RenamePlaylist(ctx, args[0], args[1]); err != nil {
		return nil, asPlaylistLoad(err)
	}
	return &Response{}, nil
}

func handleSearchPlaylist(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 2 {
		return nil, rmpderr.New(rmpderr.Argument, "searchplaylist requires name and query")
	}
	items, err := loadPlaylistOrErr(ctx, s, args[0])
	if err != nil {
		return nil, err
	}
	query := strings.ToLower(strings.Join(args[1:], " "))
	r := &Response{}
	for pos, item := range items {
		if strings.Contains(strings.ToLower(item.URI), query) {
			r.Field("file", item.URI)
			r.Fieldf("Pos", "%d", pos)
		}
	}
	return r, nil
}

func handlePlaylistLength(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "playlistlength requires a name")
	}
	items, err := loadPlaylistOrErr(ctx, s, args[0])
	if err != nil {
		return nil, err
	}
	r := &Response{}
	r.Fieldf("songs", "%d", len(items))
	return r, nil
}

func playlistURIs(items []catalog.PlaylistItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.URI)
	}
	return out
}
