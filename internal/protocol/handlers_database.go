// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"context"
	"strings"
	"unicode"

	"github.com/rmpd/rmpd/internal/catalog"
	"github.com/rmpd/rmpd/internal/filter"
	"github.com/rmpd/rmpd/internal/rmpderr"
)

func init() {
	register("update", handleUpdate)
	register("rescan", handleRescan)
	register("find", handleFind)
	register("search", handleSearch)
	register("list", handleList)
	register("listall", handleListAll)
	register("listallinfo", handleListAllInfo)
	register("lsinfo", handleLsInfo)
	register("count", handleCount)
	register("searchcount", handleSearchCount)
	register("searchadd", handleSearchAdd)
	register("findadd", handleFindAdd)
	register("listfiles", handleListFiles)
}

func parseFindArgs(args []string) (filter.Expr, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "expected a filter expression")
	}
	if len(args) == 1 {
		return filter.Parse(args[0])
	}
	// legacy TAG VALUE [TAG VALUE ...] form: AND every pair together.
	if len(args)%2 != 0 {
		return nil, rmpderr.New(rmpderr.Argument, "expected TAG VALUE pairs")
	}
	var expr filter.Expr
	for i := 0; i < len(args); i += 2 {
		cmp := filter.Comparison{Tag: args[i], Op: filter.OpEquals, Value: args[i+1]}
		if expr == nil {
			expr = cmp
		} else {
			expr = filter.And{Left: expr, Right: cmp}
		}
	}
	return expr, nil
}

func writeSongs(r *Response, songs []catalog.Song) {
	for _, song := range songs {
		r.WriteSong(song, -1, 0)
	}
}

func handleUpdate(ctx context.Context, s *Session, args []string) (*Response, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	if s.d.TagReader == nil {
		return nil, rmpderr.New(rmpderr.System, "no tag reader configured")
	}
	s.d.UpdateJobID++
	jobID := s.d.UpdateJobID
	go func() {
		defer func() { s.d.UpdateJobID = 0 }()
		_, _ = s.d.Store.Rescan(context.Background(), s.d.MusicRoot, path, s.d.TagReader)
	}()
	r := &Response{}
	r.Fieldf("updating_db", "%d", jobID)
	return r, nil
}

func handleRescan(ctx context.Context, s *Session, args []string) (*Response, error) {
	return handleUpdate(ctx, s, args)
}

func handleFind(ctx context.Context, s *Session, args []string) (*Response, error) {
	expr, err := parseFindArgs(args)
	if err != nil {
		return nil, err
	}
	songs, err := s.d.Store.FindSongsFilter(ctx, expr)
	if err != nil {
		return nil, err
	}
	r := &Response{}
	writeSongs(r, songs)
	return r, nil
}

func handleSearch(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "search requires a query")
	}
	songs, err := s.d.Store.SearchSongs(ctx, strings.Join(args, " "))
	if err != nil {
		return nil, err
	}
	r := &Response{}
	writeSongs(r, songs)
	return r, nil
}

func handleList(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) == 0 {
		return nil, rmpderr.New(rmpderr.Argument, "list requires a tag type")
	}
	tag := strings.ToLower(args[0])
	r := &Response{}

	var values []string
	var err error
	switch tag {
	case "artist":
		values, err = s.d.Store.ListArtists(ctx)
	case "albumartist", "album_artist":
		values, err = s.d.Store.ListAlbumArtists(ctx)
	case "genre":
		values, err = s.d.Store.ListGenres(ctx)
	case "album":
		artist := ""
		if len(args) > 2 && strings.EqualFold(args[1], "artist") {
			artist = args[2]
		}
		values, err = s.d.Store.ListAlbums(ctx, artist)
	default:
		return nil, rmpderr.Newf(rmpderr.Argument, "unsupported tag type %q", args[0])
	}
	if err != nil {
		return nil, err
	}
	key := capitalize(tag)
	for _, v := range values {
		r.Field(key, v)
	}
	return r, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func handleListAll(ctx context.Context, s *Session, args []string) (*Response, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	songs, err := s.d.Store.ListDirectoryRecursive(ctx, path)
	if err != nil {
		return nil, err
	}
	r := &Response{}
	for _, song := range songs {
		r.Field("file", song.Path)
	}
	return r, nil
}

func handleListAllInfo(ctx context.Context, s *Session, args []string) (*Response, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	songs, err := s.d.Store.ListDirectoryRecursive(ctx, path)
	if err != nil {
		return nil, err
	}
	r := &Response{}
	writeSongs(r, songs)
	return r, nil
}

func handleLsInfo(ctx context.Context, s *Session, args []string) (*Response, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	listing, err := s.d.Store.ListDirectory(ctx, path)
	if err != nil {
		return nil, err
	}
	r := &Response{}
	for _, dir := range listing.Directories {
		r.Field("directory", dir.Path)
	}
	writeSongs(r, listing.Songs)
	return r, nil
}

func handleCount(ctx context.Context, s *Session, args []string) (*Response, error) {
	expr, err := parseFindArgs(args)
	if err != nil {
		return nil, err
	}
	songs, err := s.d.Store.FindSongsFilter(ctx, expr)
	if err != nil {
		return nil, err
	}
	var total float64
	for _, song := range songs {
		total += song.Duration
	}
	r := &Response{}
	r.Fieldf("songs", "%d", len(songs))
	r.Fieldf("playtime", "%d", int(total))
	return r, nil
}

func handleSearchCount(ctx context.Context, s *Session, args []string) (*Response, error) {
	return handleCount(ctx, s, args)
}

func handleSearchAdd(ctx context.Context, s *Session, args []string) (*Response, error) {
	songs, err := s.d.Store.SearchSongs(ctx, strings.Join(args, " "))
	if err != nil {
		return nil, err
	}
	q := s.partition().Queue
	for _, song := range songs {
		q.Add(song.Path)
	}
	return &Response{}, nil
}

func handleFindAdd(ctx context.Context, s *Session, args []string) (*Response, error) {
	expr, err := parseFindArgs(args)
	if err != nil {
		return nil, err
	}
	songs, err := s.d.Store.FindSongsFilter(ctx, expr)
	if err != nil {
		return nil, err
	}
	q := s.partition().Queue
	for _, song := range songs {
		q.Add(song.Path)
	}
	return &Response{}, nil
}

func handleListFiles(ctx context.Context, s *Session, args []string) (*Response, error) {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	listing, err := s.d.Store.ListDirectory(ctx, path)
	if err != nil {
		return nil, err
	}
	r := &Response{}
	for _, dir := range listing.Directories {
		r.Field("directory", dir.Path)
	}
	for _, song := range listing.Songs {
		r.Field("file", song.Path)
		if song.Duration > 0 {
			r.Fieldf("size", "%d", 0)
		}
	}
	return r, nil
}
