// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

func init() {
	register("albumart", handleAlbumArt)
	register("readpicture", handleReadPicture)
	register("readcomments", handleReadComments)
	register("getfingerprint", handleGetFingerprint)
}

// binaryChunk slices data at offset, capped to the connection's
// binarylimit, and writes the size/binary fields per spec.md §4.8 step 5.
// A zero-length final chunk still reports size/binary so the client knows
// to stop paging.
func binaryChunk(r *Response, data []byte, offset, limit int) error {
	if offset < 0 || offset > len(data) {
		return rmpderr.Newf(rmpderr.Argument, "offset %d out of range (size %d)", offset, len(data))
	}
	end := offset + limit
	if end > len(data) {
		end = len(data)
	}
	r.SetBinary(len(data), data[offset:end])
	return nil
}

func parseOffset(args []string, idx int) (int, error) {
	if idx >= len(args) {
		return 0, nil
	}
	n, err := strconv.Atoi(args[idx])
	if err != nil || n < 0 {
		return 0, rmpderr.Newf(rmpderr.Argument, "bad offset: %q", args[idx])
	}
	return n, nil
}

func handleAlbumArt(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 1 {
		return nil, rmpderr.New(rmpderr.Argument, "albumart requires a song uri")
	}
	offset, err := parseOffset(args, 1)
	if err != nil {
		return nil, err
	}
	art, err := s.d.Store.GetArtwork(ctx, args[0])
	if err != nil {
		return nil, err
	}
	r := &Response{}
	if err := binaryChunk(r, art.Data, offset, s.Conn.BinaryLimit); err != nil {
		return nil, err
	}
	return r, nil
}

func handleReadPicture(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 1 {
		return nil, rmpderr.New(rmpderr.Argument, "readpicture requires a song uri")
	}
	offset, err := parseOffset(args, 1)
	if err != nil {
		return nil, err
	}
	art, err := s.d.Store.GetArtworkByType(ctx, args[0], "embedded")
	if e, ok := rmpderr.As(err); ok && e.Kind == rmpderr.NotExists {
		art, err = s.d.Store.GetArtwork(ctx, args[0])
	}
	if err != nil {
		return nil, err
	}
	r := &Response{}
	r.Field("type", art.MimeType)
	if err := binaryChunk(r, art.Data, offset, s.Conn.BinaryLimit); err != nil {
		return nil, err
	}
	return r, nil
}

// handleReadComments dumps a song's raw tag pairs. rmpd's catalog only
// retains the fixed MPD tag set per song, not arbitrary Vorbis/ID3 frames,
// so this reports the fixed set under its native comment names.
func handleReadComments(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 1 {
		return nil, rmpderr.New(rmpderr.Argument, "readcomments requires a song uri")
	}
	song, err := s.d.Store.GetSongByPath(ctx, args[0])
	if err != nil {
		return nil, err
	}
	r := &Response{}
	writeIfSet := func(key, value string) {
		if value != "" {
			r.Field(key, value)
		}
	}
	writeIfSet("title", song.Title)
	writeIfSet("artist", song.Artist)
	writeIfSet("album", song.Album)
	writeIfSet("album_artist", song.AlbumArtist)
	writeIfSet("track", song.Track)
	writeIfSet("disc", song.Disc)
	writeIfSet("date", song.Date)
	writeIfSet("genre", song.Genre)
	writeIfSet("composer", song.Composer)
	writeIfSet("performer", song.Performer)
	return r, nil
}

// handleGetFingerprint delegates to the external Fingerprinter collaborator,
// which holds whatever Chromaprint (or similar) binding does the actual
// acoustic analysis. This is the single implementation; there is no second,
// stub ACK path for this command.
func handleGetFingerprint(ctx context.Context, s *Session, args []string) (*Response, error) {
	if len(args) < 1 {
		return nil, rmpderr.New(rmpderr.Argument, "getfingerprint requires a song uri")
	}
	if s.d.Fingerprinter == nil {
		return nil, rmpderr.New(rmpderr.System, "no fingerprinter configured")
	}
	song, err := s.d.Store.GetSongByPath(ctx, args[0])
	if err != nil {
		return nil, err
	}
	fp, err := s.d.Fingerprinter.Fingerprint(filepath.Join(s.d.MusicRoot, song.Path))
	if err != nil {
		return nil, rmpderr.Wrap(rmpderr.System, err)
	}
	r := &Response{}
	r.Field("fingerprint", fp)
	return r, nil
}
