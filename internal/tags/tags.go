// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package tags implements catalog.TagReader over dhowden/tag, extracting
// the fixed MPD tag set from a song file. Embedded pictures are not read.
package tags

import (
	"os"
	"strconv"

	"github.com/dhowden/tag"

	"github.com/rmpd/rmpd/internal/catalog"
	"github.com/rmpd/rmpd/internal/rmpderr"
)

// Reader implements catalog.TagReader over dhowden/tag.
type Reader struct{}

// New returns a Reader.
func New() *Reader {
	return &Reader{}
}

// ReadTags opens absPath and extracts its metadata, per spec.md's scan
// pipeline. Missing or unreadable tags never fail the scan outright: a
// file with no usable metadata is still cataloged under its bare path.
func (r *Reader) ReadTags(absPath, relPath string) (catalog.Song, error) {
	f, err := os.Open(absPath)
	if err != nil {
		return catalog.Song{}, rmpderr.Wrap(rmpderr.System, err)
	}
	defer f.Close()

	song := catalog.Song{Path: relPath}

	m, err := tag.ReadFrom(f)
	if err != nil {
		// No usable tag block (e.g. a bare WAV/PCM file): keep the bare path.
		return song, nil
	}

	song.Title = m.Title()
	song.Artist = m.Artist()
	song.Album = m.Album()
	song.AlbumArtist = m.AlbumArtist()
	song.Composer = m.Composer()
	song.Genre = m.Genre()
	if y := m.Year(); y != 0 {
		song.Date = strconv.Itoa(y)
	}
	if track, _ := m.Track(); track != 0 {
		song.Track = strconv.Itoa(track)
	}
	if disc, _ := m.Disc(); disc != 0 {
		song.Disc = strconv.Itoa(disc)
	}
	song.Comment = m.Comment()

	return song, nil
}
