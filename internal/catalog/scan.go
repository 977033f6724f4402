// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package catalog

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rmpd/rmpd/internal/logging"
	"github.com/rmpd/rmpd/internal/rmpderr"
)

// TagReader extracts catalog metadata from an audio file. Implemented
// outside this package by whatever decoder/tag library backs playback;
// the catalog only needs the result, not how it was read. Grounded on
// original_source/rmpd-library/src/scanner.rs, which separates filesystem
// walking from tag extraction the same way.
type TagReader interface {
	ReadTags(absPath, relPath string) (Song, error)
}

// Rescan walks musicRoot below relPath (empty string means the whole
// library), adding new files, updating changed ones, and removing entries
// for files no longer on disk. It is the concrete implementation behind
// the `update`/`rescan` protocol commands.
func (s *Store) Rescan(ctx context.Context, musicRoot, relPath string, reader TagReader) (ScanStats, error) {
	var stats ScanStats

	walkRoot := musicRoot
	if relPath != "" {
		walkRoot = filepath.Join(musicRoot, relPath)
	}

	seen := make(map[string]struct{})

	err := filepath.WalkDir(walkRoot, func(absPath string, d fs.DirEntry, err error) error {
		if err != nil {
			stats.Errors++
			logging.Warn().Err(err).Str("path", absPath).Msg("scan walk error")
			return nil
		}
		if d.IsDir() {
			rel, relErr := filepath.Rel(musicRoot, absPath)
			if relErr == nil && rel != "." {
				parent := filepath.Dir(rel)
				if parent == "." {
					parent = ""
				}
				if _, err := s.UpsertDirectory(ctx, filepath.ToSlash(rel), filepath.ToSlash(parent)); err != nil {
					stats.Errors++
				}
			}
			return nil
		}
		if !isAudioFile(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(musicRoot, absPath)
		if err != nil {
			stats.Errors++
			return nil
		}
		rel = filepath.ToSlash(rel)
		seen[rel] = struct{}{}
		stats.Scanned++

		info, err := d.Info()
		if err != nil {
			stats.Errors++
			return nil
		}

		existing, lookupErr := s.GetSongByPath(ctx, rel)
		alreadyCataloged := lookupErr == nil
		if alreadyCataloged && !existing.LastModified.Before(info.ModTime()) {
			return nil // unchanged since last scan
		}

		song, err := reader.ReadTags(absPath, rel)
		if err != nil {
			stats.Errors++
			logging.Warn().Err(err).Str("path", rel).Msg("failed to read tags")
			return nil
		}
		song.Path = rel
		song.LastModified = info.ModTime()

		if _, err := s.AddSong(ctx, song); err != nil {
			stats.Errors++
			return nil
		}
		if alreadyCataloged {
			stats.Updated++
		} else {
			stats.Added++
		}
		return nil
	})
	if err != nil {
		return stats, rmpderr.Wrap(rmpderr.System, err)
	}

	removed, err := s.pruneMissing(ctx, musicRoot, relPath, seen)
	if err != nil {
		return stats, err
	}
	stats.Removed = removed

	logging.Debug().
		Int("scanned", stats.Scanned).
		Int("added", stats.Added).
		Int("updated", stats.Updated).
		Int("removed", stats.Removed).
		Int("errors", stats.Errors).
		Msg("rescan complete")

	return stats, nil
}

func (s *Store) pruneMissing(ctx context.Context, musicRoot, relPath string, seen map[string]struct{}) (int, error) {
	var rows *sql.Rows
	var err error
	if relPath == "" {
		rows, err = s.conn.QueryContext(ctx, `SELECT path FROM songs`)
	} else {
		prefix := strings.TrimSuffix(relPath, "/") + "/"
		rows, err = s.conn.QueryContext(ctx,
			`SELECT path FROM songs WHERE path = ? OR starts_with(path, ?)`, relPath, prefix)
	}
	if err != nil {
		return 0, rmpderr.Wrap(rmpderr.Storage, err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return 0, rmpderr.Wrap(rmpderr.Storage, err)
		}
		if _, ok := seen[path]; !ok {
			stale = append(stale, path)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, rmpderr.Wrap(rmpderr.Storage, err)
	}

	for _, path := range stale {
		if err := s.DeleteSongByPath(ctx, path); err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("failed to prune stale catalog entry")
		}
	}
	return len(stale), nil
}

var audioExtensions = map[string]struct{}{
	".flac": {}, ".mp3": {}, ".ogg": {}, ".opus": {}, ".m4a": {}, ".wav": {},
	".aiff": {}, ".ape": {}, ".wv": {}, ".dsf": {}, ".dff": {},
}

func isAudioFile(name string) bool {
	_, ok := audioExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}
