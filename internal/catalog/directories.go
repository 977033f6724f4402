// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

// UpsertDirectory records a directory node, linking it to its parent by
// path. The root directory is represented by an empty path.
func (s *Store) UpsertDirectory(ctx context.Context, path, parentPath string) (int64, error) {
	var parentID sql.NullInt64
	if parentPath != "" {
		var id int64
		err := s.conn.QueryRowContext(ctx, `SELECT id FROM directories WHERE path = ?`, parentPath).Scan(&id)
		if err != nil && err != sql.ErrNoRows {
			return 0, rmpderr.Wrap(rmpderr.Storage, err)
		}
		if err == nil {
			parentID = sql.NullInt64{Int64: id, Valid: true}
		}
	}

	var id int64
	err := s.conn.QueryRowContext(ctx,
		`INSERT INTO directories (id, path, parent_id, mtime)
		 VALUES (nextval('directories_id_seq'), ?, ?, now())
		 ON CONFLICT (path) DO UPDATE SET parent_id = EXCLUDED.parent_id, mtime = now()
		 RETURNING id`, path, parentID).Scan(&id)
	if err != nil {
		return 0, rmpderr.Wrap(rmpderr.Storage, fmt.Errorf("upsert directory %q: %w", path, err))
	}
	return id, nil
}

// ListDirectory returns the immediate children (subdirectories and songs)
// of the directory at path, per the `lsinfo` command (spec.md §4.8).
func (s *Store) ListDirectory(ctx context.Context, path string) (DirectoryListing, error) {
	var listing DirectoryListing

	var dirQuery string
	var dirArgs []interface{}
	if path == "" {
		dirQuery = `SELECT id, path, COALESCE(parent_id, 0), mtime FROM directories
			WHERE parent_id IS NULL ORDER BY path`
	} else {
		dirQuery = `SELECT id, path, COALESCE(parent_id, 0), mtime FROM directories
			WHERE parent_id = (SELECT id FROM directories WHERE path = ?) ORDER BY path`
		dirArgs = []interface{}{path}
	}

	dirRows, err := s.conn.QueryContext(ctx, dirQuery, dirArgs...)
	if err != nil {
		return listing, rmpderr.Wrap(rmpderr.Storage, err)
	}
	for dirRows.Next() {
		var d Directory
		if err := dirRows.Scan(&d.ID, &d.Path, &d.ParentID, &d.Mtime); err != nil {
			dirRows.Close()
			return listing, rmpderr.Wrap(rmpderr.Storage, err)
		}
		listing.Directories = append(listing.Directories, d)
	}
	dirRows.Close()
	if err := dirRows.Err(); err != nil {
		return listing, rmpderr.Wrap(rmpderr.Storage, err)
	}

	prefix := path
	if prefix != "" {
		prefix += "/"
	}
	songs, err := queryAndScanSongs(ctx, s.conn,
		`SELECT `+songColumns+` FROM songs
		 WHERE starts_with(path, ?) AND instr(substr(path, length(?) + 1), '/') = 0
		 ORDER BY path`, prefix, prefix)
	if err != nil {
		return listing, rmpderr.Wrap(rmpderr.Storage, err)
	}
	listing.Songs = songs
	return listing, nil
}

// ListDirectoryRecursive returns every song whose path falls under path,
// at any depth, per `listall`/`listallinfo` (spec.md §4.8).
func (s *Store) ListDirectoryRecursive(ctx context.Context, path string) ([]Song, error) {
	if path == "" {
		return queryAndScanSongs(ctx, s.conn, `SELECT `+songColumns+` FROM songs ORDER BY path`)
	}
	prefix := strings.TrimSuffix(path, "/") + "/"
	return queryAndScanSongs(ctx, s.conn,
		`SELECT `+songColumns+` FROM songs WHERE path = ? OR starts_with(path, ?) ORDER BY path`,
		path, prefix)
}
