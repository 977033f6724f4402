// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package catalog is the relational store behind songs, directories,
// playlists, stickers, and artwork, backed by an embedded DuckDB database
// with its fts extension providing full-text search.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/rmpd/rmpd/internal/cache"
	"github.com/rmpd/rmpd/internal/logging"
	"github.com/rmpd/rmpd/internal/rmpderr"
)

// Store wraps the DuckDB connection backing the catalog.
type Store struct {
	conn *sql.DB

	stmtCache   map[string]*sql.Stmt
	stmtCacheMu sync.RWMutex

	// songCache holds hot GetSongByPath lookups; GetSong (by id) always
	// queries DuckDB.
	songCache *cache.Cache

	// scanFilter records every path AddSong writes. Nothing tests
	// membership against it: AddSong and Rescan always query DuckDB.
	scanFilter *cache.BloomFilter
}

// Open creates (or attaches to) the catalog database at path and applies
// the schema if it is not already present.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, rmpderr.Wrap(rmpderr.System, fmt.Errorf("create catalog directory: %w", err))
			}
		}
	}

	conn, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, rmpderr.Wrap(rmpderr.System, fmt.Errorf("open catalog: %w", err))
	}

	s := &Store{
		conn:       conn,
		stmtCache:  make(map[string]*sql.Stmt),
		songCache:  cache.New(5 * time.Minute),
		scanFilter: cache.NewBloomFilter(1_000_000, 0.01),
	}

	if err := s.migrate(context.Background()); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	s.stmtCacheMu.Lock()
	for _, stmt := range s.stmtCache {
		_ = stmt.Close()
	}
	s.stmtCacheMu.Unlock()
	return s.conn.Close()
}

// Ping checks that the underlying DuckDB connection is alive, for the
// companion surface's /healthz.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.PingContext(ctx)
}

func (s *Store) migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS directories (
			id BIGINT PRIMARY KEY,
			path VARCHAR UNIQUE NOT NULL,
			parent_id BIGINT,
			mtime TIMESTAMP
		)`,
		`CREATE SEQUENCE IF NOT EXISTS directories_id_seq START 1`,
		`CREATE INDEX IF NOT EXISTS idx_directories_parent ON directories(parent_id)`,

		`CREATE TABLE IF NOT EXISTS songs (
			id BIGINT PRIMARY KEY,
			path VARCHAR UNIQUE NOT NULL,
			directory_id BIGINT,
			duration DOUBLE,
			title VARCHAR, artist VARCHAR, album VARCHAR, album_artist VARCHAR,
			track VARCHAR, disc VARCHAR, date VARCHAR, genre VARCHAR,
			composer VARCHAR, performer VARCHAR, comment VARCHAR, label VARCHAR,
			original_date VARCHAR, sort_artist VARCHAR, sort_album VARCHAR,
			sort_album_artist VARCHAR, mb_track_id VARCHAR, mb_album_id VARCHAR,
			mb_artist_id VARCHAR, mb_album_artist_id VARCHAR,
			mb_release_track_id VARCHAR, mb_work_id VARCHAR,
			sample_rate INTEGER, channels INTEGER, bits_per_sample INTEGER, bitrate INTEGER,
			rg_track_gain DOUBLE, rg_track_peak DOUBLE, rg_album_gain DOUBLE, rg_album_peak DOUBLE,
			added_at TIMESTAMP, last_modified TIMESTAMP
		)`,
		`CREATE SEQUENCE IF NOT EXISTS songs_id_seq START 1`,
		`CREATE INDEX IF NOT EXISTS idx_songs_artist ON songs(artist)`,
		`CREATE INDEX IF NOT EXISTS idx_songs_album ON songs(album)`,
		`CREATE INDEX IF NOT EXISTS idx_songs_album_artist ON songs(album_artist)`,
		`CREATE INDEX IF NOT EXISTS idx_songs_directory ON songs(directory_id)`,

		`CREATE TABLE IF NOT EXISTS playlists (
			id BIGINT PRIMARY KEY,
			name VARCHAR UNIQUE NOT NULL,
			mtime TIMESTAMP
		)`,
		`CREATE SEQUENCE IF NOT EXISTS playlists_id_seq START 1`,

		`CREATE TABLE IF NOT EXISTS playlist_items (
			id BIGINT PRIMARY KEY,
			playlist_id BIGINT NOT NULL,
			position INTEGER NOT NULL,
			song_id BIGINT,
			uri VARCHAR NOT NULL
		)`,
		`CREATE SEQUENCE IF NOT EXISTS playlist_items_id_seq START 1`,

		`CREATE TABLE IF NOT EXISTS stickers (
			id BIGINT PRIMARY KEY,
			uri VARCHAR NOT NULL,
			name VARCHAR NOT NULL,
			value VARCHAR NOT NULL,
			UNIQUE(uri, name)
		)`,
		`CREATE SEQUENCE IF NOT EXISTS stickers_id_seq START 1`,

		`CREATE TABLE IF NOT EXISTS artwork (
			id BIGINT PRIMARY KEY,
			song_path VARCHAR NOT NULL,
			picture_type VARCHAR NOT NULL,
			mime_type VARCHAR,
			data BLOB,
			size BIGINT,
			sha256 VARCHAR,
			UNIQUE(song_path, picture_type)
		)`,
		`CREATE SEQUENCE IF NOT EXISTS artwork_id_seq START 1`,
		`CREATE INDEX IF NOT EXISTS idx_artwork_sha ON artwork(song_path, sha256)`,
	}

	for _, stmt := range statements {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return rmpderr.Wrap(rmpderr.System, fmt.Errorf("migrate %q: %w", stmt, err))
		}
	}

	if err := s.migrateFTS(ctx); err != nil {
		// fts is an optional extension; degrade to LIKE-only search rather
		// than failing catalog startup outright.
		logging.Warn().Err(err).Msg("fts extension unavailable, search_songs will use LIKE fallback")
	}

	return nil
}

func (s *Store) migrateFTS(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, `INSTALL fts`); err != nil {
		return err
	}
	if _, err := s.conn.ExecContext(ctx, `LOAD fts`); err != nil {
		return err
	}
	_, err := s.conn.ExecContext(ctx,
		`PRAGMA create_fts_index('songs', 'id', 'title', 'artist', 'album', 'album_artist', 'genre', 'composer', 'overwrite=1')`)
	return err
}

// prepare returns a cached prepared statement for query, preparing it on
// first use.
func (s *Store) prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	s.stmtCacheMu.RLock()
	stmt, ok := s.stmtCache[query]
	s.stmtCacheMu.RUnlock()
	if ok {
		return stmt, nil
	}

	s.stmtCacheMu.Lock()
	defer s.stmtCacheMu.Unlock()
	if stmt, ok := s.stmtCache[query]; ok {
		return stmt, nil
	}
	stmt, err := s.conn.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	s.stmtCache[query] = stmt
	return stmt, nil
}
