// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

// ListPlaylists returns every stored playlist, per `listplaylists`.
func (s *Store) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT id, name, mtime FROM playlists ORDER BY name`)
	if err != nil {
		return nil, rmpderr.Wrap(rmpderr.Storage, err)
	}
	defer rows.Close()

	var out []Playlist
	for rows.Next() {
		var p Playlist
		if err := rows.Scan(&p.ID, &p.Name, &p.Mtime); err != nil {
			return nil, rmpderr.Wrap(rmpderr.Storage, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CreatePlaylist saves songURIs as a new playlist, or replaces it if the
// name already exists, per `save`.
func (s *Store) CreatePlaylist(ctx context.Context, name string, songURIs []string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return rmpderr.Wrap(rmpderr.Storage, err)
	}
	defer tx.Rollback()

	var playlistID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO playlists (id, name, mtime) VALUES (nextval('playlists_id_seq'), ?, now())
		 ON CONFLICT (name) DO UPDATE SET mtime = now()
		 RETURNING id`, name).Scan(&playlistID)
	if err != nil {
		return rmpderr.Wrap(rmpderr.Storage, fmt.Errorf("create playlist %q: %w", name, err))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM playlist_items WHERE playlist_id = ?`, playlistID); err != nil {
		return rmpderr.Wrap(rmpderr.Storage, err)
	}

	for i, uri := range songURIs {
		var songID sql.NullInt64
		if id, err := tx.QueryContext(ctx, `SELECT id FROM songs WHERE path = ?`, uri); err == nil {
			if id.Next() {
				var v int64
				if err := id.Scan(&v); err == nil {
					songID = sql.NullInt64{Int64: v, Valid: true}
				}
			}
			id.Close()
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO playlist_items (id, playlist_id, position, song_id, uri)
			 VALUES (nextval('playlist_items_id_seq'), ?, ?, ?, ?)`,
			playlistID, i, songID, uri); err != nil {
			return rmpderr.Wrap(rmpderr.Storage, err)
		}
	}

	return rmpderr.Wrap(rmpderr.Storage, tx.Commit())
}

// LoadPlaylist returns the ordered items of a stored playlist, per `load`.
func (s *Store) LoadPlaylist(ctx context.Context, name string) ([]PlaylistItem, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT pi.id, pi.playlist_id, pi.position, COALESCE(pi.song_id, 0), pi.uri
		 FROM playlist_items pi
		 JOIN playlists p ON p.id = pi.playlist_id
		 WHERE p.name = ? ORDER BY pi.position`, name)
	if err != nil {
		return nil, rmpderr.Wrap(rmpderr.Storage, err)
	}
	defer rows.Close()

	var out []PlaylistItem
	for rows.Next() {
		var item PlaylistItem
		if err := rows.Scan(&item.ID, &item.PlaylistID, &item.Position, &item.SongID, &item.URI); err != nil {
			return nil, rmpderr.Wrap(rmpderr.Storage, err)
		}
		out = append(out, item)
	}
	if len(out) == 0 {
		if _, err := s.playlistID(ctx, name); err != nil {
			return nil, err
		}
	}
	return out, rows.Err()
}

// RemovePlaylist deletes a stored playlist, per `rm`.
func (s *Store) RemovePlaylist(ctx context.Context, name string) error {
	id, err := s.playlistID(ctx, name)
	if err != nil {
		return err
	}
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM playlist_items WHERE playlist_id = ?`, id); err != nil {
		return rmpderr.Wrap(rmpderr.Storage, err)
	}
	if _, err := s.conn.ExecContext(ctx, `DELETE FROM playlists WHERE id = ?`, id); err != nil {
		return rmpderr.Wrap(rmpderr.Storage, err)
	}
	return nil
}

// RenamePlaylist renames a stored playlist, per `rename`.
func (s *Store) RenamePlaylist(ctx context.Context, oldName, newName string) error {
	res, err := s.conn.ExecContext(ctx, `UPDATE playlists SET name = ? WHERE name = ?`, newName, oldName)
	if err != nil {
		return rmpderr.Wrap(rmpderr.Storage, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return rmpderr.Newf(rmpderr.NotExists, "no such playlist: %q", oldName)
	}
	return nil
}

func (s *Store) playlistID(ctx context.Context, name string) (int64, error) {
	var id int64
	err := s.conn.QueryRowContext(ctx, `SELECT id FROM playlists WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, rmpderr.Newf(rmpderr.NotExists, "no such playlist: %q", name)
	}
	if err != nil {
		return 0, rmpderr.Wrap(rmpderr.Storage, err)
	}
	return id, nil
}
