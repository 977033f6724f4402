// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package catalog

import (
	"context"
	"database/sql"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

// GetSticker reads one (uri, name) sticker value, per `sticker get`.
func (s *Store) GetSticker(ctx context.Context, uri, name string) (string, error) {
	var value string
	err := s.conn.QueryRowContext(ctx,
		`SELECT value FROM stickers WHERE uri = ? AND name = ?`, uri, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", rmpderr.Newf(rmpderr.NotExists, "no such sticker: %q on %q", name, uri)
	}
	if err != nil {
		return "", rmpderr.Wrap(rmpderr.Storage, err)
	}
	return value, nil
}

// SetSticker writes (or overwrites) a sticker value, per `sticker set`.
func (s *Store) SetSticker(ctx context.Context, uri, name, value string) error {
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO stickers (id, uri, name, value) VALUES (nextval('stickers_id_seq'), ?, ?, ?)
		 ON CONFLICT (uri, name) DO UPDATE SET value = EXCLUDED.value`, uri, name, value)
	if err != nil {
		return rmpderr.Wrap(rmpderr.Storage, err)
	}
	return nil
}

// DeleteSticker removes one sticker, or every sticker on uri if name is
// empty, per `sticker delete`.
func (s *Store) DeleteSticker(ctx context.Context, uri, name string) error {
	var res sql.Result
	var err error
	if name == "" {
		res, err = s.conn.ExecContext(ctx, `DELETE FROM stickers WHERE uri = ?`, uri)
	} else {
		res, err = s.conn.ExecContext(ctx, `DELETE FROM stickers WHERE uri = ? AND name = ?`, uri, name)
	}
	if err != nil {
		return rmpderr.Wrap(rmpderr.Storage, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rmpderr.Newf(rmpderr.NotExists, "no such sticker on %q", uri)
	}
	return nil
}

// ListStickers returns every sticker attached to uri, per `sticker list`.
func (s *Store) ListStickers(ctx context.Context, uri string) ([]Sticker, error) {
	rows, err := s.conn.QueryContext(ctx, `SELECT uri, name, value FROM stickers WHERE uri = ? ORDER BY name`, uri)
	if err != nil {
		return nil, rmpderr.Wrap(rmpderr.Storage, err)
	}
	defer rows.Close()

	var out []Sticker
	for rows.Next() {
		var st Sticker
		if err := rows.Scan(&st.URI, &st.Name, &st.Value); err != nil {
			return nil, rmpderr.Wrap(rmpderr.Storage, err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// FindStickers returns every uri carrying the named sticker, per
// `sticker find`.
func (s *Store) FindStickers(ctx context.Context, name string) ([]Sticker, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT uri, name, value FROM stickers WHERE name = ? ORDER BY uri`, name)
	if err != nil {
		return nil, rmpderr.Wrap(rmpderr.Storage, err)
	}
	defer rows.Close()

	var out []Sticker
	for rows.Next() {
		var st Sticker
		if err := rows.Scan(&st.URI, &st.Name, &st.Value); err != nil {
			return nil, rmpderr.Wrap(rmpderr.Storage, err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
