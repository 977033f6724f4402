// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package catalog

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

// StoreArtwork records an embedded or sidecar picture for songPath, content
// addressed by its SHA-256 so repeat scans of an unchanged file are no-ops.
func (s *Store) StoreArtwork(ctx context.Context, songPath, pictureType, mimeType string, data []byte) (Artwork, error) {
	sum := sha256.Sum256(data)
	art := Artwork{
		SongPath:    songPath,
		PictureType: pictureType,
		MimeType:    mimeType,
		Data:        data,
		Size:        int64(len(data)),
		SHA256:      hex.EncodeToString(sum[:]),
	}

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO artwork (id, song_path, picture_type, mime_type, data, size, sha256)
		 VALUES (nextval('artwork_id_seq'), ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (song_path, picture_type) DO UPDATE SET
			mime_type = EXCLUDED.mime_type, data = EXCLUDED.data,
			size = EXCLUDED.size, sha256 = EXCLUDED.sha256`,
		art.SongPath, art.PictureType, art.MimeType, art.Data, art.Size, art.SHA256)
	if err != nil {
		return Artwork{}, rmpderr.Wrap(rmpderr.Storage, err)
	}
	return art, nil
}

// GetArtwork returns the "cover" picture for a song path, per `albumart`.
// readpicture (any embedded picture type) is GetArtworkByType.
func (s *Store) GetArtwork(ctx context.Context, songPath string) (Artwork, error) {
	return s.GetArtworkByType(ctx, songPath, "cover")
}

// GetArtworkByType returns a specific picture type for a song path, per
// `readpicture`.
func (s *Store) GetArtworkByType(ctx context.Context, songPath, pictureType string) (Artwork, error) {
	var art Artwork
	err := s.conn.QueryRowContext(ctx,
		`SELECT song_path, picture_type, mime_type, data, size, sha256
		 FROM artwork WHERE song_path = ? AND picture_type = ?`, songPath, pictureType).
		Scan(&art.SongPath, &art.PictureType, &art.MimeType, &art.Data, &art.Size, &art.SHA256)
	if err == sql.ErrNoRows {
		return Artwork{}, rmpderr.Newf(rmpderr.NotExists, "no artwork for %q", songPath)
	}
	if err != nil {
		return Artwork{}, rmpderr.Wrap(rmpderr.Storage, err)
	}
	return art, nil
}
