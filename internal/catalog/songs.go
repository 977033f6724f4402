// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rmpd/rmpd/internal/filter"
	"github.com/rmpd/rmpd/internal/rmpderr"
)

const songColumns = `id, path, directory_id, duration, title, artist, album, album_artist,
	track, disc, date, genre, composer, performer, comment, label, original_date,
	sort_artist, sort_album, sort_album_artist, mb_track_id, mb_album_id, mb_artist_id,
	mb_album_artist_id, mb_release_track_id, mb_work_id, sample_rate, channels,
	bits_per_sample, bitrate, rg_track_gain, rg_track_peak, rg_album_gain, rg_album_peak,
	added_at, last_modified`

// scanSong scans one row shaped like songColumns into a Song. Adapted from
// the teacher's generic scanFunc[T]/queryAndScan[T] row-scanning pair; kept
// non-generic here since every caller scans the identical Song shape.
func scanSong(rows *sql.Rows) (Song, error) {
	var s Song
	err := rows.Scan(
		&s.ID, &s.Path, new(sql.NullInt64), &s.Duration, &s.Title, &s.Artist, &s.Album,
		&s.AlbumArtist, &s.Track, &s.Disc, &s.Date, &s.Genre, &s.Composer, &s.Performer,
		&s.Comment, &s.Label, &s.OriginalDate, &s.SortArtist, &s.SortAlbum, &s.SortAlbumArtist,
		&s.MBTrackID, &s.MBAlbumID, &s.MBArtistID, &s.MBAlbumArtistID, &s.MBReleaseTrackID,
		&s.MBWorkID, &s.SampleRate, &s.Channels, &s.BitsPerSample, &s.Bitrate,
		&s.ReplayGainTrackGain, &s.ReplayGainTrackPeak, &s.ReplayGainAlbumGain, &s.ReplayGainAlbumPeak,
		&s.AddedAt, &s.LastModified,
	)
	return s, err
}

// queryAndScanSongs runs query and scans every row as a Song. Adapted from
// the teacher's internal/database query_helpers.go queryAndScan[T] helper.
func queryAndScanSongs(ctx context.Context, db *sql.DB, query string, args ...interface{}) ([]Song, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, song)
	}
	return out, rows.Err()
}

// AddSong inserts or replaces a song by path.
func (s *Store) AddSong(ctx context.Context, song Song) (int64, error) {
	var dirID sql.NullInt64

	err := s.conn.QueryRowContext(ctx,
		`INSERT INTO songs (
			id, path, directory_id, duration, title, artist, album, album_artist,
			track, disc, date, genre, composer, performer, comment, label, original_date,
			sort_artist, sort_album, sort_album_artist, mb_track_id, mb_album_id, mb_artist_id,
			mb_album_artist_id, mb_release_track_id, mb_work_id, sample_rate, channels,
			bits_per_sample, bitrate, rg_track_gain, rg_track_peak, rg_album_gain, rg_album_peak,
			added_at, last_modified
		) VALUES (nextval('songs_id_seq'), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (path) DO UPDATE SET
			directory_id = EXCLUDED.directory_id, duration = EXCLUDED.duration,
			title = EXCLUDED.title, artist = EXCLUDED.artist, album = EXCLUDED.album,
			album_artist = EXCLUDED.album_artist, track = EXCLUDED.track, disc = EXCLUDED.disc,
			date = EXCLUDED.date, genre = EXCLUDED.genre, composer = EXCLUDED.composer,
			performer = EXCLUDED.performer, comment = EXCLUDED.comment, label = EXCLUDED.label,
			original_date = EXCLUDED.original_date, sort_artist = EXCLUDED.sort_artist,
			sort_album = EXCLUDED.sort_album, sort_album_artist = EXCLUDED.sort_album_artist,
			mb_track_id = EXCLUDED.mb_track_id, mb_album_id = EXCLUDED.mb_album_id,
			mb_artist_id = EXCLUDED.mb_artist_id, mb_album_artist_id = EXCLUDED.mb_album_artist_id,
			mb_release_track_id = EXCLUDED.mb_release_track_id, mb_work_id = EXCLUDED.mb_work_id,
			sample_rate = EXCLUDED.sample_rate, channels = EXCLUDED.channels,
			bits_per_sample = EXCLUDED.bits_per_sample, bitrate = EXCLUDED.bitrate,
			rg_track_gain = EXCLUDED.rg_track_gain, rg_track_peak = EXCLUDED.rg_track_peak,
			rg_album_gain = EXCLUDED.rg_album_gain, rg_album_peak = EXCLUDED.rg_album_peak,
			last_modified = EXCLUDED.last_modified
		RETURNING id`,
		song.Path, dirID, song.Duration, song.Title, song.Artist, song.Album, song.AlbumArtist,
		song.Track, song.Disc, song.Date, song.Genre, song.Composer, song.Performer, song.Comment,
		song.Label, song.OriginalDate, song.SortArtist, song.SortAlbum, song.SortAlbumArtist,
		song.MBTrackID, song.MBAlbumID, song.MBArtistID, song.MBAlbumArtistID,
		song.MBReleaseTrackID, song.MBWorkID, song.SampleRate, song.Channels, song.BitsPerSample,
		song.Bitrate, song.ReplayGainTrackGain, song.ReplayGainTrackPeak, song.ReplayGainAlbumGain,
		song.ReplayGainAlbumPeak, song.AddedAt, song.LastModified,
	).Scan(&song.ID)
	if err != nil {
		return 0, rmpderr.Wrap(rmpderr.Storage, fmt.Errorf("add song %q: %w", song.Path, err))
	}

	s.songCache.Delete(cacheKeyPath(song.Path))
	s.scanFilter.Add(song.Path)
	return song.ID, nil
}

// GetSongByPath looks up a song by its catalog-relative path.
func (s *Store) GetSongByPath(ctx context.Context, path string) (Song, error) {
	if cached, ok := s.songCache.Get(cacheKeyPath(path)); ok {
		return cached.(Song), nil
	}

	songs, err := queryAndScanSongs(ctx, s.conn,
		`SELECT `+songColumns+` FROM songs WHERE path = ?`, path)
	if err != nil {
		return Song{}, rmpderr.Wrap(rmpderr.Storage, err)
	}
	if len(songs) == 0 {
		return Song{}, rmpderr.Newf(rmpderr.NotExists, "no such song: %q", path)
	}

	s.songCache.Set(cacheKeyPath(path), songs[0])
	return songs[0], nil
}

// GetSong looks up a song by its catalog id.
func (s *Store) GetSong(ctx context.Context, id int64) (Song, error) {
	songs, err := queryAndScanSongs(ctx, s.conn,
		`SELECT `+songColumns+` FROM songs WHERE id = ?`, id)
	if err != nil {
		return Song{}, rmpderr.Wrap(rmpderr.Storage, err)
	}
	if len(songs) == 0 {
		return Song{}, rmpderr.Newf(rmpderr.NotExists, "no such song id: %d", id)
	}
	return songs[0], nil
}

// DeleteSongByPath removes a song, used when a filesystem watch observes a
// deletion during an incremental rescan.
func (s *Store) DeleteSongByPath(ctx context.Context, path string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM songs WHERE path = ?`, path)
	if err != nil {
		return rmpderr.Wrap(rmpderr.Storage, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return rmpderr.Newf(rmpderr.NotExists, "no such song: %q", path)
	}
	s.songCache.Delete(cacheKeyPath(path))
	return nil
}

// Stats is the aggregate catalog view the `stats` command reports.
type Stats struct {
	Artists    int
	Albums     int
	Songs      int
	PlayTime   float64 // seconds
	DBPlayTime float64 // seconds, sum over all songs
}

// Stats computes the library-wide counts and total duration.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	row := s.conn.QueryRowContext(ctx, `
		SELECT
			COUNT(DISTINCT NULLIF(artist, '')),
			COUNT(DISTINCT NULLIF(album, '')),
			COUNT(*),
			COALESCE(SUM(duration), 0)
		FROM songs`)
	if err := row.Scan(&stats.Artists, &stats.Albums, &stats.Songs, &stats.DBPlayTime); err != nil {
		return Stats{}, rmpderr.Wrap(rmpderr.Storage, err)
	}
	return stats, nil
}

// ListArtists returns every distinct non-empty artist tag value.
func (s *Store) ListArtists(ctx context.Context) ([]string, error) {
	return s.listDistinct(ctx, "artist")
}

// ListAlbumArtists returns every distinct non-empty album_artist tag value.
func (s *Store) ListAlbumArtists(ctx context.Context) ([]string, error) {
	return s.listDistinct(ctx, "album_artist")
}

// ListGenres returns every distinct non-empty genre tag value.
func (s *Store) ListGenres(ctx context.Context) ([]string, error) {
	return s.listDistinct(ctx, "genre")
}

// ListAlbums returns every distinct non-empty album value, optionally
// restricted to songs by artist (empty string means unrestricted).
func (s *Store) ListAlbums(ctx context.Context, artist string) ([]string, error) {
	query := `SELECT DISTINCT album FROM songs WHERE album != ''`
	args := []interface{}{}
	if artist != "" {
		query += ` AND (artist = ? OR album_artist = ?)`
		args = append(args, artist, artist)
	}
	query += ` ORDER BY album`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, rmpderr.Wrap(rmpderr.Storage, err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (s *Store) listDistinct(ctx context.Context, column string) ([]string, error) {
	rows, err := s.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT DISTINCT %s FROM songs WHERE %s != '' ORDER BY %s`, column, column, column))
	if err != nil {
		return nil, rmpderr.Wrap(rmpderr.Storage, err)
	}
	defer rows.Close()
	return scanStrings(rows)
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// FindSongs returns every song whose tag exactly matches value, the
// simple `find`/`list` form per spec.md §4.3.
func (s *Store) FindSongs(ctx context.Context, tag, value string) ([]Song, error) {
	col := filter.Column(tag)
	songs, err := queryAndScanSongs(ctx, s.conn,
		`SELECT `+songColumns+` FROM songs WHERE `+col+` = ? ORDER BY album, disc, track`, value)
	if err != nil {
		return nil, rmpderr.Wrap(rmpderr.Storage, err)
	}
	return songs, nil
}

// FindSongsFilter evaluates an MPD filter expression against the catalog.
func (s *Store) FindSongsFilter(ctx context.Context, expr filter.Expr) ([]Song, error) {
	compiled := filter.Compile(expr)
	songs, err := queryAndScanSongs(ctx, s.conn,
		`SELECT `+songColumns+` FROM songs WHERE `+compiled.SQL+` ORDER BY album, disc, track`,
		compiled.Params...)
	if err != nil {
		return nil, rmpderr.Wrap(rmpderr.Storage, err)
	}
	return songs, nil
}

// SearchSongs performs a case-insensitive full-text search across title,
// artist, album, album_artist, genre, and composer, per the fts extension
// index built in migrateFTS. Falls back to a LIKE scan if fts failed to
// load (e.g. the extension could not be downloaded in this environment).
func (s *Store) SearchSongs(ctx context.Context, query string) ([]Song, error) {
	songs, err := queryAndScanSongs(ctx, s.conn,
		`SELECT `+prefixColumns("t.", songColumns)+`
		 FROM (SELECT *, fts_main_songs.match_bm25(id, ?) AS score FROM songs) t
		 WHERE t.score IS NOT NULL ORDER BY t.score DESC`, query)
	if err == nil {
		return songs, nil
	}

	pattern := "%" + query + "%"
	songs, err2 := queryAndScanSongs(ctx, s.conn,
		`SELECT `+songColumns+` FROM songs WHERE
			title ILIKE ? OR artist ILIKE ? OR album ILIKE ? OR album_artist ILIKE ? OR
			genre ILIKE ? OR composer ILIKE ?
		 ORDER BY album, disc, track`,
		pattern, pattern, pattern, pattern, pattern, pattern)
	if err2 != nil {
		return nil, rmpderr.Wrap(rmpderr.Storage, errors.Join(err, err2))
	}
	return songs, nil
}

func prefixColumns(prefix, columns string) string {
	fields := strings.FieldsFunc(columns, func(r rune) bool { return r == ',' || r == '\n' || r == '\t' })
	for i, col := range fields {
		fields[i] = prefix + strings.TrimSpace(col)
	}
	return strings.Join(fields, ", ")
}

func cacheKeyPath(path string) string { return "song:path:" + path }
