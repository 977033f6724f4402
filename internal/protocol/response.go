// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import (
	"fmt"
	"strings"

	"github.com/rmpd/rmpd/internal/catalog"
	"github.com/rmpd/rmpd/internal/playback"
)

// Response accumulates `Key: value\n` lines for one command's reply. A
// response carrying a binary chunk (albumart/readpicture/readcomments)
// also sets Binary; the connection loop appends it raw after the text
// fields, per spec.md §4.8 step 5.
type Response struct {
	b      strings.Builder
	Binary []byte
}

// SetBinary records a chunked binary transfer: size is the full resource
// length (not just len(chunk)), letting the client page through offsets.
func (r *Response) SetBinary(size int, chunk []byte) {
	r.Fieldf("size", "%d", size)
	r.Fieldf("binary", "%d", len(chunk))
	r.Binary = chunk
}

func (r *Response) Field(key, value string) {
	r.b.WriteString(key)
	r.b.WriteString(": ")
	r.b.WriteString(value)
	r.b.WriteByte('\n')
}

func (r *Response) Fieldf(key, format string, args ...interface{}) {
	r.Field(key, fmt.Sprintf(format, args...))
}

func (r *Response) String() string { return r.b.String() }

// WriteSong renders one Song in MPD's canonical key order. pos and id are
// the queue position/id when rendering from a play queue context; pass
// (-1, 0) to omit both (e.g. when rendering a bare catalog listing).
func (r *Response) WriteSong(s catalog.Song, pos int, id uint64) {
	r.Field("file", s.Path)
	if pos >= 0 {
		r.Fieldf("Pos", "%d", pos)
	}
	if id != 0 {
		r.Fieldf("Id", "%d", id)
	}
	writeIfSet := func(key, value string) {
		if value != "" {
			r.Field(key, value)
		}
	}
	writeIfSet("Title", s.Title)
	writeIfSet("Artist", s.Artist)
	writeIfSet("Album", s.Album)
	writeIfSet("AlbumArtist", s.AlbumArtist)
	writeIfSet("Track", s.Track)
	writeIfSet("Disc", s.Disc)
	writeIfSet("Date", s.Date)
	writeIfSet("Genre", s.Genre)
	writeIfSet("Composer", s.Composer)
	writeIfSet("Performer", s.Performer)
	if s.Duration > 0 {
		r.Fieldf("Time", "%d", int(s.Duration))
		r.Fieldf("duration", "%.3f", s.Duration)
	}
}

// WriteAudioFormat renders the sample_rate:bits:channels triple.
func (r *Response) WriteAudioFormat(sampleRate, bits, channels int) {
	r.Fieldf("audio", "%d:%d:%d", sampleRate, bits, channels)
}

// PlayerStatus is the subset of engine + queue state the `status` command
// renders, per spec.md §4.9.
type PlayerStatus struct {
	Volume          int
	State           playback.State
	CurrentPos      int // -1 if none
	CurrentID       uint64
	Elapsed         float64
	Duration        float64
	Bitrate         int
	SampleRate      int
	Bits            int
	Channels        int
	Random          bool
	Repeat          bool
	Single          int // 0 off, 1 on, 2 oneshot
	Consume         int
	CrossfadeSecs   int
	MixrampDB       float64
	MixrampDelay    float64
	PlaylistVersion uint32
	PlaylistLength  int
	UpdatingJobID   int // 0 means no update running
	LastError       string
}

func boolBit(b bool) int {
	if b {
		return 1
	}
	return 0
}

// WriteStatus renders a PlayerStatus per spec.md §4.9.
func (r *Response) WriteStatus(s PlayerStatus) {
	r.Fieldf("volume", "%d", s.Volume)
	r.Field("state", s.State.String())
	if s.CurrentPos >= 0 {
		r.Fieldf("song", "%d", s.CurrentPos)
		r.Fieldf("songid", "%d", s.CurrentID)
	}
	if s.State != playback.StateStop {
		r.Fieldf("elapsed", "%.3f", s.Elapsed)
		r.Fieldf("time", "%d:%d", int(s.Elapsed), int(s.Duration))
		r.Fieldf("bitrate", "%d", s.Bitrate)
		r.WriteAudioFormat(s.SampleRate, s.Bits, s.Channels)
	}
	r.Fieldf("repeat", "%d", boolBit(s.Repeat))
	r.Fieldf("random", "%d", boolBit(s.Random))
	r.Fieldf("single", "%d", s.Single)
	r.Fieldf("consume", "%d", s.Consume)
	r.Fieldf("playlist", "%d", s.PlaylistVersion)
	r.Fieldf("playlistlength", "%d", s.PlaylistLength)
	r.Fieldf("xfade", "%d", s.CrossfadeSecs)
	r.Fieldf("mixrampdb", "%.6f", s.MixrampDB)
	r.Fieldf("mixrampdelay", "%.6f", s.MixrampDelay)
	if s.UpdatingJobID != 0 {
		r.Fieldf("updating_db", "%d", s.UpdatingJobID)
	}
	if s.LastError != "" {
		r.Field("error", s.LastError)
	}
}
