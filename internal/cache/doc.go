// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

/*
Package cache provides the small set of in-memory data structures the
daemon uses to avoid repeated disk and allocation work on hot paths:

  - Cache: a thread-safe TTL map. internal/catalog uses it to hold
    recently-read songs keyed by path, so repeated GetSongByPath lookups
    skip a DuckDB query; internal/eventbus uses it as a
    side registry that lets a watermill message (which only carries an
    opaque byte payload) be handed back to subscribers as the original
    typed Event.
  - BloomFilter: a probabilistic set membership filter. The catalog
    adds every path AddSong writes to one; no catalog code tests
    membership against it, so it does not change what a rescan reads.
  - SlidingWindowStore: a bucketed sliding-window counter per key. The event bus uses it
    to track subscriber lag over time.

None of these structures persist anything; they exist for the lifetime
of the process and are rebuilt from the catalog database or current
playback state on restart.
*/
package cache
