// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package protocol

import "github.com/rmpd/rmpd/internal/partition"

// DefaultTagList is the canonical set `tagtypes reset` re-adds from.
var DefaultTagList = []string{
	"Artist", "ArtistSort", "Album", "AlbumSort", "AlbumArtist", "AlbumArtistSort",
	"Title", "Track", "Name", "Genre", "Date", "OriginalDate", "Composer", "Performer",
	"Conductor", "Work", "Grouping", "Comment", "Disc", "Label",
	"MUSICBRAINZ_ARTISTID", "MUSICBRAINZ_ALBUMID", "MUSICBRAINZ_ALBUMARTISTID",
	"MUSICBRAINZ_TRACKID", "MUSICBRAINZ_RELEASETRACKID", "MUSICBRAINZ_WORKID",
}

// AllFeatures is the closed feature set `protocol` negotiates over.
var AllFeatures = []string{"binary", "command_list_ok", "idle", "ranges", "tags"}

// tagSet models the "all enabled (default)" sentinel as a nil set, and an
// explicit subset as a non-nil map. defaults is the canonical list `reset`
// re-derives from; it's DefaultTagList for the tag set and AllFeatures for
// the feature set.
type tagSet struct {
	defaults []string
	explicit map[string]bool // nil means "all enabled"
}

func (t *tagSet) enabled(name string) bool {
	if t.explicit == nil {
		return true
	}
	return t.explicit[name]
}

func (t *tagSet) materialize() {
	if t.explicit != nil {
		return
	}
	t.explicit = make(map[string]bool, len(t.defaults))
	for _, n := range t.defaults {
		t.explicit[n] = true
	}
}

func (t *tagSet) enable(names []string) {
	t.materialize()
	for _, n := range names {
		t.explicit[n] = true
	}
}

func (t *tagSet) disable(names []string) {
	t.materialize()
	for _, n := range names {
		delete(t.explicit, n)
	}
}

func (t *tagSet) clear() {
	t.explicit = make(map[string]bool)
}

func (t *tagSet) all() {
	t.explicit = nil
}

func (t *tagSet) reset(names []string) {
	t.explicit = make(map[string]bool)
	defaults := make(map[string]bool, len(t.defaults))
	for _, n := range t.defaults {
		defaults[n] = true
	}
	for _, n := range names {
		if defaults[n] {
			t.explicit[n] = true
		}
	}
}

// ConnState holds the per-connection negotiated tag/feature sets, channel
// subscriptions, authentication, and current partition, per spec.md §4.11.
type ConnState struct {
	tags     tagSet
	features tagSet

	Authenticated bool
	Channels      []string
	Partition     string
	BinaryLimit   int

	idle *idleTracker
}

// NewConnState returns a connection in the documented default: all tags and
// features enabled, no channels, partition "default".
func NewConnState(binaryLimit int) *ConnState {
	return &ConnState{
		tags:        tagSet{defaults: DefaultTagList},
		features:    tagSet{defaults: AllFeatures},
		Partition:   partition.DefaultName,
		BinaryLimit: binaryLimit,
		idle:        newIdleTracker(),
	}
}

func (c *ConnState) TagEnabled(name string) bool     { return c.tags.enabled(name) }
func (c *ConnState) FeatureEnabled(name string) bool { return c.features.enabled(name) }

func (c *ConnState) EnableTags(names []string)  { c.tags.enable(names) }
func (c *ConnState) DisableTags(names []string) { c.tags.disable(names) }
func (c *ConnState) ClearTags()                 { c.tags.clear() }
func (c *ConnState) AllTags()                   { c.tags.all() }
func (c *ConnState) ResetTags(names []string)   { c.tags.reset(names) }

// EnabledTagTypes returns the tags currently enabled, in DefaultTagList order.
func (c *ConnState) EnabledTagTypes() []string {
	out := make([]string, 0, len(DefaultTagList))
	for _, name := range DefaultTagList {
		if c.tags.enabled(name) {
			out = append(out, name)
		}
	}
	return out
}

func (c *ConnState) EnableFeatures(names []string)  { c.features.enable(names) }
func (c *ConnState) DisableFeatures(names []string) { c.features.disable(names) }
func (c *ConnState) ClearFeatures()                 { c.features.clear() }
func (c *ConnState) AllFeaturesEnabled()            { c.features.all() }
func (c *ConnState) ResetFeatures(names []string)   { c.features.reset(names) }

// EnabledFeatureNames returns the features currently enabled, in
// AllFeatures order.
func (c *ConnState) EnabledFeatureNames() []string {
	out := make([]string, 0, len(AllFeatures))
	for _, name := range AllFeatures {
		if c.features.enabled(name) {
			out = append(out, name)
		}
	}
	return out
}

func (c *ConnState) Subscribe(channel string) bool {
	for _, ch := range c.Channels {
		if ch == channel {
			return false
		}
	}
	c.Channels = append(c.Channels, channel)
	return true
}

// MarkIdle records a subsystem change pending delivery on the next idle reply.
func (c *ConnState) MarkIdle(s Subsystem) { c.idle.Mark(s) }

// DrainIdle returns and clears pending subsystem changes.
func (c *ConnState) DrainIdle() []Subsystem { return c.idle.Drain() }

// IdleMatches reports whether any pending subsystem falls in filter.
func (c *ConnState) IdleMatches(filter []Subsystem) bool { return c.idle.Matches(filter) }

func (c *ConnState) Unsubscribe(channel string) bool {
	for i, ch := range c.Channels {
		if ch == channel {
			c.Channels = append(c.Channels[:i], c.Channels[i+1:]...)
			return true
		}
	}
	return false
}
