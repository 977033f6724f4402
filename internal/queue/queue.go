// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

// Package queue implements the play queue: an ordered, versioned list of
// songs with stable per-item ids, per spec.md §4.4.
package queue

import (
	"math/rand"
	"sync"

	"github.com/rmpd/rmpd/internal/rmpderr"
)

// Range is an inclusive-exclusive [Start, End) position range.
type Range struct {
	Start, End int
}

// PlaybackRange restricts playback of an item to a sub-span of the track.
type PlaybackRange struct {
	Start, End float64
}

// Item is one entry in the queue.
type Item struct {
	ID       uint64
	Path     string
	Priority uint8
	Range    *PlaybackRange
	Tags     map[string]string
}

// Queue is an ordered vector of Item plus a monotonic version counter and a
// free-list-free id allocator, guarded by a single RWMutex the same way the
// catalog store guards its prepared-statement cache.
type Queue struct {
	mu      sync.RWMutex
	items   []Item
	version uint32
	nextID  uint64
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{nextID: 1}
}

// Version returns the current version counter.
func (q *Queue) Version() uint32 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.version
}

// Len returns the number of items currently queued.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

// Items returns a copy of the queue contents in position order.
func (q *Queue) Items() []Item {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]Item, len(q.items))
	copy(out, q.items)
	return out
}

// Item returns the item at pos.
func (q *Queue) Item(pos int) (Item, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if pos < 0 || pos >= len(q.items) {
		return Item{}, false
	}
	return q.items[pos], true
}

// ItemByID returns the item with the given id and its current position.
func (q *Queue) ItemByID(id uint64) (Item, int, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for i, it := range q.items {
		if it.ID == id {
			return it, i, true
		}
	}
	return Item{}, 0, false
}

func (q *Queue) bump() { q.version++ }

// Add appends path to the end of the queue.
func (q *Queue) Add(path string) uint64 {
	return q.AddAt(path, -1)
}

// AddAt inserts path at pos; pos < 0 or pos >= len appends.
func (q *Queue) AddAt(path string, pos int) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	id := q.nextID
	q.nextID++
	item := Item{ID: id, Path: path}

	if pos < 0 || pos >= len(q.items) {
		q.items = append(q.items, item)
	} else {
		q.items = append(q.items, Item{})
		copy(q.items[pos+1:], q.items[pos:])
		q.items[pos] = item
	}
	q.bump()
	return id
}

// Delete removes the item at pos, if any.
func (q *Queue) Delete(pos int) (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if pos < 0 || pos >= len(q.items) {
		return Item{}, false
	}
	item := q.items[pos]
	q.items = append(q.items[:pos], q.items[pos+1:]...)
	q.bump()
	return item, true
}

// DeleteID removes the item with the given id, if present.
func (q *Queue) DeleteID(id uint64) (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, it := range q.items {
		if it.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			q.bump()
			return it, true
		}
	}
	return Item{}, false
}

// Move relocates the item at from to position to.
func (q *Queue) Move(from, to int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if from < 0 || from >= len(q.items) || to < 0 || to >= len(q.items) {
		return false
	}
	item := q.items[from]
	q.items = append(q.items[:from], q.items[from+1:]...)
	q.items = append(q.items, Item{})
	copy(q.items[to+1:], q.items[to:])
	q.items[to] = item
	q.bump()
	return true
}

// MoveByID relocates the item with the given id to position to.
func (q *Queue) MoveByID(id uint64, to int) bool {
	q.mu.Lock()
	_, pos, ok := q.itemPositionLocked(id)
	q.mu.Unlock()
	if !ok {
		return false
	}
	return q.Move(pos, to)
}

func (q *Queue) itemPositionLocked(id uint64) (Item, int, bool) {
	for i, it := range q.items {
		if it.ID == id {
			return it, i, true
		}
	}
	return Item{}, 0, false
}

// Swap exchanges the items at positions a and b.
func (q *Queue) Swap(a, b int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if a < 0 || a >= len(q.items) || b < 0 || b >= len(q.items) {
		return false
	}
	q.items[a], q.items[b] = q.items[b], q.items[a]
	q.bump()
	return true
}

// SwapByID exchanges the items with the given ids.
func (q *Queue) SwapByID(a, b uint64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, posA, okA := q.itemPositionLocked(a)
	_, posB, okB := q.itemPositionLocked(b)
	if !okA || !okB {
		return false
	}
	q.items[posA], q.items[posB] = q.items[posB], q.items[posA]
	q.bump()
	return true
}

// Shuffle randomizes the order of the whole queue in place.
func (q *Queue) Shuffle() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.shuffleRangeLocked(0, len(q.items))
	q.bump()
}

// ShuffleRange randomizes the order of [start, end) in place.
func (q *Queue) ShuffleRange(start, end int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if start < 0 || end > len(q.items) || start > end {
		return rmpderr.Newf(rmpderr.Argument, "shuffle range [%d, %d) out of bounds for len %d", start, end, len(q.items))
	}
	q.shuffleRangeLocked(start, end)
	q.bump()
	return nil
}

func (q *Queue) shuffleRangeLocked(start, end int) {
	span := q.items[start:end]
	rand.Shuffle(len(span), func(i, j int) { span[i], span[j] = span[j], span[i] })
}

// SetPriorityRange sets priority on every item within [start, end).
func (q *Queue) SetPriorityRange(priority uint8, r Range) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if r.Start < 0 || r.End > len(q.items) || r.Start > r.End {
		return rmpderr.Newf(rmpderr.Argument, "priority range [%d, %d) out of bounds for len %d", r.Start, r.End, len(q.items))
	}
	for i := r.Start; i < r.End; i++ {
		q.items[i].Priority = priority
	}
	q.bump()
	return nil
}

// SetPriorityIDs sets priority on every item named by id; ids not found
// are silently skipped.
func (q *Queue) SetPriorityIDs(priority uint8, ids []uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	idSet := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}
	for i := range q.items {
		if _, ok := idSet[q.items[i].ID]; ok {
			q.items[i].Priority = priority
		}
	}
	q.bump()
}

// SetRangeByID sets (or clears, when r is nil) the per-item playback range
// for the item with the given id.
func (q *Queue) SetRangeByID(id uint64, r *PlaybackRange) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			q.items[i].Range = r
			q.bump()
			return true
		}
	}
	return false
}

// AddTagByID attaches (or overwrites) a client-supplied tag on the item
// with the given id.
func (q *Queue) AddTagByID(id uint64, name, value string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			if q.items[i].Tags == nil {
				q.items[i].Tags = make(map[string]string)
			}
			q.items[i].Tags[name] = value
			q.bump()
			return true
		}
	}
	return false
}

// ClearTagsByID clears one named tag, or every tag when name is empty.
func (q *Queue) ClearTagsByID(id uint64, name string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			if name == "" {
				q.items[i].Tags = nil
			} else {
				delete(q.items[i].Tags, name)
			}
			q.bump()
			return true
		}
	}
	return false
}

// Clear empties the queue. The id allocator is not reset, so ids remain
// unique across the lifetime of the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
	q.bump()
}
