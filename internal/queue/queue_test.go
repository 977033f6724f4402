// rmpd - MPD-compatible music player daemon
// Copyright 2026 The rmpd Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rmpd/rmpd

package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddAppendsAndBumpsVersion(t *testing.T) {
	q := New()
	v0 := q.Version()
	id := q.Add("a.flac")
	assert.NotZero(t, id)
	assert.Equal(t, v0+1, q.Version())
	assert.Equal(t, 1, q.Len())
}

func TestAddAtInsertsAndAppendsPastEnd(t *testing.T) {
	q := New()
	q.Add("a.flac")
	q.Add("c.flac")
	q.AddAt("b.flac", 1)
	items := q.Items()
	require.Len(t, items, 3)
	assert.Equal(t, "a.flac", items[0].Path)
	assert.Equal(t, "b.flac", items[1].Path)
	assert.Equal(t, "c.flac", items[2].Path)

	q.AddAt("d.flac", 99)
	items = q.Items()
	assert.Equal(t, "d.flac", items[len(items)-1].Path)
}

func TestDeleteRenumbersPositions(t *testing.T) {
	q := New()
	q.Add("a.flac")
	q.Add("b.flac")
	q.Add("c.flac")

	item, ok := q.Delete(1)
	require.True(t, ok)
	assert.Equal(t, "b.flac", item.Path)

	items := q.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a.flac", items[0].Path)
	assert.Equal(t, "c.flac", items[1].Path)

	for i, it := range q.Items() {
		got, pos, ok := q.ItemByID(it.ID)
		require.True(t, ok)
		assert.Equal(t, i, pos)
		assert.Equal(t, it.Path, got.Path)
	}
}

func TestDeleteOutOfRangeIsNoOp(t *testing.T) {
	q := New()
	q.Add("a.flac")
	_, ok := q.Delete(5)
	assert.False(t, ok)
}

func TestDeleteIDNotFound(t *testing.T) {
	q := New()
	q.Add("a.flac")
	_, ok := q.DeleteID(999)
	assert.False(t, ok)
}

func TestMoveReindexes(t *testing.T) {
	q := New()
	q.Add("a.flac")
	q.Add("b.flac")
	q.Add("c.flac")

	ok := q.Move(0, 2)
	require.True(t, ok)
	items := q.Items()
	assert.Equal(t, []string{"b.flac", "c.flac", "a.flac"}, paths(items))
}

func TestMoveOutOfRangeReturnsFalse(t *testing.T) {
	q := New()
	q.Add("a.flac")
	assert.False(t, q.Move(0, 5))
}

func TestMoveByID(t *testing.T) {
	q := New()
	q.Add("a.flac")
	id := q.Add("b.flac")
	q.Add("c.flac")

	require.True(t, q.MoveByID(id, 0))
	items := q.Items()
	assert.Equal(t, "b.flac", items[0].Path)
}

func TestSwapAndSwapByID(t *testing.T) {
	q := New()
	idA := q.Add("a.flac")
	idB := q.Add("b.flac")

	require.True(t, q.Swap(0, 1))
	items := q.Items()
	assert.Equal(t, "b.flac", items[0].Path)

	require.True(t, q.SwapByID(idA, idB))
	items = q.Items()
	assert.Equal(t, "a.flac", items[0].Path)
}

func TestShuffleRangeRejectsOutOfBounds(t *testing.T) {
	q := New()
	q.Add("a.flac")
	err := q.ShuffleRange(0, 5)
	assert.Error(t, err)
}

func TestShufflePreservesSetOfItems(t *testing.T) {
	q := New()
	for i := 0; i < 20; i++ {
		q.Add("song.flac")
	}
	before := q.Items()
	q.Shuffle()
	after := q.Items()
	assert.Len(t, after, len(before))
}

func TestPriorityRangeAndIDs(t *testing.T) {
	q := New()
	idA := q.Add("a.flac")
	q.Add("b.flac")
	idC := q.Add("c.flac")

	require.NoError(t, q.SetPriorityRange(5, Range{Start: 0, End: 2}))
	items := q.Items()
	assert.EqualValues(t, 5, items[0].Priority)
	assert.EqualValues(t, 5, items[1].Priority)
	assert.EqualValues(t, 0, items[2].Priority)

	q.SetPriorityIDs(9, []uint64{idA, idC})
	items = q.Items()
	assert.EqualValues(t, 9, items[0].Priority)
	assert.EqualValues(t, 9, items[2].Priority)
}

func TestSetRangeByIDSetsAndClears(t *testing.T) {
	q := New()
	id := q.Add("a.flac")

	ok := q.SetRangeByID(id, &PlaybackRange{Start: 10, End: 20})
	require.True(t, ok)
	item, _, _ := q.ItemByID(id)
	require.NotNil(t, item.Range)
	assert.Equal(t, 10.0, item.Range.Start)

	q.SetRangeByID(id, nil)
	item, _, _ = q.ItemByID(id)
	assert.Nil(t, item.Range)
}

func TestAddAndClearTagsByID(t *testing.T) {
	q := New()
	id := q.Add("a.flac")

	require.True(t, q.AddTagByID(id, "mood", "chill"))
	item, _, _ := q.ItemByID(id)
	assert.Equal(t, "chill", item.Tags["mood"])

	require.True(t, q.ClearTagsByID(id, "mood"))
	item, _, _ = q.ItemByID(id)
	assert.Empty(t, item.Tags)
}

func TestClearEmptiesQueueAndBumpsVersion(t *testing.T) {
	q := New()
	q.Add("a.flac")
	v := q.Version()
	q.Clear()
	assert.Zero(t, q.Len())
	assert.Equal(t, v+1, q.Version())
}

func TestPositionsStayContiguous(t *testing.T) {
	q := New()
	for i := 0; i < 10; i++ {
		q.Add("song.flac")
	}
	q.Delete(3)
	q.Move(0, 5)
	q.Swap(1, 2)
	for i, it := range q.Items() {
		_, pos, ok := q.ItemByID(it.ID)
		require.True(t, ok)
		assert.Equal(t, i, pos)
	}
}

func paths(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Path
	}
	return out
}
