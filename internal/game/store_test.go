package game

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/photoguessr-backend/internal"
	"github.com/scythe504/photoguessr-backend/internal/utils"
)

func TestStoreCreateRetriesOnCollision(t *testing.T) {
	codes := []string{"AAAAAA", "AAAAAA", "AAAAAA", "BBBBBB"}
	store := NewStoreWithGenerator(func(int) string {
		code := codes[0]
		codes = codes[1:]
		return code
	})
	now := time.Now()

	first := store.Create(eiffel, internal.DefaultRoomSettings(), now)
	second := store.Create(eiffel, internal.DefaultRoomSettings(), now)

	assert.Equal(t, "AAAAAA", first.Id)
	assert.Equal(t, "BBBBBB", second.Id)
	assert.Equal(t, 2, store.Len())
	assert.Empty(t, codes)
}

func TestStoreCreateGrowsCodeLength(t *testing.T) {
	store := NewStoreWithGenerator(func(n int) string { return strings.Repeat("X", n) })
	now := time.Now()

	first := store.Create(eiffel, internal.DefaultRoomSettings(), now)
	second := store.Create(eiffel, internal.DefaultRoomSettings(), now)

	assert.Len(t, first.Id, utils.RoomCodeLength)
	assert.Len(t, second.Id, utils.RoomCodeLength+1)
}

func TestStoreCreateInitialState(t *testing.T) {
	store := NewStore()
	now := time.Now()

	room := store.Create(eiffel, internal.DefaultRoomSettings(), now)

	assert.Len(t, room.Id, utils.RoomCodeLength)
	assert.Equal(t, internal.StateLobby, room.GameState)
	assert.Equal(t, 1, room.CurrentRound)
	assert.Equal(t, eiffel, room.CurrentPhoto)
	assert.Equal(t, now, room.CreatedAt)
	assert.Empty(t, room.Players)

	got, ok := store.Get(room.Id)
	require.True(t, ok)
	assert.Same(t, room, got)
}

func TestStoreDeleteChecksIdentity(t *testing.T) {
	store := NewStoreWithGenerator(func(n int) string { return "SAME01" })
	now := time.Now()

	old := store.Create(eiffel, internal.DefaultRoomSettings(), now)
	require.True(t, store.Delete(old))
	require.False(t, store.Delete(old))

	replacement := store.Create(eiffel, internal.DefaultRoomSettings(), now)
	assert.Equal(t, old.Id, replacement.Id)

	// A stale pointer must not evict the room now using its code.
	assert.False(t, store.Delete(old))
	got, ok := store.Get("SAME01")
	require.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestStoreRoomsOrderedByCreation(t *testing.T) {
	store := NewStore()
	base := time.Now()

	late := store.Create(eiffel, internal.DefaultRoomSettings(), base.Add(2*time.Second))
	early := store.Create(eiffel, internal.DefaultRoomSettings(), base)
	mid := store.Create(eiffel, internal.DefaultRoomSettings(), base.Add(time.Second))

	rooms := store.Rooms()
	require.Len(t, rooms, 3)
	assert.Same(t, early, rooms[0])
	assert.Same(t, mid, rooms[1])
	assert.Same(t, late, rooms[2])
}

func TestStoreCounts(t *testing.T) {
	store := NewStore()
	now := time.Now()

	a := store.Create(eiffel, internal.DefaultRoomSettings(), now)
	b := store.Create(eiffel, internal.DefaultRoomSettings(), now)
	a.AddPlayer("alice", "", now)
	a.AddPlayer("bob", "", now)
	b.AddPlayer("carol", "", now)

	rooms, players := store.Counts()
	assert.Equal(t, 2, rooms)
	assert.Equal(t, 3, players)

	b.Closed = true
	rooms, players = store.Counts()
	assert.Equal(t, 1, rooms)
	assert.Equal(t, 2, players)
}
