package game

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/photoguessr-backend/internal"
	"github.com/scythe504/photoguessr-backend/internal/utils"
)

// =============================================================================
// ROOM STORE
// =============================================================================

// codeAttemptsPerLength is how many collisions Create tolerates before it
// switches to longer codes.
const codeAttemptsPerLength = 32

// CodeGenerator returns a random room code of the given length.
type CodeGenerator func(length int) string

// Store is the table of live rooms.
//
// The store lock is never held while a room lock is being acquired, so code
// holding a room's Mu may still call Delete.
type Store struct {
	mu       sync.RWMutex
	rooms    map[string]*internal.Room
	generate CodeGenerator
}

func NewStore() *Store {
	return NewStoreWithGenerator(utils.GenerateRoomCode)
}

func NewStoreWithGenerator(gen CodeGenerator) *Store {
	return &Store{
		rooms:    make(map[string]*internal.Room),
		generate: gen,
	}
}

// Create registers a new lobby room under a code no live room uses.
func (s *Store) Create(photo internal.Photo, settings internal.RoomSettings, now time.Time) *internal.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; ; attempt++ {
		length := utils.RoomCodeLength + attempt/codeAttemptsPerLength
		code := s.generate(length)
		if _, taken := s.rooms[code]; taken {
			log.Debug().Str("room", code).Int("attempt", attempt).Msg("[Store.Create] room code collision")
			continue
		}

		room := internal.NewRoom(code, photo, settings, now)
		s.rooms[code] = room
		return room
	}
}

func (s *Store) Get(id string) (*internal.Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	return room, ok
}

// Delete removes room if it is still the one registered under its code.
func (s *Store) Delete(room *internal.Room) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.rooms[room.Id]
	if !ok || current != room {
		return false
	}
	delete(s.rooms, room.Id)
	return true
}

// Rooms returns the live rooms ordered by creation time.
func (s *Store) Rooms() []*internal.Room {
	s.mu.RLock()
	rooms := make([]*internal.Room, 0, len(s.rooms))
	for _, room := range s.rooms {
		rooms = append(rooms, room)
	}
	s.mu.RUnlock()

	// CreatedAt is immutable, reading it without the room lock is fine.
	slices.SortFunc(rooms, func(a, b *internal.Room) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Id, b.Id)
	})
	return rooms
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Counts reports live rooms and the players in them.
func (s *Store) Counts() (rooms, players int) {
	for _, room := range s.Rooms() {
		room.Mu.Lock()
		if !room.Closed {
			rooms++
			players += len(room.Players)
		}
		room.Mu.Unlock()
	}
	return rooms, players
}
