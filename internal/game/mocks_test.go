package game

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/photoguessr-backend/internal"
)

var (
	eiffel = internal.Photo{
		ImageURL:   "https://img.example/eiffel.jpg",
		Location:   "Eiffel Tower, Paris",
		Difficulty: internal.DifficultyEasy,
		CoordX:     48.8584,
		CoordY:     2.2945,
	}
	opera = internal.Photo{
		ImageURL:   "https://img.example/opera.jpg",
		Location:   "Sydney Opera House",
		Difficulty: internal.DifficultyMedium,
		CoordX:     -33.8568,
		CoordY:     151.2153,
	}
)

// slowOptions keep every timer far in the future so tests drive the room by hand.
func slowOptions() Options {
	return Options{
		TotalRounds:    3,
		MinPlayers:     2,
		MaxPlayers:     4,
		RoundDuration:  time.Minute,
		CountdownTicks: 3,
		TickInterval:   time.Hour,
		AdvanceDelay:   time.Hour,
	}
}

// =============================================================================
// BROADCASTER
// =============================================================================

type sentEvent struct {
	Direct  bool
	Target  string
	Event   string
	Payload any
}

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []sentEvent
}

func (r *recordingBroadcaster) Emit(roomID, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{Target: roomID, Event: event, Payload: payload})
}

func (r *recordingBroadcaster) EmitTo(connRef, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, sentEvent{Direct: true, Target: connRef, Event: event, Payload: payload})
}

func (r *recordingBroadcaster) named(event string) []sentEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sentEvent
	for _, ev := range r.events {
		if ev.Event == event {
			out = append(out, ev)
		}
	}
	return out
}

func (r *recordingBroadcaster) count(event string) int {
	return len(r.named(event))
}

func (r *recordingBroadcaster) last(event string) (sentEvent, bool) {
	evs := r.named(event)
	if len(evs) == 0 {
		return sentEvent{}, false
	}
	return evs[len(evs)-1], true
}

// =============================================================================
// PHOTO STORES
// =============================================================================

type mockPhotoStore struct {
	mock.Mock
}

func (m *mockPhotoStore) RandomPhoto(ctx context.Context) (internal.Photo, error) {
	args := m.Called(ctx)
	return args.Get(0).(internal.Photo), args.Error(1)
}

// cyclePhotos hands out its photos in order, forever.
type cyclePhotos struct {
	mu     sync.Mutex
	photos []internal.Photo
	next   int
}

func (c *cyclePhotos) RandomPhoto(context.Context) (internal.Photo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.photos) == 0 {
		return internal.Photo{}, internal.ErrNoPhotosAvailable
	}
	p := c.photos[c.next%len(c.photos)]
	c.next++
	return p, nil
}

// gatedPhotos blocks every fetch made after close(armed) until release is
// closed.
type gatedPhotos struct {
	armed   atomic.Bool
	waiting atomic.Int32
	release chan struct{}
}

func newGatedPhotos() *gatedPhotos {
	return &gatedPhotos{release: make(chan struct{})}
}

func (g *gatedPhotos) RandomPhoto(ctx context.Context) (internal.Photo, error) {
	if !g.armed.Load() {
		return eiffel, nil
	}
	g.waiting.Add(1)
	select {
	case <-g.release:
		return opera, nil
	case <-ctx.Done():
		return internal.Photo{}, ctx.Err()
	}
}

// =============================================================================
// RECORDER & CLOCK
// =============================================================================

type countingRecorder struct {
	mu       sync.Mutex
	manual   int
	timeouts int
	advanced int
	finished int
	swept    int
	failed   int
}

func (c *countingRecorder) GuessRecorded(timedOut bool, _ float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if timedOut {
		c.timeouts++
		return
	}
	c.manual++
}

func (c *countingRecorder) RoundAdvanced() {
	c.mu.Lock()
	c.advanced++
	c.mu.Unlock()
}

func (c *countingRecorder) GameFinished() {
	c.mu.Lock()
	c.finished++
	c.mu.Unlock()
}

func (c *countingRecorder) RoomsSwept(n int) {
	c.mu.Lock()
	c.swept += n
	c.mu.Unlock()
}

func (c *countingRecorder) PhotoFetchFailed() {
	c.mu.Lock()
	c.failed++
	c.mu.Unlock()
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// =============================================================================
// HELPERS
// =============================================================================

func newTestManager(t *testing.T, photos PhotoStore, opts Options, options ...Option) (*Manager, *recordingBroadcaster) {
	t.Helper()
	bc := &recordingBroadcaster{}
	m := NewManager(NewStore(), photos, bc, opts, options...)
	t.Cleanup(func() {
		for _, room := range m.Store().Rooms() {
			room.Mu.Lock()
			room.Timers.CancelAll()
			room.Mu.Unlock()
		}
	})
	return m, bc
}

// roomWith creates a room and joins names, each on connection "conn-<name>".
func roomWith(t *testing.T, m *Manager, names ...string) string {
	t.Helper()
	state, err := m.CreateRoom(context.Background())
	require.NoError(t, err)
	for _, name := range names {
		_, err := m.JoinRoom(state.RoomId, name, "conn-"+name)
		require.NoError(t, err)
	}
	return state.RoomId
}

// playingRoom returns a room already in round 1.
func playingRoom(t *testing.T, m *Manager, names ...string) string {
	t.Helper()
	roomID := roomWith(t, m, names...)
	require.NoError(t, m.StartGame(roomID))
	return roomID
}

// withRoom runs fn with the room locked.
func withRoom(t *testing.T, m *Manager, roomID string, fn func(room *internal.Room)) {
	t.Helper()
	room, ok := m.Store().Get(roomID)
	require.True(t, ok, "room %s not in store", roomID)
	room.Mu.Lock()
	defer room.Mu.Unlock()
	fn(room)
}

func roomState(t *testing.T, m *Manager, roomID string) internal.GameState {
	t.Helper()
	var state internal.GameState
	withRoom(t, m, roomID, func(room *internal.Room) { state = room.GameState })
	return state
}

// expireRound fires the room's current round timer as if its time ran out.
func expireRound(t *testing.T, m *Manager, roomID string) {
	t.Helper()
	var (
		round int
		gen   uint64
		ok    bool
	)
	withRoom(t, m, roomID, func(room *internal.Room) {
		round = room.CurrentRound
		gen, ok = room.Timers.Current(internal.TimerRound)
	})
	require.True(t, ok, "room %s has no round timer", roomID)
	m.roundExpired(roomID, round, gen)
}
