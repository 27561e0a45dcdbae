package game

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/photoguessr-backend/internal"
)

// Options tune the game rules and timers of every room a Manager creates.
type Options struct {
	TotalRounds    int
	MinPlayers     int
	MaxPlayers     int
	RoundDuration  time.Duration
	CountdownTicks int
	TickInterval   time.Duration
	AdvanceDelay   time.Duration
	PhotoTimeout   time.Duration
}

func DefaultOptions() Options {
	return Options{
		TotalRounds:    internal.MaxRounds,
		MinPlayers:     internal.MinPlayersToStart,
		MaxPlayers:     internal.MaxPlayersPerRoom,
		RoundDuration:  internal.DefaultRoundDuration,
		CountdownTicks: internal.DefaultCountdownTicks,
		TickInterval:   internal.DefaultTickInterval,
		AdvanceDelay:   internal.DefaultAdvanceDelay,
		PhotoTimeout:   5 * time.Second,
	}
}

// withDefaults fills every zero field from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.TotalRounds <= 0 {
		o.TotalRounds = def.TotalRounds
	}
	if o.MinPlayers <= 0 {
		o.MinPlayers = def.MinPlayers
	}
	if o.MaxPlayers <= 0 {
		o.MaxPlayers = def.MaxPlayers
	}
	if o.RoundDuration <= 0 {
		o.RoundDuration = def.RoundDuration
	}
	if o.CountdownTicks < 0 {
		o.CountdownTicks = def.CountdownTicks
	}
	if o.TickInterval <= 0 {
		o.TickInterval = def.TickInterval
	}
	if o.AdvanceDelay <= 0 {
		o.AdvanceDelay = def.AdvanceDelay
	}
	if o.PhotoTimeout <= 0 {
		o.PhotoTimeout = def.PhotoTimeout
	}
	return o
}

func (o Options) roomSettings() internal.RoomSettings {
	return internal.RoomSettings{
		TotalRounds:   o.TotalRounds,
		MinPlayers:    o.MinPlayers,
		MaxPlayers:    o.MaxPlayers,
		RoundDuration: o.RoundDuration,
	}
}

// Recorder receives game telemetry. The metrics package provides the
// Prometheus implementation.
type Recorder interface {
	GuessRecorded(timedOut bool, distance float64)
	RoundAdvanced()
	GameFinished()
	RoomsSwept(n int)
	PhotoFetchFailed()
}

type nopRecorder struct{}

func (nopRecorder) GuessRecorded(bool, float64) {}
func (nopRecorder) RoundAdvanced()              {}
func (nopRecorder) GameFinished()               {}
func (nopRecorder) RoomsSwept(int)              {}
func (nopRecorder) PhotoFetchFailed()           {}

type Option func(*Manager)

func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.metrics = r
		}
	}
}

// WithClock replaces time.Now, used for the server-side round clock.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// Manager runs the room state machine. Every exported method is safe for
// concurrent use.
type Manager struct {
	store   *Store
	photos  PhotoStore
	bc      Broadcaster
	opts    Options
	metrics Recorder
	now     func() time.Time
}

func NewManager(store *Store, photos PhotoStore, bc Broadcaster, opts Options, options ...Option) *Manager {
	if store == nil {
		store = NewStore()
	}
	if bc == nil {
		bc = nopBroadcaster{}
	}
	m := &Manager{
		store:   store,
		photos:  photos,
		bc:      bc,
		opts:    opts.withDefaults(),
		metrics: nopRecorder{},
		now:     time.Now,
	}
	for _, apply := range options {
		apply(m)
	}
	return m
}

func (m *Manager) Store() *Store {
	return m.store
}

func (m *Manager) Options() Options {
	return m.opts
}

// lockRoom returns the room locked. The caller must unlock Mu.
func (m *Manager) lockRoom(roomID string) (*internal.Room, error) {
	room, err := m.lockRoomQuiet(roomID)
	if err != nil {
		return nil, err
	}
	room.LastActivity = m.now()
	return room, nil
}

// lockRoomQuiet locks without touching LastActivity. Timer callbacks use it so
// a room nobody interacts with still ages out.
func (m *Manager) lockRoomQuiet(roomID string) (*internal.Room, error) {
	room, ok := m.store.Get(roomID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", internal.ErrRoomNotFound, roomID)
	}
	room.Mu.Lock()
	if room.Closed {
		room.Mu.Unlock()
		return nil, fmt.Errorf("%w: %s", internal.ErrRoomNotFound, roomID)
	}
	return room, nil
}

func (m *Manager) fetchPhoto(ctx context.Context) (internal.Photo, error) {
	if m.photos == nil {
		return internal.Photo{}, internal.ErrNoPhotosAvailable
	}
	ctx, cancel := context.WithTimeout(ctx, m.opts.PhotoTimeout)
	defer cancel()

	photo, err := m.photos.RandomPhoto(ctx)
	if err != nil {
		m.metrics.PhotoFetchFailed()
		log.Warn().Err(err).Msg("[fetchPhoto] photo store failed")
		return internal.Photo{}, err
	}
	return photo, nil
}

// =============================================================================
// EVENT OUTBOX
// =============================================================================

type queuedEvent struct {
	direct  bool
	target  string
	event   string
	payload any
}

// outbox collects events while a room is locked; flush sends them once the
// lock is released so a slow Broadcaster never holds up the room.
type outbox struct {
	events []queuedEvent
}

func (o *outbox) room(roomID, event string, payload any) {
	o.events = append(o.events, queuedEvent{target: roomID, event: event, payload: payload})
}

// to queues a direct event. Players without a connection are skipped.
func (o *outbox) to(connRef, event string, payload any) {
	if connRef == "" {
		return
	}
	o.events = append(o.events, queuedEvent{direct: true, target: connRef, event: event, payload: payload})
}

func (m *Manager) flush(o *outbox) {
	for _, ev := range o.events {
		if ev.direct {
			m.bc.EmitTo(ev.target, ev.event, ev.payload)
			continue
		}
		m.bc.Emit(ev.target, ev.event, ev.payload)
	}
	o.events = nil
}

// unlockAndFlush releases the room and then delivers what was queued.
func (m *Manager) unlockAndFlush(room *internal.Room, o *outbox) {
	room.Mu.Unlock()
	m.flush(o)
}
