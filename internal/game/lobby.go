package game

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/photoguessr-backend/internal"
	"github.com/scythe504/photoguessr-backend/internal/utils"
)

// =============================================================================
// GAME FLOW - LOBBY & INITIALIZATION
// =============================================================================

// CreateRoom opens a lobby with its first photo already drawn.
func (m *Manager) CreateRoom(ctx context.Context) (*internal.RoomState, error) {
	photo, err := m.fetchPhoto(ctx)
	if err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}

	room := m.store.Create(photo, m.opts.roomSettings(), m.now())

	room.Mu.Lock()
	state := room.Snapshot(m.now())
	room.Mu.Unlock()

	log.Info().Str("room", state.RoomId).Msg("[CreateRoom] room created")
	return &state, nil
}

// playerName normalizes a player name the way JoinRoom stored it.
func playerName(name string) (string, error) {
	normalized, ok := utils.NormalizeName(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", internal.ErrInvalidPlayerName, name)
	}
	return normalized, nil
}

// JoinRoom adds name to the room, or reconnects it when the name is taken.
// connRef may be empty for stateless clients.
func (m *Manager) JoinRoom(roomID, name, connRef string) (*internal.RoomState, error) {
	name, err := playerName(name)
	if err != nil {
		return nil, err
	}

	room, err := m.lockRoom(roomID)
	if err != nil {
		return nil, err
	}

	_, exists := room.Players[name]
	if !exists {
		if room.GameState.Terminal() {
			room.Mu.Unlock()
			return nil, fmt.Errorf("%w: room %s is %s", internal.ErrInvalidState, roomID, room.GameState)
		}
		if room.IsFull() {
			room.Mu.Unlock()
			return nil, fmt.Errorf("%w: %d/%d players", internal.ErrRoomFull, len(room.Players), room.MaxPlayers)
		}
	}

	var out outbox
	player, reconnected := room.AddPlayer(name, connRef, m.now())

	// Joiners are never ready, so a running countdown no longer holds.
	if room.GameState == internal.StateStarting {
		m.cancelCountdownLocked(room, &out)
	}

	state := room.Snapshot(m.now())
	out.to(player.ConnectionRef, internal.EventRoomJoined, state)
	out.room(roomID, internal.EventPlayerJoined, internal.PlayerJoinedData{
		PlayerName:   name,
		Reconnected:  reconnected,
		TotalPlayers: len(room.Players),
		Players:      room.PlayerSnapshots(),
	})

	log.Info().
		Str("room", roomID).
		Str("player", name).
		Bool("reconnected", reconnected).
		Int("players", len(room.Players)).
		Msg("[JoinRoom] player joined")

	m.unlockAndFlush(room, &out)
	return &state, nil
}

// LeaveRoom removes name and reports whether it was present.
func (m *Manager) LeaveRoom(roomID, name string) (bool, error) {
	name, err := playerName(name)
	if err != nil {
		return false, err
	}
	room, err := m.lockRoom(roomID)
	if err != nil {
		return false, err
	}

	var out outbox
	removed := m.removePlayerLocked(room, name, &out)
	m.unlockAndFlush(room, &out)
	return removed, nil
}

// Disconnect removes name only while connRef is still its connection, so a
// socket closing after a reconnect does not evict the new session.
func (m *Manager) Disconnect(roomID, name, connRef string) (bool, error) {
	name, err := playerName(name)
	if err != nil {
		return false, err
	}
	room, err := m.lockRoom(roomID)
	if err != nil {
		return false, err
	}

	player, ok := room.Players[name]
	if !ok || player.ConnectionRef != connRef {
		room.Mu.Unlock()
		return false, nil
	}

	var out outbox
	removed := m.removePlayerLocked(room, name, &out)
	m.unlockAndFlush(room, &out)
	return removed, nil
}

// removePlayerLocked handles every consequence of a departure. When the room
// empties it is closed and dropped from the store before Mu is released.
func (m *Manager) removePlayerLocked(room *internal.Room, name string, out *outbox) bool {
	if !room.RemovePlayer(name) {
		return false
	}

	log.Info().Str("room", room.Id).Str("player", name).Int("players", len(room.Players)).Msg("[LeaveRoom] player left")

	if len(room.Players) == 0 {
		room.GameState = internal.StateEmpty
		room.Timers.CancelAll()
		room.Closed = true
		m.store.Delete(room)
		log.Info().Str("room", room.Id).Msg("[LeaveRoom] room empty, deleted")
		return true
	}

	out.room(room.Id, internal.EventPlayerLeft, internal.PlayerLeftData{
		PlayerName:   name,
		TotalPlayers: len(room.Players),
		Players:      room.PlayerSnapshots(),
	})

	switch room.GameState {
	case internal.StateStarting:
		m.cancelCountdownLocked(room, out)
		m.maybeStartCountdownLocked(room, out)
	case internal.StateLobby:
		m.maybeStartCountdownLocked(room, out)
	case internal.StatePlaying:
		// The leaver may have been the last one the round was waiting on.
		m.checkRoundCompletionLocked(room, out)
	}
	return true
}

// SetReady toggles readiness in the lobby. During the countdown, un-readying
// aborts it.
func (m *Manager) SetReady(roomID, name string, isReady bool) error {
	name, err := playerName(name)
	if err != nil {
		return err
	}
	room, err := m.lockRoom(roomID)
	if err != nil {
		return err
	}

	if room.GameState != internal.StateLobby && room.GameState != internal.StateStarting {
		room.Mu.Unlock()
		return fmt.Errorf("%w: cannot change readiness while %s", internal.ErrInvalidState, room.GameState)
	}

	player, ok := room.Players[name]
	if !ok {
		room.Mu.Unlock()
		return fmt.Errorf("%w: %s", internal.ErrPlayerNotFound, name)
	}

	var out outbox
	player.IsReady = isReady
	out.room(roomID, internal.EventPlayerReadyChanged, internal.PlayerReadyData{
		PlayerName: name,
		IsReady:    isReady,
		Players:    room.PlayerSnapshots(),
	})

	if room.GameState == internal.StateStarting && !isReady {
		m.cancelCountdownLocked(room, &out)
	}
	m.maybeStartCountdownLocked(room, &out)

	m.unlockAndFlush(room, &out)
	return nil
}

// StartCountdown moves a lobby with enough players into the countdown.
func (m *Manager) StartCountdown(roomID string) error {
	room, err := m.lockRoom(roomID)
	if err != nil {
		return err
	}

	if room.GameState != internal.StateLobby {
		room.Mu.Unlock()
		return fmt.Errorf("%w: countdown needs lobby, room is %s", internal.ErrInvalidState, room.GameState)
	}
	if !room.CanStartGame() {
		room.Mu.Unlock()
		return fmt.Errorf("%w: need at least %d players, have %d", internal.ErrInvalidState, room.MinPlayers, len(room.Players))
	}

	var out outbox
	m.startCountdownLocked(room, &out)
	m.unlockAndFlush(room, &out)
	return nil
}

// StartGame skips whatever is left of the countdown and opens round 1.
func (m *Manager) StartGame(roomID string) error {
	room, err := m.lockRoom(roomID)
	if err != nil {
		return err
	}

	if room.GameState != internal.StateLobby && room.GameState != internal.StateStarting {
		room.Mu.Unlock()
		return fmt.Errorf("%w: cannot start while %s", internal.ErrInvalidState, room.GameState)
	}
	if !room.CanStartGame() {
		room.Mu.Unlock()
		return fmt.Errorf("%w: need at least %d players, have %d", internal.ErrInvalidState, room.MinPlayers, len(room.Players))
	}

	var out outbox
	m.startGameLocked(room, &out)
	m.unlockAndFlush(room, &out)
	return nil
}

func (m *Manager) maybeStartCountdownLocked(room *internal.Room, out *outbox) {
	if room.GameState != internal.StateLobby || !room.AreAllPlayersReady() || !room.CanStartGame() {
		return
	}
	m.startCountdownLocked(room, out)
}

func (m *Manager) startCountdownLocked(room *internal.Room, out *outbox) {
	if m.opts.CountdownTicks == 0 {
		m.startGameLocked(room, out)
		return
	}

	room.GameState = internal.StateStarting
	out.room(room.Id, internal.EventGameStarting, internal.GameStartingData{Countdown: m.opts.CountdownTicks})
	m.startCountdownTimerLocked(room)

	log.Info().Str("room", room.Id).Int("countdown", m.opts.CountdownTicks).Msg("[StartCountdown] countdown started")
}

// cancelCountdownLocked stops the countdown and returns the room to the lobby.
func (m *Manager) cancelCountdownLocked(room *internal.Room, out *outbox) {
	room.Timers.Cancel(internal.TimerCountdown)
	room.GameState = internal.StateLobby
	out.room(room.Id, internal.EventGameStarting, internal.GameStartingData{Countdown: 0, Cancelled: true})

	log.Info().Str("room", room.Id).Msg("[cancelCountdown] countdown cancelled")
}

func (m *Manager) startGameLocked(room *internal.Room, out *outbox) {
	now := m.now()

	room.Timers.Cancel(internal.TimerCountdown)
	room.GameState = internal.StatePlaying
	room.CurrentRound = 1
	room.ResetSubmissions()
	for _, player := range room.Players {
		player.IsReady = false
	}
	room.GameStartTime = now
	room.RoundStartTime = now
	m.startRoundTimerLocked(room)

	out.room(room.Id, internal.EventGameStarted, internal.GameStartedData{
		RoomId:          room.Id,
		CurrentRound:    room.CurrentRound,
		TotalRounds:     room.TotalRounds,
		RoundDurationMs: room.RoundDuration.Milliseconds(),
		Photo:           room.CurrentPhoto.Payload(),
		Players:         room.PlayerSnapshots(),
	})

	log.Info().Str("room", room.Id).Int("players", len(room.Players)).Msg("[StartGame] game started")
}
