package game

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/photoguessr-backend/internal"
)

// =============================================================================
// GAME FLOW - ROUND ADVANCEMENT
// =============================================================================

// AdvanceResult reports what an advancement attempt did. Advanced is false
// when the call lost a race or the room was not playing.
type AdvanceResult struct {
	Advanced    bool                  `json:"advanced"`
	Finished    bool                  `json:"finished"`
	Round       int                   `json:"round"`
	FinalScores []internal.FinalScore `json:"finalScores,omitempty"`
}

// NextRound advances the room by hand once the current round has ended.
// While the round is still open the call does nothing, so a repeated request
// never skips a round.
func (m *Manager) NextRound(ctx context.Context, roomID string) (*AdvanceResult, error) {
	return m.advanceRound(ctx, roomID, 0, true)
}

// advanceRound moves the room from its current round to the next one, or
// finishes the game after the last round. A non-zero expected round makes the
// call a no-op once the room has moved past it. Only calls made for a player
// count as room activity.
//
// The photo is fetched without the room lock; the transition is applied only
// if the room is still playing the round captured before the fetch.
func (m *Manager) advanceRound(ctx context.Context, roomID string, expected int, byPlayer bool) (*AdvanceResult, error) {
	lock := m.lockRoomQuiet
	if byPlayer {
		lock = m.lockRoom
	}
	room, err := lock(roomID)
	if err != nil {
		return nil, err
	}

	if room.GameState != internal.StatePlaying {
		log.Info().Str("room", roomID).Str("state", string(room.GameState)).Msg("[advanceRound] room not playing, nothing to do")
		res := &AdvanceResult{Round: room.CurrentRound, Finished: room.GameState == internal.StateFinished}
		room.Mu.Unlock()
		return res, nil
	}
	if expected != 0 && room.CurrentRound != expected {
		log.Debug().Str("room", roomID).Int("round", room.CurrentRound).Int("expected", expected).Msg("[advanceRound] round already advanced")
		res := &AdvanceResult{Round: room.CurrentRound}
		room.Mu.Unlock()
		return res, nil
	}
	if !room.RoundEnded {
		log.Info().Str("room", roomID).Int("round", room.CurrentRound).Msg("[advanceRound] round still open, nothing to do")
		res := &AdvanceResult{Round: room.CurrentRound}
		room.Mu.Unlock()
		return res, nil
	}

	var out outbox
	round := room.CurrentRound
	if round >= room.TotalRounds {
		scores := m.finishGameLocked(room, &out)
		m.unlockAndFlush(room, &out)
		return &AdvanceResult{Advanced: true, Finished: true, Round: round, FinalScores: scores}, nil
	}
	m.unlockAndFlush(room, &out)

	// --- No lock held while the photo store is queried ---
	photo, err := m.fetchPhoto(ctx)
	if err != nil {
		m.reportAdvanceFailure(roomID, round, err)
		return nil, fmt.Errorf("advance room %s: %w", roomID, err)
	}

	room.Mu.Lock()
	if room.Closed {
		room.Mu.Unlock()
		return nil, fmt.Errorf("%w: %s", internal.ErrRoomNotFound, roomID)
	}
	if room.GameState != internal.StatePlaying || room.CurrentRound != round {
		log.Debug().Str("room", roomID).Int("round", room.CurrentRound).Int("captured", round).Msg("[advanceRound] lost race, round already advanced")
		res := &AdvanceResult{Round: room.CurrentRound}
		room.Mu.Unlock()
		return res, nil
	}

	now := m.now()
	room.CurrentRound++
	room.CurrentPhoto = photo
	room.ResetSubmissions()
	room.RoundStartTime = now
	if byPlayer {
		room.LastActivity = now
	}
	room.Timers.Cancel(internal.TimerAdvance)
	m.startRoundTimerLocked(room)
	m.metrics.RoundAdvanced()

	out.room(roomID, internal.EventNewRound, internal.NewRoundData{
		CurrentRound:    room.CurrentRound,
		TotalRounds:     room.TotalRounds,
		RoundDurationMs: room.RoundDuration.Milliseconds(),
		Photo:           photo.Payload(),
		Players:         room.PlayerSnapshots(),
	})
	res := &AdvanceResult{Advanced: true, Round: room.CurrentRound}

	log.Info().Str("room", roomID).Int("round", room.CurrentRound).Msg("[advanceRound] new round started")
	m.unlockAndFlush(room, &out)
	return res, nil
}

// reportAdvanceFailure tells the room its game is stuck. The room stays in
// the ended round so NextRound can retry.
func (m *Manager) reportAdvanceFailure(roomID string, round int, err error) {
	log.Error().Err(err).Str("room", roomID).Int("round", round).Msg("[advanceRound] could not fetch next photo")

	code := "internal_error"
	if errors.Is(err, internal.ErrNoPhotosAvailable) {
		code = internal.ErrorCodeNoPhotos
	}
	m.bc.Emit(roomID, internal.EventError, internal.ErrorData{
		Code:    code,
		Message: err.Error(),
	})
}

func (m *Manager) finishGameLocked(room *internal.Room, out *outbox) []internal.FinalScore {
	room.GameState = internal.StateFinished
	room.Timers.CancelAll()

	scores := room.FinalScores()
	out.room(room.Id, internal.EventGameFinished, internal.GameFinishedData{
		GameFinished: true,
		FinalScores:  scores,
	})
	m.metrics.GameFinished()

	log.Info().Str("room", room.Id).Int("rounds", room.TotalRounds).Msg("[finishGame] game finished")
	return scores
}

// =============================================================================
// QUERIES
// =============================================================================

func (m *Manager) GetRoomState(roomID string) (*internal.RoomState, error) {
	room, err := m.lockRoom(roomID)
	if err != nil {
		return nil, err
	}
	state := room.Snapshot(m.now())
	room.Mu.Unlock()
	return &state, nil
}

// GetStats summarizes every live room. Active rooms have players and an
// unfinished game.
func (m *Manager) GetStats() internal.Stats {
	stats := internal.Stats{Rooms: make([]internal.RoomSummary, 0)}

	for _, room := range m.store.Rooms() {
		room.Mu.Lock()
		if room.Closed {
			room.Mu.Unlock()
			continue
		}
		summary := room.Summary()
		room.Mu.Unlock()

		stats.TotalRooms++
		stats.TotalPlayers += summary.PlayerCount
		if summary.PlayerCount > 0 && summary.GameState != internal.StateFinished {
			stats.ActiveRooms++
		}
		stats.Rooms = append(stats.Rooms, summary)
	}

	if stats.TotalRooms > 0 {
		avg := float64(stats.TotalPlayers) / float64(stats.TotalRooms)
		stats.AveragePlayersPerRoom = math.Round(avg*100) / 100
	}
	return stats
}

// =============================================================================
// CLEANUP
// =============================================================================

// CleanupInactiveRooms deletes rooms that are empty or untouched for longer
// than maxIdle, and returns how many it removed.
func (m *Manager) CleanupInactiveRooms(maxIdle time.Duration) int {
	now := m.now()
	removed := 0

	for _, room := range m.store.Rooms() {
		room.Mu.Lock()
		if room.Closed {
			room.Mu.Unlock()
			continue
		}
		idle := now.Sub(room.LastActivity)
		if room.GameState != internal.StateEmpty && len(room.Players) > 0 && idle <= maxIdle {
			room.Mu.Unlock()
			continue
		}

		room.Timers.CancelAll()
		room.Closed = true
		if m.store.Delete(room) {
			removed++
		}
		log.Info().Str("room", room.Id).Dur("idle", idle).Int("players", len(room.Players)).Msg("[CleanupInactiveRooms] room removed")
		room.Mu.Unlock()
	}

	if removed > 0 {
		m.metrics.RoomsSwept(removed)
	}
	return removed
}

// RunSweeper calls CleanupInactiveRooms every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Dur("maxIdle", maxIdle).Msg("[RunSweeper] room sweeper started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("[RunSweeper] room sweeper stopped")
			return nil
		case <-ticker.C:
			if n := m.CleanupInactiveRooms(maxIdle); n > 0 {
				log.Info().Int("removed", n).Int("remaining", m.store.Len()).Msg("[RunSweeper] sweep finished")
			}
		}
	}
}
