package game

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/photoguessr-backend/internal"
)

// =============================================================================
// GUESS PROCESSING
// =============================================================================

// SubmitGuess scores a (longitude, latitude) guess against the round's photo.
func (m *Manager) SubmitGuess(roomID, name string, lng, lat float64) (*internal.GuessResultData, error) {
	name, err := playerName(name)
	if err != nil {
		return nil, err
	}
	room, err := m.lockRoom(roomID)
	if err != nil {
		return nil, err
	}

	if room.GameState != internal.StatePlaying {
		room.Mu.Unlock()
		return nil, fmt.Errorf("%w: no round in progress (%s)", internal.ErrInvalidState, room.GameState)
	}
	player, ok := room.Players[name]
	if !ok {
		room.Mu.Unlock()
		return nil, fmt.Errorf("%w: %s", internal.ErrPlayerNotFound, name)
	}
	if player.HasSubmittedGuess {
		room.Mu.Unlock()
		return nil, fmt.Errorf("%w: %s in round %d", internal.ErrDuplicateSubmission, name, room.CurrentRound)
	}
	if room.RoundEnded {
		room.Mu.Unlock()
		return nil, fmt.Errorf("%w: round %d already ended", internal.ErrInvalidState, room.CurrentRound)
	}

	lng, lat, err = internal.NormalizeCoordinates(lng, lat)
	if err != nil {
		room.Mu.Unlock()
		return nil, err
	}

	distance, points := ScoreGuess(lng, lat, room.CurrentPhoto)
	player.RecordGuess(internal.Guess{
		Round:     room.CurrentRound,
		GuessX:    &lng,
		GuessY:    &lat,
		Distance:  distance,
		Points:    points,
		Timestamp: m.now(),
	})
	m.metrics.GuessRecorded(false, distance)

	result := internal.GuessResultData{
		Round:          room.CurrentRound,
		Distance:       int(math.Round(distance)),
		Points:         points,
		ActualLocation: room.CurrentPhoto.ActualLocation(),
		TotalScore:     player.Score,
	}

	var out outbox
	out.room(roomID, internal.EventPlayerGuessed, internal.PlayerGuessedData{
		PlayerName: name,
		Score:      player.Score,
		GuessCount: len(player.Guesses),
		Players:    room.PlayerSnapshots(),
	})
	out.to(player.ConnectionRef, internal.EventGuessResult, result)

	log.Info().
		Str("room", roomID).
		Str("player", name).
		Int("round", room.CurrentRound).
		Float64("distance", distance).
		Int("points", points).
		Msg("[SubmitGuess] guess scored")

	m.checkRoundCompletionLocked(room, &out)
	m.unlockAndFlush(room, &out)
	return &result, nil
}

// TimeExpired is the client's report that its round clock ran out. Once the
// server clock agrees (within one tick), the whole round expires; before that
// only the reporting player forfeits.
func (m *Manager) TimeExpired(roomID, name string) error {
	name, err := playerName(name)
	if err != nil {
		return err
	}
	room, err := m.lockRoom(roomID)
	if err != nil {
		return err
	}

	if room.GameState != internal.StatePlaying {
		room.Mu.Unlock()
		return fmt.Errorf("%w: no round in progress (%s)", internal.ErrInvalidState, room.GameState)
	}
	player, ok := room.Players[name]
	if !ok {
		room.Mu.Unlock()
		return fmt.Errorf("%w: %s", internal.ErrPlayerNotFound, name)
	}
	if room.RoundEnded || player.HasSubmittedGuess {
		room.Mu.Unlock()
		return nil
	}

	var out outbox
	elapsed := m.now().Sub(room.RoundStartTime)
	if elapsed >= room.RoundDuration-m.opts.TickInterval {
		log.Info().Str("room", roomID).Str("player", name).Dur("elapsed", elapsed).Msg("[TimeExpired] round expired by client report")
		m.expireRoundLocked(room, &out)
	} else {
		log.Info().Str("room", roomID).Str("player", name).Dur("elapsed", elapsed).Msg("[TimeExpired] player forfeits round")
		m.autoSubmitLocked(room, player, &out)
		m.checkRoundCompletionLocked(room, &out)
	}

	m.unlockAndFlush(room, &out)
	return nil
}

// expireRoundLocked gives every pending player a timed-out entry and closes
// the round.
func (m *Manager) expireRoundLocked(room *internal.Room, out *outbox) {
	for _, player := range room.OrderedPlayers() {
		if !player.HasSubmittedGuess {
			m.autoSubmitLocked(room, player, out)
		}
	}
	m.checkRoundCompletionLocked(room, out)
}

func (m *Manager) autoSubmitLocked(room *internal.Room, player *internal.Player, out *outbox) {
	player.RecordGuess(internal.Guess{
		Round:     room.CurrentRound,
		Distance:  math.Inf(1),
		Points:    0,
		TimedOut:  true,
		Timestamp: m.now(),
	})
	m.metrics.GuessRecorded(true, math.Inf(1))

	out.room(room.Id, internal.EventPlayerGuessed, internal.PlayerGuessedData{
		PlayerName: player.Name,
		Score:      player.Score,
		GuessCount: len(player.Guesses),
		Players:    room.PlayerSnapshots(),
	})

	log.Info().Str("room", room.Id).Str("player", player.Name).Int("round", room.CurrentRound).Msg("[autoSubmit] player timed out")
}

// checkRoundCompletionLocked ends the round once every present player has an
// entry. It schedules at most one advancement per round.
func (m *Manager) checkRoundCompletionLocked(room *internal.Room, out *outbox) bool {
	if room.GameState != internal.StatePlaying || room.RoundEnded || !room.HasEveryoneSubmitted() {
		return false
	}

	room.Timers.Cancel(internal.TimerRound)
	room.RoundEnded = true

	results := make([]internal.RoundResult, 0, len(room.PlayerOrder))
	timedOut := make([]string, 0)
	for _, player := range room.OrderedPlayers() {
		guess, ok := roundGuess(player, room.CurrentRound)
		if !ok {
			continue
		}
		if guess.TimedOut {
			timedOut = append(timedOut, player.Name)
		}
		results = append(results, internal.RoundResult{
			PlayerName: player.Name,
			Points:     guess.Points,
			Distance:   roundedMeters(guess.Distance),
			TimedOut:   guess.TimedOut,
			TotalScore: player.Score,
		})
	}

	out.room(room.Id, internal.EventRoundEnded, internal.RoundEndedData{
		Round:          room.CurrentRound,
		TotalRounds:    room.TotalRounds,
		AutoSubmitted:  len(timedOut) > 0,
		TimedOut:       timedOut,
		ActualLocation: room.CurrentPhoto.ActualLocation(),
		Results:        results,
		NextRoundInMs:  m.opts.AdvanceDelay.Milliseconds(),
	})

	if !room.Timers.Active(internal.TimerAdvance) {
		m.startAdvanceTimerLocked(room)
	}

	log.Info().
		Str("room", room.Id).
		Int("round", room.CurrentRound).
		Strs("timedOut", timedOut).
		Msg("[checkRoundCompletion] round ended")
	return true
}

// roundGuess finds the player's entry for round.
func roundGuess(player *internal.Player, round int) (internal.Guess, bool) {
	for i := len(player.Guesses) - 1; i >= 0; i-- {
		if player.Guesses[i].Round == round {
			return player.Guesses[i], true
		}
	}
	return internal.Guess{}, false
}
