package game

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scythe504/photoguessr-backend/internal"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// timerPlan describes one run of a room timer: ticks firings spaced interval
// apart. onTick sees the ticks still left; the last firing calls onExpire
// instead. Both run without any lock held and must re-check gen.
type timerPlan struct {
	kind     internal.TimerKind
	ticks    int
	interval time.Duration
	onTick   func(gen uint64, remaining int)
	onExpire func(gen uint64)
}

// startTimerLocked replaces the room's timer of plan.kind. Caller holds Mu.
func (m *Manager) startTimerLocked(room *internal.Room, plan timerPlan) uint64 {
	ctx, gen := room.Timers.Start(plan.kind)
	log.Debug().
		Str("room", room.Id).
		Str("timer", string(plan.kind)).
		Uint64("gen", gen).
		Int("ticks", plan.ticks).
		Dur("interval", plan.interval).
		Msg("[startTimer] timer started")

	go m.runTimer(ctx, room.Id, gen, plan)
	return gen
}

func (m *Manager) runTimer(ctx context.Context, roomID string, gen uint64, plan timerPlan) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Str("room", roomID).
				Str("timer", string(plan.kind)).
				Interface("panic", r).
				Msg("[runTimer] timer callback panicked")
		}
	}()

	ticker := time.NewTicker(plan.interval)
	defer ticker.Stop()

	remaining := plan.ticks
	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("room", roomID).Str("timer", string(plan.kind)).Uint64("gen", gen).Msg("[runTimer] timer cancelled")
			return
		case <-ticker.C:
			remaining--
			if remaining > 0 {
				if plan.onTick != nil {
					plan.onTick(gen, remaining)
				}
				continue
			}
			plan.onExpire(gen)
			return
		}
	}
}

// =============================================================================
// COUNTDOWN
// =============================================================================

func (m *Manager) startCountdownTimerLocked(room *internal.Room) {
	roomID := room.Id
	m.startTimerLocked(room, timerPlan{
		kind:     internal.TimerCountdown,
		ticks:    m.opts.CountdownTicks,
		interval: m.opts.TickInterval,
		onTick: func(gen uint64, remaining int) {
			m.countdownTick(roomID, gen, remaining)
		},
		onExpire: func(gen uint64) {
			m.countdownExpired(roomID, gen)
		},
	})
}

func (m *Manager) countdownTick(roomID string, gen uint64, remaining int) {
	room, err := m.lockRoomQuiet(roomID)
	if err != nil {
		return
	}
	if room.GameState != internal.StateStarting || !room.Timers.IsCurrent(internal.TimerCountdown, gen) {
		room.Mu.Unlock()
		return
	}

	var out outbox
	out.room(roomID, internal.EventGameStarting, internal.GameStartingData{Countdown: remaining})
	m.unlockAndFlush(room, &out)
}

func (m *Manager) countdownExpired(roomID string, gen uint64) {
	room, err := m.lockRoomQuiet(roomID)
	if err != nil {
		return
	}
	if room.GameState != internal.StateStarting || !room.Timers.Finish(internal.TimerCountdown, gen) {
		log.Debug().Str("room", roomID).Uint64("gen", gen).Msg("[countdownExpired] stale countdown ignored")
		room.Mu.Unlock()
		return
	}

	var out outbox
	if !room.CanStartGame() {
		m.cancelCountdownLocked(room, &out)
		m.unlockAndFlush(room, &out)
		return
	}
	m.startGameLocked(room, &out)
	m.unlockAndFlush(room, &out)
}

// =============================================================================
// ROUND TIMER
// =============================================================================

func (m *Manager) startRoundTimerLocked(room *internal.Room) {
	roomID := room.Id
	round := room.CurrentRound
	ticks := int((room.RoundDuration + m.opts.TickInterval - 1) / m.opts.TickInterval)

	m.startTimerLocked(room, timerPlan{
		kind:     internal.TimerRound,
		ticks:    ticks,
		interval: m.opts.TickInterval,
		onTick: func(gen uint64, _ int) {
			m.roundTick(roomID, round, gen)
		},
		onExpire: func(gen uint64) {
			m.roundExpired(roomID, round, gen)
		},
	})
}

func (m *Manager) roundTick(roomID string, round int, gen uint64) {
	room, err := m.lockRoomQuiet(roomID)
	if err != nil {
		return
	}
	if !m.roundTimerValid(room, round, gen) {
		room.Mu.Unlock()
		return
	}

	left := room.TimeLeft(m.now())
	var out outbox
	out.room(roomID, internal.EventRoundTimer, internal.RoundTimerData{
		Round:      round,
		TimeLeft:   int((left + time.Second - 1) / time.Second),
		TimeLeftMs: left.Milliseconds(),
	})
	m.unlockAndFlush(room, &out)
}

// roundExpired auto-submits every player who has not guessed.
func (m *Manager) roundExpired(roomID string, round int, gen uint64) {
	room, err := m.lockRoomQuiet(roomID)
	if err != nil {
		return
	}
	if !m.roundTimerValid(room, round, gen) {
		log.Debug().Str("room", roomID).Int("round", round).Msg("[roundExpired] stale round timer ignored")
		room.Mu.Unlock()
		return
	}
	room.Timers.Finish(internal.TimerRound, gen)

	log.Info().Str("room", roomID).Int("round", round).Msg("[roundExpired] round time is up")

	var out outbox
	m.expireRoundLocked(room, &out)
	m.unlockAndFlush(room, &out)
}

func (m *Manager) roundTimerValid(room *internal.Room, round int, gen uint64) bool {
	return room.GameState == internal.StatePlaying &&
		!room.RoundEnded &&
		room.CurrentRound == round &&
		room.Timers.IsCurrent(internal.TimerRound, gen)
}

// =============================================================================
// ADVANCEMENT
// =============================================================================

func (m *Manager) startAdvanceTimerLocked(room *internal.Room) {
	roomID := room.Id
	round := room.CurrentRound
	m.startTimerLocked(room, timerPlan{
		kind:     internal.TimerAdvance,
		ticks:    1,
		interval: m.opts.AdvanceDelay,
		onExpire: func(gen uint64) {
			m.advanceExpired(roomID, round, gen)
		},
	})
}

func (m *Manager) advanceExpired(roomID string, round int, gen uint64) {
	room, err := m.lockRoomQuiet(roomID)
	if err != nil {
		return
	}
	if !room.Timers.Finish(internal.TimerAdvance, gen) {
		room.Mu.Unlock()
		return
	}
	room.Mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.opts.PhotoTimeout)
	defer cancel()

	if _, err := m.advanceRound(ctx, roomID, round, false); err != nil {
		log.Error().Err(err).Str("room", roomID).Int("round", round).Msg("[advanceExpired] automatic advancement failed")
	}
}
