package internal

import (
	"cmp"
	"slices"
	"time"
)

// Methods (Room Struct). Callers hold Mu.

// AddPlayer registers name or, when it is already present, treats the call as a
// reconnect: the connection ref is replaced and readiness is reset.
func (r *Room) AddPlayer(name, connRef string, now time.Time) (player *Player, reconnected bool) {
	if p, ok := r.Players[name]; ok {
		p.ConnectionRef = connRef
		p.IsConnected = connRef != ""
		p.IsReady = false
		return p, true
	}

	p := NewPlayer(name, connRef, now)
	r.Players[name] = p
	r.PlayerOrder = append(r.PlayerOrder, name)
	return p, false
}

func (r *Room) RemovePlayer(name string) bool {
	if _, ok := r.Players[name]; !ok {
		return false
	}
	delete(r.Players, name)
	r.PlayerOrder = slices.DeleteFunc(r.PlayerOrder, func(s string) bool {
		return s == name
	})
	return true
}

func (r *Room) GetPlayerCount() int {
	return len(r.Players)
}

func (r *Room) IsFull() bool {
	return len(r.Players) >= r.MaxPlayers
}

func (r *Room) CanStartGame() bool {
	return len(r.Players) >= r.MinPlayers
}

func (r *Room) AreAllPlayersReady() bool {
	if len(r.Players) == 0 {
		return false
	}
	for _, player := range r.Players {
		if !player.IsReady {
			return false
		}
	}
	return true
}

func (r *Room) SubmittedCount() int {
	count := 0
	for _, player := range r.Players {
		if player.HasSubmittedGuess {
			count++
		}
	}
	return count
}

func (r *Room) HasEveryoneSubmitted() bool {
	return len(r.Players) > 0 && r.SubmittedCount() == len(r.Players)
}

// ResetSubmissions is the only place HasSubmittedGuess is cleared.
func (r *Room) ResetSubmissions() {
	for _, player := range r.Players {
		player.ResetRoundState()
	}
	r.RoundEnded = false
}

// OrderedPlayers returns players in join order.
func (r *Room) OrderedPlayers() []*Player {
	players := make([]*Player, 0, len(r.PlayerOrder))
	for _, name := range r.PlayerOrder {
		if p, ok := r.Players[name]; ok {
			players = append(players, p)
		}
	}
	return players
}

func (r *Room) PlayerSnapshots() []PlayerSnapshot {
	snapshots := make([]PlayerSnapshot, 0, len(r.PlayerOrder))
	for _, p := range r.OrderedPlayers() {
		snapshots = append(snapshots, p.Snapshot())
	}
	return snapshots
}

// FinalScores sorts by score descending; ties keep join order.
func (r *Room) FinalScores() []FinalScore {
	players := r.OrderedPlayers()
	slices.SortStableFunc(players, func(a, b *Player) int {
		return cmp.Compare(b.Score, a.Score)
	})

	scores := make([]FinalScore, 0, len(players))
	for idx, p := range players {
		scores = append(scores, FinalScore{
			Position: idx + 1,
			Name:     p.Name,
			Score:    p.Score,
		})
	}
	return scores
}

// TimeLeft is the remaining round budget, zero outside an open round.
func (r *Room) TimeLeft(now time.Time) time.Duration {
	if r.GameState != StatePlaying || r.RoundEnded || r.RoundStartTime.IsZero() {
		return 0
	}
	return max(r.RoundDuration-now.Sub(r.RoundStartTime), 0)
}

func (r *Room) Snapshot(now time.Time) RoomState {
	state := RoomState{
		RoomId:        r.Id,
		GameState:     r.GameState,
		CurrentRound:  r.CurrentRound,
		TotalRounds:   r.TotalRounds,
		MinPlayers:    r.MinPlayers,
		MaxPlayers:    r.MaxPlayers,
		RoundDuration: r.RoundDuration.Milliseconds(),
		TimeLeftMs:    r.TimeLeft(now).Milliseconds(),
		RoundEnded:    r.RoundEnded,
		Players:       r.PlayerSnapshots(),
		CreatedAt:     r.CreatedAt,
		LastActivity:  r.LastActivity,
	}
	if r.GameState == StatePlaying {
		payload := r.CurrentPhoto.Payload()
		state.Photo = &payload
	}
	return state
}

func (r *Room) Summary() RoomSummary {
	return RoomSummary{
		RoomId:       r.Id,
		CurrentRound: r.CurrentRound,
		TotalRounds:  r.TotalRounds,
		PlayerCount:  len(r.Players),
		GameState:    r.GameState,
		CreatedAt:    r.CreatedAt,
		LastActivity: r.LastActivity,
	}
}
