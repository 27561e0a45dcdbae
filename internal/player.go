package internal

import (
	"encoding/json"
	"math"
	"time"
)

type Player struct {
	Name string `json:"name"`
	// ConnectionRef is empty for players using the stateless HTTP transport.
	ConnectionRef string `json:"-"`
	Score         int    `json:"score"`

	// Game state
	Guesses           []Guess   `json:"guesses"`
	IsReady           bool      `json:"isReady"`
	HasSubmittedGuess bool      `json:"hasSubmittedGuess"`
	IsConnected       bool      `json:"isConnected"`
	JoinedAt          time.Time `json:"joinedAt"`
}

// Guess is one scored entry per round. Timed-out entries carry no coordinates
// and an infinite distance.
type Guess struct {
	Round     int       `json:"round"`
	GuessX    *float64  `json:"guessX"` // longitude
	GuessY    *float64  `json:"guessY"` // latitude
	Distance  float64   `json:"distance"`
	Points    int       `json:"points"`
	TimedOut  bool      `json:"timedOut"`
	Timestamp time.Time `json:"timestamp"`
}

func (g Guess) MarshalJSON() ([]byte, error) {
	type alias Guess
	out := struct {
		alias
		Distance *float64 `json:"distance"`
	}{alias: alias(g)}
	if !math.IsInf(g.Distance, 0) && !math.IsNaN(g.Distance) {
		d := g.Distance
		out.Distance = &d
	}
	return json.Marshal(out)
}

type PlayerSnapshot struct {
	Name              string `json:"name"`
	Score             int    `json:"score"`
	IsReady           bool   `json:"isReady"`
	HasSubmittedGuess bool   `json:"hasSubmittedGuess"`
	IsConnected       bool   `json:"isConnected"`
	GuessCount        int    `json:"guessCount"`
}

func NewPlayer(name, connRef string, now time.Time) *Player {
	return &Player{
		Name:          name,
		ConnectionRef: connRef,
		Guesses:       make([]Guess, 0, MaxRounds),
		IsConnected:   connRef != "",
		JoinedAt:      now,
	}
}

// ResetRoundState clears per-round flags. Only called when a round photo is assigned.
func (p *Player) ResetRoundState() {
	p.HasSubmittedGuess = false
}

// RecordGuess appends the entry and marks the player as submitted for the round.
func (p *Player) RecordGuess(g Guess) {
	p.Guesses = append(p.Guesses, g)
	if g.Points > 0 {
		p.Score += g.Points
	}
	p.HasSubmittedGuess = true
}

func (p *Player) Snapshot() PlayerSnapshot {
	return PlayerSnapshot{
		Name:              p.Name,
		Score:             p.Score,
		IsReady:           p.IsReady,
		HasSubmittedGuess: p.HasSubmittedGuess,
		IsConnected:       p.IsConnected,
		GuessCount:        len(p.Guesses),
	}
}
