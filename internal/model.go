package internal

import (
	"sync"
	"time"
)

const (
	DefaultRoundDuration   = 30 * time.Second
	DefaultTickInterval    = 1 * time.Second
	DefaultAdvanceDelay    = 3 * time.Second
	DefaultRoomIdleTimeout = 30 * time.Minute
	DefaultCountdownTicks  = 3
	MaxPlayersPerRoom      = 8
	MinPlayersToStart      = 2
	MaxRounds              = 5
)

type GameState string

const (
	StateLobby    GameState = "lobby"
	StateStarting GameState = "starting"
	StatePlaying  GameState = "playing"
	StateFinished GameState = "finished"
	StateEmpty    GameState = "empty"
)

// Terminal reports whether no further transitions are possible.
func (s GameState) Terminal() bool {
	return s == StateFinished || s == StateEmpty
}

type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}

// RoomSettings are fixed when the room is created.
type RoomSettings struct {
	TotalRounds   int
	MinPlayers    int
	MaxPlayers    int
	RoundDuration time.Duration
}

func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		TotalRounds:   MaxRounds,
		MinPlayers:    MinPlayersToStart,
		MaxPlayers:    MaxPlayersPerRoom,
		RoundDuration: DefaultRoundDuration,
	}
}

type Room struct {
	Id string

	// Players is keyed by name; PlayerOrder keeps join order.
	Players     map[string]*Player
	PlayerOrder []string

	// Game State
	GameState    GameState
	CurrentPhoto Photo
	CurrentRound int
	TotalRounds  int
	RoundEnded   bool

	// Limits
	MinPlayers    int
	MaxPlayers    int
	RoundDuration time.Duration

	// Timestamps
	RoundStartTime time.Time
	GameStartTime  time.Time
	CreatedAt      time.Time
	LastActivity   time.Time

	Timers *RoomTimers

	// Closed is set once the room has been removed from the store.
	Closed bool

	// Concurrency control
	Mu sync.Mutex
}

func NewRoom(id string, photo Photo, settings RoomSettings, now time.Time) *Room {
	return &Room{
		Id:            id,
		Players:       make(map[string]*Player),
		PlayerOrder:   make([]string, 0, settings.MaxPlayers),
		GameState:     StateLobby,
		CurrentPhoto:  photo,
		CurrentRound:  1,
		TotalRounds:   settings.TotalRounds,
		MinPlayers:    settings.MinPlayers,
		MaxPlayers:    settings.MaxPlayers,
		RoundDuration: settings.RoundDuration,
		CreatedAt:     now,
		LastActivity:  now,
		Timers:        NewRoomTimers(),
	}
}

// RoomState is the serializable view of a room.
type RoomState struct {
	RoomId        string           `json:"roomId"`
	GameState     GameState        `json:"gameState"`
	CurrentRound  int              `json:"currentRound"`
	TotalRounds   int              `json:"totalRounds"`
	MinPlayers    int              `json:"minPlayers"`
	MaxPlayers    int              `json:"maxPlayers"`
	RoundDuration int64            `json:"roundDurationMs"`
	TimeLeftMs    int64            `json:"timeLeftMs"`
	RoundEnded    bool             `json:"roundEnded"`
	Players       []PlayerSnapshot `json:"players"`
	Photo         *PhotoPayload    `json:"photo"`
	CreatedAt     time.Time        `json:"createdAt"`
	LastActivity  time.Time        `json:"lastActivity"`
}

// RoomSummary is the per-room row of the stats listing.
type RoomSummary struct {
	RoomId       string    `json:"roomId"`
	CurrentRound int       `json:"currentRound"`
	TotalRounds  int       `json:"totalRounds"`
	PlayerCount  int       `json:"playerCount"`
	GameState    GameState `json:"gameState"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

type Stats struct {
	TotalRooms            int           `json:"totalRooms"`
	ActiveRooms           int           `json:"activeRooms"`
	TotalPlayers          int           `json:"totalPlayers"`
	AveragePlayersPerRoom float64       `json:"averagePlayersPerRoom"`
	Rooms                 []RoomSummary `json:"rooms"`
}

type FinalScore struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}
