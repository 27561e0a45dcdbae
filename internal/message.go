package internal

type Message[T any] struct {
	Type   string `json:"type"`
	RoomId string `json:"roomId,omitempty"`
	Data   T      `json:"data"`
}

// Room events.
const (
	EventPlayerJoined       = "player-joined"
	EventPlayerLeft         = "player-left"
	EventPlayerReadyChanged = "player-ready-changed"
	EventGameStarting       = "game-starting"
	EventGameStarted        = "game-started"
	EventRoundTimer         = "round-timer"
	EventPlayerGuessed      = "player-guessed"
	EventRoundEnded         = "round-ended"
	EventNewRound           = "new-round"
	EventGameFinished       = "game-finished"
	EventError              = "error"
)

// Direct (single connection) events.
const (
	EventRoomJoined  = "room-joined"
	EventGuessResult = "guess-result"
)

const ErrorCodeNoPhotos = "no_photos_available"

type PlayerJoinedData struct {
	PlayerName   string           `json:"playerName"`
	Reconnected  bool             `json:"reconnected"`
	TotalPlayers int              `json:"totalPlayers"`
	Players      []PlayerSnapshot `json:"players"`
}

type PlayerLeftData struct {
	PlayerName   string           `json:"playerName"`
	TotalPlayers int              `json:"totalPlayers"`
	Players      []PlayerSnapshot `json:"players"`
}

type PlayerReadyData struct {
	PlayerName string           `json:"playerName"`
	IsReady    bool             `json:"isReady"`
	Players    []PlayerSnapshot `json:"players"`
}

type GameStartingData struct {
	Countdown int  `json:"countdown"`
	Cancelled bool `json:"cancelled,omitempty"`
}

type GameStartedData struct {
	RoomId          string           `json:"roomId"`
	CurrentRound    int              `json:"currentRound"`
	TotalRounds     int              `json:"totalRounds"`
	RoundDurationMs int64            `json:"roundDurationMs"`
	Photo           PhotoPayload     `json:"photo"`
	Players         []PlayerSnapshot `json:"players"`
}

type RoundTimerData struct {
	Round      int   `json:"round"`
	TimeLeft   int   `json:"timeLeft"`
	TimeLeftMs int64 `json:"timeLeftMs"`
}

type PlayerGuessedData struct {
	PlayerName string           `json:"playerName"`
	Score      int              `json:"score"`
	GuessCount int              `json:"guessCount"`
	Players    []PlayerSnapshot `json:"players"`
}

type GuessResultData struct {
	Round          int      `json:"round"`
	Distance       int      `json:"distance"`
	Points         int      `json:"points"`
	ActualLocation Location `json:"actualLocation"`
	TotalScore     int      `json:"totalScore"`
}

// RoundResult is one player's line in round-ended. Distance is nil for a timeout.
type RoundResult struct {
	PlayerName string `json:"playerName"`
	Points     int    `json:"points"`
	Distance   *int   `json:"distance"`
	TimedOut   bool   `json:"timedOut"`
	TotalScore int    `json:"totalScore"`
}

type RoundEndedData struct {
	Round          int           `json:"round"`
	TotalRounds    int           `json:"totalRounds"`
	AutoSubmitted  bool          `json:"autoSubmitted"`
	TimedOut       []string      `json:"timedOut"`
	ActualLocation Location      `json:"actualLocation"`
	Results        []RoundResult `json:"results"`
	NextRoundInMs  int64         `json:"nextRoundInMs"`
}

type NewRoundData struct {
	CurrentRound    int              `json:"currentRound"`
	TotalRounds     int              `json:"totalRounds"`
	RoundDurationMs int64            `json:"roundDurationMs"`
	Photo           PhotoPayload     `json:"photo"`
	Players         []PlayerSnapshot `json:"players"`
}

type GameFinishedData struct {
	GameFinished bool         `json:"gameFinished"`
	FinalScores  []FinalScore `json:"finalScores"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
