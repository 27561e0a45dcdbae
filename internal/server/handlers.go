package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/photoguessr-backend/internal"
	"github.com/scythe504/photoguessr-backend/internal/utils"
)

type roomRequest struct {
	RoomId string `json:"roomId"`
}

type playerRequest struct {
	RoomId     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type readyRequest struct {
	RoomId     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	IsReady    bool   `json:"isReady"`
}

type startRequest struct {
	RoomId string `json:"roomId"`
	// Immediate skips the countdown.
	Immediate bool `json:"immediate"`
}

// guessRequest carries guessX as longitude and guessY as latitude.
type guessRequest struct {
	RoomId     string   `json:"roomId"`
	PlayerName string   `json:"playerName"`
	GuessX     *float64 `json:"guessX"`
	GuessY     *float64 `json:"guessY"`
}

type cleanupRequest struct {
	MaxIdleMs int64 `json:"maxIdleMs"`
}

// =============================================================================
// HANDLERS
// =============================================================================

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	stats := s.game.GetStats()
	writeJSON(w, startTime, http.StatusOK, map[string]any{
		"status":       "ok",
		"totalRooms":   stats.TotalRooms,
		"activeRooms":  stats.ActiveRooms,
		"totalPlayers": stats.TotalPlayers,
	})
}

func (s *Server) CreateRoomHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	state, err := s.game.CreateRoom(r.Context())
	if err != nil {
		writeError(w, startTime, err)
		return
	}
	writeJSON(w, startTime, http.StatusCreated, state)
}

func (s *Server) JoinRoomHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	var req playerRequest
	if !decode(w, r, startTime, &req) {
		return
	}
	state, err := s.game.JoinRoom(utils.NormalizeRoomCode(req.RoomId), req.PlayerName, "")
	if err != nil {
		writeError(w, startTime, err)
		return
	}
	writeJSON(w, startTime, http.StatusOK, state)
}

func (s *Server) LeaveRoomHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	var req playerRequest
	if !decode(w, r, startTime, &req) {
		return
	}
	removed, err := s.game.LeaveRoom(utils.NormalizeRoomCode(req.RoomId), req.PlayerName)
	if err != nil {
		writeError(w, startTime, err)
		return
	}
	writeJSON(w, startTime, http.StatusOK, map[string]bool{"removed": removed})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	var req readyRequest
	if !decode(w, r, startTime, &req) {
		return
	}
	roomID := utils.NormalizeRoomCode(req.RoomId)
	if err := s.game.SetReady(roomID, req.PlayerName, req.IsReady); err != nil {
		writeError(w, startTime, err)
		return
	}
	s.writeRoomState(w, startTime, roomID)
}

func (s *Server) StartGameHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	var req startRequest
	if !decode(w, r, startTime, &req) {
		return
	}
	roomID := utils.NormalizeRoomCode(req.RoomId)

	var err error
	if req.Immediate {
		err = s.game.StartGame(roomID)
	} else {
		err = s.game.StartCountdown(roomID)
	}
	if err != nil {
		writeError(w, startTime, err)
		return
	}
	s.writeRoomState(w, startTime, roomID)
}

func (s *Server) SubmitGuessHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	var req guessRequest
	if !decode(w, r, startTime, &req) {
		return
	}
	if req.GuessX == nil || req.GuessY == nil {
		writeError(w, startTime, internal.ErrInvalidGuess)
		return
	}
	result, err := s.game.SubmitGuess(utils.NormalizeRoomCode(req.RoomId), req.PlayerName, *req.GuessX, *req.GuessY)
	if err != nil {
		writeError(w, startTime, err)
		return
	}
	writeJSON(w, startTime, http.StatusOK, result)
}

func (s *Server) TimeExpiredHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	var req playerRequest
	if !decode(w, r, startTime, &req) {
		return
	}
	roomID := utils.NormalizeRoomCode(req.RoomId)
	if err := s.game.TimeExpired(roomID, req.PlayerName); err != nil {
		writeError(w, startTime, err)
		return
	}
	s.writeRoomState(w, startTime, roomID)
}

func (s *Server) NextRoundHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	var req roomRequest
	if !decode(w, r, startTime, &req) {
		return
	}
	result, err := s.game.NextRound(r.Context(), utils.NormalizeRoomCode(req.RoomId))
	if err != nil {
		writeError(w, startTime, err)
		return
	}
	writeJSON(w, startTime, http.StatusOK, result)
}

func (s *Server) RoomStateHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	s.writeRoomState(w, startTime, utils.NormalizeRoomCode(mux.Vars(r)["roomId"]))
}

// RandomPhotoHandler serves a photo without its coordinates.
func (s *Server) RandomPhotoHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	if s.photos == nil {
		writeError(w, startTime, internal.ErrNoPhotosAvailable)
		return
	}
	photo, err := s.photos.RandomPhoto(r.Context())
	if err != nil {
		writeError(w, startTime, err)
		return
	}
	writeJSON(w, startTime, http.StatusOK, photo.Public())
}

func (s *Server) RoomStatsHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	writeJSON(w, startTime, http.StatusOK, s.game.GetStats())
}

func (s *Server) CleanupRoomsHandler(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now().UnixMilli()
	var req cleanupRequest
	if r.ContentLength != 0 && !decode(w, r, startTime, &req) {
		return
	}
	maxIdle := s.roomIdle
	if req.MaxIdleMs > 0 {
		maxIdle = time.Duration(req.MaxIdleMs) * time.Millisecond
	}
	removed := s.game.CleanupInactiveRooms(maxIdle)
	writeJSON(w, startTime, http.StatusOK, map[string]int{"removed": removed})
}

func (s *Server) writeRoomState(w http.ResponseWriter, startTime int64, roomID string) {
	state, err := s.game.GetRoomState(roomID)
	if err != nil {
		writeError(w, startTime, err)
		return
	}
	writeJSON(w, startTime, http.StatusOK, state)
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func decode(w http.ResponseWriter, r *http.Request, startTime int64, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, startTime, http.StatusBadRequest, internal.ErrorData{Code: "bad_request", Message: "invalid JSON body"})
		return false
	}
	return true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, internal.ErrRoomNotFound), errors.Is(err, internal.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, internal.ErrInvalidState), errors.Is(err, internal.ErrRoomFull), errors.Is(err, internal.ErrDuplicateSubmission):
		return http.StatusConflict
	case errors.Is(err, internal.ErrInvalidGuess), errors.Is(err, internal.ErrInvalidPlayerName):
		return http.StatusUnprocessableEntity
	case errors.Is(err, internal.ErrNoPhotosAvailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, startTime int64, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("[writeError] request failed")
		message = "internal server error"
	}
	writeJSON(w, startTime, status, internal.ErrorData{Code: internal.ErrorCode(err), Message: message})
}

func writeJSON(w http.ResponseWriter, startTime int64, status int, data any) {
	// Calculate response times
	endTime := time.Now().UnixMilli()
	resp := internal.Response{
		StatusCode:    status,
		RespStartTime: startTime,
		RespEndTime:   endTime,
		NetRespTime:   endTime - startTime,
		Data:          data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Warn().Err(err).Msg("[writeJSON] error encoding response")
	}
}
