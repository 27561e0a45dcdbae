package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/photoguessr-backend/internal"
	"github.com/scythe504/photoguessr-backend/internal/game"
	"github.com/scythe504/photoguessr-backend/internal/utils"
)

// Inbound message types.
const (
	MsgPlayerReady = "player-ready"
	MsgStartGame   = "start-game"
	MsgSubmitGuess = "submit-guess"
	MsgTimeExpired = "time-expired"
	MsgNextRound   = "next-round"
	MsgLeaveRoom   = "leave-room"
)

const actionTimeout = 10 * time.Second

// GameService is the part of game.Manager the socket transport drives.
type GameService interface {
	JoinRoom(roomID, name, connRef string) (*internal.RoomState, error)
	LeaveRoom(roomID, name string) (bool, error)
	Disconnect(roomID, name, connRef string) (bool, error)
	SetReady(roomID, name string, isReady bool) error
	StartCountdown(roomID string) error
	SubmitGuess(roomID, name string, lng, lat float64) (*internal.GuessResultData, error)
	TimeExpired(roomID, name string) error
	NextRound(ctx context.Context, roomID string) (*game.AdvanceResult, error)
}

type readyData struct {
	IsReady bool `json:"isReady"`
}

// guessData carries guessX as longitude and guessY as latitude.
type guessData struct {
	GuessX *float64 `json:"guessX"`
	GuessY *float64 `json:"guessY"`
}

// Handler upgrades /ws/{roomId}?playerName= requests and routes their
// frames to the game.
type Handler struct {
	hub      *Hub
	game     GameService
	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, svc GameService, allowedOrigins []string) *Handler {
	return &Handler{
		hub:  hub,
		game: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

// =============================================================================
// WEBSOCKET CONNECTION HANDLING
// =============================================================================

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	roomID := utils.NormalizeRoomCode(mux.Vars(r)["roomId"])
	name, ok := utils.NormalizeName(r.URL.Query().Get("playerName"))
	if roomID == "" || !ok {
		http.Error(w, "roomId and playerName are required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("room", roomID).Msg("[ServeWS] upgrade failed")
		return
	}

	client := newClient(conn, uuid.NewString(), roomID, name)

	// Registered before joining so the room-joined snapshot reaches it.
	h.hub.register(client)
	go client.writePump()

	if _, err := h.game.JoinRoom(roomID, name, client.ConnRef); err != nil {
		log.Info().Err(err).Str("room", roomID).Str("player", name).Msg("[ServeWS] join rejected")
		h.hub.EmitTo(client.ConnRef, internal.EventError, errorData(err))
		h.hub.unregister(client)
		return
	}
	if n := h.hub.evict(roomID, name, client.ConnRef); n > 0 {
		log.Info().Str("room", roomID).Str("player", name).Int("evicted", n).Msg("[ServeWS] replaced previous socket")
	}

	go func() {
		defer h.disconnect(client)
		client.readPump(h.handleMessage)
	}()
}

func (h *Handler) disconnect(c *Client) {
	h.hub.unregister(c)
	if _, err := h.game.Disconnect(c.RoomID, c.PlayerName, c.ConnRef); err != nil {
		log.Debug().Err(err).Str("room", c.RoomID).Str("player", c.PlayerName).Msg("[disconnect] room already gone")
	}
	log.Info().Str("room", c.RoomID).Str("player", c.PlayerName).Msg("[disconnect] socket closed")
}

func (h *Handler) handleMessage(c *Client, raw []byte) {
	if !h.hub.registered(c) {
		log.Debug().Str("room", c.RoomID).Str("player", c.PlayerName).Msg("[handleMessage] socket replaced, frame ignored")
		return
	}
	var msg internal.Message[json.RawMessage]
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Debug().Err(err).Str("player", c.PlayerName).Msg("[handleMessage] malformed frame")
		h.replyError(c, "bad_request", "malformed message")
		return
	}

	log.Debug().Str("room", c.RoomID).Str("player", c.PlayerName).Str("type", msg.Type).Msg("[handleMessage] received")

	var err error
	switch msg.Type {
	case MsgPlayerReady:
		var data readyData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			h.replyError(c, "bad_request", "player-ready expects {isReady}")
			return
		}
		err = h.game.SetReady(c.RoomID, c.PlayerName, data.IsReady)

	case MsgStartGame:
		err = h.game.StartCountdown(c.RoomID)

	case MsgSubmitGuess:
		var data guessData
		if err := json.Unmarshal(msg.Data, &data); err != nil || data.GuessX == nil || data.GuessY == nil {
			h.replyError(c, "bad_request", "submit-guess expects {guessX, guessY}")
			return
		}
		_, err = h.game.SubmitGuess(c.RoomID, c.PlayerName, *data.GuessX, *data.GuessY)

	case MsgTimeExpired:
		err = h.game.TimeExpired(c.RoomID, c.PlayerName)

	case MsgNextRound:
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		_, err = h.game.NextRound(ctx, c.RoomID)
		cancel()

	case MsgLeaveRoom:
		_, err = h.game.LeaveRoom(c.RoomID, c.PlayerName)
		if err == nil {
			// Closing the socket ends readPump and the deferred disconnect
			// finds the player already gone.
			_ = c.conn.Close()
			return
		}

	default:
		h.replyError(c, "bad_request", "unknown message type "+msg.Type)
		return
	}

	if err != nil {
		h.hub.EmitTo(c.ConnRef, internal.EventError, errorData(err))
	}
}

func (h *Handler) replyError(c *Client, code, message string) {
	h.hub.EmitTo(c.ConnRef, internal.EventError, internal.ErrorData{Code: code, Message: message})
}

func errorData(err error) internal.ErrorData {
	return internal.ErrorData{Code: internal.ErrorCode(err), Message: err.Error()}
}

// originChecker accepts any origin for "*" and same-host requests without an
// Origin header.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
