package websocket

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one socket bound to a player in a room.
type Client struct {
	ConnRef    string
	RoomID     string
	PlayerName string

	conn *websocket.Conn
	send chan []byte
}

func newClient(conn *websocket.Conn, connRef, roomID, playerName string) *Client {
	return &Client{
		ConnRef:    connRef,
		RoomID:     roomID,
		PlayerName: playerName,
		conn:       conn,
		send:       make(chan []byte, sendBuffer),
	}
}

// enqueue never blocks. Caller holds the hub lock, so send is still open.
func (c *Client) enqueue(msg []byte) bool {
	select {
	case c.send <- msg:
		return true
	default:
		log.Warn().Str("room", c.RoomID).Str("player", c.PlayerName).Msg("[Client] send queue full, dropping message")
		return false
	}
}

// readPump hands every frame to handle until the socket fails.
func (c *Client) readPump(handle func(c *Client, raw []byte)) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("room", c.RoomID).Str("player", c.PlayerName).Msg("[readPump] unexpected close")
			}
			return
		}
		handle(c, raw)
	}
}

// writePump drains send until the hub closes it.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Debug().Err(err).Str("room", c.RoomID).Str("player", c.PlayerName).Msg("[writePump] write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
