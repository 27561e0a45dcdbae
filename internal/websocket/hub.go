package websocket

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/photoguessr-backend/internal"
)

// =============================================================================
// BROADCASTING & MESSAGING
// =============================================================================

// Hub tracks open sockets by connection ref and by room, and implements
// game.Broadcaster on top of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c.ConnRef] = c
	members, ok := h.rooms[c.RoomID]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[c.RoomID] = members
	}
	members[c.ConnRef] = c
}

// unregister forgets c and closes its send queue, which stops its writer.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.ConnRef]; !ok {
		return
	}
	delete(h.clients, c.ConnRef)
	if members, ok := h.rooms[c.RoomID]; ok {
		delete(members, c.ConnRef)
		if len(members) == 0 {
			delete(h.rooms, c.RoomID)
		}
	}
	close(c.send)
}

// evict unregisters every other socket playing name in roomID. A reconnect
// leaves exactly one live socket per player.
func (h *Hub) evict(roomID, name, keepRef string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	evicted := 0
	for ref, c := range h.rooms[roomID] {
		if ref == keepRef || c.PlayerName != name {
			continue
		}
		delete(h.clients, ref)
		delete(h.rooms[roomID], ref)
		close(c.send)
		evicted++
	}
	return evicted
}

func (h *Hub) registered(c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.clients[c.ConnRef] == c
}

// Emit sends to every socket in the room. Slow sockets drop the message
// rather than stall the game.
func (h *Hub) Emit(roomID, event string, payload any) {
	body, ok := encode(internal.Message[any]{Type: event, RoomId: roomID, Data: payload})
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for _, c := range h.rooms[roomID] {
		if c.enqueue(body) {
			sent++
		}
	}
	log.Debug().Str("room", roomID).Str("event", event).Int("sent", sent).Int("members", len(h.rooms[roomID])).Msg("[Hub.Emit] broadcast")
}

func (h *Hub) EmitTo(connRef, event string, payload any) {
	body, ok := encode(internal.Message[any]{Type: event, Data: payload})
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	c, found := h.clients[connRef]
	if !found {
		log.Debug().Str("conn", connRef).Str("event", event).Msg("[Hub.EmitTo] connection gone")
		return
	}
	c.enqueue(body)
}

// Len is the number of open sockets.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize is the number of open sockets in roomID.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

func encode(msg internal.Message[any]) ([]byte, bool) {
	body, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("event", msg.Type).Msg("[Hub] marshal failed")
		return nil, false
	}
	return body, true
}
