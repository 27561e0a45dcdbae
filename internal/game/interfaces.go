package game

import (
	"context"

	"github.com/scythe504/photoguessr-backend/internal"
)

// PhotoStore supplies the photo for each round. Implementations return
// internal.ErrNoPhotosAvailable when they hold no photos.
type PhotoStore interface {
	RandomPhoto(ctx context.Context) (internal.Photo, error)
}

// Broadcaster fans room events out to clients. Delivery is fire-and-forget:
// implementations log their own failures.
type Broadcaster interface {
	Emit(roomID, event string, payload any)
	EmitTo(connRef, event string, payload any)
}

// MultiBroadcaster forwards every event to each of its members in order.
type MultiBroadcaster []Broadcaster

func (m MultiBroadcaster) Emit(roomID, event string, payload any) {
	for _, b := range m {
		b.Emit(roomID, event, payload)
	}
}

func (m MultiBroadcaster) EmitTo(connRef, event string, payload any) {
	for _, b := range m {
		b.EmitTo(connRef, event, payload)
	}
}

type nopBroadcaster struct{}

func (nopBroadcaster) Emit(string, string, any)   {}
func (nopBroadcaster) EmitTo(string, string, any) {}
