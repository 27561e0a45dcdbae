package relay

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/photoguessr-backend/internal"
)

const publishTimeout = 2 * time.Second

// RedisBroadcaster publishes room events on Redis channels so processes
// other than this one (edge gateways, push workers) can deliver them.
// Room events go to <prefix>:room:<roomId>, direct events to
// <prefix>:conn:<connRef>.
type RedisBroadcaster struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisBroadcaster(client redis.UniversalClient, prefix string) *RedisBroadcaster {
	return &RedisBroadcaster{client: client, prefix: prefix}
}

func (b *RedisBroadcaster) RoomChannel(roomID string) string {
	return b.prefix + ":room:" + roomID
}

func (b *RedisBroadcaster) ConnChannel(connRef string) string {
	return b.prefix + ":conn:" + connRef
}

func (b *RedisBroadcaster) Emit(roomID, event string, payload any) {
	b.publish(b.RoomChannel(roomID), internal.Message[any]{Type: event, RoomId: roomID, Data: payload})
}

func (b *RedisBroadcaster) EmitTo(connRef, event string, payload any) {
	b.publish(b.ConnChannel(connRef), internal.Message[any]{Type: event, Data: payload})
}

func (b *RedisBroadcaster) publish(channel string, msg internal.Message[any]) {
	body, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Str("event", msg.Type).Msg("[RedisBroadcaster] marshal failed")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := b.client.Publish(ctx, channel, body).Err(); err != nil {
		log.Warn().Err(err).Str("channel", channel).Str("event", msg.Type).Msg("[RedisBroadcaster] publish failed")
	}
}
