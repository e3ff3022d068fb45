package runtime

import (
	"context"
	"log/slog"

	"ws-backend/domain"
	"ws-backend/protocol"
)

// Delivery counts what happened to one broadcast.
type Delivery struct {
	Sent    int
	Skipped int // closed before the send was attempted
	Failed  int // send returned an error
}

// Broadcaster fans an outbound frame out to the subscribers of a room.
// Delivery is at-most-once: a failed send is never retried.
type Broadcaster struct {
	registry *Registry
	log      *slog.Logger
}

func NewBroadcaster(registry *Registry, log *slog.Logger) *Broadcaster {
	return &Broadcaster{registry: registry, log: log}
}

// Broadcast encodes frame once and sends it to every open subscriber of room,
// as seen at call time. Closed or failing subscribers are unregistered and do
// not affect the others.
func (b *Broadcaster) Broadcast(ctx context.Context, room domain.RoomID, frame protocol.Outbound) Delivery {
	var delivery Delivery

	payload, err := protocol.Encode(frame)
	if err != nil {
		b.log.Error("Unable to encode frame", "room_id", room, "type", frame.Type(), "error", err)
		return delivery
	}

	for sub := range b.registry.SubscribersOf(room).All() {
		if sub.Sink.Closed() {
			delivery.Skipped++
			b.registry.Unregister(sub.ID)
			continue
		}
		if err := sub.Sink.Send(ctx, payload); err != nil {
			delivery.Failed++
			b.log.Debug("Dropping subscriber", "connection_id", sub.ID, "room_id", room, "error", err)
			b.registry.Unregister(sub.ID)
			sub.Sink.Close()
			continue
		}
		delivery.Sent++
	}

	b.log.Debug("Broadcast",
		"room_id", room,
		"sent", delivery.Sent,
		"skipped", delivery.Skipped,
		"failed", delivery.Failed)
	return delivery
}
