package runtime

import (
	"fmt"
	"log/slog"

	"ws-backend/domain"
)

// Membership mutates a connection's room set.
// Join and leave are idempotent and there is no per-room capacity.
// Room ids are taken as sent: storage keys are checked by the store.
type Membership struct {
	registry *Registry
	log      *slog.Logger
}

func NewMembership(registry *Registry, log *slog.Logger) *Membership {
	return &Membership{registry: registry, log: log}
}

func (m *Membership) Join(id domain.ConnectionID, room domain.RoomID) error {
	if err := m.registry.JoinRoom(id, room); err != nil {
		return fmt.Errorf("join room %s: %w", room, err)
	}
	m.log.Debug("Joined room", "connection_id", id, "room_id", room)
	return nil
}

func (m *Membership) Leave(id domain.ConnectionID, room domain.RoomID) error {
	if err := m.registry.LeaveRoom(id, room); err != nil {
		return fmt.Errorf("leave room %s: %w", room, err)
	}
	m.log.Debug("Left room", "connection_id", id, "room_id", room)
	return nil
}
