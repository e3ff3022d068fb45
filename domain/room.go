package domain

import (
	"strings"
	"time"

	"ws-backend/errors"
)

// RoomID is the external key of a durable room record.
type RoomID string

func (r RoomID) String() string { return string(r) }

// Validate rejects ids that cannot be used as a storage key segment.
func (r RoomID) Validate() error {
	if r == "" || strings.ContainsAny(string(r), ": \t\n") {
		return errors.ErrInvalidRoomID
	}
	return nil
}

type Room struct {
	ID        RoomID
	CreatedAt time.Time
}

func NewRoom(id RoomID) *Room {
	return &Room{
		ID:        id,
		CreatedAt: time.Now().UTC(),
	}
}
