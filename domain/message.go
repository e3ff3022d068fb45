// Package domain contains core concepts of the chat system.
// This file defines Message records and the users who author them.
// Messages are immutable once accepted.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message represents an immutable chat record.
type Message struct {
	ID        uuid.UUID
	Room      RoomID
	UserID    string
	Content   string
	CreatedAt time.Time
}

func NewMessage(room RoomID, userID, content string) Message {
	return Message{
		ID:        uuid.New(),
		Room:      room,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// User is the durable identity behind a verified subject.
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
}

// PlaceholderUser is the minimal record materialised the first time a subject chats.
func PlaceholderUser(id string) User {
	return User{
		ID:        id,
		Email:     fmt.Sprintf("%s@local.test", id),
		Name:      "Local User",
		CreatedAt: time.Now().UTC(),
	}
}
