// Package protocol defines the JSON frames exchanged over a room connection.
//
// Inbound and Outbound are closed sets: their marker methods are unexported,
// so only this package can add a frame kind. Inbound dispatch goes through
// Visitor, which makes a new inbound kind a compile error for every router
// until it is handled.
package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"ws-backend/domain"
	"ws-backend/errors"

	"github.com/go-playground/validator/v10"
)

const (
	TypeJoinRoom        = "join_room"
	TypeLeaveRoom       = "leave_room"
	TypeChat            = "chat"
	TypeJoinRoomSuccess = "join_room_success"
	TypeError           = "error"
)

var validate = validator.New()

// Visitor receives exactly one call per decoded inbound frame.
type Visitor interface {
	VisitJoinRoom(JoinRoom)
	VisitLeaveRoom(LeaveRoom)
	VisitChat(Chat)
}

// Inbound is a frame sent by a client.
type Inbound interface {
	Accept(v Visitor)
	inbound()
}

type JoinRoom struct {
	RoomID domain.RoomID
}

type LeaveRoom struct {
	RoomID domain.RoomID
}

type Chat struct {
	RoomID  domain.RoomID `validate:"required"`
	Message string        `validate:"required"`
}

func (f JoinRoom) Accept(v Visitor)  { v.VisitJoinRoom(f) }
func (f LeaveRoom) Accept(v Visitor) { v.VisitLeaveRoom(f) }
func (f Chat) Accept(v Visitor)      { v.VisitChat(f) }

func (JoinRoom) inbound()  {}
func (LeaveRoom) inbound() {}
func (Chat) inbound()      {}

// Validate reports ErrMissingField when the room or the text is empty.
func (f Chat) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrMissingField, err)
	}
	return nil
}

// RoomRef accepts a JSON string or number and keeps its textual form.
type RoomRef string

func (r *RoomRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RoomRef(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("roomId must be a string or a number: %w", err)
	}
	*r = RoomRef(strconv.FormatFloat(f, 'f', -1, 64))
	return nil
}

type envelope struct {
	Type    string  `json:"type"`
	RoomID  RoomRef `json:"roomId"`
	Message *string `json:"message"`
}

// Decode parses one raw text frame. Unknown types and join/leave frames
// without a room id are reported as errors so the caller can drop them.
func Decode(raw []byte) (Inbound, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedFrame, err)
	}
	room := domain.RoomID(env.RoomID)
	switch env.Type {
	case TypeJoinRoom:
		if room == "" {
			return nil, fmt.Errorf("%w: roomId", errors.ErrMissingField)
		}
		return JoinRoom{RoomID: room}, nil
	case TypeLeaveRoom:
		if room == "" {
			return nil, fmt.Errorf("%w: roomId", errors.ErrMissingField)
		}
		return LeaveRoom{RoomID: room}, nil
	case TypeChat:
		frame := Chat{RoomID: room}
		if env.Message != nil {
			frame.Message = *env.Message
		}
		if err := frame.Validate(); err != nil {
			return nil, err
		}
		return frame, nil
	default:
		return nil, fmt.Errorf("%w: unknown type %q", errors.ErrMalformedFrame, env.Type)
	}
}
