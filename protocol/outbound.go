package protocol

import (
	"encoding/json"
	"fmt"

	"ws-backend/domain"
)

// Outbound is a frame sent by the server.
type Outbound interface {
	Type() string
	outbound()
}

type JoinRoomSuccess struct {
	RoomID domain.RoomID
}

type Error struct {
	RoomID  domain.RoomID
	Message string
}

type ChatMessage struct {
	RoomID  domain.RoomID
	Message string
}

func (JoinRoomSuccess) Type() string { return TypeJoinRoomSuccess }
func (Error) Type() string           { return TypeError }
func (ChatMessage) Type() string     { return TypeChat }

func (JoinRoomSuccess) outbound() {}
func (Error) outbound()           {}
func (ChatMessage) outbound()     {}

// NewJoinRoomSuccess builds the confirmation echoed to a joining connection.
func NewJoinRoomSuccess(room domain.RoomID) JoinRoomSuccess {
	return JoinRoomSuccess{RoomID: room}
}

func RoomNotFound(room domain.RoomID) Error {
	return Error{RoomID: room, Message: "Room not found"}
}

func NotSaved(room domain.RoomID) Error {
	return Error{RoomID: room, Message: "Message could not be saved"}
}

type wireFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	RoomID  string `json:"roomId"`
}

// Encode renders an outbound frame as a JSON text payload.
func Encode(frame Outbound) ([]byte, error) {
	var w wireFrame
	switch f := frame.(type) {
	case JoinRoomSuccess:
		w = wireFrame{Type: f.Type(), RoomID: f.RoomID.String(),
			Message: fmt.Sprintf("Successfully joined room %s", f.RoomID)}
	case Error:
		w = wireFrame{Type: f.Type(), RoomID: f.RoomID.String(), Message: f.Message}
	case ChatMessage:
		w = wireFrame{Type: f.Type(), RoomID: f.RoomID.String(), Message: f.Message}
	default:
		return nil, fmt.Errorf("unsupported outbound frame %T", frame)
	}
	return json.Marshal(w)
}

// Frame is the decoded form of any outbound payload, used by clients and tests.
type Frame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	RoomID  string `json:"roomId"`
}

func ParseFrame(data []byte) (Frame, error) {
	var f Frame
	err := json.Unmarshal(data, &f)
	return f, err
}
