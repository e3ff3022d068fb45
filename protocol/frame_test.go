package protocol

import (
	stderrors "errors"
	"testing"

	"ws-backend/domain"
	"ws-backend/errors"

	"github.com/stretchr/testify/require"
)

type recorder struct {
	joins  []JoinRoom
	leaves []LeaveRoom
	chats  []Chat
}

func (r *recorder) VisitJoinRoom(f JoinRoom)   { r.joins = append(r.joins, f) }
func (r *recorder) VisitLeaveRoom(f LeaveRoom) { r.leaves = append(r.leaves, f) }
func (r *recorder) VisitChat(f Chat)           { r.chats = append(r.chats, f) }

func TestDecode_Dispatch(t *testing.T) {
	req := require.New(t)
	rec := &recorder{}

	for _, raw := range []string{
		`{"type":"join_room","roomId":"42"}`,
		`{"type":"leave_room","roomId":42}`,
		`{"type":"chat","roomId":"7","message":"hi"}`,
	} {
		frame, err := Decode([]byte(raw))
		req.NoError(err)
		frame.Accept(rec)
	}

	req.Equal([]JoinRoom{{RoomID: "42"}}, rec.joins)
	req.Equal([]LeaveRoom{{RoomID: "42"}}, rec.leaves)
	req.Equal([]Chat{{RoomID: "7", Message: "hi"}}, rec.chats)
}

func TestDecode_NumericRoomIDIsNormalised(t *testing.T) {
	req := require.New(t)

	frame, err := Decode([]byte(`{"type":"join_room","roomId":4.2e1}`))
	req.NoError(err)
	req.Equal(JoinRoom{RoomID: domain.RoomID("42")}, frame)
}

func TestDecode_Rejected(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", `hello`, errors.ErrMalformedFrame},
		{"truncated", `{"type":"chat"`, errors.ErrMalformedFrame},
		{"unknown type", `{"type":"draw","roomId":"1"}`, errors.ErrMalformedFrame},
		{"missing type", `{"roomId":"1"}`, errors.ErrMalformedFrame},
		{"boolean room", `{"type":"join_room","roomId":true}`, errors.ErrMalformedFrame},
		{"join without room", `{"type":"join_room"}`, errors.ErrMissingField},
		{"leave with null room", `{"type":"leave_room","roomId":null}`, errors.ErrMissingField},
		{"chat without room", `{"type":"chat","message":"hi"}`, errors.ErrMissingField},
		{"chat without message", `{"type":"chat","roomId":"7"}`, errors.ErrMissingField},
		{"chat with empty message", `{"type":"chat","roomId":"7","message":""}`, errors.ErrMissingField},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			frame, err := Decode([]byte(tt.raw))
			req.Nil(frame)
			req.True(stderrors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestEncode_Outbound(t *testing.T) {
	req := require.New(t)

	data, err := Encode(NewJoinRoomSuccess("42"))
	req.NoError(err)
	req.JSONEq(`{"type":"join_room_success","roomId":"42","message":"Successfully joined room 42"}`, string(data))

	data, err = Encode(ChatMessage{RoomID: "7", Message: "hi"})
	req.NoError(err)
	req.JSONEq(`{"type":"chat","message":"hi","roomId":"7"}`, string(data))

	data, err = Encode(RoomNotFound("999"))
	req.NoError(err)
	req.JSONEq(`{"type":"error","message":"Room not found","roomId":"999"}`, string(data))

	frame, err := ParseFrame(data)
	req.NoError(err)
	req.Equal(Frame{Type: TypeError, Message: "Room not found", RoomID: "999"}, frame)
}
