package repositories

import (
	"fmt"
	"time"

	"ws-backend/domain"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protowire"
)

// Records are stored in protobuf wire format. Field numbers are part of the
// on-disk format and must never be reused.
const (
	fieldMessageID        protowire.Number = 1
	fieldMessageRoom      protowire.Number = 2
	fieldMessageUserID    protowire.Number = 3
	fieldMessageContent   protowire.Number = 4
	fieldMessageCreatedAt protowire.Number = 5

	fieldUserID        protowire.Number = 1
	fieldUserEmail     protowire.Number = 2
	fieldUserName      protowire.Number = 3
	fieldUserCreatedAt protowire.Number = 4

	fieldRoomID        protowire.Number = 1
	fieldRoomCreatedAt protowire.Number = 2
)

func appendString(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendInt64(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// record holds the decoded scalar fields of one stored value.
// Unknown fields are skipped so older binaries can read newer records.
type record struct {
	strings map[protowire.Number]string
	ints    map[protowire.Number]int64
}

func decodeRecord(b []byte) (record, error) {
	r := record{
		strings: make(map[protowire.Number]string),
		ints:    make(map[protowire.Number]int64),
	}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return r, protowire.ParseError(n)
		}
		b = b[n:]

		switch typ {
		case protowire.BytesType:
			var v string
			v, n = protowire.ConsumeString(b)
			if n >= 0 {
				r.strings[num] = v
			}
		case protowire.VarintType:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			if n >= 0 {
				r.ints[num] = int64(v)
			}
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return r, protowire.ParseError(n)
		}
		b = b[n:]
	}
	return r, nil
}

func encodeMessage(m domain.Message) []byte {
	var b []byte
	b = appendString(b, fieldMessageID, m.ID.String())
	b = appendString(b, fieldMessageRoom, m.Room.String())
	b = appendString(b, fieldMessageUserID, m.UserID)
	b = appendString(b, fieldMessageContent, m.Content)
	b = appendInt64(b, fieldMessageCreatedAt, m.CreatedAt.UnixNano())
	return b
}

func decodeMessage(b []byte) (domain.Message, error) {
	r, err := decodeRecord(b)
	if err != nil {
		return domain.Message{}, fmt.Errorf("decode message: %w", err)
	}
	id, err := uuid.Parse(r.strings[fieldMessageID])
	if err != nil {
		return domain.Message{}, fmt.Errorf("decode message id: %w", err)
	}
	return domain.Message{
		ID:        id,
		Room:      domain.RoomID(r.strings[fieldMessageRoom]),
		UserID:    r.strings[fieldMessageUserID],
		Content:   r.strings[fieldMessageContent],
		CreatedAt: time.Unix(0, r.ints[fieldMessageCreatedAt]).UTC(),
	}, nil
}

func encodeUser(u domain.User) []byte {
	var b []byte
	b = appendString(b, fieldUserID, u.ID)
	b = appendString(b, fieldUserEmail, u.Email)
	b = appendString(b, fieldUserName, u.Name)
	b = appendInt64(b, fieldUserCreatedAt, u.CreatedAt.Unix())
	return b
}

func decodeUser(b []byte) (domain.User, error) {
	r, err := decodeRecord(b)
	if err != nil {
		return domain.User{}, fmt.Errorf("decode user: %w", err)
	}
	return domain.User{
		ID:        r.strings[fieldUserID],
		Email:     r.strings[fieldUserEmail],
		Name:      r.strings[fieldUserName],
		CreatedAt: time.Unix(r.ints[fieldUserCreatedAt], 0).UTC(),
	}, nil
}

func encodeRoom(room domain.Room) []byte {
	var b []byte
	b = appendString(b, fieldRoomID, room.ID.String())
	b = appendInt64(b, fieldRoomCreatedAt, room.CreatedAt.Unix())
	return b
}

func decodeRoom(b []byte) (domain.Room, error) {
	r, err := decodeRecord(b)
	if err != nil {
		return domain.Room{}, fmt.Errorf("decode room: %w", err)
	}
	return domain.Room{
		ID:        domain.RoomID(r.strings[fieldRoomID]),
		CreatedAt: time.Unix(r.ints[fieldRoomCreatedAt], 0).UTC(),
	}, nil
}
