package runtime

import (
	"log/slog"
	"testing"

	"ws-backend/domain"
	"ws-backend/errors"
	"ws-backend/mocks"

	"github.com/google/uuid"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMembership_Join_Leave_Any_Order(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	registry := NewRegistry()
	membership := NewMembership(registry, log)
	id := registry.Register("user-1", mocks.NewMockSink(ctrl))

	// Given a leave before any join
	req.NoError(membership.Leave(id, "3"))

	// When rooms are joined, some twice
	req.NoError(membership.Join(id, "3"))
	req.NoError(membership.Join(id, "1"))
	req.NoError(membership.Join(id, "3"))

	// Then each room appears once
	req.Equal([]domain.RoomID{"1", "3"}, registry.Rooms(id))

	// When one is left twice
	req.NoError(membership.Leave(id, "3"))
	req.NoError(membership.Leave(id, "3"))

	// Then only the other one remains
	req.Equal([]domain.RoomID{"1"}, registry.Rooms(id))
}

func TestMembership_Join_Accepts_Any_Room_Text(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	registry := NewRegistry()
	membership := NewMembership(registry, logs.GetLoggerFromLevel(slog.LevelDebug))
	id := registry.Register("user-1", mocks.NewMockSink(ctrl))

	// Given room ids a storage key could not hold
	req.NoError(membership.Join(id, "general chat"))
	req.NoError(membership.Join(id, "a:b"))

	// Then they are joined like any other room
	req.Equal([]domain.RoomID{"a:b", "general chat"}, registry.Rooms(id))
}

func TestMembership_Unknown_Connection(t *testing.T) {
	req := require.New(t)
	membership := NewMembership(NewRegistry(), logs.GetLoggerFromLevel(slog.LevelDebug))
	unknown := domain.ConnectionID(uuid.New())

	req.ErrorIs(membership.Join(unknown, "1"), errors.ErrUnknownConnection)
	req.ErrorIs(membership.Leave(unknown, "1"), errors.ErrUnknownConnection)
}
