package runtime

import (
	"context"
	"log/slog"
	"testing"

	"ws-backend/errors"
	"ws-backend/mocks"
	"ws-backend/protocol"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const chatPayload = `{"type":"chat","message":"hi","roomId":"7"}`

func TestBroadcaster_Skips_Closed_Sink(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, logs.GetLoggerFromLevel(slog.LevelDebug))

	closed := mocks.NewMockSink(ctrl)
	open := mocks.NewMockSink(ctrl)
	closedID := registry.Register("user-1", closed)
	openID := registry.Register("user-2", open)
	req.NoError(registry.JoinRoom(closedID, "7"))
	req.NoError(registry.JoinRoom(openID, "7"))

	// Given one transport already closed
	closed.EXPECT().Closed().Return(true)
	closed.EXPECT().Send(gomock.Any(), gomock.Any()).Times(0)
	open.EXPECT().Closed().Return(false)
	open.EXPECT().Send(gomock.Any(), []byte(chatPayload)).Return(nil)

	// When a chat is broadcast
	delivery := broadcaster.Broadcast(ctx, "7", protocol.ChatMessage{RoomID: "7", Message: "hi"})

	// Then only the open one is sent to, and the closed one is pruned
	req.Equal(Delivery{Sent: 1, Skipped: 1}, delivery)
	_, ok := registry.Lookup(closedID)
	req.False(ok)
	_, ok = registry.Lookup(openID)
	req.True(ok)
}

func TestBroadcaster_Failed_Send_Does_Not_Affect_Others(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, logs.GetLoggerFromLevel(slog.LevelDebug))

	slow := mocks.NewMockSink(ctrl)
	fast := mocks.NewMockSink(ctrl)
	slowID := registry.Register("user-1", slow)
	fastID := registry.Register("user-2", fast)
	req.NoError(registry.JoinRoom(slowID, "7"))
	req.NoError(registry.JoinRoom(fastID, "7"))

	// Given a subscriber whose send buffer is full
	slow.EXPECT().Closed().Return(false)
	slow.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.ErrSendBufferFull)
	slow.EXPECT().Close()
	fast.EXPECT().Closed().Return(false)
	fast.EXPECT().Send(gomock.Any(), []byte(chatPayload)).Return(nil)

	// When a chat is broadcast
	delivery := broadcaster.Broadcast(ctx, "7", protocol.ChatMessage{RoomID: "7", Message: "hi"})

	// Then the other subscriber still receives it
	req.Equal(Delivery{Sent: 1, Failed: 1}, delivery)
	req.Equal(1, registry.SubscribersOf("7").Len())
}

func TestBroadcaster_Only_Room_Members(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, logs.GetLoggerFromLevel(slog.LevelDebug))

	member := mocks.NewMockSink(ctrl)
	outsider := mocks.NewMockSink(ctrl)
	memberID := registry.Register("user-1", member)
	outsiderID := registry.Register("user-2", outsider)
	req.NoError(registry.JoinRoom(memberID, "7"))
	req.NoError(registry.JoinRoom(outsiderID, "8"))

	member.EXPECT().Closed().Return(false)
	member.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)
	// no call at all on the outsider

	delivery := broadcaster.Broadcast(ctx, "7", protocol.ChatMessage{RoomID: "7", Message: "hi"})
	req.Equal(Delivery{Sent: 1}, delivery)

	// And an empty room is a no-op
	req.Equal(Delivery{}, broadcaster.Broadcast(ctx, "9", protocol.ChatMessage{RoomID: "9", Message: "hi"}))
}

func TestBroadcaster_Join_During_Broadcast_Is_Not_Observed(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	ctx := context.Background()
	registry := NewRegistry()
	broadcaster := NewBroadcaster(registry, logs.GetLoggerFromLevel(slog.LevelDebug))

	first := mocks.NewMockSink(ctrl)
	late := mocks.NewMockSink(ctrl)
	firstID := registry.Register("user-1", first)
	req.NoError(registry.JoinRoom(firstID, "7"))

	// Given another connection joins while the broadcast is in flight
	first.EXPECT().Closed().Return(false)
	first.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, []byte) error {
		lateID := registry.Register("user-2", late)
		return registry.JoinRoom(lateID, "7")
	})

	// When the broadcast completes
	delivery := broadcaster.Broadcast(ctx, "7", protocol.ChatMessage{RoomID: "7", Message: "hi"})

	// Then the late joiner missed it, and is subscribed for the next one
	req.Equal(Delivery{Sent: 1}, delivery)
	req.Equal(2, registry.SubscribersOf("7").Len())
}
