package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ws-backend/contract"
	"ws-backend/domain"
	"ws-backend/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ws-backend/services")

// ChatService is the bridge between a chat frame and the durable store.
//
// By default persistence is best effort: a store failure is logged and the
// message is still accepted, so live subscribers get it even when the write
// did not happen. In strict mode the same failure rejects the message.
// A missing room is always a rejection.
type ChatService struct {
	store   contract.Store
	strict  bool
	timeout time.Duration
	log     *slog.Logger
}

func NewChatService(store contract.Store, strict bool, timeout time.Duration, log *slog.Logger) *ChatService {
	return &ChatService{store: store, strict: strict, timeout: timeout, log: log}
}

func (s *ChatService) Accept(ctx context.Context, room domain.RoomID, subjectID, text string) (bool, error) {
	ctx, span := tracer.Start(ctx, "ChatService.Accept", trace.WithAttributes(
		attribute.String("room_id", room.String()),
		attribute.String("user_id", subjectID),
		attribute.Bool("strict", s.strict),
	))
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// 1. The room is owned elsewhere, we only check it exists
	exists, err := s.store.RoomExists(ctx, room)
	if err != nil {
		return s.failure(ctx, span, "room lookup", room, subjectID, err)
	}
	if !exists {
		span.SetStatus(codes.Error, "room not found")
		s.log.DebugContext(ctx, "Room not found", "room_id", room, "user_id", subjectID)
		return false, errors.ErrRoomNotFound
	}

	// 2. Materialise the author, a no-op when it already exists
	if err := s.store.EnsureUser(ctx, subjectID); err != nil {
		return s.failure(ctx, span, "ensure user", room, subjectID, err)
	}

	// 3. Append the message
	message := domain.NewMessage(room, subjectID, text)
	if err := s.store.PersistMessage(ctx, message); err != nil {
		return s.failure(ctx, span, "persist message", room, subjectID, err)
	}

	span.SetStatus(codes.Ok, "persisted")
	return true, nil
}

func (s *ChatService) failure(
	ctx context.Context,
	span trace.Span,
	step string,
	room domain.RoomID,
	subjectID string,
	cause error,
) (bool, error) {
	err := fmt.Errorf("%w: %s: %v", errors.ErrPersistence, step, cause)
	span.RecordError(err)
	span.SetStatus(codes.Error, step+" failed")
	s.log.ErrorContext(ctx, "Chat persistence failed",
		"step", step,
		"room_id", room,
		"user_id", subjectID,
		"strict", s.strict,
		"error", cause)
	return !s.strict, err
}
