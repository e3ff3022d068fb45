package runtime

import (
	"context"
	stderrors "errors"
	"log/slog"

	"ws-backend/contract"
	"ws-backend/domain"
	"ws-backend/errors"
	"ws-backend/protocol"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("ws-backend/runtime")

// Router decodes the frames of one connection and dispatches them.
// Nothing a client sends can make Route fail: bad frames are dropped.
type Router struct {
	registry    *Registry
	membership  *Membership
	chat        contract.IChatService
	broadcaster *Broadcaster
	log         *slog.Logger
}

func NewRouter(
	registry *Registry,
	membership *Membership,
	chat contract.IChatService,
	broadcaster *Broadcaster,
	log *slog.Logger,
) *Router {
	return &Router{
		registry:    registry,
		membership:  membership,
		chat:        chat,
		broadcaster: broadcaster,
		log:         log,
	}
}

func (r *Router) Route(ctx context.Context, id domain.ConnectionID, raw []byte) {
	frame, err := protocol.Decode(raw)
	if err != nil {
		r.log.Debug("Dropping frame", "connection_id", id, "error", err)
		return
	}
	sub, ok := r.registry.Lookup(id)
	if !ok {
		r.log.Debug("Dropping frame of unregistered connection", "connection_id", id)
		return
	}
	frame.Accept(&dispatch{ctx: ctx, router: r, sub: sub})
}

// reply sends a frame to the originating connection only.
func (r *Router) reply(ctx context.Context, sub Subscriber, frame protocol.Outbound) {
	payload, err := protocol.Encode(frame)
	if err != nil {
		r.log.Error("Unable to encode frame", "type", frame.Type(), "error", err)
		return
	}
	if err := sub.Sink.Send(ctx, payload); err != nil {
		r.log.Debug("Reply not delivered", "connection_id", sub.ID, "type", frame.Type(), "error", err)
	}
}

// dispatch binds one decoded frame to its connection.
type dispatch struct {
	ctx    context.Context
	router *Router
	sub    Subscriber
}

func (d *dispatch) VisitJoinRoom(f protocol.JoinRoom) {
	if err := d.router.membership.Join(d.sub.ID, f.RoomID); err != nil {
		d.router.log.Debug("Join refused", "connection_id", d.sub.ID, "room_id", f.RoomID, "error", err)
		return
	}
	d.router.reply(d.ctx, d.sub, protocol.NewJoinRoomSuccess(f.RoomID))
}

func (d *dispatch) VisitLeaveRoom(f protocol.LeaveRoom) {
	if err := d.router.membership.Leave(d.sub.ID, f.RoomID); err != nil {
		d.router.log.Debug("Leave refused", "connection_id", d.sub.ID, "room_id", f.RoomID, "error", err)
	}
}

func (d *dispatch) VisitChat(f protocol.Chat) {
	ctx, span := tracer.Start(d.ctx, "Router.Chat", trace.WithAttributes(
		attribute.String("room_id", f.RoomID.String()),
		attribute.String("user_id", d.sub.SubjectID),
	))
	defer span.End()

	accepted, err := d.router.chat.Accept(ctx, f.RoomID, d.sub.SubjectID, f.Message)
	switch {
	case stderrors.Is(err, errors.ErrRoomNotFound):
		span.SetStatus(codes.Error, "room not found")
		d.router.reply(ctx, d.sub, protocol.RoomNotFound(f.RoomID))
		return
	case !accepted:
		span.RecordError(err)
		span.SetStatus(codes.Error, "not saved")
		d.router.reply(ctx, d.sub, protocol.NotSaved(f.RoomID))
		return
	case err != nil:
		// accepted without a durable record
		span.RecordError(err)
		d.router.log.Warn("Broadcasting unsaved message", "room_id", f.RoomID, "user_id", d.sub.SubjectID, "error", err)
	}

	delivery := d.router.broadcaster.Broadcast(ctx, f.RoomID, protocol.ChatMessage{RoomID: f.RoomID, Message: f.Message})
	span.SetAttributes(attribute.Int("sent", delivery.Sent))
	span.SetStatus(codes.Ok, "broadcast")
}
