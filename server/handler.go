package server

import (
	"log/slog"
	"net/http"

	"ws-backend/contract"
	"ws-backend/errors"
	"ws-backend/runtime"

	"github.com/gorilla/websocket"
)

// WSHandler authenticates a handshake, upgrades it and serves the connection
// until it closes.
type WSHandler struct {
	verifier contract.TokenVerifier
	registry *runtime.Registry
	router   *runtime.Router
	upgrader websocket.Upgrader
	cfg      ConnConfig
	log      *slog.Logger
}

func NewWSHandler(
	verifier contract.TokenVerifier,
	registry *runtime.Registry,
	router *runtime.Router,
	origins *OriginPolicy,
	cfg ConnConfig,
	log *slog.Logger,
) *WSHandler {
	return &WSHandler{
		verifier: verifier,
		registry: registry,
		router:   router,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     origins.Check,
		},
		cfg: cfg,
		log: log,
	}
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// A rejected handshake never reaches the registry nor sees a frame
	subjectID, ok := h.verifier.Verify(r.URL.Query().Get("token"))
	if !ok {
		h.log.Info("Rejected handshake", "remote_addr", r.RemoteAddr, "error", errors.ErrInvalidToken)
		http.Error(w, errors.ErrInvalidToken.Error(), http.StatusUnauthorized)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied with an HTTP error
		h.log.Debug("Upgrade failed", "remote_addr", r.RemoteAddr, "error", err)
		return
	}

	conn := NewConn(ws, h.cfg, h.log)
	id := h.registry.Register(subjectID, conn)
	log := h.log.With("connection_id", id, "user_id", subjectID, "remote_addr", r.RemoteAddr)
	conn.log = log
	log.Info("Connection opened")

	defer func() {
		h.registry.Unregister(id)
		conn.Close()
		log.Info("Connection closed")
	}()

	go conn.WritePump()
	ctx := r.Context()
	conn.ReadPump(func(raw []byte) {
		h.router.Route(ctx, id, raw)
	})
}
