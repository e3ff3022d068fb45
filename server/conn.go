// Package server carries room frames over WebSocket connections.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"ws-backend/errors"

	"github.com/gorilla/websocket"
)

type ConnConfig struct {
	BufferSize     int
	MaxMessageSize int64
	WriteTimeout   time.Duration
	PongWait       time.Duration
}

func (c ConnConfig) pingPeriod() time.Duration {
	return c.PongWait * 9 / 10
}

// Conn is one live WebSocket connection.
//
// The read pump runs in the HTTP handler goroutine, the write pump in its own
// goroutine and is the only writer of the socket. The send channel is never
// closed: Close signals done instead, so Send can race with Close safely.
type Conn struct {
	ws        *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	cfg       ConnConfig
	log       *slog.Logger
}

func NewConn(ws *websocket.Conn, cfg ConnConfig, log *slog.Logger) *Conn {
	ws.SetReadLimit(cfg.MaxMessageSize)
	return &Conn{
		ws:   ws,
		send: make(chan []byte, cfg.BufferSize),
		done: make(chan struct{}),
		cfg:  cfg,
		log:  log,
	}
}

// Send queues data for the write pump. It never blocks and only fails on
// this connection's own state, whatever the caller's context.
func (c *Conn) Send(_ context.Context, data []byte) error {
	if c.closed.Load() {
		return errors.ErrConnectionClosed
	}
	select {
	case <-c.done:
		return errors.ErrConnectionClosed
	case c.send <- data:
		return nil
	default:
		return errors.ErrSendBufferFull
	}
}

func (c *Conn) Closed() bool {
	return c.closed.Load()
}

// Close stops both pumps. Safe to call any number of times.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		close(c.done)
	})
}

// ReadPump hands every text frame to handle until the peer goes away,
// the read deadline expires or the connection is closed.
func (c *Conn) ReadPump(handle func(raw []byte)) {
	defer c.Close()

	c.setReadDeadline()
	c.ws.SetPongHandler(func(string) error {
		c.setReadDeadline()
		return nil
	})

	for {
		kind, raw, err := c.ws.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		if kind != websocket.TextMessage {
			c.log.Debug("Ignoring non text frame", "kind", kind)
			continue
		}
		handle(raw)
	}
}

func (c *Conn) setReadDeadline() {
	if err := c.ws.SetReadDeadline(time.Now().Add(c.cfg.PongWait)); err != nil {
		c.log.Debug("Unable to set read deadline", "error", err)
	}
}

func (c *Conn) logReadError(err error) {
	switch {
	case stderrors.Is(err, websocket.ErrReadLimit):
		c.log.Info("Frame exceeded maximum size", "max_bytes", c.cfg.MaxMessageSize)
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		c.log.Debug("Client disconnected")
	case stderrors.Is(err, io.EOF), stderrors.Is(err, net.ErrClosed), c.Closed():
		c.log.Debug("Connection closed", "error", err)
	default:
		c.log.Warn("Read failed", "error", err)
	}
}

// WritePump writes queued frames and keep-alive pings. It closes the socket
// when it returns, which also unblocks the read pump.
func (c *Conn) WritePump() {
	ticker := time.NewTicker(c.cfg.pingPeriod())
	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.ws.Close()
	}()

	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				c.log.Debug("Write failed", "error", err)
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.log.Debug("Ping failed", "error", err)
				return
			}
		case <-c.done:
			_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}
	}
}

func (c *Conn) write(kind int, data []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(kind, data)
}
