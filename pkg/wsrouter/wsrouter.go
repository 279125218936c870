// Package wsrouter dispatches typed JSON messages read from a websocket
// connection to per-event handlers.
package wsrouter

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/gorilla/websocket"
)

type message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc func(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error

type WSRouter struct {
	routes map[string]HandlerFunc
	logger *slog.Logger
}

func New(logger *slog.Logger) *WSRouter {
	return &WSRouter{
		routes: make(map[string]HandlerFunc),
		logger: logger,
	}
}

func (r *WSRouter) Handle(event string, handler HandlerFunc) {
	r.routes[event] = handler
}

// ServeConn reads messages until the connection fails and routes each one to
// its handler. Messages with an unknown event are dropped; handler errors are
// logged and do not end the loop.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		handler, ok := r.routes[msg.Event]
		if !ok {
			r.logger.DebugContext(ctx, "unknown event dropped", "event", msg.Event)
			continue
		}

		msgCtx := context.WithValue(ctx, eventKey, msg.Event)
		if err := handler(msgCtx, conn, msg.Payload); err != nil {
			r.logger.WarnContext(msgCtx, "handler failed", "event", msg.Event, "error", err)
		}
	}
}
