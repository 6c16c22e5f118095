package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v5"

	"github.com/samefarrar/inkwell/internal/orchestrator"
	"github.com/samefarrar/inkwell/internal/protocol"
)

// wsConn serializes writes to one websocket connection. Draft
// generation streams from concurrent goroutines, so every send takes
// the lock.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(msg protocol.ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

func (s *Server) handleWebSocket(c *echo.Context) error {
	r := c.Request()
	w := c.Response()

	if origin := r.Header.Get("Origin"); origin != "" && !s.cfg.OriginAllowed(origin) {
		return echo.NewHTTPError(http.StatusForbidden, "origin not allowed")
	}

	user, err := s.auth.Authenticate(r.Context(), r)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.cfg.OriginAllowed(origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return nil
	}
	defer conn.Close()

	out := &wsConn{conn: conn}
	orch := orchestrator.New(orchestrator.Deps{
		Client:     s.client,
		Searcher:   s.searcher,
		Logger:     s.logger,
		Sessions:   s.sessions,
		Drafts:     s.drafts,
		Highlights: s.highlights,
		Messages:   s.messages,
		Feedback:   s.feedback,
		Prefs:      s.prefs,
		Styles:     s.styles,
	}, user.ID, out.send)

	s.logger.Info("websocket connected", "user_id", user.ID)
	s.readLoop(r.Context(), conn, out, orch)
	s.logger.Info("websocket disconnected", "user_id", user.ID)
	return nil
}

// readLoop processes inbound messages until the connection closes.
// Malformed payloads produce an error event and leave the connection
// open.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, out *wsConn, orch *orchestrator.Orchestrator) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			_ = out.send(protocol.NewError(decodeErrorMessage(err)))
			continue
		}

		if err := orch.HandleMessage(ctx, msg); err != nil {
			s.logger.Error("message handling failed", "error", err)
			_ = out.send(protocol.NewError("Internal error"))
		}
	}
}

// decodeErrorMessage maps decode failures to the client-facing text.
func decodeErrorMessage(err error) string {
	var vErr *protocol.ValidationError
	switch {
	case errors.Is(err, protocol.ErrInvalidJSON):
		return "Invalid JSON"
	case errors.Is(err, protocol.ErrUnknownType):
		return "Unknown message type"
	case errors.As(err, &vErr):
		return fmt.Sprintf("Validation error: %d errors", len(vErr.Problems))
	default:
		return "Invalid message"
	}
}
