package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/usecase"
)

type sessionManager interface {
	GetSession(ctx context.Context, id string) (*entity.SessionState, error)
	MakeMove(ctx context.Context, id string, row, col int) (*usecase.MoveResult, error)
	ResetSession(ctx context.Context, id string) (*entity.SessionState, error)
}

type handlerFunc func(ctx context.Context, conn *websocket.Conn, sessionID string, msg *Message) error

type Server struct {
	logger   *slog.Logger
	sessions sessionManager
	hub      *Hub

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, sessions sessionManager, hub *Hub) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		sessions: sessions,
		hub:      hub,

		handlers: make(map[string]handlerFunc),
	}

	server.handlers[actionMove] = server.handleMove
	server.handlers[actionReset] = server.handleReset

	return server
}

// ServeHTTP - upgrades GET /ws/sessions/{id} and serves the socket until either side closes it.
func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	log := that.logger.With("method", "ServeHTTP", "sessionID", sessionID)

	updates, unsubscribe := that.hub.Subscribe(sessionID)
	defer unsubscribe()

	state, err := that.sessions.GetSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, apperror.ErrSessionNotFound) {
			http.Error(w, apperror.ErrSessionNotFound.Error(), http.StatusNotFound)
			return
		}

		log.Error("failed to get session", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error("failed to accept websocket", "error", err)
		return
	}
	defer conn.CloseNow()

	log.Info("WebSocket connection established")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	if err = that.send(ctx, conn, actionState, state); err != nil {
		log.Error("failed to send session state", "error", err)
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		that.forwardUpdates(ctx, conn, sessionID, updates)
	}()

	if err = that.handleMessages(ctx, conn, sessionID); err != nil {
		log.Error("error handling messages", "error", err)
	}

	cancel()
	<-done

	log.Info("WebSocket connection closed")
}

func (that *Server) forwardUpdates(ctx context.Context, conn *websocket.Conn, sessionID string, updates <-chan *entity.SessionState) {
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-updates:
			if !ok {
				that.logger.Warn("subscriber dropped", "sessionID", sessionID)
				_ = conn.Close(websocket.StatusTryAgainLater, "too slow")
				return
			}

			if err := that.send(ctx, conn, actionState, state); err != nil {
				return
			}
		}
	}
}

// handleMessages - reads client messages until the connection closes.
func (that *Server) handleMessages(ctx context.Context, conn *websocket.Conn, sessionID string) error {
	log := that.logger.With("method", "handleMessages", "sessionID", sessionID)

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if isClosed(ctx, err) {
				return nil
			}
			return fmt.Errorf("failed to read message: %w", err)
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Warn("failed to unmarshal message", "error", err)
			if err = that.sendError(ctx, conn, "", "invalid message", nil); err != nil {
				return err
			}
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			if err = that.sendError(ctx, conn, message.Action, "unknown action", nil); err != nil {
				return err
			}
			continue
		}

		if err = handler(ctx, conn, sessionID, &message); err != nil {
			return err
		}
	}
}

func (that *Server) send(ctx context.Context, conn *websocket.Conn, action string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err = wsjson.Write(ctx, conn, Message{Action: action, Payload: raw}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *Server) sendError(ctx context.Context, conn *websocket.Conn, action, text string, state *entity.SessionState) error {
	return that.send(ctx, conn, action, errorPayload{Error: text, Session: state})
}

func isClosed(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}

	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	default:
		return false
	}
}
