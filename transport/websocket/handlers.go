package websocket

import (
	"context"
	"encoding/json"
	"errors"

	"nhooyr.io/websocket"

	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/entity"
)

// handleMove applies a move. Applied moves reach every socket, this one included, through the hub.
func (that *Server) handleMove(ctx context.Context, conn *websocket.Conn, sessionID string, msg *Message) error {
	log := that.logger.With("method", "handleMove", "sessionID", sessionID)

	var payload movePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Warn("failed to unmarshal payload", "error", err)
		return that.sendError(ctx, conn, msg.Action, "invalid payload", nil)
	}

	if payload.Row == nil || payload.Col == nil {
		return that.sendError(ctx, conn, msg.Action, "row and col are required", nil)
	}

	result, err := that.sessions.MakeMove(ctx, sessionID, *payload.Row, *payload.Col)
	if err != nil {
		var state *entity.SessionState
		if result != nil {
			state = result.State
		}
		return that.replyError(ctx, conn, msg.Action, err, state)
	}

	if !result.Applied {
		return that.send(ctx, conn, msg.Action, moveRejectedPayload{
			Applied: false,
			Player:  result.Player,
			Session: result.State,
		})
	}

	return nil
}

func (that *Server) handleReset(ctx context.Context, conn *websocket.Conn, sessionID string, msg *Message) error {
	if _, err := that.sessions.ResetSession(ctx, sessionID); err != nil {
		return that.replyError(ctx, conn, msg.Action, err, nil)
	}

	return nil
}

// replyError answers the sender; only a failed write ends the connection.
func (that *Server) replyError(ctx context.Context, conn *websocket.Conn, action string, err error, state *entity.SessionState) error {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		return that.sendError(ctx, conn, action, apperror.ErrSessionNotFound.Error(), nil)
	case errors.Is(err, apperror.ErrInvalidCell):
		return that.sendError(ctx, conn, action, apperror.ErrInvalidCell.Error(), nil)
	case errors.Is(err, apperror.ErrGameFinished):
		return that.sendError(ctx, conn, action, apperror.ErrGameFinished.Error(), state)
	default:
		that.logger.Error("action failed", "action", action, "error", err)
		return that.sendError(ctx, conn, action, "internal server error", nil)
	}
}
