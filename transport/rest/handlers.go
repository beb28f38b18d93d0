package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/usecase"
)

const maxBodyBytes = 1 << 10

type sessionManager interface {
	CreateSession(ctx context.Context) (*entity.SessionState, error)
	GetSession(ctx context.Context, id string) (*entity.SessionState, error)
	MakeMove(ctx context.Context, id string, row, col int) (*usecase.MoveResult, error)
	ResetSession(ctx context.Context, id string) (*entity.SessionState, error)
	DeleteSession(ctx context.Context, id string) error
}

type Handlers struct {
	logger   *slog.Logger
	sessions sessionManager
}

func NewHandlers(logger *slog.Logger, sessions sessionManager) *Handlers {
	return &Handlers{
		logger:   logger.With("component", "rest"),
		sessions: sessions,
	}
}

type moveRequest struct {
	Row *int `json:"row"`
	Col *int `json:"col"`
}

type moveResponse struct {
	Applied bool                 `json:"applied"`
	Player  entity.Cell          `json:"player"`
	Session *entity.SessionState `json:"session"`
}

type errorResponse struct {
	Error   string               `json:"error"`
	Session *entity.SessionState `json:"session,omitempty"`
}

func (that *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	state, err := that.sessions.CreateSession(r.Context())
	if err != nil {
		that.writeError(w, "CreateSession", err, nil)
		return
	}

	w.Header().Set("Location", "/sessions/"+state.ID)
	that.writeJSON(w, http.StatusCreated, state)
}

func (that *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := that.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "GetSession", err, nil)
		return
	}

	that.writeJSON(w, http.StatusOK, state)
}

func (that *Handlers) MakeMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if req.Row == nil || req.Col == nil {
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "row and col are required"})
		return
	}

	result, err := that.sessions.MakeMove(r.Context(), chi.URLParam(r, "id"), *req.Row, *req.Col)
	if err != nil {
		var state *entity.SessionState
		if result != nil {
			state = result.State
		}
		that.writeError(w, "MakeMove", err, state)
		return
	}

	that.writeJSON(w, http.StatusOK, moveResponse{
		Applied: result.Applied,
		Player:  result.Player,
		Session: result.State,
	})
}

func (that *Handlers) ResetSession(w http.ResponseWriter, r *http.Request) {
	state, err := that.sessions.ResetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		that.writeError(w, "ResetSession", err, nil)
		return
	}

	that.writeJSON(w, http.StatusOK, state)
}

func (that *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := that.sessions.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		that.writeError(w, "DeleteSession", err, nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (that *Handlers) writeError(w http.ResponseWriter, method string, err error, state *entity.SessionState) {
	switch {
	case errors.Is(err, apperror.ErrSessionNotFound):
		that.writeJSON(w, http.StatusNotFound, errorResponse{Error: apperror.ErrSessionNotFound.Error()})
	case errors.Is(err, apperror.ErrInvalidCell):
		that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: apperror.ErrInvalidCell.Error()})
	case errors.Is(err, apperror.ErrGameFinished):
		that.writeJSON(w, http.StatusConflict, errorResponse{Error: apperror.ErrGameFinished.Error(), Session: state})
	default:
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func (that *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
