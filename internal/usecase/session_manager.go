package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/tictactoe"
)

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type publisher interface {
	Publish(state *entity.SessionState)
}

// MoveResult is the answer to a move request. Applied is false when the cell was occupied.
type MoveResult struct {
	Applied bool
	Player  entity.Cell
	State   *entity.SessionState
}

// SessionManager drives one engine per session. Every load-apply-save runs under a single
// mutex, so the engines never see concurrent callers.
type SessionManager struct {
	logger      *slog.Logger
	sessionRepo sessionRepo
	publisher   publisher

	mu  sync.Mutex
	now func() time.Time
}

// NewSessionManager - publisher may be nil when nothing renders sessions.
func NewSessionManager(logger *slog.Logger, sessionRepo sessionRepo, publisher publisher) *SessionManager {
	return &SessionManager{
		logger:      logger.With("component", "session_manager"),
		sessionRepo: sessionRepo,
		publisher:   publisher,
		now:         time.Now,
	}
}

func (that *SessionManager) CreateSession(ctx context.Context) (*entity.SessionState, error) {
	session := entity.NewSession(uuid.NewString(), that.now().UTC())

	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	that.logger.Info("session created", "method", "CreateSession", "sessionID", session.ID)

	return entity.NewSessionState(session, tictactoe.NewEngine().Evaluate()), nil
}

func (that *SessionManager) GetSession(ctx context.Context, id string) (*entity.SessionState, error) {
	session, engine, err := that.load(ctx, id)
	if err != nil {
		return nil, err
	}

	return entity.NewSessionState(session, engine.Evaluate()), nil
}

// MakeMove applies a move for whoever is to move in the session. Moves into a decided
// game are refused with apperror.ErrGameFinished; the engine alone would accept them.
func (that *SessionManager) MakeMove(ctx context.Context, id string, row, col int) (*MoveResult, error) {
	log := that.logger.With("method", "MakeMove", "sessionID", id)

	that.mu.Lock()
	defer that.mu.Unlock()

	session, engine, err := that.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if outcome := engine.Evaluate(); outcome.IsFinished() {
		return &MoveResult{State: entity.NewSessionState(session, outcome)}, apperror.ErrGameFinished
	}

	player := engine.Turn()

	applied, err := engine.AttemptMove(row, col)
	if err != nil {
		return nil, fmt.Errorf("failed make move: %w", err)
	}

	if !applied {
		log.Debug("cell occupied", "row", row, "col", col)
		return &MoveResult{Player: player, State: entity.NewSessionState(session, engine.Evaluate())}, nil
	}

	log.Info("move applied", "row", row, "col", col, "player", player.String())

	state, err := that.save(ctx, session, engine)
	if err != nil {
		return nil, err
	}

	if state.IsFinished() {
		log.Info("game finished", "status", state.Status, "winner", state.Winner.String())
	}

	return &MoveResult{Applied: true, Player: player, State: state}, nil
}

func (that *SessionManager) ResetSession(ctx context.Context, id string) (*entity.SessionState, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	session, engine, err := that.load(ctx, id)
	if err != nil {
		return nil, err
	}

	engine.Reset()

	state, err := that.save(ctx, session, engine)
	if err != nil {
		return nil, err
	}

	that.logger.Info("session reset", "method", "ResetSession", "sessionID", id)

	return state, nil
}

func (that *SessionManager) DeleteSession(ctx context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	if err := that.sessionRepo.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	that.logger.Info("session deleted", "method", "DeleteSession", "sessionID", id)

	return nil
}

func (that *SessionManager) load(ctx context.Context, id string) (*entity.Session, *tictactoe.Engine, error) {
	session, err := that.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}

	engine, err := tictactoe.Restore(session.Board, session.Turn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to restore engine: %w", err)
	}

	return session, engine, nil
}

// save copies the engine into the session, stores it and publishes the new state.
func (that *SessionManager) save(ctx context.Context, session *entity.Session, engine *tictactoe.Engine) (*entity.SessionState, error) {
	session.Board = engine.Board()
	session.Turn = engine.Turn()
	session.Moves = engine.Moves()
	session.UpdatedAt = that.now().UTC()

	if err := that.sessionRepo.CreateOrUpdate(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	state := entity.NewSessionState(session, engine.Evaluate())

	if that.publisher != nil {
		that.publisher.Publish(state)
	}

	return state, nil
}
