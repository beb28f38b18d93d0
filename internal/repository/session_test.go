package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/entity"
	"github.com/rocketscienceinc/tictactoe4x4-backend/testing/suite"
)

func newTestSession(id string) *entity.Session {
	session := entity.NewSession(id, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	session.Board[1][2] = entity.PlayerOne
	session.Turn = entity.PlayerTwo
	session.Moves = 1

	return session
}

func TestSessionRepository_CreateOrUpdate(t *testing.T) {
	t.Run("Stores session with TTL", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		// Given: a session with one move
		session := newTestSession("123")

		// When: CreateOrUpdate is called
		err := sessionRepo.CreateOrUpdate(ctx, session)

		// Then: no error should be returned, and the key expires within the TTL
		require.NoError(t, err)

		ttl, err := st.Storage.TTL(ctx, "session:123").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Hour)
	})

	t.Run("Overwrites existing session", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, 0)

		// Given: a stored session
		session := newTestSession("123")
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

		// When: it is stored again after a reset
		session.Board = entity.Board{}
		session.Turn = entity.PlayerOne
		session.Moves = 0
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

		// Then: the latest version is returned
		stored, err := sessionRepo.GetByID(ctx, "123")
		require.NoError(t, err)
		assert.Equal(t, entity.Board{}, stored.Board)
		assert.Equal(t, entity.PlayerOne, stored.Turn)
	})
}

func TestSessionRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		// Given: a stored session
		session := newTestSession("123")
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

		// When: GetByID is called with existing ID
		retrieved, err := sessionRepo.GetByID(ctx, session.ID)

		// Then: the retrieved session should match the saved one
		require.NoError(t, err)
		assert.Equal(t, session.ID, retrieved.ID)
		assert.Equal(t, session.Board, retrieved.Board)
		assert.Equal(t, session.Turn, retrieved.Turn)
		assert.Equal(t, session.Moves, retrieved.Moves)
		assert.True(t, session.CreatedAt.Equal(retrieved.CreatedAt))
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		// When: GetByID is called with non-existent ID
		retrieved, err := sessionRepo.GetByID(ctx, "9999999")

		// Then: an ErrSessionNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		assert.Nil(t, retrieved)
	})
}

func TestSessionRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		// Given: a stored session
		session := newTestSession("123")
		require.NoError(t, sessionRepo.CreateOrUpdate(ctx, session))

		// When: DeleteByID is called with existing ID
		err := sessionRepo.DeleteByID(ctx, session.ID)

		// Then: no error should be returned and the session is gone
		require.NoError(t, err)

		_, err = sessionRepo.GetByID(ctx, session.ID)
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		sessionRepo := NewSessionRepository(st.Storage, time.Hour)

		// When: DeleteByID is called with non-existent ID
		err := sessionRepo.DeleteByID(ctx, "9999999")

		// Then: an ErrSessionNotFound error should be returned
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
	})
}
