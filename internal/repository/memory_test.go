package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/entity"
)

// newClockedMemory returns a memory repository with a movable clock.
func newClockedMemory(ttl time.Duration) (*memorySession, *time.Time) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := NewMemorySessionRepository(ttl).(*memorySession)
	repo.now = func() time.Time { return now }

	return repo, &now
}

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Round trip", func(t *testing.T) {
		// Given: a stored session
		repo := NewMemorySessionRepository(time.Hour)
		session := newTestSession("abc")
		require.NoError(t, repo.CreateOrUpdate(ctx, session))

		// When: it is read back
		stored, err := repo.GetByID(ctx, "abc")

		// Then: it equals the original
		require.NoError(t, err)
		assert.Equal(t, session, stored)
	})

	t.Run("Returns copies", func(t *testing.T) {
		// Given: a stored session
		repo := NewMemorySessionRepository(0)
		session := newTestSession("abc")
		require.NoError(t, repo.CreateOrUpdate(ctx, session))

		// When: both the original and a read copy are mutated
		session.Board[0][0] = entity.PlayerTwo
		stored, err := repo.GetByID(ctx, "abc")
		require.NoError(t, err)
		stored.Board[3][3] = entity.PlayerTwo

		// Then: the stored session is untouched
		again, err := repo.GetByID(ctx, "abc")
		require.NoError(t, err)
		assert.Equal(t, entity.Empty, again.Board[0][0])
		assert.Equal(t, entity.Empty, again.Board[3][3])
	})

	t.Run("Not found", func(t *testing.T) {
		repo := NewMemorySessionRepository(time.Hour)

		stored, err := repo.GetByID(ctx, "missing")

		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		assert.Nil(t, stored)
	})

	t.Run("Delete", func(t *testing.T) {
		// Given: a stored session
		repo := NewMemorySessionRepository(time.Hour)
		require.NoError(t, repo.CreateOrUpdate(ctx, newTestSession("abc")))

		// When: it is deleted twice
		first := repo.DeleteByID(ctx, "abc")
		second := repo.DeleteByID(ctx, "abc")

		// Then: only the first delete finds it
		require.NoError(t, first)
		require.ErrorIs(t, second, apperror.ErrSessionNotFound)
	})

	t.Run("Expires after TTL", func(t *testing.T) {
		// Given: a session stored with a one minute TTL
		repo, now := newClockedMemory(time.Minute)
		require.NoError(t, repo.CreateOrUpdate(ctx, newTestSession("abc")))

		// When: the clock passes the TTL
		*now = now.Add(59 * time.Second)
		_, err := repo.GetByID(ctx, "abc")
		require.NoError(t, err)

		*now = now.Add(time.Second)
		_, err = repo.GetByID(ctx, "abc")

		// Then: the session is gone
		require.ErrorIs(t, err, apperror.ErrSessionNotFound)
		assert.Empty(t, repo.sessions)
	})

	t.Run("Writes refresh the TTL", func(t *testing.T) {
		// Given: a session stored with a one minute TTL
		repo, now := newClockedMemory(time.Minute)
		session := newTestSession("abc")
		require.NoError(t, repo.CreateOrUpdate(ctx, session))

		// When: it is written again 50 seconds later
		*now = now.Add(50 * time.Second)
		require.NoError(t, repo.CreateOrUpdate(ctx, session))
		*now = now.Add(50 * time.Second)

		// Then: it is still there 100 seconds after the first write
		_, err := repo.GetByID(ctx, "abc")
		require.NoError(t, err)
	})
}
