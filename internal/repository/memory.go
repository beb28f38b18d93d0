package repository

import (
	"context"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/apperror"
	"github.com/rocketscienceinc/tictactoe4x4-backend/internal/entity"
)

type memoryEntry struct {
	session   entity.Session
	expiresAt time.Time
}

// memorySession keeps sessions in process. State is lost on restart.
type memorySession struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionRepository(ttl time.Duration) SessionRepository {
	return &memorySession{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (that *memorySession) CreateOrUpdate(_ context.Context, session *entity.Session) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry := memoryEntry{session: *session}
	if that.ttl > 0 {
		entry.expiresAt = that.now().Add(that.ttl)
	}

	that.sessions[session.ID] = entry

	return nil
}

func (that *memorySession) GetByID(_ context.Context, id string) (*entity.Session, error) {
	that.mu.RLock()
	entry, ok := that.sessions[id]
	that.mu.RUnlock()

	if !ok {
		return nil, apperror.ErrSessionNotFound
	}

	if that.expired(entry) {
		that.mu.Lock()
		// the entry may have been rewritten since the read lock was released
		if current, ok := that.sessions[id]; ok && that.expired(current) {
			delete(that.sessions, id)
		}
		that.mu.Unlock()

		return nil, apperror.ErrSessionNotFound
	}

	session := entry.session

	return &session, nil
}

func (that *memorySession) DeleteByID(_ context.Context, id string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	entry, ok := that.sessions[id]
	if !ok || that.expired(entry) {
		delete(that.sessions, id)
		return apperror.ErrSessionNotFound
	}

	delete(that.sessions, id)

	return nil
}

func (that *memorySession) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !that.now().Before(entry.expiresAt)
}
