package session

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps sessions in process memory. It exists so the service
// can run without Redis (local development, single instance); sessions
// do not survive a restart.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(24*time.Hour, 10*time.Minute),
	}
}

func (m *MemoryStore) Create(_ context.Context, s Session) error {
	if s.SessionID == "" || s.UserID == "" {
		return fmt.Errorf("session: missing session_id or user_id")
	}

	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}

	m.cache.Set(s.SessionID, s, ttl)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Session, error) {
	val, ok := m.cache.Get(sessionID)
	if !ok {
		return nil, nil // not found
	}

	s, ok := val.(Session)
	if !ok {
		return nil, fmt.Errorf("session: unexpected cache entry type")
	}
	return &s, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.cache.Delete(sessionID)
	return nil
}
