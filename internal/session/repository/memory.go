package repository

import (
	"context"
	"sync"
	"time"

	"lighthouse-restaurant/backend/internal/session/domain"
)

// MemoryStore is an in-memory Store for development without a database and for tests.
// Sessions are lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	m    map[string]domain.Session
	nowF func() time.Time
}

// NewMemoryStore returns an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]domain.Session),
		nowF: time.Now,
	}
}

// Get returns a copy of the session for id if present and not expired.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	e, ok := s.m[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if e.Expired(s.nowF()) {
		s.mu.Lock()
		delete(s.m, id)
		s.mu.Unlock()
		return nil, nil
	}
	if e.Snapshot != nil {
		snap := *e.Snapshot
		e.Snapshot = &snap
	}
	return &e, nil
}

// Set stores a copy of the session.
func (s *MemoryStore) Set(ctx context.Context, sess *domain.Session) error {
	e := *sess
	if sess.Snapshot != nil {
		snap := *sess.Snapshot
		e.Snapshot = &snap
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sess.ID] = e
	return nil
}

// Destroy deletes the session for id.
func (s *MemoryStore) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, id)
	return nil
}

// DeleteExpired removes expired sessions.
func (s *MemoryStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, e := range s.m {
		if e.Expired(now) {
			delete(s.m, id)
			n++
		}
	}
	return n, nil
}
