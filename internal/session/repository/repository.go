package repository

import (
	"context"
	"time"

	"lighthouse-restaurant/backend/internal/session/domain"
)

// Store persists sessions by id.
type Store interface {
	// Get returns the session for id, or nil if it does not exist or has expired.
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Set inserts the session. Sessions are never updated in place.
	Set(ctx context.Context, s *domain.Session) error
	// Destroy deletes the session; deleting a missing session is not an error.
	Destroy(ctx context.Context, id string) error
}

// Purger deletes sessions that expired before now and returns how many were removed.
type Purger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
