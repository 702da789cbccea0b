package repository

import (
	"context"
	"time"

	"lighthouse-restaurant/backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// FindByEmailFold returns all users whose email equals email ignoring case, oldest first.
	FindByEmailFold(ctx context.Context, email string) ([]*domain.User, error)
	// GetByRecoveryTokenHash returns the user whose outstanding or last consumed token has the given hash,
	// or nil if none.
	GetByRecoveryTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// Update writes email, name, password hash and admin flag.
	Update(ctx context.Context, u *domain.User) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	// SetRecoveryToken stores tokenHash and expiresAt and clears the used flag in one write,
	// replacing any previous token.
	SetRecoveryToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	// CommitPassword sets the new password hash, marks the token used, moves it to the consumed slot and
	// clears the token and expiry, but only if tokenHash is still the user's unused token. Returns false
	// when no row matched.
	CommitPassword(ctx context.Context, userID, tokenHash, passwordHash string, at time.Time) (bool, error)
}
