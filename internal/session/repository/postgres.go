package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lighthouse-restaurant/backend/internal/session/domain"
)

type PostgresRepository struct {
	db   *sql.DB
	nowF func() time.Time
}

// NewPostgresRepository returns a session store that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, nowF: time.Now}
}

// Get returns the session for id, or nil if not found or expired.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*domain.Session, error) {
	var (
		s    domain.Session
		snap domain.Snapshot
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, email, name, is_admin, expires_at, created_at FROM sessions
		 WHERE id = $1 AND expires_at > $2`, id, r.nowF().UTC()).
		Scan(&s.ID, &snap.UserID, &snap.Email, &snap.Name, &snap.IsAdmin, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("session get: %w", err)
	}
	s.Snapshot = &snap
	return &s, nil
}

// Set persists the session. Anonymous sessions are not stored.
func (r *PostgresRepository) Set(ctx context.Context, s *domain.Session) error {
	if !s.Authenticated() {
		return errors.New("session: snapshot is required")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, email, name, is_admin, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.Snapshot.UserID, s.Snapshot.Email, s.Snapshot.Name, s.Snapshot.IsAdmin, s.ExpiresAt, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("session set: %w", err)
	}
	return nil
}

// Destroy deletes the session by id.
func (r *PostgresRepository) Destroy(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("session destroy: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions whose expiry is at or before now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("session purge: %w", err)
	}
	return res.RowsAffected()
}
