package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lighthouse-restaurant/backend/internal/user/domain"
)

const userColumns = `id, email, name, password, is_admin, last_login,
	reset_password_token, reset_password_expires, reset_password_used, reset_password_consumed,
	created_at, updated_at`

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u         domain.User
		lastLogin sql.NullTime
		token     sql.NullString
		expires   sql.NullTime
		consumed  sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &lastLogin,
		&token, &expires, &u.ResetUsed, &consumed, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLogin = &t
	}
	if token.Valid {
		u.ResetTokenHash = token.String
	}
	if expires.Valid {
		t := expires.Time
		u.ResetExpires = &t
	}
	if consumed.Valid {
		u.ConsumedTokenHash = consumed.String
	}
	return &u, nil
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user get: %w", err)
	}
	return u, nil
}

// FindByEmailFold returns users whose email matches case-insensitively. The unique lower(email) index
// keeps this to at most one row in practice.
func (r *PostgresRepository) FindByEmailFold(ctx context.Context, email string) ([]*domain.User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1) ORDER BY created_at`, email)
	if err != nil {
		return nil, fmt.Errorf("user find by email: %w", err)
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("user scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// GetByRecoveryTokenHash returns the user whose outstanding or last consumed recovery token hash equals
// tokenHash, or nil.
func (r *PostgresRepository) GetByRecoveryTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE reset_password_token = $1 OR reset_password_consumed = $1 LIMIT 1`,
		tokenHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user get by token: %w", err)
	}
	return u, nil
}

// Create persists the user. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, name, password, is_admin, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.IsAdmin, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

// Update updates email, name, password hash and admin flag of an existing user.
func (r *PostgresRepository) Update(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = $2, name = $3, password = $4, is_admin = $5, updated_at = $6 WHERE id = $1`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.IsAdmin, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("user update: %w", err)
	}
	return nil
}

// UpdateLastLogin stamps last_login for userID.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, userID, at)
	if err != nil {
		return fmt.Errorf("user last login: %w", err)
	}
	return nil
}

// SetRecoveryToken overwrites the recovery token fields in a single statement.
func (r *PostgresRepository) SetRecoveryToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_password_token = $2, reset_password_expires = $3, reset_password_used = FALSE
		 WHERE id = $1`,
		userID, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("user set recovery token: %w", err)
	}
	return nil
}

// CommitPassword updates the password and consumes the token in one guarded statement, so two concurrent
// commits with the same token cannot both succeed.
func (r *PostgresRepository) CommitPassword(ctx context.Context, userID, tokenHash, passwordHash string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password = $3, reset_password_used = TRUE, reset_password_consumed = reset_password_token,
		 reset_password_token = NULL, reset_password_expires = NULL, updated_at = $4
		 WHERE id = $1 AND reset_password_token = $2 AND reset_password_used = FALSE`,
		userID, tokenHash, passwordHash, at)
	if err != nil {
		return false, fmt.Errorf("user commit password: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("user commit password: %w", err)
	}
	return n == 1, nil
}
