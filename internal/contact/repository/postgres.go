// Package repository stores contact messages in Postgres.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"lighthouse-restaurant/backend/internal/contact/domain"
)

// PostgresRepository implements Repository.
type PostgresRepository struct {
	db   *sql.DB
	nowF func() time.Time
}

// NewPostgresRepository returns a contact repository backed by db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, nowF: time.Now}
}

func (r *PostgresRepository) Create(ctx context.Context, m *domain.Message) error {
	m.CreatedAt = r.nowF().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (id, name, email, phone, subject, message, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.Name, m.Email, m.Phone, m.Subject, m.Body, m.Read, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("contact create: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]domain.Message, error) {
	q := `SELECT id, name, email, phone, subject, message, is_read, created_at FROM contacts ORDER BY created_at DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("contact list: %w", err)
	}
	defer rows.Close()
	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Body, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("contact list: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE contacts SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("contact mark read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Counts(ctx context.Context) (total, unread int, err error) {
	err = r.db.QueryRowContext(ctx,
		`SELECT count(*), count(*) FILTER (WHERE NOT is_read) FROM contacts`).Scan(&total, &unread)
	if err != nil {
		return 0, 0, fmt.Errorf("contact counts: %w", err)
	}
	return total, unread, nil
}
