package repository

import (
	"context"
	"errors"

	"lighthouse-restaurant/backend/internal/contact/domain"
)

// ErrNotFound is returned by MarkRead when no message has the given id.
var ErrNotFound = errors.New("not found")

// Repository persists contact messages.
type Repository interface {
	Create(ctx context.Context, m *domain.Message) error
	// ListRecent returns up to limit messages, newest first. A limit <= 0 returns all.
	ListRecent(ctx context.Context, limit int) ([]domain.Message, error)
	MarkRead(ctx context.Context, id string) error
	// Counts returns the total and unread message counts.
	Counts(ctx context.Context) (total, unread int, err error)
}
