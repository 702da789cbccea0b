package repository

import (
	"context"
	"errors"

	"lighthouse-restaurant/backend/internal/content/domain"
)

var (
	// ErrNotFound is returned by Update and Delete when no row has the given id.
	ErrNotFound = errors.New("not found")
	// ErrSlugTaken is returned when another page already uses the slug.
	ErrSlugTaken = errors.New("slug already in use")
)

// PageRepository persists content pages.
type PageRepository interface {
	// List returns all pages by sort order, then title.
	List(ctx context.Context) ([]domain.Page, error)
	// Get returns the page for id, or nil if not found.
	Get(ctx context.Context, id string) (*domain.Page, error)
	// GetPublished returns the published page for slug, or nil.
	GetPublished(ctx context.Context, slug string) (*domain.Page, error)
	Create(ctx context.Context, p *domain.Page) error
	Update(ctx context.Context, p *domain.Page) error
	Delete(ctx context.Context, id string) error
}

// SettingsRepository persists the single site settings row.
type SettingsRepository interface {
	// Get returns the settings, or nil if they were never saved.
	Get(ctx context.Context) (*domain.Settings, error)
	// Save inserts or replaces the settings.
	Save(ctx context.Context, s *domain.Settings) error
}
