package repository

import (
	"context"
	"errors"

	"lighthouse-restaurant/backend/internal/menu/domain"
)

// ErrNotFound is returned by Update and Delete when no row has the given id.
var ErrNotFound = errors.New("not found")

// CategoryRepository persists menu categories.
type CategoryRepository interface {
	// List returns all categories by sort order, then name.
	List(ctx context.Context) ([]domain.Category, error)
	// Get returns the category for id, or nil if not found.
	Get(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, c *domain.Category) error
	Update(ctx context.Context, c *domain.Category) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// ProductRepository persists products.
type ProductRepository interface {
	// List returns all products by name, with their category name.
	List(ctx context.Context) ([]domain.Product, error)
	// ListFeatured returns up to limit featured products, newest first.
	ListFeatured(ctx context.Context, limit int) ([]domain.Product, error)
	// Get returns the product for id, or nil if not found.
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	// ToggleFeatured flips the featured flag and returns its new value.
	ToggleFeatured(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int, error)
}
