// Package repository stores menu categories and products in Postgres.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lighthouse-restaurant/backend/internal/menu/domain"
)

const categoryColumns = `id, name, description, sort_order, created_at, updated_at`

// CategoryStore implements CategoryRepository.
type CategoryStore struct {
	db   *sql.DB
	nowF func() time.Time
}

// NewCategoryStore returns a CategoryStore backed by db.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db, nowF: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *CategoryStore) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("category list: %w", err)
	}
	defer rows.Close()
	var out []domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("category list: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *CategoryStore) Get(ctx context.Context, id string) (*domain.Category, error) {
	c, err := scanCategory(s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("category get: %w", err)
	}
	return &c, nil
}

func (s *CategoryStore) Create(ctx context.Context, c *domain.Category) error {
	now := s.nowF().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, name, description, sort_order, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Description, c.SortOrder, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("category create: %w", err)
	}
	return nil
}

func (s *CategoryStore) Update(ctx context.Context, c *domain.Category) error {
	c.UpdatedAt = s.nowF().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE categories SET name = $2, description = $3, sort_order = $4, updated_at = $5 WHERE id = $1`,
		c.ID, c.Name, c.Description, c.SortOrder, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("category update: %w", err)
	}
	return requireRow(res)
}

// Delete removes the category. Its products stay, uncategorized.
func (s *CategoryStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("category delete: %w", err)
	}
	return requireRow(res)
}

func (s *CategoryStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, "categories")
}

const productColumns = `p.id, COALESCE(p.category_id::text, ''), COALESCE(c.name, ''), p.name, p.description,
	(p.price * 100)::bigint, p.sku, p.stock, p.image_url, p.featured, p.available, p.created_at, p.updated_at`

const productFrom = ` FROM products p LEFT JOIN categories c ON c.id = p.category_id`

// ProductStore implements ProductRepository.
type ProductStore struct {
	db   *sql.DB
	nowF func() time.Time
}

// NewProductStore returns a ProductStore backed by db.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db, nowF: time.Now}
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.CategoryID, &p.CategoryName, &p.Name, &p.Description, &p.PriceCents,
		&p.SKU, &p.Stock, &p.ImageURL, &p.Featured, &p.Available, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *ProductStore) query(ctx context.Context, op, tail string, args ...any) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+productFrom+tail, args...)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", op, err)
	}
	defer rows.Close()
	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", op, err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *ProductStore) List(ctx context.Context) ([]domain.Product, error) {
	return s.query(ctx, "list", ` ORDER BY p.name`)
}

func (s *ProductStore) ListFeatured(ctx context.Context, limit int) ([]domain.Product, error) {
	return s.query(ctx, "list featured", ` WHERE p.featured ORDER BY p.created_at DESC LIMIT $1`, limit)
}

func (s *ProductStore) Get(ctx context.Context, id string) (*domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+productFrom+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("product get: %w", err)
	}
	return &p, nil
}

func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

func (s *ProductStore) Create(ctx context.Context, p *domain.Product) error {
	now := s.nowF().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (id, category_id, name, description, price, sku, stock, image_url, featured, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric / 100, $6, $7, $8, $9, $10, $11, $12)`,
		p.ID, nullableID(p.CategoryID), p.Name, p.Description, p.PriceCents, p.SKU, p.Stock, p.ImageURL,
		p.Featured, p.Available, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("product create: %w", err)
	}
	return nil
}

func (s *ProductStore) Update(ctx context.Context, p *domain.Product) error {
	p.UpdatedAt = s.nowF().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE products SET category_id = $2, name = $3, description = $4, price = $5::numeric / 100, sku = $6,
		stock = $7, image_url = $8, featured = $9, available = $10, updated_at = $11 WHERE id = $1`,
		p.ID, nullableID(p.CategoryID), p.Name, p.Description, p.PriceCents, p.SKU, p.Stock, p.ImageURL,
		p.Featured, p.Available, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("product update: %w", err)
	}
	return requireRow(res)
}

func (s *ProductStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("product delete: %w", err)
	}
	return requireRow(res)
}

func (s *ProductStore) ToggleFeatured(ctx context.Context, id string) (bool, error) {
	var featured bool
	err := s.db.QueryRowContext(ctx,
		`UPDATE products SET featured = NOT featured, updated_at = $2 WHERE id = $1 RETURNING featured`,
		id, s.nowF().UTC()).Scan(&featured)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("product toggle featured: %w", err)
	}
	return featured, nil
}

func (s *ProductStore) Count(ctx context.Context) (int, error) {
	return count(ctx, s.db, "products")
}

func count(ctx context.Context, db *sql.DB, table string) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT count(*) FROM `+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s count: %w", table, err)
	}
	return n, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
