// Package repository stores pages and site settings in Postgres.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"lighthouse-restaurant/backend/internal/content/domain"
)

const uniqueViolation = "23505"

const pageColumns = `id, slug, title, content_html, hero_image_url, status, sort_order, created_at, updated_at`

// PageStore implements PageRepository.
type PageStore struct {
	db   *sql.DB
	nowF func() time.Time
}

// NewPageStore returns a PageStore backed by db.
func NewPageStore(db *sql.DB) *PageStore {
	return &PageStore{db: db, nowF: time.Now}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (domain.Page, error) {
	var p domain.Page
	var status string
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.ContentHTML, &p.HeroImageURL, &status, &p.SortOrder,
		&p.CreatedAt, &p.UpdatedAt)
	p.Status = domain.Status(status)
	return p, err
}

func (s *PageStore) List(ctx context.Context) ([]domain.Page, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+pageColumns+` FROM pages ORDER BY sort_order, title`)
	if err != nil {
		return nil, fmt.Errorf("page list: %w", err)
	}
	defer rows.Close()
	var out []domain.Page
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("page list: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PageStore) getOne(ctx context.Context, op, where string, arg any) (*domain.Page, error) {
	p, err := scanPage(s.db.QueryRowContext(ctx, `SELECT `+pageColumns+` FROM pages WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("page %s: %w", op, err)
	}
	return &p, nil
}

func (s *PageStore) Get(ctx context.Context, id string) (*domain.Page, error) {
	return s.getOne(ctx, "get", `id = $1`, id)
}

func (s *PageStore) GetPublished(ctx context.Context, slug string) (*domain.Page, error) {
	return s.getOne(ctx, "get published", `slug = $1 AND status = 'published'`, slug)
}

func (s *PageStore) Create(ctx context.Context, p *domain.Page) error {
	now := s.nowF().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO pages (id, slug, title, content_html, hero_image_url, status, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Slug, p.Title, p.ContentHTML, p.HeroImageURL, string(p.Status), p.SortOrder, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return wrapWriteErr("page create", err)
	}
	return nil
}

func (s *PageStore) Update(ctx context.Context, p *domain.Page) error {
	p.UpdatedAt = s.nowF().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE pages SET slug = $2, title = $3, content_html = $4, hero_image_url = $5, status = $6,
		sort_order = $7, updated_at = $8 WHERE id = $1`,
		p.ID, p.Slug, p.Title, p.ContentHTML, p.HeroImageURL, string(p.Status), p.SortOrder, p.UpdatedAt)
	if err != nil {
		return wrapWriteErr("page update", err)
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

func (s *PageStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM pages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("page delete: %w", err)
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

func wrapWriteErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrSlugTaken
	}
	return fmt.Errorf("%s: %w", op, err)
}

const settingsColumns = `hero_title, hero_subtitle, hero_image_url, historia_html, visitanos_html, schedule_json,
	address, phone, email, map_embed_url, footer_html, updated_at`

// SettingsStore implements SettingsRepository on the single-row site_settings table.
type SettingsStore struct {
	db   *sql.DB
	nowF func() time.Time
}

// NewSettingsStore returns a SettingsStore backed by db.
func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db, nowF: time.Now}
}

func (s *SettingsStore) Get(ctx context.Context) (*domain.Settings, error) {
	var st domain.Settings
	err := s.db.QueryRowContext(ctx, `SELECT `+settingsColumns+` FROM site_settings WHERE id = 1`).Scan(
		&st.HeroTitle, &st.HeroSubtitle, &st.HeroImageURL, &st.HistoriaHTML, &st.VisitanosHTML, &st.ScheduleJSON,
		&st.Address, &st.Phone, &st.Email, &st.MapEmbedURL, &st.FooterHTML, &st.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("settings get: %w", err)
	}
	return &st, nil
}

func (s *SettingsStore) Save(ctx context.Context, st *domain.Settings) error {
	st.UpdatedAt = s.nowF().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO site_settings (id, `+settingsColumns+`)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			hero_title = EXCLUDED.hero_title, hero_subtitle = EXCLUDED.hero_subtitle,
			hero_image_url = EXCLUDED.hero_image_url, historia_html = EXCLUDED.historia_html,
			visitanos_html = EXCLUDED.visitanos_html, schedule_json = EXCLUDED.schedule_json,
			address = EXCLUDED.address, phone = EXCLUDED.phone, email = EXCLUDED.email,
			map_embed_url = EXCLUDED.map_embed_url, footer_html = EXCLUDED.footer_html,
			updated_at = EXCLUDED.updated_at`,
		st.HeroTitle, st.HeroSubtitle, st.HeroImageURL, st.HistoriaHTML, st.VisitanosHTML, st.ScheduleJSON,
		st.Address, st.Phone, st.Email, st.MapEmbedURL, st.FooterHTML, st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("settings save: %w", err)
	}
	return nil
}
