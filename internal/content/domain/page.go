// Package domain defines the editable site content: static pages and the single site settings row.
package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Status of a page. Only published pages are served publicly.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

var (
	ErrSlugRequired  = errors.New("slug is required")
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidStatus = errors.New("invalid page status")
)

var slugUnsafe = regexp.MustCompile(`[^a-z0-9-]+`)

// Page is a content page served at /p/<slug>.
type Page struct {
	ID           string
	Slug         string
	Title        string
	ContentHTML  string
	HeroImageURL string
	Status       Status
	SortOrder    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Published reports whether the page is publicly visible.
func (p Page) Published() bool {
	return p.Status == StatusPublished
}

// NormalizeSlug lowercases s and replaces runs of characters outside [a-z0-9-] with a single dash.
func NormalizeSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugUnsafe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ParseStatus maps form input to a Status; empty input means draft.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.TrimSpace(s)) {
	case "", StatusDraft:
		return StatusDraft, nil
	case StatusPublished:
		return StatusPublished, nil
	}
	return "", ErrInvalidStatus
}

// Validate reports whether the page can be stored.
func (p *Page) Validate() error {
	if p.Slug == "" {
		return ErrSlugRequired
	}
	if strings.TrimSpace(p.Title) == "" {
		return ErrTitleRequired
	}
	if p.Status != StatusDraft && p.Status != StatusPublished {
		return ErrInvalidStatus
	}
	return nil
}
