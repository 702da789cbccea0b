// Package service manages login sessions: it creates them from a user snapshot, resolves them from
// the signed cookie value and destroys them on logout.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"lighthouse-restaurant/backend/internal/security"
	"lighthouse-restaurant/backend/internal/session/domain"
	"lighthouse-restaurant/backend/internal/session/repository"
)

// ErrNoSnapshot is returned by Start when called without a user snapshot.
var ErrNoSnapshot = errors.New("session snapshot is required")

// Service issues and resolves sessions backed by a Store.
type Service struct {
	store  repository.Store
	signer *security.CookieSigner
	ttl    time.Duration
	nowF   func() time.Time
	newID  func() string
}

// NewService returns a Service. ttl is the session lifetime.
func NewService(store repository.Store, signer *security.CookieSigner, ttl time.Duration) *Service {
	return &Service{
		store:  store,
		signer: signer,
		ttl:    ttl,
		nowF:   time.Now,
		newID:  func() string { return uuid.New().String() },
	}
}

// TTL returns the session lifetime, used for the cookie Max-Age.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Start creates a session for snap and returns it with the signed cookie value.
func (s *Service) Start(ctx context.Context, snap *domain.Snapshot) (*domain.Session, string, error) {
	if snap == nil {
		return nil, "", ErrNoSnapshot
	}
	now := s.nowF().UTC()
	copied := *snap
	sess := &domain.Session{
		ID:        s.newID(),
		Snapshot:  &copied,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.store.Set(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("store session: %w", err)
	}
	value, err := s.signer.Sign(sess.ID, sess.ExpiresAt)
	if err != nil {
		_ = s.store.Destroy(ctx, sess.ID)
		return nil, "", fmt.Errorf("sign session: %w", err)
	}
	return sess, value, nil
}

// Resolve returns the live session for a cookie value. A missing, tampered or expired cookie, or a
// session no longer in the store, yields (nil, nil).
func (s *Service) Resolve(ctx context.Context, cookieValue string) (*domain.Session, error) {
	if cookieValue == "" {
		return nil, nil
	}
	id, err := s.signer.Verify(cookieValue)
	if err != nil {
		return nil, nil
	}
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.Expired(s.nowF()) {
		return nil, nil
	}
	return sess, nil
}

// End destroys the session referenced by the cookie value. Unknown or invalid cookies are ignored.
func (s *Service) End(ctx context.Context, cookieValue string) error {
	id, err := s.signer.Verify(cookieValue)
	if err != nil {
		return nil
	}
	if err := s.store.Destroy(ctx, id); err != nil {
		log.Printf("session: destroy %s: %v", id, err)
		return err
	}
	return nil
}
