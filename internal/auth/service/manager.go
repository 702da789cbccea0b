// Package service implements credential verification and the password recovery token lifecycle.
package service

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"lighthouse-restaurant/backend/internal/mail"
	"lighthouse-restaurant/backend/internal/security"
	sessiondomain "lighthouse-restaurant/backend/internal/session/domain"
	userdomain "lighthouse-restaurant/backend/internal/user/domain"
)

const (
	// RecoveryTokenTTL is how long a recovery link stays valid.
	RecoveryTokenTTL = time.Hour
	// MinPasswordLength is the minimum length of a new password, in characters.
	MinPasswordLength = 8
	// MaxPasswordBytes is the bcrypt input limit.
	MaxPasswordBytes = 72
)

// UserRepo is the minimal user repository needed by the manager.
type UserRepo interface {
	FindByEmailFold(ctx context.Context, email string) ([]*userdomain.User, error)
	GetByRecoveryTokenHash(ctx context.Context, tokenHash string) (*userdomain.User, error)
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	SetRecoveryToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	CommitPassword(ctx context.Context, userID, tokenHash, passwordHash string, at time.Time) (bool, error)
}

// Manager verifies credentials and runs the recovery token lifecycle.
type Manager struct {
	users    UserRepo
	mailer   mail.Sender
	hasher   *security.Hasher
	appURL   string
	nowF     func() time.Time
	newToken func() (string, error)
}

// NewManager returns a Manager. appURL is the public base URL used to build recovery links.
func NewManager(users UserRepo, mailer mail.Sender, hasher *security.Hasher, appURL string) *Manager {
	return &Manager{
		users:    users,
		mailer:   mailer,
		hasher:   hasher,
		appURL:   strings.TrimRight(appURL, "/"),
		nowF:     time.Now,
		newToken: security.GenerateRecoveryToken,
	}
}

// VerifyCredentials checks email and password and returns the snapshot to store in the session.
// An unknown email and a wrong password both return ErrInvalidCredentials.
func (m *Manager) VerifyCredentials(ctx context.Context, email, password string) (*sessiondomain.Snapshot, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	u, err := m.lookup(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrInvalidCredentials
	}
	if err := m.hasher.Compare(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := m.users.UpdateLastLogin(ctx, u.ID, m.nowF().UTC()); err != nil {
		log.Printf("auth: last login for user %s: %v", u.ID, err)
	}
	return &sessiondomain.Snapshot{
		UserID:  u.ID,
		Email:   u.Email,
		Name:    u.Name,
		IsAdmin: u.IsAdmin,
	}, nil
}

// RequestPasswordRecovery issues a fresh token for the account and mails the reset link. It returns
// ErrAccountNotFound when no account matches; callers must present that exactly like success.
// A mail failure returns *DeliveryError and leaves the new token stored.
func (m *Manager) RequestPasswordRecovery(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrAccountNotFound
	}
	u, err := m.lookup(ctx, email)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrAccountNotFound
	}

	token, err := m.newToken()
	if err != nil {
		return fmt.Errorf("generate recovery token: %w", err)
	}
	expiresAt := m.nowF().UTC().Add(RecoveryTokenTTL)
	if err := m.users.SetRecoveryToken(ctx, u.ID, security.HashRecoveryToken(token), expiresAt); err != nil {
		return err
	}

	msg, err := mail.PasswordReset(u.Email, u.Name, m.resetLink(token), RecoveryTokenTTL)
	if err != nil {
		return &DeliveryError{Code: "ETEMPLATE", Err: err}
	}
	if err := m.mailer.Send(ctx, msg); err != nil {
		return &DeliveryError{Code: mail.ErrorCode(err), Err: err}
	}
	return nil
}

// VerifyRecoveryToken returns the account the token belongs to if the token is outstanding and
// unexpired. Expiry is strict: a token whose expiry equals now is expired.
func (m *Manager) VerifyRecoveryToken(ctx context.Context, token string) (*userdomain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}
	hash := security.HashRecoveryToken(token)
	u, err := m.users.GetByRecoveryTokenHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrTokenNotFound
	}
	if u.ResetUsed || !security.RecoveryTokenHashEqual(token, u.ResetTokenHash) {
		// matched the consumed slot
		return nil, ErrTokenAlreadyUsed
	}
	if u.RecoveryExpired(m.nowF()) {
		return nil, ErrTokenExpired
	}
	return u, nil
}

// CommitNewPassword re-validates token, checks the password length and stores the new hash while
// consuming the token in one guarded write. A replay returns ErrTokenAlreadyUsed.
func (m *Manager) CommitNewPassword(ctx context.Context, token, password string) error {
	u, err := m.VerifyRecoveryToken(ctx, token)
	if err != nil {
		return err
	}
	if err := CheckPasswordLength(password); err != nil {
		return err
	}
	hash, err := m.hasher.Hash([]byte(password))
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	ok, err := m.users.CommitPassword(ctx, u.ID, security.HashRecoveryToken(strings.TrimSpace(token)), hash, m.nowF().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return ErrTokenAlreadyUsed
	}
	return nil
}

// CheckPasswordLength requires at least MinPasswordLength characters and at most MaxPasswordBytes bytes.
func CheckPasswordLength(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordBytes {
		return ErrPasswordTooLong
	}
	return nil
}

// CheckConfirmation returns ErrPasswordMismatch when the confirmation differs from the password.
// Handlers call it before CommitNewPassword.
func CheckConfirmation(password, confirm string) error {
	if password != confirm {
		return ErrPasswordMismatch
	}
	return nil
}

func (m *Manager) resetLink(token string) string {
	return m.appURL + "/reset-password?token=" + url.QueryEscape(token)
}

// lookup returns the account for email ignoring case. When several rows differ only by case, the
// row equal under case folding to the input wins, else the first.
func (m *Manager) lookup(ctx context.Context, email string) (*userdomain.User, error) {
	users, err := m.users.FindByEmailFold(ctx, email)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	for _, u := range users {
		if u.Email == email {
			return u, nil
		}
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return users[0], nil
}
