package domain

import (
	"errors"
	"strings"
	"time"
)

// User is a back office account. Accounts are provisioned out of band and never deleted by the app.
type User struct {
	ID    string
	Email string // stored as entered; looked up case-insensitively
	Name  string
	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string
	IsAdmin      bool
	LastLogin    *time.Time

	// ResetTokenHash is the SHA-256 of the outstanding recovery token, empty when none is outstanding.
	ResetTokenHash string
	ResetExpires   *time.Time
	ResetUsed      bool
	// ConsumedTokenHash is the hash of the last token used to set a password, kept so replays can be told apart
	// from unknown tokens.
	ConsumedTokenHash string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	u.Email = strings.TrimSpace(u.Email)
	if u.Email == "" {
		return errors.New("email is required")
	}
	if !strings.Contains(u.Email, "@") {
		return errors.New("email is invalid")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	return nil
}

// HasRecoveryToken reports whether a token was issued and not yet consumed.
func (u *User) HasRecoveryToken() bool {
	return u.ResetTokenHash != "" && !u.ResetUsed
}

// RecoveryExpired reports whether the outstanding token is expired at now. A token is valid only strictly
// before its expiry; a missing expiry counts as expired.
func (u *User) RecoveryExpired(now time.Time) bool {
	if u.ResetExpires == nil {
		return true
	}
	return !now.Before(*u.ResetExpires)
}
