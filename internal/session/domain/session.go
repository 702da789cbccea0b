package domain

import "time"

// Snapshot is the identity captured at login. It is never refreshed while the session lives, so a
// change to the user's admin flag takes effect on the next login.
type Snapshot struct {
	UserID  string
	Email   string
	Name    string
	IsAdmin bool
}

// Session is a server-side login session keyed by an opaque id carried in the signed cookie.
type Session struct {
	ID        string
	Snapshot  *Snapshot // nil means anonymous
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session has expired at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Authenticated reports whether the session carries a user snapshot.
func (s *Session) Authenticated() bool {
	return s != nil && s.Snapshot != nil
}
