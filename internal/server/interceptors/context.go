package interceptors

import (
	"context"

	"lighthouse-restaurant/backend/internal/session/domain"
)

type contextKey struct{ name string }

var (
	sessionKey  = contextKey{"session"}
	clientIPKey = contextKey{"client_ip"}
)

// WithSession returns a context carrying the request's session. A nil session marks the request anonymous.
func WithSession(ctx context.Context, s *domain.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// GetSession returns the session from context, or nil if the request is anonymous.
func GetSession(ctx context.Context) *domain.Session {
	s, _ := ctx.Value(sessionKey).(*domain.Session)
	return s
}

// GetSnapshot returns the logged-in user's snapshot, or nil.
func GetSnapshot(ctx context.Context) *domain.Snapshot {
	if s := GetSession(ctx); s != nil {
		return s.Snapshot
	}
	return nil
}

// GetUserID returns the logged-in user's id and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	snap := GetSnapshot(ctx)
	if snap == nil || snap.UserID == "" {
		return "", false
	}
	return snap.UserID, true
}

// WithClientIP returns a context carrying the client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP returns the client IP from context, or "unknown". It satisfies audit.IPExtractor.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey).(string); ok && ip != "" {
		return ip
	}
	return "unknown"
}
