package interceptors

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"lighthouse-restaurant/backend/internal/session/domain"
)

// SessionResolver resolves the session referenced by a cookie value.
type SessionResolver interface {
	Resolve(ctx context.Context, cookieValue string) (*domain.Session, error)
}

// SessionLoader resolves the session cookie once per request and stores the session (or nil) and the
// client IP in the request context. A store error is logged and the request continues as anonymous.
func SessionLoader(resolver SessionResolver, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := WithClientIP(c.Request.Context(), c.ClientIP())

		var sess *domain.Session
		if value, err := c.Cookie(cookieName); err == nil && value != "" {
			sess, err = resolver.Resolve(ctx, value)
			if err != nil {
				log.Printf("session: resolve: %v", err)
				sess = nil
			}
		}
		c.Request = c.Request.WithContext(WithSession(ctx, sess))
		c.Next()
	}
}
