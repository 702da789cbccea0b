// Package rbac holds the access gate for the back office. Decisions are pure functions of the
// request's session; Gate turns them into gin middleware.
package rbac

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"lighthouse-restaurant/backend/internal/server/interceptors"
	"lighthouse-restaurant/backend/internal/server/web"
	"lighthouse-restaurant/backend/internal/session/domain"
)

// Redirect targets.
const (
	LoginPath = "/admin/login"
	HomePath  = "/"
	AdminPath = "/admin"
)

// Notices queued on denial.
const (
	NoticeSignIn       = "Por favor inicia sesión para acceder a esta página"
	NoticeNoPermission = "No tienes permiso para acceder a esta página"
)

// Decision is the outcome of a gate check. A denied decision names where to send the visitor and,
// optionally, an error notice to show there.
type Decision struct {
	Admit    bool
	Redirect string
	Notice   string
}

// Check decides admission from the request's session, which may be nil.
type Check func(s *domain.Session) Decision

var admit = Decision{Admit: true}

// RequireSession admits any logged-in visitor and sends everyone else to the login page.
func RequireSession(s *domain.Session) Decision {
	if s.Authenticated() {
		return admit
	}
	return Decision{Redirect: LoginPath, Notice: NoticeSignIn}
}

// RequireAdmin admits only sessions whose snapshot carries the admin flag. Anonymous visitors go to the
// login page; logged-in non-admins go home.
func RequireAdmin(s *domain.Session) Decision {
	if s.Authenticated() && s.Snapshot.IsAdmin {
		return admit
	}
	if s.Authenticated() {
		return Decision{Redirect: HomePath, Notice: NoticeNoPermission}
	}
	return Decision{Redirect: LoginPath, Notice: NoticeNoPermission}
}

// RejectIfAuthenticated keeps logged-in visitors away from the login and recovery pages.
func RejectIfAuthenticated(s *domain.Session) Decision {
	if s.Authenticated() {
		return Decision{Redirect: AdminPath}
	}
	return admit
}

// Evaluate applies check to the session stored in ctx.
func Evaluate(ctx context.Context, check Check) Decision {
	return check(interceptors.GetSession(ctx))
}

// Gate returns middleware that aborts with 302 Found when check denies the request.
func Gate(check Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := Evaluate(c.Request.Context(), check)
		if d.Admit {
			c.Next()
			return
		}
		if d.Notice != "" {
			web.AddFlash(c, web.FlashError, d.Notice)
		}
		c.Redirect(http.StatusFound, d.Redirect)
		c.Abort()
	}
}
