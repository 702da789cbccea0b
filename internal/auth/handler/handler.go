// Package handler serves the login, logout and password recovery pages.
package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"lighthouse-restaurant/backend/internal/audit"
	auditdomain "lighthouse-restaurant/backend/internal/audit/domain"
	authservice "lighthouse-restaurant/backend/internal/auth/service"
	"lighthouse-restaurant/backend/internal/platform/rbac"
	"lighthouse-restaurant/backend/internal/server/interceptors"
	"lighthouse-restaurant/backend/internal/server/web"
	sessiondomain "lighthouse-restaurant/backend/internal/session/domain"
	userdomain "lighthouse-restaurant/backend/internal/user/domain"
)

// Paths served by this handler.
const (
	ForgotPasswordPath = "/auth/forgot-password"
	ResetPasswordPath  = "/auth/reset-password"
)

// Notices shown by the auth pages.
const (
	msgMissingCredentials = "Por favor ingresa tu correo y contraseña"
	msgInvalidCredentials = "Credenciales inválidas"
	msgNotAdmin           = "No tienes permisos para acceder al panel de administración"
	msgLoginFailed        = "Error al iniciar sesión"
	msgMissingEmail       = "Por favor ingresa tu correo electrónico"
	msgRecoverySent       = "Si el correo existe en nuestro sistema, recibirás un enlace para restablecer tu contraseña."
	msgDeliveryFailed     = "No se pudo enviar el correo de restablecimiento. Verifica el correo o inténtalo más tarde."
	msgRequestFailed      = "Ocurrió un error al procesar tu solicitud"
	msgInvalidLink        = "Enlace de restablecimiento inválido o expirado"
	msgMissingFields      = "Por favor completa todos los campos"
	msgMismatch           = "Las contraseñas no coinciden"
	msgTooShort           = "La contraseña debe tener al menos 8 caracteres"
	msgTooLong            = "La contraseña no puede superar los 72 bytes"
	msgPasswordUpdated    = "¡Tu contraseña ha sido actualizada correctamente! Ahora puedes iniciar sesión con tu nueva contraseña."
	msgUpdateFailed       = "Error al actualizar la contraseña"
)

// CredentialManager is the credential and recovery API the pages call.
type CredentialManager interface {
	VerifyCredentials(ctx context.Context, email, password string) (*sessiondomain.Snapshot, error)
	RequestPasswordRecovery(ctx context.Context, email string) error
	VerifyRecoveryToken(ctx context.Context, token string) (*userdomain.User, error)
	CommitNewPassword(ctx context.Context, token, password string) error
}

// Sessions starts and ends server-side sessions.
type Sessions interface {
	Start(ctx context.Context, snap *sessiondomain.Snapshot) (*sessiondomain.Session, string, error)
	End(ctx context.Context, cookieValue string) error
	TTL() time.Duration
}

// CookieOptions configures the session cookie.
type CookieOptions struct {
	Name   string
	Secure bool
}

// Handler serves the auth pages.
type Handler struct {
	manager  CredentialManager
	sessions Sessions
	audit    audit.AuditLogger
	cookie   CookieOptions
}

// NewHandler returns a Handler. auditLogger may be nil.
func NewHandler(manager CredentialManager, sessions Sessions, auditLogger audit.AuditLogger, cookie CookieOptions) *Handler {
	return &Handler{manager: manager, sessions: sessions, audit: auditLogger, cookie: cookie}
}

// Register mounts the auth routes on r.
func (h *Handler) Register(r gin.IRouter) {
	guest := rbac.Gate(rbac.RejectIfAuthenticated)
	for _, p := range []string{rbac.LoginPath, "/auth/login"} {
		r.GET(p, guest, h.loginPage)
		r.POST(p, guest, h.login)
	}
	r.GET("/admin/logout", h.logout)
	r.GET("/auth/logout", h.logout)
	r.GET(ForgotPasswordPath, guest, h.forgotPage)
	r.POST(ForgotPasswordPath, guest, h.forgot)
	r.GET(ResetPasswordPath, guest, h.resetPage)
	r.POST(ResetPasswordPath, guest, h.reset)
}

func (h *Handler) loginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "auth/login", web.View(c, "Iniciar Sesión", gin.H{"Email": ""}))
}

func (h *Handler) renderLogin(c *gin.Context, status int, email, notice string) {
	web.AddFlash(c, web.FlashError, notice)
	c.HTML(status, "auth/login", web.View(c, "Iniciar Sesión", gin.H{"Email": email}))
}

func (h *Handler) login(c *gin.Context) {
	ctx := c.Request.Context()
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	if email == "" || password == "" {
		h.renderLogin(c, http.StatusBadRequest, email, msgMissingCredentials)
		return
	}

	snap, err := h.manager.VerifyCredentials(ctx, email, password)
	switch {
	case errors.Is(err, authservice.ErrInvalidCredentials):
		h.logEvent(ctx, "", auditdomain.ActionLoginFailure, "session", email)
		h.renderLogin(c, http.StatusUnauthorized, email, msgInvalidCredentials)
		return
	case err != nil:
		log.Printf("auth: login: %v", err)
		h.renderLogin(c, http.StatusInternalServerError, email, msgLoginFailed)
		return
	}
	if !snap.IsAdmin {
		h.logEvent(ctx, snap.UserID, auditdomain.ActionLoginFailure, "session", "not admin")
		h.renderLogin(c, http.StatusForbidden, email, msgNotAdmin)
		return
	}

	sess, value, err := h.sessions.Start(ctx, snap)
	if err != nil {
		log.Printf("auth: start session: %v", err)
		h.renderLogin(c, http.StatusInternalServerError, email, msgLoginFailed)
		return
	}
	h.setCookie(c, value, int(h.sessions.TTL()/time.Second))
	h.logEvent(ctx, snap.UserID, auditdomain.ActionLoginSuccess, "session", sess.ID)
	c.Redirect(http.StatusFound, rbac.AdminPath)
}

func (h *Handler) logout(c *gin.Context) {
	ctx := c.Request.Context()
	if value, err := c.Cookie(h.cookie.Name); err == nil && value != "" {
		if err := h.sessions.End(ctx, value); err != nil {
			log.Printf("auth: end session: %v", err)
		}
	}
	if userID, ok := interceptors.GetUserID(ctx); ok {
		h.logEvent(ctx, userID, auditdomain.ActionLogout, "session", "")
	}
	h.setCookie(c, "", -1)
	c.Redirect(http.StatusFound, rbac.LoginPath)
}

func (h *Handler) forgotPage(c *gin.Context) {
	c.HTML(http.StatusOK, "auth/forgot_password", web.View(c, "Recuperar Contraseña", nil))
}

func (h *Handler) forgot(c *gin.Context) {
	ctx := c.Request.Context()
	email := strings.TrimSpace(c.PostForm("email"))
	if email == "" {
		web.Redirect(c, web.FlashError, msgMissingEmail, ForgotPasswordPath)
		return
	}

	err := h.manager.RequestPasswordRecovery(ctx, email)
	var delivery *authservice.DeliveryError
	switch {
	case err == nil:
		h.logEvent(ctx, "", auditdomain.ActionRecoveryRequested, "user", email)
		web.Redirect(c, web.FlashSuccess, msgRecoverySent, ForgotPasswordPath)
	case errors.Is(err, authservice.ErrAccountNotFound):
		web.Redirect(c, web.FlashSuccess, msgRecoverySent, ForgotPasswordPath)
	case errors.As(err, &delivery):
		log.Printf("auth: recovery mail (code %s): %v", delivery.Code, delivery.Err)
		web.Redirect(c, web.FlashError, msgDeliveryFailed, ForgotPasswordPath)
	default:
		log.Printf("auth: recovery request: %v", err)
		web.Redirect(c, web.FlashError, msgRequestFailed, ForgotPasswordPath)
	}
}

func (h *Handler) resetPage(c *gin.Context) {
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		web.Redirect(c, web.FlashError, msgInvalidLink, ForgotPasswordPath)
		return
	}
	if _, err := h.manager.VerifyRecoveryToken(c.Request.Context(), token); err != nil {
		h.rejectToken(c, err)
		return
	}
	c.HTML(http.StatusOK, "auth/reset_password", web.View(c, "Restablecer Contraseña", gin.H{"Token": token}))
}

func (h *Handler) reset(c *gin.Context) {
	ctx := c.Request.Context()
	token := strings.TrimSpace(c.PostForm("token"))
	password := c.PostForm("password")
	confirm := c.PostForm("confirmPassword")
	if token == "" {
		web.Redirect(c, web.FlashError, msgInvalidLink, ForgotPasswordPath)
		return
	}
	back := ResetPasswordPath + "?token=" + url.QueryEscape(token)
	if password == "" || confirm == "" {
		web.Redirect(c, web.FlashError, msgMissingFields, back)
		return
	}
	if err := authservice.CheckConfirmation(password, confirm); err != nil {
		web.Redirect(c, web.FlashError, msgMismatch, back)
		return
	}

	u, err := h.manager.VerifyRecoveryToken(ctx, token)
	if err != nil {
		h.rejectToken(c, err)
		return
	}
	err = h.manager.CommitNewPassword(ctx, token, password)
	switch {
	case err == nil:
		h.logEvent(ctx, u.ID, auditdomain.ActionPasswordReset, "user", "")
		web.Redirect(c, web.FlashSuccess, msgPasswordUpdated, rbac.LoginPath)
	case errors.Is(err, authservice.ErrPasswordTooShort):
		web.Redirect(c, web.FlashError, msgTooShort, back)
	case errors.Is(err, authservice.ErrPasswordTooLong):
		web.Redirect(c, web.FlashError, msgTooLong, back)
	case isTokenError(err):
		h.rejectToken(c, err)
	default:
		log.Printf("auth: commit password: %v", err)
		web.Redirect(c, web.FlashError, msgUpdateFailed, back)
	}
}

// rejectToken sends the visitor back to the recovery request page with a notice naming the token problem.
func (h *Handler) rejectToken(c *gin.Context, err error) {
	if !isTokenError(err) {
		log.Printf("auth: verify recovery token: %v", err)
	}
	web.Redirect(c, web.FlashError, TokenMessage(err), ForgotPasswordPath)
}

// TokenMessage returns the notice for a recovery token failure.
func TokenMessage(err error) string {
	switch {
	case errors.Is(err, authservice.ErrEmptyToken):
		return "Token no proporcionado"
	case errors.Is(err, authservice.ErrTokenNotFound):
		return "Token inválido"
	case errors.Is(err, authservice.ErrTokenAlreadyUsed):
		return "El enlace ya fue utilizado"
	case errors.Is(err, authservice.ErrTokenExpired):
		return "El enlace ha expirado"
	default:
		return msgInvalidLink
	}
}

func isTokenError(err error) bool {
	return errors.Is(err, authservice.ErrEmptyToken) ||
		errors.Is(err, authservice.ErrTokenNotFound) ||
		errors.Is(err, authservice.ErrTokenAlreadyUsed) ||
		errors.Is(err, authservice.ErrTokenExpired)
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) logEvent(ctx context.Context, userID, action, resource, metadata string) {
	if h.audit != nil {
		h.audit.LogEvent(ctx, userID, action, resource, metadata)
	}
}
