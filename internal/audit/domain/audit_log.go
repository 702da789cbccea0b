package domain

import "time"

// Actions recorded by the site.
const (
	ActionLoginSuccess      = "login_success"
	ActionLoginFailure      = "login_failure"
	ActionLogout            = "logout"
	ActionRecoveryRequested = "password_recovery_requested"
	ActionPasswordReset     = "password_reset"
	ActionCreate            = "create"
	ActionUpdate            = "update"
	ActionDelete            = "delete"
)

// AuditLog represents an audit event. UserID is empty for anonymous actors (e.g. a failed login).
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
