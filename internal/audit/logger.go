package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"lighthouse-restaurant/backend/internal/audit/domain"
	auditrepo "lighthouse-restaurant/backend/internal/audit/repository"
)

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// Emitter forwards audit entries to an external sink (e.g. OTel logs).
type Emitter interface {
	Emit(ctx context.Context, entry *domain.AuditLog)
}

// AuditLogger writes a single audit event. LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, action, resource, metadata string)
}

// Logger implements AuditLogger using the audit repository, an optional emitter and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	emitter     Emitter
	ipExtractor IPExtractor
	nowF        func() time.Time
}

// NewLogger returns an AuditLogger that persists to repo and forwards to emitter.
// repo, emitter and ipExtractor may each be nil; a nil ipExtractor records IP as "unknown".
func NewLogger(repo auditrepo.Repository, emitter Emitter, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, emitter: emitter, ipExtractor: ipExtractor, nowF: time.Now}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, action, resource, metadata string) {
	if l == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		Action:    action,
		Resource:  resource,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: l.nowF().UTC(),
	}
	if l.emitter != nil {
		l.emitter.Emit(ctx, entry)
	}
	if l.repo == nil {
		return
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s/%s: %v", action, resource, err)
	}
}
