package otel

import (
	"context"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"lighthouse-restaurant/backend/internal/audit/domain"
)

const auditScope = "lighthouse.audit"

// recordEmitter is the subset of otellog.Logger used here, so tests can capture records.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// AuditEmitter emits audit entries as OTel log records.
type AuditEmitter struct {
	logger recordEmitter
}

// NewAuditEmitter returns an emitter backed by provider. A nil provider yields a nil emitter, which
// audit.NewLogger accepts.
func NewAuditEmitter(provider *sdklog.LoggerProvider) *AuditEmitter {
	if provider == nil {
		return nil
	}
	return &AuditEmitter{logger: provider.Logger(auditScope)}
}

// Emit converts entry to a log record. Best-effort and non-blocking; the batch processor does the export.
func (e *AuditEmitter) Emit(ctx context.Context, entry *domain.AuditLog) {
	if e == nil || entry == nil {
		return
	}
	rec := otellog.Record{}
	rec.SetTimestamp(entry.CreatedAt)
	rec.SetSeverity(otellog.SeverityInfo)
	rec.SetBody(otellog.StringValue(entry.Action + " " + entry.Resource))
	rec.AddAttributes(
		otellog.String("audit.id", entry.ID),
		otellog.String("audit.action", entry.Action),
		otellog.String("audit.resource", entry.Resource),
		otellog.String("client.ip", entry.IP),
	)
	if entry.UserID != "" {
		rec.AddAttributes(otellog.String("user.id", entry.UserID))
	}
	if entry.Metadata != "" {
		rec.AddAttributes(otellog.String("audit.metadata", entry.Metadata))
	}
	e.logger.Emit(ctx, rec)
}
