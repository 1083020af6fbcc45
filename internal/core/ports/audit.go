package ports

import (
	"context"
	"time"

	"github.com/jobzen/identity-service/internal/core/domain"
)

// AuditEventInput is the DTO handed to the audit pipeline by the services.
type AuditEventInput struct {
	Type      string
	UserID    string
	Email     string
	Provider  string
	Timestamp time.Time
}

// AuditSink accepts events for asynchronous recording. Implementations must
// not block the caller; recording failures never fail the originating
// request.
type AuditSink interface {
	Enqueue(event AuditEventInput)
}

// AuditService persists audit events.
type AuditService interface {
	Record(ctx context.Context, event AuditEventInput) error
}

// AuditRepository handles audit trail persistence.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}
