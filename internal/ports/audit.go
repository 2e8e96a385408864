package ports

import (
	"context"

	"route-dispatch-service/internal/domain"
)

// Port: the append-only audit log.
type AuditLog interface {
	Append(ctx context.Context, event *domain.AuditEvent) error
}

// Port: best-effort event publication for external consumers
// (the dashboard reads audit events off a messaging subject).
type EventPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}
