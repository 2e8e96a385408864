package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"route-dispatch-service/internal/domain"
)

// Postgres-backed append-only audit log. Rows are only ever inserted;
// there is no update or delete path in this subsystem.
type SQLAuditLog struct{ DB *sql.DB }

func NewSQLAuditLog(db *sql.DB) *SQLAuditLog {
	return &SQLAuditLog{DB: db}
}

func (s *SQLAuditLog) Append(ctx context.Context, event *domain.AuditEvent) error {
	if s.DB == nil {
		return errors.New("audit log: db is nil")
	}

	var payload any
	if len(event.Payload) > 0 {
		b, err := json.Marshal(event.Payload)
		if err != nil {
			return fmt.Errorf("append audit event: marshal payload: %w", err)
		}
		payload = b
	}

	const q = `
	INSERT INTO audit_events (
		id, actor, action, target_type, target_id, description, payload, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	if _, err := s.DB.ExecContext(
		ctx, q,
		event.ID, event.Actor, event.Action, event.TargetType,
		event.TargetID, event.Description, payload, event.CreatedAt,
	); err != nil {
		return fmt.Errorf("append audit event %s: %w", event.Action, err)
	}

	return nil
}
