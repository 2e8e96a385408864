package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/ports"
)

// AuditSubject is the messaging subject audit events are published on
// for the dashboard collaborator.
const AuditSubject = "audit.events"

// AuditRecorder appends lifecycle events to the audit log and publishes
// them best-effort. A failed audit write must never fail or roll back
// the primary operation, so Record returns nothing: failures are logged
// locally and left to operational monitoring.
type AuditRecorder struct {
	Log       ports.AuditLog
	Publisher ports.EventPublisher
}

func NewAuditRecorder(auditLog ports.AuditLog, publisher ports.EventPublisher) *AuditRecorder {
	return &AuditRecorder{Log: auditLog, Publisher: publisher}
}

func (r *AuditRecorder) Record(ctx context.Context, event domain.AuditEvent) {
	if r == nil || r.Log == nil {
		return
	}

	event.ID = uuid.NewString()
	event.CreatedAt = time.Now().UTC()

	if err := r.Log.Append(ctx, &event); err != nil {
		log.Printf(
			"audit append failed: action=%s target=%s/%s err=%v",
			event.Action, event.TargetType, event.TargetID, err,
		)
	}

	if r.Publisher == nil {
		return
	}

	payload, err := json.Marshal(auditMessage{
		ID:          event.ID,
		Actor:       event.Actor,
		Action:      event.Action,
		TargetType:  event.TargetType,
		TargetID:    event.TargetID,
		Description: event.Description,
		Payload:     event.Payload,
		CreatedAt:   event.CreatedAt,
	})
	if err != nil {
		log.Printf("audit publish marshal failed: action=%s err=%v", event.Action, err)
		return
	}

	if err := r.Publisher.Publish(ctx, AuditSubject, payload); err != nil {
		log.Printf("audit publish failed: action=%s err=%v", event.Action, err)
	}
}

type auditMessage struct {
	ID          string         `json:"id"`
	Actor       string         `json:"actor"`
	Action      string         `json:"action"`
	TargetType  string         `json:"target_type"`
	TargetID    string         `json:"target_id"`
	Description string         `json:"description"`
	Payload     map[string]any `json:"payload,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
