package domain

import "time"

// Audit actions recorded by the lifecycle services.
const (
	AuditRouteCreated       = "route.created"
	AuditRouteAssigned      = "route.assigned"
	AuditRouteClaimed       = "route.claimed"
	AuditRouteStatusChanged = "route.status_changed"
	AuditRouteDeleted       = "route.deleted"
	AuditShopCreated        = "shop.created"
	AuditShopDeleted        = "shop.deleted"
)

// Immutable record of a state-changing operation. Events are appended on
// every lifecycle change and consumed by the dashboard collaborator;
// they are never mutated or deleted here.
type AuditEvent struct {
	ID          string
	Actor       string
	Action      string
	TargetType  string
	TargetID    string
	Description string
	Payload     map[string]any
	CreatedAt   time.Time
}
