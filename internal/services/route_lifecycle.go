package services

import (
	"context"
	"fmt"

	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/ports"
)

// RouteLifecycle is the sole authority for validating and applying
// route status changes, and for the status-guarded deletion rule.
type RouteLifecycle struct {
	Routes ports.RouteRepository
	Audit  *AuditRecorder
}

func NewRouteLifecycle(routes ports.RouteRepository, audit *AuditRecorder) *RouteLifecycle {
	return &RouteLifecycle{Routes: routes, Audit: audit}
}

// Transition moves a route to target on behalf of actor.
//
// Administrators may take any edge of the transition table; a delivery
// worker may only move a route assigned to them along the worker edges
// (assigned→delivering→{delivered,failed}). The persisted update is
// conditional on the status observed here, so a concurrent change makes
// this request fail with the fresh status rather than silently
// overwriting it. A worker is only attached while a route is assigned,
// delivering or past those states: failed→pending clears the assignment
// fields and returns the route to the claimable pool, and cancellation
// detaches the worker too. Stops, vehicle type and computed distances
// are preserved either way.
func (s *RouteLifecycle) Transition(
	ctx context.Context,
	routeID string,
	target domain.Status,
	actor domain.Actor,
) (*domain.Route, error) {
	if !target.Valid() {
		return nil, &domain.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("unknown status %q", target),
		}
	}

	route, err := s.Routes.Get(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("transition route %s: %w", routeID, err)
	}

	if !actor.IsAdmin() {
		if actor.Role != domain.RoleDeliveryStaff || route.AssignedWorker != actor.ID {
			return nil, domain.ErrActorNotAllowed
		}
	}

	if !domain.CanTransition(route.Status, target) {
		return nil, &domain.InvalidTransitionError{
			From:    route.Status,
			To:      target,
			Allowed: domain.AllowedNext(route.Status),
		}
	}

	if !actor.IsAdmin() && !domain.WorkerMayTransition(route.Status, target) {
		return nil, domain.ErrActorNotAllowed
	}

	ok, err := s.Routes.UpdateStatus(ctx, routeID, route.Status, target)
	if err != nil {
		return nil, fmt.Errorf("transition route %s: %w", routeID, err)
	}
	if !ok {
		// Lost a race: report against the status that won.
		fresh, err := s.Routes.Get(ctx, routeID)
		if err != nil {
			return nil, fmt.Errorf("transition route %s: %w", routeID, err)
		}
		return nil, &domain.InvalidTransitionError{
			From:    fresh.Status,
			To:      target,
			Allowed: domain.AllowedNext(fresh.Status),
		}
	}

	old := route.Status
	route.Status = target
	if target == domain.StatusPending || target == domain.StatusCancelled {
		route.AssignedWorker = ""
		route.AssignedAt = nil
	}

	s.Audit.Record(ctx, domain.AuditEvent{
		Actor:       actor.ID,
		Action:      domain.AuditRouteStatusChanged,
		TargetType:  "route",
		TargetID:    route.ID,
		Description: fmt.Sprintf("route %s moved from %s to %s", route.Code, old, target),
		Payload: map[string]any{
			"route_code": route.Code,
			"old_status": string(old),
			"new_status": string(target),
		},
	})

	return route, nil
}

// Delete removes a route while it is still deletable
// (pending, cancelled or failed); delivery history is never deleted.
func (s *RouteLifecycle) Delete(ctx context.Context, routeID string, actor domain.Actor) error {
	if !actor.IsAdmin() {
		return domain.ErrActorNotAllowed
	}

	route, err := s.Routes.Get(ctx, routeID)
	if err != nil {
		return fmt.Errorf("delete route %s: %w", routeID, err)
	}

	if err := s.Routes.Delete(ctx, routeID); err != nil {
		return fmt.Errorf("delete route %s: %w", routeID, err)
	}

	s.Audit.Record(ctx, domain.AuditEvent{
		Actor:       actor.ID,
		Action:      domain.AuditRouteDeleted,
		TargetType:  "route",
		TargetID:    route.ID,
		Description: fmt.Sprintf("route %s deleted", route.Code),
		Payload:     map[string]any{"route_code": route.Code, "status": string(route.Status)},
	})

	return nil
}
