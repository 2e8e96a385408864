package services

import (
	"context"
	"fmt"
	"time"

	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/ports"
)

// DefaultMaxActiveRoutes caps how many assigned or delivering routes a
// single worker may hold at once.
const DefaultMaxActiveRoutes = 5

// AssignmentCoordinator hands pending routes to delivery workers, either
// by administrator choice or by a worker's self-service claim.
//
// Both paths resolve to one atomic, conditional update in the route
// repository: the pending check and the capacity cap are validated at
// the moment of the mutation, so of N concurrent claimants exactly one
// wins and the rest observe a definitive not-pending rejection.
type AssignmentCoordinator struct {
	Routes    ports.RouteRepository
	Workers   ports.WorkerRepository
	Audit     *AuditRecorder
	MaxActive int
}

func NewAssignmentCoordinator(
	routes ports.RouteRepository,
	workers ports.WorkerRepository,
	audit *AuditRecorder,
	maxActive int,
) *AssignmentCoordinator {
	if maxActive <= 0 {
		maxActive = DefaultMaxActiveRoutes
	}
	return &AssignmentCoordinator{
		Routes:    routes,
		Workers:   workers,
		Audit:     audit,
		MaxActive: maxActive,
	}
}

// Assign gives a pending route to a specific worker (administrator-driven).
func (s *AssignmentCoordinator) Assign(
	ctx context.Context,
	routeID, workerID string,
	actor domain.Actor,
) (*domain.Route, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrActorNotAllowed
	}

	route, err := s.acquire(ctx, routeID, workerID)
	if err != nil {
		return nil, fmt.Errorf("assign route %s: %w", routeID, err)
	}

	s.Audit.Record(ctx, domain.AuditEvent{
		Actor:       actor.ID,
		Action:      domain.AuditRouteAssigned,
		TargetType:  "route",
		TargetID:    route.ID,
		Description: fmt.Sprintf("route %s assigned to worker %s", route.Code, workerID),
		Payload: map[string]any{
			"route_code": route.Code,
			"worker_id":  workerID,
		},
	})

	return route, nil
}

// Claim lets a delivery worker take a pending route for themselves.
func (s *AssignmentCoordinator) Claim(
	ctx context.Context,
	routeID string,
	actor domain.Actor,
) (*domain.Route, error) {
	if actor.Role != domain.RoleDeliveryStaff {
		return nil, domain.ErrActorNotAllowed
	}

	route, err := s.acquire(ctx, routeID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("claim route %s: %w", routeID, err)
	}

	s.Audit.Record(ctx, domain.AuditEvent{
		Actor:       actor.ID,
		Action:      domain.AuditRouteClaimed,
		TargetType:  "route",
		TargetID:    route.ID,
		Description: fmt.Sprintf("route %s claimed by worker %s", route.Code, actor.ID),
		Payload: map[string]any{
			"route_code": route.Code,
			"worker_id":  actor.ID,
		},
	})

	return route, nil
}

// acquire validates worker eligibility and performs the atomic
// pending→assigned update shared by both entry points.
func (s *AssignmentCoordinator) acquire(
	ctx context.Context,
	routeID, workerID string,
) (*domain.Route, error) {
	worker, err := s.Workers.Get(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if !worker.Eligible() {
		return nil, domain.ErrWorkerNotEligible
	}

	at := time.Now().UTC()
	if err := s.Routes.AssignWorker(ctx, routeID, workerID, at, s.MaxActive); err != nil {
		return nil, err
	}

	route, err := s.Routes.Get(ctx, routeID)
	if err != nil {
		return nil, err
	}

	return route, nil
}
