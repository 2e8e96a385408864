package ports

import (
	"context"
	"time"

	"route-dispatch-service/internal/domain"
)

// Port: a boundary for persisting and mutating Route entities.
//
// All mutating operations are conditional on the route's current status
// so that concurrent requests against the same route serialize through
// the store rather than racing on stale reads.
type RouteRepository interface {
	// Create persists a new route together with its ordered stops.
	Create(ctx context.Context, route *domain.Route) error

	// Get returns one route by id, or domain.ErrRouteNotFound.
	Get(ctx context.Context, id string) (*domain.Route, error)

	// List returns all routes, newest first.
	List(ctx context.Context) ([]*domain.Route, error)

	// UpdateStatus applies target iff the stored status still equals
	// expected (compare-and-swap). It returns false, nil when the route
	// exists but the precondition no longer holds. A transition into
	// pending or cancelled clears assigned_worker and assigned_at.
	UpdateStatus(ctx context.Context, id string, expected, target domain.Status) (bool, error)

	// AssignWorker atomically moves a pending route to assigned for the
	// given worker, re-validating inside the same conditional update that
	// the worker holds fewer than maxActive active routes. Failure modes:
	// domain.ErrRouteNotFound, *domain.RouteNotPendingError,
	// domain.ErrWorkerAtCapacity.
	AssignWorker(ctx context.Context, id, workerID string, at time.Time, maxActive int) error

	// Delete removes a route only while its status allows deletion.
	// Failure modes: domain.ErrRouteNotFound, *domain.RouteNotDeletableError.
	Delete(ctx context.Context, id string) error
}
