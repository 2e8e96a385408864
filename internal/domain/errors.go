package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrRouteNotFound       = errors.New("route not found")
	ErrShopNotFound        = errors.New("shop not found")
	ErrWorkerNotFound      = errors.New("worker not found")
	ErrVehicleTypeNotFound = errors.New("vehicle type not found")

	// ErrWorkerNotEligible covers both wrong role and inactive status.
	ErrWorkerNotEligible = errors.New("worker is not an active delivery worker")
	ErrWorkerAtCapacity  = errors.New("worker has reached the active route limit")
	ErrShopReferenced    = errors.New("shop is referenced by a route stop")
	ErrActorNotAllowed   = errors.New("actor is not allowed to perform this operation")

	ErrInsufficientWaypoints = errors.New("at least two waypoints are required")
	ErrNoRouteFound          = errors.New("no drivable route between waypoints")
	ErrProviderUnavailable   = errors.New("routing provider unavailable")
	ErrAllocationExhausted   = errors.New("identifier allocation retry budget exhausted")
)

// ValidationError reports a malformed or missing request field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InvalidTransitionError reports an illegal status change together with
// the set of statuses the route could legally move to.
type InvalidTransitionError struct {
	From    Status
	To      Status
	Allowed []Status
}

func (e *InvalidTransitionError) Error() string {
	allowed := make([]string, 0, len(e.Allowed))
	for _, s := range e.Allowed {
		allowed = append(allowed, string(s))
	}
	return fmt.Sprintf(
		"cannot transition route from %q to %q (allowed: %s)",
		e.From, e.To, strings.Join(allowed, ", "),
	)
}

// RouteNotPendingError is the definitive rejection observed by the loser
// of a claim race or by an assignment against a non-pending route.
type RouteNotPendingError struct {
	Current Status
}

func (e *RouteNotPendingError) Error() string {
	return fmt.Sprintf("route is not pending (current status: %q)", e.Current)
}

// RouteNotDeletableError rejects deletion of routes that are part of
// delivery history.
type RouteNotDeletableError struct {
	Current Status
}

func (e *RouteNotDeletableError) Error() string {
	return fmt.Sprintf("route in status %q cannot be deleted", e.Current)
}
