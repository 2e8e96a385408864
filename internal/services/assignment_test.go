package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"route-dispatch-service/internal/adapters/memory"
	"route-dispatch-service/internal/domain"
)

func newCoordinator(routes *memory.RouteStore, workers ...*domain.Worker) *AssignmentCoordinator {
	return NewAssignmentCoordinator(routes, memory.NewWorkerStore(workers...), testRecorder(), DefaultMaxActiveRoutes)
}

func TestAdminAssignPendingRoute(t *testing.T) {
	routes := memory.NewRouteStore()
	seedRoute(routes, pendingRoute("r1", "RT000001"))
	coord := newCoordinator(routes, activeWorker("w1"))

	route, err := coord.Assign(context.Background(), "r1", "w1", admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if route.Status != domain.StatusAssigned {
		t.Fatalf("status = %s, want assigned", route.Status)
	}
	if route.AssignedWorker != "w1" {
		t.Fatalf("assigned worker = %q, want w1", route.AssignedWorker)
	}
	if route.AssignedAt == nil {
		t.Fatal("assigned_at not set")
	}
}

func TestAssignRejectsNonAdmin(t *testing.T) {
	routes := memory.NewRouteStore()
	seedRoute(routes, pendingRoute("r1", "RT000001"))
	coord := newCoordinator(routes, activeWorker("w1"))

	_, err := coord.Assign(context.Background(), "r1", "w1", staff("w1"))
	if !errors.Is(err, domain.ErrActorNotAllowed) {
		t.Fatalf("error = %v, want ErrActorNotAllowed", err)
	}
}

func TestAssignRejectsIneligibleWorkers(t *testing.T) {
	inactive := activeWorker("w1")
	inactive.Status = domain.WorkerInactive
	wrongRole := activeWorker("w2")
	wrongRole.Role = domain.RoleAdmin

	routes := memory.NewRouteStore()
	seedRoute(routes, pendingRoute("r1", "RT000001"))
	coord := newCoordinator(routes, inactive, wrongRole)

	if _, err := coord.Assign(context.Background(), "r1", "w1", admin); !errors.Is(err, domain.ErrWorkerNotEligible) {
		t.Fatalf("inactive worker: error = %v, want ErrWorkerNotEligible", err)
	}
	if _, err := coord.Assign(context.Background(), "r1", "w2", admin); !errors.Is(err, domain.ErrWorkerNotEligible) {
		t.Fatalf("wrong role: error = %v, want ErrWorkerNotEligible", err)
	}
	if _, err := coord.Assign(context.Background(), "r1", "missing", admin); !errors.Is(err, domain.ErrWorkerNotFound) {
		t.Fatalf("unknown worker: error = %v, want ErrWorkerNotFound", err)
	}
}

func TestAssignRejectsNonPendingRoute(t *testing.T) {
	route := pendingRoute("r1", "RT000001")
	route.Status = domain.StatusDelivering
	route.AssignedWorker = "w2"

	routes := memory.NewRouteStore()
	seedRoute(routes, route)
	coord := newCoordinator(routes, activeWorker("w1"))

	_, err := coord.Assign(context.Background(), "r1", "w1", admin)

	var notPending *domain.RouteNotPendingError
	if !errors.As(err, &notPending) {
		t.Fatalf("error = %v, want RouteNotPendingError", err)
	}
	if notPending.Current != domain.StatusDelivering {
		t.Fatalf("reported status = %s, want delivering", notPending.Current)
	}
}

func TestClaimRejectsAdmins(t *testing.T) {
	routes := memory.NewRouteStore()
	seedRoute(routes, pendingRoute("r1", "RT000001"))
	coord := newCoordinator(routes, activeWorker("w1"))

	if _, err := coord.Claim(context.Background(), "r1", admin); !errors.Is(err, domain.ErrActorNotAllowed) {
		t.Fatalf("error = %v, want ErrActorNotAllowed", err)
	}
}

func TestConcurrentClaimsExactlyOneWinner(t *testing.T) {
	const claimants = 8

	routes := memory.NewRouteStore()
	seedRoute(routes, pendingRoute("r1", "RT000001"))

	workers := make([]*domain.Worker, 0, claimants)
	for i := 0; i < claimants; i++ {
		workers = append(workers, activeWorker(fmt.Sprintf("w%d", i)))
	}
	coord := newCoordinator(routes, workers...)

	var wg sync.WaitGroup
	results := make(chan error, claimants)

	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(worker string) {
			defer wg.Done()
			_, err := coord.Claim(context.Background(), "r1", staff(worker))
			results <- err
		}(fmt.Sprintf("w%d", i))
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		var notPending *domain.RouteNotPendingError
		if !errors.As(err, &notPending) {
			t.Fatalf("loser got %v, want RouteNotPendingError", err)
		}
		losses++
	}

	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}
	if losses != claimants-1 {
		t.Fatalf("losers = %d, want %d", losses, claimants-1)
	}
}

func TestClaimCapacityBoundary(t *testing.T) {
	routes := memory.NewRouteStore()
	coord := newCoordinator(routes, activeWorker("w1"))

	// MaxActive-1 claims succeed, the MaxActive-th succeeds too (boundary),
	// and one more is rejected.
	for i := 0; i < coord.MaxActive; i++ {
		id := fmt.Sprintf("r%d", i)
		seedRoute(routes, pendingRoute(id, fmt.Sprintf("RT00000%d", i+1)))
		if _, err := coord.Claim(context.Background(), id, staff("w1")); err != nil {
			t.Fatalf("claim %d of %d failed: %v", i+1, coord.MaxActive, err)
		}
	}

	seedRoute(routes, pendingRoute("overflow", "RT000099"))
	_, err := coord.Claim(context.Background(), "overflow", staff("w1"))
	if !errors.Is(err, domain.ErrWorkerAtCapacity) {
		t.Fatalf("error = %v, want ErrWorkerAtCapacity", err)
	}
}

func TestConcurrentClaimsCannotExceedCapacity(t *testing.T) {
	const attempts = 10

	routes := memory.NewRouteStore()
	coord := newCoordinator(routes, activeWorker("w1"))

	for i := 0; i < attempts; i++ {
		seedRoute(routes, pendingRoute(fmt.Sprintf("r%d", i), fmt.Sprintf("RT0000%02d", i+1)))
	}

	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := coord.Claim(context.Background(), id, staff("w1"))
			results <- err
		}(fmt.Sprintf("r%d", i))
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else if !errors.Is(err, domain.ErrWorkerAtCapacity) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if wins != coord.MaxActive {
		t.Fatalf("worker won %d claims, capacity is %d", wins, coord.MaxActive)
	}
}
