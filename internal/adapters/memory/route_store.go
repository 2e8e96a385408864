package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"route-dispatch-service/internal/domain"
)

// In-memory RouteRepository with the same conditional-update semantics
// as the SQL implementation. Used by tests and local development runs;
// every mutation is atomic under one mutex so claim races behave as
// they do against the real store.
type RouteStore struct {
	mu     sync.Mutex
	routes map[string]*domain.Route
}

func NewRouteStore() *RouteStore {
	return &RouteStore{routes: make(map[string]*domain.Route)}
}

func (s *RouteStore) Create(ctx context.Context, route *domain.Route) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := cloneRoute(route)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.routes[cp.ID] = cp
	return nil
}

func (s *RouteStore) Get(ctx context.Context, id string) (*domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	route, ok := s.routes[id]
	if !ok {
		return nil, domain.ErrRouteNotFound
	}
	return cloneRoute(route), nil
}

func (s *RouteStore) List(ctx context.Context) ([]*domain.Route, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Route, 0, len(s.routes))
	for _, r := range s.routes {
		out = append(out, cloneRoute(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Code > out[j].Code
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *RouteStore) UpdateStatus(
	ctx context.Context,
	id string,
	expected, target domain.Status,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	route, ok := s.routes[id]
	if !ok {
		return false, domain.ErrRouteNotFound
	}
	if route.Status != expected {
		return false, nil
	}

	route.Status = target
	if target == domain.StatusPending || target == domain.StatusCancelled {
		route.AssignedWorker = ""
		route.AssignedAt = nil
	}
	return true, nil
}

func (s *RouteStore) AssignWorker(
	ctx context.Context,
	id, workerID string,
	at time.Time,
	maxActive int,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	route, ok := s.routes[id]
	if !ok {
		return domain.ErrRouteNotFound
	}
	if route.Status != domain.StatusPending {
		return &domain.RouteNotPendingError{Current: route.Status}
	}

	active := 0
	for _, r := range s.routes {
		if r.AssignedWorker == workerID && r.Status.Active() {
			active++
		}
	}
	if active >= maxActive {
		return domain.ErrWorkerAtCapacity
	}

	route.Status = domain.StatusAssigned
	route.AssignedWorker = workerID
	route.AssignedAt = &at
	return nil
}

func (s *RouteStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	route, ok := s.routes[id]
	if !ok {
		return domain.ErrRouteNotFound
	}
	if !route.Status.Deletable() {
		return &domain.RouteNotDeletableError{Current: route.Status}
	}

	delete(s.routes, id)
	return nil
}

// References reports whether any stored route stops at the given shop.
func (s *RouteStore) References(shopID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.routes {
		for _, stop := range r.Stops {
			if stop.ShopID == shopID {
				return true
			}
		}
	}
	return false
}

func cloneRoute(r *domain.Route) *domain.Route {
	cp := *r
	cp.Stops = append([]domain.RouteStop(nil), r.Stops...)
	cp.LegDistancesKm = append([]float64(nil), r.LegDistancesKm...)
	if r.AssignedAt != nil {
		at := *r.AssignedAt
		cp.AssignedAt = &at
	}
	return &cp
}
