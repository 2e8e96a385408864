package memory

import (
	"context"
	"sync"
	"time"

	"route-dispatch-service/internal/domain"
)

// In-memory ShopRepository. Reference checks are delegated to an
// optional RouteStore so deletion honors the immutability rule.
type ShopStore struct {
	mu     sync.Mutex
	shops  map[string]*domain.Shop
	Routes *RouteStore
}

func NewShopStore() *ShopStore {
	return &ShopStore{shops: make(map[string]*domain.Shop)}
}

func (s *ShopStore) Create(ctx context.Context, shop *domain.Shop) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *shop
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	s.shops[cp.ID] = &cp
	return nil
}

func (s *ShopStore) Get(ctx context.Context, id string) (*domain.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shop, ok := s.shops[id]
	if !ok {
		return nil, domain.ErrShopNotFound
	}
	cp := *shop
	return &cp, nil
}

func (s *ShopStore) GetMany(ctx context.Context, ids []string) (map[string]*domain.Shop, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*domain.Shop, len(ids))
	for _, id := range ids {
		if shop, ok := s.shops[id]; ok {
			cp := *shop
			out[id] = &cp
		}
	}
	return out, nil
}

func (s *ShopStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shops[id]; !ok {
		return domain.ErrShopNotFound
	}
	if s.Routes != nil && s.Routes.References(id) {
		return domain.ErrShopReferenced
	}

	delete(s.shops, id)
	return nil
}

// In-memory WorkerRepository.
type WorkerStore struct {
	mu      sync.Mutex
	workers map[string]*domain.Worker
}

func NewWorkerStore(workers ...*domain.Worker) *WorkerStore {
	s := &WorkerStore{workers: make(map[string]*domain.Worker, len(workers))}
	for _, w := range workers {
		cp := *w
		s.workers[cp.ID] = &cp
	}
	return s
}

func (s *WorkerStore) Get(ctx context.Context, id string) (*domain.Worker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	worker, ok := s.workers[id]
	if !ok {
		return nil, domain.ErrWorkerNotFound
	}
	cp := *worker
	return &cp, nil
}

// In-memory VehicleTypeRepository.
type VehicleTypeStore struct {
	mu    sync.Mutex
	types map[string]*domain.VehicleType
}

func NewVehicleTypeStore(types ...*domain.VehicleType) *VehicleTypeStore {
	s := &VehicleTypeStore{types: make(map[string]*domain.VehicleType, len(types))}
	for _, v := range types {
		cp := *v
		s.types[cp.Code] = &cp
	}
	return s
}

func (s *VehicleTypeStore) Get(ctx context.Context, code string) (*domain.VehicleType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vehicle, ok := s.types[code]
	if !ok {
		return nil, domain.ErrVehicleTypeNotFound
	}
	cp := *vehicle
	return &cp, nil
}

// In-memory append-only AuditLog.
type AuditStore struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func NewAuditStore() *AuditStore {
	return &AuditStore{}
}

func (s *AuditStore) Append(ctx context.Context, event *domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, *event)
	return nil
}

func (s *AuditStore) Events() []domain.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.AuditEvent(nil), s.events...)
}

// In-memory SequenceStore with atomic reservation.
type SequenceStore struct {
	mu       sync.Mutex
	reserved map[string]string // id -> prefix
}

func NewSequenceStore() *SequenceStore {
	return &SequenceStore{reserved: make(map[string]string)}
}

func (s *SequenceStore) MaxSequence(ctx context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	max := 0
	for id, p := range s.reserved {
		if p != prefix {
			continue
		}
		n := 0
		for _, r := range id[len(prefix):] {
			if r < '0' || r > '9' {
				n = 0
				break
			}
			n = n*10 + int(r-'0')
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

func (s *SequenceStore) Reserve(ctx context.Context, prefix, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.reserved[id]; taken {
		return false, nil
	}
	s.reserved[id] = prefix
	return true, nil
}
