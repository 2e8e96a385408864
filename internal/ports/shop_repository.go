package ports

import (
	"context"

	"route-dispatch-service/internal/domain"
)

// Port: a boundary for Shop reference data.
type ShopRepository interface {
	Create(ctx context.Context, shop *domain.Shop) error

	// Get returns one shop by code, or domain.ErrShopNotFound.
	Get(ctx context.Context, id string) (*domain.Shop, error)

	// GetMany returns the shops for the given codes, keyed by code.
	// Missing codes are simply absent from the result.
	GetMany(ctx context.Context, ids []string) (map[string]*domain.Shop, error)

	// Delete removes a shop unless any route stop references it.
	// Failure modes: domain.ErrShopNotFound, domain.ErrShopReferenced.
	Delete(ctx context.Context, id string) error
}

// Port: read-only worker lookups.
type WorkerRepository interface {
	// Get returns one worker by id, or domain.ErrWorkerNotFound.
	Get(ctx context.Context, id string) (*domain.Worker, error)
}

// Port: read-only vehicle-type lookups.
type VehicleTypeRepository interface {
	// Get returns one vehicle type by code, or domain.ErrVehicleTypeNotFound.
	Get(ctx context.Context, code string) (*domain.VehicleType, error)
}
