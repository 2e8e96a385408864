package ports

import (
	"context"

	"route-dispatch-service/internal/domain"
)

// Driving distance and travel time for one leg between two stops.
type LegResult struct {
	DistanceKm      float64
	DurationSeconds int
}

// Contract for retrieving the driving distance of a single leg from an
// external routing provider.
type LegProvider interface {
	// Leg returns the driving distance and duration between two
	// waypoints. Failure modes: domain.ErrNoRouteFound when the provider
	// cannot route the pair, domain.ErrProviderUnavailable when the
	// provider is unreachable or rate-limited.
	Leg(ctx context.Context, from, to domain.Coordinates) (LegResult, error)
}

// Contract for resolving a street address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}
