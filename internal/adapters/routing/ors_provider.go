package routing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"route-dispatch-service/internal/adapters/cache"
	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/platform/obs"
	"route-dispatch-service/internal/ports"
)

// ORSRoutingProvider implements LegProvider and Geocoder using
// OpenRouteService.
//
// It coordinates:
//   - Persistent leg-distance caching
//   - External API calls with retry/backoff
//   - Mapping provider failures onto the domain error taxonomy
//
// The provider is safe for concurrent use.
type ORSRoutingProvider struct {
	session  *http.Client
	apiKey   string
	baseURL  string
	profile  string
	country  string
	legCache *cache.SQLLegCache
}

func NewORSRoutingProvider(apiKey, country string, legCache *cache.SQLLegCache) (*ORSRoutingProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}
	if country == "" {
		country = "VN"
	}

	provider := &ORSRoutingProvider{
		session:  &http.Client{Timeout: 10 * time.Second},
		apiKey:   apiKey,
		baseURL:  "https://api.openrouteservice.org",
		profile:  "driving-car",
		country:  country,
		legCache: legCache,
	}

	return provider, nil
}

// Leg returns the driving distance and duration between two waypoints,
// consulting the persistent cache before issuing an external call.
func (o *ORSRoutingProvider) Leg(
	ctx context.Context,
	from, to domain.Coordinates,
) (_ ports.LegResult, err error) {
	defer obs.Time(ctx, "ors.Leg")(&err)

	origin, destination := coordKey(from), coordKey(to)

	if o.legCache != nil {
		result, ok, err := o.legCache.Get(ctx, origin, destination)
		if err != nil {
			return ports.LegResult{}, fmt.Errorf("ORS leg cache: %w", err)
		}
		if ok {
			return result, nil
		}
	}

	result, err := o.fetchLeg(ctx, from, to)
	if err != nil {
		return ports.LegResult{}, err
	}

	if o.legCache != nil {
		if err := o.legCache.Put(ctx, origin, destination, result); err != nil {
			log.Printf("leg cache write failed: %v", err)
		}
	}

	return result, nil
}

func coordKey(c domain.Coordinates) string {
	return fmt.Sprintf("%.6f,%.6f", c.Lon, c.Lat)
}
