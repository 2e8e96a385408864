package services

import (
	"context"
	"fmt"
	"math"

	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/ports"
)

// Aggregate output of the distance computation pipeline.
type RouteMetrics struct {
	TotalKm         float64
	LegsKm          []float64
	DurationSeconds int
}

// ComputeRoute walks an ordered list of waypoints and asks the routing
// provider for the driving distance of each consecutive pair.
//
// Legs are fetched strictly sequentially in stop order: providers
// rate-limit aggressively, and each leg distance must be attributed to
// its position in the stop list. The pipeline holds no state between
// invocations; any leg failure aborts the whole computation so a route
// is never created with a partial distance.
func ComputeRoute(
	ctx context.Context,
	waypoints []domain.Coordinates,
	provider ports.LegProvider,
) (RouteMetrics, error) {
	if len(waypoints) < 2 {
		return RouteMetrics{}, fmt.Errorf(
			"compute route: got %d waypoints: %w",
			len(waypoints), domain.ErrInsufficientWaypoints,
		)
	}

	legs := make([]float64, 0, len(waypoints)-1)
	total := 0.0
	duration := 0

	for i := 0; i < len(waypoints)-1; i++ {
		leg, err := provider.Leg(ctx, waypoints[i], waypoints[i+1])
		if err != nil {
			return RouteMetrics{}, fmt.Errorf("compute route: leg %d -> %d: %w", i+1, i+2, err)
		}

		legs = append(legs, leg.DistanceKm)
		total += leg.DistanceKm
		duration += leg.DurationSeconds
	}

	return RouteMetrics{
		TotalKm:         math.Round(total*100) / 100,
		LegsKm:          legs,
		DurationSeconds: duration,
	}, nil
}
