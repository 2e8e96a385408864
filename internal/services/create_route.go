package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/ports"
)

// RouteCodePrefix and RouteCodeWidth define the RT000001 numbering.
const (
	RouteCodePrefix = "RT"
	RouteCodeWidth  = 6
)

type CreateRouteRequest struct {
	ShopIDs     []string
	VehicleType string
}

// RouteCreator builds new routes: it validates stops and vehicle type,
// runs the distance pipeline, allocates the route code, and persists
// the route as pending.
//
// The external distance calls happen strictly before anything is
// persisted, so a provider failure aborts with no half-created route
// and no lock held across network I/O.
type RouteCreator struct {
	Routes   ports.RouteRepository
	Shops    ports.ShopRepository
	Vehicles ports.VehicleTypeRepository
	Provider ports.LegProvider
	Codes    ports.CodeAllocator
	Audit    *AuditRecorder
}

func (s *RouteCreator) Create(
	ctx context.Context,
	req CreateRouteRequest,
	actor domain.Actor,
) (*domain.Route, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrActorNotAllowed
	}

	if len(req.ShopIDs) < 2 {
		return nil, &domain.ValidationError{
			Field:   "stops",
			Message: "a route needs at least 2 stops",
		}
	}

	seen := make(map[string]struct{}, len(req.ShopIDs))
	for _, id := range req.ShopIDs {
		if id == "" {
			return nil, &domain.ValidationError{Field: "stops", Message: "shop_id must be non-empty"}
		}
		if _, dup := seen[id]; dup {
			return nil, &domain.ValidationError{
				Field:   "stops",
				Message: fmt.Sprintf("shop %s appears more than once", id),
			}
		}
		seen[id] = struct{}{}
	}

	if req.VehicleType == "" {
		return nil, &domain.ValidationError{Field: "vehicle_type", Message: "vehicle_type is required"}
	}
	vehicle, err := s.Vehicles.Get(ctx, req.VehicleType)
	if err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}
	if !vehicle.ActiveType() {
		return nil, &domain.ValidationError{
			Field:   "vehicle_type",
			Message: fmt.Sprintf("vehicle type %s is inactive", vehicle.Code),
		}
	}

	shops, err := s.Shops.GetMany(ctx, req.ShopIDs)
	if err != nil {
		return nil, fmt.Errorf("create route: resolve shops: %w", err)
	}

	stops := make([]domain.RouteStop, 0, len(req.ShopIDs))
	waypoints := make([]domain.Coordinates, 0, len(req.ShopIDs))
	for i, id := range req.ShopIDs {
		shop, ok := shops[id]
		if !ok {
			return nil, fmt.Errorf("create route: shop %s: %w", id, domain.ErrShopNotFound)
		}
		stops = append(stops, domain.RouteStop{
			ShopID:   shop.ID,
			ShopName: shop.Name,
			Order:    i + 1,
		})
		waypoints = append(waypoints, shop.Location)
	}

	metrics, err := ComputeRoute(ctx, waypoints, s.Provider)
	if err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	code, err := s.Codes.Next(ctx, RouteCodePrefix, RouteCodeWidth)
	if err != nil {
		return nil, fmt.Errorf("create route: %w", err)
	}

	route := &domain.Route{
		ID:              uuid.NewString(),
		Code:            code,
		Stops:           stops,
		VehicleType:     vehicle.Code,
		VehicleTypeName: vehicle.Name,
		DistanceKm:      metrics.TotalKm,
		LegDistancesKm:  metrics.LegsKm,
		DurationSeconds: metrics.DurationSeconds,
		Status:          domain.StatusPending,
	}

	if err := s.Routes.Create(ctx, route); err != nil {
		return nil, fmt.Errorf("create route: persist %s: %w", code, err)
	}

	s.Audit.Record(ctx, domain.AuditEvent{
		Actor:       actor.ID,
		Action:      domain.AuditRouteCreated,
		TargetType:  "route",
		TargetID:    route.ID,
		Description: fmt.Sprintf("route %s created with %d stops", code, len(stops)),
		Payload: map[string]any{
			"route_code":   code,
			"stop_count":   len(stops),
			"vehicle_type": vehicle.Code,
			"distance_km":  metrics.TotalKm,
		},
	})

	return route, nil
}
