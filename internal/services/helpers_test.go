package services

import (
	"context"
	"time"

	"route-dispatch-service/internal/adapters/memory"
	"route-dispatch-service/internal/domain"
)

var admin = domain.Actor{ID: "admin-1", Role: domain.RoleAdmin}

func staff(id string) domain.Actor {
	return domain.Actor{ID: id, Role: domain.RoleDeliveryStaff}
}

func activeWorker(id string) *domain.Worker {
	return &domain.Worker{
		ID:     id,
		Name:   "Worker " + id,
		Role:   domain.RoleDeliveryStaff,
		Status: domain.WorkerActive,
	}
}

func pendingRoute(id, code string) *domain.Route {
	return &domain.Route{
		ID:   id,
		Code: code,
		Stops: []domain.RouteStop{
			{ShopID: "00001001", ShopName: "Shop A", Order: 1},
			{ShopID: "00001002", ShopName: "Shop B", Order: 2},
			{ShopID: "00001003", ShopName: "Shop C", Order: 3},
		},
		VehicleType:     "BIKE",
		VehicleTypeName: "Bike",
		DistanceKm:      7.0,
		LegDistancesKm:  []float64{3.0, 4.0},
		DurationSeconds: 1440,
		Status:          domain.StatusPending,
		CreatedAt:       time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func seedRoute(store *memory.RouteStore, route *domain.Route) {
	_ = store.Create(context.Background(), route)
}

func testRecorder() *AuditRecorder {
	return NewAuditRecorder(memory.NewAuditStore(), nil)
}
