package domain

import "time"

// Represents a single stop in a route: one shop visited at a fixed
// position in the stop order. Order is contiguous and starts at 1.
type RouteStop struct {
	ShopID   string
	ShopName string
	Order    int
}

// Represents a multi-stop delivery route.
//
// A Route is created pending, acquires a worker through assignment or a
// self-service claim, and then progresses through the delivery lifecycle
// governed by the transition table in status.go. Stops, vehicle type and
// computed distances never change after creation; only status and the
// assignment fields do.
type Route struct {
	ID              string
	Code            string
	Stops           []RouteStop
	VehicleType     string
	VehicleTypeName string
	DistanceKm      float64
	LegDistancesKm  []float64
	DurationSeconds int
	Status          Status
	AssignedWorker  string
	AssignedAt      *time.Time
	CreatedAt       time.Time
}
