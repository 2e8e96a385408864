package dto

import "time"

type CreateRouteStop struct {
	ShopID string `json:"shop_id"`
}

type CreateRouteRequest struct {
	Stops       []CreateRouteStop `json:"stops"`
	VehicleType string            `json:"vehicle_type"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type AssignRouteRequest struct {
	RouteID  string `json:"route_id"`
	WorkerID string `json:"worker_id"`
}

type ClaimRouteRequest struct {
	RouteID string `json:"route_id"`
}

type RouteStopResponse struct {
	ShopID   string `json:"shop_id"`
	ShopName string `json:"shop_name"`
	Order    int    `json:"order"`
}

type RouteResponse struct {
	ID              string              `json:"id"`
	Code            string              `json:"code"`
	Stops           []RouteStopResponse `json:"stops"`
	VehicleType     string              `json:"vehicle_type"`
	VehicleTypeName string              `json:"vehicle_type_name,omitempty"`
	DistanceKm      float64             `json:"distance_km"`
	LegDistancesKm  []float64           `json:"leg_distances_km"`
	DurationSeconds int                 `json:"duration_seconds"`
	Status          string              `json:"status"`
	AssignedWorker  string              `json:"assigned_worker,omitempty"`
	AssignedAt      *time.Time          `json:"assigned_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

type ListRoutesResponse struct {
	Routes []RouteResponse `json:"routes"`
}
