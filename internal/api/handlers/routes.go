package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"route-dispatch-service/internal/api/dto"
	"route-dispatch-service/internal/domain"
	"route-dispatch-service/internal/ports"
	"route-dispatch-service/internal/services"
)

// RouteHandler exposes route creation, retrieval, status transitions
// and deletion.
type RouteHandler struct {
	Creator   *services.RouteCreator
	Lifecycle *services.RouteLifecycle
	Repo      ports.RouteRepository
}

func (h *RouteHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req dto.CreateRouteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	shopIDs := make([]string, 0, len(req.Stops))
	for _, s := range req.Stops {
		shopIDs = append(shopIDs, s.ShopID)
	}

	route, err := h.Creator.Create(r.Context(), services.CreateRouteRequest{
		ShopIDs:     shopIDs,
		VehicleType: req.VehicleType,
	}, actor)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, routeToResponse(route))
}

func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	routes, err := h.Repo.List(r.Context())
	if err != nil {
		log.Printf("list routes failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListRoutesResponse{Routes: make([]dto.RouteResponse, 0, len(routes))}
	for _, route := range routes {
		res.Routes = append(res.Routes, routeToResponse(route))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}

	route, err := h.Repo.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, routeToResponse(route))
}

func (h *RouteHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	route, err := h.Lifecycle.Transition(
		r.Context(),
		r.PathValue("id"),
		domain.Status(req.Status),
		actor,
	)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, routeToResponse(route))
}

func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	if err := h.Lifecycle.Delete(r.Context(), r.PathValue("id"), actor); err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeBody parses exactly one JSON object from the request body.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func routeToResponse(route *domain.Route) dto.RouteResponse {
	stops := make([]dto.RouteStopResponse, 0, len(route.Stops))
	for _, s := range route.Stops {
		stops = append(stops, dto.RouteStopResponse{
			ShopID:   s.ShopID,
			ShopName: s.ShopName,
			Order:    s.Order,
		})
	}

	return dto.RouteResponse{
		ID:              route.ID,
		Code:            route.Code,
		Stops:           stops,
		VehicleType:     route.VehicleType,
		VehicleTypeName: route.VehicleTypeName,
		DistanceKm:      route.DistanceKm,
		LegDistancesKm:  route.LegDistancesKm,
		DurationSeconds: route.DurationSeconds,
		Status:          string(route.Status),
		AssignedWorker:  route.AssignedWorker,
		AssignedAt:      route.AssignedAt,
		CreatedAt:       route.CreatedAt,
	}
}
