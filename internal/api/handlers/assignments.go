package handlers

import (
	"net/http"
	"strings"

	"route-dispatch-service/internal/api/dto"
	"route-dispatch-service/internal/services"
)

// AssignmentHandler exposes the two ways a route acquires a worker:
// administrator assignment and worker self-service claim.
type AssignmentHandler struct {
	Coordinator *services.AssignmentCoordinator
}

func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req dto.AssignRouteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RouteID) == "" {
		writeError(w, r, http.StatusBadRequest, "route_id is required")
		return
	}
	if strings.TrimSpace(req.WorkerID) == "" {
		writeError(w, r, http.StatusBadRequest, "worker_id is required")
		return
	}

	route, err := h.Coordinator.Assign(r.Context(), req.RouteID, req.WorkerID, actor)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, routeToResponse(route))
}

func (h *AssignmentHandler) Claim(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req dto.ClaimRouteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RouteID) == "" {
		writeError(w, r, http.StatusBadRequest, "route_id is required")
		return
	}

	route, err := h.Coordinator.Claim(r.Context(), req.RouteID, actor)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, routeToResponse(route))
}
