package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"route-dispatch-service/internal/domain"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeDomainError maps service-layer failures onto HTTP responses.
// State-rule violations (bad transitions, non-pending routes, capacity,
// deletion guards) are client errors; provider outages are the only 5xx.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *domain.ValidationError
		transitionErr *domain.InvalidTransitionError
		notPendingErr *domain.RouteNotPendingError
		notDeletable  *domain.RouteNotDeletableError
	)

	switch {
	case errors.As(err, &validationErr):
		writeError(w, r, http.StatusBadRequest, validationErr.Error())

	case errors.As(err, &transitionErr):
		allowed := make([]string, 0, len(transitionErr.Allowed))
		for _, s := range transitionErr.Allowed {
			allowed = append(allowed, string(s))
		}
		writeJSON(w, r, http.StatusBadRequest, map[string]any{
			"error":   transitionErr.Error(),
			"from":    string(transitionErr.From),
			"to":      string(transitionErr.To),
			"allowed": allowed,
		})

	case errors.As(err, &notPendingErr):
		writeError(w, r, http.StatusBadRequest, notPendingErr.Error())

	case errors.As(err, &notDeletable):
		writeError(w, r, http.StatusBadRequest, notDeletable.Error())

	case errors.Is(err, domain.ErrWorkerAtCapacity),
		errors.Is(err, domain.ErrWorkerNotEligible),
		errors.Is(err, domain.ErrShopReferenced),
		errors.Is(err, domain.ErrInsufficientWaypoints),
		errors.Is(err, domain.ErrNoRouteFound):
		writeError(w, r, http.StatusBadRequest, sentinelMessage(err))

	case errors.Is(err, domain.ErrActorNotAllowed):
		writeError(w, r, http.StatusForbidden, domain.ErrActorNotAllowed.Error())

	case errors.Is(err, domain.ErrRouteNotFound),
		errors.Is(err, domain.ErrShopNotFound),
		errors.Is(err, domain.ErrWorkerNotFound),
		errors.Is(err, domain.ErrVehicleTypeNotFound):
		writeError(w, r, http.StatusNotFound, sentinelMessage(err))

	case errors.Is(err, domain.ErrProviderUnavailable):
		log.Printf("provider failure: %v", err)
		writeError(w, r, http.StatusInternalServerError, "distance computation failed")

	default:
		log.Printf("request failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// sentinelMessage strips service wrapping so clients see the sentinel's
// message rather than internal call context.
func sentinelMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}
