package handlers

import "net/http"

// Health is the unauthenticated liveness endpoint. Routing restricts it
// to GET, so no method guard is needed here.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "route-dispatch",
	})
}
