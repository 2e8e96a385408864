package api

import (
	"net/http"

	"route-dispatch-service/internal/api/handlers"
	"route-dispatch-service/internal/ports"
	"route-dispatch-service/internal/services"
)

// RouterDeps carries the services and repositories the HTTP layer
// exposes. Handlers stay unaware of concrete adapters.
type RouterDeps struct {
	Routes      ports.RouteRepository
	Creator     *services.RouteCreator
	Lifecycle   *services.RouteLifecycle
	Coordinator *services.AssignmentCoordinator
	Registrar   *services.ShopRegistrar
	JWTSecret   string
}

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{
		Creator:   deps.Creator,
		Lifecycle: deps.Lifecycle,
		Repo:      deps.Routes,
	}
	assignHandler := &handlers.AssignmentHandler{Coordinator: deps.Coordinator}
	shopHandler := &handlers.ShopHandler{Registrar: deps.Registrar}

	mux.HandleFunc("GET /health", handlers.Health)

	mux.HandleFunc("POST /shops", shopHandler.Register)
	mux.HandleFunc("DELETE /shops/{id}", shopHandler.Remove)

	mux.HandleFunc("POST /routes", routeHandler.Create)
	mux.HandleFunc("GET /routes", routeHandler.List)
	mux.HandleFunc("GET /routes/{id}", routeHandler.Get)
	mux.HandleFunc("PUT /routes/{id}/status", routeHandler.UpdateStatus)
	mux.HandleFunc("DELETE /routes/{id}", routeHandler.Delete)

	mux.HandleFunc("POST /routes/assign", assignHandler.Assign)
	mux.HandleFunc("POST /routes/claim", assignHandler.Claim)

	handler := authMiddleware(deps.JWTSecret, mux)
	handler = loggingMiddleware(handler)
	return requestIDMiddleware(handler)
}
