package handlers

import (
	"context"
	"net/http"

	"route-dispatch-service/internal/domain"
)

type actorKey struct{}

// WithActor stores the authenticated principal for downstream handlers.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

func actorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(domain.Actor)
	return actor, ok
}

// requireActor extracts the principal or rejects the request. The auth
// middleware always sets one, so a miss means a wiring mistake.
func requireActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := actorFromContext(r.Context())
	if !ok || actor.ID == "" {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return domain.Actor{}, false
	}
	return actor, true
}
