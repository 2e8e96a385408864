package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"route-dispatch-service/internal/api/handlers"
	"route-dispatch-service/internal/domain"
)

type jwtClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

func authenticateJWT(token, secret string) (domain.Actor, error) {
	if strings.TrimSpace(secret) == "" {
		return domain.Actor{}, errors.New("jwt secret not configured")
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &jwtClaims{}
	parsed, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return domain.Actor{}, err
	}
	if !parsed.Valid {
		return domain.Actor{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return domain.Actor{}, errors.New("subject claim required")
	}
	if claims.Role != domain.RoleAdmin && claims.Role != domain.RoleDeliveryStaff {
		return domain.Actor{}, errors.New("unknown role claim")
	}

	return domain.Actor{ID: claims.Subject, Role: claims.Role}, nil
}

func bearerToken(authz string) (string, bool) {
	parts := strings.Fields(authz)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// authMiddleware resolves the bearer token into an Actor for handlers.
// The health endpoint stays open for probes.
func authMiddleware(secret string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		authz := strings.TrimSpace(r.Header.Get("Authorization"))
		token, ok := bearerToken(authz)
		if !ok {
			unauthorized(w)
			return
		}

		actor, err := authenticateJWT(token, secret)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := handlers.WithActor(r.Context(), actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"invalid credentials"}` + "\n"))
}
