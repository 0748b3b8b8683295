package api

import (
	"context"
	"net/http"
	"strings"

	"wheelshare-backend/internal/domain"
	"wheelshare-backend/internal/security"
	"wheelshare-backend/internal/service"
)

type contextKey string

const actorKey contextKey = "actor"

// AuthMiddleware validates the bearer token and injects the caller's
// identity into the request context.
type AuthMiddleware struct {
	tokens security.TokenManager
}

func NewAuthMiddleware(tokens security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
			return
		}
		claims, err := m.tokens.ValidateToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}

		actor := service.Actor{ID: claims.UserID, Role: domain.Role(claims.Role)}
		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func actorFrom(r *http.Request) service.Actor {
	actor, _ := r.Context().Value(actorKey).(service.Actor)
	return actor
}
