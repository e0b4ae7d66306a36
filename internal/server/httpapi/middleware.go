package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/mzarins/invsync/internal/server/users"
)

type ctxKey string

const actorKey ctxKey = "actor"

// requireAuth resolves the Bearer token to a user account and stores it in
// the request context. There is no ambient session state; every handler
// reads the actor from its own request.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			jsonError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		actor, err := s.users.Authenticate(r.Context(), token)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// actorFromContext returns the authenticated user, or nil outside the auth
// middleware.
func actorFromContext(ctx context.Context) *users.User {
	actor, _ := ctx.Value(actorKey).(*users.User)
	return actor
}
