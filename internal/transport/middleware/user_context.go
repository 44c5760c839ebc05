package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/claim-management/internal/identity"
	"github.com/frahmantamala/claim-management/pkg/logger"
)

// UserResolver loads a user by id. Satisfied by identity.Service.
type UserResolver interface {
	GetUser(userID int64) (*identity.User, error)
}

// UserContext resolves the upstream identity from the X-User-ID header and
// attaches the loaded user to the request context. Requests without a valid
// header pass through unauthenticated; route guards decide what needs one.
func UserContext(resolver UserResolver, lg *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := r.Header.Get("X-User-ID")
			if rawID == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := strconv.ParseInt(rawID, 10, 64)
			if err != nil {
				lg.Warn("invalid X-User-ID header", "value", rawID)
				next.ServeHTTP(w, r)
				return
			}

			user, err := resolver.GetUser(userID)
			if err != nil {
				lg.Warn("could not resolve user from header", "user_id", userID, "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := identity.ContextWithUser(r.Context(), user)
			ctx = logger.With(ctx, "userID", user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireUser rejects requests that did not resolve an authenticated user.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := identity.UserFromContext(r.Context())
		if !ok || user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
