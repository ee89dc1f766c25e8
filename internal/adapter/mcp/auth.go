package mcp

import (
	"context"
	"net/http"
	"strings"

	"github.com/praxis-legal/praxis/internal/domain/user"
	"github.com/praxis-legal/praxis/internal/middleware"
)

// KeyValidator checks an API key and returns the owning user. The
// AuthService satisfies this with ValidateAPIKey.
type KeyValidator func(ctx context.Context, key string) (*user.User, *user.APIKey, error)

// AuthMiddleware validates the Authorization header against the key
// validator and binds the request to the key owner's tenant. A nil
// validator passes all requests through (auth disabled).
func AuthMiddleware(validate KeyValidator, next http.Handler) http.Handler {
	if validate == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}
		key := strings.TrimPrefix(auth, "Bearer ")

		u, _, err := validate(r.Context(), key)
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusForbidden)
			return
		}

		ctx := middleware.WithTenantID(r.Context(), u.TenantID)
		ctx = middleware.WithUser(ctx, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
