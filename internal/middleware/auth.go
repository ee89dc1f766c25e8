package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/praxis-legal/praxis/internal/domain/user"
	"github.com/praxis-legal/praxis/internal/service"
)

type authUserCtxKey struct{}
type apiKeyCtxKey struct{}

// publicPaths are exempt from authentication.
var publicPaths = map[string]bool{
	"/health":              true,
	"/health/ready":        true,
	"/api/v1/auth/login":   true,
	"/api/v1/auth/refresh": true,
}

// passwordChangeExempt paths are allowed even when MustChangePassword is true.
var passwordChangeExempt = map[string]bool{
	"/api/v1/auth/change-password": true,
	"/api/v1/auth/logout":          true,
	"/api/v1/auth/me":              true,
}

// Auth returns middleware that validates JWT or API key credentials.
func Auth(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth for public paths.
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			// WebSocket auth via ?token= query parameter; browsers cannot
			// set headers on WebSocket upgrade requests.
			if r.URL.Path == "/ws" {
				tokenParam := r.URL.Query().Get("token")
				if tokenParam == "" {
					http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
					return
				}
				claims, err := authSvc.ValidateAccessToken(r.Context(), tokenParam)
				if err != nil {
					http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
					return
				}
				u := claims.User()
				ctx := context.WithValue(r.Context(), authUserCtxKey{}, u)
				ctx = scopeToPrincipal(ctx, u)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// Try X-API-Key header first.
			if apiKey := r.Header.Get("X-API-Key"); apiKey != "" {
				u, key, err := authSvc.ValidateAPIKey(r.Context(), apiKey)
				if err != nil {
					http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
					return
				}
				ctx := context.WithValue(r.Context(), authUserCtxKey{}, u)
				ctx = context.WithValue(ctx, apiKeyCtxKey{}, key)
				ctx = scopeToPrincipal(ctx, u)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			// Try Authorization: Bearer <token> header.
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"authorization required"}`, http.StatusUnauthorized)
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				http.Error(w, `{"error":"invalid authorization header"}`, http.StatusUnauthorized)
				return
			}

			claims, err := authSvc.ValidateAccessToken(r.Context(), token)
			if err != nil {
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			// Force password change except on exempt paths.
			if claims.MustChangePassword && !passwordChangeExempt[r.URL.Path] {
				http.Error(w, `{"error":"password change required"}`, http.StatusForbidden)
				return
			}

			u := claims.User()
			ctx := context.WithValue(r.Context(), authUserCtxKey{}, u)
			ctx = scopeToPrincipal(ctx, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// scopeToPrincipal pins the tenant scope to the authenticated user's tenant.
// The X-Tenant-ID header is client-controlled and must never widen access
// beyond the tenant the credential belongs to.
func scopeToPrincipal(ctx context.Context, u *user.User) context.Context {
	if u == nil || u.TenantID == "" {
		return ctx
	}
	return WithTenantID(ctx, u.TenantID)
}

// UserFromContext returns the authenticated user from the request context.
func UserFromContext(ctx context.Context) *user.User {
	u, _ := ctx.Value(authUserCtxKey{}).(*user.User)
	return u
}

// WithUser returns a context carrying the authenticated user. Used by
// surfaces that authenticate outside this middleware, such as the MCP
// server.
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, authUserCtxKey{}, u)
}

// APIKeyFromContext returns the API key used for authentication, or nil for JWT auth.
func APIKeyFromContext(ctx context.Context) *user.APIKey {
	key, _ := ctx.Value(apiKeyCtxKey{}).(*user.APIKey)
	return key
}

// AuthUserCtxKeyForTest returns the context key used for storing the auth user.
// Exported only for use in tests that need to inject a user into the context.
func AuthUserCtxKeyForTest() any {
	return authUserCtxKey{}
}
