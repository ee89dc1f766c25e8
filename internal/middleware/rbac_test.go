package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/praxis-legal/praxis/internal/domain/user"
)

func requestWithUser(u *user.User) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	ctx := context.WithValue(req.Context(), AuthUserCtxKeyForTest(), u)
	return req.WithContext(ctx)
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(user.RoleAdmin, user.RoleLawyer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name string
		user *user.User
		want int
	}{
		{"admin allowed", &user.User{Role: user.RoleAdmin}, http.StatusNoContent},
		{"lawyer allowed", &user.User{Role: user.RoleLawyer}, http.StatusNoContent},
		{"viewer forbidden", &user.User{Role: user.RoleViewer}, http.StatusForbidden},
		{"no user unauthorized", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			var req *http.Request
			if tt.user != nil {
				req = requestWithUser(tt.user)
			} else {
				req = httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
			}
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
