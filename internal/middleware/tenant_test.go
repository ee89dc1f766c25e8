package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/praxis-legal/praxis/internal/domain/tenant"
)

func TestTenantIDFromHeader(t *testing.T) {
	var got string
	h := TenantID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = TenantIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Tenant-ID", "firm-42")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got != "firm-42" {
		t.Errorf("tenant = %q, want %q", got, "firm-42")
	}
}

func TestTenantIDDefault(t *testing.T) {
	var got string
	h := TenantID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = TenantIDFromContext(r.Context())
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got != tenant.DefaultID {
		t.Errorf("tenant = %q, want %q", got, tenant.DefaultID)
	}
}

func TestWithTenantID(t *testing.T) {
	ctx := WithTenantID(t.Context(), "firm-7")
	if got := TenantIDFromContext(ctx); got != "firm-7" {
		t.Errorf("tenant = %q, want %q", got, "firm-7")
	}
}
