package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/praxis-legal/praxis/internal/config"
	"github.com/praxis-legal/praxis/internal/domain"
	"github.com/praxis-legal/praxis/internal/domain/client"
	"github.com/praxis-legal/praxis/internal/domain/matter"
	"github.com/praxis-legal/praxis/internal/domain/user"
	"github.com/praxis-legal/praxis/internal/middleware"
	"github.com/praxis-legal/praxis/internal/port/database"
	"github.com/praxis-legal/praxis/internal/service"
)

// stubStore embeds the Store interface and overrides only what the
// routes under test touch. Calling anything else panics, which is the
// point: it flags a handler reaching further than expected.
type stubStore struct {
	database.Store

	clients   map[string]*client.Client
	updateErr error
	created   []matter.CreateRequest
}

func (s *stubStore) ListClients(_ context.Context) ([]client.Client, error) {
	var out []client.Client
	for _, c := range s.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (s *stubStore) GetClient(_ context.Context, id string) (*client.Client, error) {
	if c, ok := s.clients[id]; ok {
		return c, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubStore) CreateClient(_ context.Context, req client.CreateRequest) (*client.Client, error) {
	c := &client.Client{ID: "c-new", Name: req.Name, Kind: req.Kind, Version: 1}
	s.clients[c.ID] = c
	return c, nil
}

func (s *stubStore) UpdateClient(_ context.Context, id string, req client.UpdateRequest) (*client.Client, error) {
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	c, ok := s.clients[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if req.Name != "" {
		c.Name = req.Name
	}
	c.Version++
	return c, nil
}

func (s *stubStore) ListMatters(_ context.Context, _ string) ([]matter.Matter, error) {
	return nil, nil
}

func (s *stubStore) CreateMatter(_ context.Context, req matter.CreateRequest) (*matter.Matter, error) {
	s.created = append(s.created, req)
	return &matter.Matter{
		ID: "m-new", ClientID: req.ClientID, Title: req.Title,
		PracticeArea: req.PracticeArea, Status: matter.StatusOpen, Version: 1,
	}, nil
}

func (s *stubStore) GetUserByEmail(_ context.Context, _ string) (*user.User, error) {
	return nil, domain.ErrNotFound
}

// asUser is a stand-in auth middleware that injects a fixed user.
func asUser(u *user.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), u)))
		})
	}
}

func newTestRouter(t *testing.T, store *stubStore, u *user.User) chi.Router {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	h := &Handlers{
		Auth:      service.NewAuthService(store, config.Auth{JWTSecret: "test-secret"}, log),
		Tenants:   service.NewTenantService(store),
		Users:     service.NewUserService(store),
		Clients:   service.NewClientService(store),
		Matters:   service.NewMatterService(store),
		Contracts: service.NewContractService(store),
		Disputes:  service.NewDisputeService(store),
		Documents: service.NewDocumentService(store),
		Version:   "test",
	}
	r := chi.NewRouter()
	MountRoutes(r, h, asUser(u))
	return r
}

func doRequest(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"not found", domain.ErrNotFound, http.StatusNotFound, "client not found"},
		{"wrapped not found", fmt.Errorf("get client: %w", domain.ErrNotFound), http.StatusNotFound, "client not found"},
		{"conflict", domain.ErrConflict, http.StatusConflict, "resource was modified by another request"},
		{"validation", fmt.Errorf("%w: name is required", domain.ErrValidation), http.StatusBadRequest, "name is required"},
		{"duplicate key", errors.New(`duplicate key value violates unique constraint "clients_name_key" (SQLSTATE 23505)`), http.StatusConflict, "resource already exists"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, tt.err, "client not found")
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var resp errorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Error != tt.wantBody {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantBody)
			}
		})
	}
}

func TestReadJSONBodyTooLarge(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(
		`{"name":"`+strings.Repeat("a", defaultBodyLimit+1)+`"}`))
	rec := httptest.NewRecorder()
	_, ok := readJSON[client.CreateRequest](rec, req, defaultBodyLimit)
	if ok {
		t.Fatal("expected oversized body to be rejected")
	}
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestConfiguredBodyLimitEnforced(t *testing.T) {
	store := &stubStore{clients: map[string]*client.Client{}}
	log := slog.New(slog.DiscardHandler)
	h := &Handlers{
		Auth:         service.NewAuthService(store, config.Auth{JWTSecret: "test-secret"}, log),
		Tenants:      service.NewTenantService(store),
		Users:        service.NewUserService(store),
		Clients:      service.NewClientService(store),
		Matters:      service.NewMatterService(store),
		Contracts:    service.NewContractService(store),
		Disputes:     service.NewDisputeService(store),
		Documents:    service.NewDocumentService(store),
		Version:      "test",
		MaxBodyBytes: 64,
	}
	r := chi.NewRouter()
	MountRoutes(r, h, asUser(&user.User{ID: "u1", Role: user.RoleLawyer}))

	rec := doRequest(t, r, http.MethodPost, "/api/v1/clients", client.CreateRequest{
		Name: strings.Repeat("a", 128), Kind: client.KindOrganization,
	})
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}

	rec = doRequest(t, r, http.MethodPost, "/api/v1/clients", client.CreateRequest{
		Name: "Acme", Kind: client.KindOrganization,
	})
	if rec.Code != http.StatusCreated {
		t.Errorf("small body: status = %d, want 201", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	store := &stubStore{clients: map[string]*client.Client{}}
	r := newTestRouter(t, store, &user.User{ID: "u1", Role: user.RoleLawyer})

	rec := doRequest(t, r, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health: status = %d, want 200", rec.Code)
	}

	rec = doRequest(t, r, http.MethodGet, "/health/ready", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("ready: status = %d, want 200", rec.Code)
	}
}

func TestReadyReportsUnavailable(t *testing.T) {
	h := &Handlers{Ready: func(context.Context) error {
		return errors.New("database unreachable")
	}}
	rec := httptest.NewRecorder()
	h.handleReady(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "database unreachable") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestVersionEndpoint(t *testing.T) {
	store := &stubStore{clients: map[string]*client.Client{}}
	r := newTestRouter(t, store, &user.User{ID: "u1", Role: user.RoleLawyer})

	rec := doRequest(t, r, http.MethodGet, "/api/v1/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp["service"] != "praxis" || resp["version"] != "test" {
		t.Errorf("resp = %v", resp)
	}
}

func TestClientCRUD(t *testing.T) {
	store := &stubStore{clients: map[string]*client.Client{
		"c1": {ID: "c1", Name: "Hooli Inc", Kind: client.KindOrganization, Version: 1},
	}}
	r := newTestRouter(t, store, &user.User{ID: "u1", Role: user.RoleLawyer})

	rec := doRequest(t, r, http.MethodGet, "/api/v1/clients", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d, want 200", rec.Code)
	}
	var clients []client.Client
	if err := json.Unmarshal(rec.Body.Bytes(), &clients); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(clients) != 1 || clients[0].Name != "Hooli Inc" {
		t.Errorf("clients = %+v", clients)
	}

	rec = doRequest(t, r, http.MethodGet, "/api/v1/clients/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get missing: status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, r, http.MethodPost, "/api/v1/clients", client.CreateRequest{
		Name: "Initech LLC", Kind: client.KindOrganization,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, r, http.MethodPost, "/api/v1/clients", client.CreateRequest{
		Kind: client.KindOrganization,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("create invalid: status = %d, want 400", rec.Code)
	}
}

func TestClientUpdateConflict(t *testing.T) {
	store := &stubStore{
		clients: map[string]*client.Client{
			"c1": {ID: "c1", Name: "Hooli Inc", Version: 1},
		},
		updateErr: domain.ErrConflict,
	}
	r := newTestRouter(t, store, &user.User{ID: "u1", Role: user.RoleLawyer})

	rec := doRequest(t, r, http.MethodPut, "/api/v1/clients/c1", client.UpdateRequest{
		Name: "Hooli", Version: 1,
	})
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestNestedMatterCreate(t *testing.T) {
	store := &stubStore{clients: map[string]*client.Client{
		"c1": {ID: "c1", Name: "Hooli Inc", Version: 1},
	}}
	r := newTestRouter(t, store, &user.User{ID: "u1", Role: user.RoleLawyer})

	rec := doRequest(t, r, http.MethodPost, "/api/v1/clients/c1/matters", map[string]any{
		"title":         "Acquisition",
		"practice_area": "corporate",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(store.created) != 1 || store.created[0].ClientID != "c1" {
		t.Errorf("created = %+v, want client_id from URL", store.created)
	}

	rec = doRequest(t, r, http.MethodPost, "/api/v1/clients/ghost/matters", map[string]any{
		"title":         "Acquisition",
		"practice_area": "corporate",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown client: status = %d, want 404", rec.Code)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	store := &stubStore{clients: map[string]*client.Client{}}

	r := newTestRouter(t, store, &user.User{ID: "u1", Role: user.RoleLawyer})
	rec := doRequest(t, r, http.MethodGet, "/api/v1/users", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("lawyer on /users: status = %d, want 403", rec.Code)
	}
	rec = doRequest(t, r, http.MethodGet, "/api/v1/tenants", nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("lawyer on /tenants: status = %d, want 403", rec.Code)
	}
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	store := &stubStore{clients: map[string]*client.Client{}}
	r := newTestRouter(t, store, &user.User{ID: "u1", Role: user.RoleLawyer})

	rec := doRequest(t, r, http.MethodPost, "/api/v1/auth/login", user.LoginRequest{
		Email: "ghost@example.com", Password: "whatever123",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("failed login must not set a refresh cookie")
	}
}

func TestRefreshWithoutCookie(t *testing.T) {
	store := &stubStore{clients: map[string]*client.Client{}}
	r := newTestRouter(t, store, &user.User{ID: "u1", Role: user.RoleLawyer})

	rec := doRequest(t, r, http.MethodPost, "/api/v1/auth/refresh", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
