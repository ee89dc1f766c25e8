package http

import (
	"context"
	"net/http"

	"github.com/praxis-legal/praxis/internal/adapter/ws"
	"github.com/praxis-legal/praxis/internal/domain/contract"
	"github.com/praxis-legal/praxis/internal/domain/dispute"
	"github.com/praxis-legal/praxis/internal/domain/document"
	"github.com/praxis-legal/praxis/internal/domain/matter"
	"github.com/praxis-legal/praxis/internal/middleware"
	"github.com/praxis-legal/praxis/internal/service"
)

// Handlers bundles the services the REST API is built from.
type Handlers struct {
	Auth      *service.AuthService
	Tenants   *service.TenantService
	Users     *service.UserService
	Clients   *service.ClientService
	Matters   *service.MatterService
	Contracts *service.ContractService
	Disputes  *service.DisputeService
	Documents *service.DocumentService
	Analyses  *service.AnalysisService
	Drafts    *service.DraftService
	LLM       *service.Orchestrator
	Hub       *ws.Hub

	Version string
	// MaxBodyBytes caps JSON request bodies. Zero means the default limit.
	MaxBodyBytes int64
	// Ready reports whether downstream dependencies are reachable.
	// Nil means the readiness probe always succeeds.
	Ready func(ctx context.Context) error
}

func (h *Handlers) bodyLimit() int64 {
	if h.MaxBodyBytes > 0 {
		return h.MaxBodyBytes
	}
	return defaultBodyLimit
}

// ---------------------------------------------------------------------------
// Health and version
// ---------------------------------------------------------------------------

func (h *Handlers) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": "praxis",
		"version": h.Version,
	})
}

func (h *Handlers) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.Ready != nil {
		if err := h.Ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
				"reason": err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// ---------------------------------------------------------------------------
// Nested creation handlers
//
// The plain CRUD operations are wired through the generic factories in
// routes.go. These handlers exist where the parent ID comes from the URL
// or the caller identity is needed.
// ---------------------------------------------------------------------------

func (h *Handlers) createMatterHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[matter.CreateRequest](w, r, h.bodyLimit())
	if !ok {
		return
	}
	req.ClientID = urlParam(r, "id")
	m, err := h.Matters.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "client not found")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

func (h *Handlers) createContractHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[contract.CreateRequest](w, r, h.bodyLimit())
	if !ok {
		return
	}
	req.MatterID = urlParam(r, "id")
	c, err := h.Contracts.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "matter not found")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handlers) createDisputeHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[dispute.CreateRequest](w, r, h.bodyLimit())
	if !ok {
		return
	}
	req.MatterID = urlParam(r, "id")
	d, err := h.Disputes.Create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, "matter not found")
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

func (h *Handlers) createDocumentHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[document.CreateRequest](w, r, h.bodyLimit())
	if !ok {
		return
	}
	req.MatterID = urlParam(r, "id")
	d, err := h.Documents.Create(r.Context(), req, callerID(r.Context()))
	if err != nil {
		writeDomainError(w, err, "matter not found")
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// callerID returns the authenticated user's ID, or "system" when the
// request did not pass through the auth middleware.
func callerID(ctx context.Context) string {
	if u := middleware.UserFromContext(ctx); u != nil {
		return u.ID
	}
	return "system"
}
