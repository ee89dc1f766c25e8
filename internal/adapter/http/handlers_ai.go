package http

import (
	"net/http"

	"github.com/praxis-legal/praxis/internal/domain/analysis"
)

// ---------------------------------------------------------------------------
// Contract analyses
// ---------------------------------------------------------------------------

func (h *Handlers) requestAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[analysis.CreateRequest](w, r, h.bodyLimit())
	if !ok {
		return
	}
	a, err := h.Analyses.Request(r.Context(), urlParam(r, "id"), req, callerID(r.Context()))
	if err != nil {
		writeDomainError(w, err, "contract not found")
		return
	}
	writeJSON(w, http.StatusAccepted, a)
}

func (h *Handlers) cancelAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	a, err := h.Analyses.Cancel(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "analysis not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// ---------------------------------------------------------------------------
// Document drafts
// ---------------------------------------------------------------------------

func (h *Handlers) requestDraftHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[analysis.CreateDraftRequest](w, r, h.bodyLimit())
	if !ok {
		return
	}
	d, err := h.Drafts.Request(r.Context(), urlParam(r, "id"), req, callerID(r.Context()))
	if err != nil {
		writeDomainError(w, err, "matter not found")
		return
	}
	writeJSON(w, http.StatusAccepted, d)
}

func (h *Handlers) cancelDraftHandler(w http.ResponseWriter, r *http.Request) {
	d, err := h.Drafts.Cancel(r.Context(), urlParam(r, "id"))
	if err != nil {
		writeDomainError(w, err, "draft not found")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// ---------------------------------------------------------------------------
// Providers
// ---------------------------------------------------------------------------

func (h *Handlers) listProvidersHandler(w http.ResponseWriter, _ *http.Request) {
	if h.LLM == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, h.LLM.Providers())
}
