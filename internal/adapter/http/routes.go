package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/praxis-legal/praxis/internal/domain/matter"
	"github.com/praxis-legal/praxis/internal/domain/user"
	"github.com/praxis-legal/praxis/internal/middleware"
)

// MountRoutes attaches the full REST API to the router. authMW guards
// everything except login, refresh, and the health probes.
func MountRoutes(r chi.Router, h *Handlers, authMW func(http.Handler) http.Handler) {
	r.Get("/health", h.handleHealth)
	r.Get("/health/ready", h.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/", h.handleVersion)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.loginHandler)
			r.Post("/refresh", h.refreshHandler)

			r.Group(func(r chi.Router) {
				r.Use(authMW)
				r.Post("/logout", h.logoutHandler)
				r.Get("/me", h.currentUserHandler)
				r.Post("/change-password", h.changePasswordHandler)
				r.Get("/keys", h.listAPIKeysHandler)
				r.Post("/keys", h.createAPIKeyHandler)
				r.Delete("/keys/{id}", h.deleteAPIKeyHandler)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(authMW)

			r.Route("/clients", func(r chi.Router) {
				r.Get("/", handleList(h.Clients.List))
				r.Post("/", handleCreate(h.bodyLimit(), h.Clients.Create))
				r.Get("/{id}", handleGet(h.Clients.Get, "client not found"))
				r.Put("/{id}", handleUpdate(h.bodyLimit(), h.Clients.Update, "client not found"))
				r.Delete("/{id}", handleDelete(h.Clients.Delete, "client not found"))
				r.Get("/{id}/matters", handleListByParam("id", h.Matters.List, "client not found"))
				r.Post("/{id}/matters", h.createMatterHandler)
			})

			r.Route("/matters", func(r chi.Router) {
				r.Get("/", handleList(func(ctx context.Context) ([]matter.Matter, error) {
					return h.Matters.List(ctx, "")
				}))
				r.Get("/{id}", handleGet(h.Matters.Get, "matter not found"))
				r.Put("/{id}", handleUpdate(h.bodyLimit(), h.Matters.Update, "matter not found"))
				r.Delete("/{id}", handleDelete(h.Matters.Delete, "matter not found"))

				r.Get("/{id}/contracts", handleListByParam("id", h.Contracts.List, "matter not found"))
				r.Post("/{id}/contracts", h.createContractHandler)
				r.Get("/{id}/disputes", handleListByParam("id", h.Disputes.List, "matter not found"))
				r.Post("/{id}/disputes", h.createDisputeHandler)
				r.Get("/{id}/documents", handleListByParam("id", h.Documents.List, "matter not found"))
				r.Post("/{id}/documents", h.createDocumentHandler)
				r.Get("/{id}/drafts", handleListByParam("id", h.Drafts.List, "matter not found"))
				r.Post("/{id}/drafts", h.requestDraftHandler)
			})

			r.Route("/contracts", func(r chi.Router) {
				r.Get("/{id}", handleGet(h.Contracts.Get, "contract not found"))
				r.Put("/{id}", handleUpdate(h.bodyLimit(), h.Contracts.Update, "contract not found"))
				r.Delete("/{id}", handleDelete(h.Contracts.Delete, "contract not found"))

				r.Get("/{id}/analyses", handleListByParam("id", h.Analyses.List, "contract not found"))
				r.Post("/{id}/analyses", h.requestAnalysisHandler)
			})

			r.Route("/disputes", func(r chi.Router) {
				r.Get("/{id}", handleGet(h.Disputes.Get, "dispute not found"))
				r.Put("/{id}", handleUpdate(h.bodyLimit(), h.Disputes.Update, "dispute not found"))
				r.Delete("/{id}", handleDelete(h.Disputes.Delete, "dispute not found"))
			})

			r.Route("/documents", func(r chi.Router) {
				r.Get("/{id}", handleGet(h.Documents.Get, "document not found"))
				r.Put("/{id}", handleUpdate(h.bodyLimit(), h.Documents.Update, "document not found"))
				r.Delete("/{id}", handleDelete(h.Documents.Delete, "document not found"))
			})

			r.Route("/analyses", func(r chi.Router) {
				r.Get("/{id}", handleGet(h.Analyses.Get, "analysis not found"))
				r.Post("/{id}/cancel", h.cancelAnalysisHandler)
			})

			r.Route("/drafts", func(r chi.Router) {
				r.Get("/{id}", handleGet(h.Drafts.Get, "draft not found"))
				r.Post("/{id}/cancel", h.cancelDraftHandler)
			})

			r.Get("/llm/providers", h.listProvidersHandler)

			// Tenant and user administration.
			r.Route("/tenants", func(r chi.Router) {
				r.Use(middleware.RequireRole(user.RoleAdmin))
				r.Get("/", handleList(h.Tenants.List))
				r.Post("/", handleCreate(h.bodyLimit(), h.Tenants.Create))
				r.Get("/{id}", handleGet(h.Tenants.Get, "tenant not found"))
				r.Put("/{id}", handleUpdate(h.bodyLimit(), h.Tenants.Update, "tenant not found"))
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.RequireRole(user.RoleAdmin))
				r.Get("/", handleList(h.Users.List))
				r.Post("/", h.createUserHandler)
				r.Get("/{id}", handleGet(h.Users.Get, "user not found"))
				r.Put("/{id}", handleUpdate(h.bodyLimit(), h.Users.Update, "user not found"))
				r.Delete("/{id}", handleDelete(h.Users.Delete, "user not found"))
			})
		})
	})

	// Live progress events for analyses and drafts.
	if h.Hub != nil {
		r.Group(func(r chi.Router) {
			r.Use(authMW)
			r.Get("/ws", h.Hub.HandleWS)
		})
	}
}
