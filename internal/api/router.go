package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/holmgren/dagaz/internal/journalservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *journalservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Entries.
	r.Get("/entries", h.ListEntries)
	r.Get("/entries/*", h.GetEntry)

	// Parsing and linting of inline content.
	r.Post("/parse", h.Parse)
	r.Post("/lint", h.Lint)

	// Index maintenance.
	r.Post("/reindex", h.Reindex)

	// Search, summary, diagnostics.
	r.Get("/search", h.Search)
	r.Get("/summary", h.Summary)
	r.Get("/diagnostics", h.Diagnostics)

	// Configured structures.
	r.Get("/structures", h.Structures)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
