package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/holmgren/dagaz/internal/apperr"
	"github.com/holmgren/dagaz/internal/journalservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *journalservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *journalservice.Service) *Handler {
	return &Handler{svc: svc}
}

// entryPath extracts the note path from the URL (everything after /api/entries/).
// Supports encoded slashes from OpenAPI clients (e.g. dreams%2Fnote.md).
func entryPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListEntries handles GET /api/entries.
//
//	@Summary		List entries with optional pagination and filtering
//	@Tags			entries
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			date	query		string	false	"Filter by entry date (ISO)"
//	@Param			sort	query		string	false	"Sort field"	Enums(date, title, source)
//	@Success		200		{object}	EntryListResponse
//	@Security		BearerAuth
//	@Router			/entries [get]
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	date := q.Get("date")
	sort := q.Get("sort")

	rows, total, err := h.svc.ListEntries(r.Context(), limit, offset, date, sort)
	if err != nil {
		slog.Error("list entries failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": rows,
		"total":   total,
	})
}

// GetEntry handles GET /api/entries/*.
//
// The wildcard is the source file path; multi-entry notes address a
// single entry with the "id" query parameter.
//
//	@Summary		Get a single parsed entry by source file
//	@Tags			entries
//	@Produce		json
//	@Param			path	path		string	true	"Source file path"
//	@Param			id		query		string	false	"Entry id within the file (entry-N)"
//	@Success		200		{object}	models.DreamEntry
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/entries/{path} [get]
func (h *Handler) GetEntry(w http.ResponseWriter, r *http.Request) {
	path := entryPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	id := r.URL.Query().Get("id")
	entry, err := h.svc.GetEntry(r.Context(), path, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get entry failed", slog.String("path", path), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Parse handles POST /api/parse.
//
//	@Summary		Parse inline note content into entries and diagnostics
//	@Tags			parse
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ParseRequest	true	"Note content to parse"
//	@Success		200		{object}	parser.Result
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/parse [post]
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	file := req.File
	if file == "" {
		file = "inline.md"
	}
	writeJSON(w, http.StatusOK, h.svc.ParseText(r.Context(), req.Content, file))
}

// Lint handles POST /api/lint.
//
//	@Summary		Evaluate inline note content against every configured structure
//	@Tags			parse
//	@Accept			json
//	@Produce		json
//	@Param			body	body		LintRequest	true	"Note content to lint"
//	@Success		200		{object}	journalservice.LintResult
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/lint [post]
func (h *Handler) Lint(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req LintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("content is required"))
		return
	}
	file := req.File
	if file == "" {
		file = "inline.md"
	}
	writeJSON(w, http.StatusOK, h.svc.LintText(r.Context(), req.Content, file))
}

// Reindex handles POST /api/reindex.
//
//	@Summary		Reparse every vault note and rebuild the index
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	ReindexResponse
//	@Security		BearerAuth
//	@Router			/reindex [post]
func (h *Handler) Reindex(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ReindexAll(r.Context())
	if err != nil {
		slog.Error("reindex failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, ReindexResponse{Files: n})
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across entry titles and content
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// Summary handles GET /api/summary.
//
//	@Summary		Aggregate numeric metrics across all indexed entries
//	@Tags			metrics
//	@Produce		json
//	@Success		200	{object}	SummaryResponse
//	@Security		BearerAuth
//	@Router			/summary [get]
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.svc.Summary(r.Context())
	if err != nil {
		slog.Error("summary failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"metrics": metrics,
	})
}

// Diagnostics handles GET /api/diagnostics.
//
//	@Summary		List stored diagnostics with optional filtering
//	@Tags			diagnostics
//	@Produce		json
//	@Param			file		query		string	false	"Filter by source file"
//	@Param			severity	query		string	false	"Filter by severity"	Enums(info, warning, error)
//	@Success		200			{object}	DiagnosticsResponse
//	@Security		BearerAuth
//	@Router			/diagnostics [get]
func (h *Handler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := h.svc.Diagnostics(r.Context(), q.Get("file"), q.Get("severity"))
	if err != nil {
		slog.Error("diagnostics failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if items == nil {
		items = []journalservice.DiagnosticItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"diagnostics": items,
	})
}

// Structures handles GET /api/structures.
//
//	@Summary		List the configured journal structures
//	@Tags			structures
//	@Produce		json
//	@Success		200	{object}	StructuresResponse
//	@Security		BearerAuth
//	@Router			/structures [get]
func (h *Handler) Structures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"structures": h.svc.Structures(),
	})
}
