package api

import (
	"github.com/holmgren/dagaz/internal/index"
	"github.com/holmgren/dagaz/internal/journalservice"
	"github.com/holmgren/dagaz/internal/models"
)

// ParseRequest is the request body for parsing inline note content.
type ParseRequest struct {
	File    string `json:"file,omitempty" example:"dreams/2024-01-15.md"`
	Content string `json:"content" example:"> [!dream] 2024-01-15 Flying\n> Flew over mountains." validate:"required"`
}

// LintRequest is the request body for linting inline note content.
type LintRequest struct {
	File    string `json:"file,omitempty" example:"dreams/2024-01-15.md"`
	Content string `json:"content" validate:"required"`
}

// EntryListResponse wraps paginated entry listings.
type EntryListResponse struct {
	Entries []index.EntryRow `json:"entries" validate:"required"`
	Total   int              `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// SummaryResponse wraps the metrics summary.
type SummaryResponse struct {
	Metrics []models.MetricSummary `json:"metrics" validate:"required"`
}

// DiagnosticsResponse wraps stored diagnostics.
type DiagnosticsResponse struct {
	Diagnostics []journalservice.DiagnosticItem `json:"diagnostics" validate:"required"`
}

// ReindexResponse reports how many files a full reindex covered.
type ReindexResponse struct {
	Files int `json:"files" example:"12" validate:"required"`
}

// StructuresResponse lists the configured journal structures.
type StructuresResponse struct {
	Structures []models.JournalStructure `json:"structures" validate:"required"`
}
