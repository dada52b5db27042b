// Package journalservice coordinates storage, parsing, and index
// operations behind one API used by the HTTP handlers and MCP tools.
package journalservice

import (
	"context"
	"errors"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/holmgren/dagaz/internal/apperr"
	"github.com/holmgren/dagaz/internal/checksum"
	"github.com/holmgren/dagaz/internal/index"
	"github.com/holmgren/dagaz/internal/lint"
	"github.com/holmgren/dagaz/internal/models"
	"github.com/holmgren/dagaz/internal/parser"
	"github.com/holmgren/dagaz/internal/stats"
	"github.com/holmgren/dagaz/internal/storage"
)

// StructureReport is the lint verdict for one configured structure.
type StructureReport struct {
	StructureID string              `json:"structure_id"`
	Score       int                 `json:"score"`
	Diagnostics []models.Diagnostic `json:"diagnostics"`
}

// LintResult holds per-structure reports for one note, ordered by score
// ascending (best match first, ties by configuration order).
type LintResult struct {
	File    string            `json:"file"`
	Best    string            `json:"best"`
	Reports []StructureReport `json:"reports"`
}

// DiagnosticItem pairs a stored diagnostic with the file it came from.
type DiagnosticItem struct {
	File       string            `json:"file"`
	Diagnostic models.Diagnostic `json:"diagnostic"`
}

// Service coordinates storage, parser, and index operations.
type Service struct {
	store      storage.Provider
	db         *index.DB
	structures []models.JournalStructure
}

// NewService creates a new journal service.
func NewService(store storage.Provider, db *index.DB, structures []models.JournalStructure) *Service {
	if len(structures) == 0 {
		structures = models.DefaultStructures()
	}
	return &Service{store: store, db: db, structures: structures}
}

// Structures returns the configured journal structures.
func (s *Service) Structures() []models.JournalStructure {
	return s.structures
}

// ParseText runs the parsing pipeline over raw text without touching
// storage or the index.
func (s *Service) ParseText(_ context.Context, text, file string) *parser.Result {
	return parser.ParseNote(text, file, s.structures)
}

// ParseFile reads a note from the vault, parses it, and refreshes the
// index with the result.
func (s *Service) ParseFile(_ context.Context, path string) (*parser.Result, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	res := parser.ParseNote(string(data), path, s.structures)
	if err := s.db.UpsertFile(path, checksum.Sum(data), res.Entries, res.Diagnostics); err != nil {
		return nil, err
	}
	return res, nil
}

// ReadNote returns the raw note content from the vault.
func (s *Service) ReadNote(_ context.Context, path string) ([]byte, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// GetEntry loads one indexed entry.
func (s *Service) GetEntry(_ context.Context, file, id string) (*models.DreamEntry, error) {
	e, err := s.db.GetEntry(file, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apperr.ErrNotFound
	}
	return e, nil
}

// ListEntries returns paginated entries with an optional date filter.
func (s *Service) ListEntries(_ context.Context, limit, offset int, date, sort string) ([]index.EntryRow, int, error) {
	return s.db.ListEntries(limit, offset, date, sort)
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Summary aggregates numeric metrics across every indexed entry.
func (s *Service) Summary(_ context.Context) ([]models.MetricSummary, error) {
	entries, err := s.db.AllEntries()
	if err != nil {
		return nil, err
	}
	return stats.Summarize(entries), nil
}

// Diagnostics returns stored diagnostics, optionally filtered by file
// and severity.
func (s *Service) Diagnostics(_ context.Context, file, severity string) ([]DiagnosticItem, error) {
	diags, files, err := s.db.Diagnostics(file, severity)
	if err != nil {
		return nil, err
	}
	items := make([]DiagnosticItem, len(diags))
	for i := range diags {
		items[i] = DiagnosticItem{File: files[i], Diagnostic: diags[i]}
	}
	return items, nil
}

// LintFile evaluates a note against every configured structure and
// reports each one's diagnostics and score.
func (s *Service) LintFile(_ context.Context, path string) (*LintResult, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.lintText(string(data), path), nil
}

// LintText evaluates raw text the same way LintFile does.
func (s *Service) LintText(_ context.Context, text, file string) *LintResult {
	return s.lintText(text, file)
}

func (s *Service) lintText(text, file string) *LintResult {
	forest, _ := parser.BuildForest(text, s.structures)

	res := &LintResult{File: file}
	bestScore := -1
	for _, st := range s.structures {
		diags := lint.Evaluate(forest, st)
		score := lint.Score(diags)
		res.Reports = append(res.Reports, StructureReport{
			StructureID: st.ID,
			Score:       score,
			Diagnostics: diags,
		})
		if bestScore < 0 || score < bestScore {
			bestScore = score
			res.Best = st.ID
		}
	}
	return res
}

// ReindexAll parses every note in the vault in parallel and replaces
// the index contents. Files that fail to read are skipped; parse output
// itself never fails.
func (s *Service) ReindexAll(ctx context.Context) (int, error) {
	metas, err := s.store.List("")
	if err != nil {
		return 0, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for _, m := range metas {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := s.store.Read(m.Path)
			if err != nil {
				return nil // removed between list and read
			}
			res := parser.ParseNote(string(data), m.Path, s.structures)
			return s.db.UpsertFile(m.Path, m.Checksum, res.Entries, res.Diagnostics)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(metas), nil
}
