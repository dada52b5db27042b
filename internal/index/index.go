package index

import "github.com/holmgren/dagaz/internal/models"

// EntryIndex defines the interface for entry indexing operations.
// Consumers should depend on this interface rather than the concrete
// *DB type to facilitate testing with mocks.
type EntryIndex interface {
	UpsertFile(path, checksum string, entries []models.DreamEntry, diags []models.Diagnostic) error
	DeleteFile(path string) error
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)
	ListEntries(limit, offset int, date, sort string) ([]EntryRow, int, error)
	GetEntry(file, id string) (*models.DreamEntry, error)
	AllEntries() ([]models.DreamEntry, error)
	Diagnostics(file, severity string) ([]models.Diagnostic, []string, error)
	Search(query string, limit int) ([]SearchResult, error)
	Close() error
}

// Verify *DB satisfies EntryIndex at compile time.
var _ EntryIndex = (*DB)(nil)
