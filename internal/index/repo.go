package index

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/holmgren/dagaz/internal/models"
)

// EntryRow is a lightweight listing row for one indexed entry.
type EntryRow struct {
	SourceFile string `json:"source_file"`
	SourceID   string `json:"source_id,omitempty"`
	Date       string `json:"date"`
	Title      string `json:"title"`
	WordCount  int    `json:"word_count"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	SourceFile string `json:"source_file"`
	SourceID   string `json:"source_id,omitempty"`
	Title      string `json:"title"`
	Snippet    string `json:"snippet"`
}

// UpsertFile replaces everything indexed for one file — entries,
// metrics, diagnostics, and the FTS rows — in a single transaction.
func (db *DB) UpsertFile(path, checksum string, entries []models.DreamEntry, diags []models.Diagnostic) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	for _, table := range []string{"entries", "metrics", "diagnostics"} {
		if _, err := tx.Exec(`DELETE FROM `+table+` WHERE source_file = ?`, path); err != nil {
			return fmt.Errorf("index: clear %s: %w", table, err)
		}
	}
	ftsDelete(tx, path)

	_, err = tx.Exec(`
		INSERT INTO files (path, checksum, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, path, checksum, time.Now())
	if err != nil {
		return fmt.Errorf("index: upsert file: %w", err)
	}

	for _, e := range entries {
		_, err := tx.Exec(`
			INSERT INTO entries (source_file, source_id, date, title, content, word_count)
			VALUES (?, ?, ?, ?, ?, ?)
		`, path, e.Source.ID, e.Date, e.Title, e.Content, e.WordCount)
		if err != nil {
			return fmt.Errorf("index: insert entry: %w", err)
		}
		for name, v := range e.Metrics {
			_, err := tx.Exec(`
				INSERT INTO metrics (source_file, source_id, name, num_value, str_value, is_numeric)
				VALUES (?, ?, ?, ?, ?, ?)
			`, path, e.Source.ID, name, v.Num, v.Str, v.Numeric)
			if err != nil {
				return fmt.Errorf("index: insert metric: %w", err)
			}
		}
		if err := ftsUpsert(tx, path, e.Source.ID, e.Title, e.Content); err != nil {
			return err
		}
	}

	for _, d := range diags {
		_, err := tx.Exec(`
			INSERT INTO diagnostics (source_file, severity, code, message, line, callout_path)
			VALUES (?, ?, ?, ?, ?, ?)
		`, path, d.Severity.String(), string(d.Code), d.Message, d.LineNumber, strings.Join(d.CalloutPath, "/"))
		if err != nil {
			return fmt.Errorf("index: insert diagnostic: %w", err)
		}
	}

	return tx.Commit()
}

// DeleteFile removes a file and everything indexed for it.
func (db *DB) DeleteFile(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM entries WHERE source_file = ?`, path)
	_, _ = tx.Exec(`DELETE FROM metrics WHERE source_file = ?`, path)
	_, _ = tx.Exec(`DELETE FROM diagnostics WHERE source_file = ?`, path)
	_, _ = tx.Exec(`DELETE FROM files WHERE path = ?`, path)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a file, or empty string if
// the file is not indexed.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM files WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not indexed yet is fine
	}
	return cs, nil
}

// AllChecksums returns path → checksum for every indexed file.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM files`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListEntries returns paginated entries, optionally filtered to one
// date, sorted by date (default), title, or source file.
func (db *DB) ListEntries(limit, offset int, date, sort string) ([]EntryRow, int, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if date != "" {
		where = ` WHERE date = ?`
		args = append(args, date)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM entries`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count entries: %w", err)
	}

	order := `date DESC, source_file, source_id`
	switch sort {
	case "title":
		order = `title, date DESC`
	case "source":
		order = `source_file, source_id`
	}

	rows, err := db.conn.Query(`
		SELECT source_file, source_id, date, title, word_count
		FROM entries`+where+`
		ORDER BY `+order+`
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list entries: %w", err)
	}
	defer rows.Close()

	var out []EntryRow
	for rows.Next() {
		var r EntryRow
		if err := rows.Scan(&r.SourceFile, &r.SourceID, &r.Date, &r.Title, &r.WordCount); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}

// GetEntry loads one full entry with its metrics.
func (db *DB) GetEntry(file, id string) (*models.DreamEntry, error) {
	e := models.DreamEntry{Source: models.Source{File: file, ID: id}}
	err := db.conn.QueryRow(`
		SELECT date, title, content, word_count
		FROM entries WHERE source_file = ? AND source_id = ?
	`, file, id).Scan(&e.Date, &e.Title, &e.Content, &e.WordCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get entry: %w", err)
	}
	metrics, err := db.entryMetrics(file, id)
	if err != nil {
		return nil, err
	}
	e.Metrics = metrics
	return &e, nil
}

// AllEntries loads every indexed entry with metrics, ordered by date
// then source. This feeds the metrics aggregator.
func (db *DB) AllEntries() ([]models.DreamEntry, error) {
	rows, err := db.conn.Query(`
		SELECT source_file, source_id, date, title, content, word_count
		FROM entries ORDER BY date, source_file, source_id
	`)
	if err != nil {
		return nil, fmt.Errorf("index: all entries: %w", err)
	}
	defer rows.Close()

	var out []models.DreamEntry
	for rows.Next() {
		var e models.DreamEntry
		if err := rows.Scan(&e.Source.File, &e.Source.ID, &e.Date, &e.Title, &e.Content, &e.WordCount); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		metrics, err := db.entryMetrics(out[i].Source.File, out[i].Source.ID)
		if err != nil {
			return nil, err
		}
		out[i].Metrics = metrics
	}
	return out, nil
}

// Diagnostics returns stored diagnostics, optionally filtered by file
// and minimum severity.
func (db *DB) Diagnostics(file string, severity string) ([]models.Diagnostic, []string, error) {
	query := `SELECT source_file, severity, code, message, line, callout_path FROM diagnostics`
	var (
		clauses []string
		args    []any
	)
	if file != "" {
		clauses = append(clauses, `source_file = ?`)
		args = append(args, file)
	}
	if severity != "" {
		clauses = append(clauses, `severity = ?`)
		args = append(args, severity)
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY source_file, line`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("index: diagnostics: %w", err)
	}
	defer rows.Close()

	var (
		out   []models.Diagnostic
		files []string
	)
	for rows.Next() {
		var (
			d        models.Diagnostic
			srcFile  string
			sevName  string
			codeName string
			path     string
		)
		if err := rows.Scan(&srcFile, &sevName, &codeName, &d.Message, &d.LineNumber, &path); err != nil {
			return nil, nil, err
		}
		d.Severity = severityFromName(sevName)
		d.Code = models.DiagnosticCode(codeName)
		if path != "" {
			d.CalloutPath = strings.Split(path, "/")
		}
		out = append(out, d)
		files = append(files, srcFile)
	}
	return out, files, rows.Err()
}

func (db *DB) entryMetrics(file, id string) (map[string]models.MetricValue, error) {
	rows, err := db.conn.Query(`
		SELECT name, num_value, str_value, is_numeric
		FROM metrics WHERE source_file = ? AND source_id = ?
	`, file, id)
	if err != nil {
		return nil, fmt.Errorf("index: entry metrics: %w", err)
	}
	defer rows.Close()

	out := make(map[string]models.MetricValue)
	for rows.Next() {
		var (
			name    string
			num     float64
			str     string
			numeric bool
		)
		if err := rows.Scan(&name, &num, &str, &numeric); err != nil {
			return nil, err
		}
		if numeric {
			out[name] = models.NumberValue(num)
		} else {
			out[name] = models.StringValue(str)
		}
	}
	return out, rows.Err()
}

func severityFromName(name string) models.Severity {
	switch name {
	case "error":
		return models.SeverityError
	case "warning":
		return models.SeverityWarning
	default:
		return models.SeverityInfo
	}
}
