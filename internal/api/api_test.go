package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/holmgren/dagaz/internal/index"
	"github.com/holmgren/dagaz/internal/journalservice"
	"github.com/holmgren/dagaz/internal/models"
	"github.com/holmgren/dagaz/internal/storage"
)

const sampleNote = `> [!dream] 2024-01-15 Flying
> Flew over mountains.
>
> > [!metrics]
> > Lucidity: 3, Vividness: 4
`

// testEnv sets up a temp vault, SQLite DB, service, and router for testing.
// authEnabled=false means disabled mode; a non-empty token enables token mode.
func testEnv(t *testing.T, authToken string) (*journalservice.Service, http.Handler, storage.Provider) {
	t.Helper()

	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}

	dbFile, err := os.CreateTemp("", "dagaz-api-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := journalservice.NewService(store, db, models.DefaultStructures())
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router, store
}

func seedNote(t *testing.T, svc *journalservice.Service, store storage.Provider, path, content string) {
	t.Helper()
	if err := store.Write(path, []byte(content)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ParseFile(context.Background(), path); err != nil {
		t.Fatal(err)
	}
}

func TestListAndGetEntry(t *testing.T) {
	svc, router, store := testEnv(t, "")
	seedNote(t, svc, store, "dreams/a.md", sampleNote)

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, body = %s", w.Code, w.Body.String())
	}
	var list EntryListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || len(list.Entries) != 1 {
		t.Fatalf("list = %+v", list)
	}

	req = httptest.NewRequest(http.MethodGet, "/entries/dreams/a.md", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var entry models.DreamEntry
	_ = json.Unmarshal(w.Body.Bytes(), &entry)
	if entry.Date != "2024-01-15" || entry.WordCount != 3 {
		t.Errorf("entry = %+v", entry)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	_, router, _ := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/entries/missing.md", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestParseInline(t *testing.T) {
	_, router, _ := testEnv(t, "")

	body, _ := json.Marshal(ParseRequest{Content: sampleNote})
	req := httptest.NewRequest(http.MethodPost, "/parse", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var res struct {
		Entries []models.DreamEntry `json:"entries"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(res.Entries))
	}
	if res.Entries[0].Title != "Flying" {
		t.Errorf("title = %q", res.Entries[0].Title)
	}
}

func TestParseRequiresContent(t *testing.T) {
	_, router, _ := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/parse", bytes.NewReader([]byte(`{}`)))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLintInline(t *testing.T) {
	_, router, _ := testEnv(t, "")

	body, _ := json.Marshal(LintRequest{Content: "plain text, no callouts"})
	req := httptest.NewRequest(http.MethodPost, "/lint", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var res journalservice.LintResult
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if len(res.Reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(res.Reports))
	}
	if res.Reports[0].Score == 0 {
		t.Error("expected nonzero score for note without callouts")
	}
}

func TestSummaryAndSearch(t *testing.T) {
	svc, router, store := testEnv(t, "")
	seedNote(t, svc, store, "a.md", sampleNote)

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("summary status = %d", w.Code)
	}
	var sum SummaryResponse
	_ = json.Unmarshal(w.Body.Bytes(), &sum)
	if len(sum.Metrics) != 2 {
		t.Errorf("metrics = %d, want 2", len(sum.Metrics))
	}

	req = httptest.NewRequest(http.MethodGet, "/search?q=mountains", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	var sr SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &sr)
	if len(sr.Results) != 1 {
		t.Errorf("results = %d, want 1", len(sr.Results))
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	_, router, _ := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDiagnosticsEndpoint(t *testing.T) {
	svc, router, store := testEnv(t, "")
	seedNote(t, svc, store, "bad.md", "> [!dream] Flying\n> No date here.\n")

	req := httptest.NewRequest(http.MethodGet, "/diagnostics?severity=error", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res DiagnosticsResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if len(res.Diagnostics) == 0 {
		t.Error("expected at least one error diagnostic")
	}
	for _, d := range res.Diagnostics {
		if d.Diagnostic.Severity != models.SeverityError {
			t.Errorf("severity filter leaked: %+v", d)
		}
	}
}

func TestReindexEndpoint(t *testing.T) {
	_, router, store := testEnv(t, "")
	if err := store.Write("a.md", []byte(sampleNote)); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/reindex", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res ReindexResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if res.Files != 1 {
		t.Errorf("files = %d, want 1", res.Files)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, router, _ := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token: status = %d, want 200", w.Code)
	}
}

func TestStructuresEndpoint(t *testing.T) {
	_, router, _ := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/structures", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var res StructuresResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	if len(res.Structures) != 1 || res.Structures[0].ID != "default-nested" {
		t.Errorf("structures = %+v", res.Structures)
	}
}
