package mcpserver

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

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

func testServer(t *testing.T) (*Server, *journalservice.Service, storage.Provider) {
	t.Helper()

	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}

	dbFile, err := os.CreateTemp("", "dagaz-mcp-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	svc := journalservice.NewService(store, db, models.DefaultStructures())
	return New(svc), svc, store
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "parse_note":
		result, err = srv.parseNote(ctx, req)
	case "lint_note":
		result, err = srv.lintNote(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "search_entries":
		result, err = srv.searchEntries(ctx, req)
	case "list_entries":
		result, err = srv.listEntries(ctx, req)
	case "dream_stats":
		result, err = srv.dreamStats(ctx, req)
	case "get_journal_contract":
		result, err = srv.getJournalContract(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestParseNoteTool(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "parse_note", map[string]interface{}{
		"content": sampleNote,
	})
	if r.IsError {
		t.Fatalf("parse_note failed: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, `"date": "2024-01-15"`) {
		t.Errorf("missing date in %q", text)
	}
	if !strings.Contains(text, "Lucidity") {
		t.Errorf("missing metrics in %q", text)
	}
}

func TestParseNoteRequiresContent(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "parse_note", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error without content")
	}
}

func TestLintNoteTool(t *testing.T) {
	srv, _, store := testServer(t)
	_ = store.Write("a.md", []byte(sampleNote))

	r := callTool(t, srv, "lint_note", map[string]interface{}{"path": "a.md"})
	if r.IsError {
		t.Fatalf("lint_note failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "default-nested") {
		t.Errorf("missing structure id in %q", resultText(r))
	}

	r = callTool(t, srv, "lint_note", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestReadNoteTool(t *testing.T) {
	srv, _, store := testServer(t)
	_ = store.Write("a.md", []byte(sampleNote))

	r := callTool(t, srv, "read_note", map[string]interface{}{"path": "a.md"})
	if resultText(r) != sampleNote {
		t.Errorf("read result = %q", resultText(r))
	}

	r = callTool(t, srv, "read_note", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing note")
	}
}

func TestListAndSearchTools(t *testing.T) {
	srv, svc, store := testServer(t)
	_ = store.Write("a.md", []byte(sampleNote))
	if _, err := svc.ParseFile(context.Background(), "a.md"); err != nil {
		t.Fatal(err)
	}

	r := callTool(t, srv, "list_entries", map[string]interface{}{})
	if !strings.Contains(resultText(r), "2024-01-15") {
		t.Errorf("list = %q", resultText(r))
	}

	r = callTool(t, srv, "search_entries", map[string]interface{}{"query": "mountains"})
	if !strings.Contains(resultText(r), "a.md") {
		t.Errorf("search = %q", resultText(r))
	}
}

func TestDreamStatsTool(t *testing.T) {
	srv, svc, store := testServer(t)

	r := callTool(t, srv, "dream_stats", map[string]interface{}{})
	if resultText(r) != "no metrics recorded" {
		t.Errorf("empty stats = %q", resultText(r))
	}

	_ = store.Write("a.md", []byte(sampleNote))
	if _, err := svc.ParseFile(context.Background(), "a.md"); err != nil {
		t.Fatal(err)
	}

	r = callTool(t, srv, "dream_stats", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, "Lucidity") || !strings.Contains(text, "Vividness") {
		t.Errorf("stats = %q", text)
	}
}

func TestJournalContractTool(t *testing.T) {
	srv, _, _ := testServer(t)

	r := callTool(t, srv, "get_journal_contract", map[string]interface{}{})
	if !strings.Contains(resultText(r), "[!dream]") {
		t.Error("contract missing anchor callout description")
	}
}
