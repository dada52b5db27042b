// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Dagaz tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/holmgren/dagaz/internal/journalservice"
)

// Server wraps the MCP server with Dagaz tools.
type Server struct {
	mcp *server.MCPServer
	svc *journalservice.Service
}

// New creates a new MCP server with all Dagaz tools registered.
func New(svc *journalservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Dagaz",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("parse_note",
		mcp.WithDescription("Parse dream-journal note content into structured entries "+
			"with metrics and diagnostics. Content MUST follow the callout journal "+
			"format; read the contract first via the get_journal_contract tool or the "+
			"dagaz://journal-format resource."),
		mcp.WithString("content", mcp.Required(), mcp.Description("Raw Markdown note content with callout blocks")),
	), s.parseNote)

	s.mcp.AddTool(mcp.NewTool("lint_note",
		mcp.WithDescription("Evaluate a vault note against every configured journal "+
			"structure and report diagnostics and match scores."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. dreams/2024-01-15.md)")),
	), s.lintNote)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the raw content of a journal note."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search through parsed entry titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchEntries)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List indexed dream entries, optionally filtered by date."),
		mcp.WithString("date", mcp.Description("Optional ISO date filter (YYYY-MM-DD)")),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("dream_stats",
		mcp.WithDescription("Aggregate numeric metrics (averages, min, max) across all indexed entries."),
	), s.dreamStats)

	s.mcp.AddTool(mcp.NewTool("get_journal_contract",
		mcp.WithDescription("Returns the canonical Dagaz journal format contract. "+
			"Call this before writing notes to ensure correct callout structure."),
	), s.getJournalContract)

	// Resource: journal format contract.
	s.mcp.AddResource(
		mcp.NewResource("dagaz://journal-format", "Journal Format Contract",
			mcp.WithResourceDescription("Canonical callout journal format that parsed notes should follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readJournalFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) parseNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := s.svc.ParseText(ctx, content, "inline.md")
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) lintNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.LintFile(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	out, _ := json.MarshalIndent(res, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := s.svc.ReadNote(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) searchEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listEntries(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date := ""
	if d, err := req.RequireString("date"); err == nil {
		date = d
	}

	rows, _, err := s.svc.ListEntries(ctx, 100, 0, date, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText("no entries found"), nil
	}

	var lines []string
	for _, r := range rows {
		ref := r.SourceFile
		if r.SourceID != "" {
			ref += "#" + r.SourceID
		}
		lines = append(lines, fmt.Sprintf("%s\t%s\t%s (%d words)", r.Date, ref, r.Title, r.WordCount))
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) dreamStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := s.svc.Summary(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(summary) == 0 {
		return mcp.NewToolResultText("no metrics recorded"), nil
	}
	out, _ := json.MarshalIndent(summary, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getJournalContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(JournalFormatContract), nil
}

func (s *Server) readJournalFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "dagaz://journal-format",
			MIMEType: "text/markdown",
			Text:     JournalFormatContract,
		},
	}, nil
}
