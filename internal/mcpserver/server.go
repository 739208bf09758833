// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes read-only sticky-note tools for LLM integration via stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/stickies/internal/index"
	"github.com/starford/stickies/internal/models"
	"github.com/starford/stickies/internal/parser"
	"github.com/starford/stickies/internal/repository"
	"github.com/starford/stickies/internal/settings"
)

const formatURI = "stickies://note-format"

// Server wraps the MCP server with sticky-note tools.
type Server struct {
	mcp  *server.MCPServer
	repo *repository.Repository
	db   index.NoteIndex
}

// New creates a new MCP server with all tools registered. db may be nil,
// which disables search_notes.
func New(repo *repository.Repository, db index.NoteIndex, version string) *Server {
	s := &Server{repo: repo, db: db}

	s.mcp = server.NewMCPServer(
		"Stickies",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List every sticky note with its title and tags."),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read the current text of a sticky note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id (its directory name)")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("read_backup",
		mcp.WithDescription("Read the weekday backup of a sticky note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
		mcp.WithNumber("weekday", mcp.Required(), mcp.Min(1), mcp.Max(7),
			mcp.Description("ISO weekday, 1 = Monday .. 7 = Sunday")),
	), s.readBackup)

	s.mcp.AddTool(mcp.NewTool("get_style",
		mcp.WithDescription("Return the saved geometry and style settings of a sticky note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note id")),
	), s.getStyle)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through note text, titles and tags."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of hits (default 20)")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("get_note_format",
		mcp.WithDescription("Describe how sticky notes are stored on disk."),
	), s.getNoteFormat)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Sticky Note Storage Format",
			mcp.WithResourceDescription("On-disk layout of sticky notes."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readNoteFormatResource,
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

type noteSummary struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

// resolve returns the paths of an existing note. Tools never create notes.
func (s *Server) resolve(req mcp.CallToolRequest) (models.NotePaths, *mcp.CallToolResult) {
	id, err := req.RequireString("id")
	if err != nil {
		return models.NotePaths{}, mcp.NewToolResultError(err.Error())
	}
	paths, err := s.repo.Resolve(id)
	if err != nil {
		return models.NotePaths{}, mcp.NewToolResultError(err.Error())
	}
	ok, err := s.repo.Store().Exists(paths.Dir)
	if err != nil {
		return models.NotePaths{}, mcp.NewToolResultError(err.Error())
	}
	if !ok {
		return models.NotePaths{}, mcp.NewToolResultError(fmt.Sprintf("note not found: %s", id))
	}
	return paths, nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.repo.Discover()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := make([]noteSummary, 0, len(ids))
	for _, id := range ids {
		sum := noteSummary{ID: id, Tags: []string{}}
		if s.db != nil {
			if row, err := s.db.GetNote(id); err == nil {
				sum.Title, sum.Tags = row.Title, row.Tags
				out = append(out, sum)
				continue
			}
		}
		// Not indexed: derive from the text itself.
		if data, err := s.repo.Store().Read(models.NewNotePaths(id).Current); err == nil {
			res := parser.Parse(data)
			sum.Title = res.Title
			if res.Tags != nil {
				sum.Tags = res.Tags
			}
		}
		out = append(out, sum)
	}
	return jsonResult(out), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths, errResult := s.resolve(req)
	if errResult != nil {
		return errResult, nil
	}
	data, err := s.repo.Store().Read(paths.Current)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", paths.Current)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) readBackup(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths, errResult := s.resolve(req)
	if errResult != nil {
		return errResult, nil
	}
	weekday, err := req.RequireInt("weekday")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if weekday < 1 || weekday > 7 {
		return mcp.NewToolResultError(fmt.Sprintf("weekday must be between 1 and 7, got %d", weekday)), nil
	}
	data, err := s.repo.Store().Read(paths.Backup(weekday))
	if errors.Is(err, fs.ErrNotExist) {
		return mcp.NewToolResultError(fmt.Sprintf("no backup for weekday %d", weekday)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) getStyle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths, errResult := s.resolve(req)
	if errResult != nil {
		return errResult, nil
	}
	st, err := settings.Load(s.repo.Store(), paths)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{
		"geometry": st.Geometry.String(),
		"style":    st.Style,
	}), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if s.db == nil {
		return mcp.NewToolResultError("search index is disabled"), nil
	}
	results, err := s.db.Search(query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	return jsonResult(results), nil
}

func (s *Server) getNoteFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(NoteFormatContract), nil
}

func (s *Server) readNoteFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     NoteFormatContract,
		},
	}, nil
}
