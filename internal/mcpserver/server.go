// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes FastSlides deck tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kristianernst/fast-slides/internal/apperr"
	"github.com/kristianernst/fast-slides/internal/projectsvc"
	"github.com/kristianernst/fast-slides/internal/validate"
)

// DeckFormatURI is the resource URI of the deck format contract.
const DeckFormatURI = "fastslides://deck-format"

// Server wraps the MCP server with FastSlides tools.
type Server struct {
	mcp *server.MCPServer
	svc *projectsvc.Service
}

// New creates a new MCP server with all FastSlides tools registered.
func New(svc *projectsvc.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"FastSlides",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List the registered project roots, recent projects and their slide counts."),
	), s.listProjects)

	s.mcp.AddTool(mcp.NewTool("open_project",
		mcp.WithDescription("Open a deck project folder, remember it, and return its page.mdx with a checksum."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the project folder")),
	), s.openProject)

	s.mcp.AddTool(mcp.NewTool("save_project",
		mcp.WithDescription("Replace a project's page.mdx. Content MUST follow the deck format contract; "+
			"read it first via the get_deck_contract tool or the "+DeckFormatURI+" resource. "+
			"Pass the checksum from open_project to avoid overwriting concurrent edits."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the project folder")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full page.mdx document")),
		mcp.WithString("checksum", mcp.Description("Checksum of the document being replaced")),
	), s.saveProject)

	s.mcp.AddTool(mcp.NewTool("create_project",
		mcp.WithDescription("Create a new deck project with a starter page.mdx and asset folders."),
		mcp.WithString("root", mcp.Required(), mcp.Description("Existing folder to create the project in")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Folder name: letters, numbers, dot, underscore, dash")),
		mcp.WithString("title", mcp.Description("Deck title")),
		mcp.WithString("subtitle", mcp.Description("Deck subtitle")),
		mcp.WithString("date_label", mcp.Description("Date shown on the title slide")),
	), s.createProject)

	s.mcp.AddTool(mcp.NewTool("validate_project",
		mcp.WithDescription("Validate a deck project: frontmatter, MDX hygiene, slide structure, slide density and local assets."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the project folder")),
	), s.validateProject)

	s.mcp.AddTool(mcp.NewTool("audit_project",
		mcp.WithDescription("Compare the assets referenced by page.mdx with the files in the project folder."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the project folder")),
		mcp.WithNumber("top", mcp.Description("How many of the largest files to list (default 10)")),
	), s.auditProject)

	s.mcp.AddTool(mcp.NewTool("validation_history",
		mcp.WithDescription("Recent validation runs for a project, newest first."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the project folder")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of runs (default 20)")),
	), s.validationHistory)

	s.mcp.AddTool(mcp.NewTool("preview_url",
		mcp.WithDescription("Link that opens the project in the preview app."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Absolute path of the project folder")),
	), s.previewURL)

	s.mcp.AddTool(mcp.NewTool("add_asset",
		mcp.WithDescription("Add an image or file to a project from an http(s) URL or a base64 data URI."),
		mcp.WithString("project", mcp.Required(), mcp.Description("Absolute path of the project folder")),
		mcp.WithString("url", mcp.Required(), mcp.Description("http(s) URL or data:<mime>;base64,<data> URI")),
		mcp.WithString("filename", mcp.Description("File name to store (derived from the URL when empty)")),
		mcp.WithString("folder", mcp.Description("Asset folder: images, media, data or assets (chosen from the content type when empty)")),
	), s.addAsset)

	s.mcp.AddTool(mcp.NewTool("get_deck_contract",
		mcp.WithDescription("Returns the FastSlides deck format contract. "+
			"Call this before creating or editing decks to ensure correct structure."),
	), s.getDeckContract)

	// Resource: deck format contract.
	s.mcp.AddResource(
		mcp.NewResource(DeckFormatURI, "Deck Format Contract",
			mcp.WithResourceDescription("Canonical page.mdx format that all decks must follow."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDeckFormatResource,
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

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listProjects(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	state, err := s.svc.AppState(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(state)
}

func (s *Server) openProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.OpenProject(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail)
}

func (s *Server) saveProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.SaveProject(ctx, path, content, req.GetString("checksum", ""))
	if err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return mcp.NewToolResultError("page.mdx changed since it was opened; reopen the project and retry"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail)
}

func (s *Server) createProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	root, err := req.RequireString("root")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.CreateProject(ctx, projectsvc.CreateProjectRequest{
		Root:      root,
		Name:      name,
		Title:     req.GetString("title", ""),
		Subtitle:  req.GetString("subtitle", ""),
		DateLabel: req.GetString("date_label", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(detail)
}

func (s *Server) validateProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := s.svc.Validate(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) auditProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := s.svc.Audit(ctx, path, req.GetInt("top", validate.DefaultTop))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) validationHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	runs, err := s.svc.History(ctx, path, req.GetInt("limit", 0))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(runs)
}

func (s *Server) previewURL(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	link, err := s.svc.PreviewURL(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(link), nil
}

func (s *Server) getDeckContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DeckFormatContract), nil
}

func (s *Server) readDeckFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      DeckFormatURI,
			MIMEType: "text/markdown",
			Text:     DeckFormatContract,
		},
	}, nil
}
