// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Raido CRM tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/catalog"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/noteledger"
	"github.com/starford/raido/internal/pipeline"
	"github.com/starford/raido/internal/scheduling"
	"github.com/starford/raido/internal/store"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp      *server.MCPServer
	store    store.Store
	catalog  *catalog.Catalog
	pipeline *pipeline.Controller
	engine   *scheduling.Engine
	notes    *noteledger.Ledger
}

// New creates a new MCP server with all Raido tools registered.
func New(st store.Store, cat *catalog.Catalog, ctrl *pipeline.Controller,
	eng *scheduling.Engine, ledger *noteledger.Ledger) *Server {
	s := &Server{store: st, catalog: cat, pipeline: ctrl, engine: eng, notes: ledger}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("search_leads",
		mcp.WithDescription("Search leads by name, phone, or address (case-insensitive substring)."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchLeads)

	s.mcp.AddTool(mcp.NewTool("get_lead",
		mcp.WithDescription("Fetch a lead with its full note history."),
		mcp.WithString("lead_id", mcp.Required(), mcp.Description("Lead id")),
	), s.getLead)

	s.mcp.AddTool(mcp.NewTool("list_stages",
		mcp.WithDescription("List the active pipeline stages in board order."),
	), s.listStages)

	s.mcp.AddTool(mcp.NewTool("move_stage",
		mcp.WithDescription("Move a lead to another active pipeline stage. "+
			"The terminal stages Closed and Dead cannot be set here; they require "+
			"the interactive confirmation workflow."),
		mcp.WithString("lead_id", mcp.Required(), mcp.Description("Lead id")),
		mcp.WithString("stage", mcp.Required(), mcp.Description("Target stage name")),
	), s.moveStage)

	s.mcp.AddTool(mcp.NewTool("add_note",
		mcp.WithDescription("Append a free-text note to a lead."),
		mcp.WithString("lead_id", mcp.Required(), mcp.Description("Lead id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Note text (non-empty)")),
	), s.addNote)

	s.mcp.AddTool(mcp.NewTool("list_schedules",
		mcp.WithDescription("List a lead's calls and appointments by date, with derived "+
			"MISSED status applied."),
		mcp.WithString("lead_id", mcp.Required(), mcp.Description("Lead id")),
	), s.listSchedules)

	s.mcp.AddTool(mcp.NewTool("create_schedule",
		mcp.WithDescription("Schedule a call or appointment for a lead. "+
			"Date is ISO-8601; a past date immediately shows as MISSED."),
		mcp.WithString("lead_id", mcp.Required(), mcp.Description("Lead id")),
		mcp.WithString("scheduled_date", mcp.Required(), mcp.Description("ISO-8601 timestamp")),
		mcp.WithString("type", mcp.Required(), mcp.Description("CALL or APPOINTMENT")),
		mcp.WithString("notes", mcp.Description("Optional notes")),
	), s.createSchedule)

	// Resource: pipeline semantics contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://pipeline-contract", "Pipeline Contract",
			mcp.WithResourceDescription("How stages, notes, and schedules behave."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readPipelineContractResource,
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

func (s *Server) searchLeads(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	leads, err := s.store.ListLeads()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	matched := pipeline.FilterLeads(leads, query, models.StageFilterAll)
	out, _ := json.MarshalIndent(matched, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getLead(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("lead_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lead, err := s.store.GetLead(id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	notes, _ := s.notes.List(id)
	out, _ := json.MarshalIndent(map[string]any{"lead": lead, "notes": notes}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listStages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stages := s.catalog.ListActiveStages()
	var names []string
	for _, st := range stages {
		names = append(names, fmt.Sprintf("%d. %s (%s)", st.Order, st.Name, st.DisplayName))
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

func (s *Server) moveStage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("lead_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stage, err := req.RequireString("stage")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lead, err := s.pipeline.Move(id, stage)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("lead %s moved to %s", lead.ID, lead.Stage)), nil
}

func (s *Server) addNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("lead_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.notes.Add(id, content, "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("note %s added", note.ID)), nil
}

func (s *Server) listSchedules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("lead_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := s.engine.ListForLead(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(items, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createSchedule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("lead_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	dateStr, err := req.RequireString("scheduled_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	notes := ""
	if n, nErr := req.RequireString("notes"); nErr == nil {
		notes = n
	}

	date, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return mcp.NewToolResultError("scheduled_date must be ISO-8601"), nil
	}

	sch, err := s.engine.Create(scheduling.CreateInput{
		LeadID:        id,
		ScheduledDate: date,
		Type:          typ,
		Notes:         notes,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("schedule %s created for %s",
		sch.ID, sch.ScheduledDate.Format(time.RFC3339))), nil
}

func (s *Server) readPipelineContractResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://pipeline-contract",
			MIMEType: "text/markdown",
			Text:     PipelineContract,
		},
	}, nil
}
