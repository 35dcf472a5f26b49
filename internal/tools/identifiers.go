package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/pyward/internal/session"
	"github.com/HendryAvila/pyward/internal/tracker"
)

// IdentifierInfoTool handles the identifier_info MCP tool.
type IdentifierInfoTool struct {
	sessions *session.Registry
}

// NewIdentifierInfoTool creates an IdentifierInfoTool.
func NewIdentifierInfoTool(sessions *session.Registry) *IdentifierInfoTool {
	return &IdentifierInfoTool{sessions: sessions}
}

// Definition returns the MCP tool definition for identifier_info.
func (t *IdentifierInfoTool) Definition() mcp.Tool {
	return mcp.NewTool("identifier_info",
		mcp.WithDescription("Show everything tracked about one identifier."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Identifier name"),
		),
		withSession(),
	)
}

// Handle processes the identifier_info tool call.
func (t *IdentifierInfoTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}

	var rec *tracker.Record
	t.sessions.Get(sessionArg(req)).Do(func(tr *tracker.Tracker) {
		rec, _ = tr.Lookup(name)
	})
	if rec == nil {
		return mcp.NewToolResultError(fmt.Sprintf("identifier %q is not tracked", name)), nil
	}
	return jsonResult(rec)
}

// ListIdentifiersTool handles the list_identifiers MCP tool.
type ListIdentifiersTool struct {
	sessions *session.Registry
}

// NewListIdentifiersTool creates a ListIdentifiersTool.
func NewListIdentifiersTool(sessions *session.Registry) *ListIdentifiersTool {
	return &ListIdentifiersTool{sessions: sessions}
}

// Definition returns the MCP tool definition for list_identifiers.
func (t *ListIdentifiersTool) Definition() mcp.Tool {
	return mcp.NewTool("list_identifiers",
		mcp.WithDescription(
			"List tracked identifiers in the order they were first seen, optionally filtered by kind.",
		),
		mcp.WithString("type_filter",
			mcp.Description("Only list identifiers of this kind"),
		),
		withSession(),
	)
}

// Handle processes the list_identifiers tool call.
func (t *ListIdentifiersTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind := tracker.Kind(strings.TrimSpace(req.GetString("type_filter", "")))

	var records []tracker.Record
	t.sessions.Get(sessionArg(req)).Do(func(tr *tracker.Tracker) {
		records = tr.List(kind)
	})

	return jsonResult(map[string]any{
		"count":       len(records),
		"identifiers": records,
	})
}
