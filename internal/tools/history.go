package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/pyward/internal/history"
)

// CheckHistoryTool handles the check_history MCP tool.
type CheckHistoryTool struct {
	store *history.Store
}

// NewCheckHistoryTool creates a CheckHistoryTool with the given history store.
func NewCheckHistoryTool(store *history.Store) *CheckHistoryTool {
	return &CheckHistoryTool{store: store}
}

// Definition returns the MCP tool definition for check_history.
func (t *CheckHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("check_history",
		mcp.WithDescription("Show the most recent check_code runs of the session, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of runs (default 20)"),
		),
		withSession(),
	)
}

// Handle processes the check_history tool call.
func (t *CheckHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := sessionArg(req)
	runs, err := t.store.Runs(id, intArg(req, "limit", 0))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read history: %v", err)), nil
	}
	return jsonResult(map[string]any{
		"session_id": id,
		"count":      len(runs),
		"runs":       runs,
	})
}
