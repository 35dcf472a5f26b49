package tools

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/pyward/internal/session"
	"github.com/HendryAvila/pyward/internal/tracker"
)

// CheckConsistencyTool handles the check_consistency MCP tool.
type CheckConsistencyTool struct {
	sessions *session.Registry
}

// NewCheckConsistencyTool creates a CheckConsistencyTool.
func NewCheckConsistencyTool(sessions *session.Registry) *CheckConsistencyTool {
	return &CheckConsistencyTool{sessions: sessions}
}

// Definition returns the MCP tool definition for check_consistency.
func (t *CheckConsistencyTool) Definition() mcp.Tool {
	return mcp.NewTool("check_consistency",
		mcp.WithDescription(
			"Check whether a name is a re-spelling of an identifier already tracked "+
				"(different case style or verb synonym). Does not track the name.",
		),
		mcp.WithString("identifier",
			mcp.Required(),
			mcp.Description("Identifier to check"),
		),
		withSession(),
	)
}

// Handle processes the check_consistency tool call.
func (t *CheckConsistencyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("identifier", ""))
	if name == "" {
		return mcp.NewToolResultError("'identifier' is required"), nil
	}

	var (
		result *tracker.ConsistencyResult
		rec    *tracker.Record
	)
	t.sessions.Get(sessionArg(req)).Do(func(tr *tracker.Tracker) {
		result = tr.CheckConsistency(name)
		rec, _ = tr.Lookup(name)
	})

	if result != nil {
		return jsonResult(map[string]any{
			"consistent":       false,
			"issue":            result.Message,
			"existing_similar": result.Existing,
			"suggestion":       result.Suggestion,
		})
	}
	if rec != nil {
		return jsonResult(map[string]any{
			"consistent": true,
			"exists":     true,
			"info": map[string]any{
				"type":        rec.Kind,
				"occurrences": rec.OccurrenceCount,
				"first_seen":  rec.FirstSeenAt.Format(time.RFC3339Nano),
				"last_seen":   rec.LastSeenAt.Format(time.RFC3339Nano),
			},
		})
	}
	return jsonResult(map[string]any{
		"consistent": true,
		"exists":     false,
		"message":    "No consistency issues found",
	})
}
