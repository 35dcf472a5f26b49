package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/pyward/internal/session"
	"github.com/HendryAvila/pyward/internal/suggest"
	"github.com/HendryAvila/pyward/internal/tracker"
)

const noSuggestion = "No specific suggestions available for this error"

// SuggestFixTool handles the suggest_fix MCP tool.
type SuggestFixTool struct {
	sessions *session.Registry
}

// NewSuggestFixTool creates a SuggestFixTool.
func NewSuggestFixTool(sessions *session.Registry) *SuggestFixTool {
	return &SuggestFixTool{sessions: sessions}
}

// Definition returns the MCP tool definition for suggest_fix.
func (t *SuggestFixTool) Definition() mcp.Tool {
	return mcp.NewTool("suggest_fix",
		mcp.WithDescription(
			"Suggest fixes for a Python or type checker error message. Undefined names "+
				"are matched against the session's tracked identifiers.",
		),
		mcp.WithString("error_message",
			mcp.Required(),
			mcp.Description("The error message to analyse"),
		),
		mcp.WithString("code_context",
			mcp.Description("Code around the error (currently informational)"),
		),
		withSession(),
	)
}

// Handle processes the suggest_fix tool call.
func (t *SuggestFixTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message := req.GetString("error_message", "")
	if message == "" {
		return mcp.NewToolResultError("'error_message' is required"), nil
	}

	var suggestions []string
	t.sessions.Get(sessionArg(req)).Do(func(tr *tracker.Tracker) {
		suggestions = suggest.Suggest(message, func(name string) []string {
			if c := tr.CheckConsistency(name); c != nil {
				return c.Existing
			}
			return nil
		})
	})

	has := len(suggestions) > 0
	if !has {
		suggestions = []string{noSuggestion}
	}
	return jsonResult(map[string]any{
		"error":           message,
		"suggestions":     suggestions,
		"has_suggestions": has,
	})
}
