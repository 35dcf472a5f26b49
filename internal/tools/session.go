package tools

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/pyward/internal/history"
	"github.com/HendryAvila/pyward/internal/session"
)

// ClearSessionTool handles the clear_session MCP tool.
type ClearSessionTool struct {
	sessions *session.Registry
	history  *history.Store
	logger   *zap.Logger
}

// NewClearSessionTool creates a ClearSessionTool. history may be nil; when
// set, dropping a session also deletes its recorded runs.
func NewClearSessionTool(sessions *session.Registry, hist *history.Store, logger *zap.Logger) *ClearSessionTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClearSessionTool{sessions: sessions, history: hist, logger: logger.Named("clear_session")}
}

// Definition returns the MCP tool definition for clear_session.
func (t *ClearSessionTool) Definition() mcp.Tool {
	return mcp.NewTool("clear_session",
		mcp.WithDescription(
			"Forget every tracked identifier in the session and start fresh. "+
				"Run history is kept unless drop is true.",
		),
		mcp.WithBoolean("drop",
			mcp.Description("Remove the session entirely, including its check history, instead of just emptying it"),
		),
		withSession(),
	)
}

// Handle processes the clear_session tool call.
func (t *ClearSessionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := sessionArg(req)
	if boolArg(req, "drop", false) {
		t.sessions.Drop(id)
		var runsDeleted int64
		if t.history != nil {
			n, err := t.history.DeleteSession(id)
			if err != nil {
				t.logger.Warn("deleting session history failed", zap.String("session", id), zap.Error(err))
			}
			runsDeleted = n
		}
		return jsonResult(map[string]any{
			"status":       "dropped",
			"message":      "Session " + id + " has been removed",
			"runs_deleted": runsDeleted,
		})
	}
	// Clearing a session that was never used still yields an empty session.
	t.sessions.Get(id)
	t.sessions.Clear(id)
	return jsonResult(map[string]any{
		"status":  "cleared",
		"message": "Session tracking has been reset",
	})
}

// NewSessionTool handles the new_session MCP tool.
type NewSessionTool struct {
	sessions *session.Registry
}

// NewNewSessionTool creates a NewSessionTool.
func NewNewSessionTool(sessions *session.Registry) *NewSessionTool {
	return &NewSessionTool{sessions: sessions}
}

// Definition returns the MCP tool definition for new_session.
func (t *NewSessionTool) Definition() mcp.Tool {
	return mcp.NewTool("new_session",
		mcp.WithDescription(
			"Allocate an isolated tracking session. Pass the returned session_id to the other tools.",
		),
	)
}

// Handle processes the new_session tool call.
func (t *NewSessionTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s := t.sessions.Get(t.sessions.NewID())
	return jsonResult(map[string]any{
		"session_id": s.ID,
		"created_at": s.CreatedAt.Format(time.RFC3339Nano),
	})
}
