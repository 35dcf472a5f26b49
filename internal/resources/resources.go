// Package resources implements the MCP resource handlers.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (pyward://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/pyward/internal/history"
	"github.com/HendryAvila/pyward/internal/session"
)

const (
	SessionsURI     = "pyward://sessions"
	HistoryStatsURI = "pyward://history/stats"
)

// Handler manages pyward resource endpoints.
type Handler struct {
	sessions *session.Registry
	history  *history.Store
}

// NewHandler creates a resource Handler with its dependencies. hist may be
// nil when history is disabled.
func NewHandler(sessions *session.Registry, hist *history.Store) *Handler {
	return &Handler{sessions: sessions, history: hist}
}

// SessionsResource returns the MCP resource definition for the session list.
func (h *Handler) SessionsResource() mcp.Resource {
	return mcp.NewResource(
		SessionsURI,
		"Tracking Sessions",
		mcp.WithResourceDescription("Live tracking sessions with their identifier counts"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleSessions returns every live session as JSON.
func (h *Handler) HandleSessions(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, map[string]any{
		"sessions": h.sessions.List(),
	})
}

// HistoryStatsResource returns the MCP resource definition for history statistics.
func (h *Handler) HistoryStatsResource() mcp.Resource {
	return mcp.NewResource(
		HistoryStatsURI,
		"Check History Statistics",
		mcp.WithResourceDescription("Aggregate counts of recorded check_code runs"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleHistoryStats returns aggregate run statistics as JSON.
func (h *Handler) HandleHistoryStats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	if h.history == nil {
		return errorResource(req.Params.URI, "history is disabled"), nil
	}
	stats, err := h.history.Stats()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}
	return jsonContents(req.Params.URI, historyStats{Database: h.history.Path(), Stats: stats})
}

type historyStats struct {
	Database string `json:"database"`
	*history.Stats
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
