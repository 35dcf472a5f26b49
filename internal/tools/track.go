package tools

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/pyward/internal/session"
	"github.com/HendryAvila/pyward/internal/tracker"
)

// TrackIdentifierTool handles the track_identifier MCP tool.
type TrackIdentifierTool struct {
	sessions *session.Registry
}

// NewTrackIdentifierTool creates a TrackIdentifierTool.
func NewTrackIdentifierTool(sessions *session.Registry) *TrackIdentifierTool {
	return &TrackIdentifierTool{sessions: sessions}
}

// Definition returns the MCP tool definition for track_identifier.
func (t *TrackIdentifierTool) Definition() mcp.Tool {
	return mcp.NewTool("track_identifier",
		mcp.WithDescription(
			"Explicitly register an identifier so later code is checked against its spelling. "+
				"Re-tracking an existing name updates its occurrences, signatures and files.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Identifier name"),
		),
		mcp.WithString("type",
			mcp.Required(),
			mcp.Description("Identifier kind, usually one of: "+strings.Join(tracker.KindValues(), ", ")+
				". Other values are accepted as-is."),
		),
		mcp.WithString("signature",
			mcp.Description("Function or method signature"),
		),
		mcp.WithString("file_path",
			mcp.Description("File where the identifier is defined"),
		),
		withSession(),
	)
}

// Handle processes the track_identifier tool call.
func (t *TrackIdentifierTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := strings.TrimSpace(req.GetString("name", ""))
	kind := tracker.Kind(strings.TrimSpace(req.GetString("type", "")))
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	if kind == "" {
		return mcp.NewToolResultError("'type' is required"), nil
	}

	var rec *tracker.Record
	t.sessions.Get(sessionArg(req)).Do(func(tr *tracker.Tracker) {
		tr.Track(name, kind,
			tracker.WithSignature(req.GetString("signature", "")),
			tracker.WithFile(req.GetString("file_path", "")),
		)
		rec, _ = tr.Lookup(name)
	})

	return jsonResult(map[string]any{
		"tracked":    true,
		"identifier": name,
		"type":       kind,
		"timestamp":  rec.LastSeenAt.Format(time.RFC3339Nano),
	})
}
