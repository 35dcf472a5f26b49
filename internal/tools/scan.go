package tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/pyward/internal/extract"
	"github.com/HendryAvila/pyward/internal/scan"
	"github.com/HendryAvila/pyward/internal/session"
	"github.com/HendryAvila/pyward/internal/tracker"
)

// ScanProjectTool handles the scan_project MCP tool.
type ScanProjectTool struct {
	sessions  *session.Registry
	extractor extract.Extractor
	opts      scan.Options
	logger    *zap.Logger
}

// NewScanProjectTool creates a ScanProjectTool. opts.MaxFiles is the
// default cap when the call does not pass max_files.
func NewScanProjectTool(sessions *session.Registry, ex extract.Extractor, opts scan.Options, logger *zap.Logger) *ScanProjectTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanProjectTool{sessions: sessions, extractor: ex, opts: opts, logger: logger.Named("scan_project")}
}

// Definition returns the MCP tool definition for scan_project.
func (t *ScanProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("scan_project",
		mcp.WithDescription(
			"Learn the naming of an existing Python project: extract every definition "+
				"from its .py files (respecting .gitignore) and track them in the session. "+
				"Re-spellings found during the scan are reported as consistency issues.",
		),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Project root directory"),
		),
		mcp.WithNumber("max_files",
			mcp.Description("Maximum number of files to scan"),
		),
		withSession(),
	)
}

type scannedFile struct {
	Path        string `json:"path"`
	Identifiers int    `json:"identifiers"`
}

// Handle processes the scan_project tool call.
func (t *ScanProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := strings.TrimSpace(req.GetString("path", ""))
	if path == "" {
		return mcp.NewToolResultError("'path' is required"), nil
	}
	root, err := filepath.Abs(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("resolving path: %v", err)), nil
	}

	opts := t.opts
	if n := intArg(req, "max_files", 0); n > 0 {
		opts.MaxFiles = n
	}

	report, err := scan.Project(ctx, root, t.extractor, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	files := make([]scannedFile, 0, len(report.Files))
	issues := []ConsistencyIssue{}
	tracked := 0
	t.sessions.Get(sessionArg(req)).Do(func(tr *tracker.Tracker) {
		for _, f := range report.Files {
			files = append(files, scannedFile{Path: f.Path, Identifiers: len(f.Identifiers)})
			for _, id := range f.Identifiers {
				if c := tr.CheckConsistency(id.Name); c != nil {
					issues = append(issues, ConsistencyIssue{
						Identifier: id.Name,
						Type:       id.Kind,
						File:       f.Path,
						Line:       id.Line,
						Issue:      c.Message,
						Existing:   c.Existing,
						Suggestion: c.Suggestion,
					})
				}
				tr.Track(id.Name, id.Kind, tracker.WithFile(f.Path), tracker.WithSignature(id.Signature))
				tracked++
			}
		}
	})

	t.logger.Info("project scanned",
		zap.String("root", root),
		zap.Int("files", len(files)),
		zap.Int("identifiers", tracked),
		zap.Int("consistency_issues", len(issues)),
	)

	return jsonResult(map[string]any{
		"root":                root,
		"files_scanned":       len(files),
		"identifiers_tracked": tracked,
		"truncated":           report.Truncated,
		"skipped":             report.Skipped,
		"files":               files,
		"consistency_issues":  issues,
	})
}
