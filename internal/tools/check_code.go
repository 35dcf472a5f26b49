package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/pyward/internal/checker"
	"github.com/HendryAvila/pyward/internal/extract"
	"github.com/HendryAvila/pyward/internal/history"
	"github.com/HendryAvila/pyward/internal/session"
	"github.com/HendryAvila/pyward/internal/suggest"
	"github.com/HendryAvila/pyward/internal/tracker"
)

// ConsistencyIssue is a newly seen identifier that re-spells a tracked one.
type ConsistencyIssue struct {
	Identifier string       `json:"identifier"`
	Type       tracker.Kind `json:"type"`
	File       string       `json:"file,omitempty"`
	Line       int          `json:"line"`
	Issue      string       `json:"issue"`
	Existing   []string     `json:"existing"`
	Suggestion string       `json:"suggestion"`
}

// CheckCodeResponse is the JSON body returned by check_code.
type CheckCodeResponse struct {
	Success           bool                 `json:"success"`
	CheckerAvailable  bool                 `json:"checker_available"`
	CheckerError      string               `json:"checker_error,omitempty"`
	Errors            []checker.Diagnostic `json:"errors"`
	Warnings          []checker.Diagnostic `json:"warnings"`
	ConsistencyIssues []ConsistencyIssue   `json:"consistency_issues"`
	Suggestions       []string             `json:"suggestions"`
}

// CheckCodeTool handles the check_code MCP tool.
type CheckCodeTool struct {
	sessions     *session.Registry
	checker      checker.Checker
	extractor    extract.Extractor
	history      *history.Store
	maxCodeBytes int
	logger       *zap.Logger
}

// NewCheckCodeTool creates a CheckCodeTool. history may be nil, in which
// case runs are not recorded; maxCodeBytes <= 0 disables the size limit.
func NewCheckCodeTool(
	sessions *session.Registry,
	chk checker.Checker,
	ex extract.Extractor,
	hist *history.Store,
	maxCodeBytes int,
	logger *zap.Logger,
) *CheckCodeTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckCodeTool{
		sessions:     sessions,
		checker:      chk,
		extractor:    ex,
		history:      hist,
		maxCodeBytes: maxCodeBytes,
		logger:       logger.Named("check_code"),
	}
}

// Definition returns the MCP tool definition for check_code.
func (t *CheckCodeTool) Definition() mcp.Tool {
	return mcp.NewTool("check_code",
		mcp.WithDescription(
			"Type-check a Python snippet with pyrefly and check its definitions against "+
				"the identifiers already tracked in the session. Reports type errors, warnings, "+
				"naming inconsistencies (e.g. getUserData vs get_user_data) and fix suggestions. "+
				"New definitions are tracked unless track_identifiers is false.",
		),
		mcp.WithString("code",
			mcp.Required(),
			mcp.Description("Python source to check"),
		),
		mcp.WithString("filename",
			mcp.Description("File name for the snippet (default check.py). Also recorded as the identifiers' file location."),
		),
		mcp.WithObject("context_files",
			mcp.Description("Additional files for multi-file checking: relative path → content"),
		),
		mcp.WithBoolean("track_identifiers",
			mcp.Description("Track the snippet's definitions for consistency checking (default true)"),
		),
		withSession(),
	)
}

// Handle processes the check_code tool call.
func (t *CheckCodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	code := req.GetString("code", "")
	if code == "" {
		return mcp.NewToolResultError("'code' is required"), nil
	}
	if t.maxCodeBytes > 0 && len(code) > t.maxCodeBytes {
		return mcp.NewToolResultError(fmt.Sprintf("'code' is %d bytes, limit is %d", len(code), t.maxCodeBytes)), nil
	}
	contextFiles, err := stringMapArg(req, "context_files")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	filename := req.GetString("filename", "")
	track := boolArg(req, "track_identifiers", true)
	sessionID := sessionArg(req)

	resp := CheckCodeResponse{
		CheckerAvailable:  true,
		Errors:            []checker.Diagnostic{},
		Warnings:          []checker.Diagnostic{},
		ConsistencyIssues: []ConsistencyIssue{},
		Suggestions:       []string{},
	}

	checkSuccess := true
	res, err := t.checker.Check(ctx, checker.Request{
		Code:         code,
		Filename:     filename,
		ContextFiles: contextFiles,
	})
	switch {
	case errors.Is(err, checker.ErrUnavailable):
		resp.CheckerAvailable = false
	case err != nil:
		// The consistency pass still runs without type diagnostics.
		t.logger.Warn("type check failed", zap.Error(err))
		resp.CheckerAvailable = false
		resp.CheckerError = err.Error()
	default:
		resp.Errors = res.Errors
		resp.Warnings = res.Warnings
		checkSuccess = res.Success
	}

	var ids []extract.Identifier
	if track {
		ids, err = t.extractor.Extract(ctx, []byte(code))
		if err != nil {
			t.logger.Warn("identifier extraction failed", zap.Error(err))
			ids = nil
		}
	}

	sess := t.sessions.Get(sessionID)
	sess.Do(func(tr *tracker.Tracker) {
		for _, id := range ids {
			if c := tr.CheckConsistency(id.Name); c != nil {
				resp.ConsistencyIssues = append(resp.ConsistencyIssues, ConsistencyIssue{
					Identifier: id.Name,
					Type:       id.Kind,
					Line:       id.Line,
					Issue:      c.Message,
					Existing:   c.Existing,
					Suggestion: c.Suggestion,
				})
				resp.Suggestions = append(resp.Suggestions, fmt.Sprintf(
					"Consider using '%s' instead of '%s' for consistency", c.Suggestion, id.Name))
			}
			tr.Track(id.Name, id.Kind, tracker.WithFile(filename), tracker.WithSignature(id.Signature))
		}

		for _, d := range resp.Errors {
			name, ok := suggest.UndefinedName(d.Message)
			if !ok {
				continue
			}
			if c := tr.CheckConsistency(name); c != nil {
				resp.Suggestions = append(resp.Suggestions, suggest.DidYouMean(c.Suggestion, name))
			}
		}
	})

	resp.Success = checkSuccess && len(resp.ConsistencyIssues) == 0

	t.logger.Debug("checked code",
		zap.String("session", sessionID),
		zap.Int("bytes", len(code)),
		zap.Int("errors", len(resp.Errors)),
		zap.Int("consistency_issues", len(resp.ConsistencyIssues)),
		zap.Bool("checker_available", resp.CheckerAvailable),
	)
	t.record(sessionID, filename, resp)

	return jsonResult(resp)
}

func (t *CheckCodeTool) record(sessionID, filename string, resp CheckCodeResponse) {
	if t.history == nil {
		return
	}
	if filename == "" {
		filename = "check.py"
	}
	_, err := t.history.RecordRun(history.Run{
		SessionID:         sessionID,
		Filename:          filename,
		Success:           resp.Success,
		ErrorCount:        len(resp.Errors),
		WarningCount:      len(resp.Warnings),
		ConsistencyIssues: len(resp.ConsistencyIssues),
		CheckerAvailable:  resp.CheckerAvailable,
	})
	if err != nil {
		t.logger.Warn("recording run failed", zap.Error(err))
	}
}
