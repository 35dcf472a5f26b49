// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations from
// the configuration and injects them into the tools, prompts and resources.
// No business logic lives here, only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/HendryAvila/pyward/internal/checker"
	"github.com/HendryAvila/pyward/internal/config"
	"github.com/HendryAvila/pyward/internal/extract"
	"github.com/HendryAvila/pyward/internal/history"
	"github.com/HendryAvila/pyward/internal/prompts"
	"github.com/HendryAvila/pyward/internal/resources"
	"github.com/HendryAvila/pyward/internal/scan"
	"github.com/HendryAvila/pyward/internal/session"
	"github.com/HendryAvila/pyward/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function closes the history database and must be
// called on shutdown (typically via defer). It is always non-nil and safe
// to call even if history init failed.
func New(cfg *config.Config, logger *zap.Logger) (*server.MCPServer, func(), error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// --- Create shared dependencies ---

	extractor, err := extract.New(cfg.Extract.Engine)
	if err != nil {
		return nil, noop, fmt.Errorf("creating extractor: %w", err)
	}
	pyrefly := checker.NewPyrefly(cfg.Checker.Binary, cfg.CheckerTimeout(), logger)
	sessions := session.NewRegistry()

	// History is optional: if it fails to open, every other tool keeps
	// working and only check_history is left out.
	cleanup := noop
	var hist *history.Store
	if cfg.History.Enabled {
		hist, err = history.New(history.Config{DataDir: cfg.History.DataDir})
		if err != nil {
			logger.Warn("history disabled", zap.Error(err))
			hist = nil
		} else {
			cleanup = func() {
				if err := hist.Close(); err != nil {
					logger.Warn("history store close", zap.Error(err))
				}
			}
		}
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"pyward",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	checkCode := tools.NewCheckCodeTool(sessions, pyrefly, extractor, hist, cfg.Limits.MaxCodeBytes, logger)
	s.AddTool(checkCode.Definition(), checkCode.Handle)

	trackTool := tools.NewTrackIdentifierTool(sessions)
	s.AddTool(trackTool.Definition(), trackTool.Handle)

	consistencyTool := tools.NewCheckConsistencyTool(sessions)
	s.AddTool(consistencyTool.Definition(), consistencyTool.Handle)

	infoTool := tools.NewIdentifierInfoTool(sessions)
	s.AddTool(infoTool.Definition(), infoTool.Handle)

	listTool := tools.NewListIdentifiersTool(sessions)
	s.AddTool(listTool.Definition(), listTool.Handle)

	suggestTool := tools.NewSuggestFixTool(sessions)
	s.AddTool(suggestTool.Definition(), suggestTool.Handle)

	clearTool := tools.NewClearSessionTool(sessions, hist, logger)
	s.AddTool(clearTool.Definition(), clearTool.Handle)

	newSession := tools.NewNewSessionTool(sessions)
	s.AddTool(newSession.Definition(), newSession.Handle)

	scanTool := tools.NewScanProjectTool(sessions, extractor, scan.Options{
		MaxFiles:    cfg.Limits.MaxScanFiles,
		MaxFileSize: cfg.Limits.MaxFileBytes,
	}, logger)
	s.AddTool(scanTool.Definition(), scanTool.Handle)

	if hist != nil {
		historyTool := tools.NewCheckHistoryTool(hist)
		s.AddTool(historyTool.Definition(), historyTool.Handle)
	}

	// --- Register prompts ---

	reviewPrompt := prompts.NewNamingReviewPrompt()
	s.AddPrompt(reviewPrompt.Definition(), reviewPrompt.Handle)

	statusPrompt := prompts.NewSessionStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(sessions, hist)
	s.AddResource(resourceHandler.SessionsResource(), resourceHandler.HandleSessions)
	if hist != nil {
		s.AddResource(resourceHandler.HistoryStatsResource(), resourceHandler.HandleHistoryStats)
	}

	logger.Info("server ready",
		zap.String("version", Version),
		zap.String("engine", cfg.Extract.Engine),
		zap.Bool("checker_available", pyrefly.Available()),
		zap.Bool("history", hist != nil),
	)

	return s, cleanup, nil
}

func noop() {}

// serverInstructions returns the system instructions that tell the AI
// how to use pyward effectively.
func serverInstructions() string {
	return `You have access to pyward, a Python code checker with session-wide naming consistency.

## WHAT IT DOES

pyward runs the pyrefly type checker on Python code you write and remembers
every identifier you define during the session. When new code spells an
existing name differently (getUserData vs get_user_data, fetch_user vs
get_user), it reports a consistency issue and suggests the existing name.

## HOW TO USE IT

1. At the start of work on an existing project, call scan_project on its root
   so pyward learns the names already in use.
2. Before presenting Python code, call check_code with it. Fix every type error
   and every consistency issue before moving on.
3. When you are unsure of a name, call check_consistency first.
4. Use track_identifier for names defined outside the code you check
   (e.g. from a library or another file you did not pass in).
5. For an error you do not understand, call suggest_fix.

## SESSIONS

Every tool takes an optional session_id. The "default" session is shared.
Call new_session for an isolated one (e.g. one per project), and pass its
id to every subsequent call. clear_session forgets a session's identifiers.

## WHEN THE CHECKER IS MISSING

If check_code returns checker_available=false, pyrefly is not installed or
failed to run (checker_error says why). Naming consistency still works; tell
the user type checking was skipped.`
}
