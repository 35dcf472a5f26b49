// Package prompts implements the MCP prompt handlers.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// NamingReviewPrompt handles the naming-review MCP prompt.
// It asks the AI to audit the session's identifiers and fix re-spellings.
type NamingReviewPrompt struct{}

// NewNamingReviewPrompt creates a NamingReviewPrompt.
func NewNamingReviewPrompt() *NamingReviewPrompt {
	return &NamingReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *NamingReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("naming-review",
		mcp.WithPromptDescription(
			"Review identifier naming in the current session: list what is tracked, "+
				"find re-spellings of existing names and fix them consistently.",
		),
		mcp.WithArgument("project_path",
			mcp.ArgumentDescription("Optional project root to scan first"),
		),
		mcp.WithArgument("session_id",
			mcp.ArgumentDescription("Tracking session to review. Default: default"),
		),
	)
}

// Handle processes the naming-review prompt request.
func (p *NamingReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	sessionID := "default"
	projectPath := ""
	if args := req.Params.Arguments; args != nil {
		if id, ok := args["session_id"]; ok && id != "" {
			sessionID = id
		}
		projectPath = args["project_path"]
	}

	scanStep := ""
	if projectPath != "" {
		scanStep = fmt.Sprintf("0. Run `scan_project` with path='%s' and session_id='%s' to learn the existing names\n",
			projectPath, sessionID)
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Naming review for session %s", sessionID),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"Please review identifier naming in session '%s'.\n\n"+
						"%s"+
						"1. Run `list_identifiers` with session_id='%s'\n"+
						"2. For any name that looks like another spelling of an existing one, run `check_consistency`\n"+
						"3. For each inconsistency, pick the spelling already in use and update every occurrence, not just one\n"+
						"4. Re-run `check_code` on the changed code to confirm no consistency issues remain\n"+
						"5. Summarize what you renamed and why",
					sessionID, scanStep, sessionID,
				)),
			},
		},
	}, nil
}

// SessionStatusPrompt handles the session-status MCP prompt.
type SessionStatusPrompt struct{}

// NewSessionStatusPrompt creates a SessionStatusPrompt.
func NewSessionStatusPrompt() *SessionStatusPrompt {
	return &SessionStatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *SessionStatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("session-status",
		mcp.WithPromptDescription(
			"Show what pyward is tracking: sessions, identifiers and recent check results.",
		),
	)
}

// Handle processes the session-status prompt request.
func (p *SessionStatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "pyward session status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please read the `pyward://sessions` resource and run `list_identifiers`.\n\n" +
						"Then:\n" +
						"1. Show how many identifiers each session tracks, grouped by kind\n" +
						"2. If `check_history` is available, summarize the most recent runs\n" +
						"3. Point out any runs that failed because of naming inconsistencies",
				),
			},
		},
	}, nil
}
