// Package tools implements the MCP tool handlers.
//
// Each tool is a struct that receives its dependencies through its
// constructor, exposes its schema through Definition(), and processes calls
// in Handle(). User-facing failures are returned as tool errors, never as Go
// errors, so the client always gets a readable message.
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/pyward/internal/session"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// stringMapArg extracts an object argument whose values are all strings.
// A JSON-encoded object passed as a string is accepted too.
func stringMapArg(req mcp.CallToolRequest, key string) (map[string]string, error) {
	raw, ok := req.GetArguments()[key]
	if !ok || raw == nil {
		return nil, nil
	}
	switch v := raw.(type) {
	case map[string]any:
		out := make(map[string]string, len(v))
		for name, content := range v {
			s, ok := content.(string)
			if !ok {
				return nil, fmt.Errorf("'%s.%s' must be a string", key, name)
			}
			out[name] = s
		}
		return out, nil
	case string:
		if v == "" {
			return nil, nil
		}
		var out map[string]string
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, fmt.Errorf("'%s' must be an object of path to content: %w", key, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("'%s' must be an object of path to content", key)
	}
}

// sessionArg returns the session key of the request, defaulting to
// session.DefaultID.
func sessionArg(req mcp.CallToolRequest) string {
	return session.Resolve(req.GetString("session_id", ""))
}

// withSession is the shared session_id parameter.
func withSession() mcp.ToolOption {
	return mcp.WithString("session_id",
		mcp.Description("Tracking session to use. Defaults to \""+session.DefaultID+"\". "+
			"Use new_session to get an isolated one."),
	)
}

// jsonResult renders v as an indented JSON text result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
