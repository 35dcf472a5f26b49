package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/HendryAvila/pyward/internal/checker"
	"github.com/HendryAvila/pyward/internal/extract"
	"github.com/HendryAvila/pyward/internal/history"
	"github.com/HendryAvila/pyward/internal/scan"
	"github.com/HendryAvila/pyward/internal/session"
	"github.com/HendryAvila/pyward/internal/tracker"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newRegistry() *session.Registry {
	return session.NewRegistry(tracker.WithClock(func() time.Time { return fixedNow }))
}

// fakeChecker returns a canned result or error.
type fakeChecker struct {
	result *checker.Result
	err    error
	got    checker.Request
}

func (f *fakeChecker) Check(_ context.Context, req checker.Request) (*checker.Result, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func cleanResult() *checker.Result {
	return &checker.Result{Success: true, Errors: []checker.Diagnostic{}, Warnings: []checker.Diagnostic{}}
}

func newTestHistory(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.New(history.Config{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// decode unmarshals a JSON tool result into v.
func decode(t *testing.T, r *mcp.CallToolResult, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(resultText(r)), v); err != nil {
		t.Fatalf("result is not JSON: %v\n%s", err, resultText(r))
	}
}

// mustNotError asserts the Handle call succeeded.
func mustNotError(t *testing.T, r *mcp.CallToolResult, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if r.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(r))
	}
}

// mustBeToolError asserts the Handle call returns a tool error (not a Go error).
func mustBeToolError(t *testing.T, r *mcp.CallToolResult, err error, wantSubstr string) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected Go error: %v", err)
	}
	if !r.IsError {
		t.Fatalf("expected tool error containing %q, got success: %s", wantSubstr, resultText(r))
	}
	if wantSubstr != "" && !strings.Contains(resultText(r), wantSubstr) {
		t.Errorf("error text %q does not contain %q", resultText(r), wantSubstr)
	}
}

func track(t *testing.T, reg *session.Registry, sessionID, name string, kind tracker.Kind) {
	t.Helper()
	r, err := NewTrackIdentifierTool(reg).Handle(context.Background(), makeReq(map[string]interface{}{
		"name":       name,
		"type":       string(kind),
		"session_id": sessionID,
	}))
	mustNotError(t, r, err)
}

// ─── helpers ─────────────────────────────────────────────────────────────────

func TestStringMapArg(t *testing.T) {
	got, err := stringMapArg(makeReq(map[string]interface{}{
		"files": map[string]interface{}{"a.py": "x = 1"},
	}), "files")
	if err != nil || got["a.py"] != "x = 1" {
		t.Errorf("object form = %v, %v", got, err)
	}

	got, err = stringMapArg(makeReq(map[string]interface{}{
		"files": `{"b.py": "y = 2"}`,
	}), "files")
	if err != nil || got["b.py"] != "y = 2" {
		t.Errorf("string form = %v, %v", got, err)
	}

	got, err = stringMapArg(makeReq(map[string]interface{}{}), "files")
	if err != nil || got != nil {
		t.Errorf("missing = %v, %v", got, err)
	}

	if _, err := stringMapArg(makeReq(map[string]interface{}{
		"files": map[string]interface{}{"a.py": 3.0},
	}), "files"); err == nil {
		t.Error("non-string content should fail")
	}
	if _, err := stringMapArg(makeReq(map[string]interface{}{"files": 1.0}), "files"); err == nil {
		t.Error("number should fail")
	}
}

func TestSessionArgDefaults(t *testing.T) {
	if got := sessionArg(makeReq(nil)); got != session.DefaultID {
		t.Errorf("sessionArg = %q, want %q", got, session.DefaultID)
	}
	if got := sessionArg(makeReq(map[string]interface{}{"session_id": "abc"})); got != "abc" {
		t.Errorf("sessionArg = %q, want abc", got)
	}
}

// ─── Definitions ─────────────────────────────────────────────────────────────

func TestDefinitions_HaveSessionParam(t *testing.T) {
	reg := newRegistry()
	defs := []mcp.Tool{
		NewCheckCodeTool(reg, &fakeChecker{}, extract.NewRegex(), nil, 0, nil).Definition(),
		NewTrackIdentifierTool(reg).Definition(),
		NewCheckConsistencyTool(reg).Definition(),
		NewIdentifierInfoTool(reg).Definition(),
		NewListIdentifiersTool(reg).Definition(),
		NewSuggestFixTool(reg).Definition(),
		NewClearSessionTool(reg, nil, nil).Definition(),
		NewScanProjectTool(reg, extract.NewRegex(), scan.Options{}, nil).Definition(),
		NewCheckHistoryTool(nil).Definition(),
	}
	for _, def := range defs {
		if _, ok := def.InputSchema.Properties["session_id"]; !ok {
			t.Errorf("%s: missing 'session_id' parameter", def.Name)
		}
	}
}

func TestCheckCodeTool_Definition(t *testing.T) {
	def := NewCheckCodeTool(newRegistry(), &fakeChecker{}, extract.NewRegex(), nil, 0, nil).Definition()
	if def.Name != "check_code" {
		t.Errorf("tool name = %q, want check_code", def.Name)
	}
	for _, p := range []string{"code", "filename", "context_files", "track_identifiers"} {
		if _, ok := def.InputSchema.Properties[p]; !ok {
			t.Errorf("missing %q parameter", p)
		}
	}
	if len(def.InputSchema.Required) != 1 || def.InputSchema.Required[0] != "code" {
		t.Errorf("required = %v, want [code]", def.InputSchema.Required)
	}
}

// ─── CheckCodeTool ───────────────────────────────────────────────────────────

func TestCheckCodeTool_CleanCodeIsTracked(t *testing.T) {
	reg := newRegistry()
	fc := &fakeChecker{result: cleanResult()}
	tool := NewCheckCodeTool(reg, fc, extract.NewRegex(), nil, 0, zap.NewNop())

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"code":     "def get_user_data(user_id):\n    return {}\n",
		"filename": "users.py",
		"context_files": map[string]interface{}{
			"helpers.py": "def helper(): pass\n",
		},
	}))
	mustNotError(t, r, err)

	var resp CheckCodeResponse
	decode(t, r, &resp)
	if !resp.Success || !resp.CheckerAvailable {
		t.Errorf("resp = %+v, want success with checker", resp)
	}
	if fc.got.Filename != "users.py" || fc.got.ContextFiles["helpers.py"] == "" {
		t.Errorf("checker request = %+v", fc.got)
	}

	sess, ok := reg.Peek(session.DefaultID)
	if !ok {
		t.Fatal("default session should exist")
	}
	sess.Do(func(tr *tracker.Tracker) {
		rec, ok := tr.Lookup("get_user_data")
		if !ok {
			t.Fatal("get_user_data should be tracked")
		}
		if len(rec.FileLocations) != 1 || rec.FileLocations[0] != "users.py" {
			t.Errorf("files = %v, want [users.py]", rec.FileLocations)
		}
	})
}

func TestCheckCodeTool_ReportsInconsistency(t *testing.T) {
	reg := newRegistry()
	track(t, reg, "", "get_user_data", tracker.KindFunction)
	tool := NewCheckCodeTool(reg, &fakeChecker{result: cleanResult()}, extract.NewRegex(), nil, 0, nil)

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"code": "def getUserData(uid):\n    pass\n",
	}))
	mustNotError(t, r, err)

	var resp CheckCodeResponse
	decode(t, r, &resp)
	if resp.Success {
		t.Error("Success should be false with a consistency issue")
	}
	if len(resp.ConsistencyIssues) != 1 {
		t.Fatalf("issues = %+v, want 1", resp.ConsistencyIssues)
	}
	issue := resp.ConsistencyIssues[0]
	if issue.Identifier != "getUserData" || issue.Suggestion != "get_user_data" || issue.Line != 1 ||
		issue.Type != tracker.KindFunction {
		t.Errorf("unexpected issue: %+v", issue)
	}
	want := "Consider using 'get_user_data' instead of 'getUserData' for consistency"
	if len(resp.Suggestions) == 0 || resp.Suggestions[0] != want {
		t.Errorf("suggestions = %v, want %q first", resp.Suggestions, want)
	}
}

func TestCheckCodeTool_DidYouMean(t *testing.T) {
	reg := newRegistry()
	track(t, reg, "", "get_user_data", tracker.KindFunction)
	res := cleanResult()
	res.Success = false
	res.Errors = []checker.Diagnostic{{Line: 1, Message: "undefined name 'getUserData'", Severity: checker.SeverityError}}
	tool := NewCheckCodeTool(reg, &fakeChecker{result: res}, extract.NewRegex(), nil, 0, nil)

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"code": "print(getUserData(1))\n",
	}))
	mustNotError(t, r, err)

	var resp CheckCodeResponse
	decode(t, r, &resp)
	if resp.Success {
		t.Error("Success should be false with checker errors")
	}
	found := false
	for _, s := range resp.Suggestions {
		if s == "Did you mean 'get_user_data' instead of 'getUserData'?" {
			found = true
		}
	}
	if !found {
		t.Errorf("suggestions = %v, want did-you-mean", resp.Suggestions)
	}
}

func TestCheckCodeTool_NoTracking(t *testing.T) {
	reg := newRegistry()
	tool := NewCheckCodeTool(reg, &fakeChecker{result: cleanResult()}, extract.NewRegex(), nil, 0, nil)

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"code":              "x = 1\n",
		"track_identifiers": false,
	}))
	mustNotError(t, r, err)

	reg.Get("").Do(func(tr *tracker.Tracker) {
		if tr.Len() != 0 {
			t.Errorf("tracker has %d records, want 0", tr.Len())
		}
	})
}

func TestCheckCodeTool_CheckerUnavailable(t *testing.T) {
	reg := newRegistry()
	hist := newTestHistory(t)
	tool := NewCheckCodeTool(reg, &fakeChecker{err: checker.ErrUnavailable}, extract.NewRegex(), hist, 0, nil)

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"code":       "value = 1\n",
		"session_id": "s1",
	}))
	mustNotError(t, r, err)

	var resp CheckCodeResponse
	decode(t, r, &resp)
	if resp.CheckerAvailable {
		t.Error("checker_available should be false")
	}
	if !resp.Success {
		t.Error("Success should be true: no consistency issues and no type check")
	}
	if resp.Errors == nil || resp.Warnings == nil {
		t.Error("errors and warnings should encode as empty arrays")
	}

	// Tracking still works while the checker is down.
	reg.Get("s1").Do(func(tr *tracker.Tracker) {
		if _, ok := tr.Lookup("value"); !ok {
			t.Error("value should be tracked")
		}
	})

	runs, err := hist.Runs("s1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].CheckerAvailable || runs[0].Filename != "check.py" {
		t.Errorf("runs = %+v", runs)
	}
}

func TestCheckCodeTool_Errors(t *testing.T) {
	reg := newRegistry()
	tool := NewCheckCodeTool(reg, &fakeChecker{result: cleanResult()}, extract.NewRegex(), nil, 8, nil)

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	mustBeToolError(t, r, err, "'code' is required")

	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{"code": "x = 123456789\n"}))
	mustBeToolError(t, r, err, "limit")

	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"code":          "x = 1",
		"context_files": 5.0,
	}))
	mustBeToolError(t, r, err, "context_files")
}

func TestCheckCodeTool_CheckerFailureStillTracks(t *testing.T) {
	reg := newRegistry()
	track(t, reg, "", "get_user_data", tracker.KindFunction)
	hist := newTestHistory(t)
	fc := &fakeChecker{err: fmt.Errorf("running pyrefly: %w", context.DeadlineExceeded)}
	tool := NewCheckCodeTool(reg, fc, extract.NewRegex(), hist, 0, nil)

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"code":     "def getUserData():\n    pass\n",
		"filename": "/home/dev/proj/app.py",
	}))
	mustNotError(t, r, err)

	var resp CheckCodeResponse
	decode(t, r, &resp)
	if resp.CheckerAvailable {
		t.Error("checker_available should be false after a checker failure")
	}
	if !strings.Contains(resp.CheckerError, "deadline exceeded") {
		t.Errorf("checker_error = %q", resp.CheckerError)
	}
	if len(resp.ConsistencyIssues) != 1 || resp.ConsistencyIssues[0].Suggestion != "get_user_data" {
		t.Errorf("issues = %+v, want getUserData flagged", resp.ConsistencyIssues)
	}

	reg.Get("").Do(func(tr *tracker.Tracker) {
		rec, ok := tr.Lookup("getUserData")
		if !ok {
			t.Fatal("getUserData should be tracked")
		}
		if len(rec.FileLocations) != 1 || rec.FileLocations[0] != "/home/dev/proj/app.py" {
			t.Errorf("files = %v, want the full filename", rec.FileLocations)
		}
	})

	runs, err := hist.Runs(session.DefaultID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].CheckerAvailable {
		t.Errorf("runs = %+v", runs)
	}
}

// ─── TrackIdentifierTool ─────────────────────────────────────────────────────

func TestTrackIdentifierTool_Success(t *testing.T) {
	reg := newRegistry()
	r, err := NewTrackIdentifierTool(reg).Handle(context.Background(), makeReq(map[string]interface{}{
		"name":      "get_user_data",
		"type":      "function",
		"signature": "(user_id: str) -> dict",
		"file_path": "users.py",
	}))
	mustNotError(t, r, err)

	var resp map[string]any
	decode(t, r, &resp)
	if resp["tracked"] != true || resp["identifier"] != "get_user_data" || resp["type"] != "function" {
		t.Errorf("resp = %v", resp)
	}
	if resp["timestamp"] != fixedNow.Format(time.RFC3339Nano) {
		t.Errorf("timestamp = %v", resp["timestamp"])
	}

	reg.Get("").Do(func(tr *tracker.Tracker) {
		rec, _ := tr.Lookup("get_user_data")
		if len(rec.Signatures) != 1 || rec.FileLocations[0] != "users.py" {
			t.Errorf("record = %+v", rec)
		}
	})
}

func TestTrackIdentifierTool_AcceptsAnyKind(t *testing.T) {
	reg := newRegistry()
	tool := NewTrackIdentifierTool(reg)

	prop, ok := tool.Definition().InputSchema.Properties["type"].(map[string]any)
	if !ok {
		t.Fatal("missing 'type' parameter")
	}
	if _, hasEnum := prop["enum"]; hasEnum {
		t.Errorf("'type' should not be restricted to an enum: %v", prop)
	}

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"name": "widget",
		"type": "gizmo",
	}))
	mustNotError(t, r, err)
	reg.Get("").Do(func(tr *tracker.Tracker) {
		rec, ok := tr.Lookup("widget")
		if !ok || rec.Kind != "gizmo" {
			t.Errorf("record = %+v, %v; want kind gizmo", rec, ok)
		}
	})
}

func TestTrackIdentifierTool_MissingFields(t *testing.T) {
	tool := NewTrackIdentifierTool(newRegistry())

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"type": "function"}))
	mustBeToolError(t, r, err, "'name' is required")

	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{"name": "x"}))
	mustBeToolError(t, r, err, "'type' is required")
}

// ─── CheckConsistencyTool ────────────────────────────────────────────────────

func TestCheckConsistencyTool_ThreeOutcomes(t *testing.T) {
	reg := newRegistry()
	track(t, reg, "", "get_user_data", tracker.KindFunction)
	tool := NewCheckConsistencyTool(reg)

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"identifier": "getUserData"}))
	mustNotError(t, r, err)
	var inconsistent map[string]any
	decode(t, r, &inconsistent)
	if inconsistent["consistent"] != false || inconsistent["suggestion"] != "get_user_data" {
		t.Errorf("inconsistent = %v", inconsistent)
	}

	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{"identifier": "get_user_data"}))
	mustNotError(t, r, err)
	var known map[string]any
	decode(t, r, &known)
	if known["consistent"] != true || known["exists"] != true {
		t.Errorf("known = %v", known)
	}
	info, _ := known["info"].(map[string]any)
	if info["type"] != "function" || info["occurrences"] != 1.0 {
		t.Errorf("info = %v", info)
	}

	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{"identifier": "brand_new"}))
	mustNotError(t, r, err)
	var unknown map[string]any
	decode(t, r, &unknown)
	if unknown["consistent"] != true || unknown["exists"] != false || unknown["message"] == "" {
		t.Errorf("unknown = %v", unknown)
	}

	// Checking does not track.
	reg.Get("").Do(func(tr *tracker.Tracker) {
		if tr.Len() != 1 {
			t.Errorf("Len = %d, want 1", tr.Len())
		}
	})
}

func TestCheckConsistencyTool_SessionsAreIsolated(t *testing.T) {
	reg := newRegistry()
	track(t, reg, "a", "get_user_data", tracker.KindFunction)

	r, err := NewCheckConsistencyTool(reg).Handle(context.Background(), makeReq(map[string]interface{}{
		"identifier": "getUserData",
		"session_id": "b",
	}))
	mustNotError(t, r, err)
	var resp map[string]any
	decode(t, r, &resp)
	if resp["consistent"] != true {
		t.Errorf("session b should not see session a's identifiers: %v", resp)
	}
}

// ─── IdentifierInfoTool / ListIdentifiersTool ────────────────────────────────

func TestIdentifierInfoTool(t *testing.T) {
	reg := newRegistry()
	track(t, reg, "", "UserService", tracker.KindClass)
	tool := NewIdentifierInfoTool(reg)

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"name": "UserService"}))
	mustNotError(t, r, err)
	var rec tracker.Record
	decode(t, r, &rec)
	if rec.Name != "UserService" || rec.Kind != tracker.KindClass || rec.OccurrenceCount != 1 {
		t.Errorf("record = %+v", rec)
	}

	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{"name": "Nope"}))
	mustBeToolError(t, r, err, "not tracked")

	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	mustBeToolError(t, r, err, "'name' is required")
}

func TestListIdentifiersTool(t *testing.T) {
	reg := newRegistry()
	track(t, reg, "", "b_func", tracker.KindFunction)
	track(t, reg, "", "AClass", tracker.KindClass)
	track(t, reg, "", "a_func", tracker.KindFunction)
	tool := NewListIdentifiersTool(reg)

	var all struct {
		Count       int              `json:"count"`
		Identifiers []tracker.Record `json:"identifiers"`
	}
	r, err := tool.Handle(context.Background(), makeReq(nil))
	mustNotError(t, r, err)
	decode(t, r, &all)
	if all.Count != 3 || all.Identifiers[0].Name != "b_func" || all.Identifiers[2].Name != "a_func" {
		t.Errorf("all = %+v", all)
	}

	var funcs struct {
		Count int `json:"count"`
	}
	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{"type_filter": "function"}))
	mustNotError(t, r, err)
	decode(t, r, &funcs)
	if funcs.Count != 2 {
		t.Errorf("function count = %d, want 2", funcs.Count)
	}
}

// ─── SuggestFixTool ──────────────────────────────────────────────────────────

func TestSuggestFixTool(t *testing.T) {
	reg := newRegistry()
	track(t, reg, "", "get_user_data", tracker.KindFunction)
	tool := NewSuggestFixTool(reg)

	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"error_message": "NameError: name 'getUserData' is not defined",
	}))
	mustNotError(t, r, err)
	var resp struct {
		Error          string   `json:"error"`
		Suggestions    []string `json:"suggestions"`
		HasSuggestions bool     `json:"has_suggestions"`
	}
	decode(t, r, &resp)
	if !resp.HasSuggestions || !strings.Contains(resp.Suggestions[0], "get_user_data") {
		t.Errorf("resp = %+v", resp)
	}

	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"error_message": "something odd happened",
	}))
	mustNotError(t, r, err)
	decode(t, r, &resp)
	if resp.HasSuggestions || len(resp.Suggestions) != 1 || resp.Suggestions[0] != noSuggestion {
		t.Errorf("resp = %+v", resp)
	}

	r, err = tool.Handle(context.Background(), makeReq(nil))
	mustBeToolError(t, r, err, "'error_message' is required")
}

// ─── ClearSessionTool / NewSessionTool ───────────────────────────────────────

func TestClearSessionTool(t *testing.T) {
	reg := newRegistry()
	track(t, reg, "", "get_user_data", tracker.KindFunction)

	r, err := NewClearSessionTool(reg, nil, nil).Handle(context.Background(), makeReq(nil))
	mustNotError(t, r, err)
	var resp map[string]any
	decode(t, r, &resp)
	if resp["status"] != "cleared" {
		t.Errorf("status = %v", resp["status"])
	}

	// A cleared session reports nothing for the old spelling.
	r, err = NewCheckConsistencyTool(reg).Handle(context.Background(), makeReq(map[string]interface{}{
		"identifier": "getUserData",
	}))
	mustNotError(t, r, err)
	decode(t, r, &resp)
	if resp["consistent"] != true || resp["exists"] != false {
		t.Errorf("after clear = %v", resp)
	}
}

func TestClearSessionTool_Drop(t *testing.T) {
	reg := newRegistry()
	hist := newTestHistory(t)
	track(t, reg, "tmp", "x", tracker.KindVariable)
	for _, id := range []string{"tmp", "tmp", "keep"} {
		if _, err := hist.RecordRun(history.Run{SessionID: id, Filename: "a.py"}); err != nil {
			t.Fatal(err)
		}
	}

	r, err := NewClearSessionTool(reg, hist, nil).Handle(context.Background(), makeReq(map[string]interface{}{
		"session_id": "tmp",
		"drop":       true,
	}))
	mustNotError(t, r, err)
	if _, ok := reg.Peek("tmp"); ok {
		t.Error("session should be dropped")
	}

	var resp map[string]any
	decode(t, r, &resp)
	if resp["status"] != "dropped" || resp["runs_deleted"] != 2.0 {
		t.Errorf("resp = %v, want dropped with 2 runs deleted", resp)
	}
	runs, err := hist.Runs("", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].SessionID != "keep" {
		t.Errorf("remaining runs = %+v, want only session keep", runs)
	}
}

func TestNewSessionTool(t *testing.T) {
	reg := newRegistry()
	tool := NewNewSessionTool(reg)

	var first, second map[string]any
	r, err := tool.Handle(context.Background(), makeReq(nil))
	mustNotError(t, r, err)
	decode(t, r, &first)
	r, err = tool.Handle(context.Background(), makeReq(nil))
	mustNotError(t, r, err)
	decode(t, r, &second)

	id, _ := first["session_id"].(string)
	if id == "" || id == second["session_id"] {
		t.Errorf("session ids = %v, %v", first["session_id"], second["session_id"])
	}
	if _, ok := reg.Peek(id); !ok {
		t.Error("new session should be registered")
	}
}

// ─── ScanProjectTool ─────────────────────────────────────────────────────────

func TestScanProjectTool(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"users.py":   "def get_user_data(uid):\n    pass\n",
		"legacy.py":  "def getUserData(uid):\n    pass\n",
		"ignored.md": "def nothing(): pass\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	reg := newRegistry()
	tool := NewScanProjectTool(reg, extract.NewRegex(), scan.Options{}, zap.NewNop())
	r, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{"path": root}))
	mustNotError(t, r, err)

	var resp struct {
		FilesScanned       int                `json:"files_scanned"`
		IdentifiersTracked int                `json:"identifiers_tracked"`
		ConsistencyIssues  []ConsistencyIssue `json:"consistency_issues"`
	}
	decode(t, r, &resp)
	if resp.FilesScanned != 2 || resp.IdentifiersTracked != 2 {
		t.Errorf("resp = %+v", resp)
	}
	// legacy.py sorts first, so users.py's spelling is the one flagged.
	if len(resp.ConsistencyIssues) != 1 || resp.ConsistencyIssues[0].File != "users.py" ||
		resp.ConsistencyIssues[0].Suggestion != "getUserData" {
		t.Errorf("issues = %+v", resp.ConsistencyIssues)
	}

	reg.Get("").Do(func(tr *tracker.Tracker) {
		rec, ok := tr.Lookup("get_user_data")
		if !ok || rec.FileLocations[0] != "users.py" {
			t.Errorf("record = %+v", rec)
		}
	})
}

func TestScanProjectTool_Errors(t *testing.T) {
	tool := NewScanProjectTool(newRegistry(), extract.NewRegex(), scan.Options{}, nil)

	r, err := tool.Handle(context.Background(), makeReq(nil))
	mustBeToolError(t, r, err, "'path' is required")

	r, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"path": filepath.Join(t.TempDir(), "missing"),
	}))
	mustBeToolError(t, r, err, "scan failed")
}

// ─── CheckHistoryTool ────────────────────────────────────────────────────────

func TestCheckHistoryTool(t *testing.T) {
	hist := newTestHistory(t)
	reg := newRegistry()
	check := NewCheckCodeTool(reg, &fakeChecker{result: cleanResult()}, extract.NewRegex(), hist, 0, nil)
	for i := 0; i < 3; i++ {
		r, err := check.Handle(context.Background(), makeReq(map[string]interface{}{
			"code":       "x = 1\n",
			"session_id": "s1",
		}))
		mustNotError(t, r, err)
	}

	r, err := NewCheckHistoryTool(hist).Handle(context.Background(), makeReq(map[string]interface{}{
		"session_id": "s1",
		"limit":      2.0,
	}))
	mustNotError(t, r, err)
	var resp struct {
		SessionID string        `json:"session_id"`
		Count     int           `json:"count"`
		Runs      []history.Run `json:"runs"`
	}
	decode(t, r, &resp)
	if resp.SessionID != "s1" || resp.Count != 2 || !resp.Runs[0].Success {
		t.Errorf("resp = %+v", resp)
	}
}
