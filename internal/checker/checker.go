// Package checker runs the external Python type checker (pyrefly) on code
// snippets and reports its diagnostics in structured form.
//
// The checker is an external collaborator: pyward never analyses types
// itself. When the binary cannot be found, Check returns ErrUnavailable and
// callers keep working without type diagnostics.
package checker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrUnavailable is returned when no checker binary could be located.
var ErrUnavailable = errors.New("type checker unavailable")

// Severity classifies a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one finding reported by the checker.
type Diagnostic struct {
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
}

// Result is the outcome of one checker run.
type Result struct {
	Success   bool         `json:"success"`
	Errors    []Diagnostic `json:"errors"`
	Warnings  []Diagnostic `json:"warnings"`
	RawStdout string       `json:"-"`
	RawStderr string       `json:"-"`
}

// Request describes the code to check.
type Request struct {
	Code string
	// Filename names the snippet inside the scratch directory. Defaults to
	// check.py; an absolute path is reduced to its base name.
	Filename string
	// ContextFiles are extra files (relative path → content) written next
	// to the snippet so imports between them resolve.
	ContextFiles map[string]string
}

// Checker runs a type check.
type Checker interface {
	Check(ctx context.Context, req Request) (*Result, error)
}

// defaultFilename is used when a Request has no Filename.
const defaultFilename = "check.py"

// venvCandidates are probed, relative to the working directory, when the
// binary is not on PATH.
var venvCandidates = []string{
	".venv/bin/pyrefly",
	"venv/bin/pyrefly",
	".venv/Scripts/pyrefly.exe",
	"venv/Scripts/pyrefly.exe",
}

// commandContext is a package-level var to allow test injection.
var commandContext = exec.CommandContext

// Pyrefly runs the pyrefly binary.
type Pyrefly struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewPyrefly locates the checker binary. binary may be an explicit path or
// command name; empty means "pyrefly" on PATH, then common virtualenv
// locations. The returned checker is usable even when nothing was found:
// every Check then fails with ErrUnavailable.
func NewPyrefly(binary string, timeout time.Duration, logger *zap.Logger) *Pyrefly {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pyrefly{timeout: timeout, logger: logger.Named("checker")}
	p.binary = findBinary(binary)
	if p.binary == "" {
		p.logger.Warn("pyrefly not found; type checking disabled",
			zap.String("configured", binary))
	} else {
		p.logger.Debug("using pyrefly", zap.String("path", p.binary))
	}
	return p
}

// Available reports whether a checker binary was located.
func (p *Pyrefly) Available() bool {
	return p.binary != ""
}

// Binary returns the resolved path of the checker, or "" if none was found.
func (p *Pyrefly) Binary() string {
	return p.binary
}

func findBinary(configured string) string {
	name := configured
	if name == "" {
		name = "pyrefly"
	}
	if path, err := exec.LookPath(name); err == nil {
		return path
	}
	if configured != "" {
		return ""
	}
	for _, candidate := range venvCandidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			if abs, err := filepath.Abs(candidate); err == nil {
				return abs
			}
		}
	}
	return ""
}

// Check writes the snippet and its context files into a scratch directory
// and runs "pyrefly check" on the snippet.
func (p *Pyrefly) Check(ctx context.Context, req Request) (*Result, error) {
	if p.binary == "" {
		return nil, ErrUnavailable
	}

	dir, err := os.MkdirTemp("", "pyward-check-")
	if err != nil {
		return nil, fmt.Errorf("creating scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	filename := scratchName(req.Filename)
	mainFile, err := writeScratch(dir, filename, req.Code)
	if err != nil {
		return nil, err
	}
	for name, content := range req.ContextFiles {
		if _, err := writeScratch(dir, name, content); err != nil {
			return nil, err
		}
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := commandContext(ctx, p.binary, "check", mainFile)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	exitCode := 0
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("running %s: %w", filepath.Base(p.binary), runErr)
		}
		exitCode = exitErr.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("running %s: %w", filepath.Base(p.binary), ctxErr)
	}

	res := ParseOutput(stdout.String(), stderr.String(), exitCode)
	p.logger.Debug("check finished",
		zap.String("file", filename),
		zap.Int("exit_code", exitCode),
		zap.Int("errors", len(res.Errors)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// scratchName maps the snippet's filename to a path inside the scratch
// directory. Absolute or escaping names keep only their base name.
func scratchName(filename string) string {
	if filename == "" {
		return defaultFilename
	}
	clean := filepath.Clean(filepath.FromSlash(filename))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		clean = filepath.Base(clean)
	}
	if clean == "." || clean == ".." || clean == string(filepath.Separator) {
		return defaultFilename
	}
	return clean
}

// writeScratch writes content to name inside dir, refusing paths that
// escape dir.
func writeScratch(dir, name, content string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("file %q escapes the scratch directory", name)
	}
	path := filepath.Join(dir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating directory for %s: %w", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}
