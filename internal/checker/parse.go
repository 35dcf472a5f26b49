package checker

import (
	"strconv"
	"strings"
)

// ParseOutput turns the checker's textual output into a Result.
//
// Diagnostics look like:
//
//	ERROR message [error-code]
//	 --> file:line:column
//
// INFO lines are ignored. Lines on stderr that mention "error" become
// location-less errors.
func ParseOutput(stdout, stderr string, exitCode int) *Result {
	res := &Result{
		Errors:    []Diagnostic{},
		Warnings:  []Diagnostic{},
		RawStdout: stdout,
		RawStderr: stderr,
	}

	if stdout != "" {
		lines := strings.Split(strings.TrimSpace(stdout), "\n")
		for i := 0; i < len(lines); i++ {
			line := strings.TrimSpace(lines[i])
			if line == "" || strings.HasPrefix(line, "INFO") {
				continue
			}

			var severity Severity
			var word string
			switch {
			case strings.HasPrefix(line, "ERROR"):
				severity, word = SeverityError, "ERROR"
			case strings.HasPrefix(line, "WARNING"):
				severity, word = SeverityWarning, "WARNING"
			default:
				continue
			}

			d := Diagnostic{Severity: severity}
			d.Message, d.Code = splitHeader(line, len(word))
			if i+1 < len(lines) {
				d.Line, d.Column = parseLocation(lines[i+1])
			}

			if severity == SeverityError {
				res.Errors = append(res.Errors, d)
			} else {
				res.Warnings = append(res.Warnings, d)
			}
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(stderr), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "INFO") || strings.HasPrefix(line, "WARNING") {
			continue
		}
		if strings.Contains(strings.ToLower(line), "error") {
			res.Errors = append(res.Errors, Diagnostic{
				Message:  line,
				Severity: SeverityError,
			})
		}
	}

	res.Success = exitCode == 0 && len(res.Errors) == 0
	return res
}

// splitHeader separates "ERROR message [code]" into message and code. prefix
// is the length of the severity word.
func splitHeader(line string, prefix int) (message, code string) {
	body := ""
	if len(line) > prefix {
		body = line[prefix+1:]
	}
	open := strings.LastIndex(body, "[")
	if open >= 0 && strings.HasSuffix(body, "]") {
		return strings.TrimSpace(body[:open]), body[open+1 : len(body)-1]
	}
	return strings.TrimSpace(body), ""
}

// parseLocation reads " --> path:line:column". Anything else yields zeros.
func parseLocation(line string) (int, int) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "-->") {
		return 0, 0
	}
	loc := strings.TrimSpace(strings.TrimPrefix(line, "-->"))

	// Split from the right: the path itself may contain colons.
	colIdx := strings.LastIndex(loc, ":")
	if colIdx < 0 {
		return 0, 0
	}
	lineIdx := strings.LastIndex(loc[:colIdx], ":")
	if lineIdx < 0 {
		return 0, 0
	}
	ln, err1 := strconv.Atoi(loc[lineIdx+1 : colIdx])
	col, err2 := strconv.Atoi(loc[colIdx+1:])
	if err1 != nil || err2 != nil {
		return 0, 0
	}
	return ln, col
}
