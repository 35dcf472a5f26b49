package extract

import (
	"bytes"
	"context"
	"regexp"

	"github.com/HendryAvila/pyward/internal/tracker"
)

// word matches identifier characters in any script, like Python's str \w.
const word = `[\p{L}\p{N}_]+`

var (
	funcPattern  = regexp.MustCompile(`(?m)^(?:async\s+)?def\s+(` + word + `)\s*\([^)]*\)`)
	classPattern = regexp.MustCompile(`(?m)^class\s+(` + word + `)(?:\s*\([^)]*\))?:`)
	varPattern   = regexp.MustCompile(`(?m)^(` + word + `)\s*=`)
)

// notAssignable are words the variable pattern can match that are never
// assignment targets.
var notAssignable = map[string]bool{
	"if": true, "for": true, "while": true, "def": true,
	"class": true, "import": true, "from": true,
}

// Regex extracts column-zero definitions with line patterns. It is fast and
// tolerant of broken code, and accepts false positives. Results are grouped
// as functions, then classes, then variables, each in source order.
type Regex struct{}

// NewRegex creates a Regex extractor.
func NewRegex() *Regex {
	return &Regex{}
}

// Extract implements Extractor. It never fails.
func (r *Regex) Extract(_ context.Context, source []byte) ([]Identifier, error) {
	var out []Identifier
	collect := func(re *regexp.Regexp, kind tracker.Kind, skip map[string]bool) {
		for _, m := range re.FindAllSubmatchIndex(source, -1) {
			name := string(source[m[2]:m[3]])
			if skip[name] {
				continue
			}
			out = append(out, Identifier{
				Name: name,
				Kind: kind,
				Line: bytes.Count(source[:m[0]], []byte("\n")) + 1,
			})
		}
	}
	collect(funcPattern, tracker.KindFunction, nil)
	collect(classPattern, tracker.KindClass, nil)
	collect(varPattern, tracker.KindVariable, notAssignable)
	return out, nil
}
