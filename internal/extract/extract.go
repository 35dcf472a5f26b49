// Package extract finds identifier definitions in Python source.
//
// Two engines are available: Regex mirrors the lightweight line-pattern
// extraction (top-level defs, classes and simple assignments), and
// TreeSitter parses the source with the tree-sitter Python grammar, which
// also yields methods, constants and signatures.
package extract

import (
	"context"
	"fmt"

	"github.com/HendryAvila/pyward/internal/tracker"
)

// Identifier is one definition found in source.
type Identifier struct {
	Name      string       `json:"name"`
	Kind      tracker.Kind `json:"type"`
	Line      int          `json:"line"`
	Signature string       `json:"signature,omitempty"`
}

// Extractor finds identifier definitions in Python source.
type Extractor interface {
	Extract(ctx context.Context, source []byte) ([]Identifier, error)
}

// Engine names accepted by New.
const (
	EngineRegex      = "regex"
	EngineTreeSitter = "treesitter"
)

// EngineValues returns the accepted engine names.
func EngineValues() []string {
	return []string{EngineRegex, EngineTreeSitter}
}

// New returns the extractor for the named engine. An empty name selects the
// regex engine.
func New(engine string) (Extractor, error) {
	switch engine {
	case "", EngineRegex:
		return NewRegex(), nil
	case EngineTreeSitter:
		return NewTreeSitter(), nil
	default:
		return nil, fmt.Errorf("unknown extractor engine %q", engine)
	}
}
