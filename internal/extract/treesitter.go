package extract

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/HendryAvila/pyward/internal/tracker"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// constantRe matches UPPER_CASE module-level names.
var constantRe = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// TreeSitter extracts definitions from a tree-sitter parse of the module:
// top-level functions and classes, methods inside class bodies, and
// module-level assignments. Output is ordered by line.
type TreeSitter struct {
	lang *sitter.Language
}

// NewTreeSitter creates a TreeSitter extractor for Python.
func NewTreeSitter() *TreeSitter {
	return &TreeSitter{lang: python.GetLanguage()}
}

// Extract implements Extractor. A fresh parser is used per call because
// tree-sitter parsers are not safe for concurrent use.
func (e *TreeSitter) Extract(ctx context.Context, source []byte) ([]Identifier, error) {
	if len(source) == 0 {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(e.lang)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing python source: %w", err)
	}
	defer tree.Close()

	var out []Identifier
	root := tree.RootNode()
	for i := 0; i < int(root.NamedChildCount()); i++ {
		out = appendDefinition(out, root.NamedChild(i), source, false)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out, nil
}

// appendDefinition adds the definitions introduced by one statement node.
// inClass is true for statements directly inside a class body.
func appendDefinition(out []Identifier, node *sitter.Node, source []byte, inClass bool) []Identifier {
	switch node.Type() {
	case "decorated_definition":
		if def := node.ChildByFieldName("definition"); def != nil {
			return appendDefinition(out, def, source, inClass)
		}

	case "function_definition":
		name := node.ChildByFieldName("name")
		if name == nil {
			return out
		}
		kind := tracker.KindFunction
		if inClass {
			kind = tracker.KindMethod
		}
		return append(out, Identifier{
			Name:      name.Content(source),
			Kind:      kind,
			Line:      int(name.StartPoint().Row) + 1,
			Signature: functionSignature(node, source),
		})

	case "class_definition":
		name := node.ChildByFieldName("name")
		if name == nil {
			return out
		}
		out = append(out, Identifier{
			Name:      name.Content(source),
			Kind:      tracker.KindClass,
			Line:      int(name.StartPoint().Row) + 1,
			Signature: classSignature(node, source),
		})
		if body := node.ChildByFieldName("body"); body != nil {
			for i := 0; i < int(body.NamedChildCount()); i++ {
				child := body.NamedChild(i)
				if child.Type() == "expression_statement" {
					// Class attributes are not tracked.
					continue
				}
				out = appendDefinition(out, child, source, true)
			}
		}
		return out

	case "expression_statement":
		if inClass {
			return out
		}
		for i := 0; i < int(node.NamedChildCount()); i++ {
			child := node.NamedChild(i)
			if child.Type() != "assignment" {
				continue
			}
			if id, ok := assignmentIdentifier(child, source); ok {
				out = append(out, id)
			}
		}
	}
	return out
}

func assignmentIdentifier(node *sitter.Node, source []byte) (Identifier, bool) {
	left := node.ChildByFieldName("left")
	if left == nil || left.Type() != "identifier" {
		return Identifier{}, false
	}
	name := left.Content(source)
	kind := tracker.KindVariable
	if constantRe.MatchString(name) {
		kind = tracker.KindConstant
	}
	id := Identifier{
		Name: name,
		Kind: kind,
		Line: int(left.StartPoint().Row) + 1,
	}
	if typ := node.ChildByFieldName("type"); typ != nil {
		id.Signature = name + ": " + collapse(typ.Content(source))
	}
	return id, true
}

func functionSignature(node *sitter.Node, source []byte) string {
	var sb strings.Builder
	sb.WriteString(node.ChildByFieldName("name").Content(source))
	if params := node.ChildByFieldName("parameters"); params != nil {
		sb.WriteString(collapse(params.Content(source)))
	}
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		sb.WriteString(" -> ")
		sb.WriteString(collapse(ret.Content(source)))
	}
	return sb.String()
}

func classSignature(node *sitter.Node, source []byte) string {
	name := node.ChildByFieldName("name").Content(source)
	if bases := node.ChildByFieldName("superclasses"); bases != nil {
		return name + collapse(bases.Content(source))
	}
	return name
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
