// Package suggest maps type checker error messages to fix suggestions.
package suggest

import (
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var rulesYAML []byte

// Rule is one keyword-triggered entry of the rule table.
type Rule struct {
	Name        string   `yaml:"name"`
	All         []string `yaml:"all"`
	Any         []string `yaml:"any"`
	Suggestions []string `yaml:"suggestions"`
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

var rules = mustLoad(rulesYAML)

func mustLoad(data []byte) []Rule {
	r, err := Load(data)
	if err != nil {
		panic(err)
	}
	return r
}

// Load parses a YAML rule table.
func Load(data []byte) ([]Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing suggestion rules: %w", err)
	}
	for i, r := range f.Rules {
		if r.Name == "" {
			return nil, fmt.Errorf("rule %d: missing name", i)
		}
		if len(r.All) == 0 && len(r.Any) == 0 {
			return nil, fmt.Errorf("rule %s: no keywords", r.Name)
		}
	}
	return f.Rules, nil
}

// Rules returns the built-in rule table.
func Rules() []Rule {
	return append([]Rule(nil), rules...)
}

func (r Rule) matches(lower string) bool {
	for _, kw := range r.All {
		if !strings.Contains(lower, kw) {
			return false
		}
	}
	if len(r.Any) == 0 {
		return true
	}
	for _, kw := range r.Any {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// NameLookup returns tracked identifiers similar to name, best first.
type NameLookup func(name string) []string

var undefinedMarkers = []string{
	"undefined name",
	"name error",
	"nameerror",
	"could not find name",
	"is not defined",
}

var quotedNameRe = regexp.MustCompile("['`]([\\p{L}\\p{N}_]+)['`]")

// UndefinedName reports the quoted name in an undefined-name message.
func UndefinedName(message string) (string, bool) {
	lower := strings.ToLower(message)
	found := false
	for _, m := range undefinedMarkers {
		if strings.Contains(lower, m) {
			found = true
			break
		}
	}
	if !found {
		return "", false
	}
	match := quotedNameRe.FindStringSubmatch(message)
	if match == nil {
		return "", false
	}
	return match[1], true
}

// Suggest returns fix suggestions for message. Undefined-name messages are
// resolved against lookup first; lookup may be nil. The result is never nil.
func Suggest(message string, lookup NameLookup) []string {
	out := []string{}
	lower := strings.ToLower(message)

	if name, ok := UndefinedName(message); ok {
		var similar []string
		if lookup != nil {
			similar = lookup(name)
		}
		if len(similar) > 0 {
			out = append(out, fmt.Sprintf("Did you mean '%s'? (found similar identifier)", similar[0]))
		} else {
			out = append(out,
				fmt.Sprintf("Make sure '%s' is defined before use", name),
				"Check for typos in the identifier name",
			)
		}
	}

	seen := make(map[string]struct{})
	for _, r := range rules {
		if !r.matches(lower) {
			continue
		}
		for _, s := range r.Suggestions {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// DidYouMean formats the check_code hint for an undefined name that looks
// like a re-spelling of a tracked identifier.
func DidYouMean(existing, name string) string {
	return fmt.Sprintf("Did you mean '%s' instead of '%s'?", existing, name)
}
