package tracker

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// verbSynonyms are the replacements tried for a leading "get" verb.
var verbSynonyms = []string{"fetch", "retrieve"}

// ComputeVariations returns the alternate spellings of name under the naming
// conventions an agent tends to drift between: camelCase/snake_case/PascalCase
// and get/fetch/retrieve verb prefixes. The result is sorted and never
// contains name itself.
func ComputeVariations(name string) []string {
	set := make(map[string]struct{})
	add := func(v string) {
		if v != "" && v != name {
			set[v] = struct{}{}
		}
	}

	add(toSnake(name))

	if strings.Contains(name, "_") {
		parts := strings.Split(name, "_")
		title := cases.Title(language.Und)

		var camel, pascal strings.Builder
		for i, p := range parts {
			if i == 0 {
				camel.WriteString(strings.ToLower(p))
			} else {
				camel.WriteString(title.String(p))
			}
			pascal.WriteString(title.String(p))
		}
		add(camel.String())
		add(pascal.String())
	}

	switch {
	case strings.HasPrefix(name, "get_"):
		rest := strings.TrimPrefix(name, "get_")
		for _, verb := range verbSynonyms {
			add(verb + "_" + rest)
		}
	case strings.HasPrefix(name, "get"):
		rest := strings.TrimPrefix(name, "get")
		for _, verb := range verbSynonyms {
			add(verb + rest)
		}
	}

	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// toSnake inserts an underscore before every ASCII upper-case letter except
// the first character, then lower-cases the result.
func toSnake(name string) string {
	var sb strings.Builder
	sb.Grow(len(name) + 4)
	for i, r := range name {
		if i > 0 && r >= 'A' && r <= 'Z' {
			sb.WriteByte('_')
		}
		sb.WriteRune(r)
	}
	return strings.ToLower(sb.String())
}
