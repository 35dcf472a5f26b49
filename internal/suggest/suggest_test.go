package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_Embedded(t *testing.T) {
	rs := Rules()
	require.NotEmpty(t, rs)
	names := make([]string, 0, len(rs))
	for _, r := range rs {
		names = append(names, r.Name)
		assert.NotEmpty(t, r.Suggestions, "rule %s has no suggestions", r.Name)
	}
	assert.Contains(t, names, "import")
	assert.Contains(t, names, "indentation")
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load([]byte("rules:\n  - suggestions: [x]\n"))
	assert.Error(t, err)

	_, err = Load([]byte("rules:\n  - name: empty\n"))
	assert.Error(t, err)

	_, err = Load([]byte("rules: [unclosed"))
	assert.Error(t, err)
}

func TestUndefinedName(t *testing.T) {
	tests := []struct {
		message string
		want    string
		ok      bool
	}{
		{"NameError: name 'getUserData' is not defined", "getUserData", true},
		{"undefined name 'foo'", "foo", true},
		{"Could not find name `bar` [unknown-name]", "bar", true},
		{"NameError: name 'données' is not defined", "données", true},
		{"undefined name", "", false},
		{"attribute 'x' missing", "", false},
	}
	for _, tt := range tests {
		got, ok := UndefinedName(tt.message)
		assert.Equal(t, tt.ok, ok, tt.message)
		assert.Equal(t, tt.want, got, tt.message)
	}
}

func TestSuggest_DidYouMean(t *testing.T) {
	lookup := func(name string) []string {
		if name == "getUserData" {
			return []string{"get_user_data"}
		}
		return nil
	}

	got := Suggest("NameError: name 'getUserData' is not defined", lookup)
	require.NotEmpty(t, got)
	assert.Equal(t, "Did you mean 'get_user_data'? (found similar identifier)", got[0])
}

func TestSuggest_UnknownName(t *testing.T) {
	got := Suggest("NameError: name 'missing' is not defined", nil)
	assert.Equal(t, []string{
		"Make sure 'missing' is defined before use",
		"Check for typos in the identifier name",
	}, got)
}

func TestSuggest_RuleMatches(t *testing.T) {
	got := Suggest("ImportError: cannot import name 'x'", nil)
	assert.Contains(t, got, "Check the import path is correct")

	got = Suggest("Expected int, got str", nil)
	assert.Contains(t, got, "Check the types of arguments being passed to functions")

	got = Suggest("IndentationError: unexpected indent", nil)
	assert.Len(t, got, 3)
}

func TestSuggest_Deduplicates(t *testing.T) {
	// Both type rules fire; their shared suggestions appear once.
	got := Suggest("expected int, got str: value not assignable", nil)
	assert.Len(t, got, 2)
}

func TestSuggest_NoMatch(t *testing.T) {
	got := Suggest("something unrelated", nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDidYouMean(t *testing.T) {
	assert.Equal(t, "Did you mean 'a' instead of 'b'?", DidYouMean("a", "b"))
}
