package naming

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var legal = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

func TestSplitWords(t *testing.T) {
	cases := map[string][]string{
		"fooBar":        {"foo", "Bar"},
		"HTTPServer":    {"HTTP", "Server"},
		"user_id":       {"user", "id"},
		"v2beta1":       {"v", "2", "beta", "1"},
		"  --  ":        nil,
		"Grammar":       {"Grammar"},
		"kebab-case-id": {"kebab", "case", "id"},
	}
	for in, want := range cases {
		assert.Equal(t, want, SplitWords(in), in)
	}
}

func TestStyle(t *testing.T) {
	n := New[int]()
	cases := map[string]string{
		"fooBar":     "FooBar",
		"user_id":    "UserID",
		"HTTPServer": "HTTPServer",
		"USER_NAME":  "UserName",
		"json-url":   "JSONURL",
		"Café":       "Cafe",
		"123go":      "N123Go",
		"":           "Type",
		"日本":         "Type",
		"$ref":       "Ref",
	}
	for in, want := range cases {
		got := n.Style(in)
		assert.Equal(t, want, got, in)
		assert.Regexp(t, legal, got, in)
	}
}

func TestAssign_StablePerKey(t *testing.T) {
	n := New[int]()
	first := n.Assign(1, "node", "Object")
	assert.Equal(t, "Node", first)
	assert.Equal(t, first, n.Assign(1, "something else", "Object"))

	got, ok := n.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, first, got)

	_, ok = n.Lookup(2)
	assert.False(t, ok)
}

func TestAssign_Collisions(t *testing.T) {
	n := New[int]()
	names := []string{
		n.Assign(1, "item", "Object"),
		n.Assign(2, "Item", "Object"),
		n.Assign(3, "ITEM", "Object"),
		n.Assign(4, "item", "Enum"),
		n.Assign(5, "item_object", "Object"),
	}
	assert.Equal(t, []string{"Item", "ItemObject", "ItemObject2", "ItemEnum", "ItemObjectObject"}, names)

	seen := map[string]bool{}
	for _, s := range names {
		assert.False(t, seen[s], "duplicate name %q", s)
		seen[s] = true
		assert.Regexp(t, legal, s)
	}
}

func TestAssign_Deterministic(t *testing.T) {
	run := func() []string {
		n := New[string]()
		var out []string
		for _, k := range []string{"a", "b", "c", "d"} {
			out = append(out, n.Assign(k, "shared name", "Union"))
		}
		return out
	}
	assert.Equal(t, run(), run())
}
