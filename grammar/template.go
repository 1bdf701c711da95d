package grammar

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
)

// Placeholders a base template must contain exactly once each.
const (
	NamePlaceholder  = "%GRAMMAR_NAME%"
	RootPlaceholder  = "%ROOT_GRAMMAR%"
	RulesPlaceholder = "%REFS_GRAMMAR%"
)

// ErrPlaceholder reports a missing or repeated template placeholder.
var ErrPlaceholder = errors.New("grammar: template placeholder")

//go:embed templates/tree-sitter.js
var treeSitterBase string

//go:embed templates/json.gbnf
var gbnfBase string

var (
	treeSitterTemplate = MustParseTemplate(treeSitterBase)
	gbnfTemplate       = MustParseTemplate(gbnfBase)
)

// Template is static base grammar text with three substitution points.
type Template struct {
	text string
}

// ParseTemplate checks that text carries every placeholder exactly once.
func ParseTemplate(text string) (*Template, error) {
	for _, p := range []string{NamePlaceholder, RootPlaceholder, RulesPlaceholder} {
		if n := strings.Count(text, p); n != 1 {
			return nil, fmt.Errorf("%w %s: found %d, want 1", ErrPlaceholder, p, n)
		}
	}
	return &Template{text: text}, nil
}

// MustParseTemplate is like ParseTemplate but panics on error.
func MustParseTemplate(text string) *Template {
	t, err := ParseTemplate(text)
	if err != nil {
		panic(err)
	}
	return t
}

// Execute substitutes the placeholders. Substituted text is not rescanned.
func (t *Template) Execute(name, root, rules string) string {
	return strings.NewReplacer(
		NamePlaceholder, name,
		RootPlaceholder, root,
		RulesPlaceholder, rules,
	).Replace(t.text)
}

// Text returns the unexpanded template.
func (t *Template) Text() string { return t.text }
