package typesitter

import (
	"log/slog"

	"github.com/reoring/typesitter/grammar"
)

// DefaultRootName is the display name of the root type when none is given.
const DefaultRootName = "Grammar"

// RequiredMode selects how object rules treat required properties.
type RequiredMode int

const (
	// RequiredLenient emits every pair as an alternative of one comma
	// separated list. Required properties are recorded in the schema but
	// the grammar accepts objects that omit them, so {} parses for an
	// object whose fields are all required. Use RequiredOrdered to reject
	// such documents.
	RequiredLenient RequiredMode = iota
	// RequiredOrdered makes each required pair mandatory, in declaration
	// order. Optional and additional pairs may appear between them.
	RequiredOrdered
)

func (m RequiredMode) String() string {
	if m == RequiredOrdered {
		return "ordered"
	}
	return "lenient"
}

// Options configures a compilation. The zero value produces a tree-sitter
// grammar from the embedded JSON base template.
type Options struct {
	// Name is substituted for the grammar name placeholder. Defaults to the
	// graph's root name.
	Name string
	// Dialect renders fragments and rules. Defaults to grammar.TreeSitter.
	Dialect grammar.Dialect
	// Template overrides the dialect's base template.
	Template *grammar.Template
	Required RequiredMode
	// Logger receives debug and trace records. Defaults to slog.Default.
	Logger *slog.Logger
}

func (o Options) withDefaults(rootName string) Options {
	if o.Dialect == nil {
		o.Dialect = grammar.TreeSitter
	}
	if o.Template == nil {
		o.Template = o.Dialect.BaseTemplate()
	}
	if o.Name == "" {
		o.Name = rootName
	}
	if o.Name == "" {
		o.Name = DefaultRootName
	}
	return o
}
