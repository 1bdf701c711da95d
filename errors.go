package typesitter

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes for fatal compile conditions. Each one means the type graph
// handed to Compile was inconsistent; none of them is retryable.
const (
	CodeUnresolvedType = "unresolved_type"
	CodeEmptyUnion     = "empty_union"
	CodeEmptyEnum      = "empty_enum"
	CodeUnknownRoot    = "unknown_root"
	CodeUnknownFormat  = "unknown_format"
	CodeAnonymousCycle = "anonymous_cycle"
	CodeInvalidGraph   = "invalid_graph"
	CodeTemplate       = "template"
)

// Issue describes a single compile failure.
type Issue struct {
	Path    string // type path from the root, e.g. /Grammar/items/next.
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: how to fix the type graph.
	Cause   error  // Optional: underlying error.
}

func (it Issue) String() string {
	s := it.Code + " at " + it.Path
	if it.Message != "" {
		s += ": " + it.Message
	}
	return s
}

// Issues is a collection of compile errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := min(len(iss), maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[i].String())
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// Unwrap exposes the causes so that errors.Is sees through Issues.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// HasCode reports whether any issue carries code.
func (iss Issues) HasCode(code string) bool {
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}
