package importer

import (
	"fmt"
	"log/slog"

	"github.com/reoring/typesitter/internal/logutil"
)

// DefaultRoot is the definition used as the grammar root when Options.Root is
// empty and the document offers no better name.
const DefaultRoot = "Grammar"

// Options controls how a schema document becomes a type graph.
type Options struct {
	// Root names the definition to start from. When no definition of that
	// name exists the document's own $ref, then the document itself, is
	// used, and Root becomes the display name of the root type.
	Root string
	// Logger receives debug and trace records. Defaults to slog.Default.
	Logger *slog.Logger
}

func (o Options) withDefaults(fallback string) Options {
	if o.Root == "" {
		o.Root = fallback
	}
	if o.Root == "" {
		o.Root = DefaultRoot
	}
	o.Logger = logutil.OrDefault(o.Logger)
	return o
}

// Diag carries non-fatal warnings produced during import.
type Diag interface {
	HasWarnings() bool
	Warnings() []string
}

type simpleDiag struct {
	ws  []string
	log *slog.Logger
}

func (d *simpleDiag) HasWarnings() bool  { return len(d.ws) > 0 }
func (d *simpleDiag) Warnings() []string { return append([]string(nil), d.ws...) }

func (d *simpleDiag) warnf(f string, a ...any) {
	msg := fmt.Sprintf(f, a...)
	d.ws = append(d.ws, msg)
	if d.log != nil {
		d.log.Debug("import warning", "msg", msg)
	}
}
