package typesitter

import (
	"github.com/reoring/typesitter/importer"
	"github.com/reoring/typesitter/typegraph"
)

// CompileJSONSchema imports a JSON Schema document and compiles it. root
// names the definition to start from; empty selects "Grammar", the document's
// own $ref or the document itself, in that order. Import warnings are
// returned alongside the result.
func CompileJSONSchema(data []byte, root string, opts Options) (*Result, importer.Diag, error) {
	g, diag, err := importer.ImportJSON(data, importer.Options{Root: root, Logger: opts.Logger})
	return compileImported(g, diag, err, opts)
}

// CompileYAMLSchema is CompileJSONSchema for YAML documents.
func CompileYAMLSchema(data []byte, root string, opts Options) (*Result, importer.Diag, error) {
	g, diag, err := importer.ImportYAML(data, importer.Options{Root: root, Logger: opts.Logger})
	return compileImported(g, diag, err, opts)
}

// CompileGoType compiles the shape of v's Go type.
func CompileGoType(v any, opts Options) (*Result, importer.Diag, error) {
	g, diag, err := importer.FromGoType(v, importer.Options{Logger: opts.Logger})
	return compileImported(g, diag, err, opts)
}

func compileImported(g *typegraph.Graph, diag importer.Diag, err error, opts Options) (*Result, importer.Diag, error) {
	if err != nil {
		return nil, diag, err
	}
	res, err := Compile(g, opts)
	return res, diag, err
}
