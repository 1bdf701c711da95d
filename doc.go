// Package typesitter compiles a type graph into a grammar that parses exactly
// the JSON documents of that shape.
//
// The compiler walks the graph from its root, gives every object, enum and
// shared union a stable rule name, and synthesizes for each type a JSON
// Schema node carrying the grammar fragment that parses its values. Rules
// are spliced into a base template of the selected dialect:
//
//   - grammar.TreeSitter writes a tree-sitter grammar.js (the default).
//   - grammar.GBNF writes a GBNF grammar for constrained sampling.
//
// Graphs come from the importer package (JSON Schema, YAML, Kubernetes CRDs,
// Go types) or are built by hand with the dsl package.
//
// Typical usage:
//
//	g, diag, err := importer.ImportJSON(data, importer.Options{})
//	res, err := typesitter.Compile(g, typesitter.Options{Name: "config"})
//	os.WriteFile("grammar.js", []byte(res.Grammar), 0o644)
//	schema, err := res.SchemaJSON()
//
// Compile never returns partial output: an inconsistent graph yields Issues
// naming the offending type path, such as /Grammar/books/items.
package typesitter
