// Package dsl builds type graphs for the grammar compiler.
//
// Overview
//   - Builder: New() collects named types; Object(name) declares a record and
//     chains Field/Optional/Required/Additional/Describe.
//   - Type expressions: String()/Integer()/Double()/Bool()/Null()/Any(),
//     Format(kind), ArrayOf(t), MapOf(t), Enum(name, cases...),
//     Union(name, members...), Nullable(t), Ref(name), Describe(t, text).
//   - Ref(name) may appear before the named type is defined; Build resolves
//     forward references and reports the ones never defined.
//
// Example (recursive list)
//
//	b := dsl.New()
//	b.Object("Node").
//	    Field("value", dsl.Integer()).
//	    Field("next", dsl.Ref("Node")).Optional()
//	g, err := b.Build("Node")
//	res, err := typesitter.Compile(g, typesitter.Options{})
//
// Example (unnamed root)
//
//	b := dsl.New()
//	g, err := b.BuildType("Scores", dsl.MapOf(dsl.Integer()))
package dsl
