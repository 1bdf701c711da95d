package typegraph_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/typesitter/typegraph"
)

func TestReachable_CyclicObjectTerminates(t *testing.T) {
	g := typegraph.New()
	a := g.Declare()
	s := g.Add(typegraph.Primitive(typegraph.KindString))
	g.Set(a, typegraph.Object("A", []typegraph.Property{
		{Name: "name", Type: s},
		{Name: "next", Type: a, Optional: true},
	}, typegraph.NoID))
	g.SetRoot(a, "A")

	require.NoError(t, g.Validate())
	assert.Equal(t, []typegraph.ID{a, s}, g.Reachable())

	sites := g.CallSites()
	assert.Equal(t, 2, sites[a], "self reference plus root")
	assert.Equal(t, 1, sites[s])
}

func TestReachable_SkipsUnreachable(t *testing.T) {
	g := typegraph.New()
	s := g.Add(typegraph.Primitive(typegraph.KindString))
	orphan := g.Add(typegraph.Enum("Orphan", "x"))
	arr := g.Add(typegraph.Array(s))
	g.SetRoot(arr, "Grammar")

	got := g.Reachable()
	assert.Equal(t, []typegraph.ID{arr, s}, got)
	assert.NotContains(t, got, orphan)
}

func TestCallSites_SharedUnion(t *testing.T) {
	g := typegraph.New()
	s := g.Add(typegraph.Primitive(typegraph.KindString))
	i := g.Add(typegraph.Primitive(typegraph.KindInteger))
	u := g.Add(typegraph.Union("", s, i))
	obj := g.Add(typegraph.Object("Pair", []typegraph.Property{
		{Name: "left", Type: u},
		{Name: "right", Type: u},
	}, typegraph.NoID))
	g.SetRoot(obj, "Pair")

	assert.Equal(t, 2, g.CallSites()[u])
}

func TestValidate(t *testing.T) {
	g := typegraph.New()
	assert.True(t, errors.Is(g.Validate(), typegraph.ErrNoRoot))

	arr := g.Add(typegraph.Array(typegraph.ID(42)))
	g.SetRoot(arr, "Grammar")
	assert.True(t, errors.Is(g.Validate(), typegraph.ErrDanglingID))
}

func TestDistinct(t *testing.T) {
	assert.Equal(t, []typegraph.ID{3, 1, 2}, typegraph.Distinct([]typegraph.ID{3, 1, 3, 2, 1}))
}

func TestSchemaFormat(t *testing.T) {
	f, ok := typegraph.SchemaFormat("integer-string")
	require.True(t, ok)
	assert.Equal(t, "integer", f)

	_, ok = typegraph.SchemaFormat("color")
	assert.False(t, ok)
	assert.Equal(t, "transformed-string", typegraph.KindTransformedString.String())
}
