package constraints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/autotype/internal/typesystem"
)

func basicContext(t *testing.T) *typesystem.Context {
	t.Helper()
	c := typesystem.NewContext()
	object := typesystem.InstallBasicClasses(c)
	require.Empty(t, c.Finalize(object))
	return c
}

func auto(t *testing.T, c *typesystem.Context, names ...string) *typesystem.TAuto {
	t.Helper()
	typ, err := c.GetType("AUTO_TYPE")
	require.NoError(t, err)
	a := typ.(*typesystem.TAuto)
	if len(names) > 0 {
		s := &typesystem.TypeSet{}
		for _, n := range names {
			id, ok := c.Lookup(n)
			require.True(t, ok, n)
			s.Add(id)
		}
		c.Meet(a, s)
	}
	return a
}

func TestLink_OnlyDistinctPlaceholders(t *testing.T) {
	c := basicContext(t)
	x, y := auto(t, c), auto(t, c)
	intT := c.Con(0)

	g := New()
	assert.False(t, g.Link(x, intT, Origin{}))
	assert.False(t, g.Link(intT, y, Origin{}))
	assert.False(t, g.Link(x, x, Origin{}))
	assert.True(t, g.Link(x, y, Origin{Class: "A"}))
	assert.False(t, g.Link(y, x, Origin{}), "edges are undirected")
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, []typesystem.AutoID{y.ID}, g.Peers(x.ID))
}

func TestComponents_Deterministic(t *testing.T) {
	c := basicContext(t)
	a := []*typesystem.TAuto{auto(t, c), auto(t, c), auto(t, c), auto(t, c), auto(t, c)}

	g := New()
	g.Link(a[3], a[4], Origin{Method: "second"})
	g.Link(a[2], a[0], Origin{Method: "first"})
	g.Link(a[4], a[1], Origin{Method: "third"})

	comps := g.Components()
	require.Len(t, comps, 2)
	assert.Equal(t, []typesystem.AutoID{a[0].ID, a[2].ID}, comps[0].Members)
	assert.Equal(t, "first", comps[0].Origin.Method)
	assert.Equal(t, []typesystem.AutoID{a[1].ID, a[3].ID, a[4].ID}, comps[1].Members)
	assert.Equal(t, "second", comps[1].Origin.Method)
}

func TestSettle_PinnedMemberNarrowsPeers(t *testing.T) {
	c := basicContext(t)
	x := auto(t, c, "Int")
	y := auto(t, c)

	g := New()
	g.Link(x, y, Origin{})
	res := g.Settle(c)

	assert.Empty(t, res.Conflicts)
	assert.Empty(t, res.Ambiguous)
	assert.Equal(t, 1, res.Narrowed)

	object, _ := c.Lookup("Object")
	integer, _ := c.Lookup("Int")
	assert.True(t, y.Set().Equal(typesystem.NewTypeSet(object, integer)), y.Set().Format(c))
	assert.Equal(t, 1, x.Len())
}

func TestSettle_UnpinnedIsAmbiguous(t *testing.T) {
	c := basicContext(t)
	x, y := auto(t, c), auto(t, c)

	g := New()
	g.Link(x, y, Origin{Class: "Main"})
	res := g.Settle(c)

	require.Len(t, res.Ambiguous, 1)
	assert.Equal(t, "Main", res.Ambiguous[0].Origin.Class)
	assert.Equal(t, c.NumTypes(), x.Len())
	assert.Equal(t, c.NumTypes(), y.Len())
}

func TestSettle_ConflictLeavesMembersUntouched(t *testing.T) {
	c := basicContext(t)
	x := auto(t, c, "Int", "Bool")
	y := auto(t, c, "String")
	z := auto(t, c)

	g := New()
	g.Link(x, y, Origin{})
	g.Link(y, z, Origin{})
	res := g.Settle(c)

	require.Len(t, res.Conflicts, 1)
	assert.Equal(t, 2, x.Len())
	assert.Equal(t, 1, y.Len())
	assert.Equal(t, c.NumTypes(), z.Len())
}

func TestSettle_SkipsEmptiedComponents(t *testing.T) {
	c := basicContext(t)
	x := auto(t, c, "Int")
	c.Meet(x, &typesystem.TypeSet{})
	y := auto(t, c)

	g := New()
	g.Link(x, y, Origin{})
	res := g.Settle(c)

	assert.Empty(t, res.Conflicts)
	assert.Empty(t, res.Ambiguous)
	assert.Equal(t, c.NumTypes(), y.Len())
}
