package typesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fresh(t *testing.T, c *Context) *TAuto {
	t.Helper()
	typ, err := c.GetType("AUTO_TYPE")
	require.NoError(t, err)
	return typ.(*TAuto)
}

func set(ids map[string]TypeID, names ...string) *TypeSet {
	s := &TypeSet{}
	for _, n := range names {
		s.Add(ids[n])
	}
	return s
}

func TestMeet_NeverGrows(t *testing.T) {
	c, ids := newHierarchy(t)
	a := fresh(t, c)

	steps := []*TypeSet{
		set(ids, "Object", "A", "B", "C", "D", "Int"),
		set(ids, "A", "B", "C", "Int", "String"),
		c.Universe(),
		set(ids, "B", "C"),
	}
	prev := a.Set()
	for _, s := range steps {
		c.Meet(a, s)
		assert.True(t, a.Set().SubsetOf(prev), "set grew to %s", a.Set().Format(c))
		prev = a.Set()
	}
	assert.True(t, a.Set().Equal(set(ids, "B", "C")))
	assert.Equal(t, []TypeID{ids["B"]}, a.Heads())

	assert.False(t, c.Meet(a, c.Universe()), "meeting with a superset changes nothing")
}

func TestRestrict_ReplacesRemovedHead(t *testing.T) {
	c, ids := newHierarchy(t)
	a := fresh(t, c)

	changed := c.Restrict(a, []TypeID{ids["A"], ids["Int"]})
	require.True(t, changed)

	assert.True(t, a.Set().Equal(set(ids, "Int", "A", "B", "C", "D")), a.Set().Format(c))
	assert.Equal(t, []TypeID{ids["Int"], ids["A"]}, a.Heads())
	require.Len(t, a.Conditions(), 1)
	assert.ElementsMatch(t, []TypeID{ids["A"], ids["Int"]}, a.Conditions()[0])
}

func TestUpdateHeads_CoversDeeperMembers(t *testing.T) {
	c, ids := newHierarchy(t)
	a := fresh(t, c)

	c.Meet(a, set(ids, "Int", "C"))
	assert.Equal(t, []TypeID{ids["Int"], ids["C"]}, a.Heads())

	for _, m := range a.Set().IDs() {
		covered := false
		for _, h := range a.Heads() {
			covered = covered || c.IsSubtype(m, h)
		}
		assert.True(t, covered, "%s has no head above it", c.Name(m))
	}
}

func TestUpdateHeads_KeepsSurvivingHead(t *testing.T) {
	c, ids := newHierarchy(t)
	a := fresh(t, c)

	c.Meet(a, set(ids, "A", "B", "C", "D"))
	require.Equal(t, []TypeID{ids["A"]}, a.Heads())

	c.Meet(a, set(ids, "A", "C"))
	assert.Equal(t, []TypeID{ids["A"]}, a.Heads())
}

func TestSmartAdd_KeepsAntichain(t *testing.T) {
	c, ids := newHierarchy(t)

	var heads []TypeID
	s := &TypeSet{}

	heads, s = c.SmartAdd(s, heads, ids["B"])
	assert.Equal(t, []TypeID{ids["B"]}, heads)

	heads, s = c.SmartAdd(s, heads, ids["C"])
	assert.Equal(t, []TypeID{ids["B"]}, heads, "C is below B")

	heads, s = c.SmartAdd(s, heads, ids["A"])
	assert.Equal(t, []TypeID{ids["A"]}, heads, "B is dropped under A")

	heads, s = c.SmartAdd(s, heads, ids["Int"])
	assert.Equal(t, []TypeID{ids["A"], ids["Int"]}, heads)
	assert.Equal(t, 4, s.Len())

	for i, x := range heads {
		for j, y := range heads {
			if i != j {
				assert.False(t, c.IsSubtype(x, y), "heads %s and %s are comparable", c.Name(x), c.Name(y))
			}
		}
	}
}

func TestJoin(t *testing.T) {
	c, ids := newHierarchy(t)
	con := func(n string) Type { return c.Con(ids[n]) }

	j := c.Join(con("Int"), con("String")).(*TAuto)
	assert.True(t, j.Set().Equal(set(ids, "Object")))
	assert.Equal(t, "JOIN", j.Serial)

	j = c.Join(con("B"), con("D")).(*TAuto)
	assert.True(t, j.Set().Equal(set(ids, "A")))

	bc := fresh(t, c)
	c.Meet(bc, set(ids, "B", "Int"))
	j = c.Join(bc, con("C")).(*TAuto)
	assert.True(t, j.Set().Equal(set(ids, "B", "Object")), j.Set().Format(c))
	assert.Equal(t, []TypeID{ids["Object"]}, j.Heads())

	assert.IsType(t, TError{}, c.Join(TError{}, con("A")))
	assert.IsType(t, TError{}, c.Join(TSelf{}, con("A")), "SELF_TYPE must be rebound before joining")
}

func TestJoinList(t *testing.T) {
	c, ids := newHierarchy(t)
	b := c.Con(ids["B"])

	assert.Equal(t, b, c.JoinList([]Type{b}))
	assert.IsType(t, TError{}, c.JoinList(nil))

	j := c.JoinList([]Type{b, c.Con(ids["C"]), c.Con(ids["D"])}).(*TAuto)
	assert.True(t, j.Set().Equal(set(ids, "A")))
}

func TestConforms_ConcreteIntoPlaceholder(t *testing.T) {
	c, ids := newHierarchy(t)
	x := fresh(t, c)

	got := c.Conforms(c.Con(ids["Int"]), x)
	assert.Equal(t, c.Con(ids["Int"]), got)
	assert.True(t, x.Set().Equal(set(ids, "Object", "Int")), x.Set().Format(c))
}

func TestConforms_PlaceholderIntoConcrete(t *testing.T) {
	c, ids := newHierarchy(t)
	x := fresh(t, c)

	got := c.Conforms(x, c.Con(ids["A"]))
	assert.Same(t, x, got)
	assert.True(t, x.Set().Equal(set(ids, "A", "B", "C", "D")), x.Set().Format(c))
	assert.Equal(t, []TypeID{ids["A"]}, x.Heads())
}

func TestConforms_BothPlaceholders(t *testing.T) {
	c, ids := newHierarchy(t)
	lo, hi := fresh(t, c), fresh(t, c)
	c.Meet(lo, set(ids, "C", "Int"))
	c.Meet(hi, set(ids, "B", "D", "String"))

	got := c.Conforms(lo, hi)
	assert.Same(t, lo, got)
	assert.True(t, lo.Set().Equal(set(ids, "C")), lo.Set().Format(c))
	assert.True(t, hi.Set().Equal(set(ids, "B")), hi.Set().Format(c))
}

func TestConforms_EmptiedPlaceholderIsError(t *testing.T) {
	c, ids := newHierarchy(t)
	x := fresh(t, c)
	c.Meet(x, set(ids, "Int"))

	assert.IsType(t, TError{}, c.Conforms(x, c.Con(ids["String"])))
	assert.Equal(t, 0, x.Len())
}

func TestConforms_Concrete(t *testing.T) {
	c, ids := newHierarchy(t)
	a, cc := c.Con(ids["A"]), c.Con(ids["C"])

	assert.Equal(t, cc, c.Conforms(cc, a))
	assert.IsType(t, TError{}, c.Conforms(a, cc))
	assert.IsType(t, TError{}, c.Conforms(TSelf{}, a))
	assert.IsType(t, TError{}, c.Conforms(TError{}, a))
}

func TestIsSubset(t *testing.T) {
	c, ids := newHierarchy(t)
	small, big := fresh(t, c), fresh(t, c)
	c.Meet(small, set(ids, "B", "C"))
	c.Meet(big, set(ids, "A", "B", "C"))

	assert.True(t, c.IsSubset(small, big))
	assert.False(t, c.IsSubset(big, small))
	assert.True(t, c.IsSubset(TError{}, small))
	assert.True(t, c.IsSubset(c.Con(ids["B"]), small))
	assert.False(t, c.IsSubset(c.Con(ids["Int"]), small))
}

func TestEpoch_OnlyOlderPlaceholdersCount(t *testing.T) {
	c, ids := newHierarchy(t)
	old := fresh(t, c)

	c.BeginEpoch()
	assert.False(t, c.Narrowed())
	c.Meet(old, set(ids, "A", "B"))
	assert.True(t, c.Narrowed())

	c.BeginEpoch()
	young := fresh(t, c)
	c.Meet(young, set(ids, "Int"))
	assert.False(t, c.Narrowed(), "a placeholder born in this pass does not count")

	c.Meet(old, set(ids, "A"))
	assert.True(t, c.Narrowed())
}

func TestAllPos_MostSpecificFirst(t *testing.T) {
	c, ids := newHierarchy(t)
	x := fresh(t, c)
	c.Meet(x, set(ids, "Object", "Int", "A", "C"))

	list := c.AllPos(x)
	want := []Type{c.Con(ids["C"]), c.Con(ids["A"]), c.Con(ids["Int"]), c.Con(ids["Object"])}
	assert.Equal(t, want, list.Types)
	assert.Equal(t, c.Con(ids["Object"]), list.Last())

	assert.Equal(t, []Type{TError{}}, c.AllPos(nil).Types)
	assert.Equal(t, []Type{TSelf{}}, c.AllPos(TSelf{}).Types)
}

func TestCandidates_Filter(t *testing.T) {
	c, ids := newHierarchy(t)
	x := fresh(t, c)
	c.Meet(x, set(ids, "A", "B", "Int"))

	list := c.AllPos(x)
	shared := list
	removed := list.Filter(func(t Type) bool {
		return c.IsSubtype(t.(TCon).ID, ids["A"])
	})
	assert.True(t, removed)
	assert.Equal(t, 2, shared.Len(), "filtering is visible through every reference")
	assert.False(t, list.HasError())

	clone := list.Clone()
	clone.Filter(func(Type) bool { return false })
	assert.Equal(t, 2, list.Len())
	assert.Equal(t, "[B, A]", list.String())
}

func TestTypeSet(t *testing.T) {
	s := NewTypeSet(3, 1, 7)
	assert.Equal(t, []TypeID{1, 3, 7}, s.IDs())
	assert.True(t, s.Contains(7))
	assert.False(t, s.Contains(NoType))

	s.Remove(3)
	assert.Equal(t, 2, s.Len())

	o := NewTypeSet(1, 2)
	assert.Equal(t, []TypeID{1}, s.Intersect(o).IDs())
	assert.Equal(t, []TypeID{1, 2, 7}, s.Union(o).IDs())
	assert.True(t, NewTypeSet(1).SubsetOf(s))
	assert.True(t, (&TypeSet{}).SubsetOf(nil))
	assert.True(t, NewTypeSet(7, 1).Equal(s))
}
