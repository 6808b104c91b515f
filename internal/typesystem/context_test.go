package typesystem

import (
	"errors"
	"testing"
)

// newHierarchy builds:
//
//	Object
//	├── IO, String, Int, Bool
//	├── A
//	│   ├── B
//	│   │   └── C
//	│   └── D
//	└── E
func newHierarchy(t *testing.T) (*Context, map[string]TypeID) {
	t.Helper()
	c := NewContext()
	object := InstallBasicClasses(c)
	ids := map[string]TypeID{}
	for _, name := range []string{"Object", "IO", "String", "Int", "Bool"} {
		ids[name], _ = c.Lookup(name)
	}
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		id, err := c.CreateType(name)
		if err != nil {
			t.Fatalf("CreateType(%s): %v", name, err)
		}
		ids[name] = id
	}
	links := [][2]string{{"A", "Object"}, {"B", "A"}, {"C", "B"}, {"D", "A"}, {"E", "Object"}}
	for _, l := range links {
		if err := c.SetParent(ids[l[0]], ids[l[1]]); err != nil {
			t.Fatalf("SetParent(%s, %s): %v", l[0], l[1], err)
		}
	}
	if unreached := c.Finalize(object); len(unreached) != 0 {
		t.Fatalf("unexpected unreachable classes: %v", unreached)
	}
	InstallBasicMethods(c)
	return c, ids
}

func TestFinalize_PreOrderIndices(t *testing.T) {
	c, ids := newHierarchy(t)

	want := []string{"Object", "IO", "String", "Int", "Bool", "A", "B", "C", "D", "E"}
	for i, name := range want {
		if got := c.Class(ids[name]).Index; got != i {
			t.Errorf("index(%s) = %d, want %d", name, got, i)
		}
	}

	depths := map[string]int{"Object": 0, "Int": 1, "A": 1, "B": 2, "C": 3, "D": 2, "E": 1}
	for name, d := range depths {
		if got := c.Class(ids[name]).Depth; got != d {
			t.Errorf("depth(%s) = %d, want %d", name, got, d)
		}
	}

	for _, a := range c.Order() {
		for _, b := range c.Order() {
			if a != b && c.IsSubtype(a, b) && c.Class(a).Index <= c.Class(b).Index {
				t.Errorf("%s is below %s but does not have a greater index", c.Name(a), c.Name(b))
			}
		}
	}
	if c.NumTypes() != len(want) {
		t.Errorf("NumTypes = %d, want %d", c.NumTypes(), len(want))
	}
}

func TestFinalize_ReportsUnreachable(t *testing.T) {
	c := NewContext()
	object := InstallBasicClasses(c)
	x, _ := c.CreateType("X")
	y, _ := c.CreateType("Y")
	_ = c.SetParent(x, y)
	_ = c.SetParent(y, x)

	unreached := c.Finalize(object)
	if len(unreached) != 2 {
		t.Fatalf("expected X and Y unreachable, got %v", unreached)
	}
	if c.IsSubtype(x, y) || c.LCA(x, object) != NoType {
		t.Error("classes outside the hierarchy must not conform or have an LCA")
	}
}

func TestConformsTo_PartialOrder(t *testing.T) {
	c, _ := newHierarchy(t)
	all := c.Order()

	for _, a := range all {
		if ok, _ := c.ConformsTo(c.Con(a), c.Con(a)); !ok {
			t.Errorf("%s must conform to itself", c.Name(a))
		}
		for _, b := range all {
			ab, _ := c.ConformsTo(c.Con(a), c.Con(b))
			ba, _ := c.ConformsTo(c.Con(b), c.Con(a))
			if a != b && ab && ba {
				t.Errorf("antisymmetry broken for %s and %s", c.Name(a), c.Name(b))
			}
			for _, z := range all {
				bz, _ := c.ConformsTo(c.Con(b), c.Con(z))
				az, _ := c.ConformsTo(c.Con(a), c.Con(z))
				if ab && bz && !az {
					t.Errorf("transitivity broken: %s <= %s <= %s", c.Name(a), c.Name(b), c.Name(z))
				}
			}
		}
	}
}

func TestConformsTo_SpecialTypes(t *testing.T) {
	c, ids := newHierarchy(t)
	a := c.Con(ids["A"])

	if ok, err := c.ConformsTo(TError{}, a); !ok || err != nil {
		t.Errorf("TError must conform to everything, got %v %v", ok, err)
	}
	if ok, err := c.ConformsTo(a, TError{}); !ok || err != nil {
		t.Errorf("everything must conform to TError, got %v %v", ok, err)
	}

	auto, _ := c.GetType("AUTO_TYPE")
	for _, typ := range []Type{TVoid{}, TSelf{}, auto} {
		_, err := c.ConformsTo(typ, a)
		var ue *UnresolvedTypeError
		if !errors.As(err, &ue) {
			t.Errorf("ConformsTo(%s, A): expected UnresolvedTypeError, got %v", typ, err)
		}
	}
}

func TestLCA(t *testing.T) {
	c, ids := newHierarchy(t)
	tests := []struct{ a, b, want string }{
		{"C", "D", "A"},
		{"C", "Int", "Object"},
		{"B", "B", "B"},
		{"C", "A", "A"},
		{"E", "C", "Object"},
	}
	for _, tt := range tests {
		if got := c.LCA(ids[tt.a], ids[tt.b]); got != ids[tt.want] {
			t.Errorf("LCA(%s, %s) = %s, want %s", tt.a, tt.b, c.Name(got), tt.want)
		}
	}
}

func TestGetType(t *testing.T) {
	c, ids := newHierarchy(t)

	self, err := c.GetType("SELF_TYPE")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := self.(TSelf); !ok {
		t.Errorf("SELF_TYPE resolved to %T", self)
	}

	a1, _ := c.GetType("AUTO_TYPE")
	a2, _ := c.GetType("AUTO_TYPE")
	p1, ok := a1.(*TAuto)
	if !ok {
		t.Fatalf("AUTO_TYPE resolved to %T", a1)
	}
	if a1 == a2 {
		t.Error("every AUTO_TYPE must be a fresh placeholder")
	}
	if p1.Len() != c.NumTypes() {
		t.Errorf("fresh placeholder has %d candidates, want %d", p1.Len(), c.NumTypes())
	}
	if heads := p1.Heads(); len(heads) != 1 || heads[0] != ids["Object"] {
		t.Errorf("fresh placeholder heads = %v, want [Object]", heads)
	}

	typ, err := c.GetType("B")
	if err != nil || typ.(TCon).ID != ids["B"] {
		t.Errorf("GetType(B) = %v, %v", typ, err)
	}

	_, err = c.GetType("Nope")
	var ue *UndefinedTypeError
	if !errors.As(err, &ue) || ue.Name != "Nope" {
		t.Errorf("expected UndefinedTypeError, got %v", err)
	}
}

func TestCreateType_Duplicate(t *testing.T) {
	c, _ := newHierarchy(t)
	_, err := c.CreateType("A")
	var de *DuplicateTypeError
	if !errors.As(err, &de) {
		t.Fatalf("expected DuplicateTypeError, got %v", err)
	}
}

func TestSetParent_Errors(t *testing.T) {
	c, ids := newHierarchy(t)
	var pe *ParentError
	if err := c.SetParent(ids["B"], ids["E"]); !errors.As(err, &pe) {
		t.Errorf("re-setting a parent must fail, got %v", err)
	}
	x, _ := c.CreateType("X")
	if err := c.SetParent(x, ids["Int"]); !errors.As(err, &pe) {
		t.Errorf("inheriting from Int must fail, got %v", err)
	}
}

func TestAttributes(t *testing.T) {
	c, ids := newHierarchy(t)
	intT := c.Con(ids["Int"])

	if _, err := c.DefineAttribute(ids["A"], "size", intT); err != nil {
		t.Fatal(err)
	}
	got, err := c.GetAttribute(ids["C"], "size")
	if err != nil || got.Owner != ids["A"] {
		t.Errorf("GetAttribute must walk up to A, got %v %v", got, err)
	}

	_, err = c.DefineAttribute(ids["B"], "size", intT)
	var ae *AttributeError
	if !errors.As(err, &ae) || ae.Owner != "A" {
		t.Errorf("shadowing an inherited attribute must fail, got %v", err)
	}

	if _, err := c.DefineAttribute(ids["B"], "extra", intT); err != nil {
		t.Fatal(err)
	}
	all := c.AllAttributes(ids["C"])
	if len(all) != 2 || all[0].Name != "size" || all[1].Name != "extra" {
		t.Errorf("AllAttributes(C) = %v, want inherited first", all)
	}
}

func TestDefineMethod_OverrideReportsEveryMismatch(t *testing.T) {
	c, ids := newHierarchy(t)
	intT, strT := c.Con(ids["Int"]), c.Con(ids["String"])

	params := []Param{{Name: "x", Type: intT}, {Name: "y", Type: strT}}
	if _, err := c.DefineMethod(ids["A"], "f", params, c.Con(ids["A"])); err != nil {
		t.Fatal(err)
	}

	swapped := []Param{{Name: "x", Type: strT}, {Name: "y", Type: intT}}
	m, err := c.DefineMethod(ids["B"], "f", swapped, intT)
	var oe *OverrideError
	if !errors.As(err, &oe) {
		t.Fatalf("expected OverrideError, got %v", err)
	}
	if m != nil {
		t.Error("a rejected override must not be defined")
	}
	if inherited, err := c.GetMethod(ids["B"], "f"); err != nil || inherited.Owner != ids["A"] {
		t.Errorf("B.f must still resolve to A.f, got %v (%v)", inherited, err)
	}
	if !oe.BadReturn {
		t.Error("return Int does not conform to A")
	}
	if oe.BadArity {
		t.Error("arity matches")
	}
	if len(oe.Params) != 2 || oe.Params[0].Position != 0 || oe.Params[1].Position != 1 {
		t.Errorf("expected both parameter positions, got %+v", oe.Params)
	}

	_, err = c.DefineMethod(ids["D"], "f", params[:1], c.Con(ids["C"]))
	if !errors.As(err, &oe) || !oe.BadArity || oe.BadReturn {
		t.Errorf("expected only an arity mismatch, got %v", err)
	}

	// B.f was rejected, so C is checked against A.f.
	_, err = c.DefineMethod(ids["C"], "f", swapped, intT)
	if !errors.As(err, &oe) || len(oe.Params) != 2 || oe.Parent != "A" {
		t.Errorf("expected C.f checked against A.f, got %v", err)
	}
	if _, err := c.DefineMethod(ids["C"], "f", params, c.Con(ids["C"])); err != nil {
		t.Errorf("a matching override is valid, got %v", err)
	}

	var me *MethodError
	if _, err := c.DefineMethod(ids["C"], "f", params, intT); !errors.As(err, &me) {
		t.Errorf("defining f twice in C must fail, got %v", err)
	}
}

func TestDefineMethod_OverrideNarrowsPlaceholders(t *testing.T) {
	c, ids := newHierarchy(t)
	intT := c.Con(ids["Int"])

	if _, err := c.DefineMethod(ids["A"], "g", []Param{{Name: "x", Type: intT}}, c.Con(ids["B"])); err != nil {
		t.Fatal(err)
	}
	param, _ := c.GetType("AUTO_TYPE")
	ret, _ := c.GetType("AUTO_TYPE")
	if _, err := c.DefineMethod(ids["D"], "g", []Param{{Name: "x", Type: param}}, ret); err != nil {
		t.Fatalf("placeholders must be accepted and narrowed, got %v", err)
	}

	p := param.(*TAuto)
	if p.Len() != 1 || !p.Contains(ids["Int"]) {
		t.Errorf("parameter placeholder = %s, want {Int}", p.Set().Format(c))
	}
	r := ret.(*TAuto)
	if !r.Set().Equal(NewTypeSet(ids["B"], ids["C"])) {
		t.Errorf("return placeholder = %s, want {B, C}", r.Set().Format(c))
	}
}

func TestGetMethodByName(t *testing.T) {
	c, ids := newHierarchy(t)
	intT := c.Con(ids["Int"])
	for _, name := range []string{"B", "C", "D"} {
		if _, err := c.DefineMethod(ids[name], "area", nil, intT); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := c.DefineMethod(ids["E"], "area", []Param{{Name: "k", Type: intT}}, intT); err != nil {
		t.Fatal(err)
	}

	got := c.GetMethodByName("area", 0)
	if len(got) != 2 || got[0].Owner != ids["B"] || got[1].Owner != ids["D"] {
		t.Errorf("GetMethodByName(area, 0) owners = %v, want [B D]", owners(c, got))
	}
	if got := c.GetMethodByName("area", 1); len(got) != 1 || got[0].Owner != ids["E"] {
		t.Errorf("GetMethodByName(area, 1) owners = %v, want [E]", owners(c, got))
	}
	if got := c.GetMethodByName("copy", 0); len(got) != 1 || got[0].Owner != ids["Object"] {
		t.Errorf("methods of the root must be found, got %v", owners(c, got))
	}
}

func TestAllMethods_OverrideReplacesInherited(t *testing.T) {
	c, ids := newHierarchy(t)
	if _, err := c.DefineMethod(ids["A"], "copy", nil, TSelf{}); err != nil {
		t.Fatal(err)
	}
	ms := c.AllMethods(ids["B"])
	if len(ms) != 3 {
		t.Fatalf("expected abort, type_name, copy; got %d methods", len(ms))
	}
	for _, m := range ms {
		if m.Name == "copy" && m.Owner != ids["A"] {
			t.Errorf("copy must come from A, got %s", c.Name(m.Owner))
		}
	}
}

func owners(c *Context, ms []MethodMatch) []string {
	var out []string
	for _, m := range ms {
		out = append(out, c.Name(m.Owner))
	}
	return out
}
