package typesystem

import (
	"fmt"

	"github.com/funvibe/autotype/internal/config"
)

// Class is a registered nominal type. Parent is set exactly once; Index and
// Depth are assigned by Finalize.
type Class struct {
	ID       TypeID
	Name     string
	Parent   TypeID
	Children []TypeID
	Index    int // pre-order position from the root, -1 if unreachable
	Depth    int // distance from the root
	Sealed   bool

	Attributes []*Attribute
	Methods    []*Method
}

// Context owns every class and placeholder of one analysis. Everything
// else refers to them by handle.
type Context struct {
	classes []*Class
	byName  map[string]TypeID
	root    TypeID
	order   []TypeID // reachable classes in pre-order

	autos    []*TAuto
	serial   int
	epoch    int
	narrowed bool
}

func NewContext() *Context {
	return &Context{
		byName: make(map[string]TypeID),
		root:   NoType,
	}
}

// CreateType registers a new class without a parent.
func (c *Context) CreateType(name string) (TypeID, error) {
	if _, ok := c.byName[name]; ok {
		return NoType, &DuplicateTypeError{Name: name}
	}
	id := TypeID(len(c.classes))
	c.classes = append(c.classes, &Class{
		ID:     id,
		Name:   name,
		Parent: NoType,
		Index:  -1,
		Sealed: config.SealedClasses[name],
	})
	c.byName[name] = id
	return id, nil
}

// Lookup finds a registered class by name.
func (c *Context) Lookup(name string) (TypeID, bool) {
	id, ok := c.byName[name]
	return id, ok
}

// Class returns the record behind a handle.
func (c *Context) Class(id TypeID) *Class {
	if id < 0 || int(id) >= len(c.classes) {
		return nil
	}
	return c.classes[id]
}

func (c *Context) Name(id TypeID) string {
	if cl := c.Class(id); cl != nil {
		return cl.Name
	}
	return fmt.Sprintf("<type %d>", int(id))
}

// Con wraps a handle as a concrete type.
func (c *Context) Con(id TypeID) TCon {
	return TCon{ID: id, Name: c.Name(id)}
}

// GetType resolves a type name as written in a declaration. SELF_TYPE
// yields a fresh TSelf and AUTO_TYPE a fresh placeholder over every
// reachable class.
func (c *Context) GetType(name string) (Type, error) {
	switch name {
	case config.SelfTypeName:
		return TSelf{}, nil
	case config.AutoTypeName:
		return c.NewAuto("", []TypeID{c.root}, c.Universe()), nil
	}
	if id, ok := c.byName[name]; ok {
		return c.Con(id), nil
	}
	return nil, &UndefinedTypeError{Name: name}
}

// SetParent links child under parent. It fails when the parent is sealed
// or the child already has one.
func (c *Context) SetParent(child, parent TypeID) error {
	ch, p := c.Class(child), c.Class(parent)
	if ch == nil || p == nil {
		return fmt.Errorf("SetParent: unknown handle %d or %d", child, parent)
	}
	if ch.Parent != NoType {
		return &ParentError{Class: ch.Name, Parent: p.Name, Reason: "parent type is already set"}
	}
	if p.Sealed {
		return &ParentError{Class: ch.Name, Parent: p.Name, Reason: "parent is a sealed basic type"}
	}
	ch.Parent = parent
	p.Children = append(p.Children, child)
	return nil
}

// Finalize assigns pre-order indices and depths from root and closes the
// hierarchy. It returns the classes that cannot be reached from root.
func (c *Context) Finalize(root TypeID) []TypeID {
	c.root = root
	c.order = c.order[:0]
	for _, cl := range c.classes {
		cl.Index = -1
		cl.Depth = 0
	}

	var visit func(id TypeID, depth int)
	visit = func(id TypeID, depth int) {
		cl := c.classes[id]
		if cl.Index >= 0 {
			return
		}
		cl.Index = len(c.order)
		cl.Depth = depth
		c.order = append(c.order, id)
		for _, child := range cl.Children {
			visit(child, depth+1)
		}
	}
	if root != NoType {
		visit(root, 0)
	}

	var unreached []TypeID
	for _, cl := range c.classes {
		if cl.Index < 0 {
			unreached = append(unreached, cl.ID)
		}
	}
	return unreached
}

func (c *Context) Root() TypeID {
	return c.root
}

// Order returns the reachable classes in pre-order.
func (c *Context) Order() []TypeID {
	return c.order
}

// NumTypes is the number of classes placed in the hierarchy.
func (c *Context) NumTypes() int {
	return len(c.order)
}

// Universe is the set of every class placed in the hierarchy.
func (c *Context) Universe() *TypeSet {
	return NewTypeSet(c.order...)
}

// Subtree is the set of sub and every class below it.
func (c *Context) Subtree(sub TypeID) *TypeSet {
	out := &TypeSet{}
	var walk func(id TypeID)
	walk = func(id TypeID) {
		out.Add(id)
		for _, child := range c.classes[id].Children {
			walk(child)
		}
	}
	if cl := c.Class(sub); cl != nil && cl.Index >= 0 {
		walk(sub)
	}
	return out
}

// IsSubtype reports a <= b in the hierarchy.
func (c *Context) IsSubtype(a, b TypeID) bool {
	if a == b {
		return true
	}
	ca, cb := c.Class(a), c.Class(b)
	if ca == nil || cb == nil || ca.Index < 0 || cb.Index < 0 {
		return false
	}
	for cur := ca; cur.Depth > cb.Depth; cur = c.classes[cur.Parent] {
		if cur.Parent == b {
			return true
		}
	}
	return false
}

// Comparable reports a <= b or b <= a.
func (c *Context) Comparable(a, b TypeID) bool {
	return c.IsSubtype(a, b) || c.IsSubtype(b, a)
}

// ConformsTo answers a <= b for resolved types. TError conforms both
// ways; TVoid, TSelf and placeholders are not answerable.
func (c *Context) ConformsTo(a, b Type) (bool, error) {
	if IsError(a) || IsError(b) {
		return true, nil
	}
	ac, ok := a.(TCon)
	if !ok {
		return false, &UnresolvedTypeError{Type: a}
	}
	bc, ok := b.(TCon)
	if !ok {
		return false, &UnresolvedTypeError{Type: b}
	}
	return c.IsSubtype(ac.ID, bc.ID), nil
}

// LCA is the least common ancestor, found by lifting the deeper class
// until both meet. NoType if either class is outside the hierarchy.
func (c *Context) LCA(a, b TypeID) TypeID {
	ca, cb := c.Class(a), c.Class(b)
	if ca == nil || cb == nil || ca.Index < 0 || cb.Index < 0 {
		return NoType
	}
	for ca.Depth > cb.Depth {
		ca = c.classes[ca.Parent]
	}
	for cb.Depth > ca.Depth {
		cb = c.classes[cb.Parent]
	}
	for ca.ID != cb.ID {
		ca = c.classes[ca.Parent]
		cb = c.classes[cb.Parent]
	}
	return ca.ID
}

// Ancestors returns a and every class above it, nearest first.
func (c *Context) Ancestors(a TypeID) []TypeID {
	var out []TypeID
	for cl := c.Class(a); cl != nil; cl = c.Class(cl.Parent) {
		out = append(out, cl.ID)
		if cl.Index < 0 {
			break
		}
	}
	return out
}
