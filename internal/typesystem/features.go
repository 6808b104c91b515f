package typesystem

// Attribute is a class field. Names are unique across a class and all of
// its ancestors.
type Attribute struct {
	Name   string
	Type   Type
	Owner  TypeID
	Linked *Candidates
}

type Param struct {
	Name string
	Type Type
}

// Method is a class method. The Linked fields are filled by the linker and
// shared with every call site so filtering is seen by all of them.
type Method struct {
	Name   string
	Params []Param
	Return Type
	Owner  TypeID

	LinkedParams []*Candidates
	LinkedReturn *Candidates
}

func (m *Method) Arity() int {
	return len(m.Params)
}

// MethodMatch is a method found by name, together with the class that
// defines it.
type MethodMatch struct {
	Owner  TypeID
	Method *Method
}

// GetAttribute looks name up in id and then its ancestors.
func (c *Context) GetAttribute(id TypeID, name string) (*Attribute, error) {
	for _, anc := range c.Ancestors(id) {
		for _, a := range c.classes[anc].Attributes {
			if a.Name == name {
				return a, nil
			}
		}
	}
	return nil, &AttributeError{Name: name, Class: c.Name(id), Missing: true}
}

// DefineAttribute adds an attribute to id. Shadowing an inherited
// attribute is an error.
func (c *Context) DefineAttribute(id TypeID, name string, typ Type) (*Attribute, error) {
	if existing, err := c.GetAttribute(id, name); err == nil {
		return nil, &AttributeError{Name: name, Class: c.Name(id), Owner: c.Name(existing.Owner)}
	}
	a := &Attribute{Name: name, Type: typ, Owner: id}
	c.classes[id].Attributes = append(c.classes[id].Attributes, a)
	return a, nil
}

// AllAttributes returns the attributes visible in id, inherited first.
func (c *Context) AllAttributes(id TypeID) []*Attribute {
	anc := c.Ancestors(id)
	var out []*Attribute
	for i := len(anc) - 1; i >= 0; i-- {
		out = append(out, c.classes[anc[i]].Attributes...)
	}
	return out
}

// LocalMethod looks name up in id only.
func (c *Context) LocalMethod(id TypeID, name string) *Method {
	cl := c.Class(id)
	if cl == nil {
		return nil
	}
	for _, m := range cl.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// GetMethod looks name up in id and then its ancestors.
func (c *Context) GetMethod(id TypeID, name string) (*Method, error) {
	for _, anc := range c.Ancestors(id) {
		if m := c.LocalMethod(anc, name); m != nil {
			return m, nil
		}
	}
	return nil, &MethodError{Name: name, Class: c.Name(id), Missing: true}
}

// AllMethods returns the methods visible in id; overrides replace the
// inherited definition in place.
func (c *Context) AllMethods(id TypeID) []*Method {
	anc := c.Ancestors(id)
	var out []*Method
	pos := make(map[string]int)
	for i := len(anc) - 1; i >= 0; i-- {
		for _, m := range c.classes[anc[i]].Methods {
			if j, ok := pos[m.Name]; ok {
				out[j] = m
				continue
			}
			pos[m.Name] = len(out)
			out = append(out, m)
		}
	}
	return out
}

// DefineMethod adds a method to id. A redefinition of an inherited method
// must keep the arity and every parameter type and may only narrow the
// return type; every violation is listed in the returned *OverrideError
// and the method is not defined.
func (c *Context) DefineMethod(id TypeID, name string, params []Param, ret Type) (*Method, error) {
	if c.LocalMethod(id, name) != nil {
		return nil, &MethodError{Name: name, Class: c.Name(id)}
	}
	m := &Method{Name: name, Params: params, Return: ret, Owner: id}

	if cl := c.classes[id]; cl.Parent != NoType {
		if parent, err := c.GetMethod(cl.Parent, name); err == nil {
			if oe := c.checkOverride(id, m, parent); oe != nil {
				return nil, oe
			}
		}
	}
	c.classes[id].Methods = append(c.classes[id].Methods, m)
	return m, nil
}

func (c *Context) checkOverride(owner TypeID, m, parent *Method) *OverrideError {
	oe := &OverrideError{Method: m.Name, Class: c.Name(owner), Parent: c.Name(parent.Owner)}

	if !c.overrideReturnOK(owner, m.Return, parent.Return) {
		oe.BadReturn = true
		oe.ReturnGot = m.Return.String()
		oe.ReturnWant = parent.Return.String()
	}

	if len(m.Params) != len(parent.Params) {
		oe.BadArity = true
		oe.ArityGot = len(m.Params)
		oe.ArityWant = len(parent.Params)
	} else {
		for i := range m.Params {
			if !c.sameParamType(m.Params[i].Type, parent.Params[i].Type) {
				oe.Params = append(oe.Params, ParamMismatch{
					Position: i,
					Name:     m.Params[i].Name,
					Got:      m.Params[i].Type.String(),
					Want:     parent.Params[i].Type.String(),
				})
			}
		}
	}

	if oe.empty() {
		return nil
	}
	return oe
}

// overrideReturnOK is covariant. A placeholder facing a concrete bound is
// narrowed to it instead of being rejected.
func (c *Context) overrideReturnOK(owner TypeID, got, want Type) bool {
	if IsError(got) || IsError(want) {
		return true
	}
	switch w := want.(type) {
	case *TAuto:
		return true
	case TSelf:
		switch g := got.(type) {
		case TSelf:
			return true
		case *TAuto:
			c.Restrict(g, []TypeID{owner})
			return g.Len() > 0
		}
		return false
	case TCon:
		switch g := got.(type) {
		case TSelf:
			return c.IsSubtype(owner, w.ID)
		case TCon:
			return c.IsSubtype(g.ID, w.ID)
		case *TAuto:
			c.Restrict(g, []TypeID{w.ID})
			return g.Len() > 0
		}
	}
	return false
}

// sameParamType is invariant. A placeholder facing a concrete type is
// pinned to exactly that type.
func (c *Context) sameParamType(got, want Type) bool {
	if IsError(got) || IsError(want) {
		return true
	}
	switch g := got.(type) {
	case TSelf:
		_, ok := want.(TSelf)
		return ok
	case TCon:
		switch w := want.(type) {
		case TCon:
			return g.ID == w.ID
		case *TAuto:
			c.Meet(w, NewTypeSet(g.ID))
			return w.Len() > 0
		}
		return false
	case *TAuto:
		switch w := want.(type) {
		case TCon:
			c.Meet(g, NewTypeSet(w.ID))
			return g.Len() > 0
		case *TAuto:
			return true
		}
	}
	return false
}

// GetMethodByName searches the hierarchy in pre-order for classes defining
// a method with this name and arity. A branch is not searched below the
// first class that defines it, so overrides are not reported twice.
func (c *Context) GetMethodByName(name string, arity int) []MethodMatch {
	var out []MethodMatch
	var visit func(id TypeID)
	visit = func(id TypeID) {
		if m := c.LocalMethod(id, name); m != nil && m.Arity() == arity {
			out = append(out, MethodMatch{Owner: id, Method: m})
			return
		}
		for _, child := range c.classes[id].Children {
			visit(child)
		}
	}
	if c.root != NoType {
		visit(c.root)
	}
	return out
}
