package typesystem

import (
	"fmt"
	"strings"
)

// DuplicateTypeError indicates a class name registered twice
type DuplicateTypeError struct {
	Name string
}

func (e *DuplicateTypeError) Error() string {
	return fmt.Sprintf("Type with the same name (%s) already in context.", e.Name)
}

// UndefinedTypeError indicates a reference to an unregistered class
type UndefinedTypeError struct {
	Name string
}

func (e *UndefinedTypeError) Error() string {
	return fmt.Sprintf("Type %q is not defined.", e.Name)
}

// ParentError indicates an invalid SetParent call
type ParentError struct {
	Class  string
	Parent string
	Reason string
}

func (e *ParentError) Error() string {
	return fmt.Sprintf("Class %q cannot inherit from %q: %s.", e.Class, e.Parent, e.Reason)
}

// UnresolvedTypeError indicates a conformance query on a type that has no
// place in the hierarchy yet (SELF_TYPE, AUTO_TYPE, void).
type UnresolvedTypeError struct {
	Type Type
}

func (e *UnresolvedTypeError) Error() string {
	switch e.Type.(type) {
	case TVoid:
		return "Void type cannot conform."
	}
	return fmt.Sprintf("%s yet to be assigned, cannot conform.", e.Type)
}

// AttributeError indicates a missing or redefined attribute
type AttributeError struct {
	Name    string
	Class   string
	Owner   string
	Missing bool
}

func (e *AttributeError) Error() string {
	if e.Missing {
		return fmt.Sprintf("Attribute %q is not defined in %s.", e.Name, e.Class)
	}
	if e.Owner != "" && e.Owner != e.Class {
		return fmt.Sprintf("Attribute %q is already defined in %s, an ancestor of %s.", e.Name, e.Owner, e.Class)
	}
	return fmt.Sprintf("Attribute %q is already defined in %s.", e.Name, e.Class)
}

// MethodError indicates a missing method or one defined twice in a class
type MethodError struct {
	Name    string
	Class   string
	Missing bool
}

func (e *MethodError) Error() string {
	if e.Missing {
		return fmt.Sprintf("Method %q is not defined in %s.", e.Name, e.Class)
	}
	return fmt.Sprintf("Method %q already defined in %s.", e.Name, e.Class)
}

// ParamMismatch is one parameter position that differs from the
// inherited definition.
type ParamMismatch struct {
	Position int
	Name     string
	Got      string
	Want     string
}

// OverrideError lists every way a redefined method departs from the
// inherited signature.
type OverrideError struct {
	Method string
	Class  string
	Parent string

	ReturnGot  string
	ReturnWant string
	BadReturn  bool

	ArityGot  int
	ArityWant int
	BadArity  bool

	Params []ParamMismatch
}

func (e *OverrideError) empty() bool {
	return !e.BadReturn && !e.BadArity && len(e.Params) == 0
}

func (e *OverrideError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Redefined method %q in class %s does not match the definition in %s:", e.Method, e.Class, e.Parent)
	if e.BadReturn {
		fmt.Fprintf(&sb, "\n - return type %s does not conform to %s", e.ReturnGot, e.ReturnWant)
	}
	if e.BadArity {
		fmt.Fprintf(&sb, "\n - expected %d parameters, got %d", e.ArityWant, e.ArityGot)
	}
	for _, p := range e.Params {
		fmt.Fprintf(&sb, "\n - parameter %d %q has type %s, expected %s", p.Position+1, p.Name, p.Got, p.Want)
	}
	return sb.String()
}
