package typesystem

import (
	"fmt"
	"strings"

	"github.com/funvibe/autotype/internal/config"
)

// TypeID is the handle of a registered class inside its Context.
type TypeID int

// NoType marks a missing parent or an unreachable class.
const NoType TypeID = -1

// Type is the interface for all types in our system. The set of variants
// is closed: TCon, TError, TVoid, TSelf and *TAuto.
type Type interface {
	String() string
	typeNode()
}

// TCon is a registered nominal class.
type TCon struct {
	ID   TypeID
	Name string
}

func (t TCon) typeNode() {}

func (t TCon) String() string { return t.Name }

// TError is the absorbing type: it conforms to everything and everything
// conforms to it, so one mistake does not cascade.
type TError struct{}

func (TError) typeNode() {}

func (TError) String() string { return "<error>" }

// TVoid is the type of an uninitialized value. Any conformance query
// involving it is a failure.
type TVoid struct{}

func (TVoid) typeNode() {}

func (TVoid) String() string { return "<void>" }

// TSelf stands for SELF_TYPE until it is rebound to the class in which it
// is being checked.
type TSelf struct{}

func (TSelf) typeNode() {}

func (TSelf) String() string { return config.SelfTypeName }

// AutoID is the handle of a placeholder inside its Context.
type AutoID int

// TAuto is an AUTO_TYPE placeholder: the set of classes it may still
// resolve to, plus the heads of that set (its maximal elements). The set
// only ever shrinks, and only through Context methods.
type TAuto struct {
	ID     AutoID
	Serial string

	heads []TypeID
	set   *TypeSet

	// conditions[i] are candidate upper bounds supplied by one Restrict
	// call, conforms[i] the members that satisfied them.
	conditions [][]TypeID
	conforms   []*TypeSet

	born int // epoch of creation
}

func (*TAuto) typeNode() {}

func (t *TAuto) String() string {
	serial := t.Serial
	if config.IsTestMode && strings.HasPrefix(serial, "T") {
		serial = "T?"
	}
	return fmt.Sprintf("%s(%s)", config.AutoTypeName, serial)
}

// Heads returns a copy of the current upper-bound heads.
func (t *TAuto) Heads() []TypeID {
	out := make([]TypeID, len(t.heads))
	copy(out, t.heads)
	return out
}

// Set returns a copy of the candidate set.
func (t *TAuto) Set() *TypeSet {
	return t.set.Clone()
}

func (t *TAuto) Len() int {
	return t.set.Len()
}

func (t *TAuto) Contains(id TypeID) bool {
	return t.set.Contains(id)
}

// Conditions returns the recorded restriction history.
func (t *TAuto) Conditions() [][]TypeID {
	return t.conditions
}

// IsError reports whether t is the absorbing error type.
func IsError(t Type) bool {
	_, ok := t.(TError)
	return ok
}

// IsAuto reports whether t is a placeholder.
func IsAuto(t Type) bool {
	_, ok := t.(*TAuto)
	return ok
}

// ResolveSelf rebinds SELF_TYPE to the class it is checked in.
func (c *Context) ResolveSelf(t Type, current TypeID) Type {
	if _, ok := t.(TSelf); ok && current != NoType {
		return c.Con(current)
	}
	return t
}
