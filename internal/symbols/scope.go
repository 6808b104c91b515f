package symbols

import (
	"errors"
	"fmt"

	"github.com/funvibe/autotype/internal/typesystem"
)

type ScopeType int

const (
	ScopeProgram ScopeType = iota // root, holds no symbols
	ScopeClass                    // attributes of one class, inherited ones included
	ScopeMethod                   // formal parameters
	ScopeLet
	ScopeBranch // one case branch
)

type SymbolKind int

const (
	AttributeSymbol SymbolKind = iota
	ParamSymbol
	LocalSymbol
)

// ErrAlreadyDefined is returned by Define when the name is already local.
var ErrAlreadyDefined = errors.New("name already defined in this scope")

// Symbol is one binding. Attribute symbols read and write through the
// shared *typesystem.Attribute so every class scope that sees the
// attribute sees the same type and candidate list.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Attribute *typesystem.Attribute

	typ    typesystem.Type
	linked *typesystem.Candidates
}

func (s *Symbol) Type() typesystem.Type {
	if s.Attribute != nil {
		return s.Attribute.Type
	}
	return s.typ
}

func (s *Symbol) SetType(t typesystem.Type) {
	if s.Attribute != nil {
		s.Attribute.Type = t
		return
	}
	s.typ = t
}

// Linked is the candidate list the linker attached, nil before linking.
func (s *Symbol) Linked() *typesystem.Candidates {
	if s.Attribute != nil {
		return s.Attribute.Linked
	}
	return s.linked
}

func (s *Symbol) SetLinked(l *typesystem.Candidates) {
	if s.Attribute != nil {
		s.Attribute.Linked = l
		return
	}
	s.linked = l
}

// Scope is one node of the lexical scope tree. Children are created by the
// first pass only; later passes revisit them either by path (At) or in
// creation order (NextChild).
type Scope struct {
	Type ScopeType

	symbols []*Symbol
	byName  map[string]*Symbol

	outer    *Scope
	index    int // symbols of outer visible from here
	position int // position among outer's children
	children []*Scope
	cursor   int
}

func NewScope() *Scope {
	return &Scope{Type: ScopeProgram, byName: make(map[string]*Symbol)}
}

// CreateChild opens a nested scope. Only symbols the parent already holds
// are visible from it.
func (s *Scope) CreateChild(t ScopeType) *Scope {
	child := &Scope{
		Type:     t,
		byName:   make(map[string]*Symbol),
		outer:    s,
		index:    len(s.symbols),
		position: len(s.children),
	}
	s.children = append(s.children, child)
	return child
}

func (s *Scope) Outer() *Scope {
	return s.outer
}

func (s *Scope) Children() []*Scope {
	return s.children
}

// Symbols returns the local bindings in declaration order.
func (s *Scope) Symbols() []*Symbol {
	return s.symbols
}

// Define adds a local binding. Shadowing an outer binding is allowed.
func (s *Scope) Define(name string, kind SymbolKind, t typesystem.Type) (*Symbol, error) {
	if _, ok := s.byName[name]; ok {
		return nil, ErrAlreadyDefined
	}
	sym := &Symbol{Name: name, Kind: kind, typ: t}
	s.symbols = append(s.symbols, sym)
	s.byName[name] = sym
	return sym, nil
}

// DefineAttribute binds an attribute of the enclosing class.
func (s *Scope) DefineAttribute(a *typesystem.Attribute) (*Symbol, error) {
	if _, ok := s.byName[a.Name]; ok {
		return nil, ErrAlreadyDefined
	}
	sym := &Symbol{Name: a.Name, Kind: AttributeSymbol, Attribute: a}
	s.symbols = append(s.symbols, sym)
	s.byName[a.Name] = sym
	return sym, nil
}

// IsLocal reports whether name is bound in this scope itself.
func (s *Scope) IsLocal(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Find looks name up locally, then in each ancestor among the symbols it
// held when the path down to s was opened.
func (s *Scope) Find(name string) (*Symbol, bool) {
	if sym, ok := s.byName[name]; ok {
		return sym, true
	}
	limit := s.index
	for cur := s.outer; cur != nil; cur = cur.outer {
		for i := limit - 1; i >= 0; i-- {
			if cur.symbols[i].Name == name {
				return cur.symbols[i], true
			}
		}
		limit = cur.index
	}
	return nil, false
}

// Path is the child position at every level from the root down to s.
func (s *Scope) Path() []int {
	var rev []int
	for cur := s; cur.outer != nil; cur = cur.outer {
		rev = append(rev, cur.position)
	}
	path := make([]int, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}

// At follows a path recorded by Path on the same tree.
func (s *Scope) At(path []int) (*Scope, error) {
	cur := s
	for depth, p := range path {
		if p < 0 || p >= len(cur.children) {
			return nil, fmt.Errorf("scope path %v: no child %d at depth %d", path, p, depth)
		}
		cur = cur.children[p]
	}
	return cur, nil
}

// NextChild returns the next child in creation order, or nil when all
// children have been visited since the last Reset.
func (s *Scope) NextChild() *Scope {
	if s.cursor >= len(s.children) {
		return nil
	}
	child := s.children[s.cursor]
	s.cursor++
	return child
}

// Reset rewinds the child cursor of s and every scope below it.
func (s *Scope) Reset() {
	s.cursor = 0
	for _, child := range s.children {
		child.Reset()
	}
}
