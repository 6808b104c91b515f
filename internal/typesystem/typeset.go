package typesystem

import (
	"strings"

	"github.com/willf/bitset"
)

// TypeSet is a set of class handles. Handles are dense, so a bitset keeps
// membership and intersection cheap and iteration ordered by handle.
type TypeSet struct {
	bits bitset.BitSet
}

func NewTypeSet(ids ...TypeID) *TypeSet {
	s := &TypeSet{}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *TypeSet) Add(id TypeID) {
	if id < 0 {
		return
	}
	s.bits.Set(uint(id))
}

func (s *TypeSet) Remove(id TypeID) {
	if id < 0 {
		return
	}
	s.bits.Clear(uint(id))
}

func (s *TypeSet) Contains(id TypeID) bool {
	if s == nil || id < 0 {
		return false
	}
	return s.bits.Test(uint(id))
}

func (s *TypeSet) Len() int {
	if s == nil {
		return 0
	}
	return int(s.bits.Count())
}

func (s *TypeSet) Empty() bool {
	return s.Len() == 0
}

// IDs returns the members in ascending handle order.
func (s *TypeSet) IDs() []TypeID {
	if s == nil {
		return nil
	}
	out := make([]TypeID, 0, s.Len())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		out = append(out, TypeID(i))
	}
	return out
}

func (s *TypeSet) Clone() *TypeSet {
	if s == nil {
		return &TypeSet{}
	}
	return &TypeSet{bits: *s.bits.Clone()}
}

func (s *TypeSet) Intersect(o *TypeSet) *TypeSet {
	if s == nil || o == nil {
		return &TypeSet{}
	}
	return &TypeSet{bits: *s.bits.Intersection(&o.bits)}
}

func (s *TypeSet) Union(o *TypeSet) *TypeSet {
	out := s.Clone()
	if o != nil {
		out.bits.InPlaceUnion(&o.bits)
	}
	return out
}

// SubsetOf reports s ⊆ o.
func (s *TypeSet) SubsetOf(o *TypeSet) bool {
	if s.Empty() {
		return true
	}
	if o == nil {
		return false
	}
	return o.bits.IsSuperSet(&s.bits)
}

func (s *TypeSet) Equal(o *TypeSet) bool {
	return s.Len() == o.Len() && s.SubsetOf(o)
}

// Filter returns the members for which keep holds.
func (s *TypeSet) Filter(keep func(TypeID) bool) *TypeSet {
	out := &TypeSet{}
	for _, id := range s.IDs() {
		if keep(id) {
			out.Add(id)
		}
	}
	return out
}

// Format renders the set with class names, for traces and messages.
func (s *TypeSet) Format(c *Context) string {
	names := make([]string, 0, s.Len())
	for _, id := range s.IDs() {
		names = append(names, c.Name(id))
	}
	return "{" + strings.Join(names, ", ") + "}"
}
