package typesystem

import (
	"sort"
	"strings"
)

// Candidates is the linked form of a type: an ordered list of the classes
// it may resolve to, most specific (highest index) first. Lists are shared
// by pointer between everything the linker ties together.
type Candidates struct {
	Types []Type
}

// AllPos expands t into its candidate list. A concrete type, SELF_TYPE or
// TError stays a single entry.
func (c *Context) AllPos(t Type) *Candidates {
	switch v := t.(type) {
	case nil:
		return &Candidates{Types: []Type{TError{}}}
	case *TAuto:
		ids := v.set.IDs()
		sort.SliceStable(ids, func(i, j int) bool {
			return c.classes[ids[i]].Index > c.classes[ids[j]].Index
		})
		out := &Candidates{Types: make([]Type, 0, len(ids))}
		for _, id := range ids {
			out.Types = append(out.Types, c.Con(id))
		}
		return out
	}
	return &Candidates{Types: []Type{t}}
}

func (l *Candidates) Len() int {
	return len(l.Types)
}

// Last is the most general candidate.
func (l *Candidates) Last() Type {
	if len(l.Types) == 0 {
		return TError{}
	}
	return l.Types[len(l.Types)-1]
}

// HasError reports whether the list carries the absorbing type.
func (l *Candidates) HasError() bool {
	for _, t := range l.Types {
		if IsError(t) {
			return true
		}
	}
	return false
}

// Filter keeps the candidates for which keep holds, in place. It reports
// whether anything was removed.
func (l *Candidates) Filter(keep func(Type) bool) bool {
	kept := l.Types[:0]
	for _, t := range l.Types {
		if keep(t) {
			kept = append(kept, t)
		}
	}
	removed := len(kept) != len(l.Types)
	l.Types = kept
	return removed
}

// Clone copies the list so the copy can diverge.
func (l *Candidates) Clone() *Candidates {
	out := &Candidates{Types: make([]Type, len(l.Types))}
	copy(out.Types, l.Types)
	return out
}

func (l *Candidates) String() string {
	names := make([]string, len(l.Types))
	for i, t := range l.Types {
		names[i] = t.String()
	}
	return "[" + strings.Join(names, ", ") + "]"
}
