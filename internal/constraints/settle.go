package constraints

import "github.com/funvibe/autotype/internal/typesystem"

// Result is the outcome of Settle.
type Result struct {
	// Conflicts are components that cannot be narrowed consistently; they
	// are left untouched.
	Conflicts []Component
	// Ambiguous are components in which nothing constrains any member.
	Ambiguous []Component
	// Narrowed counts placeholders that lost members.
	Narrowed int
}

// Settle propagates narrowing through every component until each member
// only keeps classes comparable with some class of each neighbour.
// Components holding an already empty placeholder were reported earlier
// and are skipped.
func (g *Graph) Settle(c *typesystem.Context) Result {
	var res Result
	for _, comp := range g.Components() {
		sets := make(map[typesystem.AutoID]*typesystem.TypeSet, len(comp.Members))
		skip := false
		for _, id := range comp.Members {
			a := c.Auto(id)
			if a == nil || a.Len() == 0 {
				skip = true
				break
			}
			sets[id] = a.Set()
		}
		if skip {
			continue
		}

		if !g.propagate(c, comp, sets) {
			res.Conflicts = append(res.Conflicts, comp)
			continue
		}

		unconstrained := true
		for _, id := range comp.Members {
			if sets[id].Len() != c.NumTypes() {
				unconstrained = false
			}
			if c.Meet(c.Auto(id), sets[id]) {
				res.Narrowed++
			}
		}
		if unconstrained {
			res.Ambiguous = append(res.Ambiguous, comp)
		}
	}
	return res
}

// propagate runs arc consistency on the working copies. It returns false
// as soon as a member would run empty.
func (g *Graph) propagate(c *typesystem.Context, comp Component, sets map[typesystem.AutoID]*typesystem.TypeSet) bool {
	for changed := true; changed; {
		changed = false
		for _, id := range comp.Members {
			for _, peer := range g.Peers(id) {
				other := sets[peer].IDs()
				next := sets[id].Filter(func(x typesystem.TypeID) bool {
					for _, y := range other {
						if c.Comparable(x, y) {
							return true
						}
					}
					return false
				})
				if next.Empty() {
					return false
				}
				if next.Len() != sets[id].Len() {
					sets[id] = next
					changed = true
				}
			}
		}
	}
	return true
}
