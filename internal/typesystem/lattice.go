package typesystem

import "fmt"

// NewAuto registers a placeholder with the given heads and candidate set.
// An empty serial gets a fresh T<n> name.
func (c *Context) NewAuto(serial string, heads []TypeID, set *TypeSet) *TAuto {
	c.serial++
	if serial == "" {
		serial = fmt.Sprintf("T%d", c.serial)
	}
	a := &TAuto{
		ID:     AutoID(len(c.autos)),
		Serial: serial,
		set:    set.Clone(),
		born:   c.epoch,
	}
	for _, h := range heads {
		if h != NoType {
			a.heads = append(a.heads, h)
		}
	}
	c.autos = append(c.autos, a)
	return a
}

// Auto returns the placeholder behind a handle.
func (c *Context) Auto(id AutoID) *TAuto {
	if id < 0 || int(id) >= len(c.autos) {
		return nil
	}
	return c.autos[id]
}

// BeginEpoch starts a new inference pass. Narrowing a placeholder created
// before this call marks the pass as changed.
func (c *Context) BeginEpoch() int {
	c.epoch++
	c.narrowed = false
	return c.epoch
}

// Narrowed reports whether an older placeholder shrank in this epoch.
func (c *Context) Narrowed() bool {
	return c.narrowed
}

// Candidates returns the classes t may still resolve to. Anything that is
// neither concrete nor a placeholder has none.
func (c *Context) Candidates(t Type) *TypeSet {
	switch v := t.(type) {
	case TCon:
		return NewTypeSet(v.ID)
	case *TAuto:
		return v.set.Clone()
	}
	return &TypeSet{}
}

// IsSubset reports that every candidate of a is a candidate of b.
func (c *Context) IsSubset(a, b Type) bool {
	return c.Candidates(a).SubsetOf(c.Candidates(b))
}

// Meet narrows a to its intersection with allowed. It reports whether a
// lost any member.
func (c *Context) Meet(a *TAuto, allowed *TypeSet) bool {
	next := a.set.Intersect(allowed)
	if next.Len() == a.set.Len() {
		return false
	}
	a.set = next
	for i, s := range a.conforms {
		a.conforms[i] = s.Intersect(next)
	}
	c.UpdateHeads(a)
	if a.born < c.epoch {
		c.narrowed = true
	}
	return true
}

// Restrict keeps only the members of a that conform to at least one of
// pretenders, and records the condition.
func (c *Context) Restrict(a *TAuto, pretenders []TypeID) bool {
	ok := a.set.Filter(func(id TypeID) bool {
		return c.belowAny(id, pretenders)
	})
	cond := make([]TypeID, len(pretenders))
	copy(cond, pretenders)
	a.conditions = append(a.conditions, cond)
	a.conforms = append(a.conforms, ok)
	return c.Meet(a, ok)
}

// UpdateHeads recomputes the heads of a after its set shrank. A head that
// survives is kept. A head that was removed is replaced by the members
// below it that are closest to the root, repeatedly, until every member
// below the old head is covered.
func (c *Context) UpdateHeads(a *TAuto) {
	var heads []TypeID
	covered := &TypeSet{}
	members := a.set.IDs()

	cover := func(h TypeID) {
		heads = append(heads, h)
		for _, id := range members {
			if c.IsSubtype(id, h) {
				covered.Add(id)
			}
		}
	}
	shallowest := func(under TypeID) []TypeID {
		best := -1
		var level []TypeID
		for _, id := range members {
			if covered.Contains(id) || (under != NoType && !c.IsSubtype(id, under)) {
				continue
			}
			d := c.classes[id].Depth
			switch {
			case best < 0 || d < best:
				best = d
				level = []TypeID{id}
			case d == best:
				level = append(level, id)
			}
		}
		return level
	}

	for _, old := range a.heads {
		if a.set.Contains(old) {
			if !covered.Contains(old) {
				cover(old)
			}
			continue
		}
		for level := shallowest(old); len(level) > 0; level = shallowest(old) {
			for _, id := range level {
				cover(id)
			}
		}
	}
	for level := shallowest(NoType); len(level) > 0; level = shallowest(NoType) {
		for _, id := range level {
			cover(id)
		}
	}
	a.heads = heads
}

// SmartAdd inserts t into set and keeps heads a minimal antichain of the
// maximal elements: t becomes a head unless an existing head is above it,
// and heads below t are dropped.
func (c *Context) SmartAdd(set *TypeSet, heads []TypeID, t TypeID) ([]TypeID, *TypeSet) {
	set = set.Clone()
	set.Add(t)
	for _, h := range heads {
		if c.IsSubtype(t, h) {
			return heads, set
		}
	}
	next := make([]TypeID, 0, len(heads)+1)
	for _, h := range heads {
		if !c.IsSubtype(h, t) {
			next = append(next, h)
		}
	}
	return append(next, t), set
}

// Conforms requires candidate <= target. Concrete sides are checked;
// placeholder sides are narrowed to the members that can still satisfy
// the relation. It returns candidate, or TError when the relation fails or
// a placeholder runs empty.
func (c *Context) Conforms(candidate, target Type) Type {
	if IsError(candidate) || IsError(target) {
		return TError{}
	}
	ca, candAuto := candidate.(*TAuto)
	ta, targAuto := target.(*TAuto)

	if !candAuto && !targAuto {
		ok, err := c.ConformsTo(candidate, target)
		if err != nil || !ok {
			return TError{}
		}
		return candidate
	}
	if _, ok := candidate.(TCon); !ok && !candAuto {
		return TError{}
	}
	if _, ok := target.(TCon); !ok && !targAuto {
		return TError{}
	}

	if candAuto {
		upper := c.Candidates(target).IDs()
		c.Meet(ca, ca.set.Filter(func(id TypeID) bool {
			return c.belowAny(id, upper)
		}))
	}
	if targAuto {
		lower := c.Candidates(candidate).IDs()
		c.Meet(ta, ta.set.Filter(func(id TypeID) bool {
			return c.aboveAny(id, lower)
		}))
	}

	if (candAuto && ca.Len() == 0) || (targAuto && ta.Len() == 0) {
		return TError{}
	}
	return candidate
}

// Join is the smallest upper bound of a and b: a fresh placeholder over
// the least common ancestors of every pairing of their candidates.
func (c *Context) Join(a, b Type) Type {
	if IsError(a) || IsError(b) {
		return TError{}
	}
	sa, sb := c.Candidates(a), c.Candidates(b)
	if sa.Empty() || sb.Empty() {
		return TError{}
	}
	var heads []TypeID
	set := &TypeSet{}
	for _, x := range sa.IDs() {
		for _, y := range sb.IDs() {
			l := c.LCA(x, y)
			if l == NoType {
				return TError{}
			}
			heads, set = c.SmartAdd(set, heads, l)
		}
	}
	return c.NewAuto("JOIN", heads, set)
}

// JoinList folds Join over ts. A single type is returned as is.
func (c *Context) JoinList(ts []Type) Type {
	if len(ts) == 0 {
		return TError{}
	}
	acc := ts[0]
	for _, t := range ts[1:] {
		acc = c.Join(acc, t)
	}
	return acc
}

func (c *Context) belowAny(id TypeID, uppers []TypeID) bool {
	for _, u := range uppers {
		if c.IsSubtype(id, u) {
			return true
		}
	}
	return false
}

func (c *Context) aboveAny(id TypeID, lowers []TypeID) bool {
	for _, l := range lowers {
		if c.IsSubtype(l, id) {
			return true
		}
	}
	return false
}
