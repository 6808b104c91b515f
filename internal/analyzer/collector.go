package analyzer

import (
	"sort"
	"strings"

	"github.com/funvibe/autotype/internal/ast"
	"github.com/funvibe/autotype/internal/diagnostics"
	"github.com/funvibe/autotype/internal/typesystem"
)

// collector registers every class declaration, links the hierarchy and
// reorders the declarations so that a class always follows its parent.
type collector struct {
	*reporter
	program *ast.Program
}

// run returns false when the hierarchy is not a tree.
func (c *collector) run() bool {
	object := typesystem.InstallBasicClasses(c.types)

	var registered, rejected []*ast.ClassDecl
	for _, cd := range c.program.Classes {
		if c.register(cd) {
			registered = append(registered, cd)
		} else {
			rejected = append(rejected, cd)
		}
	}

	for _, cd := range registered {
		parent := object
		if cd.Parent != "" {
			parent = c.parentOf(cd, object)
		}
		if err := c.types.SetParent(cd.ID, parent); err != nil {
			c.reportClass(cd.Name, diagnostics.ErrC003, cd.ParentToken, "%s", err.Error())
		}
	}

	unreached := c.types.Finalize(object)
	if len(unreached) > 0 {
		c.reportCycles(registered, unreached)
		return false
	}

	sort.SliceStable(registered, func(i, j int) bool {
		return c.types.Class(registered[i].ID).Index < c.types.Class(registered[j].ID).Index
	})
	c.program.Classes = append(registered, rejected...)
	return true
}

func (c *collector) register(cd *ast.ClassDecl) bool {
	cd.ID = typesystem.NoType
	switch {
	case typesystem.IsBasic(cd.Name):
		c.reportClass(cd.Name, diagnostics.ErrC006, cd.Token, "Redefinition of basic class %s.", cd.Name)
		return false
	case isReservedType(cd.Name):
		c.reportClass(cd.Name, diagnostics.ErrC006, cd.Token, "%s is reserved and cannot name a class.", cd.Name)
		return false
	case !isTypeName(cd.Name):
		c.reportClass(cd.Name, diagnostics.ErrC002, cd.Token, "Class name %q must start with an uppercase letter.", cd.Name)
	}

	id, err := c.types.CreateType(cd.Name)
	if err != nil {
		c.reportClass(cd.Name, diagnostics.ErrC001, cd.Token, "%s", err.Error())
		return false
	}
	cd.ID = id
	return true
}

// parentOf resolves the inherits clause. An unusable parent is reported
// and replaced by Object so the class still joins the hierarchy.
func (c *collector) parentOf(cd *ast.ClassDecl, object typesystem.TypeID) typesystem.TypeID {
	tok := cd.ParentToken
	if tok.Line == 0 {
		tok = cd.Token
	}
	pid, ok := c.types.Lookup(cd.Parent)
	switch {
	case !ok:
		c.reportClass(cd.Name, diagnostics.ErrC004, tok, "Class %s inherits from undefined class %s.", cd.Name, cd.Parent)
		return object
	case c.types.Class(pid).Sealed:
		c.reportClass(cd.Name, diagnostics.ErrC003, tok, "Class %s cannot inherit from sealed class %s.", cd.Name, cd.Parent)
		return object
	}
	return pid
}

// reportCycles reports every class that cannot be reached from Object
// with the parent chain that leads it back onto itself.
func (c *collector) reportCycles(decls []*ast.ClassDecl, unreached []typesystem.TypeID) {
	lost := make(map[typesystem.TypeID]bool, len(unreached))
	for _, id := range unreached {
		lost[id] = true
	}
	for _, cd := range decls {
		if !lost[cd.ID] {
			continue
		}
		c.reportClass(cd.Name, diagnostics.ErrC005, cd.Token, "Circular inheritance: %s.", c.cyclePath(cd.ID))
	}
}

// cyclePath follows parents from id until a class repeats, e.g.
// "A -> B -> A".
func (c *collector) cyclePath(id typesystem.TypeID) string {
	seen := make(map[typesystem.TypeID]bool)
	var names []string
	for cur := id; cur != typesystem.NoType; cur = c.types.Class(cur).Parent {
		names = append(names, c.types.Name(cur))
		if seen[cur] {
			break
		}
		seen[cur] = true
	}
	return strings.Join(names, " -> ")
}
