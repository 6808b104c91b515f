package analyzer

import (
	"fmt"
	"strings"

	"github.com/funvibe/autotype/internal/ast"
	"github.com/funvibe/autotype/internal/config"
	"github.com/funvibe/autotype/internal/constraints"
	"github.com/funvibe/autotype/internal/diagnostics"
	"github.com/funvibe/autotype/internal/symbols"
	"github.com/funvibe/autotype/internal/token"
	"github.com/funvibe/autotype/internal/typesystem"
)

// linker expands every inferred type into its candidate list and checks
// each producer against its consumer. Lists of one placeholder are shared,
// so filtering at one use is seen by every other use.
type linker struct {
	*reporter
	lists    map[typesystem.AutoID]*typesystem.Candidates
	filtered bool
}

func newLinker(r *reporter) *linker {
	return &linker{reporter: r, lists: make(map[typesystem.AutoID]*typesystem.Candidates)}
}

// settle narrows every placeholder component of g. Components that
// conflict or that nothing pins are reported, and their members link to
// the error type.
func (l *linker) settle(g *constraints.Graph) constraints.Result {
	res := g.Settle(l.types)
	for _, comp := range res.Conflicts {
		l.poison(comp)
		l.reportAt(comp.Origin, diagnostics.ErrL010, "Placeholders %s cannot be narrowed consistently.", l.members(comp))
	}
	for _, comp := range res.Ambiguous {
		l.poison(comp)
		l.reportAt(comp.Origin, diagnostics.ErrL011, "Cannot infer a type for %s: nothing constrains them.", l.members(comp))
	}
	return res
}

func (l *linker) poison(comp constraints.Component) {
	for _, id := range comp.Members {
		l.lists[id] = errorList()
	}
}

func (l *linker) members(comp constraints.Component) string {
	names := make([]string, 0, len(comp.Members))
	for _, id := range comp.Members {
		if a := l.types.Auto(id); a != nil {
			names = append(names, a.String())
		}
	}
	return strings.Join(names, ", ")
}

func (l *linker) reportAt(o constraints.Origin, code diagnostics.ErrorCode, format string, args ...any) {
	l.add(diagnostics.NewError(code, o.Token, fmt.Sprintf(format, args...)).In(o.Class, o.Method, o.Attribute))
}

// pass links the whole program once and reports whether any list was
// filtered.
func (l *linker) pass(program *ast.Program) bool {
	l.filtered = false
	ast.Walk[frame, *typesystem.Candidates](l, program, frame{class: typesystem.NoType})
	return l.filtered
}

// bindOverrides makes an overriding method share the parameter lists of
// the method it overrides. Parents come before children in program order.
func (l *linker) bindOverrides(program *ast.Program) {
	for _, cd := range program.Classes {
		if cd.ID == typesystem.NoType {
			continue
		}
		for _, feature := range cd.Features {
			md, ok := feature.(*ast.MethodDecl)
			if !ok || md.Method == nil {
				continue
			}
			parent := overridden(l.types, md.Method)
			if parent == nil {
				continue
			}
			for i, p := range md.Method.Params {
				a, ok := p.Type.(*typesystem.TAuto)
				if !ok {
					continue
				}
				if _, poisoned := l.lists[a.ID]; !poisoned {
					l.lists[a.ID] = l.paramList(parent, i)
				}
			}
		}
	}
}

// overridden returns the inherited method m redefines with the same arity.
func overridden(types *typesystem.Context, m *typesystem.Method) *typesystem.Method {
	parent := types.Class(m.Owner).Parent
	if parent == typesystem.NoType {
		return nil
	}
	pm, err := types.GetMethod(parent, m.Name)
	if err != nil || pm.Arity() != m.Arity() {
		return nil
	}
	return pm
}

func (l *linker) walk(n ast.Node, f frame) *typesystem.Candidates {
	return ast.Walk[frame, *typesystem.Candidates](l, n, f)
}

func errorList() *typesystem.Candidates {
	return &typesystem.Candidates{Types: []typesystem.Type{typesystem.TError{}}}
}

// list is the candidate list of t. A placeholder always yields the same
// list; anything else yields a fresh one.
func (l *linker) list(t typesystem.Type) *typesystem.Candidates {
	a, ok := t.(*typesystem.TAuto)
	if !ok {
		return l.types.AllPos(t)
	}
	if c, ok := l.lists[a.ID]; ok {
		return c
	}
	c := l.types.AllPos(a)
	l.lists[a.ID] = c
	return c
}

func (l *linker) symList(sym *symbols.Symbol) *typesystem.Candidates {
	if sym.Linked() == nil {
		sym.SetLinked(l.list(sym.Type()))
	}
	return sym.Linked()
}

func (l *linker) paramList(m *typesystem.Method, i int) *typesystem.Candidates {
	if len(m.LinkedParams) != len(m.Params) {
		m.LinkedParams = make([]*typesystem.Candidates, len(m.Params))
	}
	if m.LinkedParams[i] == nil {
		m.LinkedParams[i] = l.list(m.Params[i].Type)
	}
	return m.LinkedParams[i]
}

func (l *linker) returnList(m *typesystem.Method) *typesystem.Candidates {
	if m.LinkedReturn == nil {
		m.LinkedReturn = l.list(m.Return)
	}
	return m.LinkedReturn
}

func (l *linker) compute(n ast.Node, c *typesystem.Candidates) *typesystem.Candidates {
	n.Annotation().Computed = c
	return c
}

// le reports a <= b with SELF_TYPE bound to the frame's class. The error
// type conforms both ways so one mistake is reported once.
func (l *linker) le(a, b typesystem.Type, f frame) bool {
	a, b = resolveSelf(l.types, a, f), resolveSelf(l.types, b, f)
	if typesystem.IsError(a) || typesystem.IsError(b) {
		return true
	}
	ac, ok := a.(typesystem.TCon)
	if !ok {
		return false
	}
	bc, ok := b.(typesystem.TCon)
	return ok && l.types.IsSubtype(ac.ID, bc.ID)
}

// narrow filters c to the candidates keep accepts. When nothing would be
// left the list is not touched and narrow returns false.
func (l *linker) narrow(c *typesystem.Candidates, keep func(typesystem.Type) bool) bool {
	if c.HasError() {
		return true
	}
	kept := 0
	for _, t := range c.Types {
		if keep(t) {
			kept++
		}
	}
	if kept == 0 {
		return false
	}
	if c.Filter(keep) {
		l.filtered = true
	}
	return true
}

// below narrows c to the candidates conforming to the basic class name.
func (l *linker) below(c *typesystem.Candidates, name string, f frame) bool {
	id, _ := l.types.Lookup(name)
	bound := l.types.Con(id)
	return l.narrow(c, func(t typesystem.Type) bool { return l.le(t, bound, f) })
}

// establishConform narrows both lists so that every remaining expression
// candidate conforms to some remaining declared candidate and every
// declared candidate accepts some expression candidate.
func (l *linker) establishConform(expr, decl *typesystem.Candidates, f frame) bool {
	if expr.HasError() || decl.HasError() {
		return true
	}
	var common []typesystem.Type
	for _, d := range decl.Types {
		for _, e := range expr.Types {
			if l.le(e, d, f) {
				common = append(common, d)
				break
			}
		}
	}
	if len(common) == 0 {
		return false
	}
	l.narrow(decl, func(d typesystem.Type) bool {
		for _, c := range common {
			if sameType(c, d) {
				return true
			}
		}
		return false
	})
	l.narrow(expr, func(e typesystem.Type) bool {
		for _, c := range common {
			if l.le(e, c, f) {
				return true
			}
		}
		return false
	})
	return true
}

// checkTypeName reports a type written in an expression that names no
// class. The reserved names listed in allowed are accepted. It returns
// false when the name is unusable.
func (l *linker) checkTypeName(f frame, name string, tok token.Token, allowed ...string) bool {
	for _, a := range allowed {
		if name == a {
			return true
		}
	}
	if isReservedType(name) {
		l.report(f, diagnostics.ErrL014, tok, "%s cannot be used here.", name)
		return false
	}
	if _, ok := l.types.Lookup(name); !ok {
		l.report(f, diagnostics.ErrL014, tok, "Type %q is not defined.", name)
		return false
	}
	return true
}

func (l *linker) checkLocalName(f frame, name string, tok token.Token) {
	switch {
	case name == config.SelfName:
		l.report(f, diagnostics.ErrL003, tok, "%q cannot be bound here.", name)
	case !isValueName(name):
		l.report(f, diagnostics.ErrL013, tok, "Identifier %q must start with a lowercase letter.", name)
	}
}

func (l *linker) VisitProgram(n *ast.Program, f frame) *typesystem.Candidates {
	for _, cd := range n.Classes {
		l.walk(cd, f)
	}
	return nil
}

func (l *linker) VisitClass(n *ast.ClassDecl, f frame) *typesystem.Candidates {
	if n.ID == typesystem.NoType {
		return nil
	}
	f.class = n.ID
	for _, feature := range n.Features {
		l.walk(feature, f)
	}
	return l.compute(n, l.list(l.types.Con(n.ID)))
}

func (l *linker) VisitAttribute(n *ast.AttrDecl, f frame) *typesystem.Candidates {
	f = f.inAttribute(n)
	if n.Symbol == nil {
		if n.Init != nil {
			l.walk(n.Init, f)
		}
		return l.compute(n, errorList())
	}

	decl := l.symList(n.Symbol)
	if n.Init != nil {
		expr := l.walk(n.Init, f)
		es, ds := expr.String(), decl.String()
		if !l.establishConform(expr, decl, f) {
			l.report(f, diagnostics.ErrL001, n.Token, "Cannot initialize attribute %q of type %s with %s.", n.Name, ds, es)
			return l.compute(n, errorList())
		}
	}
	return l.compute(n, decl)
}

func (l *linker) VisitMethod(n *ast.MethodDecl, f frame) *typesystem.Candidates {
	f = f.inMethod(n, nil)
	if n.Method == nil {
		l.walk(n.Body, f)
		return l.compute(n, errorList())
	}

	m := n.Method
	for i, p := range n.Params {
		if i >= len(m.Params) {
			break
		}
		c := l.paramList(m, i)
		if p.Symbol != nil && p.Symbol.Linked() == nil {
			p.Symbol.SetLinked(c)
		}
		l.compute(p, c)
	}

	ret := l.returnList(m)
	body := l.walk(n.Body, f)
	bs, rs := body.String(), ret.String()
	if !l.establishConform(body, ret, f) {
		l.report(f, diagnostics.ErrL001, n.ReturnToken, "Method %q returns %s, which does not conform to the declared %s.", n.Name, bs, rs)
		return l.compute(n, errorList())
	}
	return l.compute(n, ret)
}
