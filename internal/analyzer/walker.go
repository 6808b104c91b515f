package analyzer

import (
	"github.com/funvibe/autotype/internal/ast"
	"github.com/funvibe/autotype/internal/config"
	"github.com/funvibe/autotype/internal/constraints"
	"github.com/funvibe/autotype/internal/diagnostics"
	"github.com/funvibe/autotype/internal/symbols"
	"github.com/funvibe/autotype/internal/token"
	"github.com/funvibe/autotype/internal/typesystem"
)

type mode int

const (
	// modeGather seeds every node and binding, opens the scope tree and
	// records constraint edges.
	modeGather mode = iota
	// modeInfer replays the same rules over the recorded scopes. It only
	// ever narrows what gathering seeded.
	modeInfer
)

func (m mode) String() string {
	if m == modeGather {
		return "gather"
	}
	return "infer"
}

// walker implements both the gathering pass and the inference pass.
type walker struct {
	*reporter
	root  *symbols.Scope
	graph *constraints.Graph

	mode    mode
	changed bool
	claimed map[*typesystem.Attribute]bool
}

func newWalker(r *reporter, root *symbols.Scope, g *constraints.Graph) *walker {
	return &walker{
		reporter: r,
		root:     root,
		graph:    g,
		claimed:  make(map[*typesystem.Attribute]bool),
	}
}

// pass walks the program once in the given mode and reports whether any
// node or older placeholder narrowed.
func (w *walker) pass(m mode, program *ast.Program) bool {
	w.mode = m
	w.changed = false
	ast.Walk[frame, typesystem.Type](w, program, frame{class: typesystem.NoType, scope: w.root})
	return w.changed || w.types.Narrowed()
}

func (w *walker) walk(n ast.Node, f frame) typesystem.Type {
	return ast.Walk[frame, typesystem.Type](w, n, f)
}

// value walks an expression and rebinds SELF_TYPE for use in a constraint.
func (w *walker) value(n ast.Expression, f frame) typesystem.Type {
	return resolveSelf(w.types, w.walk(n, f), f)
}

// settle stores t as the inferred type of n. While inferring, the stored
// type is refined, never replaced.
func (w *walker) settle(n ast.Node, t typesystem.Type) typesystem.Type {
	ann := n.Annotation()
	if w.mode == modeGather || ann.Inferred == nil {
		ann.Inferred = t
		return t
	}
	next := w.refine(ann.Inferred, t)
	if !sameType(next, ann.Inferred) {
		w.changed = true
	}
	ann.Inferred = next
	return next
}

// refine combines what a node was known to be with what this pass
// computed. Placeholders are narrowed in place; an emptied placeholder is
// kept so the linker can report it. The error type is sticky.
func (w *walker) refine(old, next typesystem.Type) typesystem.Type {
	if typesystem.IsError(old) || typesystem.IsError(next) {
		return typesystem.TError{}
	}
	switch o := old.(type) {
	case *typesystem.TAuto:
		switch nv := next.(type) {
		case *typesystem.TAuto:
			if nv != o {
				w.types.Meet(o, nv.Set())
			}
			return o
		case typesystem.TCon:
			w.types.Meet(o, typesystem.NewTypeSet(nv.ID))
			if o.Len() == 0 {
				return o
			}
			return nv
		}
		return o
	case typesystem.TCon:
		switch nv := next.(type) {
		case typesystem.TCon:
			if w.types.IsSubtype(nv.ID, o.ID) {
				return nv
			}
			return typesystem.TError{}
		case *typesystem.TAuto:
			if nv.Contains(o.ID) {
				return o
			}
			return typesystem.TError{}
		}
		return o
	}
	return next
}

// flow constrains value <= target. Gathering also ties the two together
// in the constraint graph.
func (w *walker) flow(f frame, tok token.Token, value, target typesystem.Type) {
	value, target = resolveSelf(w.types, value, f), resolveSelf(w.types, target, f)
	w.types.Conforms(value, target)
	if w.mode == modeGather {
		w.graph.Link(value, target, w.origin(f, tok))
	}
}

// require narrows a placeholder to the classes below bound. Concrete
// operands are checked by the linker.
func (w *walker) require(t typesystem.Type, bound string) {
	if a, ok := t.(*typesystem.TAuto); ok {
		id, _ := w.types.Lookup(bound)
		w.types.Restrict(a, []typesystem.TypeID{id})
	}
}

func (w *walker) basic(name string) typesystem.Type {
	id, _ := w.types.Lookup(name)
	return w.types.Con(id)
}

func (w *walker) scopeAt(path []int) *symbols.Scope {
	s, err := w.root.At(path)
	if err != nil {
		invariant("%v", err)
	}
	return s
}

// localType resolves the declared type of a let variable. Unknown names
// become the error type; the linker reports them.
func (w *walker) localType(name string, tok token.Token) typesystem.Type {
	t, err := w.types.GetType(name)
	if err != nil {
		return typesystem.TError{}
	}
	if a, ok := t.(*typesystem.TAuto); ok {
		a.Serial = autoSerial(tok)
	}
	return t
}

func (w *walker) VisitProgram(n *ast.Program, f frame) typesystem.Type {
	for _, cd := range n.Classes {
		w.walk(cd, f)
	}
	return nil
}

func (w *walker) VisitClass(n *ast.ClassDecl, f frame) typesystem.Type {
	if n.ID == typesystem.NoType {
		return nil
	}
	f.class = n.ID

	var scope *symbols.Scope
	if w.mode == modeGather {
		scope = f.scope.CreateChild(symbols.ScopeClass)
		n.ScopePath = scope.Path()
		scope.Define(config.SelfName, symbols.LocalSymbol, typesystem.TSelf{})
		for _, a := range w.types.AllAttributes(n.ID) {
			scope.DefineAttribute(a)
		}
	} else {
		scope = w.scopeAt(n.ScopePath)
	}

	f = f.within(scope)
	for _, feature := range n.Features {
		w.walk(feature, f)
	}
	return w.settle(n, w.types.Con(n.ID))
}

func (w *walker) VisitAttribute(n *ast.AttrDecl, f frame) typesystem.Type {
	f = f.inAttribute(n)
	if w.mode == modeGather {
		if sym, ok := f.scope.Find(n.Name); ok && sym.Attribute != nil &&
			sym.Attribute.Owner == f.class && !w.claimed[sym.Attribute] {
			w.claimed[sym.Attribute] = true
			n.Symbol = sym
		}
	}

	var declared typesystem.Type = typesystem.TError{}
	if n.Symbol != nil {
		declared = n.Symbol.Type()
	}
	if n.Init != nil {
		value := w.walk(n.Init, f)
		if n.Symbol != nil {
			w.flow(f, n.Token, value, declared)
		}
	}
	return w.settle(n, declared)
}

func (w *walker) VisitMethod(n *ast.MethodDecl, f frame) typesystem.Type {
	var scope *symbols.Scope
	if w.mode == modeGather {
		scope = f.scope.CreateChild(symbols.ScopeMethod)
		n.ScopePath = scope.Path()
		for i, p := range n.Params {
			typ := paramType(n, i)
			if p.Name != config.SelfName {
				if sym, err := scope.Define(p.Name, symbols.ParamSymbol, typ); err == nil {
					p.Symbol = sym
				}
			}
			w.settle(p, typ)
		}
	} else {
		scope = w.scopeAt(n.ScopePath)
	}
	f = f.inMethod(n, scope)

	body := w.walk(n.Body, f)
	if n.Method == nil {
		return w.settle(n, typesystem.TError{})
	}
	ret := n.Method.Return
	w.flow(f, n.ReturnToken, body, ret)
	if a, ok := ret.(*typesystem.TAuto); ok {
		// an inferred return type is pinned from both sides
		w.types.Conforms(a, resolveSelf(w.types, body, f))
	}
	return w.settle(n, ret)
}

func paramType(n *ast.MethodDecl, i int) typesystem.Type {
	if n.Method == nil || i >= len(n.Method.Params) {
		return typesystem.TError{}
	}
	return n.Method.Params[i].Type
}

func (w *walker) VisitBlock(n *ast.Block, f frame) typesystem.Type {
	var last typesystem.Type
	for _, e := range n.Exprs {
		last = w.walk(e, f)
	}
	return w.settle(n, last)
}

func (w *walker) VisitIf(n *ast.If, f frame) typesystem.Type {
	w.require(w.walk(n.Condition, f), config.BoolTypeName)
	then := w.value(n.Then, f)
	els := w.value(n.Else, f)
	return w.settle(n, w.types.Join(then, els))
}

func (w *walker) VisitWhile(n *ast.While, f frame) typesystem.Type {
	w.require(w.walk(n.Condition, f), config.BoolTypeName)
	w.walk(n.Body, f)
	return w.settle(n, w.basic(config.ObjectTypeName))
}

// VisitLet binds every variable before any initializer is visited, so
// initializers may refer to each other.
func (w *walker) VisitLet(n *ast.Let, f frame) typesystem.Type {
	var scope *symbols.Scope
	if w.mode == modeGather {
		scope = f.scope.CreateChild(symbols.ScopeLet)
		n.ScopePath = scope.Path()
		for _, v := range n.Vars {
			if v.Name == config.SelfName {
				continue
			}
			sym, err := scope.Define(v.Name, symbols.LocalSymbol, w.localType(v.TypeName, v.TypeToken))
			if err != nil {
				w.report(f, diagnostics.ErrI001, v.Token, "Variable %q is already defined in this let.", v.Name)
				continue
			}
			v.Symbol = sym
		}
	} else {
		scope = w.scopeAt(n.ScopePath)
	}

	inner := f.within(scope)
	for _, v := range n.Vars {
		var declared typesystem.Type = typesystem.TError{}
		if v.Symbol != nil {
			declared = v.Symbol.Type()
		}
		if v.Init != nil {
			value := w.walk(v.Init, inner)
			if v.Symbol != nil {
				w.flow(inner, v.Token, value, declared)
			}
		}
		w.settle(v, declared)
	}
	return w.settle(n, w.walk(n.Body, inner))
}

func (w *walker) VisitCase(n *ast.Case, f frame) typesystem.Type {
	w.walk(n.Scrutinee, f)

	bodies := make([]typesystem.Type, 0, len(n.Branches))
	for _, b := range n.Branches {
		var scope *symbols.Scope
		if w.mode == modeGather {
			scope = f.scope.CreateChild(symbols.ScopeBranch)
			b.ScopePath = scope.Path()
			var typ typesystem.Type = typesystem.TError{}
			if id, ok := w.types.Lookup(b.TypeName); ok {
				typ = w.types.Con(id)
			}
			if b.Name != config.SelfName {
				b.Symbol, _ = scope.Define(b.Name, symbols.LocalSymbol, typ)
			}
			w.settle(b, typ)
		} else {
			scope = w.scopeAt(b.ScopePath)
		}
		bodies = append(bodies, w.value(b.Body, f.within(scope)))
	}
	return w.settle(n, w.types.JoinList(bodies))
}

func (w *walker) VisitIsVoid(n *ast.IsVoid, f frame) typesystem.Type {
	w.walk(n.Expr, f)
	return w.settle(n, w.basic(config.BoolTypeName))
}

func (w *walker) VisitNot(n *ast.Not, f frame) typesystem.Type {
	w.require(w.walk(n.Expr, f), config.BoolTypeName)
	return w.settle(n, w.basic(config.BoolTypeName))
}

func (w *walker) VisitNegate(n *ast.Negate, f frame) typesystem.Type {
	w.require(w.walk(n.Expr, f), config.IntTypeName)
	return w.settle(n, w.basic(config.IntTypeName))
}

func (w *walker) VisitArithmetic(n *ast.Arithmetic, f frame) typesystem.Type {
	w.require(w.walk(n.Left, f), config.IntTypeName)
	w.require(w.walk(n.Right, f), config.IntTypeName)
	return w.settle(n, w.basic(config.IntTypeName))
}

// VisitComparison pins both sides of < and <= to Int. An equality with a
// basic class on one side pins a placeholder on the other side to it.
func (w *walker) VisitComparison(n *ast.Comparison, f frame) typesystem.Type {
	left := w.value(n.Left, f)
	right := w.value(n.Right, f)
	if n.Op != "=" {
		w.require(left, config.IntTypeName)
		w.require(right, config.IntTypeName)
	} else {
		w.pinEqual(left, right)
		w.pinEqual(right, left)
	}
	return w.settle(n, w.basic(config.BoolTypeName))
}

func (w *walker) pinEqual(a, b typesystem.Type) {
	auto, ok := a.(*typesystem.TAuto)
	if !ok {
		return
	}
	if c, ok := b.(typesystem.TCon); ok && w.types.Class(c.ID).Sealed {
		w.types.Meet(auto, typesystem.NewTypeSet(c.ID))
	}
}

func (w *walker) VisitInt(n *ast.IntLit, f frame) typesystem.Type {
	return w.settle(n, w.basic(config.IntTypeName))
}

func (w *walker) VisitString(n *ast.StringLit, f frame) typesystem.Type {
	return w.settle(n, w.basic(config.StringTypeName))
}

func (w *walker) VisitBool(n *ast.BoolLit, f frame) typesystem.Type {
	return w.settle(n, w.basic(config.BoolTypeName))
}

// VisitNew keeps SELF_TYPE unresolved. AUTO_TYPE and unknown names are
// reported by the linker.
func (w *walker) VisitNew(n *ast.New, f frame) typesystem.Type {
	if n.TypeName == config.SelfTypeName {
		return w.settle(n, typesystem.TSelf{})
	}
	if id, ok := w.types.Lookup(n.TypeName); ok {
		return w.settle(n, w.types.Con(id))
	}
	return w.settle(n, typesystem.TError{})
}

func (w *walker) VisitIdentifier(n *ast.Identifier, f frame) typesystem.Type {
	if w.mode == modeGather {
		n.Symbol, _ = f.scope.Find(n.Name)
	}
	if n.Symbol == nil {
		return w.settle(n, typesystem.TError{})
	}
	return w.settle(n, n.Symbol.Type())
}

// VisitAssign has the type of the assigned value.
func (w *walker) VisitAssign(n *ast.Assign, f frame) typesystem.Type {
	if w.mode == modeGather {
		n.Symbol, _ = f.scope.Find(n.Name)
	}
	value := w.walk(n.Value, f)
	if n.Symbol != nil && n.Name != config.SelfName {
		w.flow(f, n.Token, value, n.Symbol.Type())
	}
	return w.settle(n, value)
}
