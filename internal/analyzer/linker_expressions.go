package analyzer

import (
	"github.com/funvibe/autotype/internal/ast"
	"github.com/funvibe/autotype/internal/config"
	"github.com/funvibe/autotype/internal/diagnostics"
	"github.com/funvibe/autotype/internal/typesystem"
)

func (l *linker) VisitBlock(n *ast.Block, f frame) *typesystem.Candidates {
	var last *typesystem.Candidates
	for _, e := range n.Exprs {
		last = l.walk(e, f)
	}
	if last == nil {
		last = errorList()
	}
	return l.compute(n, last)
}

func (l *linker) VisitIf(n *ast.If, f frame) *typesystem.Candidates {
	cond := l.walk(n.Condition, f)
	cs := cond.String()
	if !l.below(cond, config.BoolTypeName, f) {
		l.report(f, diagnostics.ErrL004, n.Condition.GetToken(), "Predicate of if must be Bool, got %s.", cs)
	}
	l.walk(n.Then, f)
	l.walk(n.Else, f)
	return l.compute(n, l.list(n.Annotation().Inferred))
}

func (l *linker) VisitWhile(n *ast.While, f frame) *typesystem.Candidates {
	cond := l.walk(n.Condition, f)
	cs := cond.String()
	if !l.below(cond, config.BoolTypeName, f) {
		l.report(f, diagnostics.ErrL004, n.Condition.GetToken(), "Predicate of while must be Bool, got %s.", cs)
	}
	l.walk(n.Body, f)
	return l.compute(n, l.list(n.Annotation().Inferred))
}

func (l *linker) VisitLet(n *ast.Let, f frame) *typesystem.Candidates {
	for _, v := range n.Vars {
		l.checkLocalName(f, v.Name, v.Token)
		l.checkTypeName(f, v.TypeName, v.TypeToken, config.SelfTypeName, config.AutoTypeName)

		decl := errorList()
		if v.Symbol != nil {
			decl = l.symList(v.Symbol)
		}
		computed := decl
		if v.Init != nil {
			expr := l.walk(v.Init, f)
			es, ds := expr.String(), decl.String()
			if !l.establishConform(expr, decl, f) {
				l.report(f, diagnostics.ErrL001, v.Token, "Cannot initialize %q of type %s with %s.", v.Name, ds, es)
				computed = errorList()
			}
		}
		l.compute(v, computed)
	}
	return l.compute(n, l.walk(n.Body, f))
}

// VisitCase requires distinct branch types and at least one branch that
// can match some candidate of the scrutinee.
func (l *linker) VisitCase(n *ast.Case, f frame) *typesystem.Candidates {
	scrutinee := l.walk(n.Scrutinee, f)

	seen := make(map[typesystem.TypeID]bool, len(n.Branches))
	var branches []typesystem.TypeID
	for _, b := range n.Branches {
		l.checkLocalName(f, b.Name, b.Token)
		if l.checkTypeName(f, b.TypeName, b.TypeToken) {
			id, _ := l.types.Lookup(b.TypeName)
			if seen[id] {
				l.report(f, diagnostics.ErrL008, b.TypeToken, "Duplicate branch %s in case.", b.TypeName)
			}
			seen[id] = true
			branches = append(branches, id)
		}

		bl := errorList()
		if b.Symbol != nil {
			bl = l.symList(b.Symbol)
		}
		l.compute(b, bl)
		l.walk(b.Body, f)
	}

	if !scrutinee.HasError() && len(branches) > 0 && !l.covers(scrutinee, branches, f) {
		l.report(f, diagnostics.ErrL009, n.Token, "No branch of the case can match %s.", scrutinee.String())
		return l.compute(n, errorList())
	}
	return l.compute(n, l.list(n.Annotation().Inferred))
}

func (l *linker) covers(scrutinee *typesystem.Candidates, branches []typesystem.TypeID, f frame) bool {
	for _, t := range scrutinee.Types {
		c, ok := resolveSelf(l.types, t, f).(typesystem.TCon)
		if !ok {
			continue
		}
		for _, b := range branches {
			if l.types.Comparable(c.ID, b) {
				return true
			}
		}
	}
	return false
}

func (l *linker) VisitIsVoid(n *ast.IsVoid, f frame) *typesystem.Candidates {
	l.walk(n.Expr, f)
	return l.compute(n, l.list(n.Annotation().Inferred))
}

func (l *linker) VisitNot(n *ast.Not, f frame) *typesystem.Candidates {
	operand := l.walk(n.Expr, f)
	os := operand.String()
	if !l.below(operand, config.BoolTypeName, f) {
		l.report(f, diagnostics.ErrL004, n.Token, "Operand of not must be Bool, got %s.", os)
	}
	return l.compute(n, l.list(n.Annotation().Inferred))
}

func (l *linker) VisitNegate(n *ast.Negate, f frame) *typesystem.Candidates {
	operand := l.walk(n.Expr, f)
	os := operand.String()
	if !l.below(operand, config.IntTypeName, f) {
		l.report(f, diagnostics.ErrL005, n.Token, "Operand of ~ must be Int, got %s.", os)
	}
	return l.compute(n, l.list(n.Annotation().Inferred))
}

func (l *linker) VisitArithmetic(n *ast.Arithmetic, f frame) *typesystem.Candidates {
	if !l.intOperands(n.Op, n.Left, n.Right, f) {
		return l.compute(n, errorList())
	}
	return l.compute(n, l.list(n.Annotation().Inferred))
}

func (l *linker) intOperands(op string, left, right ast.Expression, f frame) bool {
	ok := true
	for _, e := range []ast.Expression{left, right} {
		c := l.walk(e, f)
		cs := c.String()
		if !l.below(c, config.IntTypeName, f) {
			l.report(f, diagnostics.ErrL005, e.GetToken(), "Operand of %s must be Int, got %s.", op, cs)
			ok = false
		}
	}
	return ok
}

// VisitComparison checks < and <= like arithmetic. An equality involving
// a sealed basic class requires the other side to be that class too.
func (l *linker) VisitComparison(n *ast.Comparison, f frame) *typesystem.Candidates {
	if n.Op != "=" {
		l.intOperands(n.Op, n.Left, n.Right, f)
		return l.compute(n, l.list(n.Annotation().Inferred))
	}

	left := l.walk(n.Left, f)
	right := l.walk(n.Right, f)
	ls, rs := left.String(), right.String()
	if !l.pinEqual(left, right, f) || !l.pinEqual(right, left, f) {
		l.report(f, diagnostics.ErrL001, n.Token, "Cannot compare %s with %s.", ls, rs)
	}
	return l.compute(n, l.list(n.Annotation().Inferred))
}

func (l *linker) pinEqual(c, other *typesystem.Candidates, f frame) bool {
	if other.Len() != 1 {
		return true
	}
	o, ok := resolveSelf(l.types, other.Types[0], f).(typesystem.TCon)
	if !ok || !l.types.Class(o.ID).Sealed {
		return true
	}
	return l.narrow(c, func(t typesystem.Type) bool {
		tc, ok := resolveSelf(l.types, t, f).(typesystem.TCon)
		return ok && tc.ID == o.ID
	})
}

func (l *linker) VisitInt(n *ast.IntLit, f frame) *typesystem.Candidates {
	return l.compute(n, l.list(n.Annotation().Inferred))
}

func (l *linker) VisitString(n *ast.StringLit, f frame) *typesystem.Candidates {
	return l.compute(n, l.list(n.Annotation().Inferred))
}

func (l *linker) VisitBool(n *ast.BoolLit, f frame) *typesystem.Candidates {
	return l.compute(n, l.list(n.Annotation().Inferred))
}

func (l *linker) VisitNew(n *ast.New, f frame) *typesystem.Candidates {
	if !l.checkTypeName(f, n.TypeName, n.TypeToken, config.SelfTypeName) {
		return l.compute(n, errorList())
	}
	return l.compute(n, l.list(n.Annotation().Inferred))
}

func (l *linker) VisitIdentifier(n *ast.Identifier, f frame) *typesystem.Candidates {
	if n.Symbol == nil {
		l.report(f, diagnostics.ErrL002, n.Token, "Variable %q is not defined.", n.Name)
		return l.compute(n, errorList())
	}
	return l.compute(n, l.symList(n.Symbol))
}

func (l *linker) VisitAssign(n *ast.Assign, f frame) *typesystem.Candidates {
	value := l.walk(n.Value, f)
	switch {
	case n.Name == config.SelfName:
		l.report(f, diagnostics.ErrL003, n.Token, "Cannot assign to %q.", n.Name)
		return l.compute(n, errorList())
	case n.Symbol == nil:
		l.report(f, diagnostics.ErrL002, n.Token, "Variable %q is not defined.", n.Name)
		return l.compute(n, errorList())
	}

	decl := l.symList(n.Symbol)
	vs, ds := value.String(), decl.String()
	if !l.establishConform(value, decl, f) {
		l.report(f, diagnostics.ErrL001, n.Token, "Cannot assign %s to %q of type %s.", vs, n.Name, ds)
		return l.compute(n, errorList())
	}
	return l.compute(n, value)
}

// VisitCall checks the receiver against a static dispatch type and, when
// the call reaches a single definition, every argument against its
// parameter.
func (l *linker) VisitCall(n *ast.Call, f frame) *typesystem.Candidates {
	var recv *typesystem.Candidates
	if n.Receiver != nil {
		recv = l.walk(n.Receiver, f)
	}
	args := make([]*typesystem.Candidates, len(n.Args))
	for i, a := range n.Args {
		args[i] = l.walk(a, f)
	}

	if n.StaticType != "" {
		if !l.checkTypeName(f, n.StaticType, n.StaticToken) {
			return l.compute(n, errorList())
		}
		id, _ := l.types.Lookup(n.StaticType)
		bound := l.types.Con(id)
		rs := recv.String()
		if !l.narrow(recv, func(t typesystem.Type) bool { return l.le(t, bound, f) }) {
			l.report(f, diagnostics.ErrL012, n.StaticToken, "Receiver %s does not conform to %s.", rs, n.StaticType)
			return l.compute(n, errorList())
		}
	}

	switch len(n.Targets) {
	case 0:
		return l.compute(n, errorList())
	case 1:
	default:
		return l.compute(n, l.list(n.Annotation().Inferred))
	}

	m := n.Targets[0].Method
	if m.Arity() != len(args) {
		l.report(f, diagnostics.ErrL007, n.Token, "Method %q takes %d arguments, %d given.", n.Method, m.Arity(), len(args))
	} else {
		for i, arg := range args {
			p := l.paramList(m, i)
			as, ps := arg.String(), p.String()
			if !l.establishConform(arg, p, f) {
				l.report(f, diagnostics.ErrL006, n.Args[i].GetToken(), "Argument %d of %q: %s does not conform to %s.", i+1, n.Method, as, ps)
			}
		}
	}

	if _, ok := m.Return.(typesystem.TSelf); ok {
		if recv == nil {
			return l.compute(n, l.list(typesystem.TSelf{}))
		}
		return l.compute(n, recv.Clone())
	}
	return l.compute(n, l.returnList(m).Clone())
}
