package analyzer

import (
	"strings"

	"github.com/funvibe/autotype/internal/ast"
	"github.com/funvibe/autotype/internal/diagnostics"
	"github.com/funvibe/autotype/internal/typesystem"
)

// VisitCall finds the definitions the call can reach and ties every
// argument to its parameter. Arguments are visited once, before lookup.
func (w *walker) VisitCall(n *ast.Call, f frame) typesystem.Type {
	// selfType is what a SELF_TYPE return means at this call site
	var recv, selfType typesystem.Type
	if n.Receiver == nil {
		recv, selfType = w.types.Con(f.class), typesystem.TSelf{}
	} else {
		selfType = w.walk(n.Receiver, f)
		recv = resolveSelf(w.types, selfType, f)
	}

	args := make([]typesystem.Type, len(n.Args))
	for i, a := range n.Args {
		args[i] = w.walk(a, f)
	}

	dispatch := recv
	if n.StaticType != "" {
		id, ok := w.types.Lookup(n.StaticType)
		if !ok {
			n.Targets = nil
			return w.settle(n, typesystem.TError{})
		}
		w.require(recv, n.StaticType)
		dispatch = w.types.Con(id)
	}

	n.Targets = w.targets(n, f, dispatch)
	switch len(n.Targets) {
	case 0:
		return w.settle(n, typesystem.TError{})
	case 1:
		m := n.Targets[0].Method
		if m.Arity() == len(args) {
			for i, arg := range args {
				w.flow(f, n.Args[i].GetToken(), arg, m.Params[i].Type)
			}
		}
		return w.settle(n, returnType(m, selfType))
	}

	// Gathering tolerates several owners: the call may return what any
	// of them returns.
	var heads []typesystem.TypeID
	set := &typesystem.TypeSet{}
	for _, t := range n.Targets {
		ret := resolveSelf(w.types, returnType(t.Method, w.types.Con(t.Owner)), f)
		for _, id := range w.types.Candidates(ret).IDs() {
			heads, set = w.types.SmartAdd(set, heads, id)
		}
	}
	return w.settle(n, w.types.NewAuto(n.Method, heads, set))
}

func returnType(m *typesystem.Method, selfType typesystem.Type) typesystem.Type {
	if _, ok := m.Return.(typesystem.TSelf); ok {
		return selfType
	}
	return m.Return
}

// targets resolves the method against the dispatch type. A placeholder
// receiver is narrowed to the classes that define a method with this name
// and arity.
func (w *walker) targets(n *ast.Call, f frame, dispatch typesystem.Type) []typesystem.MethodMatch {
	switch d := dispatch.(type) {
	case typesystem.TCon:
		m, err := w.types.GetMethod(d.ID, n.Method)
		if err != nil {
			w.report(f, diagnostics.ErrI002, n.Token, "%s", err.Error())
			return nil
		}
		return []typesystem.MethodMatch{{Owner: m.Owner, Method: m}}

	case *typesystem.TAuto:
		if d.Len() == 0 {
			return nil
		}
		set := d.Set()
		var valid []typesystem.MethodMatch
		for _, mm := range w.types.GetMethodByName(n.Method, len(n.Args)) {
			if !w.types.Subtree(mm.Owner).Intersect(set).Empty() {
				valid = append(valid, mm)
			}
		}

		switch {
		case len(valid) == 0:
			w.report(f, diagnostics.ErrI004, n.Token, "There is no method %q taking %d parameters.", n.Method, len(n.Args))
			return nil
		case len(valid) > 1 && w.mode == modeInfer:
			names := make([]string, len(valid))
			for i, mm := range valid {
				names[i] = w.types.Name(mm.Owner)
			}
			w.report(f, diagnostics.ErrI003, n.Token, "Method %q found in %d unrelated types: %s.",
				n.Method, len(valid), strings.Join(names, ", "))
			return nil
		}

		owners := make([]typesystem.TypeID, len(valid))
		for i, mm := range valid {
			owners[i] = mm.Owner
		}
		w.types.Restrict(d, owners)
		return valid
	}
	return nil
}
