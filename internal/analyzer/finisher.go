package analyzer

import (
	"github.com/go-kit/log/level"

	"github.com/funvibe/autotype/internal/ast"
	"github.com/funvibe/autotype/internal/config"
	"github.com/funvibe/autotype/internal/pipeline"
	"github.com/funvibe/autotype/internal/symbols"
	"github.com/funvibe/autotype/internal/typesystem"
)

// finisher collapses every candidate list to one type and writes the
// result back to the nodes, the scopes and the class model. Running it
// twice gives the same result.
type finisher struct {
	ctx   *pipeline.PipelineContext
	types *typesystem.Context
	root  *symbols.Scope

	inferred []pipeline.Inference
}

func newFinisher(ctx *pipeline.PipelineContext) *finisher {
	return &finisher{ctx: ctx, types: ctx.Types, root: ctx.Scope}
}

// collapse picks the final type of a list: starting from the most general
// candidate, it descends while exactly one child subtree still holds
// candidates. SELF_TYPE is bound to class.
func (fi *finisher) collapse(c *typesystem.Candidates, class typesystem.TypeID) typesystem.Type {
	if c == nil || c.Len() == 0 || c.HasError() {
		return typesystem.TError{}
	}

	set := &typesystem.TypeSet{}
	cur := typesystem.NoType
	for _, t := range c.Types {
		con, ok := fi.types.ResolveSelf(t, class).(typesystem.TCon)
		if !ok {
			invariant("candidate %s is not a class", t)
		}
		set.Add(con.ID)
		if cur == typesystem.NoType || fi.types.Class(con.ID).Index < fi.types.Class(cur).Index {
			cur = con.ID
		}
	}
	for {
		next, hits := typesystem.NoType, 0
		for _, child := range fi.types.Class(cur).Children {
			if !fi.types.Subtree(child).Intersect(set).Empty() {
				next = child
				hits++
			}
		}
		if hits != 1 {
			break
		}
		cur = next
	}
	return fi.types.Con(cur)
}

// fallback resolves a node the linker never reached.
func (fi *finisher) fallback(t typesystem.Type, class typesystem.TypeID) typesystem.Type {
	switch v := t.(type) {
	case nil:
		return typesystem.TError{}
	case *typesystem.TAuto:
		return fi.collapse(fi.types.AllPos(v), class)
	case typesystem.TSelf:
		return fi.types.ResolveSelf(v, class)
	}
	return t
}

func (fi *finisher) run(program *ast.Program) {
	fi.inferred = nil
	fi.root.Reset()
	for _, cd := range program.Classes {
		if cd.ID == typesystem.NoType {
			continue
		}
		fi.visit(cd, fi.root, frame{class: cd.ID})
	}
	fi.writeBack(program)
	if len(fi.ctx.Errors) == 0 {
		fi.checkOverrides(program)
	}
	fi.ctx.Inferred = fi.inferred
}

// enter replays the scope tree in creation order and checks the replay
// against the path the scope was recorded under.
func (fi *finisher) enter(outer *symbols.Scope, path []int, class typesystem.TypeID) *symbols.Scope {
	s := outer.NextChild()
	if s == nil {
		invariant("scope %v was never created", path)
	}
	got := s.Path()
	if len(got) != len(path) {
		invariant("scope replay reached %v, expected %v", got, path)
	}
	for i := range got {
		if got[i] != path[i] {
			invariant("scope replay reached %v, expected %v", got, path)
		}
	}
	for _, sym := range s.Symbols() {
		if sym.Linked() != nil {
			sym.SetType(fi.collapse(sym.Linked(), class))
		} else {
			sym.SetType(fi.fallback(sym.Type(), class))
		}
	}
	return s
}

func (fi *finisher) visit(n ast.Node, scope *symbols.Scope, f frame) {
	switch v := n.(type) {
	case *ast.ClassDecl:
		scope = fi.enter(scope, v.ScopePath, f.class)
	case *ast.AttrDecl:
		f = f.inAttribute(v)
	case *ast.MethodDecl:
		scope = fi.enter(scope, v.ScopePath, f.class)
		f = f.inMethod(v, scope)
	case *ast.Let:
		scope = fi.enter(scope, v.ScopePath, f.class)
	case *ast.CaseBranch:
		scope = fi.enter(scope, v.ScopePath, f.class)
	}

	ann := n.Annotation()
	if ann.Computed != nil {
		ann.Resolved = fi.collapse(ann.Computed, f.class)
	} else {
		ann.Resolved = fi.fallback(ann.Inferred, f.class)
	}
	fi.record(n, f)

	for _, child := range ast.Children(n) {
		fi.visit(child, scope, f)
	}
}

// record adds a declaration written as AUTO_TYPE to the summary.
func (fi *finisher) record(n ast.Node, f frame) {
	var name, kind, feature, typeName string
	switch v := n.(type) {
	case *ast.AttrDecl:
		name, kind, typeName = v.Name, "attribute", v.TypeName
	case *ast.Param:
		name, kind, typeName, feature = v.Name, "parameter", v.TypeName, f.methodName()
	case *ast.MethodDecl:
		name, kind, typeName = v.Name, "return", v.ReturnType
	case *ast.VarDecl:
		name, kind, typeName = v.Name, "local", v.TypeName
		feature = f.methodName()
		if feature == "" {
			feature = f.attrName()
		}
	default:
		return
	}
	if typeName != config.AutoTypeName {
		return
	}

	resolved := n.Annotation().Resolved
	fi.inferred = append(fi.inferred, pipeline.Inference{
		Token:   n.GetToken(),
		Class:   fi.types.Name(f.class),
		Feature: feature,
		Name:    name,
		Kind:    kind,
		Type:    resolved.String(),
	})
	level.Debug(fi.ctx.Logger).Log("msg", "inferred", "class", fi.types.Name(f.class), "kind", kind, "name", name, "type", resolved.String())
}

// writeBack stores the final types in the class model. A return declared
// SELF_TYPE stays SELF_TYPE in the signature.
func (fi *finisher) writeBack(program *ast.Program) {
	for _, cd := range program.Classes {
		if cd.ID == typesystem.NoType {
			continue
		}
		for _, feature := range cd.Features {
			md, ok := feature.(*ast.MethodDecl)
			if !ok || md.Method == nil {
				continue
			}
			m := md.Method
			for i := range m.Params {
				if i < len(m.LinkedParams) && m.LinkedParams[i] != nil {
					m.Params[i].Type = fi.collapse(m.LinkedParams[i], cd.ID)
				} else {
					m.Params[i].Type = fi.fallback(m.Params[i].Type, cd.ID)
				}
				fi.checkBinding(cd, md, i)
			}
			switch {
			case isSelfList(m.LinkedReturn):
				m.Return = typesystem.TSelf{}
			case m.LinkedReturn != nil:
				m.Return = fi.collapse(m.LinkedReturn, cd.ID)
			default:
				if _, self := m.Return.(typesystem.TSelf); !self {
					m.Return = fi.fallback(m.Return, cd.ID)
				}
			}
		}
	}
}

func isSelfList(c *typesystem.Candidates) bool {
	if c == nil || c.Len() != 1 {
		return false
	}
	_, ok := c.Types[0].(typesystem.TSelf)
	return ok
}

// checkBinding asserts that parameter i of md and the method signature
// collapsed to the same class.
func (fi *finisher) checkBinding(cd *ast.ClassDecl, md *ast.MethodDecl, i int) {
	if i >= len(md.Params) || md.Params[i].Symbol == nil {
		return
	}
	bound, declared := md.Params[i].Symbol.Type(), md.Method.Params[i].Type
	if typesystem.IsError(bound) || typesystem.IsError(declared) {
		return
	}
	b, bok := bound.(typesystem.TCon)
	d, dok := declared.(typesystem.TCon)
	if bok && dok && fi.types.IsSubtype(b.ID, d.ID) && fi.types.IsSubtype(d.ID, b.ID) {
		return
	}
	invariant("parameter %q of %s.%s is bound to %s but the signature has %s",
		md.Params[i].Name, cd.Name, md.Name, bound, declared)
}

// checkOverrides asserts that an override and the method it redefines
// ended up with the same parameter types.
func (fi *finisher) checkOverrides(program *ast.Program) {
	for _, cd := range program.Classes {
		if cd.ID == typesystem.NoType {
			continue
		}
		for _, feature := range cd.Features {
			md, ok := feature.(*ast.MethodDecl)
			if !ok || md.Method == nil {
				continue
			}
			parent := overridden(fi.types, md.Method)
			if parent == nil {
				continue
			}
			for i, p := range md.Method.Params {
				want := parent.Params[i].Type
				if typesystem.IsError(p.Type) || typesystem.IsError(want) {
					continue
				}
				if !sameType(p.Type, want) {
					invariant("parameter %d of %s.%s resolved to %s, overridden as %s",
						i+1, cd.Name, md.Name, p.Type, want)
				}
			}
		}
	}
}
