// Package analyzer implements the semantic passes: class collection,
// hierarchy building, placeholder inference, linking and finishing.
package analyzer

import (
	"fmt"

	"github.com/funvibe/autotype/internal/ast"
	"github.com/funvibe/autotype/internal/config"
	"github.com/funvibe/autotype/internal/constraints"
	"github.com/funvibe/autotype/internal/diagnostics"
	"github.com/funvibe/autotype/internal/pipeline"
	"github.com/funvibe/autotype/internal/symbols"
	"github.com/funvibe/autotype/internal/token"
	"github.com/funvibe/autotype/internal/typesystem"
)

// frame is the position of a visit inside the program. It is passed by
// value, so entering a method or a let never has to be undone.
type frame struct {
	class  typesystem.TypeID
	method *ast.MethodDecl
	attr   *ast.AttrDecl
	scope  *symbols.Scope
}

func (f frame) inMethod(m *ast.MethodDecl, scope *symbols.Scope) frame {
	f.method, f.attr, f.scope = m, nil, scope
	return f
}

func (f frame) inAttribute(a *ast.AttrDecl) frame {
	f.method, f.attr = nil, a
	return f
}

func (f frame) within(scope *symbols.Scope) frame {
	f.scope = scope
	return f
}

func (f frame) methodName() string {
	if f.method == nil {
		return ""
	}
	return f.method.Name
}

func (f frame) attrName() string {
	if f.attr == nil {
		return ""
	}
	return f.attr.Name
}

// reporter adds diagnostics to the context, dropping exact repeats. The
// inference and linking passes revisit the same nodes several times.
type reporter struct {
	ctx   *pipeline.PipelineContext
	types *typesystem.Context
	seen  map[string]bool
	added int
}

func newReporter(ctx *pipeline.PipelineContext) *reporter {
	return &reporter{ctx: ctx, types: ctx.Types, seen: make(map[string]bool)}
}

func (r *reporter) report(f frame, code diagnostics.ErrorCode, tok token.Token, format string, args ...any) {
	class := ""
	if f.class != typesystem.NoType {
		class = r.types.Name(f.class)
	}
	r.add(diagnostics.NewError(code, tok, fmt.Sprintf(format, args...)).In(class, f.methodName(), f.attrName()))
}

// reportClass is used before the class has a handle.
func (r *reporter) reportClass(class string, code diagnostics.ErrorCode, tok token.Token, format string, args ...any) {
	r.add(diagnostics.NewError(code, tok, fmt.Sprintf(format, args...)).In(class, "", ""))
}

func (r *reporter) add(err *diagnostics.DiagnosticError) {
	key := fmt.Sprintf("%s:%d:%d:%s:%s", err.Code, err.Token.Line, err.Token.Column, err.Class, err.Message)
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	r.added++
	r.ctx.AddError(err)
}

func (r *reporter) origin(f frame, tok token.Token) constraints.Origin {
	return constraints.Origin{
		Token:     tok,
		Class:     r.types.Name(f.class),
		Method:    f.methodName(),
		Attribute: f.attrName(),
	}
}

// isTypeName reports whether name follows the class naming convention.
func isTypeName(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}

// isValueName reports whether name follows the naming convention of
// attributes, methods and variables.
func isValueName(name string) bool {
	return name != "" && name[0] >= 'a' && name[0] <= 'z'
}

func isReservedType(name string) bool {
	return name == config.SelfTypeName || name == config.AutoTypeName
}

// resolveSelf rebinds SELF_TYPE to the class of the frame.
func resolveSelf(types *typesystem.Context, t typesystem.Type, f frame) typesystem.Type {
	if t == nil {
		return typesystem.TError{}
	}
	return types.ResolveSelf(t, f.class)
}

// sameType compares handles of concrete types and identity otherwise.
func sameType(a, b typesystem.Type) bool {
	switch av := a.(type) {
	case typesystem.TCon:
		bv, ok := b.(typesystem.TCon)
		return ok && av.ID == bv.ID
	case *typesystem.TAuto:
		bv, ok := b.(*typesystem.TAuto)
		return ok && av == bv
	case typesystem.TError:
		return typesystem.IsError(b)
	case typesystem.TSelf:
		_, ok := b.(typesystem.TSelf)
		return ok
	case typesystem.TVoid:
		_, ok := b.(typesystem.TVoid)
		return ok
	}
	return false
}

// autoSerial names a declared placeholder after its position so traces can
// tell placeholders apart.
func autoSerial(tok token.Token) string {
	return fmt.Sprintf("%d:%d", tok.Line, tok.Column)
}

// InvariantError is raised when the passes disagree about the program in a
// way that only a defect in the analyzer can explain.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "internal invariant violated: " + e.Message
}

func invariant(format string, args ...any) {
	panic(&InvariantError{Message: fmt.Sprintf(format, args...)})
}
