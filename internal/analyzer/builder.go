package analyzer

import (
	"errors"

	"github.com/funvibe/autotype/internal/ast"
	"github.com/funvibe/autotype/internal/config"
	"github.com/funvibe/autotype/internal/diagnostics"
	"github.com/funvibe/autotype/internal/token"
	"github.com/funvibe/autotype/internal/typesystem"
)

// builder defines attributes and methods on the registered classes. The
// collector has already ordered the declarations, so every inherited
// feature exists before a redefinition is checked against it.
type builder struct {
	*reporter
	program     *ast.Program
	requireMain bool
}

func (b *builder) run() {
	typesystem.InstallBasicMethods(b.types)

	for _, cd := range b.program.Classes {
		if cd.ID == typesystem.NoType {
			continue
		}
		f := frame{class: cd.ID}
		for _, feature := range cd.Features {
			switch n := feature.(type) {
			case *ast.AttrDecl:
				b.defineAttribute(f.inAttribute(n), n)
			case *ast.MethodDecl:
				b.defineMethod(f.inMethod(n, nil), n)
			}
		}
	}

	if b.requireMain {
		b.checkMain()
	}
}

func (b *builder) defineAttribute(f frame, n *ast.AttrDecl) {
	switch {
	case n.Name == config.SelfName:
		b.report(f, diagnostics.ErrB005, n.Token, "%q cannot be the name of an attribute.", n.Name)
		return
	case !isValueName(n.Name):
		b.report(f, diagnostics.ErrB005, n.Token, "Attribute name %q must start with a lowercase letter.", n.Name)
	}

	typ := b.declaredType(f, n.TypeName, n.TypeToken)
	if _, err := b.types.DefineAttribute(f.class, n.Name, typ); err != nil {
		b.report(f, diagnostics.ErrB002, n.Token, "%s", err.Error())
	}
}

func (b *builder) defineMethod(f frame, n *ast.MethodDecl) {
	if !isValueName(n.Name) {
		b.report(f, diagnostics.ErrB005, n.Token, "Method name %q must start with a lowercase letter.", n.Name)
	}

	seen := make(map[string]bool, len(n.Params))
	params := make([]typesystem.Param, 0, len(n.Params))
	for _, p := range n.Params {
		switch {
		case p.Name == config.SelfName:
			b.report(f, diagnostics.ErrB005, p.Token, "%q cannot be the name of a formal parameter.", p.Name)
		case !isValueName(p.Name):
			b.report(f, diagnostics.ErrB005, p.Token, "Parameter name %q must start with a lowercase letter.", p.Name)
		case seen[p.Name]:
			b.report(f, diagnostics.ErrB008, p.Token, "Formal parameter %q is declared more than once.", p.Name)
		}
		seen[p.Name] = true

		var typ typesystem.Type
		if p.TypeName == config.SelfTypeName {
			b.report(f, diagnostics.ErrB007, p.TypeToken, "Formal parameter %q cannot have type %s.", p.Name, config.SelfTypeName)
			typ = typesystem.TError{}
		} else {
			typ = b.declaredType(f, p.TypeName, p.TypeToken)
		}
		params = append(params, typesystem.Param{Name: p.Name, Type: typ})
	}

	ret := b.declaredType(f, n.ReturnType, n.ReturnToken)
	m, err := b.types.DefineMethod(f.class, n.Name, params, ret)
	var override *typesystem.OverrideError
	switch {
	case errors.As(err, &override):
		b.report(f, diagnostics.ErrB004, n.Token, "%s", override.Error())
	case err != nil:
		b.report(f, diagnostics.ErrB003, n.Token, "%s", err.Error())
	}
	n.Method = m
}

// declaredType resolves a type written in a declaration. Unknown names are
// reported and become the error type.
func (b *builder) declaredType(f frame, name string, tok token.Token) typesystem.Type {
	typ, err := b.types.GetType(name)
	if err != nil {
		b.report(f, diagnostics.ErrB001, tok, "%s", err.Error())
		return typesystem.TError{}
	}
	if a, ok := typ.(*typesystem.TAuto); ok {
		a.Serial = autoSerial(tok)
	}
	return typ
}

func (b *builder) checkMain() {
	main, ok := b.types.Lookup(config.MainTypeName)
	if !ok {
		b.reportClass("", diagnostics.ErrB006, token.Token{}, "Class %s is not defined.", config.MainTypeName)
		return
	}
	m, err := b.types.GetMethod(main, config.MainMethodName)
	if err != nil {
		tok := token.Token{}
		for _, cd := range b.program.Classes {
			if cd.ID == main {
				tok = cd.Token
			}
		}
		b.reportClass(config.MainTypeName, diagnostics.ErrB006, tok, "Class %s has no method %s.", config.MainTypeName, config.MainMethodName)
		return
	}
	if m.Arity() != 0 {
		b.reportClass(config.MainTypeName, diagnostics.ErrB006, token.Token{}, "Method %s.%s must not take parameters.", config.MainTypeName, config.MainMethodName)
	}
}
