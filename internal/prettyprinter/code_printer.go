package prettyprinter

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/funvibe/autotype/internal/ast"
	"github.com/funvibe/autotype/internal/config"
	"github.com/funvibe/autotype/internal/typesystem"
)

// --- Code Printer (Output looks like source code) ---

// Binding strength, loosest first. Let and assignment extend as far right
// as possible, so they are parenthesized whenever anything follows them.
const (
	precLowest = iota
	precAssign
	precNot
	precComparison
	precSum
	precProduct
	precIsVoid
	precNegate
	precDispatch
	precAtom
)

var operatorPrecedence = map[string]int{
	"<":  precComparison,
	"<=": precComparison,
	"=":  precComparison,
	"+":  precSum,
	"-":  precSum,
	"*":  precProduct,
	"/":  precProduct,
}

func getPrecedence(op string) int {
	if p, ok := operatorPrecedence[op]; ok {
		return p
	}
	return precAtom
}

// CodePrinter renders a program back to source. With inferred types
// enabled, every AUTO_TYPE in a declaration is replaced by the type the
// analysis resolved it to.
type CodePrinter struct {
	buf      bytes.Buffer
	indent   int
	inferred bool
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// WithInferredTypes makes the printer substitute resolved placeholders.
func (p *CodePrinter) WithInferredTypes() *CodePrinter {
	p.inferred = true
	return p
}

// Print renders n and returns everything printed so far.
func (p *CodePrinter) Print(n ast.Node) string {
	p.print(n, precLowest)
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) print(n ast.Node, parent int) {
	if n == nil {
		p.write("<???>")
		return
	}
	ast.Walk[int, struct{}](p, n, parent)
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteString("\n")
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

// typeName is the type written for a declaration, with AUTO_TYPE
// replaced when the node resolved to a class.
func (p *CodePrinter) typeName(n ast.Node, written string) string {
	if !p.inferred || written != config.AutoTypeName {
		return written
	}
	switch t := n.Annotation().Resolved.(type) {
	case typesystem.TCon:
		return t.Name
	case typesystem.TSelf:
		return config.SelfTypeName
	}
	return written
}

// wrap parenthesizes body when prec binds looser than the context.
func (p *CodePrinter) wrap(prec, parent int, body func()) {
	if prec < parent {
		p.write("(")
		body()
		p.write(")")
		return
	}
	body()
}

func (p *CodePrinter) VisitProgram(n *ast.Program, _ int) struct{} {
	for i, cd := range n.Classes {
		if i > 0 {
			p.write("\n")
		}
		p.print(cd, precLowest)
		p.write("\n")
	}
	return struct{}{}
}

func (p *CodePrinter) VisitClass(n *ast.ClassDecl, _ int) struct{} {
	p.write("class " + n.Name)
	if n.Parent != "" {
		p.write(" inherits " + n.Parent)
	}
	p.write(" {")
	p.indent++
	for _, f := range n.Features {
		p.writeln()
		p.print(f, precLowest)
		p.write(";")
	}
	p.indent--
	if len(n.Features) > 0 {
		p.writeln()
	}
	p.write("};")
	return struct{}{}
}

func (p *CodePrinter) VisitAttribute(n *ast.AttrDecl, _ int) struct{} {
	p.write(n.Name + " : " + p.typeName(n, n.TypeName))
	if n.Init != nil {
		p.write(" <- ")
		p.print(n.Init, precAssign)
	}
	return struct{}{}
}

func (p *CodePrinter) VisitMethod(n *ast.MethodDecl, _ int) struct{} {
	p.write(n.Name + "(")
	for i, param := range n.Params {
		if i > 0 {
			p.write(", ")
		}
		p.write(param.Name + " : " + p.typeName(param, param.TypeName))
	}
	p.write(") : " + p.typeName(n, n.ReturnType) + " {")
	p.indent++
	p.writeln()
	p.print(n.Body, precLowest)
	p.indent--
	p.writeln()
	p.write("}")
	return struct{}{}
}

func (p *CodePrinter) VisitBlock(n *ast.Block, _ int) struct{} {
	p.write("{")
	p.indent++
	for _, e := range n.Exprs {
		p.writeln()
		p.print(e, precLowest)
		p.write(";")
	}
	p.indent--
	p.writeln()
	p.write("}")
	return struct{}{}
}

func (p *CodePrinter) VisitIf(n *ast.If, _ int) struct{} {
	p.write("if ")
	p.print(n.Condition, precLowest)
	p.write(" then ")
	p.print(n.Then, precLowest)
	p.write(" else ")
	p.print(n.Else, precLowest)
	p.write(" fi")
	return struct{}{}
}

func (p *CodePrinter) VisitWhile(n *ast.While, _ int) struct{} {
	p.write("while ")
	p.print(n.Condition, precLowest)
	p.write(" loop ")
	p.print(n.Body, precLowest)
	p.write(" pool")
	return struct{}{}
}

func (p *CodePrinter) VisitLet(n *ast.Let, parent int) struct{} {
	p.wrap(precAssign, parent, func() {
		p.write("let ")
		for i, v := range n.Vars {
			if i > 0 {
				p.write(", ")
			}
			p.write(v.Name + " : " + p.typeName(v, v.TypeName))
			if v.Init != nil {
				p.write(" <- ")
				p.print(v.Init, precAssign)
			}
		}
		p.write(" in ")
		p.print(n.Body, precLowest)
	})
	return struct{}{}
}

func (p *CodePrinter) VisitCase(n *ast.Case, _ int) struct{} {
	p.write("case ")
	p.print(n.Scrutinee, precLowest)
	p.write(" of")
	p.indent++
	for _, b := range n.Branches {
		p.writeln()
		p.write(b.Name + " : " + b.TypeName + " => ")
		p.print(b.Body, precLowest)
		p.write(";")
	}
	p.indent--
	p.writeln()
	p.write("esac")
	return struct{}{}
}

func (p *CodePrinter) VisitIsVoid(n *ast.IsVoid, parent int) struct{} {
	p.wrap(precIsVoid, parent, func() {
		p.write("isvoid ")
		p.print(n.Expr, precIsVoid)
	})
	return struct{}{}
}

func (p *CodePrinter) VisitNot(n *ast.Not, parent int) struct{} {
	p.wrap(precNot, parent, func() {
		p.write("not ")
		p.print(n.Expr, precNot)
	})
	return struct{}{}
}

func (p *CodePrinter) VisitNegate(n *ast.Negate, parent int) struct{} {
	p.wrap(precNegate, parent, func() {
		p.write("~")
		p.print(n.Expr, precNegate)
	})
	return struct{}{}
}

func (p *CodePrinter) VisitAssign(n *ast.Assign, parent int) struct{} {
	p.wrap(precAssign, parent, func() {
		p.write(n.Name + " <- ")
		p.print(n.Value, precAssign)
	})
	return struct{}{}
}

func (p *CodePrinter) VisitCall(n *ast.Call, _ int) struct{} {
	if n.Receiver != nil {
		p.print(n.Receiver, precDispatch)
		if n.StaticType != "" {
			p.write("@" + n.StaticType)
		}
		p.write(".")
	}
	p.write(n.Method + "(")
	for i, a := range n.Args {
		if i > 0 {
			p.write(", ")
		}
		p.print(a, precLowest)
	}
	p.write(")")
	return struct{}{}
}

// Arithmetic is left-associative: the right operand binds one level
// tighter.
func (p *CodePrinter) VisitArithmetic(n *ast.Arithmetic, parent int) struct{} {
	prec := getPrecedence(n.Op)
	p.wrap(prec, parent, func() {
		p.print(n.Left, prec)
		p.write(" " + n.Op + " ")
		p.print(n.Right, prec+1)
	})
	return struct{}{}
}

// Comparisons do not chain, so both operands bind tighter.
func (p *CodePrinter) VisitComparison(n *ast.Comparison, parent int) struct{} {
	prec := getPrecedence(n.Op)
	p.wrap(prec, parent, func() {
		p.print(n.Left, prec+1)
		p.write(" " + n.Op + " ")
		p.print(n.Right, prec+1)
	})
	return struct{}{}
}

func (p *CodePrinter) VisitInt(n *ast.IntLit, _ int) struct{} {
	p.write(strconv.FormatInt(n.Value, 10))
	return struct{}{}
}

func (p *CodePrinter) VisitString(n *ast.StringLit, _ int) struct{} {
	p.write(quote(n.Value))
	return struct{}{}
}

func (p *CodePrinter) VisitBool(n *ast.BoolLit, _ int) struct{} {
	p.write(strconv.FormatBool(n.Value))
	return struct{}{}
}

func (p *CodePrinter) VisitNew(n *ast.New, _ int) struct{} {
	p.write("new " + n.TypeName)
	return struct{}{}
}

func (p *CodePrinter) VisitIdentifier(n *ast.Identifier, _ int) struct{} {
	p.write(n.Name)
	return struct{}{}
}

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	"\n", `\n`,
	"\t", `\t`,
	"\b", `\b`,
	"\f", `\f`,
)

func quote(s string) string {
	return `"` + escaper.Replace(s) + `"`
}
