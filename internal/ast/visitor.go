package ast

import "fmt"

// Visitor is implemented by every pass. C is the context threaded through
// the traversal, R what each visit produces. Adding a node kind adds a
// method here, so every pass has to handle it.
type Visitor[C, R any] interface {
	VisitProgram(n *Program, c C) R
	VisitClass(n *ClassDecl, c C) R
	VisitAttribute(n *AttrDecl, c C) R
	VisitMethod(n *MethodDecl, c C) R

	VisitBlock(n *Block, c C) R
	VisitIf(n *If, c C) R
	VisitWhile(n *While, c C) R
	VisitLet(n *Let, c C) R
	VisitCase(n *Case, c C) R
	VisitIsVoid(n *IsVoid, c C) R
	VisitNot(n *Not, c C) R
	VisitNegate(n *Negate, c C) R
	VisitAssign(n *Assign, c C) R
	VisitCall(n *Call, c C) R
	VisitArithmetic(n *Arithmetic, c C) R
	VisitComparison(n *Comparison, c C) R
	VisitInt(n *IntLit, c C) R
	VisitString(n *StringLit, c C) R
	VisitBool(n *BoolLit, c C) R
	VisitNew(n *New, c C) R
	VisitIdentifier(n *Identifier, c C) R
}

// Walk dispatches node to the matching method of v.
func Walk[C, R any](v Visitor[C, R], node Node, c C) R {
	switch n := node.(type) {
	case *Program:
		return v.VisitProgram(n, c)
	case *ClassDecl:
		return v.VisitClass(n, c)
	case *AttrDecl:
		return v.VisitAttribute(n, c)
	case *MethodDecl:
		return v.VisitMethod(n, c)
	case *Block:
		return v.VisitBlock(n, c)
	case *If:
		return v.VisitIf(n, c)
	case *While:
		return v.VisitWhile(n, c)
	case *Let:
		return v.VisitLet(n, c)
	case *Case:
		return v.VisitCase(n, c)
	case *IsVoid:
		return v.VisitIsVoid(n, c)
	case *Not:
		return v.VisitNot(n, c)
	case *Negate:
		return v.VisitNegate(n, c)
	case *Assign:
		return v.VisitAssign(n, c)
	case *Call:
		return v.VisitCall(n, c)
	case *Arithmetic:
		return v.VisitArithmetic(n, c)
	case *Comparison:
		return v.VisitComparison(n, c)
	case *IntLit:
		return v.VisitInt(n, c)
	case *StringLit:
		return v.VisitString(n, c)
	case *BoolLit:
		return v.VisitBool(n, c)
	case *New:
		return v.VisitNew(n, c)
	case *Identifier:
		return v.VisitIdentifier(n, c)
	}
	panic(fmt.Sprintf("ast.Walk: unexpected node %T", node))
}

// Children returns the direct children of n in source order. Parameters,
// let variables and case branches are children of their owner.
func Children(n Node) []Node {
	var out []Node
	add := func(e Node) {
		if e != nil {
			out = append(out, e)
		}
	}
	switch n := n.(type) {
	case *Program:
		for _, c := range n.Classes {
			add(c)
		}
	case *ClassDecl:
		for _, f := range n.Features {
			add(f)
		}
	case *AttrDecl:
		add(n.Init)
	case *MethodDecl:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *VarDecl:
		add(n.Init)
	case *CaseBranch:
		add(n.Body)
	case *Block:
		for _, e := range n.Exprs {
			add(e)
		}
	case *If:
		add(n.Condition)
		add(n.Then)
		add(n.Else)
	case *While:
		add(n.Condition)
		add(n.Body)
	case *Let:
		for _, v := range n.Vars {
			add(v)
		}
		add(n.Body)
	case *Case:
		add(n.Scrutinee)
		for _, b := range n.Branches {
			add(b)
		}
	case *IsVoid:
		add(n.Expr)
	case *Not:
		add(n.Expr)
	case *Negate:
		add(n.Expr)
	case *Assign:
		add(n.Value)
	case *Call:
		add(n.Receiver)
		for _, a := range n.Args {
			add(a)
		}
	case *Arithmetic:
		add(n.Left)
		add(n.Right)
	case *Comparison:
		add(n.Left)
		add(n.Right)
	}
	return out
}

// Inspect visits n and its descendants in pre-order. Returning false from
// f skips the children of that node.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}
