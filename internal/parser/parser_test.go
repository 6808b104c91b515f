package parser_test

import (
	"testing"

	"github.com/funvibe/autotype/internal/ast"
	"github.com/funvibe/autotype/internal/lexer"
	"github.com/funvibe/autotype/internal/parser"
	"github.com/funvibe/autotype/internal/pipeline"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	ctx := pipeline.NewContext(input, "test.cl")
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if len(ctx.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	return ctx.AstRoot
}

// body parses `class A { f() : Object { <expr> }; };` and returns the body.
func body(t *testing.T, expr string) ast.Expression {
	t.Helper()
	prog := parse(t, "class A { f() : Object { "+expr+" }; };")
	return prog.Classes[0].Features[0].(*ast.MethodDecl).Body
}

func TestClassAndFeatures(t *testing.T) {
	prog := parse(t, `
class Main inherits IO {
	x : AUTO_TYPE <- 5;
	y : Int;
	f(a : Int, b : AUTO_TYPE) : SELF_TYPE { self };
};
class B { };`)

	if prog.File != "test.cl" || len(prog.Classes) != 2 {
		t.Fatalf("unexpected program: %+v", prog)
	}
	main := prog.Classes[0]
	if main.Name != "Main" || main.Parent != "IO" || main.ParentToken.Line != 2 {
		t.Errorf("class header = %s inherits %s", main.Name, main.Parent)
	}
	if prog.Classes[1].Parent != "" {
		t.Errorf("B has no inherits clause")
	}
	if len(main.Features) != 3 {
		t.Fatalf("expected 3 features, got %d", len(main.Features))
	}

	x := main.Features[0].(*ast.AttrDecl)
	if x.Name != "x" || x.TypeName != "AUTO_TYPE" {
		t.Errorf("x = %+v", x)
	}
	if lit, ok := x.Init.(*ast.IntLit); !ok || lit.Value != 5 {
		t.Errorf("x init = %#v", x.Init)
	}
	if y := main.Features[1].(*ast.AttrDecl); y.Init != nil {
		t.Errorf("y has no initializer")
	}

	f := main.Features[2].(*ast.MethodDecl)
	if f.ReturnType != "SELF_TYPE" || len(f.Params) != 2 || f.Params[1].TypeName != "AUTO_TYPE" {
		t.Errorf("f = %+v", f)
	}
	if id, ok := f.Body.(*ast.Identifier); !ok || id.Name != "self" {
		t.Errorf("f body = %#v", f.Body)
	}
}

func TestPrecedence(t *testing.T) {
	// 1 + 2 * 3 < 7 parses as (1 + (2 * 3)) < 7
	cmp, ok := body(t, "1 + 2 * 3 < 7").(*ast.Comparison)
	if !ok || cmp.Op != "<" {
		t.Fatalf("top node = %#v", cmp)
	}
	sum := cmp.Left.(*ast.Arithmetic)
	if sum.Op != "+" {
		t.Errorf("left of < is %s", sum.Op)
	}
	if prod := sum.Right.(*ast.Arithmetic); prod.Op != "*" {
		t.Errorf("right of + is %s", prod.Op)
	}

	// left associative: 8 - 4 - 2 is (8 - 4) - 2
	sub := body(t, "8 - 4 - 2").(*ast.Arithmetic)
	if _, ok := sub.Left.(*ast.Arithmetic); !ok {
		t.Errorf("subtraction must associate to the left")
	}

	// not binds looser than comparison
	not := body(t, "not 1 = 2").(*ast.Not)
	if _, ok := not.Expr.(*ast.Comparison); !ok {
		t.Errorf("not operand = %#v", not.Expr)
	}

	// isvoid binds tighter than +
	plus := body(t, "isvoid x + 1").(*ast.Arithmetic)
	if _, ok := plus.Left.(*ast.IsVoid); !ok {
		t.Errorf("isvoid must bind tighter than +")
	}

	// ~ binds tighter than *, dispatch tighter than ~
	mul := body(t, "~x.f() * 2").(*ast.Arithmetic)
	neg, ok := mul.Left.(*ast.Negate)
	if !ok {
		t.Fatalf("left of * = %#v", mul.Left)
	}
	if _, ok := neg.Expr.(*ast.Call); !ok {
		t.Errorf("~ operand = %#v", neg.Expr)
	}
}

func TestAssignIsRightAssociative(t *testing.T) {
	a := body(t, "a <- b <- 1 + 2").(*ast.Assign)
	b, ok := a.Value.(*ast.Assign)
	if a.Name != "a" || !ok || b.Name != "b" {
		t.Fatalf("got %#v", a)
	}
	if _, ok := b.Value.(*ast.Arithmetic); !ok {
		t.Errorf("b value = %#v", b.Value)
	}
}

func TestDispatch(t *testing.T) {
	call := body(t, "self@B.copy().g(1, new SELF_TYPE)").(*ast.Call)
	if call.Method != "g" || len(call.Args) != 2 || call.StaticType != "" {
		t.Fatalf("outer call = %+v", call)
	}
	if n, ok := call.Args[1].(*ast.New); !ok || n.TypeName != "SELF_TYPE" {
		t.Errorf("second argument = %#v", call.Args[1])
	}
	inner := call.Receiver.(*ast.Call)
	if inner.Method != "copy" || inner.StaticType != "B" {
		t.Errorf("inner call = %+v", inner)
	}

	self := body(t, "out_int(3)").(*ast.Call)
	if self.Receiver != nil || self.Method != "out_int" {
		t.Errorf("self dispatch = %+v", self)
	}
}

func TestLetAndCase(t *testing.T) {
	let := body(t, "let x : AUTO_TYPE <- y, y : AUTO_TYPE <- x in x + 1").(*ast.Let)
	if len(let.Vars) != 2 || let.Vars[1].Name != "y" || let.Vars[1].Init == nil {
		t.Fatalf("let vars = %+v", let.Vars)
	}
	if _, ok := let.Body.(*ast.Arithmetic); !ok {
		t.Errorf("let body extends to the right, got %#v", let.Body)
	}

	cs := body(t, "case o of i : Int => i; s : String => s; esac").(*ast.Case)
	if len(cs.Branches) != 2 || cs.Branches[1].TypeName != "String" {
		t.Errorf("branches = %+v", cs.Branches)
	}
}

func TestBlockIfWhile(t *testing.T) {
	blk := body(t, "{ 1; \"s\"; if true then 1 else 2 fi; while false loop 0 pool; }").(*ast.Block)
	if len(blk.Exprs) != 4 {
		t.Fatalf("block has %d expressions", len(blk.Exprs))
	}
	if s := blk.Exprs[1].(*ast.StringLit); s.Value != "s" {
		t.Errorf("string = %q", s.Value)
	}
	if b := blk.Exprs[2].(*ast.If).Condition.(*ast.BoolLit); !b.Value {
		t.Errorf("condition must be true")
	}
	if _, ok := blk.Exprs[3].(*ast.While); !ok {
		t.Errorf("last = %#v", blk.Exprs[3])
	}
}
