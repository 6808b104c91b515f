package parser_test

import (
	"strings"
	"testing"

	"github.com/funvibe/autotype/internal/diagnostics"
	"github.com/funvibe/autotype/internal/lexer"
	"github.com/funvibe/autotype/internal/parser"
	"github.com/funvibe/autotype/internal/pipeline"
)

// parseWithErrors runs the lexer+parser and returns all diagnostic errors.
func parseWithErrors(input string) []*diagnostics.DiagnosticError {
	ctx := &pipeline.PipelineContext{SourceCode: input}
	lp := &lexer.LexerProcessor{}
	ctx = lp.Process(ctx)
	pp := &parser.ParserProcessor{}
	ctx = pp.Process(ctx)
	return ctx.Errors
}

// expectError asserts an error with the given code and message fragment.
func expectError(t *testing.T, input string, code diagnostics.ErrorCode, fragment string) *diagnostics.DiagnosticError {
	t.Helper()
	errs := parseWithErrors(input)
	if len(errs) == 0 {
		t.Fatalf("expected error %s, but got none\ninput: %s", code, input)
	}
	for _, e := range errs {
		if e.Code == code && strings.Contains(e.Message, fragment) {
			return e
		}
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	t.Fatalf("expected error %s containing %q, got:\n%s\ninput: %s", code, fragment, strings.Join(msgs, "\n"), input)
	return nil
}

// expectNoErrors asserts parsing succeeds without errors.
func expectNoErrors(t *testing.T, input string) {
	t.Helper()
	errs := parseWithErrors(input)
	if len(errs) > 0 {
		var msgs []string
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		t.Fatalf("expected no errors, got:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}
}

// ---------------------------------------------------------------------------
// P001: lexical errors surface through the pipeline
// ---------------------------------------------------------------------------

func TestP001_InvalidCharacter(t *testing.T) {
	expectError(t, "class A { x : Int <- 1 # 2; };", diagnostics.ErrP001, "Invalid character")
}

func TestP001_UnterminatedComment(t *testing.T) {
	expectError(t, "class A { }; (* never closed", diagnostics.ErrP001, "EOF in comment")
}

// ---------------------------------------------------------------------------
// P002: syntax errors
// ---------------------------------------------------------------------------

func TestP002_EmptyProgram(t *testing.T) {
	expectError(t, "  -- nothing here\n", diagnostics.ErrP002, "at least one class")
}

func TestP002_MissingSemicolonAfterClass(t *testing.T) {
	expectError(t, "class A { }", diagnostics.ErrP002, `expected ";"`)
}

func TestP002_LowercaseClassName(t *testing.T) {
	expectError(t, "class a { };", diagnostics.ErrP002, "type identifier")
}

func TestP002_MissingFi(t *testing.T) {
	expectError(t, "class A { f() : Int { if true then 1 else 2 }; };", diagnostics.ErrP002, `expected "fi"`)
}

func TestP002_ChainedComparison(t *testing.T) {
	expectError(t, "class A { f() : Bool { 1 < 2 < 3 }; };", diagnostics.ErrP002, "cannot be chained")
}

func TestP002_EmptyBlock(t *testing.T) {
	expectError(t, "class A { f() : Int { {} }; };", diagnostics.ErrP002, "expected an expression")
}

func TestP002_FeatureWithoutType(t *testing.T) {
	expectError(t, "class A { x <- 3; };", diagnostics.ErrP002, `expected ":"`)
}

func TestP002_RecoversAtNextClass(t *testing.T) {
	errs := parseWithErrors("class A { x : ; }; class B { y : Int <- ; }; class C { };")
	if len(errs) != 2 {
		t.Fatalf("expected one error per broken class, got %d: %v", len(errs), errs)
	}
	if errs[0].Token.Line != 1 || errs[1].Token.Column <= errs[0].Token.Column {
		t.Errorf("errors out of order: %v", errs)
	}
}

func TestValidPrograms(t *testing.T) {
	inputs := []string{
		"class A { };",
		"class Main inherits IO { main() : SELF_TYPE { out_string(\"hi\") }; };",
		"class A { x : AUTO_TYPE <- 5; y : Int; f(a : Int, b : AUTO_TYPE) : AUTO_TYPE { a + b }; };",
		"class A { f() : Object { while not isvoid self loop self pool }; };",
		"class A { f() : Object { let x : Int <- 1, y : Int in { x <- y <- 2; } }; };",
		"class A { f(o : Object) : Int { case o of i : Int => i; s : String => s.length(); esac }; };",
		"class A inherits B { f() : B { self@B.copy().g(1, new SELF_TYPE) }; };",
		"class A { f() : Bool { ~1 + 2 * 3 / 4 - 5 <= 6 }; };",
	}
	for _, input := range inputs {
		expectNoErrors(t, input)
	}
}
