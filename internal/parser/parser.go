package parser

import (
	"fmt"
	"strings"

	"github.com/funvibe/autotype/internal/ast"
	"github.com/funvibe/autotype/internal/diagnostics"
	"github.com/funvibe/autotype/internal/pipeline"
	"github.com/funvibe/autotype/internal/token"
)

// MaxRecursionDepth bounds expression nesting.
const MaxRecursionDepth = 500

// Precedences, lowest first.
const (
	_ int = iota
	LOWEST
	ASSIGN     // <-
	NOT        // not
	COMPARISON // < <= =
	SUM        // + -
	PRODUCT    // * /
	ISVOID     // isvoid
	NEGATE     // ~
	DISPATCH   // @ .
)

var precedences = map[token.TokenType]int{
	token.LT:       COMPARISON,
	token.LE:       COMPARISON,
	token.EQ:       COMPARISON,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.AT:       DISPATCH,
	token.DOT:      DISPATCH,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// errAbort unwinds the parse of one feature after a syntax error.
type errAbort struct{}

type Parser struct {
	tokens []token.Token
	pos    int
	ctx    *pipeline.PipelineContext

	curToken  token.Token
	peekToken token.Token

	depth int

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

// New creates a parser over tokens. Syntax errors go to ctx.
func New(tokens []token.Token, ctx *pipeline.PipelineContext) *Parser {
	p := &Parser{tokens: tokens, ctx: ctx}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.OBJECTID: p.parseIdentifier,
		token.INT:      p.parseIntegerLiteral,
		token.STRING:   p.parseStringLiteral,
		token.TRUE:     p.parseBoolean,
		token.FALSE:    p.parseBoolean,
		token.LPAREN:   p.parseGroupedExpression,
		token.LBRACE:   p.parseBlock,
		token.IF:       p.parseIfExpression,
		token.WHILE:    p.parseWhileExpression,
		token.LET:      p.parseLetExpression,
		token.CASE:     p.parseCaseExpression,
		token.NEW:      p.parseNewExpression,
		token.ISVOID:   p.parseIsVoid,
		token.NOT:      p.parseNot,
		token.TILDE:    p.parseNegate,
	}
	p.infixParseFns = map[token.TokenType]infixParseFn{
		token.PLUS:     p.parseArithmetic,
		token.MINUS:    p.parseArithmetic,
		token.ASTERISK: p.parseArithmetic,
		token.SLASH:    p.parseArithmetic,
		token.LT:       p.parseComparison,
		token.LE:       p.parseComparison,
		token.EQ:       p.parseComparison,
		token.DOT:      p.parseDispatch,
		token.AT:       p.parseStaticDispatch,
	}

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	if p.pos < len(p.tokens) {
		p.peekToken = p.tokens[p.pos]
		p.pos++
		return
	}
	p.peekToken = token.Token{Type: token.EOF, Line: p.curToken.Line, Column: p.curToken.Column}
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

// expectPeek advances when the next token has type t and aborts the
// current feature otherwise.
func (p *Parser) expectPeek(t token.TokenType) {
	if !p.peekTokenIs(t) {
		p.peekError(t)
	}
	p.nextToken()
}

func (p *Parser) peekError(t token.TokenType) {
	p.fail(p.peekToken, fmt.Sprintf("expected %s, got %s", describe(t), describeToken(p.peekToken)))
}

func (p *Parser) fail(tok token.Token, msg string) {
	p.ctx.AddError(diagnostics.NewError(diagnostics.ErrP002, tok, msg))
	panic(errAbort{})
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func describe(t token.TokenType) string {
	switch t {
	case token.TYPEID:
		return "a type identifier"
	case token.OBJECTID:
		return "an identifier"
	case token.EOF:
		return "end of file"
	}
	return fmt.Sprintf("%q", strings.ToLower(string(t)))
}

func describeToken(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

// ParseProgram parses `class ...;` until EOF. A syntax error inside a
// class skips to the next class declaration.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{File: p.ctx.FilePath}
	if p.curTokenIs(token.EOF) {
		p.ctx.AddError(diagnostics.NewError(diagnostics.ErrP002, p.curToken, "program must define at least one class"))
		return program
	}
	for !p.curTokenIs(token.EOF) {
		if class := p.parseClassGuarded(); class != nil {
			program.Classes = append(program.Classes, class)
		}
		p.nextToken()
	}
	return program
}

func (p *Parser) parseClassGuarded() (class *ast.ClassDecl) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(errAbort); !ok {
				panic(r)
			}
			class = nil
			p.skipToNextClass()
		}
	}()
	return p.parseClass()
}

// skipToNextClass leaves curToken on the token before the next `class`
// keyword, or on EOF.
func (p *Parser) skipToNextClass() {
	for !p.curTokenIs(token.EOF) && !p.peekTokenIs(token.CLASS) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
	}
}
