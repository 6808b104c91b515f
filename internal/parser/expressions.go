package parser

import (
	"github.com/funvibe/autotype/internal/ast"
	"github.com/funvibe/autotype/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Expression {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		p.fail(p.curToken, "expression too complex: recursion depth limit exceeded")
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.fail(p.curToken, "expected an expression, got "+describeToken(p.curToken))
	}
	leftExp := prefix()

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}
	return leftExp
}

// parseIdentifier covers `x`, `x <- e` and `m(args)`.
func (p *Parser) parseIdentifier() ast.Expression {
	tok := p.curToken
	switch {
	case p.peekTokenIs(token.ASSIGN):
		p.nextToken()
		p.nextToken()
		// a <- b <- c assigns right to left
		return &ast.Assign{Token: tok, Name: tok.Lexeme, Value: p.parseExpression(LOWEST)}
	case p.peekTokenIs(token.LPAREN):
		p.nextToken()
		return &ast.Call{Token: tok, Method: tok.Lexeme, Args: p.parseCallArguments()}
	}
	return &ast.Identifier{Token: tok, Name: tok.Lexeme}
}

// parseCallArguments parses `(e, ...)` with curToken on `(` and leaves
// curToken on `)`.
func (p *Parser) parseCallArguments() []ast.Expression {
	var args []ast.Expression
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args
	}
	p.nextToken()
	args = append(args, p.parseExpression(LOWEST))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseExpression(LOWEST))
	}
	p.expectPeek(token.RPAREN)
	return args
}

// parseDispatch parses `.m(args)` after a receiver.
func (p *Parser) parseDispatch(receiver ast.Expression) ast.Expression {
	p.expectPeek(token.OBJECTID)
	call := &ast.Call{Token: p.curToken, Receiver: receiver, Method: p.curToken.Lexeme}
	p.expectPeek(token.LPAREN)
	call.Args = p.parseCallArguments()
	return call
}

// parseStaticDispatch parses `@T.m(args)` after a receiver.
func (p *Parser) parseStaticDispatch(receiver ast.Expression) ast.Expression {
	p.expectPeek(token.TYPEID)
	staticTok := p.curToken
	p.expectPeek(token.DOT)
	call := p.parseDispatch(receiver).(*ast.Call)
	call.StaticType = staticTok.Lexeme
	call.StaticToken = staticTok
	return call
}

func (p *Parser) parseArithmetic(left ast.Expression) ast.Expression {
	expr := &ast.Arithmetic{Token: p.curToken, Op: p.curToken.Lexeme, Left: left}
	precedence := p.curPrecedence()
	p.nextToken()
	expr.Right = p.parseExpression(precedence)
	return expr
}

// parseComparison rejects chains: comparisons do not associate.
func (p *Parser) parseComparison(left ast.Expression) ast.Expression {
	expr := &ast.Comparison{Token: p.curToken, Op: p.curToken.Lexeme, Left: left}
	p.nextToken()
	expr.Right = p.parseExpression(COMPARISON)
	if p.peekPrecedence() == COMPARISON {
		p.fail(p.peekToken, "comparison operators cannot be chained")
	}
	return expr
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	val, _ := p.curToken.Literal.(int64)
	return &ast.IntLit{Token: p.curToken, Value: val}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	val, _ := p.curToken.Literal.(string)
	return &ast.StringLit{Token: p.curToken, Value: val}
}

func (p *Parser) parseBoolean() ast.Expression {
	return &ast.BoolLit{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	p.expectPeek(token.RPAREN)
	return exp
}

// parseBlock parses `{ e; ... }`; at least one expression is required.
func (p *Parser) parseBlock() ast.Expression {
	block := &ast.Block{Token: p.curToken}
	for {
		p.nextToken()
		block.Exprs = append(block.Exprs, p.parseExpression(LOWEST))
		p.expectPeek(token.SEMICOLON)
		if p.peekTokenIs(token.RBRACE) {
			p.nextToken()
			return block
		}
	}
}

func (p *Parser) parseIfExpression() ast.Expression {
	expr := &ast.If{Token: p.curToken}
	p.nextToken()
	expr.Condition = p.parseExpression(LOWEST)
	p.expectPeek(token.THEN)
	p.nextToken()
	expr.Then = p.parseExpression(LOWEST)
	p.expectPeek(token.ELSE)
	p.nextToken()
	expr.Else = p.parseExpression(LOWEST)
	p.expectPeek(token.FI)
	return expr
}

func (p *Parser) parseWhileExpression() ast.Expression {
	expr := &ast.While{Token: p.curToken}
	p.nextToken()
	expr.Condition = p.parseExpression(LOWEST)
	p.expectPeek(token.LOOP)
	p.nextToken()
	expr.Body = p.parseExpression(LOWEST)
	p.expectPeek(token.POOL)
	return expr
}

// parseLetExpression parses `let x : T [<- e], ... in body`. The body
// extends as far to the right as possible.
func (p *Parser) parseLetExpression() ast.Expression {
	expr := &ast.Let{Token: p.curToken}
	for {
		p.expectPeek(token.OBJECTID)
		v := &ast.VarDecl{Token: p.curToken, Name: p.curToken.Lexeme}
		p.expectPeek(token.COLON)
		p.expectPeek(token.TYPEID)
		v.TypeName, v.TypeToken = p.curToken.Lexeme, p.curToken
		if p.peekTokenIs(token.ASSIGN) {
			p.nextToken()
			p.nextToken()
			v.Init = p.parseExpression(LOWEST)
		}
		expr.Vars = append(expr.Vars, v)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	p.expectPeek(token.IN)
	p.nextToken()
	expr.Body = p.parseExpression(LOWEST)
	return expr
}

// parseCaseExpression parses `case e of x : T => e; ... esac`.
func (p *Parser) parseCaseExpression() ast.Expression {
	expr := &ast.Case{Token: p.curToken}
	p.nextToken()
	expr.Scrutinee = p.parseExpression(LOWEST)
	p.expectPeek(token.OF)
	for {
		p.expectPeek(token.OBJECTID)
		branch := &ast.CaseBranch{Token: p.curToken, Name: p.curToken.Lexeme}
		p.expectPeek(token.COLON)
		p.expectPeek(token.TYPEID)
		branch.TypeName, branch.TypeToken = p.curToken.Lexeme, p.curToken
		p.expectPeek(token.DARROW)
		p.nextToken()
		branch.Body = p.parseExpression(LOWEST)
		p.expectPeek(token.SEMICOLON)
		expr.Branches = append(expr.Branches, branch)
		if p.peekTokenIs(token.ESAC) {
			p.nextToken()
			return expr
		}
	}
}

func (p *Parser) parseNewExpression() ast.Expression {
	expr := &ast.New{Token: p.curToken}
	p.expectPeek(token.TYPEID)
	expr.TypeName, expr.TypeToken = p.curToken.Lexeme, p.curToken
	return expr
}

func (p *Parser) parseIsVoid() ast.Expression {
	expr := &ast.IsVoid{Token: p.curToken}
	p.nextToken()
	expr.Expr = p.parseExpression(ISVOID)
	return expr
}

func (p *Parser) parseNot() ast.Expression {
	expr := &ast.Not{Token: p.curToken}
	p.nextToken()
	expr.Expr = p.parseExpression(NOT)
	return expr
}

func (p *Parser) parseNegate() ast.Expression {
	expr := &ast.Negate{Token: p.curToken}
	p.nextToken()
	expr.Expr = p.parseExpression(NEGATE)
	return expr
}
