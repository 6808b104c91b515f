package parser

import (
	"github.com/funvibe/autotype/internal/ast"
	"github.com/funvibe/autotype/internal/token"
)

// parseClass parses `class T [inherits P] { feature; ... };` with
// curToken on `class`. It returns with curToken on the closing `;`.
func (p *Parser) parseClass() *ast.ClassDecl {
	if !p.curTokenIs(token.CLASS) {
		p.fail(p.curToken, "expected \"class\", got "+describeToken(p.curToken))
	}
	p.expectPeek(token.TYPEID)
	class := &ast.ClassDecl{Token: p.curToken, Name: p.curToken.Lexeme}

	if p.peekTokenIs(token.INHERITS) {
		p.nextToken()
		p.expectPeek(token.TYPEID)
		class.Parent = p.curToken.Lexeme
		class.ParentToken = p.curToken
	}

	p.expectPeek(token.LBRACE)
	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		class.Features = append(class.Features, p.parseFeature())
		p.expectPeek(token.SEMICOLON)
	}
	p.nextToken() // }
	p.expectPeek(token.SEMICOLON)
	return class
}

// parseFeature parses an attribute or a method with curToken on its name.
func (p *Parser) parseFeature() ast.Feature {
	if !p.curTokenIs(token.OBJECTID) {
		p.fail(p.curToken, "expected a feature name, got "+describeToken(p.curToken))
	}
	name := p.curToken

	if p.peekTokenIs(token.LPAREN) {
		return p.parseMethod(name)
	}

	attr := &ast.AttrDecl{Token: name, Name: name.Lexeme}
	p.expectPeek(token.COLON)
	p.expectPeek(token.TYPEID)
	attr.TypeName, attr.TypeToken = p.curToken.Lexeme, p.curToken
	if p.peekTokenIs(token.ASSIGN) {
		p.nextToken()
		p.nextToken()
		attr.Init = p.parseExpression(LOWEST)
	}
	return attr
}

func (p *Parser) parseMethod(name token.Token) *ast.MethodDecl {
	method := &ast.MethodDecl{Token: name, Name: name.Lexeme}
	p.nextToken() // (
	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		method.Params = append(method.Params, p.parseParam())
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			method.Params = append(method.Params, p.parseParam())
		}
	}
	p.expectPeek(token.RPAREN)
	p.expectPeek(token.COLON)
	p.expectPeek(token.TYPEID)
	method.ReturnType, method.ReturnToken = p.curToken.Lexeme, p.curToken

	p.expectPeek(token.LBRACE)
	p.nextToken()
	method.Body = p.parseExpression(LOWEST)
	p.expectPeek(token.RBRACE)
	return method
}

func (p *Parser) parseParam() *ast.Param {
	if !p.curTokenIs(token.OBJECTID) {
		p.fail(p.curToken, "expected a parameter name, got "+describeToken(p.curToken))
	}
	param := &ast.Param{Token: p.curToken, Name: p.curToken.Lexeme}
	p.expectPeek(token.COLON)
	p.expectPeek(token.TYPEID)
	param.TypeName, param.TypeToken = p.curToken.Lexeme, p.curToken
	return param
}
