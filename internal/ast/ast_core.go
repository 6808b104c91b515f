package ast

import (
	"github.com/funvibe/autotype/internal/symbols"
	"github.com/funvibe/autotype/internal/token"
	"github.com/funvibe/autotype/internal/typesystem"
)

// Node is the base interface for all AST nodes. The set of nodes is closed;
// Walk dispatches over it.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
	Annotation() *Annotation
}

// Expression is a Node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Feature is a class member: an attribute or a method.
type Feature interface {
	Node
	featureNode()
	FeatureName() string
}

// Annotation holds what each pass learned about a node. Inferred is
// written while gathering and narrowed by inference, Computed is the
// linked candidate list, Resolved the single final type.
type Annotation struct {
	Inferred typesystem.Type
	Computed *typesystem.Candidates
	Resolved typesystem.Type
}

type annotated struct {
	ann Annotation
}

func (a *annotated) Annotation() *Annotation { return &a.ann }

// Program is the root node.
type Program struct {
	annotated
	File    string
	Classes []*ClassDecl
}

func (p *Program) TokenLiteral() string {
	if len(p.Classes) > 0 {
		return p.Classes[0].TokenLiteral()
	}
	return ""
}
func (p *Program) GetToken() token.Token {
	if len(p.Classes) > 0 {
		return p.Classes[0].Token
	}
	return token.Token{}
}

// ClassDecl is `class Name [inherits Parent] { features };`.
type ClassDecl struct {
	annotated
	Token       token.Token // the class name
	Name        string
	Parent      string // empty when no inherits clause
	ParentToken token.Token
	Features    []Feature

	ID        typesystem.TypeID
	ScopePath []int
}

func (cd *ClassDecl) TokenLiteral() string  { return cd.Token.Lexeme }
func (cd *ClassDecl) GetToken() token.Token { return cd.Token }

// AttrDecl is `name : Type [<- init]`.
type AttrDecl struct {
	annotated
	Token     token.Token // the attribute name
	Name      string
	TypeName  string
	TypeToken token.Token
	Init      Expression // optional

	Symbol *symbols.Symbol
}

func (ad *AttrDecl) featureNode()          {}
func (ad *AttrDecl) FeatureName() string   { return ad.Name }
func (ad *AttrDecl) TokenLiteral() string  { return ad.Token.Lexeme }
func (ad *AttrDecl) GetToken() token.Token { return ad.Token }

// MethodDecl is `name(params) : Type { body }`. Its annotation describes
// the declared return type.
type MethodDecl struct {
	annotated
	Token       token.Token // the method name
	Name        string
	Params      []*Param
	ReturnType  string
	ReturnToken token.Token
	Body        Expression

	Method    *typesystem.Method
	ScopePath []int
}

func (md *MethodDecl) featureNode()          {}
func (md *MethodDecl) FeatureName() string   { return md.Name }
func (md *MethodDecl) TokenLiteral() string  { return md.Token.Lexeme }
func (md *MethodDecl) GetToken() token.Token { return md.Token }

// Param is one formal parameter.
type Param struct {
	annotated
	Token     token.Token
	Name      string
	TypeName  string
	TypeToken token.Token

	Symbol *symbols.Symbol
}

func (p *Param) TokenLiteral() string  { return p.Token.Lexeme }
func (p *Param) GetToken() token.Token { return p.Token }

// VarDecl is one `name : Type [<- init]` of a let.
type VarDecl struct {
	annotated
	Token     token.Token
	Name      string
	TypeName  string
	TypeToken token.Token
	Init      Expression // optional

	Symbol *symbols.Symbol
}

func (vd *VarDecl) TokenLiteral() string  { return vd.Token.Lexeme }
func (vd *VarDecl) GetToken() token.Token { return vd.Token }

// CaseBranch is `name : Type => body;`. Its annotation describes the
// declared branch type; the body carries its own.
type CaseBranch struct {
	annotated
	Token     token.Token
	Name      string
	TypeName  string
	TypeToken token.Token
	Body      Expression

	Symbol    *symbols.Symbol
	ScopePath []int
}

func (cb *CaseBranch) TokenLiteral() string  { return cb.Token.Lexeme }
func (cb *CaseBranch) GetToken() token.Token { return cb.Token }
