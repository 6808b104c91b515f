package ast

import (
	"github.com/funvibe/autotype/internal/symbols"
	"github.com/funvibe/autotype/internal/token"
	"github.com/funvibe/autotype/internal/typesystem"
)

// Block is `{ e1; e2; ... }`; its value is the last expression.
type Block struct {
	annotated
	Token token.Token // {
	Exprs []Expression
}

func (b *Block) expressionNode()       {}
func (b *Block) TokenLiteral() string  { return b.Token.Lexeme }
func (b *Block) GetToken() token.Token { return b.Token }

type If struct {
	annotated
	Token     token.Token // if
	Condition Expression
	Then      Expression
	Else      Expression
}

func (ie *If) expressionNode()       {}
func (ie *If) TokenLiteral() string  { return ie.Token.Lexeme }
func (ie *If) GetToken() token.Token { return ie.Token }

// While always has type Object.
type While struct {
	annotated
	Token     token.Token // while
	Condition Expression
	Body      Expression
}

func (we *While) expressionNode()       {}
func (we *While) TokenLiteral() string  { return we.Token.Lexeme }
func (we *While) GetToken() token.Token { return we.Token }

// Let opens one scope holding all of its variables.
type Let struct {
	annotated
	Token token.Token // let
	Vars  []*VarDecl
	Body  Expression

	ScopePath []int
}

func (le *Let) expressionNode()       {}
func (le *Let) TokenLiteral() string  { return le.Token.Lexeme }
func (le *Let) GetToken() token.Token { return le.Token }

type Case struct {
	annotated
	Token     token.Token // case
	Scrutinee Expression
	Branches  []*CaseBranch
}

func (ce *Case) expressionNode()       {}
func (ce *Case) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *Case) GetToken() token.Token { return ce.Token }

type IsVoid struct {
	annotated
	Token token.Token
	Expr  Expression
}

func (iv *IsVoid) expressionNode()       {}
func (iv *IsVoid) TokenLiteral() string  { return iv.Token.Lexeme }
func (iv *IsVoid) GetToken() token.Token { return iv.Token }

// Not is boolean negation.
type Not struct {
	annotated
	Token token.Token
	Expr  Expression
}

func (ne *Not) expressionNode()       {}
func (ne *Not) TokenLiteral() string  { return ne.Token.Lexeme }
func (ne *Not) GetToken() token.Token { return ne.Token }

// Negate is integer complement, written `~e`.
type Negate struct {
	annotated
	Token token.Token
	Expr  Expression
}

func (ne *Negate) expressionNode()       {}
func (ne *Negate) TokenLiteral() string  { return ne.Token.Lexeme }
func (ne *Negate) GetToken() token.Token { return ne.Token }

// Assign is `name <- value`.
type Assign struct {
	annotated
	Token token.Token // the name
	Name  string
	Value Expression

	Symbol *symbols.Symbol
}

func (ae *Assign) expressionNode()       {}
func (ae *Assign) TokenLiteral() string  { return ae.Token.Lexeme }
func (ae *Assign) GetToken() token.Token { return ae.Token }

// Call is `recv.m(args)`, `recv@T.m(args)` or `m(args)`. Receiver is nil
// for the last form, which dispatches on self.
type Call struct {
	annotated
	Token       token.Token // the method name
	Receiver    Expression
	StaticType  string // empty unless @T is given
	StaticToken token.Token
	Method      string
	Args        []Expression

	// Targets are the definitions the call may reach, found while
	// gathering.
	Targets []typesystem.MethodMatch
}

func (ce *Call) expressionNode()       {}
func (ce *Call) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *Call) GetToken() token.Token { return ce.Token }

// Arithmetic is one of + - * / over Int.
type Arithmetic struct {
	annotated
	Token token.Token // the operator
	Op    string
	Left  Expression
	Right Expression
}

func (ae *Arithmetic) expressionNode()       {}
func (ae *Arithmetic) TokenLiteral() string  { return ae.Token.Lexeme }
func (ae *Arithmetic) GetToken() token.Token { return ae.Token }

// Comparison is one of < <= =.
type Comparison struct {
	annotated
	Token token.Token
	Op    string
	Left  Expression
	Right Expression
}

func (ce *Comparison) expressionNode()       {}
func (ce *Comparison) TokenLiteral() string  { return ce.Token.Lexeme }
func (ce *Comparison) GetToken() token.Token { return ce.Token }

type IntLit struct {
	annotated
	Token token.Token
	Value int64
}

func (il *IntLit) expressionNode()       {}
func (il *IntLit) TokenLiteral() string  { return il.Token.Lexeme }
func (il *IntLit) GetToken() token.Token { return il.Token }

type StringLit struct {
	annotated
	Token token.Token
	Value string
}

func (sl *StringLit) expressionNode()       {}
func (sl *StringLit) TokenLiteral() string  { return sl.Token.Lexeme }
func (sl *StringLit) GetToken() token.Token { return sl.Token }

type BoolLit struct {
	annotated
	Token token.Token
	Value bool
}

func (bl *BoolLit) expressionNode()       {}
func (bl *BoolLit) TokenLiteral() string  { return bl.Token.Lexeme }
func (bl *BoolLit) GetToken() token.Token { return bl.Token }

// New is `new T`; T may be SELF_TYPE.
type New struct {
	annotated
	Token     token.Token // new
	TypeName  string
	TypeToken token.Token
}

func (ne *New) expressionNode()       {}
func (ne *New) TokenLiteral() string  { return ne.Token.Lexeme }
func (ne *New) GetToken() token.Token { return ne.Token }

// Identifier is a variable reference, `self` included.
type Identifier struct {
	annotated
	Token token.Token
	Name  string

	Symbol *symbols.Symbol
}

func (id *Identifier) expressionNode()       {}
func (id *Identifier) TokenLiteral() string  { return id.Token.Lexeme }
func (id *Identifier) GetToken() token.Token { return id.Token }
