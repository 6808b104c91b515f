package token

import "strings"

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers and literals
	TYPEID   TokenType = "TYPEID"   // Object, Main, SELF_TYPE
	OBJECTID TokenType = "OBJECTID" // self, x, main
	INT      TokenType = "INT"
	STRING   TokenType = "STRING"

	// Operators
	ASSIGN   TokenType = "<-"
	DARROW   TokenType = "=>"
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	TILDE    TokenType = "~"
	LT       TokenType = "<"
	LE       TokenType = "<="
	EQ       TokenType = "="
	AT       TokenType = "@"
	DOT      TokenType = "."

	// Delimiters
	COMMA     TokenType = ","
	COLON     TokenType = ":"
	SEMICOLON TokenType = ";"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"

	// Keywords
	CLASS    TokenType = "CLASS"
	INHERITS TokenType = "INHERITS"
	IF       TokenType = "IF"
	THEN     TokenType = "THEN"
	ELSE     TokenType = "ELSE"
	FI       TokenType = "FI"
	WHILE    TokenType = "WHILE"
	LOOP     TokenType = "LOOP"
	POOL     TokenType = "POOL"
	LET      TokenType = "LET"
	IN       TokenType = "IN"
	CASE     TokenType = "CASE"
	OF       TokenType = "OF"
	ESAC     TokenType = "ESAC"
	NEW      TokenType = "NEW"
	ISVOID   TokenType = "ISVOID"
	NOT      TokenType = "NOT"
	TRUE     TokenType = "TRUE"
	FALSE    TokenType = "FALSE"
)

// Keywords are case-insensitive, except true and false which must start
// with a lowercase letter.
var keywords = map[string]TokenType{
	"class":    CLASS,
	"inherits": INHERITS,
	"if":       IF,
	"then":     THEN,
	"else":     ELSE,
	"fi":       FI,
	"while":    WHILE,
	"loop":     LOOP,
	"pool":     POOL,
	"let":      LET,
	"in":       IN,
	"case":     CASE,
	"of":       OF,
	"esac":     ESAC,
	"new":      NEW,
	"isvoid":   ISVOID,
	"not":      NOT,
}

// LookupIdent classifies an identifier as a keyword, a boolean literal, a
// type identifier or an object identifier.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	if ident[0] == 't' && strings.EqualFold(ident, "true") {
		return TRUE
	}
	if ident[0] == 'f' && strings.EqualFold(ident, "false") {
		return FALSE
	}
	if 'A' <= ident[0] && ident[0] <= 'Z' {
		return TYPEID
	}
	return OBJECTID
}
