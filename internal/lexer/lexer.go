package lexer

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/autotype/internal/token"
)

// MaxStringLength is the longest string constant accepted.
const MaxStringLength = 1024

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

// NextToken returns the next token. Lexical errors come back as ILLEGAL
// tokens whose Literal is the message.
func (l *Lexer) NextToken() token.Token {
	if bad, ok := l.skipWhitespace(); !ok {
		return bad
	}

	line, col := l.line, l.column
	tok := func(t token.TokenType, lexeme string) token.Token {
		return token.Token{Type: t, Lexeme: lexeme, Literal: lexeme, Line: line, Column: col}
	}

	if l.atEOF() {
		return token.Token{Type: token.EOF, Line: line, Column: col}
	}

	var out token.Token
	switch l.ch {
	case '<':
		switch l.peekChar() {
		case '-':
			l.readChar()
			out = tok(token.ASSIGN, "<-")
		case '=':
			l.readChar()
			out = tok(token.LE, "<=")
		default:
			out = tok(token.LT, "<")
		}
	case '=':
		if l.peekChar() == '>' {
			l.readChar()
			out = tok(token.DARROW, "=>")
		} else {
			out = tok(token.EQ, "=")
		}
	case '*':
		if l.peekChar() == ')' {
			l.readChar()
			l.readChar()
			return illegal("*)", "Unmatched *)", line, col)
		}
		out = tok(token.ASTERISK, "*")
	case '+':
		out = tok(token.PLUS, "+")
	case '-':
		out = tok(token.MINUS, "-")
	case '/':
		out = tok(token.SLASH, "/")
	case '~':
		out = tok(token.TILDE, "~")
	case '@':
		out = tok(token.AT, "@")
	case '.':
		out = tok(token.DOT, ".")
	case ',':
		out = tok(token.COMMA, ",")
	case ':':
		out = tok(token.COLON, ":")
	case ';':
		out = tok(token.SEMICOLON, ";")
	case '(':
		out = tok(token.LPAREN, "(")
	case ')':
		out = tok(token.RPAREN, ")")
	case '{':
		out = tok(token.LBRACE, "{")
	case '}':
		out = tok(token.RBRACE, "}")
	case '"':
		return l.readString(line, col)
	default:
		switch {
		case isLetter(l.ch) && l.ch != '_':
			ident := l.readIdentifier()
			t := token.LookupIdent(ident)
			out = token.Token{Type: t, Lexeme: ident, Literal: ident, Line: line, Column: col}
			switch t {
			case token.TRUE:
				out.Literal = true
			case token.FALSE:
				out.Literal = false
			}
			return out
		case isDigit(l.ch):
			return l.readNumber(line, col)
		}
		ch := string(l.ch)
		l.readChar()
		return illegal(ch, "Invalid character "+strconv.Quote(ch), line, col)
	}
	l.readChar()
	return out
}

func illegal(lexeme, msg string, line, col int) token.Token {
	return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: msg, Line: line, Column: col}
}

// readString reads a string constant starting at the opening quote.
// Escapes \b \t \n \f stand for the control characters, any other \c for
// c itself.
func (l *Lexer) readString(line, col int) token.Token {
	start := l.position
	var sb strings.Builder
	l.readChar() // opening quote
	for {
		switch {
		case l.atEOF():
			return illegal(l.input[start:], "EOF in string constant", line, col)
		case l.ch == '"':
			l.readChar()
			lexeme := l.input[start:l.position]
			if sb.Len() > MaxStringLength {
				return illegal(lexeme, "String constant too long", line, col)
			}
			return token.Token{Type: token.STRING, Lexeme: lexeme, Literal: sb.String(), Line: line, Column: col}
		case l.ch == '\n':
			lexeme := l.input[start:l.position]
			l.readChar()
			return illegal(lexeme, "Unterminated string constant", line, col)
		case l.ch == 0:
			l.skipString()
			return illegal(l.input[start:l.position], "String contains null character", line, col)
		case l.ch == '\\':
			l.readChar()
			switch l.ch {
			case 'b':
				sb.WriteByte('\b')
			case 't':
				sb.WriteByte('\t')
			case 'n':
				sb.WriteByte('\n')
			case 'f':
				sb.WriteByte('\f')
			case 0:
				if l.atEOF() {
					continue
				}
				l.skipString()
				return illegal(l.input[start:l.position], "String contains escaped null character", line, col)
			default:
				sb.WriteRune(l.ch)
			}
			l.readChar()
		default:
			sb.WriteRune(l.ch)
			l.readChar()
		}
	}
}

// skipString moves past the rest of a bad string so lexing resumes after it.
func (l *Lexer) skipString() {
	for !l.atEOF() && l.ch != '"' && l.ch != '\n' {
		if l.ch == '\\' {
			l.readChar()
		}
		l.readChar()
	}
	if l.ch == '"' {
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber(line, col int) token.Token {
	position := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	lexeme := l.input[position:l.position]
	val, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return illegal(lexeme, "Integer constant out of range", line, col)
	}
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: val, Line: line, Column: col}
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

// skipWhitespace skips blanks, `--` line comments and nested `(* *)`
// comments. An unterminated comment is returned as an ILLEGAL token.
func (l *Lexer) skipWhitespace() (token.Token, bool) {
	for {
		for !l.atEOF() && strings.ContainsRune(" \t\r\n\f\v", l.ch) {
			l.readChar()
		}
		switch {
		case l.ch == '-' && l.peekChar() == '-':
			for !l.atEOF() && l.ch != '\n' {
				l.readChar()
			}
		case l.ch == '(' && l.peekChar() == '*':
			line, col := l.line, l.column
			l.readChar() // (
			l.readChar() // *
			depth := 1
			for depth > 0 {
				switch {
				case l.atEOF():
					return illegal("(*", "EOF in comment", line, col), false
				case l.ch == '(' && l.peekChar() == '*':
					l.readChar()
					depth++
				case l.ch == '*' && l.peekChar() == ')':
					l.readChar()
					depth--
				}
				l.readChar()
			}
		default:
			return token.Token{}, true
		}
	}
}
