package diagnostics

import (
	"fmt"
	"strings"

	"github.com/funvibe/autotype/internal/token"
)

type ErrorCode string

// Parse errors
const (
	ErrP001 ErrorCode = "P001" // lexical error
	ErrP002 ErrorCode = "P002" // syntax error
)

// Class collection errors
const (
	ErrC001 ErrorCode = "C001" // class defined twice
	ErrC002 ErrorCode = "C002" // class name must start with an uppercase letter
	ErrC003 ErrorCode = "C003" // inheriting from a sealed class
	ErrC004 ErrorCode = "C004" // unknown parent class
	ErrC005 ErrorCode = "C005" // circular inheritance
	ErrC006 ErrorCode = "C006" // redefinition of a basic class
)

// Hierarchy building errors
const (
	ErrB001 ErrorCode = "B001" // unknown type
	ErrB002 ErrorCode = "B002" // attribute redefined
	ErrB003 ErrorCode = "B003" // method defined twice in one class
	ErrB004 ErrorCode = "B004" // override does not match the inherited signature
	ErrB005 ErrorCode = "B005" // feature name must start with a lowercase letter
	ErrB006 ErrorCode = "B006" // missing Main class or main method
	ErrB007 ErrorCode = "B007" // SELF_TYPE where it is not allowed
	ErrB008 ErrorCode = "B008" // formal parameter declared twice
)

// Inference errors
const (
	ErrI001 ErrorCode = "I001" // local already defined in this scope
	ErrI002 ErrorCode = "I002" // method not defined for a concrete receiver
	ErrI003 ErrorCode = "I003" // method found in several unrelated types
	ErrI004 ErrorCode = "I004" // no method with that name and arity
)

// Linking errors
const (
	ErrL001 ErrorCode = "L001" // expression does not conform to the declared type
	ErrL002 ErrorCode = "L002" // variable not defined
	ErrL003 ErrorCode = "L003" // self is read-only
	ErrL004 ErrorCode = "L004" // predicate is not Bool
	ErrL005 ErrorCode = "L005" // operand is not Int
	ErrL006 ErrorCode = "L006" // argument does not conform to the parameter
	ErrL007 ErrorCode = "L007" // wrong number of arguments
	ErrL008 ErrorCode = "L008" // duplicate case branch type
	ErrL009 ErrorCode = "L009" // no case branch covers the scrutinee
	ErrL010 ErrorCode = "L010" // linked placeholders cannot be narrowed consistently
	ErrL011 ErrorCode = "L011" // linked placeholders are never pinned
	ErrL012 ErrorCode = "L012" // receiver does not conform to the static dispatch type
	ErrL013 ErrorCode = "L013" // identifier must start with a lowercase letter
	ErrL014 ErrorCode = "L014" // unknown type
)

// Internal errors
const (
	ErrF001 ErrorCode = "F001" // internal invariant violated
)

// Phase is the pass that produced a diagnostic. Reports are ordered by it.
type Phase int

const (
	PhaseParse Phase = iota
	PhaseCollection
	PhaseHierarchy
	PhaseInference
	PhaseLinking
	PhaseFinishing
)

func (p Phase) String() string {
	switch p {
	case PhaseParse:
		return "parse"
	case PhaseCollection:
		return "collection"
	case PhaseHierarchy:
		return "hierarchy"
	case PhaseInference:
		return "inference"
	case PhaseLinking:
		return "linking"
	case PhaseFinishing:
		return "finishing"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Phase derives the originating pass from the code prefix.
func (c ErrorCode) Phase() Phase {
	if c == "" {
		return PhaseParse
	}
	switch c[0] {
	case 'C':
		return PhaseCollection
	case 'B':
		return PhaseHierarchy
	case 'I':
		return PhaseInference
	case 'L':
		return PhaseLinking
	case 'F':
		return PhaseFinishing
	}
	return PhaseParse
}

// DiagnosticError is a single reported problem. Class, Method and Attribute
// locate it inside the program when the token alone is not enough.
type DiagnosticError struct {
	Code      ErrorCode
	Token     token.Token
	File      string
	Class     string
	Method    string
	Attribute string
	Message   string
}

func NewError(code ErrorCode, tok token.Token, msg string) *DiagnosticError {
	return &DiagnosticError{Code: code, Token: tok, Message: msg}
}

// In attaches the enclosing class and feature to the error.
func (e *DiagnosticError) In(class, method, attribute string) *DiagnosticError {
	e.Class = class
	e.Method = method
	e.Attribute = attribute
	return e
}

func (e *DiagnosticError) Phase() Phase {
	return e.Code.Phase()
}

// Location renders the class/feature prefix, e.g.
// `In class "Main", in method "main". `.
func (e *DiagnosticError) Location() string {
	if e.Class == "" {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "In class %q", e.Class)
	switch {
	case e.Method != "":
		fmt.Fprintf(&sb, ", in method %q", e.Method)
	case e.Attribute != "":
		fmt.Fprintf(&sb, ", in attribute %q", e.Attribute)
	}
	sb.WriteString(". ")
	return sb.String()
}

// Position renders file:line:col, omitting unknown parts.
func (e *DiagnosticError) Position() string {
	var parts []string
	if e.File != "" {
		parts = append(parts, e.File)
	}
	if e.Token.Line > 0 {
		parts = append(parts, fmt.Sprintf("%d:%d", e.Token.Line, e.Token.Column))
	}
	return strings.Join(parts, ":")
}

func (e *DiagnosticError) Error() string {
	msg := fmt.Sprintf("[%s] %s%s", e.Code, e.Location(), e.Message)
	if pos := e.Position(); pos != "" {
		return pos + ": " + msg
	}
	return msg
}
