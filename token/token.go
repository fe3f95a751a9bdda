// Package token contains the token model consumed by grammars along with the
// lookahead contract that token sources must satisfy.
package token

import (
	"fmt"
	"strings"
)

// Token is a single lexeme produced by a lexer. Name is the kind of the token
// and Value is the (optional) text associated with it. Tokens are immutable
// values once created.
type Token struct {
	Name     string
	Value    string
	HasValue bool

	// Line and Column give the 1-indexed position of the token in its source.
	// Zero means the position is unknown.
	Line   int
	Column int

	end bool
}

// New creates a new Token with the given name and value.
func New(name, value string) Token {
	return Token{Name: name, Value: value, HasValue: true}
}

// Named creates a new Token with the given name and no value.
func Named(name string) Token {
	return Token{Name: name}
}

// At returns a copy of t positioned at the given line and column.
func (t Token) At(line, col int) Token {
	t.Line = line
	t.Column = col
	return t
}

// End returns the end-of-stream sentinel. It is never equal to a token
// produced by a lexer, not even one with an empty name.
func End() Token {
	return Token{end: true}
}

// IsEnd returns whether t is the end-of-stream sentinel.
func (t Token) IsEnd() bool {
	return t.end
}

// HasPosition returns whether the token knows where it occurred.
func (t Token) HasPosition() bool {
	return t.Line > 0
}

// String gives a human-readable rendering of the token, suitable for use in
// error messages.
func (t Token) String() string {
	if t.end {
		return "end of input"
	}

	var sb strings.Builder
	sb.WriteString(t.Name)
	if t.HasValue {
		sb.WriteString(fmt.Sprintf(" %q", t.Value))
	}
	if t.HasPosition() {
		sb.WriteString(fmt.Sprintf(" at line %d, position %d", t.Line, t.Column))
	}
	return sb.String()
}

// Short renders the token the way it appears in parse traces: NAME:VALUE, or
// just NAME if it has no value.
func (t Token) Short() string {
	if t.end {
		return "$"
	}
	if !t.HasValue {
		return t.Name
	}
	return t.Name + ":" + t.Value
}

// Equal returns whether t and o have the same name, value, and end-ness.
// Position is not considered.
func (t Token) Equal(o Token) bool {
	return t.end == o.end && t.Name == o.Name && t.HasValue == o.HasValue && t.Value == o.Value
}
