package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/simplegrammar/token"
)

// Match is how specifically a TokenMatcher accepts a token. Matches are
// totally ordered; a greater Match is a more specific one.
type Match int

const (
	MatchNone Match = iota
	MatchAny
	MatchName
	MatchValue
)

func (m Match) String() string {
	switch m {
	case MatchNone:
		return "NONE"
	case MatchAny:
		return "ANY"
	case MatchName:
		return "NAME"
	case MatchValue:
		return "VALUE"
	default:
		return fmt.Sprintf("Match(%d)", int(m))
	}
}

// Element is one item in the right-hand side of an Option. It is exactly one
// of TokenMatcher, RuleRef, or Empty.
type Element interface {
	isElement()

	// String gives the element as it would be written in grammar text.
	String() string
}

// TokenMatcher is an element that consumes exactly one token. An empty Name
// accepts a token with any name; Value is checked whenever HasValue is set,
// with or without a Name.
type TokenMatcher struct {
	Name     string
	Value    string
	HasValue bool

	// EmitName makes the parse add a node labelled with the token's name.
	EmitName bool

	// EmitValue makes the parse add a leaf labelled with the token's value.
	// If EmitName is also set the leaf goes under the name node.
	EmitValue bool
}

// Any returns a TokenMatcher that accepts any token.
func Any() TokenMatcher {
	return TokenMatcher{}
}

// Named returns a TokenMatcher that accepts any token with the given name.
func Named(name string) TokenMatcher {
	return TokenMatcher{Name: name}
}

// Valued returns a TokenMatcher that accepts a token with the given name and
// value.
func Valued(name, value string) TokenMatcher {
	return TokenMatcher{Name: name, Value: value, HasValue: true}
}

// WithName returns a copy of tm that emits the name of the matched token.
func (tm TokenMatcher) WithName() TokenMatcher {
	tm.EmitName = true
	return tm
}

// WithValue returns a copy of tm that emits the value of the matched token.
func (tm TokenMatcher) WithValue() TokenMatcher {
	tm.EmitValue = true
	return tm
}

// Match returns how specifically tm accepts t. The end-of-stream sentinel is
// never accepted. A matcher with a value but no name accepts a token of any
// name carrying that value, as a MatchValue.
func (tm TokenMatcher) Match(t token.Token) Match {
	if t.IsEnd() {
		return MatchNone
	}
	if tm.Name != "" && tm.Name != t.Name {
		return MatchNone
	}
	if !tm.HasValue {
		if tm.Name == "" {
			return MatchAny
		}
		return MatchName
	}
	if t.HasValue && tm.Value == t.Value {
		return MatchValue
	}
	return MatchNone
}

func (tm TokenMatcher) String() string {
	var sb strings.Builder
	sb.WriteRune('{')
	sb.WriteString(tm.Name)
	if tm.EmitName {
		sb.WriteRune('+')
	}
	if tm.HasValue || tm.EmitValue {
		sb.WriteString(", ")
		if tm.HasValue {
			sb.WriteString(quoteValue(tm.Value))
		}
		if tm.EmitValue {
			sb.WriteRune('+')
		}
	}
	sb.WriteRune('}')
	return sb.String()
}

// trace format is NAME:VALUE
func (tm TokenMatcher) traceString() string {
	if tm.HasValue {
		return tm.Name + ":" + tm.Value
	}
	if tm.Name == "" {
		return "*"
	}
	return tm.Name
}

func quoteValue(v string) string {
	var sb strings.Builder
	sb.WriteRune('"')
	for _, ch := range v {
		if ch == '"' || ch == '\\' {
			sb.WriteRune('\\')
		}
		sb.WriteRune(ch)
	}
	sb.WriteRune('"')
	return sb.String()
}

// Override controls whether expanding a RuleRef adds a node for the rule.
type Override int

const (
	// Inherit uses the emit flag of the option chosen for the rule.
	Inherit Override = iota

	// Force always adds a node for the rule.
	Force

	// Suppress never adds a node for the rule; the children of the chosen
	// option go directly under the current node instead.
	Suppress
)

// RuleRef is an element that refers to a rule by name.
type RuleRef struct {
	Name     string
	Override Override
}

// emits reports whether expanding r into opt adds a node.
func (r RuleRef) emits(opt *Option) bool {
	switch r.Override {
	case Force:
		return true
	case Suppress:
		return false
	default:
		return opt.Emit
	}
}

func (r RuleRef) String() string {
	switch r.Override {
	case Force:
		return r.Name + "+"
	case Suppress:
		return r.Name + "-"
	default:
		return r.Name
	}
}

// Empty is an element that matches nothing and consumes nothing.
type Empty struct{}

func (Empty) String() string {
	return "^"
}

func (TokenMatcher) isElement() {}
func (RuleRef) isElement()      {}
func (Empty) isElement()        {}

func traceElement(e Element) string {
	switch el := e.(type) {
	case TokenMatcher:
		return el.traceString()
	case RuleRef:
		return "{" + el.Name + "}"
	case Empty:
		return "^"
	default:
		panic(fmt.Sprintf("unknown element type %T", e))
	}
}
