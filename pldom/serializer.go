package pldom

import (
	"strings"

	"github.com/dekarrin/simplegrammar/plsql"
	"github.com/dekarrin/simplegrammar/tree"
)

type tokenClass int

const (
	classOther tokenClass = iota
	classWord
	classLiteral
	classOperator
	classOpen
	classClose
)

func classify(name string) tokenClass {
	switch name {
	case plsql.Identifier, plsql.QuotedIdentifier:
		return classWord
	case plsql.StringLiteral, plsql.NumberLiteral:
		return classLiteral
	case plsql.ArithmeticOperator, plsql.ConcatenationOperator, plsql.LogicalOperator:
		return classOperator
	case plsql.LeftBracket:
		return classOpen
	case plsql.RightBracket:
		return classClose
	default:
		return classOther
	}
}

// spaceBetween returns whether a space must be written between adjacent
// tokens with the given names.
func spaceBetween(prev, next string) bool {
	p, n := classify(prev), classify(next)

	switch {
	case p == classWord && n == classWord:
		// two quoted identifiers are already delimited
		return !(prev == plsql.QuotedIdentifier && next == plsql.QuotedIdentifier)
	case p == classOperator:
		return n == classWord || n == classLiteral || n == classOpen
	case n == classOperator:
		return p == classWord || p == classLiteral || p == classClose
	}
	return false
}

// SerializeTokens writes the tokens held by the children of n back out as
// PL/SQL text. Each child is a node labelled with a token name whose single
// child is the token value. Spaces are put only between tokens that need
// one, and quoted identifiers and string literals get their quotes back.
func SerializeTokens(n *tree.Node) string {
	var sb strings.Builder

	var prev string
	for i, c := range n.Children {
		name := c.Label
		value := c.ChildValue(0)

		if i > 0 && spaceBetween(prev, name) {
			sb.WriteRune(' ')
		}

		switch name {
		case plsql.QuotedIdentifier:
			sb.WriteRune('"')
			sb.WriteString(value)
			sb.WriteRune('"')
		case plsql.StringLiteral:
			sb.WriteRune('\'')
			sb.WriteString(strings.ReplaceAll(value, "'", "''"))
			sb.WriteRune('\'')
		default:
			sb.WriteString(value)
		}

		prev = name
	}

	return sb.String()
}
