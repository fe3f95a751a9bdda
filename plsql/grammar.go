package plsql

import (
	_ "embed"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dekarrin/simplegrammar/grammar"
	"github.com/dekarrin/simplegrammar/tree"
)

//go:embed plsql.grm
var grammarText string

var (
	loadOnce   sync.Once
	packageG   *grammar.Grammar
	packageErr error
)

// GrammarText returns the text of the PL/SQL package specification grammar.
func GrammarText() string {
	return grammarText
}

// Grammar returns the validated grammar for PL/SQL package specifications. It
// is loaded the first time it is requested and shared after that; since a
// validated grammar cannot be modified, callers may use it concurrently.
func Grammar() (*grammar.Grammar, error) {
	loadOnce.Do(func() {
		packageG, packageErr = grammar.LoadString(grammarText)
		if packageErr != nil {
			packageErr = fmt.Errorf("load PL/SQL grammar: %w", packageErr)
		}
	})
	return packageG, packageErr
}

// ParsePackage lexes the package specification read from r with the default
// lexer configuration and parses it into a syntax tree whose root is labelled
// PACKAGE.
func ParsePackage(r io.Reader) (*tree.Node, error) {
	g, err := Grammar()
	if err != nil {
		return nil, err
	}

	src, err := NewLexer(DefaultConfig()).Source(r)
	if err != nil {
		return nil, err
	}

	return g.Parse(src)
}

// ParsePackageString is like ParsePackage but reads from a string.
func ParsePackageString(s string) (*tree.Node, error) {
	return ParsePackage(strings.NewReader(s))
}
