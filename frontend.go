package simplegrammar

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/dekarrin/simplegrammar/grammar"
	"github.com/dekarrin/simplegrammar/internal/config"
	"github.com/dekarrin/simplegrammar/patlex"
	"github.com/dekarrin/simplegrammar/pldom"
	"github.com/dekarrin/simplegrammar/plsql"
	"github.com/dekarrin/simplegrammar/token"
	"github.com/dekarrin/simplegrammar/tree"
)

// LexFunc turns source text into tokens.
type LexFunc func(src string) ([]token.Token, error)

// Frontend is a grammar together with the lexer that produces the tokens it
// parses.
type Frontend struct {
	Grammar *grammar.Grammar
	Lex     LexFunc

	// PLSQL is whether this is the built-in PL/SQL package frontend. Only its
	// trees can be built into pldom packages.
	PLSQL bool
}

// PLSQLFrontend returns the frontend for PL/SQL package specifications.
func PLSQLFrontend() (Frontend, error) {
	g, err := plsql.Grammar()
	if err != nil {
		return Frontend{}, err
	}

	lx := plsql.NewLexer(plsql.DefaultConfig())
	return Frontend{Grammar: g, Lex: lx.LexString, PLSQL: true}, nil
}

// LoadFrontend creates a Frontend from a grammar file and a lexer. If
// grammarPath is empty, the built-in PL/SQL grammar is used. lexer is either
// config.LexerPLSQL or the path to a pattern lexer definition file.
func LoadFrontend(grammarPath, lexer string) (Frontend, error) {
	if grammarPath == "" && lexer == config.LexerPLSQL {
		return PLSQLFrontend()
	}

	var fe Frontend
	var err error

	if grammarPath == "" {
		fe.Grammar, err = plsql.Grammar()
	} else {
		fe.Grammar, err = grammar.LoadFile(grammarPath)
	}
	if err != nil {
		return Frontend{}, fmt.Errorf("load grammar: %w", err)
	}

	if lexer == config.LexerPLSQL {
		fe.Lex = plsql.NewLexer(plsql.DefaultConfig()).LexString
	} else {
		lx, err := patlex.LoadFile(lexer)
		if err != nil {
			return Frontend{}, fmt.Errorf("load lexer: %w", err)
		}
		fe.Lex = lx.Lex
	}

	return fe, nil
}

// Parse lexes src and parses the tokens with the given options.
func (fe Frontend) Parse(src string, opts grammar.ParseOptions) (*tree.Node, error) {
	tokens, err := fe.Lex(src)
	if err != nil {
		return nil, err
	}

	return fe.Grammar.ParseWith(token.NewSlice(tokens), opts)
}

// Render formats a syntax tree for display. The DOM and table modes require a
// tree produced by the PL/SQL frontend.
func Render(n *tree.Node, mode config.Output, width int) (string, error) {
	switch mode {
	case config.OutputTree:
		return n.String(), nil
	case config.OutputJSON:
		data, err := json.MarshalIndent(n, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case config.OutputDOM:
		pkg, err := pldom.BuildPackage(n)
		if err != nil {
			return "", err
		}
		data, err := json.MarshalIndent(pkg, "", "  ")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case config.OutputTable:
		pkg, err := pldom.BuildPackage(n)
		if err != nil {
			return "", err
		}
		return pkg.Table(width), nil
	case config.OutputBinary:
		data, err := n.MarshalBinary()
		if err != nil {
			return "", err
		}
		return base64.StdEncoding.EncodeToString(data), nil
	default:
		return "", fmt.Errorf("unknown output mode %q", mode)
	}
}
