package sgs

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"github.com/dekarrin/simplegrammar/grammar"
	"github.com/dekarrin/simplegrammar/patlex"
	"github.com/dekarrin/simplegrammar/pldom"
	"github.com/dekarrin/simplegrammar/plsql"
	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/server/serr"
	"github.com/dekarrin/simplegrammar/token"
	"github.com/google/uuid"
)

// ParseInput is what to parse and how.
type ParseInput struct {
	// GrammarID is the ID of the stored grammar to parse with. If empty, the
	// built-in PL/SQL package grammar and lexer are used.
	GrammarID string

	// Root overrides the rule parsing starts from.
	Root string

	// Source is text to lex and parse. It is ignored if Tokens is non-nil.
	Source string

	// Tokens are parsed directly instead of lexing Source.
	Tokens []token.Token

	Trace        bool
	MaxLookahead int
}

// ParseResult is the outcome of a call to Service.Parse.
type ParseResult struct {
	Parse dao.Parse

	// Package is the PL/SQL package model built from the tree. It is only set
	// for successful parses of whole packages with the built-in grammar.
	Package *pldom.Package

	// Trace is the parse trace, if one was requested.
	Trace string
}

// Parse parses the input and stores the outcome as owned by the given user. A
// failure to lex or parse the input is not an error; it is stored as the
// parse's error along with where it happened.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the grammar does not exist,
// the root rule is not in the grammar, or source text is given for a grammar
// with no lexer, it will match serr.ErrBadArgument. If the error occured due to
// an unexpected problem with the DB, it will match serr.ErrDB.
func (svc Service) Parse(ctx context.Context, owner uuid.UUID, in ParseInput) (ParseResult, error) {
	var g *grammar.Grammar
	var lex func(string) ([]token.Token, error)
	grammarID := uuid.Nil

	if in.GrammarID == "" {
		var err error
		g, err = plsql.Grammar()
		if err != nil {
			return ParseResult{}, serr.New("load built-in grammar", err)
		}
		lex = plsql.NewLexer(plsql.DefaultConfig()).LexString
	} else {
		var err error
		grammarID, err = uuid.Parse(in.GrammarID)
		if err != nil {
			return ParseResult{}, serr.New("grammar_id: not a valid ID", serr.ErrBadArgument)
		}
		stored, err := svc.DB.Grammars().GetByID(ctx, grammarID)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				return ParseResult{}, serr.New("grammar_id: no grammar with that ID exists", serr.ErrBadArgument)
			}
			return ParseResult{}, serr.WrapDB("could not get grammar", err)
		}

		var lx *patlex.Lexer
		g, lx, err = compile(stored)
		if err != nil {
			return ParseResult{}, serr.New("stored grammar no longer loads", err)
		}
		if lx != nil {
			lex = lx.Lex
		}
	}

	if in.Root != "" && !g.HasRule(in.Root) {
		return ParseResult{}, serr.New("root: grammar has no rule named "+in.Root, serr.ErrBadArgument)
	}

	source := in.Source
	tokens := in.Tokens
	if tokens == nil {
		if lex == nil {
			return ParseResult{}, serr.New("source: grammar has no lexer; give tokens instead", serr.ErrBadArgument)
		}
	} else {
		short := make([]string, len(tokens))
		for i := range tokens {
			short[i] = tokens[i].Short()
		}
		source = strings.Join(short, " ")
	}

	p := dao.Parse{
		OwnerID:   owner,
		GrammarID: grammarID,
		Root:      in.Root,
		Source:    source,
	}

	var traceBuf bytes.Buffer
	opts := grammar.ParseOptions{
		Root:         in.Root,
		Trace:        in.Trace,
		TraceOutput:  &traceBuf,
		MaxLookahead: in.MaxLookahead,
	}

	var err error
	if tokens == nil {
		tokens, err = lex(source)
	}
	if err == nil {
		p.Tree, err = g.ParseWith(token.NewSlice(tokens), opts)
	}
	if err != nil {
		p.Tree = nil
		p.ErrorMessage = err.Error()
		p.ErrorLine, p.ErrorColumn = errorPosition(err)
	}

	stored, err := svc.DB.Parses().Create(ctx, p)
	if err != nil {
		return ParseResult{}, serr.WrapDB("could not create parse", err)
	}

	res := ParseResult{Parse: stored, Trace: traceBuf.String()}
	res.Package = PackageOf(stored)
	return res, nil
}

// PackageOf builds the PL/SQL package model of a stored parse. It returns nil
// if the parse did not produce a whole package with the built-in grammar.
func PackageOf(p dao.Parse) *pldom.Package {
	if p.GrammarID != uuid.Nil || p.Tree == nil || p.Root != "" {
		return nil
	}
	pkg, err := pldom.BuildPackage(p.Tree)
	if err != nil {
		return nil
	}
	return &pkg
}

// errorPosition gives the line and column that a lexing or parsing error
// occured at, or zeros if it has none.
func errorPosition(err error) (line, col int) {
	var synErr grammar.SyntaxError
	var plLexErr *plsql.LexError
	var patLexErr *patlex.LexError

	switch {
	case errors.As(err, &synErr):
		return synErr.Line(), synErr.Column()
	case errors.As(err, &plLexErr):
		return plLexErr.Line, plLexErr.Column
	case errors.As(err, &patLexErr):
		return patLexErr.Line, patLexErr.Column
	default:
		return 0, 0
	}
}

// GetAllParses returns all parses currently in persistence.
func (svc Service) GetAllParses(ctx context.Context) ([]dao.Parse, error) {
	all, err := svc.DB.Parses().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return all, nil
}

// GetParsesByOwner returns all parses made by the given user.
func (svc Service) GetParsesByOwner(ctx context.Context, owner uuid.UUID) ([]dao.Parse, error) {
	all, err := svc.DB.Parses().GetAllByOwner(ctx, owner)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return all, nil
}

// GetParse returns the parse with the given ID.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no parse with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if the ID
// is not valid, it will match serr.ErrBadArgument.
func (svc Service) GetParse(ctx context.Context, id string) (dao.Parse, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Parse{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	p, err := svc.DB.Parses().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Parse{}, serr.ErrNotFound
		}
		return dao.Parse{}, serr.WrapDB("could not get parse", err)
	}

	return p, nil
}

// DeleteParse deletes the parse with the given ID and returns it as it was
// just before deletion.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no parse with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if the ID
// is not valid, it will match serr.ErrBadArgument.
func (svc Service) DeleteParse(ctx context.Context, id string) (dao.Parse, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Parse{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	p, err := svc.DB.Parses().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Parse{}, serr.ErrNotFound
		}
		return dao.Parse{}, serr.WrapDB("could not delete parse", err)
	}

	return p, nil
}
