package sgs

import (
	"context"
	"errors"
	"strings"

	"github.com/dekarrin/simplegrammar/grammar"
	"github.com/dekarrin/simplegrammar/patlex"
	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/server/serr"
	"github.com/google/uuid"
)

// CreateGrammar stores a new grammar owned by the given user. text must load
// and validate as a grammar, and lexer, if given, must be a valid pattern
// lexer definition.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the grammar or lexer does
// not load, it will match serr.ErrBadArgument. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB.
func (svc Service) CreateGrammar(ctx context.Context, owner uuid.UUID, name, text, lexer string) (dao.Grammar, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return dao.Grammar{}, serr.New("name cannot be blank", serr.ErrBadArgument)
	}

	g := dao.Grammar{
		OwnerID: owner,
		Name:    name,
		Text:    text,
		Lexer:   lexer,
	}

	// only stored if it loads
	if _, _, err := compile(g); err != nil {
		return dao.Grammar{}, err
	}

	created, err := svc.DB.Grammars().Create(ctx, g)
	if err != nil {
		return dao.Grammar{}, serr.WrapDB("could not create grammar", err)
	}

	return created, nil
}

// GetAllGrammars returns all grammars currently in persistence.
func (svc Service) GetAllGrammars(ctx context.Context) ([]dao.Grammar, error) {
	all, err := svc.DB.Grammars().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return all, nil
}

// GetGrammar returns the grammar with the given ID.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no grammar with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if the ID
// is not valid, it will match serr.ErrBadArgument.
func (svc Service) GetGrammar(ctx context.Context, id string) (dao.Grammar, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Grammar{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	g, err := svc.DB.Grammars().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Grammar{}, serr.ErrNotFound
		}
		return dao.Grammar{}, serr.WrapDB("could not get grammar", err)
	}

	return g, nil
}

// DeleteGrammar deletes the grammar with the given ID and returns it as it was
// just before deletion. Parses made with the grammar are kept.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If no grammar with that ID
// exists, it will match serr.ErrNotFound. If the error occured due to an
// unexpected problem with the DB, it will match serr.ErrDB. Finally, if the ID
// is not valid, it will match serr.ErrBadArgument.
func (svc Service) DeleteGrammar(ctx context.Context, id string) (dao.Grammar, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Grammar{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	g, err := svc.DB.Grammars().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Grammar{}, serr.ErrNotFound
		}
		return dao.Grammar{}, serr.WrapDB("could not delete grammar", err)
	}

	return g, nil
}

// compile loads the grammar and lexer of a stored grammar. The returned lexer
// is nil if g has none.
func compile(g dao.Grammar) (*grammar.Grammar, *patlex.Lexer, error) {
	compiled, err := grammar.LoadString(g.Text)
	if err != nil {
		return nil, nil, serr.New("grammar", err, serr.ErrBadArgument)
	}

	if strings.TrimSpace(g.Lexer) == "" {
		return compiled, nil, nil
	}

	lx, err := patlex.Parse([]byte(g.Lexer))
	if err != nil {
		return nil, nil, serr.New("lexer", err, serr.ErrBadArgument)
	}

	return compiled, lx, nil
}
