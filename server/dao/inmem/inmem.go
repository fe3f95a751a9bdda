// Package inmem provides DAO repositories that keep all data in memory. It is
// for testing and for servers that do not need to persist anything.
package inmem

import (
	"fmt"

	"github.com/dekarrin/simplegrammar/server/dao"
)

type store struct {
	users    *InMemoryUsersRepository
	grammars *InMemoryGrammarsRepository
	parses   *InMemoryParsesRepository
}

func NewDatastore() dao.Store {
	return &store{
		users:    NewUsersRepository(),
		grammars: NewGrammarsRepository(),
		parses:   NewParsesRepository(),
	}
}

func (s *store) Users() dao.UserRepository {
	return s.users
}

func (s *store) Grammars() dao.GrammarRepository {
	return s.grammars
}

func (s *store) Parses() dao.ParseRepository {
	return s.parses
}

func (s *store) Close() error {
	var err error

	for _, c := range []interface{ Close() error }{s.users, s.grammars, s.parses} {
		nextErr := c.Close()
		if nextErr == nil {
			continue
		}
		if err != nil {
			err = fmt.Errorf("%s\nadditionally, %w", err, nextErr)
		} else {
			err = nextErr
		}
	}

	return err
}
