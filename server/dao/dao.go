// Package dao provides data access objects for use in the simplegrammar
// server.
package dao

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dekarrin/simplegrammar/tree"
	"github.com/google/uuid"
)

// Store holds all the repositories.
type Store interface {
	Users() UserRepository
	Grammars() GrammarRepository
	Parses() ParseRepository
	Close() error
}

// UserRepository keeps the accounts that own grammars and parses. Users are
// never edited after creation except to record a logout.
type UserRepository interface {
	// Create stores a new User. ID, Created, and LastLogout are assigned by
	// the repository.
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)

	// SetLastLogout records that the user logged out at t and returns the
	// updated User.
	SetLastLogout(ctx context.Context, id uuid.UUID, t time.Time) (User, error)
	Delete(ctx context.Context, id uuid.UUID) (User, error)
	Close() error
}

type GrammarRepository interface {

	// Create creates a new Grammar. All attributes except for auto-generated
	// fields are taken from the provided Grammar.
	Create(ctx context.Context, g Grammar) (Grammar, error)
	GetAll(ctx context.Context) ([]Grammar, error)
	GetByID(ctx context.Context, id uuid.UUID) (Grammar, error)
	Delete(ctx context.Context, id uuid.UUID) (Grammar, error)
	Close() error
}

type ParseRepository interface {

	// Create creates a new Parse. All attributes except for auto-generated
	// fields are taken from the provided Parse.
	Create(ctx context.Context, p Parse) (Parse, error)
	GetAll(ctx context.Context) ([]Parse, error)
	GetAllByOwner(ctx context.Context, owner uuid.UUID) ([]Parse, error)
	GetByID(ctx context.Context, id uuid.UUID) (Parse, error)
	Delete(ctx context.Context, id uuid.UUID) (Parse, error)
	Close() error
}

// Role is what a user may do with grammars and parses.
type Role int

const (
	// Reader may parse with any grammar and see their own parses.
	Reader Role = iota

	// Author may also upload grammars.
	Author

	// Admin may see and delete everything, and manages users.
	Admin
)

var roleNames = []string{"reader", "author", "admin"}

func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return fmt.Sprintf("Role(%d)", int(r))
	}
	return roleNames[r]
}

// Uploads returns whether users with the role may create grammars.
func (r Role) Uploads() bool {
	return r == Author || r == Admin
}

// ParseRole gives the Role named by s, ignoring case.
func ParseRole(s string) (Role, error) {
	for i, name := range roleNames {
		if strings.EqualFold(s, name) {
			return Role(i), nil
		}
	}
	return Reader, fmt.Errorf("must be one of %s", strings.Join(roleNames, ", "))
}

// User is an account on the server. Password holds a hash, never the password
// itself.
type User struct {
	ID         uuid.UUID
	Username   string
	Password   string
	Role       Role
	Created    time.Time
	LastLogout time.Time
}

// Grammar is a grammar uploaded by a user. Text is in the format read by
// grammar.Load. Lexer is an optional pattern lexer definition in TOML; without
// one, parses against the grammar must supply tokens directly.
type Grammar struct {
	ID      uuid.UUID
	OwnerID uuid.UUID
	Name    string
	Text    string
	Lexer   string
	Created time.Time
}

// Parse is the stored outcome of parsing some input. GrammarID is uuid.Nil for
// parses made with the built-in PL/SQL grammar. Exactly one of Tree and
// ErrorMessage is set.
type Parse struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	GrammarID uuid.UUID
	Root      string
	Source    string
	Tree      *tree.Node

	ErrorMessage string
	ErrorLine    int
	ErrorColumn  int

	Created time.Time
}

// Failed returns whether the parse produced an error instead of a tree.
func (p Parse) Failed() bool {
	return p.Tree == nil
}
