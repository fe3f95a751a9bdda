package api

import (
	"time"

	"github.com/dekarrin/simplegrammar/pldom"
	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/token"
	"github.com/dekarrin/simplegrammar/tree"
	"github.com/google/uuid"
)

// note that these are *not* the DAO models; those are distinct and closer to
// the DB format they are in. Rather these are the models that are received from
// and sent to the client.

type InfoModel struct {
	Version struct {
		Server        string `json:"server"`
		SimpleGrammar string `json:"simplegrammar"`
	} `json:"version"`
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserModel is an account. Password is only ever sent by the client.
type UserModel struct {
	URI      string `json:"uri"`
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
	Created  string `json:"created,omitempty"`
}

type GrammarModel struct {
	URI     string `json:"uri"`
	ID      string `json:"id,omitempty"`
	OwnerID string `json:"owner_id,omitempty"`
	Name    string `json:"name"`
	Text    string `json:"text"`
	Lexer   string `json:"lexer,omitempty"`
	Created string `json:"created,omitempty"`
}

// TokenModel is a single token given to be parsed directly. A null or missing
// value gives a token with no value.
type TokenModel struct {
	Name   string  `json:"name"`
	Value  *string `json:"value,omitempty"`
	Line   int     `json:"line,omitempty"`
	Column int     `json:"column,omitempty"`
}

type ParseRequest struct {
	GrammarID    string       `json:"grammar_id,omitempty"`
	Root         string       `json:"root,omitempty"`
	Source       string       `json:"source,omitempty"`
	Tokens       []TokenModel `json:"tokens,omitempty"`
	Trace        bool         `json:"trace,omitempty"`
	MaxLookahead int          `json:"max_lookahead,omitempty"`
}

type ParseErrorModel struct {
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

type ParseModel struct {
	URI       string           `json:"uri"`
	ID        string           `json:"id"`
	OwnerID   string           `json:"owner_id"`
	GrammarID string           `json:"grammar_id,omitempty"`
	Root      string           `json:"root,omitempty"`
	Source    string           `json:"source"`
	Tree      *tree.Node       `json:"tree,omitempty"`
	Error     *ParseErrorModel `json:"error,omitempty"`
	Package   *pldom.Package   `json:"package,omitempty"`
	Trace     string           `json:"trace,omitempty"`
	Created   string           `json:"created"`
}

func (tm TokenModel) toToken() token.Token {
	var tok token.Token
	if tm.Value != nil {
		tok = token.New(tm.Name, *tm.Value)
	} else {
		tok = token.Named(tm.Name)
	}
	return tok.At(tm.Line, tm.Column)
}

func userModel(u dao.User) UserModel {
	return UserModel{
		URI:      PathPrefix + "/users/" + u.ID.String(),
		ID:       u.ID.String(),
		Username: u.Username,
		Role:     u.Role.String(),
		Created:  u.Created.Format(time.RFC3339),
	}
}

func grammarModel(g dao.Grammar) GrammarModel {
	return GrammarModel{
		URI:     PathPrefix + "/grammars/" + g.ID.String(),
		ID:      g.ID.String(),
		OwnerID: g.OwnerID.String(),
		Name:    g.Name,
		Text:    g.Text,
		Lexer:   g.Lexer,
		Created: g.Created.Format(time.RFC3339),
	}
}

// parseModel does not include the package model or trace; callers set those
// if they have them.
func parseModel(p dao.Parse) ParseModel {
	m := ParseModel{
		URI:     PathPrefix + "/parses/" + p.ID.String(),
		ID:      p.ID.String(),
		OwnerID: p.OwnerID.String(),
		Root:    p.Root,
		Source:  p.Source,
		Tree:    p.Tree,
		Created: p.Created.Format(time.RFC3339),
	}
	if p.GrammarID != uuid.Nil {
		m.GrammarID = p.GrammarID.String()
	}
	if p.Failed() {
		m.Error = &ParseErrorModel{
			Message: p.ErrorMessage,
			Line:    p.ErrorLine,
			Column:  p.ErrorColumn,
		}
	}
	return m
}
