package sgs

import (
	"context"
	"testing"

	"github.com/dekarrin/simplegrammar/server/dao"
	"github.com/dekarrin/simplegrammar/server/dao/inmem"
	"github.com/dekarrin/simplegrammar/server/serr"
	"github.com/dekarrin/simplegrammar/token"
	"github.com/dekarrin/simplegrammar/tree"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

const sumGrammar = `
SUM: {INT+, +} MORE;
MORE: {PLUS} {INT+, +} MORE | ^;
`

const sumLexer = `
format = "SGLEX"
type = "LEXER"
ignore = ["WS"]

[[token]]
name = "WS"
pattern = '\s+'

[[token]]
name = "INT"
pattern = '([0-9]+)'

[[token]]
name = "PLUS"
pattern = '\+'
`

func sumTree(values ...string) *tree.Node {
	root := tree.New("SUM")
	for _, v := range values {
		root.AddChild("INT").AddChild(v)
	}
	return root
}

func testService(t *testing.T) (Service, dao.User) {
	svc := Service{DB: inmem.NewDatastore(), PasswordCost: bcrypt.MinCost}
	u, err := svc.CreateUser(context.Background(), "jade", "harley", dao.Author)
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return svc, u
}

func Test_Service_CreateUser(t *testing.T) {
	testCases := []struct {
		name      string
		username  string
		password  string
		role      dao.Role
		expectErr error
	}{
		{name: "reader", username: "john", password: "egbert", role: dao.Reader},
		{name: "admin", username: "john", password: "egbert", role: dao.Admin},
		{name: "duplicate username", username: "jade", password: "x", expectErr: serr.ErrAlreadyExists},
		{name: "blank username", password: "x", expectErr: serr.ErrBadArgument},
		{name: "blank password", username: "john", expectErr: serr.ErrBadArgument},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			svc, _ := testService(t)

			actual, err := svc.CreateUser(context.Background(), tc.username, tc.password, tc.role)
			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
				return
			}
			if !assert.NoError(err) {
				return
			}

			assert.Equal(tc.username, actual.Username)
			assert.Equal(tc.role, actual.Role)
			assert.NotEqual(tc.password, actual.Password)
			assert.NotEqual(uuid.Nil, actual.ID)
		})
	}
}

func Test_Service_EnsureAdmin(t *testing.T) {
	assert := assert.New(t)
	svc, _ := testService(t)
	ctx := context.Background()

	created, err := svc.EnsureAdmin(ctx, "admin", "password")
	assert.NoError(err)
	assert.True(created)

	created, err = svc.EnsureAdmin(ctx, "admin", "other")
	assert.NoError(err)
	assert.False(created)

	// the first password is kept
	u, err := svc.Login(ctx, "admin", "password")
	if assert.NoError(err) {
		assert.Equal(dao.Admin, u.Role)
	}

	_, err = svc.EnsureAdmin(ctx, "", "password")
	assert.ErrorIs(err, serr.ErrBadArgument)
}

func Test_Service_LoginLogout(t *testing.T) {
	assert := assert.New(t)
	svc, u := testService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "jade", "wrong")
	assert.ErrorIs(err, serr.ErrBadCredentials)

	_, err = svc.Login(ctx, "nobody", "harley")
	assert.ErrorIs(err, serr.ErrBadCredentials)

	loggedIn, err := svc.Login(ctx, "jade", "harley")
	if !assert.NoError(err) {
		return
	}
	assert.Equal(u.ID, loggedIn.ID)

	loggedOut, err := svc.Logout(ctx, u.ID)
	if !assert.NoError(err) {
		return
	}
	assert.True(loggedOut.LastLogout.After(loggedIn.LastLogout))

	_, err = svc.Logout(ctx, uuid.New())
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_DeleteUser(t *testing.T) {
	assert := assert.New(t)
	svc, u := testService(t)
	ctx := context.Background()

	other, err := svc.CreateUser(ctx, "dave", "strider", dao.Reader)
	if !assert.NoError(err) {
		return
	}

	g, err := svc.CreateGrammar(ctx, u.ID, "sum", sumGrammar, sumLexer)
	if !assert.NoError(err) {
		return
	}
	mine, err := svc.Parse(ctx, u.ID, ParseInput{GrammarID: g.ID.String(), Source: "1 + 2"})
	if !assert.NoError(err) {
		return
	}
	theirs, err := svc.Parse(ctx, other.ID, ParseInput{GrammarID: g.ID.String(), Source: "3"})
	if !assert.NoError(err) {
		return
	}

	deleted, err := svc.DeleteUser(ctx, u.ID)
	if !assert.NoError(err) {
		return
	}
	assert.Equal("jade", deleted.Username)

	_, err = svc.Login(ctx, "jade", "harley")
	assert.ErrorIs(err, serr.ErrBadCredentials)
	_, err = svc.GetGrammar(ctx, g.ID.String())
	assert.ErrorIs(err, serr.ErrNotFound)
	_, err = svc.GetParse(ctx, mine.Parse.ID.String())
	assert.ErrorIs(err, serr.ErrNotFound)

	// parses by other users made with the deleted grammar are kept
	_, err = svc.GetParse(ctx, theirs.Parse.ID.String())
	assert.NoError(err)

	_, err = svc.DeleteUser(ctx, u.ID)
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_CreateGrammar(t *testing.T) {
	testCases := []struct {
		name      string
		gName     string
		text      string
		lexer     string
		expectErr error
	}{
		{name: "grammar with lexer", gName: "sum", text: sumGrammar, lexer: sumLexer},
		{name: "grammar without lexer", gName: "sum", text: sumGrammar},
		{name: "blank name", text: sumGrammar, expectErr: serr.ErrBadArgument},
		{name: "grammar does not load", gName: "bad", text: "SUM: {INT+, +", expectErr: serr.ErrBadArgument},
		{name: "lexer does not load", gName: "bad", text: sumGrammar, lexer: "format = \"NOPE\"", expectErr: serr.ErrBadArgument},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			svc, u := testService(t)

			actual, err := svc.CreateGrammar(context.Background(), u.ID, tc.gName, tc.text, tc.lexer)
			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
				return
			}
			if !assert.NoError(err) {
				return
			}

			assert.Equal(u.ID, actual.OwnerID)
			assert.Equal(tc.gName, actual.Name)

			got, err := svc.GetGrammar(context.Background(), actual.ID.String())
			assert.NoError(err)
			assert.Equal(actual.Text, got.Text)
		})
	}
}

func Test_Service_Parse(t *testing.T) {
	testCases := []struct {
		name          string
		lexer         string
		builtin       bool
		in            ParseInput
		expectTree    *tree.Node
		expectFailure string
		expectLine    int
		expectColumn  int
		expectPackage string
		expectErr     error
	}{
		{
			name:       "stored grammar and lexer",
			lexer:      sumLexer,
			in:         ParseInput{Source: "1 + 2"},
			expectTree: sumTree("1", "2"),
		},
		{
			name:          "syntax error is kept",
			lexer:         sumLexer,
			in:            ParseInput{Source: "1 2"},
			expectFailure: "syntax error",
			expectLine:    1,
			expectColumn:  3,
		},
		{
			name:          "lex error is kept",
			lexer:         sumLexer,
			in:            ParseInput{Source: "1 + x"},
			expectFailure: "unexpected character",
			expectLine:    1,
			expectColumn:  5,
		},
		{
			name: "tokens without lexer",
			in: ParseInput{Tokens: []token.Token{
				token.New("INT", "3"),
				token.Named("PLUS"),
				token.New("INT", "4"),
			}},
			expectTree: sumTree("3", "4"),
		},
		{
			name:      "source without lexer",
			in:        ParseInput{Source: "1 + 2"},
			expectErr: serr.ErrBadArgument,
		},
		{
			name:      "unknown root",
			lexer:     sumLexer,
			in:        ParseInput{Source: "1", Root: "NOPE"},
			expectErr: serr.ErrBadArgument,
		},
		{
			name:          "built-in grammar gives package",
			builtin:       true,
			in:            ParseInput{Source: "PACKAGE p IS\n  x NUMBER;\nEND;"},
			expectPackage: "P",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			svc, u := testService(t)
			ctx := context.Background()

			in := tc.in
			if !tc.builtin {
				g, err := svc.CreateGrammar(ctx, u.ID, "sum", sumGrammar, tc.lexer)
				if !assert.NoError(err) {
					return
				}
				in.GrammarID = g.ID.String()
			}

			actual, err := svc.Parse(ctx, u.ID, in)
			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
				return
			}
			if !assert.NoError(err) {
				return
			}

			assert.Equal(u.ID, actual.Parse.OwnerID)

			if tc.expectFailure != "" {
				assert.True(actual.Parse.Failed())
				assert.Nil(actual.Parse.Tree)
				assert.Contains(actual.Parse.ErrorMessage, tc.expectFailure)
				assert.Equal(tc.expectLine, actual.Parse.ErrorLine)
				assert.Equal(tc.expectColumn, actual.Parse.ErrorColumn)
				return
			}

			assert.False(actual.Parse.Failed())
			if !assert.NotNil(actual.Parse.Tree) {
				return
			}
			if tc.expectTree != nil {
				assert.True(tc.expectTree.Equal(actual.Parse.Tree), "expected:\n%s\nactual:\n%s", tc.expectTree, actual.Parse.Tree)
			}

			if tc.expectPackage != "" {
				if assert.NotNil(actual.Package) {
					assert.Equal(tc.expectPackage, actual.Package.Name)
				}
			} else {
				assert.Nil(actual.Package)
			}

			stored, err := svc.GetParse(ctx, actual.Parse.ID.String())
			assert.NoError(err)
			assert.Equal(actual.Parse.Source, stored.Source)
		})
	}
}

func Test_Service_Parse_Trace(t *testing.T) {
	assert := assert.New(t)
	svc, u := testService(t)
	ctx := context.Background()

	g, err := svc.CreateGrammar(ctx, u.ID, "sum", sumGrammar, sumLexer)
	if !assert.NoError(err) {
		return
	}

	withTrace, err := svc.Parse(ctx, u.ID, ParseInput{GrammarID: g.ID.String(), Source: "1", Trace: true})
	assert.NoError(err)
	assert.NotEmpty(withTrace.Trace)

	noTrace, err := svc.Parse(ctx, u.ID, ParseInput{GrammarID: g.ID.String(), Source: "1"})
	assert.NoError(err)
	assert.Empty(noTrace.Trace)
}

func Test_Service_Parses_ByOwner(t *testing.T) {
	assert := assert.New(t)
	svc, u := testService(t)
	ctx := context.Background()

	other, err := svc.CreateUser(ctx, "rose", "lalonde", dao.Reader)
	if !assert.NoError(err) {
		return
	}

	src := ParseInput{Source: "PACKAGE p IS\n  x NUMBER;\nEND;"}
	mine, err := svc.Parse(ctx, u.ID, src)
	assert.NoError(err)
	_, err = svc.Parse(ctx, other.ID, src)
	assert.NoError(err)

	owned, err := svc.GetParsesByOwner(ctx, u.ID)
	assert.NoError(err)
	if assert.Len(owned, 1) {
		assert.Equal(mine.Parse.ID, owned[0].ID)
	}

	all, err := svc.GetAllParses(ctx)
	assert.NoError(err)
	assert.Len(all, 2)

	_, err = svc.DeleteParse(ctx, mine.Parse.ID.String())
	assert.NoError(err)
	_, err = svc.GetParse(ctx, mine.Parse.ID.String())
	assert.ErrorIs(err, serr.ErrNotFound)
}
