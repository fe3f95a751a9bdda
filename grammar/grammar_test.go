package grammar

import (
	"testing"

	"github.com/dekarrin/simplegrammar/token"
	"github.com/stretchr/testify/assert"
)

func Test_TokenMatcher_Match(t *testing.T) {
	testCases := []struct {
		name    string
		matcher TokenMatcher
		input   token.Token
		expect  Match
	}{
		{name: "any matches anything", matcher: Any(), input: token.New("ID", "x"), expect: MatchAny},
		{name: "name matches", matcher: Named("ID"), input: token.New("ID", "x"), expect: MatchName},
		{name: "name mismatch", matcher: Named("NUM"), input: token.New("ID", "x"), expect: MatchNone},
		{name: "value matches", matcher: Valued("ID", "x"), input: token.New("ID", "x"), expect: MatchValue},
		{name: "value mismatch", matcher: Valued("ID", "y"), input: token.New("ID", "x"), expect: MatchNone},
		{name: "value wanted but token has none", matcher: Valued("ID", ""), input: token.Named("ID"), expect: MatchNone},
		{name: "empty value matches empty value", matcher: Valued("STR", ""), input: token.New("STR", ""), expect: MatchValue},
		{name: "value without name matches value", matcher: TokenMatcher{Value: "x", HasValue: true}, input: token.New("ID", "x"), expect: MatchValue},
		{name: "value without name rejects other value", matcher: TokenMatcher{Value: "x", HasValue: true}, input: token.New("ID", "y"), expect: MatchNone},
		{name: "value without name rejects valueless token", matcher: TokenMatcher{Value: "x", HasValue: true}, input: token.Named("ID"), expect: MatchNone},
		{name: "end never matches any", matcher: Any(), input: token.End(), expect: MatchNone},
		{name: "end never matches name", matcher: Named("ID"), input: token.End(), expect: MatchNone},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, tc.matcher.Match(tc.input))
		})
	}
}

func Test_Match_Ordering(t *testing.T) {
	assert := assert.New(t)

	tok := token.New("ID", "x")
	value := Valued("ID", "x").Match(tok)
	name := Named("ID").Match(tok)
	any := Any().Match(tok)

	assert.Greater(int(value), int(name))
	assert.Greater(int(name), int(any))
	assert.Greater(int(any), int(MatchNone))
}

func Test_Grammar_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		build     func(g *Grammar)
		expectErr error
		expectMsg string
	}{
		{
			name: "valid grammar",
			build: func(g *Grammar) {
				g.DefineOption("S", false).AddRule("X", Inherit).AddToken(Named("B"))
				g.DefineOption("X", true).AddToken(Named("A"))
				g.DefineOption("X", true).AddEmpty()
			},
		},
		{
			name:      "no rules",
			build:     func(g *Grammar) {},
			expectErr: ErrNoRules,
		},
		{
			name: "undefined rule",
			build: func(g *Grammar) {
				g.DefineOption("S", false).AddRule("X", Inherit)
				g.DefineOption("X", false).AddRule("MISSING", Inherit)
			},
			expectErr: ErrUndefinedRule,
			expectMsg: `undefined rule: "MISSING", referenced by option 1 of "X"`,
		},
		{
			name: "first undefined rule in declaration order is reported",
			build: func(g *Grammar) {
				g.DefineOption("S", false).AddRule("FIRST", Inherit).AddRule("SECOND", Inherit)
			},
			expectErr: ErrUndefinedRule,
			expectMsg: `undefined rule: "FIRST", referenced by option 1 of "S"`,
		},
		{
			name: "direct left recursion",
			build: func(g *Grammar) {
				g.DefineOption("S", false).AddRule("S", Inherit).AddToken(Named("A"))
				g.DefineOption("S", false).AddToken(Named("A"))
			},
			expectErr: ErrLeftRecursion,
		},
		{
			name: "left recursion through a nullable rule",
			build: func(g *Grammar) {
				g.DefineOption("S", false).AddRule("N", Inherit).AddRule("S", Inherit)
				g.DefineOption("S", false).AddToken(Named("A"))
				g.DefineOption("N", false).AddEmpty()
			},
			expectErr: ErrLeftRecursion,
			expectMsg: "left recursion: S -> S",
		},
		{
			name: "right recursion is fine",
			build: func(g *Grammar) {
				g.DefineOption("S", false).AddToken(Named("A")).AddRule("S", Inherit)
				g.DefineOption("S", false).AddEmpty()
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			g := New()
			tc.build(g)
			err := g.Validate()

			if tc.expectErr != nil {
				assert.ErrorIs(err, tc.expectErr)
				assert.ErrorIs(err, ErrStructure)
				if tc.expectMsg != "" {
					assert.Equal(tc.expectMsg, err.Error())
				}
				assert.False(g.Validated())
				return
			}
			assert.NoError(err)
			assert.True(g.Validated())
		})
	}
}

func Test_Grammar_Nullable(t *testing.T) {
	assert := assert.New(t)

	g := mustLoad(t, `
		S: A B C;
		A: ^;
		B: A A | {X};
		C: {Y};
	`)

	assert.True(g.Nullable("A"))
	assert.True(g.Nullable("B"))
	assert.False(g.Nullable("C"))
	assert.False(g.Nullable("S"))
}

func Test_Grammar_FrozenAfterValidate(t *testing.T) {
	assert := assert.New(t)

	g := New()
	opt := g.DefineOption("S", false).AddToken(Named("A"))
	assert.NoError(g.Validate())

	assert.Panics(func() { g.DefineOption("T", false) })
	assert.Panics(func() { opt.AddEmpty() })
}

func Test_Grammar_Root(t *testing.T) {
	assert := assert.New(t)

	g := New()
	assert.Equal("", g.Root())

	g.DefineOption("FIRST", false).AddToken(Named("A"))
	g.DefineOption("SECOND", false).AddToken(Named("B"))
	assert.Equal("FIRST", g.Root())
	assert.Equal([]string{"FIRST", "SECOND"}, g.RuleNames())

	assert.NoError(g.SetRoot("SECOND"))
	assert.Equal("SECOND", g.Root())
	assert.ErrorIs(g.SetRoot("THIRD"), ErrUndefinedRule)
}

func Test_Grammar_Table(t *testing.T) {
	assert := assert.New(t)

	g := mustLoad(t, `S: X+ {END}; X+: {A, "a" +} | ^;`)
	table := g.Table(80)

	assert.Contains(table, "S (root)")
	assert.Contains(table, `{A, "a"+}`)
	assert.Contains(table, "X+ {END}")
}
