package patlex

import (
	"regexp"
	"testing"

	"github.com/dekarrin/simplegrammar/token"
	"github.com/stretchr/testify/assert"
)

func testLexer(t *testing.T) *Lexer {
	lx := New()
	for _, p := range [][2]string{
		{"SPACE", `\s+`},
		{"KEYWORD", `(if|else)\b`},
		{"IDENT", `([A-Za-z_]\w*)`},
		{"NUM", `([0-9]+)`},
		{"STRING", `("([^"]*)")`},
		{"EQEQ", `==`},
		{"EQ", `=`},
	} {
		if err := lx.AddPattern(p[0], p[1]); err != nil {
			t.Fatalf("adding pattern %s: %v", p[0], err)
		}
	}
	lx.Ignore("SPACE")
	return lx
}

func Test_Lexer_Lex(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expect    []token.Token
		expectErr string
	}{
		{
			name:   "empty",
			input:  "",
			expect: nil,
		},
		{
			name:  "keyword wins tie with identifier",
			input: "if",
			expect: []token.Token{
				token.New("KEYWORD", "if").At(1, 1),
			},
		},
		{
			name:  "identifier starting with keyword",
			input: "iffy",
			expect: []token.Token{
				token.New("IDENT", "iffy").At(1, 1),
			},
		},
		{
			name:  "statement over two lines",
			input: "if x == \"hi\"\nelse y = 42",
			expect: []token.Token{
				token.New("KEYWORD", "if").At(1, 1),
				token.New("IDENT", "x").At(1, 4),
				token.Named("EQEQ").At(1, 6),
				token.New("STRING", "hi").At(1, 9),
				token.New("KEYWORD", "else").At(2, 1),
				token.New("IDENT", "y").At(2, 6),
				token.Named("EQ").At(2, 8),
				token.New("NUM", "42").At(2, 10),
			},
		},
		{
			name:      "unmatched character",
			input:     "x $",
			expectErr: "lexing error: around line 1, char 3: unexpected character '$'",
		},
		{
			name:      "unmatched character on later line",
			input:     "x\n  y\n #",
			expectErr: "lexing error: around line 3, char 2: unexpected character '#'",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			lx := testLexer(t)

			actual, err := lx.Lex(tc.input)
			if tc.expectErr != "" {
				var lexErr *LexError
				assert.ErrorAs(err, &lexErr)
				assert.EqualError(err, tc.expectErr)
				return
			} else if !assert.NoError(err) {
				return
			}

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Lexer_AddPattern(t *testing.T) {
	testCases := []struct {
		name      string
		tokName   string
		pattern   string
		expectErr bool
	}{
		{name: "valid", tokName: "A", pattern: `a+`},
		{name: "alternation is anchored as a whole", tokName: "A", pattern: `a|b`},
		{name: "empty name", tokName: "", pattern: `a`, expectErr: true},
		{name: "bad regex", tokName: "A", pattern: `a(`, expectErr: true},
		{name: "matches empty text", tokName: "A", pattern: `a*`, expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			lx := New()
			err := lx.AddPattern(tc.tokName, tc.pattern)

			if tc.expectErr {
				assert.Error(err)
			} else {
				assert.NoError(err)
				assert.Equal([]string{tc.tokName}, lx.TokenNames())
			}
		})
	}
}

func Test_Lexer_anchoredAlternation(t *testing.T) {
	assert := assert.New(t)

	lx := New()
	assert.NoError(lx.AddPattern("AB", `a|b`))
	assert.NoError(lx.AddPattern("X", `x`))

	actual, err := lx.Lex("xb")
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]token.Token{
		token.Named("X").At(1, 1),
		token.Named("AB").At(1, 2),
	}, actual)
}

func Test_Lexer_Source(t *testing.T) {
	assert := assert.New(t)

	lx := testLexer(t)

	src, err := lx.Source("a b")
	if !assert.NoError(err) {
		return
	}

	assert.True(src.HasMore(2))
	assert.Equal(token.New("IDENT", "a").At(1, 1), src.Next())
	assert.Equal(token.New("IDENT", "b").At(1, 3), src.Next())
	assert.False(src.HasMore(1))
}

func Test_Lexer_groupsDoNotShiftLaterPatterns(t *testing.T) {
	assert := assert.New(t)

	lx := New()
	assert.NoError(lx.AddPattern("PAIR", `(a)(b)(c)?`))
	assert.NoError(lx.AddPattern("X", `x`))
	assert.NoError(lx.AddPattern("Y", `(y+)`))

	actual, err := lx.Lex("abxyyab")
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]token.Token{
		token.New("PAIR", "b").At(1, 1),
		token.Named("X").At(1, 3),
		token.New("Y", "yy").At(1, 4),
		token.New("PAIR", "b").At(1, 6),
	}, actual)
}

func Test_withoutCaptures(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		match string
	}{
		{name: "no groups", input: `a+`, match: "aaa"},
		{name: "one group", input: `([0-9]+)`, match: "42"},
		{name: "nested groups", input: `("(([^"]*))")`, match: `"hi"`},
		{name: "dot matches newline", input: `(a.b)`, match: "a\nb"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual, err := withoutCaptures(tc.input)
			if !assert.NoError(err) {
				return
			}

			re, err := regexp.Compile("^(?:" + actual + ")$")
			if !assert.NoError(err) {
				return
			}
			assert.Equal(0, re.NumSubexp())
			assert.True(re.MatchString(tc.match))
		})
	}
}

func Test_Lexer_noPatterns(t *testing.T) {
	assert := assert.New(t)

	lx := New()

	actual, err := lx.Lex("")
	assert.NoError(err)
	assert.Empty(actual)

	_, err = lx.Lex("a")
	assert.EqualError(err, "lexing error: around line 1, char 1: unexpected character 'a'")
}
