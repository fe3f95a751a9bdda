package patlex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dekarrin/simplegrammar/token"
	"github.com/stretchr/testify/assert"
)

const calcLexer = `
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

func Test_Parse(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		lex       string
		expect    []token.Token
		expectErr bool
	}{
		{
			name:  "calculator",
			input: calcLexer,
			lex:   "1 + 22",
			expect: []token.Token{
				token.New("INT", "1").At(1, 1),
				token.Named("PLUS").At(1, 3),
				token.New("INT", "22").At(1, 5),
			},
		},
		{
			name:      "wrong format",
			input:     "format = \"TUNA\"\ntype = \"LEXER\"\n[[token]]\nname = \"A\"\npattern = 'a'\n",
			expectErr: true,
		},
		{
			name:      "wrong type",
			input:     "format = \"SGLEX\"\ntype = \"GRAMMAR\"\n[[token]]\nname = \"A\"\npattern = 'a'\n",
			expectErr: true,
		},
		{
			name:      "no tokens",
			input:     "format = \"SGLEX\"\ntype = \"LEXER\"\n",
			expectErr: true,
		},
		{
			name:      "bad pattern",
			input:     "format = \"SGLEX\"\ntype = \"LEXER\"\n[[token]]\nname = \"A\"\npattern = 'a('\n",
			expectErr: true,
		},
		{
			name:      "not toml",
			input:     "format = ",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			lx, err := Parse([]byte(tc.input))
			if tc.expectErr {
				assert.Error(err)
				return
			} else if !assert.NoError(err) {
				return
			}

			actual, err := lx.Lex(tc.lex)
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_LoadFile(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "calc.toml")
	if err := os.WriteFile(path, []byte(calcLexer), 0644); err != nil {
		t.Fatal(err)
	}

	lx, err := LoadFile(path)
	if !assert.NoError(err) {
		return
	}
	assert.Equal([]string{"WS", "INT", "PLUS"}, lx.TokenNames())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(err, os.ErrNotExist)
}
