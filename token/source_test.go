package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_SliceSource(t *testing.T) {
	assert := assert.New(t)

	src := NewSlice([]Token{New("A", "1"), Named("B"), New("C", "")})

	assert.True(src.HasMore(3))
	assert.False(src.HasMore(4))
	assert.False(src.HasMore(0))
	assert.Equal(Named("B"), src.Peek(2))

	assert.Equal(New("A", "1"), src.Next())
	assert.Equal(2, src.Remaining())
	assert.True(src.HasMore(2))
	assert.False(src.HasMore(3))
	assert.Equal(New("C", ""), src.Peek(2))

	src.Next()
	src.Next()
	assert.False(src.HasMore(1))
	assert.Panics(func() { src.Next() })
	assert.Panics(func() { src.Peek(1) })
}

func Test_Without(t *testing.T) {
	testCases := []struct {
		name    string
		input   []Token
		ignored []string
		expect  []Token
	}{
		{
			name:   "nothing ignored",
			input:  []Token{Named("A"), Named("SPACE")},
			expect: []Token{Named("A"), Named("SPACE")},
		},
		{
			name:    "drops ignored names",
			input:   []Token{Named("A"), New("SPACE", " "), Named("B"), New("SHORT_COMMENT", "x")},
			ignored: []string{"SPACE", "SHORT_COMMENT"},
			expect:  []Token{Named("A"), Named("B")},
		},
		{
			name:    "everything ignored",
			input:   []Token{New("SPACE", " ")},
			ignored: []string{"SPACE"},
			expect:  []Token{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			actual := Without(tc.input, tc.ignored...)

			assert.Equal(tc.expect, actual)
		})
	}
}

func Test_Token_String(t *testing.T) {
	testCases := []struct {
		name   string
		input  Token
		expect string
	}{
		{name: "name only", input: Named("SEMICOLON"), expect: "SEMICOLON"},
		{name: "name and value", input: New("IDENTIFIER", "FOO"), expect: `IDENTIFIER "FOO"`},
		{name: "empty value", input: New("STRING_LITERAL", ""), expect: `STRING_LITERAL ""`},
		{name: "positioned", input: New("IDENTIFIER", "X").At(3, 7), expect: `IDENTIFIER "X" at line 3, position 7`},
		{name: "end of input", input: End(), expect: "end of input"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, tc.input.String())
		})
	}
}

func Test_End_IsDistinct(t *testing.T) {
	assert := assert.New(t)

	assert.True(End().IsEnd())
	assert.False(Named("").IsEnd())
	assert.False(End().Equal(Token{}))
}
