// Package patlex contains a lexer driven by an ordered list of regular
// expressions, for use with grammars whose tokens are simple enough to not
// need a hand-written lexer. A definition for one can be read from a TOML
// file.
package patlex

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"strings"
	"unicode/utf8"

	"github.com/dekarrin/ictiobus"
	"github.com/dekarrin/ictiobus/lex"
	"github.com/dekarrin/simplegrammar/token"
)

// LexError is returned when no pattern matches the input at some position.
type LexError struct {
	Line    int
	Column  int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexing error: around line %d, char %d: %s", e.Line, e.Column, e.Message)
}

type pattern struct {
	name string

	// value matches a whole lexeme and gives the token value from its
	// capture groups.
	value *regexp.Regexp
}

// Lexer splits text into tokens using a list of named patterns. Scanning is
// done by an ictiobus lexer: patterns are tried in the order they were added
// and the first one that matches produces the next token, so a token that is
// a prefix of another (such as "=" and "==") must be added after it.
//
// How a match becomes a token depends on the number of capture groups in its
// pattern. With none, the token has no value. With one, the group is the
// value. With two or more, the second group is the value.
//
// A Lexer must not be modified while it is being used; once set up it may be
// used concurrently.
type Lexer struct {
	scanner  lex.Lexer
	patterns []pattern
	classes  map[string]int
	ignored  map[string]bool
}

// New creates a Lexer with no patterns.
func New() *Lexer {
	return &Lexer{
		scanner: ictiobus.NewLazyLexer(),
		classes: map[string]int{},
		ignored: map[string]bool{},
	}
}

// AddPattern adds a pattern producing tokens with the given name. The pattern
// uses RE2 syntax and is matched only at the current position, with '.'
// matching newlines. A pattern that matches empty text is not allowed.
func (lx *Lexer) AddPattern(name, expr string) error {
	if name == "" {
		return fmt.Errorf("token name cannot be empty")
	}

	value, err := regexp.Compile(`^(?s:` + expr + `)$`)
	if err != nil {
		return fmt.Errorf("pattern for %s: %w", name, err)
	}
	if value.MatchString("") {
		return fmt.Errorf("pattern for %s: matches empty text", name)
	}

	scan, err := withoutCaptures(expr)
	if err != nil {
		return fmt.Errorf("pattern for %s: %w", name, err)
	}

	id := fmt.Sprintf("p%d", len(lx.patterns))
	lx.scanner.RegisterClass(lex.NewTokenClass(id, name), "")
	if err := lx.scanner.AddPattern(scan, lex.LexAs(id), "", 0); err != nil {
		return fmt.Errorf("pattern for %s: %w", name, err)
	}

	lx.classes[id] = len(lx.patterns)
	lx.patterns = append(lx.patterns, pattern{name: name, value: value})
	return nil
}

// Ignore sets tokens with the given names to be matched but left out of the
// output.
func (lx *Lexer) Ignore(names ...string) {
	for _, n := range names {
		lx.ignored[n] = true
	}
}

// TokenNames returns the names of the patterns in the order they were added.
func (lx *Lexer) TokenNames() []string {
	names := make([]string, len(lx.patterns))
	for i := range lx.patterns {
		names[i] = lx.patterns[i].name
	}
	return names
}

// Lex returns the tokens in src.
func (lx *Lexer) Lex(src string) ([]token.Token, error) {
	if len(lx.patterns) == 0 {
		if src == "" {
			return nil, nil
		}
		return nil, unexpectedAt(src, 0, 1, 1)
	}

	stream, err := lx.scanner.Lex(strings.NewReader(src))
	if err != nil {
		return nil, err
	}

	var tokens []token.Token
	pos, line, col := 0, 1, 1

	for stream.HasNext() {
		lexed := stream.Next()
		id := lexed.Class().ID()
		if id == lex.TokenEndOfText.ID() {
			break
		}

		idx, ok := lx.classes[id]
		if !ok {
			// anything else the scanner gives is an error token
			if pos < len(src) {
				return nil, unexpectedAt(src, pos, line, col)
			}
			return nil, &LexError{Line: line, Column: col, Message: lexed.Lexeme()}
		}

		text := lexed.Lexeme()
		p := lx.patterns[idx]
		if !lx.ignored[p.name] {
			tokens = append(tokens, p.token(text).At(line, col))
		}

		if n := strings.Count(text, "\n"); n > 0 {
			line += n
			col = 1 + utf8.RuneCountInString(text[strings.LastIndex(text, "\n")+1:])
		} else {
			col += utf8.RuneCountInString(text)
		}
		pos += len(text)
	}

	if pos < len(src) {
		return nil, unexpectedAt(src, pos, line, col)
	}

	return tokens, nil
}

// Source returns a token.Source over the tokens in src.
func (lx *Lexer) Source(src string) (*token.SliceSource, error) {
	tokens, err := lx.Lex(src)
	if err != nil {
		return nil, err
	}
	return token.NewSlice(tokens), nil
}

func (p pattern) token(lexeme string) token.Token {
	m := p.value.FindStringSubmatch(lexeme)
	switch {
	case m == nil || len(m) == 1:
		return token.Named(p.name)
	case len(m) == 2:
		return token.New(p.name, m[1])
	default:
		return token.New(p.name, m[2])
	}
}

func unexpectedAt(src string, pos, line, col int) *LexError {
	r, _ := utf8.DecodeRuneInString(src[pos:])
	return &LexError{Line: line, Column: col, Message: fmt.Sprintf("unexpected character %q", r)}
}

// withoutCaptures rewrites expr with every capture group made non-capturing.
// The scanner joins all patterns into one alternation and tells them apart
// by group index, so groups inside a pattern would shift the ones after it.
func withoutCaptures(expr string) (string, error) {
	re, err := syntax.Parse(expr, syntax.Perl|syntax.DotNL)
	if err != nil {
		return "", err
	}
	return uncapture(re).String(), nil
}

func uncapture(re *syntax.Regexp) *syntax.Regexp {
	for i := range re.Sub {
		re.Sub[i] = uncapture(re.Sub[i])
	}
	if re.Op == syntax.OpCapture {
		return re.Sub[0]
	}
	return re
}
