package grammar

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// ErrGrammarText is the cause of every LoadError.
var ErrGrammarText = errors.New("malformed grammar text")

// LoadError is returned when grammar text cannot be read. It gives the
// position in the text where reading failed.
type LoadError struct {
	Line    int
	Column  int
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("grammar text: line %d, char %d: %s", e.Line, e.Column, e.Message)
}

// Is returns whether target is ErrGrammarText.
func (e *LoadError) Is(target error) bool {
	return target == ErrGrammarText
}

// Load reads grammar text from r and returns the validated Grammar it
// describes.
//
// Grammar text is a series of rule definitions of the form
//
//	NAME[+]: ELEMENT ELEMENT ... ;
//
// where each definition adds an option to the rule NAME, and a trailing '+'
// on the name makes that option emit a node. Multiple options may also be
// given in one definition separated by '|'; they share the definition's emit
// flag. An element is one of:
//
//	RULE        reference to another rule; RULE+ forces a node, RULE- suppresses it
//	^           matches nothing; must be the only element of its option
//	{NAME}      a token with the given name
//	{NAME, "v"} a token with the given name and value
//	{}          any token
//
// Inside braces, a '+' after the name emits the token name and a '+' after the
// value position emits the token value, e.g. {IDENTIFIER+, +}. In quoted
// values a backslash escapes the next character. A '#' starts a comment that
// runs to the end of the line.
func Load(r io.Reader) (*Grammar, error) {
	g := New()
	if err := g.Read(r); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// LoadString is like Load but reads the grammar text from a string.
func LoadString(s string) (*Grammar, error) {
	return Load(strings.NewReader(s))
}

// LoadFile is like Load but reads the grammar text from the file at the given
// path.
func LoadFile(path string) (*Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Read adds the definitions in the grammar text read from r to g without
// validating it. g must not have been validated.
func (g *Grammar) Read(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	l := &loader{g: g, text: []rune(string(data)), line: 1, col: 1}
	return l.readAll()
}

type loader struct {
	g    *Grammar
	text []rune
	pos  int
	line int
	col  int
}

func (l *loader) peek() (rune, bool) {
	if l.pos >= len(l.text) {
		return 0, false
	}
	return l.text[l.pos], true
}

func (l *loader) next() rune {
	ch := l.text[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *loader) errorf(format string, a ...interface{}) error {
	return &LoadError{Line: l.line, Column: l.col, Message: fmt.Sprintf(format, a...)}
}

// unexpected gives an error for the character at the current position.
func (l *loader) unexpected() error {
	ch, ok := l.peek()
	if !ok {
		return l.errorf("unexpected end of input")
	}
	return l.errorf("unexpected character %q", ch)
}

func (l *loader) skipSpace() {
	for {
		ch, ok := l.peek()
		if !ok {
			return
		}
		if ch == '#' {
			for ok && ch != '\n' {
				l.next()
				ch, ok = l.peek()
			}
			continue
		}
		if !unicode.IsSpace(ch) {
			return
		}
		l.next()
	}
}

func isNameStart(ch rune) bool {
	return unicode.IsLetter(ch)
}

func isNamePart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_'
}

func (l *loader) readName() (string, error) {
	ch, ok := l.peek()
	if !ok || !isNameStart(ch) {
		return "", l.unexpected()
	}

	var sb strings.Builder
	for ok && isNamePart(ch) {
		sb.WriteRune(l.next())
		ch, ok = l.peek()
	}
	return sb.String(), nil
}

func (l *loader) readAll() error {
	for {
		l.skipSpace()
		if _, ok := l.peek(); !ok {
			return nil
		}
		if err := l.readDefinition(); err != nil {
			return err
		}
	}
}

func (l *loader) readDefinition() error {
	name, err := l.readName()
	if err != nil {
		return err
	}

	l.skipSpace()
	emit := false
	if ch, ok := l.peek(); ok && ch == '+' {
		l.next()
		emit = true
		l.skipSpace()
	}
	if ch, ok := l.peek(); !ok || ch != ':' {
		return l.unexpected()
	}
	l.next()

	opt := l.g.DefineOption(name, emit)
	for {
		l.skipSpace()
		ch, ok := l.peek()
		if !ok {
			return l.errorf("unexpected end of input in definition of %s", name)
		}

		if len(opt.Elements) == 1 {
			if _, isEmpty := opt.Elements[0].(Empty); isEmpty && ch != ';' && ch != '|' {
				return l.errorf("^ must be the only element of an option")
			}
		}

		switch {
		case ch == ';':
			l.next()
			return nil
		case ch == '|':
			l.next()
			opt = l.g.DefineOption(name, emit)
		case ch == '^':
			if len(opt.Elements) > 0 {
				return l.errorf("^ must be the only element of an option")
			}
			l.next()
			opt.AddEmpty()
		case ch == '{':
			tm, err := l.readMatcher()
			if err != nil {
				return err
			}
			opt.AddToken(tm)
		case isNameStart(ch):
			ref, err := l.readName()
			if err != nil {
				return err
			}
			l.skipSpace()
			override := Inherit
			if suffix, ok := l.peek(); ok && suffix == '+' {
				l.next()
				override = Force
			} else if ok && suffix == '-' {
				l.next()
				override = Suppress
			}
			opt.AddRule(ref, override)
		default:
			return l.unexpected()
		}
	}
}

func (l *loader) readMatcher() (TokenMatcher, error) {
	var tm TokenMatcher
	l.next() // the opening brace

	l.skipSpace()
	if ch, ok := l.peek(); ok && isNameStart(ch) {
		name, err := l.readName()
		if err != nil {
			return tm, err
		}
		tm.Name = name
		l.skipSpace()
	}
	if ch, ok := l.peek(); ok && ch == '+' {
		l.next()
		tm.EmitName = true
		l.skipSpace()
	}

	if ch, ok := l.peek(); ok && ch == ',' {
		l.next()
		l.skipSpace()
		if ch, ok := l.peek(); ok && ch == '"' {
			value, err := l.readQuoted()
			if err != nil {
				return tm, err
			}
			tm.Value = value
			tm.HasValue = true
			l.skipSpace()
		}
		if ch, ok := l.peek(); ok && ch == '+' {
			l.next()
			tm.EmitValue = true
			l.skipSpace()
		}
	}

	if ch, ok := l.peek(); !ok || ch != '}' {
		return tm, l.unexpected()
	}
	l.next()

	return tm, nil
}

func (l *loader) readQuoted() (string, error) {
	l.next() // the opening quote

	var sb strings.Builder
	for {
		ch, ok := l.peek()
		if !ok {
			return "", l.errorf("unexpected end of input in quoted value")
		}
		l.next()

		switch ch {
		case '"':
			return sb.String(), nil
		case '\\':
			if _, ok := l.peek(); !ok {
				return "", l.errorf("unexpected end of input in quoted value")
			}
			sb.WriteRune(l.next())
		default:
			sb.WriteRune(ch)
		}
	}
}
