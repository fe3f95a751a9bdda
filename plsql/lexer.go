// Package plsql contains a lexer for PL/SQL source code, a lexer for the
// annotations that may be written inside PL/SQL comments, and a grammar for
// PL/SQL package specifications that the two feed into.
package plsql

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/dekarrin/simplegrammar/token"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Names of the tokens produced by the Lexer.
const (
	Identifier            = "IDENTIFIER"
	QuotedIdentifier      = "QUOTED_IDENTIFIER"
	LeftBracket           = "LEFT_BRACKET"
	RightBracket          = "RIGHT_BRACKET"
	Dot                   = "DOT"
	Comma                 = "COMMA"
	Semicolon             = "SEMICOLON"
	Percentage            = "PERCENTAGE"
	NumberLiteral         = "NUMBER_LITERAL"
	StringLiteral         = "STRING_LITERAL"
	LogicalOperator       = "LOGICAL_OPERATOR"
	ArithmeticOperator    = "ARITHMETIC_OPERATOR"
	ConcatenationOperator = "CONCATENATION_OPERATOR"
	Assignment            = "ASSIGNMENT"
	NamedNotation         = "NAMED_NOTATION"
	Space                 = "SPACE"
	ShortComment          = "SHORT_COMMENT"
	LongComment           = "LONG_COMMENT"
	Documentation         = "DOCUMENTATION"
)

// Config holds the settings of a Lexer.
type Config struct {
	// Ignored is the names of tokens that are dropped from the output.
	Ignored []string

	// LogicalWords is the identifiers that are lexed as LOGICAL_OPERATOR
	// tokens instead of IDENTIFIER tokens. They must be upper case.
	LogicalWords []string

	// MaxIdentifierLength is the longest an unquoted identifier may be. Zero
	// means no limit.
	MaxIdentifierLength int

	// Annotations enables lexing of annotations inside of comments. When set,
	// a comment that contains an '@' is replaced with the annotation tokens
	// lexed from its text, unless the text cannot be lexed as annotations.
	Annotations bool
}

// DefaultConfig returns the Config used for lexing PL/SQL package
// specifications: whitespace and non-documentation comments are ignored,
// AND, OR, and NOT are logical operators, identifiers are limited to 30
// characters, and annotations are lexed.
func DefaultConfig() Config {
	return Config{
		Ignored:             []string{Space, ShortComment, LongComment},
		LogicalWords:        []string{"AND", "OR", "NOT"},
		MaxIdentifierLength: 30,
		Annotations:         true,
	}
}

// LexError is returned when source text cannot be lexed.
type LexError struct {
	Line    int
	Column  int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexing error: around line %d, char %d: %s", e.Line, e.Column, e.Message)
}

// Lexer turns PL/SQL source text into tokens. A Lexer holds no state between
// calls and may be used concurrently.
type Lexer struct {
	cfg     Config
	ignored map[string]bool
	logical map[string]bool
}

// NewLexer creates a Lexer with the given configuration.
func NewLexer(cfg Config) *Lexer {
	lx := &Lexer{
		cfg:     cfg,
		ignored: map[string]bool{},
		logical: map[string]bool{},
	}
	for _, name := range cfg.Ignored {
		lx.ignored[name] = true
	}
	for _, word := range cfg.LogicalWords {
		lx.logical[word] = true
	}
	return lx
}

// Lex reads all of r and returns the tokens in it.
func (lx *Lexer) Lex(r io.Reader) ([]token.Token, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return lx.LexString(string(data))
}

// Source reads all of r and returns a token.Source over the tokens in it.
func (lx *Lexer) Source(r io.Reader) (*token.SliceSource, error) {
	tokens, err := lx.Lex(r)
	if err != nil {
		return nil, err
	}
	return token.NewSlice(tokens), nil
}

// LexString returns the tokens in the given source text.
func (lx *Lexer) LexString(src string) ([]token.Token, error) {
	s := &scanner{
		lx:    lx,
		upper: cases.Upper(language.Und),
		state: lfToken,
		name:  Space,
		line:  1,
		col:   1,
	}

	for _, ch := range src {
		if err := s.step(ch); err != nil {
			return nil, err
		}
		if ch == '\n' {
			s.line++
			s.col = 1
		} else {
			s.col++
		}
	}

	if err := s.finish(); err != nil {
		return nil, err
	}
	return s.tokens, nil
}

type lexState int

const (
	lfToken lexState = iota
	rQuotedIdentifier
	rIdentifier
	lfLongCommentStart
	rLongComment
	lfLongCommentEnd
	lfShortCommentStart
	rShortComment
	lfAssignment
	rIntegerPart
	rDecimalPart
	rStringLiteral
	lfSecondQuote
	lfNamedNotation
	lfConcatenation
	lfLessCompound
	lfMoreCompound
	lfNonEqual
)

type scanner struct {
	lx    *Lexer
	upper cases.Caser
	state lexState

	name      string
	value     strings.Builder
	valueLen  int
	startLine int
	startCol  int

	// position of the character being stepped
	line int
	col  int

	tokens []token.Token
}

func (s *scanner) errorf(format string, a ...interface{}) error {
	return &LexError{Line: s.line, Column: s.col, Message: fmt.Sprintf(format, a...)}
}

// begin starts a new pending token at the current character.
func (s *scanner) begin(name string) {
	s.name = name
	s.startLine = s.line
	s.startCol = s.col
}

func (s *scanner) append(ch rune) {
	if s.valueLen == 0 && s.name == Space {
		s.startLine = s.line
		s.startCol = s.col
	}
	s.value.WriteRune(ch)
	s.valueLen++
}

// single emits a complete one-character token at the current position and
// goes back to looking for whitespace.
func (s *scanner) single(name string, value string) {
	s.flush()
	s.begin(name)
	s.value.WriteString(value)
	s.flush()
	s.name = Space
	s.state = lfToken
}

// toSpace ends the pending token and goes back to looking for a token.
func (s *scanner) toSpace() {
	s.flush()
	s.name = Space
	s.state = lfToken
}

func (s *scanner) push(t token.Token) {
	if t.Name == "" || s.lx.ignored[t.Name] {
		return
	}
	if t.Name == Space && t.Value == "" {
		return
	}
	s.tokens = append(s.tokens, t)
}

func (s *scanner) emit(name, value string) {
	s.push(token.New(name, value).At(s.startLine, s.startCol))
}

// flush emits the pending token, if there is one.
func (s *scanner) flush() {
	name := s.name
	value := s.value.String()
	if name == Identifier {
		value = s.upper.String(value)
	}

	switch {
	case name == Identifier && s.lx.logical[value]:
		s.emit(LogicalOperator, value)
	case name == LongComment && strings.HasPrefix(value, "*"):
		s.emit(Documentation, value[1:])
	case name == LongComment || name == ShortComment:
		s.comment(name, value)
	default:
		s.emit(name, value)
	}

	s.name = ""
	s.value.Reset()
	s.valueLen = 0
}

// comment emits the annotations in a comment, or the comment itself if it has
// none.
func (s *scanner) comment(name, text string) {
	if s.lx.cfg.Annotations && strings.Contains(text, "@") {
		// comment text starts after the two-character opener
		annotations, err := lexAnnotations(text, s.startLine, s.startCol+2)
		if err == nil {
			for _, t := range annotations {
				s.push(t)
			}
			return
		}
	}
	s.emit(name, text)
}

func (s *scanner) step(ch rune) error {
	switch s.state {
	case lfToken:
		return s.lookForToken(ch)
	case rQuotedIdentifier:
		if ch == '"' {
			if s.valueLen == 0 {
				return s.errorf("quoted identifier can't be empty")
			}
			s.toSpace()
			return nil
		}
		s.append(ch)
	case rIdentifier:
		if isIdentifierPart(ch) {
			if max := s.lx.cfg.MaxIdentifierLength; max > 0 && s.valueLen >= max {
				return s.errorf("identifier too long")
			}
			s.append(ch)
			return nil
		}
		s.toSpace()
		return s.lookForToken(ch)
	case lfLongCommentStart:
		if ch == '*' {
			s.state = rLongComment
			return nil
		}
		s.name = ArithmeticOperator
		s.value.WriteRune('/')
		s.toSpace()
		return s.lookForToken(ch)
	case rLongComment:
		if ch == '*' {
			s.state = lfLongCommentEnd
			return nil
		}
		s.value.WriteRune(ch)
	case lfLongCommentEnd:
		if ch == '/' {
			s.toSpace()
			return nil
		}
		s.value.WriteRune('*')
		if ch == '*' {
			return nil
		}
		s.value.WriteRune(ch)
		s.state = rLongComment
	case lfShortCommentStart:
		if ch == '-' {
			s.state = rShortComment
			return nil
		}
		s.name = ArithmeticOperator
		s.value.WriteRune('-')
		s.toSpace()
		return s.lookForToken(ch)
	case rShortComment:
		if ch == '\n' {
			s.toSpace()
			return s.lookForToken(ch)
		}
		s.value.WriteRune(ch)
	case lfAssignment:
		if ch != '=' {
			return s.errorf("unexpected character %q", ch)
		}
		s.value.WriteString(":=")
		s.toSpace()
	case rIntegerPart:
		if unicode.IsDigit(ch) {
			s.append(ch)
			return nil
		}
		if ch == '.' {
			s.append(ch)
			s.state = rDecimalPart
			return nil
		}
		s.toSpace()
		return s.lookForToken(ch)
	case rDecimalPart:
		if unicode.IsDigit(ch) {
			s.append(ch)
			return nil
		}
		s.toSpace()
		return s.lookForToken(ch)
	case rStringLiteral:
		if ch == '\'' {
			s.state = lfSecondQuote
			return nil
		}
		s.append(ch)
	case lfSecondQuote:
		if ch == '\'' {
			s.append('\'')
			s.state = rStringLiteral
			return nil
		}
		s.toSpace()
		return s.lookForToken(ch)
	case lfNamedNotation:
		if ch == '>' {
			s.name = NamedNotation
			s.value.WriteRune(ch)
			s.toSpace()
			return nil
		}
		s.toSpace()
		return s.lookForToken(ch)
	case lfConcatenation:
		if ch != '|' {
			return s.errorf("unexpected character %q", ch)
		}
		s.value.WriteString("||")
		s.toSpace()
	case lfLessCompound:
		if ch == '>' || ch == '=' {
			s.value.WriteRune(ch)
			s.toSpace()
			return nil
		}
		s.toSpace()
		return s.lookForToken(ch)
	case lfMoreCompound:
		if ch == '=' {
			s.value.WriteRune(ch)
			s.toSpace()
			return nil
		}
		s.toSpace()
		return s.lookForToken(ch)
	case lfNonEqual:
		if ch != '=' {
			return s.errorf("unexpected character %q", ch)
		}
		s.value.WriteString("!=")
		s.toSpace()
	default:
		panic(fmt.Sprintf("unknown lexer state %d", s.state))
	}
	return nil
}

// identifiers start with any letter, so they may continue with any letter
// too.
func isIdentifierPart(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '$' || ch == '#'
}

func (s *scanner) lookForToken(ch rune) error {
	switch {
	case unicode.IsLetter(ch):
		s.flush()
		s.begin(Identifier)
		s.append(ch)
		s.state = rIdentifier
	case ch == '"':
		s.flush()
		s.begin(QuotedIdentifier)
		s.state = rQuotedIdentifier
	case unicode.IsSpace(ch):
		if s.name != Space {
			s.flush()
			s.name = Space
		}
		s.append(ch)
	case ch == '(':
		s.single(LeftBracket, "(")
	case ch == ')':
		s.single(RightBracket, ")")
	case ch == '%':
		s.single(Percentage, "%")
	case ch == '.':
		s.single(Dot, ".")
	case ch == ';':
		s.single(Semicolon, ";")
	case ch == ',':
		s.single(Comma, ",")
	case ch == '*' || ch == '+':
		s.single(ArithmeticOperator, string(ch))
	case ch == '/':
		s.flush()
		s.begin(LongComment)
		s.state = lfLongCommentStart
	case ch == '-':
		s.flush()
		s.begin(ShortComment)
		s.state = lfShortCommentStart
	case ch == ':':
		s.flush()
		s.begin(Assignment)
		s.state = lfAssignment
	case unicode.IsDigit(ch):
		s.flush()
		s.begin(NumberLiteral)
		s.append(ch)
		s.state = rIntegerPart
	case ch == '\'':
		s.flush()
		s.begin(StringLiteral)
		s.state = rStringLiteral
	case ch == '=':
		s.flush()
		s.begin(LogicalOperator)
		s.value.WriteRune(ch)
		s.state = lfNamedNotation
	case ch == '|':
		s.flush()
		s.begin(ConcatenationOperator)
		s.state = lfConcatenation
	case ch == '<':
		s.flush()
		s.begin(LogicalOperator)
		s.value.WriteRune(ch)
		s.state = lfLessCompound
	case ch == '>':
		s.flush()
		s.begin(LogicalOperator)
		s.value.WriteRune(ch)
		s.state = lfMoreCompound
	case ch == '!':
		s.flush()
		s.begin(LogicalOperator)
		s.state = lfNonEqual
	default:
		return s.errorf("unexpected character %q", ch)
	}
	return nil
}

// finish flushes whatever token is pending at the end of input.
func (s *scanner) finish() error {
	switch s.state {
	case lfToken, rIdentifier, rIntegerPart, rDecimalPart, rShortComment, lfSecondQuote,
		lfLessCompound, lfMoreCompound, lfNamedNotation:
		s.flush()
	case lfLongCommentStart:
		s.name = ArithmeticOperator
		s.value.WriteRune('/')
		s.flush()
	case lfShortCommentStart:
		s.name = ArithmeticOperator
		s.value.WriteRune('-')
		s.flush()
	default:
		return s.errorf("unexpected end of input")
	}
	return nil
}
