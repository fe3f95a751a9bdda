package grammar

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/dekarrin/simplegrammar/token"
	"golang.org/x/text/width"
)

var (
	// ErrStructure is the cause of every error that is due to the grammar
	// itself rather than the input being parsed.
	ErrStructure     = errors.New("invalid grammar")
	ErrUndefinedRule = errors.New("undefined rule")
	ErrNoRules       = errors.New("grammar has no rules")
	ErrNotValidated  = errors.New("grammar has not been validated")
	ErrLeftRecursion = errors.New("left recursion")

	// ErrSyntax is the cause of every error that is due to the input not
	// conforming to the grammar.
	ErrSyntax            = errors.New("syntax error")
	ErrUnexpectedToken   = errors.New("unexpected token")
	ErrUnexpectedEnd     = errors.New("unexpected end of input")
	ErrTrailingInput     = errors.New("trailing input")
	ErrLookaheadExceeded = errors.New("lookahead limit exceeded")
)

// Error is a typed error returned by grammar construction and validation. It
// contains a message as well as one or more causes; calling errors.Is with any
// of its causes returns true.
//
// Error should not be used directly; call newError to create one.
type Error struct {
	msg   string
	cause []error
}

func newError(msg string, causes ...error) Error {
	err := Error{msg: msg}
	if len(causes) > 0 {
		err.cause = make([]error, len(causes))
		copy(err.cause, causes)
	}
	return err
}

func structureError(cause error, format string, a ...interface{}) Error {
	return newError(fmt.Sprintf(format, a...), cause, ErrStructure)
}

// Error returns the message of the Error, followed by the message of its
// first cause if it has one.
func (e Error) Error() string {
	if e.msg == "" && e.cause != nil {
		return e.cause[0].Error()
	}
	if e.cause != nil {
		return e.cause[0].Error() + ": " + e.msg
	}
	return e.msg
}

// Unwrap returns the causes of the Error.
func (e Error) Unwrap() []error {
	if len(e.cause) > 0 {
		return e.cause
	}
	return nil
}

// Is returns whether any cause of the Error is target.
func (e Error) Is(target error) bool {
	for i := range e.cause {
		if e.cause[i] == target {
			return true
		}
	}
	return false
}

// SyntaxError is returned when parsing input that does not conform to the
// grammar. It records the token that could not be accepted, if there was one.
type SyntaxError struct {
	tok     token.Token
	hasTok  bool
	kind    error
	message string
}

func unexpectedToken(t token.Token) SyntaxError {
	if t.IsEnd() {
		return unexpectedEnd("")
	}
	return SyntaxError{
		tok:     t,
		hasTok:  true,
		kind:    ErrUnexpectedToken,
		message: "unexpected " + describe(t),
	}
}

func trailingInput(t token.Token) SyntaxError {
	return SyntaxError{
		tok:     t,
		hasTok:  true,
		kind:    ErrTrailingInput,
		message: "unexpected " + describe(t) + " after end of input was expected",
	}
}

func unexpectedEnd(detail string) SyntaxError {
	msg := "unexpected end of input"
	if detail != "" {
		msg += " (" + detail + ")"
	}
	return SyntaxError{
		kind:    ErrUnexpectedEnd,
		message: msg,
	}
}

func lookaheadExceeded(t token.Token, limit int) SyntaxError {
	se := SyntaxError{
		kind:    ErrLookaheadExceeded,
		message: fmt.Sprintf("input is still ambiguous after %d tokens of lookahead", limit),
	}
	if !t.IsEnd() {
		se.tok = t
		se.hasTok = true
	}
	return se
}

func describe(t token.Token) string {
	if t.HasValue {
		return fmt.Sprintf("%s %q", t.Name, t.Value)
	}
	return t.Name
}

func (se SyntaxError) Error() string {
	if se.Line() == 0 {
		return fmt.Sprintf("syntax error: %s", se.message)
	}
	return fmt.Sprintf("syntax error: around line %d, char %d: %s", se.Line(), se.Column(), se.message)
}

// Is returns whether target is ErrSyntax or the specific kind of syntax
// error that se is.
func (se SyntaxError) Is(target error) bool {
	return target == ErrSyntax || target == se.kind
}

// Token returns the offending token. The second return value is false if the
// error was not caused by a particular token, such as for an unexpected end of
// input.
func (se SyntaxError) Token() (token.Token, bool) {
	return se.tok, se.hasTok
}

// Line returns the line the offending token was on, 1-indexed, or 0 if it is
// not known.
func (se SyntaxError) Line() int {
	if !se.hasTok {
		return 0
	}
	return se.tok.Line
}

// Column returns the position in its line of the offending token, 1-indexed,
// or 0 if it is not known.
func (se SyntaxError) Column() int {
	if !se.hasTok {
		return 0
	}
	return se.tok.Column
}

// FullMessage shows the complete message of the error along with the
// offending line of the given source text and a cursor to the problem
// position.
func (se SyntaxError) FullMessage(source string) string {
	errMsg := se.Error()
	if cursor := se.SourceLineWithCursor(source); cursor != "" {
		errMsg = cursor + "\n" + errMsg
	}
	return errMsg
}

// SourceLineWithCursor returns the offending line of source followed by a
// line with a cursor under the problem position. Returns a blank string if the
// position of the error is not known or is outside of source.
func (se SyntaxError) SourceLineWithCursor(source string) string {
	line := se.Line()
	if line == 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	sourceLine := strings.TrimRight(lines[line-1], "\r")

	// cursor must account for wide runes so it lines up on a terminal
	runes := []rune(sourceLine)
	var cursor strings.Builder
	for i := 0; i < se.Column()-1 && i < len(runes); i++ {
		if runes[i] == '\t' {
			cursor.WriteRune('\t')
			continue
		}
		cursor.WriteString(strings.Repeat(" ", cellWidth(runes[i])))
	}

	return sourceLine + "\n" + cursor.String() + "^"
}

func cellWidth(r rune) int {
	if !unicode.IsGraphic(r) {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianFullwidth, width.EastAsianWide:
		return 2
	default:
		return 1
	}
}
