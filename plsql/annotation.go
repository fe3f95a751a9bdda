package plsql

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dekarrin/simplegrammar/token"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Names of the tokens produced when lexing annotations.
const (
	AnnotationStart             = "ANNOTATION_START"
	AnnotationEnd               = "ANNOTATION_END"
	AnnotationName              = "ANNOTATION_NAME"
	AnnotationIdentifier        = "ANNOTATION_IDENTIFIER"
	AnnotationStringLiteral     = "ANNOTATION_STRING_LITERAL"
	AnnotationNumberLiteral     = "ANNOTATION_NUMBER_LITERAL"
	AnnotationLeftBracket       = "ANNOTATION_LEFT_BRACKET"
	AnnotationRightBracket      = "ANNOTATION_RIGHT_BRACKET"
	AnnotationLeftCurlyBracket  = "ANNOTATION_LEFT_CURLY_BRACKET"
	AnnotationRightCurlyBracket = "ANNOTATION_RIGHT_CURLY_BRACKET"
	AnnotationEquation          = "ANNOTATION_EQUATION"
	AnnotationComma             = "ANNOTATION_COMMA"
)

var annotationPunctuation = map[rune]string{
	'(': AnnotationLeftBracket,
	')': AnnotationRightBracket,
	'{': AnnotationLeftCurlyBracket,
	'}': AnnotationRightCurlyBracket,
	'=': AnnotationEquation,
	',': AnnotationComma,
}

// LexAnnotations lexes the text of a comment as annotations. The returned
// tokens always begin with ANNOTATION_START and end with ANNOTATION_END.
func LexAnnotations(text string) ([]token.Token, error) {
	return lexAnnotations(text, 1, 1)
}

type annotationState int

const (
	aLookForToken annotationState = iota
	aLookForName
	aName
	aString
	aEscaped
	aIdentifier
	aInteger
	aDecimal
)

// lexAnnotations lexes text as annotations, giving tokens positions relative
// to the given starting line and column.
func lexAnnotations(text string, line, col int) ([]token.Token, error) {
	upper := cases.Upper(language.Und)
	tokens := []token.Token{token.Named(AnnotationStart).At(line, col)}

	state := aLookForToken
	var value strings.Builder
	var pendingName string
	var startLine, startCol int

	begin := func(name string, st annotationState) {
		pendingName = name
		startLine, startCol = line, col
		value.Reset()
		state = st
	}
	flush := func() {
		v := value.String()
		if pendingName == AnnotationName || pendingName == AnnotationIdentifier {
			v = upper.String(v)
		}
		tokens = append(tokens, token.New(pendingName, v).At(startLine, startCol))
		value.Reset()
		state = aLookForToken
	}
	unexpected := func(ch rune) error {
		return &LexError{Line: line, Column: col, Message: fmt.Sprintf("unexpected character %q in annotation", ch)}
	}

	// endWord finishes a name, identifier, or number on whitespace or
	// punctuation.
	endWord := func(ch rune) error {
		if unicode.IsSpace(ch) {
			flush()
			return nil
		}
		if punct, ok := annotationPunctuation[ch]; ok {
			flush()
			tokens = append(tokens, token.New(punct, string(ch)).At(line, col))
			return nil
		}
		return unexpected(ch)
	}

	for _, ch := range text {
		var err error

		switch state {
		case aLookForToken:
			switch {
			case ch == '@':
				begin(AnnotationName, aLookForName)
			case ch == '"':
				begin(AnnotationStringLiteral, aString)
			case unicode.IsLetter(ch):
				begin(AnnotationIdentifier, aIdentifier)
				value.WriteRune(ch)
			case unicode.IsDigit(ch) || ch == '-':
				begin(AnnotationNumberLiteral, aInteger)
				value.WriteRune(ch)
			case ch == '.':
				begin(AnnotationNumberLiteral, aDecimal)
				value.WriteRune(ch)
			case unicode.IsSpace(ch):
			default:
				if punct, ok := annotationPunctuation[ch]; ok {
					tokens = append(tokens, token.New(punct, string(ch)).At(line, col))
				} else {
					err = unexpected(ch)
				}
			}
		case aLookForName:
			if !unicode.IsLetter(ch) {
				err = unexpected(ch)
				break
			}
			value.WriteRune(ch)
			state = aName
		case aName, aIdentifier:
			if unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' {
				value.WriteRune(ch)
			} else {
				err = endWord(ch)
			}
		case aString:
			switch ch {
			case '\\':
				state = aEscaped
			case '"':
				flush()
			default:
				value.WriteRune(ch)
			}
		case aEscaped:
			value.WriteRune(ch)
			state = aString
		case aInteger:
			if ch == '.' {
				value.WriteRune(ch)
				state = aDecimal
			} else if unicode.IsDigit(ch) {
				value.WriteRune(ch)
			} else {
				err = endWord(ch)
			}
		case aDecimal:
			if unicode.IsDigit(ch) {
				value.WriteRune(ch)
			} else {
				err = endWord(ch)
			}
		}

		if err != nil {
			return nil, err
		}

		if ch == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	switch state {
	case aLookForToken:
	case aName, aIdentifier, aInteger, aDecimal:
		flush()
	default:
		return nil, &LexError{Line: line, Column: col, Message: "unexpected end of input in annotation"}
	}

	tokens = append(tokens, token.Named(AnnotationEnd).At(line, col))
	return tokens, nil
}
