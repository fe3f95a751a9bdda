package token

import "fmt"

// Source is a stream of tokens with arbitrary lookahead. Depth is 1-indexed
// from the next unconsumed token. Consumption is monotonic; a Source never
// rewinds.
type Source interface {
	// HasMore returns whether at least depth more tokens are available.
	HasMore(depth int) bool

	// Peek returns the token at the given depth without consuming it. It
	// panics if HasMore(depth) is false.
	Peek(depth int) Token

	// Next consumes and returns the next token. It panics if HasMore(1) is
	// false.
	Next() Token
}

// SliceSource is a Source backed by an in-memory slice of tokens.
//
// SliceSource should not be used directly; instead, create one with
// [NewSlice].
type SliceSource struct {
	tokens []Token
	cur    int
}

// NewSlice creates a Source that yields the given tokens in order. The slice
// is not copied and must not be modified while the source is in use.
func NewSlice(tokens []Token) *SliceSource {
	return &SliceSource{tokens: tokens}
}

// HasMore returns whether at least depth more tokens are available.
func (s *SliceSource) HasMore(depth int) bool {
	return depth > 0 && s.cur+depth <= len(s.tokens)
}

// Peek returns the token at the given depth without consuming it.
func (s *SliceSource) Peek(depth int) Token {
	if !s.HasMore(depth) {
		panic(fmt.Sprintf("peek at depth %d past end of token source", depth))
	}
	return s.tokens[s.cur+depth-1]
}

// Next consumes and returns the next token.
func (s *SliceSource) Next() Token {
	if !s.HasMore(1) {
		panic("next called on exhausted token source")
	}
	t := s.tokens[s.cur]
	s.cur++
	return t
}

// Remaining returns the number of tokens that have not been consumed.
func (s *SliceSource) Remaining() int {
	return len(s.tokens) - s.cur
}

// Without returns a copy of tokens with every token whose name is in ignored
// removed.
func Without(tokens []Token, ignored ...string) []Token {
	if len(ignored) == 0 {
		return tokens
	}
	skip := make(map[string]bool, len(ignored))
	for _, name := range ignored {
		skip[name] = true
	}

	kept := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if skip[t.Name] {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}
