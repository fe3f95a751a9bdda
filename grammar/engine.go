package grammar

import "github.com/dekarrin/simplegrammar/token"

// candidate is one way the pending elements can be expanded so that the
// tokens seen so far are accepted. stack holds what is left to match after the
// most recent token and trail holds the options chosen to get there.
type candidate struct {
	stack *elemStack
	trail *trail
}

// explorer collects the candidates that accept a single lookahead token with
// the greatest specificity.
type explorer struct {
	g     *Grammar
	tok   token.Token
	best  Match
	found []candidate
}

// explore walks stack depth-first, branching on every option of every rule
// reference it meets, until each branch reaches a token matcher or runs out of
// elements.
func (x *explorer) explore(stack *elemStack, tr *trail) {
	for !stack.empty() {
		var e Element
		e, stack = stack.pop()

		switch el := e.(type) {
		case Empty:
			continue
		case TokenMatcher:
			m := el.Match(x.tok)
			if m == MatchNone {
				return
			}
			if m > x.best {
				x.best = m
				x.found = nil
			}
			if m == x.best {
				x.found = append(x.found, candidate{stack: stack, trail: tr})
			}
			return
		case RuleRef:
			for _, opt := range x.g.rules[el.Name] {
				x.explore(stack.pushOption(opt), tr.push(opt))
			}
			return
		}
	}

	// an exhausted branch accepts only the end of input
	if x.tok.IsEnd() {
		x.found = append(x.found, candidate{stack: stack, trail: tr})
	}
}

// decide looks ahead as many tokens as needed to find the single expansion of
// the rule reference on top of stack, and queues the chosen options onto the
// expansion stack with the outermost option on top.
func (p *parser) decide(stack *elemStack) error {
	seeds := []candidate{{stack: stack}}

	for depth := 1; ; depth++ {
		if p.maxLookahead > 0 && depth > p.maxLookahead {
			return lookaheadExceeded(p.tokenAt(1), p.maxLookahead)
		}

		tok := p.tokenAt(depth)
		x := &explorer{g: p.g, tok: tok}
		for _, c := range seeds {
			x.explore(c.stack, c.trail)
		}

		switch {
		case len(x.found) == 0:
			return unexpectedToken(tok)
		case len(x.found) == 1:
			for _, opt := range x.found[0].trail.options() {
				p.expansion = append(p.expansion, opt)
			}
			return nil
		case tok.IsEnd():
			return unexpectedEnd("input is ambiguous")
		}

		seeds = x.found
	}
}

func (p *parser) tokenAt(depth int) token.Token {
	if p.src.HasMore(depth) {
		return p.src.Peek(depth)
	}
	return token.End()
}
