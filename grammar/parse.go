package grammar

import (
	"fmt"
	"io"
	"log"

	"github.com/dekarrin/simplegrammar/token"
	"github.com/dekarrin/simplegrammar/tree"
)

// ParseOptions modifies how a parse is carried out. The zero value parses
// from the grammar's root rule with no tracing and unlimited lookahead.
type ParseOptions struct {
	// Root is the rule to start from. If empty, the grammar's root rule is
	// used.
	Root string

	// Trace enables a line of output before every step of the parse giving
	// the next token and the pending elements.
	Trace bool

	// TraceOutput receives trace lines. If nil, trace lines are written to
	// the standard logger.
	TraceOutput io.Writer

	// MaxLookahead limits how many tokens the parser may look ahead to choose
	// among options. Zero means no limit.
	MaxLookahead int
}

type parser struct {
	g            *Grammar
	src          token.Source
	trace        bool
	traceOut     io.Writer
	maxLookahead int

	// options already chosen for upcoming rule references, outermost last.
	expansion []*Option
}

// Parse parses all tokens in src starting from the root rule and returns the
// resulting tree. The grammar must have been validated.
func (g *Grammar) Parse(src token.Source) (*tree.Node, error) {
	return g.ParseWith(src, ParseOptions{})
}

// ParseTokens is a convenience for parsing an in-memory slice of tokens.
func (g *Grammar) ParseTokens(tokens []token.Token) (*tree.Node, error) {
	return g.Parse(token.NewSlice(tokens))
}

// ParseWith parses all tokens in src according to the given options. On
// success the returned tree's root is labelled with the name of the root rule.
// On failure no tree is returned; the error is a SyntaxError if the input was
// at fault and an Error if the grammar was.
func (g *Grammar) ParseWith(src token.Source, opts ParseOptions) (*tree.Node, error) {
	if !g.frozen {
		return nil, newError("call Validate before parsing", ErrNotValidated, ErrStructure)
	}

	root := opts.Root
	if root == "" {
		root = g.root
	}
	if !g.HasRule(root) {
		return nil, structureError(ErrUndefinedRule, "%q", root)
	}

	p := &parser{
		g:            g,
		src:          src,
		trace:        opts.Trace,
		traceOut:     opts.TraceOutput,
		maxLookahead: opts.MaxLookahead,
	}
	return p.run(root)
}

func (p *parser) run(root string) (*tree.Node, error) {
	rootNode := tree.New(root)

	var stack *elemStack
	stack = stack.push(RuleRef{Name: root, Override: Suppress})
	nodes := []*tree.Node{rootNode}

	for !stack.empty() && p.src.HasMore(1) {
		if p.trace {
			p.traceStep(stack)
		}

		top, rest := stack.pop()
		switch el := top.(type) {
		case Empty:
			stack = rest
			nodes = nodes[:len(nodes)-1]
		case TokenMatcher:
			tok := p.src.Next()
			if el.Match(tok) == MatchNone {
				return nil, unexpectedToken(tok)
			}

			parent := nodes[len(nodes)-1]
			if el.EmitName {
				parent = parent.AddChild(tok.Name)
			}
			if el.EmitValue {
				parent.AddChild(tok.Value)
			}

			nodes = nodes[:len(nodes)-1]
			stack = rest
		case RuleRef:
			if len(p.expansion) == 0 {
				if err := p.decide(stack); err != nil {
					return nil, err
				}
				continue
			}

			opt := p.expansion[len(p.expansion)-1]
			p.expansion = p.expansion[:len(p.expansion)-1]
			if opt.rule != el.Name {
				panic(fmt.Sprintf("expansion for rule %q used for reference to %q", opt.rule, el.Name))
			}

			parent := nodes[len(nodes)-1]
			nodes = nodes[:len(nodes)-1]
			if el.emits(opt) {
				parent = parent.AddChild(el.Name)
			}
			for range opt.Elements {
				nodes = append(nodes, parent)
			}

			stack = rest.pushOption(opt)
		default:
			panic(fmt.Sprintf("unknown element type %T", top))
		}
	}

	if p.src.HasMore(1) {
		return nil, trailingInput(p.src.Peek(1))
	}
	if !p.g.nullableStack(stack) {
		return nil, unexpectedEnd("")
	}

	return rootNode, nil
}

// nullableStack returns whether every element left on stack can match
// without consuming a token.
func (g *Grammar) nullableStack(stack *elemStack) bool {
	for cur := stack; cur != nil; cur = cur.next {
		switch el := cur.top.(type) {
		case TokenMatcher:
			return false
		case RuleRef:
			if !g.nullable[el.Name] {
				return false
			}
		}
	}
	return true
}

func (p *parser) traceStep(stack *elemStack) {
	next := p.src.Peek(1)
	if p.traceOut != nil {
		fmt.Fprintf(p.traceOut, "%s - %s\n", next.Short(), stack.String())
	} else {
		log.Printf("TRACE %s - %s", next.Short(), stack.String())
	}
}
