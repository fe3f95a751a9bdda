// Package grammar contains a grammar-driven parser engine. A Grammar is a set
// of named rules, each with one or more options; an option is a sequence of
// token matchers, references to other rules, and empty markers. Parsing a
// token source against a grammar produces a tree.Node whose shape is chosen by
// per-option and per-reference emit flags.
//
// When the parser must pick among the options of a rule, it looks ahead as far
// as it needs to, keeping every option whose next token match is the most
// specific, until exactly one remains.
package grammar

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// Option is one alternative right-hand side of a rule.
type Option struct {
	// Emit is whether choosing this option adds a node labelled with the
	// rule name, unless the referencing RuleRef overrides it.
	Emit bool

	Elements []Element

	rule string
	g    *Grammar
}

// Rule returns the name of the rule that o is an option of.
func (o *Option) Rule() string {
	return o.rule
}

func (o *Option) add(e Element) *Option {
	if o.g != nil && o.g.frozen {
		panic("grammar is validated and can no longer be modified")
	}
	o.Elements = append(o.Elements, e)
	return o
}

// AddToken appends a token matcher to o.
func (o *Option) AddToken(tm TokenMatcher) *Option {
	return o.add(tm)
}

// AddRule appends a reference to the named rule to o.
func (o *Option) AddRule(name string, override Override) *Option {
	return o.add(RuleRef{Name: name, Override: override})
}

// AddEmpty appends an Empty element to o.
func (o *Option) AddEmpty() *Option {
	return o.add(Empty{})
}

func (o *Option) String() string {
	if len(o.Elements) == 0 {
		return ""
	}
	parts := make([]string, len(o.Elements))
	for i := range o.Elements {
		parts[i] = o.Elements[i].String()
	}
	return strings.Join(parts, " ")
}

// Grammar is a set of rules and a designated root rule. A Grammar is built up
// with DefineOption and then must be checked with Validate before it can be
// used to parse. Once validated, a Grammar can no longer be modified and is
// safe for concurrent use by multiple parses.
type Grammar struct {
	rules    map[string][]*Option
	order    []string
	root     string
	nullable map[string]bool
	frozen   bool
}

// New creates a new, empty Grammar.
func New() *Grammar {
	return &Grammar{
		rules: map[string][]*Option{},
	}
}

// DefineOption adds a new option to the rule with the given name, creating
// the rule if it does not yet exist, and returns the option so that elements
// can be added to it. The first rule ever defined becomes the root rule.
func (g *Grammar) DefineOption(rule string, emit bool) *Option {
	if g.frozen {
		panic("grammar is validated and can no longer be modified")
	}

	if _, ok := g.rules[rule]; !ok {
		g.order = append(g.order, rule)
		if g.root == "" {
			g.root = rule
		}
	}

	opt := &Option{Emit: emit, rule: rule, g: g}
	g.rules[rule] = append(g.rules[rule], opt)
	return opt
}

// HasRule returns whether the grammar defines a rule with the given name.
func (g *Grammar) HasRule(name string) bool {
	_, ok := g.rules[name]
	return ok
}

// Root returns the name of the root rule, or the empty string if no rules have
// been defined.
func (g *Grammar) Root() string {
	return g.root
}

// SetRoot sets the root rule. The rule must already be defined.
func (g *Grammar) SetRoot(name string) error {
	if !g.HasRule(name) {
		return structureError(ErrUndefinedRule, "%q", name)
	}
	g.root = name
	return nil
}

// RuleNames returns the names of all rules in the order they were first
// defined.
func (g *Grammar) RuleNames() []string {
	names := make([]string, len(g.order))
	copy(names, g.order)
	return names
}

// Options returns the options of the named rule in declaration order.
func (g *Grammar) Options(rule string) []*Option {
	opts := g.rules[rule]
	cp := make([]*Option, len(opts))
	copy(cp, opts)
	return cp
}

// Validated returns whether Validate has succeeded on g.
func (g *Grammar) Validated() bool {
	return g.frozen
}

// Validate checks that g is usable for parsing. Every rule reference must name
// a defined rule and no rule may be left-recursive. On success the grammar is
// frozen; calling Validate again on a frozen grammar does nothing.
func (g *Grammar) Validate() error {
	if g.frozen {
		return nil
	}
	if len(g.order) == 0 {
		return newError("", ErrNoRules, ErrStructure)
	}

	for _, name := range g.order {
		for i, opt := range g.rules[name] {
			for _, e := range opt.Elements {
				ref, ok := e.(RuleRef)
				if !ok {
					continue
				}
				if !g.HasRule(ref.Name) {
					return structureError(ErrUndefinedRule, "%q, referenced by option %d of %q", ref.Name, i+1, name)
				}
			}
		}
	}

	g.nullable = g.computeNullable()

	if cycle := g.findLeftRecursion(); cycle != nil {
		return structureError(ErrLeftRecursion, "%s", strings.Join(cycle, " -> "))
	}

	g.frozen = true
	return nil
}

// computeNullable finds every rule that can match without consuming a token.
func (g *Grammar) computeNullable() map[string]bool {
	nullable := map[string]bool{}

	updated := true
	for updated {
		updated = false
		for _, name := range g.order {
			if nullable[name] {
				continue
			}
			for _, opt := range g.rules[name] {
				if g.elementsNullable(opt.Elements, nullable) {
					nullable[name] = true
					updated = true
					break
				}
			}
		}
	}

	return nullable
}

func (g *Grammar) elementsNullable(elements []Element, nullable map[string]bool) bool {
	for _, e := range elements {
		switch el := e.(type) {
		case TokenMatcher:
			return false
		case RuleRef:
			if !nullable[el.Name] {
				return false
			}
		case Empty:
		default:
			panic(fmt.Sprintf("unknown element type %T", e))
		}
	}
	return true
}

// findLeftRecursion returns the first cycle of rules that can reach themselves
// without consuming a token, or nil if there is none.
func (g *Grammar) findLeftRecursion() []string {
	// leftmost rule references reachable from each rule
	edges := map[string][]string{}
	for _, name := range g.order {
		for _, opt := range g.rules[name] {
			for _, e := range opt.Elements {
				if ref, ok := e.(RuleRef); ok {
					edges[name] = append(edges[name], ref.Name)
					if !g.nullable[ref.Name] {
						break
					}
				} else if _, ok := e.(TokenMatcher); ok {
					break
				}
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := map[string]int{}
	var path []string

	var visit func(name string) []string
	visit = func(name string) []string {
		state[name] = visiting
		path = append(path, name)
		for _, next := range edges[name] {
			switch state[next] {
			case visiting:
				for i := range path {
					if path[i] == next {
						cycle := append([]string{}, path[i:]...)
						return append(cycle, next)
					}
				}
			case unvisited:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		return nil
	}

	for _, name := range g.order {
		if state[name] == unvisited {
			if cycle := visit(name); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// Nullable returns whether the named rule can match without consuming any
// tokens. It is only meaningful on a validated grammar.
func (g *Grammar) Nullable(rule string) bool {
	return g.nullable[rule]
}

// String gives the grammar in the textual format accepted by Load. Each option
// is written as its own definition.
func (g *Grammar) String() string {
	var sb strings.Builder
	for _, name := range g.order {
		for _, opt := range g.rules[name] {
			sb.WriteString(name)
			if opt.Emit {
				sb.WriteRune('+')
			}
			sb.WriteString(":")
			if len(opt.Elements) > 0 {
				sb.WriteRune(' ')
				sb.WriteString(opt.String())
			}
			sb.WriteString(";\n")
		}
	}
	return sb.String()
}

// Table renders the rules of the grammar as a text table with one row per
// option, wrapped to fit within the given width.
func (g *Grammar) Table(width int) string {
	data := [][]string{{"RULE", "EMIT", "OPTION"}}
	for _, name := range g.order {
		for i, opt := range g.rules[name] {
			ruleCol := ""
			if i == 0 {
				ruleCol = name
				if name == g.root {
					ruleCol += " (root)"
				}
			}
			emitCol := ""
			if opt.Emit {
				emitCol = "+"
			}
			optCol := opt.String()
			if optCol == "" {
				optCol = "(nothing)"
			}
			data = append(data, []string{ruleCol, emitCol, optCol})
		}
	}

	return rosed.Edit("").
		InsertTableOpts(0, data, width, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}
