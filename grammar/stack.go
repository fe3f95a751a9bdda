package grammar

import "strings"

// elemStack is an immutable linked stack of pending elements. Pushing and
// popping produce new stacks that share structure with the old one, so a
// stack can be branched for every option of a rule without copying.
type elemStack struct {
	top  Element
	next *elemStack
	size int
}

// the nil *elemStack is the empty stack.

func (s *elemStack) empty() bool {
	return s == nil
}

func (s *elemStack) len() int {
	if s == nil {
		return 0
	}
	return s.size
}

func (s *elemStack) push(e Element) *elemStack {
	return &elemStack{top: e, next: s, size: s.len() + 1}
}

// pushOption pushes the elements of opt so that its first element is on top.
func (s *elemStack) pushOption(opt *Option) *elemStack {
	for i := len(opt.Elements) - 1; i >= 0; i-- {
		s = s.push(opt.Elements[i])
	}
	return s
}

func (s *elemStack) pop() (Element, *elemStack) {
	return s.top, s.next
}

// String lists the elements top-first, the way parse traces show them.
func (s *elemStack) String() string {
	var parts []string
	for cur := s; cur != nil; cur = cur.next {
		parts = append(parts, traceElement(cur.top))
	}
	return strings.Join(parts, " ")
}

// trail is an immutable linked stack of the options chosen while exploring a
// candidate expansion. The most recently chosen option is on top.
type trail struct {
	opt  *Option
	next *trail
}

func (t *trail) push(opt *Option) *trail {
	return &trail{opt: opt, next: t}
}

// options returns the options of t with the most recently chosen first.
func (t *trail) options() []*Option {
	var opts []*Option
	for cur := t; cur != nil; cur = cur.next {
		opts = append(opts, cur.opt)
	}
	return opts
}
