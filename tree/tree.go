// Package tree contains the syntax tree produced by grammar parses. A node
// carries nothing but a label and an ordered list of children; rule names,
// token names, and token values all become labels.
package tree

import (
	"fmt"
	"strings"
)

const (
	levelEmpty       = "        "
	levelOngoing     = "  |     "
	levelPrefix      = "  |%s: "
	levelPrefixLast  = `  \%s: `
	levelPadChar     = '-'
	levelPadAmount   = 3
	leafValueQuoting = "(%q)"
)

func makeLevelPrefix(format, msg string) string {
	for len([]rune(msg)) < levelPadAmount {
		msg = string(levelPadChar) + msg
	}
	return fmt.Sprintf(format, msg)
}

// Node is a single node of a syntax tree.
type Node struct {
	Label    string  `json:"label"`
	Children []*Node `json:"children,omitempty"`
}

// New creates a new node with the given label and no children.
func New(label string) *Node {
	return &Node{Label: label}
}

// AddChild appends a new child with the given label to n and returns the new
// child.
func (n *Node) AddChild(label string) *Node {
	child := New(label)
	n.Children = append(n.Children, child)
	return child
}

// Len returns the number of direct children of n.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	return len(n.Children)
}

// IsLeaf returns whether n has no children.
func (n *Node) IsLeaf() bool {
	return n.Len() == 0
}

// Child returns the i-th child of n, or nil if there is no such child.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

// ChildValue returns the label of the i-th child of n. If there is no such
// child, the empty string is returned.
func (n *Node) ChildValue(i int) string {
	c := n.Child(i)
	if c == nil {
		return ""
	}
	return c.Label
}

// ChildLabelled returns the first direct child of n whose label is label, or
// nil if n has no such child.
func (n *Node) ChildLabelled(label string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Label == label {
			return c
		}
	}
	return nil
}

// ChildrenLabelled returns all direct children of n whose label is any of the
// given labels, in order.
func (n *Node) ChildrenLabelled(labels ...string) []*Node {
	if n == nil {
		return nil
	}
	var matched []*Node
	for _, c := range n.Children {
		for _, l := range labels {
			if c.Label == l {
				matched = append(matched, c)
				break
			}
		}
	}
	return matched
}

// ChildValues returns the labels of all direct children of n.
func (n *Node) ChildValues() []string {
	if n == nil {
		return nil
	}
	values := make([]string, len(n.Children))
	for i := range n.Children {
		values[i] = n.Children[i].Label
	}
	return values
}

// Walk calls fn on n and then on each descendant in depth-first pre-order. If
// fn returns false the descendants of that node are skipped.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// String returns a prettified representation of the entire tree suitable for
// use in line-by-line comparisons of tree structure. Two trees are considered
// identical if they produce identical String() output.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	return n.leveledStr("", "")
}

func (n *Node) leveledStr(firstPrefix, contPrefix string) string {
	var sb strings.Builder

	sb.WriteString(firstPrefix)
	if n.IsLeaf() {
		sb.WriteString(fmt.Sprintf(leafValueQuoting, n.Label))
	} else {
		sb.WriteString(fmt.Sprintf("( %s )", n.Label))
	}

	for i := range n.Children {
		sb.WriteRune('\n')
		var childFirst, childCont string
		if i+1 < len(n.Children) {
			childFirst = contPrefix + makeLevelPrefix(levelPrefix, "")
			childCont = contPrefix + levelOngoing
		} else {
			childFirst = contPrefix + makeLevelPrefix(levelPrefixLast, "")
			childCont = contPrefix + levelEmpty
		}
		sb.WriteString(n.Children[i].leveledStr(childFirst, childCont))
	}

	return sb.String()
}

// Copy returns a deep copy of n.
func (n *Node) Copy() *Node {
	if n == nil {
		return nil
	}
	cp := &Node{Label: n.Label}
	if n.Children != nil {
		cp.Children = make([]*Node, len(n.Children))
		for i := range n.Children {
			cp.Children[i] = n.Children[i].Copy()
		}
	}
	return cp
}

// Equal returns whether n is structurally identical to o. o may be a Node or
// a *Node; anything else is never equal.
func (n *Node) Equal(o any) bool {
	var other *Node
	switch v := o.(type) {
	case *Node:
		other = v
	case Node:
		other = &v
	default:
		return false
	}

	if n == nil || other == nil {
		return n == nil && other == nil
	}
	if n.Label != other.Label || len(n.Children) != len(other.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}
