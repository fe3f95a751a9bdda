package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTree() *Node {
	root := New("S")
	a := root.AddChild("A")
	a.AddChild("x")
	a.AddChild("y")
	root.AddChild("B").AddChild("z")
	return root
}

func Test_Node_String(t *testing.T) {
	assert := assert.New(t)

	expect := "( S )\n" +
		"  |---: ( A )\n" +
		"  |       |---: (\"x\")\n" +
		"  |       \\---: (\"y\")\n" +
		"  \\---: ( B )\n" +
		"          \\---: (\"z\")"

	assert.Equal(expect, sampleTree().String())
}

func Test_Node_Lookups(t *testing.T) {
	assert := assert.New(t)

	root := sampleTree()

	assert.Equal("A", root.ChildValue(0))
	assert.Equal("", root.ChildValue(5))
	assert.Nil(root.Child(-1))
	assert.Equal("z", root.ChildLabelled("B").ChildValue(0))
	assert.Nil(root.ChildLabelled("C"))
	assert.Len(root.ChildrenLabelled("A", "B"), 2)
	assert.Equal([]string{"x", "y"}, root.Child(0).ChildValues())

	var nilNode *Node
	assert.Nil(nilNode.ChildLabelled("A"))
	assert.Equal("", nilNode.ChildValue(0))
}

func Test_Node_CopyAndEqual(t *testing.T) {
	assert := assert.New(t)

	orig := sampleTree()
	cp := orig.Copy()

	assert.True(orig.Equal(cp))
	assert.True(orig.Equal(*cp))
	assert.False(orig.Equal("S"))

	cp.Children[0].Children[0].Label = "changed"
	assert.False(orig.Equal(cp))
	assert.Equal("x", orig.Children[0].ChildValue(0))
}

func Test_Node_Walk(t *testing.T) {
	assert := assert.New(t)

	var seen []string
	sampleTree().Walk(func(n *Node) bool {
		seen = append(seen, n.Label)
		return n.Label != "A"
	})

	assert.Equal([]string{"S", "A", "B", "z"}, seen)
}

func Test_Node_Binary(t *testing.T) {
	assert := assert.New(t)

	orig := sampleTree()
	data, err := orig.MarshalBinary()
	if !assert.NoError(err) {
		return
	}

	decoded := &Node{}
	err = decoded.UnmarshalBinary(data)
	if !assert.NoError(err) {
		return
	}

	assert.True(orig.Equal(decoded), "expected:\n%s\nactual:\n%s", orig, decoded)
}

func Test_Node_JSON(t *testing.T) {
	assert := assert.New(t)

	data, err := json.Marshal(sampleTree())
	if !assert.NoError(err) {
		return
	}

	assert.Equal(`{"label":"S","children":[{"label":"A","children":[{"label":"x"},{"label":"y"}]},{"label":"B","children":[{"label":"z"}]}]}`, string(data))
}
