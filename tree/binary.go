package tree

import (
	"fmt"

	"github.com/dekarrin/rezi"
)

// MarshalBinary converts n and all of its descendants into a slice of bytes
// that can be decoded with UnmarshalBinary.
func (n Node) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, rezi.EncString(n.Label)...)
	data = append(data, rezi.EncInt(len(n.Children))...)
	for i := range n.Children {
		data = append(data, rezi.EncBinary(n.Children[i])...)
	}

	return data, nil
}

// UnmarshalBinary decodes a slice of bytes created by MarshalBinary into n.
// All data in n is replaced.
func (n *Node) UnmarshalBinary(data []byte) error {
	var err error
	var readBytes int
	var count int

	n.Label, readBytes, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("label: %w", err)
	}
	data = data[readBytes:]

	count, readBytes, err = rezi.DecInt(data)
	if err != nil {
		return fmt.Errorf("child count: %w", err)
	}
	data = data[readBytes:]

	n.Children = nil
	for i := 0; i < count; i++ {
		child := &Node{}
		readBytes, err = rezi.DecBinary(data, child)
		if err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
		data = data[readBytes:]
		n.Children = append(n.Children, child)
	}

	return nil
}
