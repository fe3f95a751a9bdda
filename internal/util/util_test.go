package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_OrderedKeys(t *testing.T) {
	assert := assert.New(t)

	actual := OrderedKeys(map[string]int{"b": 1, "c": 2, "a": 3})

	assert.Equal([]string{"a", "b", "c"}, actual)
}

func Test_SortBy(t *testing.T) {
	assert := assert.New(t)

	input := []string{"ccc", "a", "bb", "d"}

	actual := SortBy(input, func(l, r string) bool {
		return len(l) < len(r)
	})

	assert.Equal([]string{"a", "d", "bb", "ccc"}, actual)
	assert.Equal([]string{"ccc", "a", "bb", "d"}, input, "input must not be modified")
}

func Test_SliceFunctions(t *testing.T) {
	testCases := []struct {
		name         string
		input        []int
		v            int
		expectIndex  int
		expectRemove []int
	}{
		{
			name:         "nil slice",
			input:        nil,
			v:            1,
			expectIndex:  -1,
			expectRemove: nil,
		},
		{
			name:         "absent",
			input:        []int{1, 2, 3},
			v:            4,
			expectIndex:  -1,
			expectRemove: []int{1, 2, 3},
		},
		{
			name:         "present more than once",
			input:        []int{1, 2, 1, 3},
			v:            1,
			expectIndex:  0,
			expectRemove: []int{2, 3},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expectIndex, SliceIndexOf(tc.v, tc.input))
			assert.Equal(tc.expectIndex > -1, InSlice(tc.v, tc.input))
			assert.Equal(tc.expectRemove, SliceRemove(tc.v, tc.input))
		})
	}
}

func Test_Filter(t *testing.T) {
	assert := assert.New(t)

	actual := Filter([]int{1, 2, 3, 4}, func(i int) bool { return i%2 == 0 })

	assert.Equal([]int{2, 4}, actual)
}
