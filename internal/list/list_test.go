package list

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList_FIFO(t *testing.T) {
	l := New[int]()
	l.Append(1)
	l.Append(2)
	l.Append(3)
	assert.Equal(t, 3, l.Count())

	head, ok := l.Dequeue()
	assert.True(t, ok)
	assert.Equal(t, 1, head)
	assert.Equal(t, []int{2, 3}, l.Items())

	_, _ = l.Dequeue()
	_, _ = l.Dequeue()
	_, ok = l.Dequeue()
	assert.False(t, ok)
	assert.Equal(t, 0, l.Count())
}

func TestList_Cursor(t *testing.T) {
	l := New[string]()
	_, ok := l.First()
	assert.False(t, ok)

	l.Append("a")
	l.Append("b")

	item, ok := l.First()
	assert.True(t, ok)
	assert.Equal(t, "a", item)

	item, ok = l.Next()
	assert.True(t, ok)
	assert.Equal(t, "b", item)

	_, ok = l.Next()
	assert.False(t, ok)
	_, ok = l.Next()
	assert.False(t, ok)
}

func TestList_SearchAndRemove(t *testing.T) {
	testCases := []struct {
		description string
		items       []int
		target      int
		found       bool
		expect      []int
	}{
		{description: "head", items: []int{1, 2, 3}, target: 1, found: true, expect: []int{2, 3}},
		{description: "middle", items: []int{1, 2, 3}, target: 2, found: true, expect: []int{1, 3}},
		{description: "tail", items: []int{1, 2, 3}, target: 3, found: true, expect: []int{1, 2}},
		{description: "missing", items: []int{1, 2, 3}, target: 4, found: false, expect: []int{1, 2, 3}},
		{description: "empty", items: nil, target: 1, found: false, expect: []int{}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			l := New[int]()
			for _, item := range testCase.items {
				l.Append(item)
			}
			l.First()
			_, found := l.Search(func(v int) bool { return v == testCase.target })
			assert.Equal(t, testCase.found, found)
			if found {
				removed, ok := l.Remove()
				assert.True(t, ok)
				assert.Equal(t, testCase.target, removed)
			}
			assert.Equal(t, testCase.expect, l.Items())
		})
	}
}

func TestList_ItemsIsACopy(t *testing.T) {
	l := New[int]()
	l.Append(7)
	items := l.Items()
	items[0] = 42
	assert.Equal(t, []int{7}, l.Items())
}
