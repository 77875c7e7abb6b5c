package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingQueue(t *testing.T) {
	q := NewRingQueue[int](3)
	_, err := q.Dequeue()
	assert.ErrorIs(t, err, ErrQueueEmpty)

	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	assert.True(t, q.IsFull())
	assert.ErrorIs(t, q.Enqueue(4), ErrQueueFull)

	v, err := q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	require.NoError(t, q.Enqueue(4), "wraps around")

	var got []int
	q.Each(func(v int) { got = append(got, v) })
	assert.Equal(t, []int{2, 3, 4}, got)
	assert.Equal(t, 3, q.Len())
}

func TestRingQueuePushEvicts(t *testing.T) {
	q := NewRingQueue[string](2)
	_, ok := q.Push("a")
	assert.False(t, ok)
	_, ok = q.Push("b")
	assert.False(t, ok)

	evicted, ok := q.Push("c")
	assert.True(t, ok)
	assert.Equal(t, "a", evicted)

	var got []string
	q.Each(func(v string) { got = append(got, v) })
	assert.Equal(t, []string{"b", "c"}, got)
}
