package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue(t *testing.T) {
	q := NewInMemoryQueue()
	require.NoError(t, q.Enqueue("first"))
	require.NoError(t, q.Enqueue("second"))
	assert.Equal(t, 2, q.Size())

	item, err := q.Dequeue()
	require.NoError(t, err)
	assert.Equal(t, "first", item)

	messages := q.ReadAllMessages()
	assert.Equal(t, []interface{}{"second"}, messages)
	assert.Equal(t, 0, q.Size())
}

func TestInMemoryQueue_EnqueueFullFails(t *testing.T) {
	q := NewInMemoryQueue()
	for i := 0; i < QueueBufferSize; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	assert.Error(t, q.Enqueue("overflow"))

	q.ClearQueue()
	assert.Equal(t, 0, q.Size())
	require.NoError(t, q.Enqueue("after clear"))
}
