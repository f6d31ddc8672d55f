package checkpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkerQueueOrder(t *testing.T) {
	queue := &markerQueue{}
	assert.Equal(t, 0, queue.Len())

	queue.Enqueue("a", 1)
	queue.Enqueue("b", 5)
	queue.Enqueue("c", 5)
	assert.Equal(t, 3, queue.Len())

	watermark, ok := queue.PeekWatermark()
	assert.True(t, ok)
	assert.Equal(t, GlobalSequence(1), watermark)

	entry, ok := queue.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", entry.payload)
	entry, ok = queue.Pop()
	require.True(t, ok)
	assert.Equal(t, "b", entry.payload)

	watermark, ok = queue.PeekWatermark()
	assert.True(t, ok)
	assert.Equal(t, GlobalSequence(5), watermark)

	entry, ok = queue.Pop()
	require.True(t, ok)
	assert.Equal(t, "c", entry.payload)
	assert.Equal(t, 0, queue.Len())

	_, ok = queue.PeekWatermark()
	assert.False(t, ok)
	_, ok = queue.Pop()
	assert.False(t, ok)
}

func TestMarkerQueueReuseAfterDrain(t *testing.T) {
	queue := &markerQueue{}
	for round := 0; round < 3; round++ {
		queue.Enqueue(round, GlobalSequence(round))
		queue.Enqueue(round+100, GlobalSequence(round))
		assert.Equal(t, 2, queue.Len())

		entry, ok := queue.Pop()
		require.True(t, ok)
		assert.Equal(t, round, entry.payload)
		entry, ok = queue.Pop()
		require.True(t, ok)
		assert.Equal(t, round+100, entry.payload)
		assert.Equal(t, 0, queue.Len())
	}
}
