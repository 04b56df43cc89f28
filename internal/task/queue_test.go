package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	t.Parallel()

	t.Run("enqueue until full", func(t *testing.T) {
		t.Parallel()
		q := NewQueue(2, discardLogger())
		require.NoError(t, q.Enqueue(newFakeTask(nil)))
		require.NoError(t, q.Enqueue(newFakeTask(nil)))
		assert.Equal(t, 2, q.Len())
		assert.ErrorIs(t, q.Enqueue(newFakeTask(nil)), ErrQueueFull)
	})

	t.Run("closed queue rejects and drains", func(t *testing.T) {
		t.Parallel()
		q := NewQueue(2, discardLogger())
		first := newFakeTask(nil)
		require.NoError(t, q.Enqueue(first))
		q.Close()
		q.Close()

		assert.ErrorIs(t, q.Enqueue(newFakeTask(nil)), ErrQueueClosed)
		got, ok := <-q.C()
		require.True(t, ok)
		assert.Equal(t, first.ID(), got.ID())
		_, ok = <-q.C()
		assert.False(t, ok)
	})

	t.Run("non-positive size", func(t *testing.T) {
		t.Parallel()
		q := NewQueue(0, discardLogger())
		require.NoError(t, q.Enqueue(newFakeTask(nil)))
		assert.ErrorIs(t, q.Enqueue(newFakeTask(nil)), ErrQueueFull)
	})
}
