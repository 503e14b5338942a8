package history

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-cutout/snapshot"
)

func rotated(deg float64) snapshot.Snapshot {
	return snapshot.Default().With(func(s *snapshot.Snapshot) { s.Rotation = deg })
}

func TestUndoRedo(t *testing.T) {
	h := New(snapshot.Default(), DefaultDepth)
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())

	require.True(t, h.Push(rotated(90)))
	require.True(t, h.Push(rotated(180)))
	assert.Equal(t, 3, h.Len())
	assert.Equal(t, 180.0, h.Current().Rotation)

	prev, ok := h.Undo()
	require.True(t, ok)
	assert.Equal(t, 90.0, prev.Rotation)
	assert.True(t, h.CanRedo())

	prev, ok = h.Undo()
	require.True(t, ok)
	assert.Equal(t, 0.0, prev.Rotation)

	_, ok = h.Undo()
	assert.False(t, ok)

	next, ok := h.Redo()
	require.True(t, ok)
	assert.Equal(t, 90.0, next.Rotation)
	assert.Equal(t, 90.0, h.Current().Rotation)
}

func TestPushClearsRedo(t *testing.T) {
	h := New(snapshot.Default(), DefaultDepth)
	h.Push(rotated(90))
	h.Undo()
	require.True(t, h.CanRedo())

	h.Push(rotated(270))
	assert.False(t, h.CanRedo())
	_, ok := h.Redo()
	assert.False(t, ok)
}

func TestPushIgnoresDuplicates(t *testing.T) {
	h := New(snapshot.Default(), DefaultDepth)
	assert.False(t, h.Push(snapshot.Default()))
	assert.True(t, h.Push(rotated(90)))
	assert.False(t, h.Push(rotated(90)))
	assert.Equal(t, 2, h.Len())
}

func TestDepthIsBounded(t *testing.T) {
	h := New(snapshot.Default(), DefaultDepth)
	for i := 1; i <= 50; i++ {
		h.Push(rotated(float64(i)))
	}
	assert.Equal(t, DefaultDepth, h.Len())
	assert.Equal(t, 50.0, h.Current().Rotation)

	undone := 0
	for h.CanUndo() {
		_, ok := h.Undo()
		require.True(t, ok)
		undone++
	}
	assert.Equal(t, DefaultDepth-1, undone)
	assert.Equal(t, 31.0, h.Current().Rotation)
}

func TestReset(t *testing.T) {
	h := New(snapshot.Default(), 0)
	h.Push(rotated(90))
	h.Reset(rotated(45))
	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 45.0, h.Current().Rotation)
	assert.False(t, h.CanUndo())
}

func TestConcurrentPush(t *testing.T) {
	h := New(snapshot.Default(), 5)
	var wg sync.WaitGroup
	for i := 1; i <= 32; i++ {
		wg.Add(1)
		go func(deg float64) {
			defer wg.Done()
			h.Push(rotated(deg))
			h.Current()
		}(float64(i))
	}
	wg.Wait()
	assert.Equal(t, 5, h.Len())
}
