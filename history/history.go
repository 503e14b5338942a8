// Package history keeps a bounded undo/redo stack of snapshots.
package history

import (
	"sync"

	"github.com/nvr-ai/go-cutout/snapshot"
)

// DefaultDepth is the number of states kept, the current one included.
const DefaultDepth = 20

// History is an undo stack whose top is the current state, plus a redo stack.
// It is safe for concurrent use.
type History struct {
	mu     sync.Mutex
	depth  int
	states []snapshot.Snapshot
	hashes []uint64
	redo   []snapshot.Snapshot
}

// New starts a history at initial. A depth below 2 selects DefaultDepth.
//
// @example
// h := history.New(snapshot.Default(), history.DefaultDepth)
// h.Push(h.Current().With(func(s *snapshot.Snapshot) { s.Rotation = 90 }))
// prev, _ := h.Undo()
func New(initial snapshot.Snapshot, depth int) *History {
	if depth < 2 {
		depth = DefaultDepth
	}
	return &History{
		depth:  depth,
		states: []snapshot.Snapshot{initial},
		hashes: []uint64{initial.Hash()},
	}
}

// Push records s as the new current state and clears the redo stack. A state
// equal to the current one is ignored. The oldest state is dropped once the
// stack exceeds its depth.
//
// Returns:
// - Whether s was recorded.
func (h *History) Push(s snapshot.Snapshot) bool {
	sum := s.Hash()

	h.mu.Lock()
	defer h.mu.Unlock()
	if sum == h.hashes[len(h.hashes)-1] {
		return false
	}
	h.states = append(h.states, s)
	h.hashes = append(h.hashes, sum)
	h.redo = nil
	if over := len(h.states) - h.depth; over > 0 {
		h.states = append([]snapshot.Snapshot(nil), h.states[over:]...)
		h.hashes = append([]uint64(nil), h.hashes[over:]...)
	}
	return true
}

// Undo steps back one state and returns it.
func (h *History) Undo() (snapshot.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.states)
	if n < 2 {
		return h.states[n-1], false
	}
	h.redo = append(h.redo, h.states[n-1])
	h.states = h.states[:n-1]
	h.hashes = h.hashes[:n-1]
	return h.states[n-2], true
}

// Redo re-applies the most recently undone state and returns it.
func (h *History) Redo() (snapshot.Snapshot, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.redo)
	if n == 0 {
		return h.states[len(h.states)-1], false
	}
	next := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.states = append(h.states, next)
	h.hashes = append(h.hashes, next.Hash())
	return next, true
}

// Current returns the state on top of the undo stack.
func (h *History) Current() snapshot.Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.states[len(h.states)-1]
}

// CanUndo reports whether Undo would step back.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.states) > 1
}

// CanRedo reports whether Redo would step forward.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.redo) > 0
}

// Len returns the number of states on the undo stack, the current one included.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.states)
}

// Reset discards every state and starts over at s.
func (h *History) Reset(s snapshot.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = []snapshot.Snapshot{s}
	h.hashes = []uint64{s.Hash()}
	h.redo = nil
}
