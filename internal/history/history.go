// Package history keeps bounded undo/redo snapshots of the layer stack.
package history

import (
	"github.com/jaysonragasa/liquifylab/internal/layer"
)

// DefaultMaxSteps is the retained snapshot count when the config does
// not override it.
const DefaultMaxSteps = 30

// History is a bounded linear sequence of deep-copied layer stack
// snapshots with a current index. Committing while not at the tip
// discards the redo entries; exceeding the cap silently drops the
// oldest snapshot.
type History struct {
	snapshots []*layer.Stack
	index     int // position of the current snapshot, -1 when empty
	maxSteps  int
}

// New creates a history retaining at most maxSteps snapshots. Values
// below 1 fall back to DefaultMaxSteps.
func New(maxSteps int) *History {
	if maxSteps < 1 {
		maxSteps = DefaultMaxSteps
	}
	return &History{index: -1, maxSteps: maxSteps}
}

// Len returns the number of retained snapshots.
func (h *History) Len() int {
	return len(h.snapshots)
}

// MaxSteps returns the configured snapshot cap.
func (h *History) MaxSteps() int {
	return h.maxSteps
}

// Commit records a deep copy of the stack as the new tip. The engine
// keeps mutating the live stack afterwards, so the snapshot must not
// share pixel buffers with it.
func (h *History) Commit(s *layer.Stack) {
	// Drop any redo entries beyond the current position.
	h.snapshots = h.snapshots[:h.index+1]
	h.snapshots = append(h.snapshots, s.Clone())
	h.index++

	if len(h.snapshots) > h.maxSteps {
		drop := len(h.snapshots) - h.maxSteps
		h.snapshots = h.snapshots[drop:]
		h.index -= drop
	}
}

// CanUndo reports whether a snapshot exists before the current one.
func (h *History) CanUndo() bool {
	return h.index > 0
}

// CanRedo reports whether a snapshot exists after the current one.
func (h *History) CanRedo() bool {
	return h.index >= 0 && h.index < len(h.snapshots)-1
}

// Undo steps back and returns a deep copy of the previous snapshot, or
// nil when there is nothing to undo.
func (h *History) Undo() *layer.Stack {
	if !h.CanUndo() {
		return nil
	}
	h.index--
	return h.snapshots[h.index].Clone()
}

// Redo steps forward and returns a deep copy of the next snapshot, or
// nil when there is nothing to redo.
func (h *History) Redo() *layer.Stack {
	if !h.CanRedo() {
		return nil
	}
	h.index++
	return h.snapshots[h.index].Clone()
}

// Reset discards all snapshots, e.g. after loading a project.
func (h *History) Reset() {
	h.snapshots = nil
	h.index = -1
}
