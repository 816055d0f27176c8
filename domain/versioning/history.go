// Package versioning keeps the local edit history of a wheel session and
// compares graph versions.
package versioning

import (
	"axon-backend/domain/core/aggregates"
)

// History holds bounded undo/redo stacks of full graph snapshots.
//
// past is ordered oldest to newest; future is ordered nearest first. A new
// snapshot clears future. History is not safe for concurrent use; its
// owner serialises access.
type History struct {
	past    []aggregates.Graph
	future  []aggregates.Graph
	limit   int
	gesture bool
}

// NewHistory creates a history keeping at most limit undo steps.
// A limit of zero or less keeps every step.
func NewHistory(limit int) *History {
	return &History{limit: limit}
}

// Snapshot records current as the state to return to on the next Undo.
// A discrete edit closes any open gesture, so it always gets its own step.
func (h *History) Snapshot(current aggregates.Graph) {
	h.gesture = false
	h.push(current)
	h.future = nil
}

// BeginGesture records current once at the start of a continuous
// interaction such as a drag. Further calls until EndGesture are coalesced.
// It reports whether a snapshot was taken.
func (h *History) BeginGesture(current aggregates.Graph) bool {
	if h.gesture {
		return false
	}
	h.Snapshot(current)
	h.gesture = true
	return true
}

// EndGesture closes the current gesture, if any
func (h *History) EndGesture() {
	h.gesture = false
}

// InGesture reports whether a gesture is open
func (h *History) InGesture() bool {
	return h.gesture
}

// Undo returns the most recent past state and moves current to the front of
// future. With nothing to undo it returns current and false.
func (h *History) Undo(current aggregates.Graph) (aggregates.Graph, bool) {
	h.gesture = false
	if len(h.past) == 0 {
		return current, false
	}
	last := len(h.past) - 1
	prev := h.past[last]
	h.past = h.past[:last]
	h.future = append([]aggregates.Graph{current.Clone()}, h.future...)
	return prev.Clone(), true
}

// Redo is the inverse of Undo
func (h *History) Redo(current aggregates.Graph) (aggregates.Graph, bool) {
	h.gesture = false
	if len(h.future) == 0 {
		return current, false
	}
	next := h.future[0]
	h.future = h.future[1:]
	h.push(current)
	return next.Clone(), true
}

// Reset drops both stacks, as on loading a different wheel
func (h *History) Reset() {
	h.past = nil
	h.future = nil
	h.gesture = false
}

func (h *History) CanUndo() bool { return len(h.past) > 0 }
func (h *History) CanRedo() bool { return len(h.future) > 0 }

// Depth returns the sizes of the past and future stacks
func (h *History) Depth() (past, future int) {
	return len(h.past), len(h.future)
}

func (h *History) push(g aggregates.Graph) {
	h.past = append(h.past, g.Clone())
	if h.limit > 0 && len(h.past) > h.limit {
		drop := len(h.past) - h.limit
		h.past = append(h.past[:0:0], h.past[drop:]...)
	}
}
