// internal/history/history.go
//
// Undo stack for a Klondike session.
// Every entry is a deep copy of a prior board; nothing pushed here or handed
// back from Pop shares a slice with the live state or with other entries.
package history

import "github.com/robalobadob/solitaire/internal/klondike"

// Stack holds prior board snapshots, newest last.
type Stack struct {
	entries []*klondike.State
	limit   int
}

// New returns a stack that keeps at most limit snapshots, dropping the
// oldest when full. A limit of 0 means unbounded.
func New(limit int) *Stack {
	return &Stack{limit: limit}
}

// Push records a copy of s.
func (h *Stack) Push(s *klondike.State) {
	h.entries = append(h.entries, s.Clone())
	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		copy(h.entries, h.entries[drop:])
		clear(h.entries[len(h.entries)-drop:])
		h.entries = h.entries[:h.limit]
	}
}

// Pop removes the newest snapshot and returns a copy of it. It reports false
// when there is nothing to undo.
func (h *Stack) Pop() (*klondike.State, bool) {
	n := len(h.entries)
	if n == 0 {
		return nil, false
	}
	top := h.entries[n-1]
	h.entries[n-1] = nil
	h.entries = h.entries[:n-1]
	return top.Clone(), true
}

// Len is the number of snapshots available to undo.
func (h *Stack) Len() int { return len(h.entries) }

// Clear forgets every snapshot.
func (h *Stack) Clear() {
	clear(h.entries)
	h.entries = h.entries[:0]
}
