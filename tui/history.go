// Package tui provides a Bubble Tea dialogue window for ruinscript.
package tui

// History is a ring buffer of entered script inputs with cursor-based
// navigation.
type History struct {
	entries []string
	max     int
	cursor  int // -1 = not navigating, 0..len-1 = position in entries
}

// NewHistory creates a history buffer with the given maximum size.
func NewHistory(max int) *History {
	return &History{
		entries: make([]string, 0, max),
		max:     max,
		cursor:  -1,
	}
}

// Push adds an input to history. Consecutive duplicates are skipped.
func (h *History) Push(input string) {
	if len(h.entries) > 0 && h.entries[len(h.entries)-1] == input {
		return
	}
	h.entries = append(h.entries, input)
	if len(h.entries) > h.max {
		h.entries = h.entries[1:]
	}
}

// Prev returns the previous (older) entry, or false if history is empty.
func (h *History) Prev() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	switch {
	case h.cursor == -1:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next returns the next (newer) entry. It returns false when moving past
// the most recent entry, back to fresh input.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= len(h.entries) {
		h.cursor = -1
		return "", false
	}
	return h.entries[h.cursor], true
}

// ResetCursor stops navigating.
func (h *History) ResetCursor() {
	h.cursor = -1
}
