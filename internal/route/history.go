package route

// History is an in-app stack of visited locations. It is not safe for
// concurrent use; the UI owns it.
type History struct {
	entries []Location
}

// NewHistory starts a history at start.
func NewHistory(start Location) *History {
	return &History{entries: []Location{start}}
}

// Current returns the location on top of the stack.
func (h *History) Current() Location {
	return h.entries[len(h.entries)-1]
}

// Push adds a new entry.
func (h *History) Push(l Location) {
	if l.String() == h.Current().String() {
		return
	}
	h.entries = append(h.entries, l)
}

// Replace swaps the current entry for l.
func (h *History) Replace(l Location) {
	h.entries[len(h.entries)-1] = l
}

// Back pops the current entry and reports whether there was one to pop. The
// first entry is never removed.
func (h *History) Back() (Location, bool) {
	if len(h.entries) == 1 {
		return h.Current(), false
	}
	h.entries = h.entries[:len(h.entries)-1]
	return h.Current(), true
}

// Len returns the number of entries.
func (h *History) Len() int {
	return len(h.entries)
}
