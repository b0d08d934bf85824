// Package tui provides a Bubble Tea terminal UI for Rulatro.
package tui

// History holds submitted command lines for Up/Down recall. While the
// player navigates, the line they were typing is kept as a draft and
// restored when they move past the newest entry.
type History struct {
	entries []string
	max     int
	cursor  int // len(entries) when not navigating
	draft   string
}

// NewHistory creates a history holding at most max entries.
func NewHistory(max int) *History {
	return &History{entries: make([]string, 0, max), max: max}
}

// Push records a submitted line and ends navigation. Repeats of the
// newest entry are not stored twice.
func (h *History) Push(line string) {
	if n := len(h.entries); n == 0 || h.entries[n-1] != line {
		h.entries = append(h.entries, line)
		if len(h.entries) > h.max {
			h.entries = h.entries[len(h.entries)-h.max:]
		}
	}
	h.Reset()
}

// Prev steps to an older entry. current is the input line as it stands;
// it becomes the draft when navigation starts. Returns false when there
// is nothing older.
func (h *History) Prev(current string) (string, bool) {
	if len(h.entries) == 0 || h.cursor == 0 {
		return "", false
	}
	if h.cursor == len(h.entries) {
		h.draft = current
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Next steps to a newer entry, or back to the draft past the newest.
// Returns false when not navigating.
func (h *History) Next() (string, bool) {
	if h.cursor >= len(h.entries) {
		return "", false
	}
	h.cursor++
	if h.cursor == len(h.entries) {
		return h.draft, true
	}
	return h.entries[h.cursor], true
}

// Reset ends navigation and drops the draft.
func (h *History) Reset() {
	h.cursor = len(h.entries)
	h.draft = ""
}
