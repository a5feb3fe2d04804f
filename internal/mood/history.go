package mood

import "time"

// DefaultHistoryLength is how many entries a History keeps.
const DefaultHistoryLength = 100

type HistoryEntry struct {
	Mood   Vector    `json:"mood"`
	Reason string    `json:"reason"`
	Time   time.Time `json:"time"`
}

// History is a bounded ring of mood snapshots, oldest first.
type History struct {
	entries []HistoryEntry
	start   int
	size    int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryLength
	}
	return &History{entries: make([]HistoryEntry, capacity)}
}

func (h *History) Add(e HistoryEntry) {
	idx := (h.start + h.size) % len(h.entries)
	h.entries[idx] = e
	if h.size < len(h.entries) {
		h.size++
		return
	}
	h.start = (h.start + 1) % len(h.entries)
}

func (h *History) Len() int {
	return h.size
}

// Entries returns a copy of the stored entries, oldest first.
func (h *History) Entries() []HistoryEntry {
	out := make([]HistoryEntry, h.size)
	for i := 0; i < h.size; i++ {
		out[i] = h.entries[(h.start+i)%len(h.entries)]
	}
	return out
}

func (h *History) Clear() {
	h.start = 0
	h.size = 0
}
