package core

import "sync"

// DefaultHistoryMaxItems bounds the history when no capacity is
// configured.
const DefaultHistoryMaxItems = 100

// History is a bounded, in-memory log of interpreter input lines.
//
// At most capacity lines are retained; appending to a full store evicts
// the oldest entry, so the store is a sliding window over the most
// recent inputs. Index 0 always addresses the oldest retained line.
// Nothing is persisted; the log lives and dies with the process.
type History struct {
	mu      sync.Mutex
	entries []string
	head    int // position of the oldest entry within entries
	count   int
	cap     int
}

// NewHistory returns a store that retains up to capacity lines.
func NewHistory(capacity int) *History {
	return &History{cap: capacity}
}

// Append records line, evicting the oldest entry when full. The flag
// reports whether the line was recorded; it is false only when the
// store has no capacity to record into. Backing storage is allocated
// on first use.
func (h *History) Append(line string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cap <= 0 {
		return false
	}
	if h.entries == nil {
		h.entries = make([]string, h.cap)
	}
	if h.count == h.cap {
		h.entries[h.head] = line
		h.head = (h.head + 1) % h.cap
		return true
	}
	h.entries[(h.head+h.count)%h.cap] = line
	h.count++
	return true
}

// Len reports the number of retained lines.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// At returns the line at index i, 0 being the oldest retained entry.
func (h *History) At(i int) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if i < 0 || i >= h.count {
		return "", false
	}
	return h.entries[(h.head+i)%h.cap], true
}

// Each visits every retained line in index order, oldest first. The
// visit runs over a point-in-time copy so the callback may touch the
// store itself.
func (h *History) Each(visit func(i int, line string)) {
	h.mu.Lock()
	lines := make([]string, h.count)
	for i := range lines {
		lines[i] = h.entries[(h.head+i)%h.cap]
	}
	h.mu.Unlock()

	for i, line := range lines {
		visit(i, line)
	}
}

// Clear drops every retained line and releases the backing storage;
// appends after a clear re-allocate. Clearing an empty store is a
// no-op.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = nil
	h.head = 0
	h.count = 0
}
