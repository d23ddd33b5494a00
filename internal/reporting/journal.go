package reporting

import "sync"

// DefaultJournalSize is the capacity used when NewJournal is given a
// non-positive size.
const DefaultJournalSize = 1000

// Journal is a bounded ring of the most recent log entries. Once full, each
// new entry evicts the oldest. It is safe for concurrent use.
type Journal struct {
	mu      sync.Mutex
	entries []LogEntry
	next    int
	full    bool
}

// NewJournal creates a journal holding at most size entries.
func NewJournal(size int) *Journal {
	if size <= 0 {
		size = DefaultJournalSize
	}
	return &Journal{entries: make([]LogEntry, size)}
}

// Record appends e, evicting the oldest entry when the journal is full.
func (j *Journal) Record(e LogEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.entries[j.next] = e
	j.next = (j.next + 1) % len(j.entries)
	if j.next == 0 {
		j.full = true
	}
}

// Entries returns a copy of the retained entries, oldest first.
func (j *Journal) Entries() []LogEntry {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.full {
		out := make([]LogEntry, j.next)
		copy(out, j.entries[:j.next])
		return out
	}
	out := make([]LogEntry, 0, len(j.entries))
	out = append(out, j.entries[j.next:]...)
	return append(out, j.entries[:j.next]...)
}

// Len reports how many entries are retained.
func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.full {
		return len(j.entries)
	}
	return j.next
}

// Capacity reports the maximum number of retained entries.
func (j *Journal) Capacity() int {
	return len(j.entries)
}
