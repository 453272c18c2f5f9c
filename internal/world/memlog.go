package world

import "github.com/the4estate/t4e/internal/calendar"

// MemoryEntry is one line of the player-facing memory log.
type MemoryEntry struct {
	At    calendar.Date
	Entry string
}

// MemoryLog is the append-only record of notable things that happened.
// Entries keep insertion order, which under single-threaded ticks is
// also chronological order.
type MemoryLog struct {
	entries []MemoryEntry
}

// NewMemoryLog creates an empty log.
func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// Append records an entry at the given slot.
func (m *MemoryLog) Append(now calendar.Date, entry string) {
	m.entries = append(m.entries, MemoryEntry{At: now, Entry: entry})
}

// Entries returns the full log in insertion order.
func (m *MemoryLog) Entries() []MemoryEntry {
	out := make([]MemoryEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of entries.
func (m *MemoryLog) Len() int {
	return len(m.entries)
}
