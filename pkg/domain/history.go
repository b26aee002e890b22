package domain

import (
	"slices"
	"sync"
)

// UnknownActor is recorded when a transition is fired without an actor.
const UnknownActor = "UNKNOWN"

// History is the append-only audit trail of an entity.
// Entries are never reordered or removed. Safe for concurrent use.
type History struct {
	mu      sync.RWMutex
	entries []string
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// FormatEntry renders a history record.
func FormatEntry(actor, transition string) string {
	return actor + ": " + transition
}

// Append records that actor performed transition and returns the entry.
func (h *History) Append(actor, transition string) string {
	entry := FormatEntry(actor, transition)
	h.mu.Lock()
	h.entries = append(h.entries, entry)
	h.mu.Unlock()
	return entry
}

// Entries returns a copy of the recorded entries, oldest first.
func (h *History) Entries() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return []string{}
	}
	return slices.Clone(h.entries)
}

// Len returns the number of entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.entries)
}
