package management

import (
	"sync"

	"github.com/alem-hub/reportcard/internal/domain/journal"
)

// Locked serialises access to a Manager with a single mutex so it can be
// shared by concurrent request handlers.
type Locked struct {
	mu sync.Mutex
	m  *Manager
}

// NewLocked wraps m.
func NewLocked(m *Manager) *Locked {
	return &Locked{m: m}
}

// Do runs fn while holding the lock. fn must not retain m.
func (l *Locked) Do(fn func(m *Manager)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.m)
}

// DrainJournal drains the journal under the lock and returns serialisable
// records, read while the lock is still held.
func (l *Locked) DrainJournal() []journal.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	return journal.Records(l.m.DrainJournal())
}
