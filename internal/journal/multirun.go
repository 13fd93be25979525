package journal

import "sync"

// MultiRunJournal hands out one private Journal per run name, built
// lazily from factory the first time that name is requested and reused
// on every subsequent call — so internal/runner.RunMany can give each
// concurrent run an isolated Journal (spec.md §5: journals are private
// per run) while still letting every factory-built Journal forward into
// one shared MetricsLogger underneath.
type MultiRunJournal struct {
	factory func(run string) Journal

	mu       sync.Mutex
	journals map[string]Journal
}

// NewMultiRunJournal builds a MultiRunJournal backed by factory.
func NewMultiRunJournal(factory func(run string) Journal) *MultiRunJournal {
	return &MultiRunJournal{factory: factory, journals: make(map[string]Journal)}
}

// For returns the Journal for run, creating it via factory on first use.
func (m *MultiRunJournal) For(run string) Journal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.journals[run]; ok {
		return j
	}
	j := m.factory(run)
	m.journals[run] = j
	return j
}
