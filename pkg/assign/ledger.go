package assign

// Ledger counts stories held per engineer for a single run.
// It is not safe for concurrent use; each run constructs its own.
type Ledger struct {
	counts map[string]int
	total  int
}

// NewLedger returns a ledger with every roster member seeded at zero.
func NewLedger(roster Roster) *Ledger {
	counts := make(map[string]int, len(roster))
	for _, e := range roster {
		counts[e.ID] = 0
	}
	return &Ledger{counts: counts}
}

// Increment raises the count for id by one.
func (l *Ledger) Increment(id string) {
	l.counts[id]++
	l.total++
}

// Get returns the current count for id, zero if it was never incremented.
func (l *Ledger) Get(id string) int {
	return l.counts[id]
}

// Total returns the sum of all counts.
func (l *Ledger) Total() int {
	return l.total
}

// Snapshot returns a copy of the counts.
func (l *Ledger) Snapshot() map[string]int {
	out := make(map[string]int, len(l.counts))
	for id, n := range l.counts {
		out[id] = n
	}
	return out
}
