package assign

import (
	"context"
	"log"
)

// RoundRobin assigns story i to engineer i mod m.
type RoundRobin struct{}

var _ Policy = (*RoundRobin)(nil)

// NewRoundRobin creates the baseline policy.
func NewRoundRobin() *RoundRobin {
	return &RoundRobin{}
}

// Assign distributes stories across the roster in order, wrapping around.
// Only engineer identities are read.
func (rr *RoundRobin) Assign(ctx context.Context, stories []string, roster Roster) (Assignment, error) {
	if err := roster.validateIdentities(); err != nil {
		return nil, err
	}
	return rr.Run(stories, roster, NewLedger(roster))
}

// Run assigns against a caller-supplied ledger.
func (rr *RoundRobin) Run(stories []string, roster Roster, ledger *Ledger) (Assignment, error) {
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}

	assignments := make(Assignment, 0, len(stories))
	for i, story := range stories {
		engineer := roster[i%len(roster)].ID
		ledger.Increment(engineer)
		assignments = append(assignments, Pair{Story: story, Engineer: engineer})
	}

	log.Printf("[Assign] Basic Mode Task Assignments: %d stories across %d engineers", len(assignments), len(roster))
	return assignments, nil
}
