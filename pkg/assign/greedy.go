package assign

import (
	"context"
	"fmt"
	"log"
	"math"
)

// Greedy assigns each story, in order, to the engineer with the highest
// load-penalized similarity:
//
//	score(e) = similarity(story, e.Skills) / (1 + ledger.Get(e.ID))
//
// Decisions are never revisited. On an exact tie the engineer earlier in the
// roster wins.
type Greedy struct {
	sim   Similarity
	label string
}

var _ Policy = (*Greedy)(nil)

// GreedyOption customizes a Greedy policy.
type GreedyOption func(*Greedy)

// WithLabel sets the name used in log lines. It does not change behavior.
func WithLabel(label string) GreedyOption {
	return func(g *Greedy) {
		g.label = label
	}
}

// NewGreedy creates a greedy policy backed by sim.
func NewGreedy(sim Similarity, opts ...GreedyOption) *Greedy {
	g := &Greedy{sim: sim, label: "Advanced"}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Label returns the log label of the policy.
func (g *Greedy) Label() string {
	return g.label
}

// Assign validates the roster and runs the policy against a fresh ledger.
func (g *Greedy) Assign(ctx context.Context, stories []string, roster Roster) (Assignment, error) {
	if err := roster.Validate(); err != nil {
		return nil, err
	}
	return g.Run(ctx, stories, roster, NewLedger(roster))
}

// Run assigns against a caller-supplied ledger. The ledger is incremented
// once per story.
func (g *Greedy) Run(ctx context.Context, stories []string, roster Roster, ledger *Ledger) (Assignment, error) {
	if len(roster) == 0 {
		return nil, ErrEmptyRoster
	}

	skills := roster.SkillTexts()
	assignments := make(Assignment, 0, len(stories))

	for _, story := range stories {
		similarities, err := g.score(ctx, story, skills)
		if err != nil {
			return nil, err
		}

		best := 0
		bestScore := math.Inf(-1)
		for i, e := range roster {
			score := similarities[i] / float64(1+ledger.Get(e.ID))
			if score > bestScore {
				best = i
				bestScore = score
			}
		}

		engineer := roster[best].ID
		ledger.Increment(engineer)
		assignments = append(assignments, Pair{Story: story, Engineer: engineer})
	}

	log.Printf("[Assign] %s Mode Task Assignments: %d stories across %d engineers", g.label, len(assignments), len(roster))
	return assignments, nil
}

// score makes one batched similarity call for story against every skill text.
func (g *Greedy) score(ctx context.Context, story string, skills []string) ([]float64, error) {
	if g.sim == nil {
		return nil, &SimilarityUnavailableError{Story: story, Err: fmt.Errorf("no similarity capability configured")}
	}

	similarities, err := g.sim.Scores(ctx, story, skills)
	if err != nil {
		return nil, &SimilarityUnavailableError{Story: story, Err: err}
	}
	if len(similarities) != len(skills) {
		return nil, &SimilarityUnavailableError{
			Story: story,
			Err:   fmt.Errorf("expected %d scores, got %d", len(skills), len(similarities)),
		}
	}
	for i, s := range similarities {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, &SimilarityUnavailableError{
				Story: story,
				Err:   fmt.Errorf("score %d is not a finite number: %v", i, s),
			}
		}
	}

	return similarities, nil
}
