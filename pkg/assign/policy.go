package assign

import (
	"context"
	"fmt"
	"strings"
)

// Mode names an assignment pipeline.
type Mode string

const (
	// ModeBasic assigns round-robin without similarity scoring.
	ModeBasic Mode = "basic"

	// ModeAdvanced assigns with the Greedy policy.
	ModeAdvanced Mode = "advanced"

	// ModeOptimized assigns with the Greedy policy and then runs Reallocate.
	ModeOptimized Mode = "optimized"

	// ModeReinforcement is an alias of ModeOptimized. It performs no learning.
	ModeReinforcement Mode = "reinforcement"
)

// Modes lists the accepted mode names.
var Modes = []Mode{ModeBasic, ModeAdvanced, ModeOptimized, ModeReinforcement}

// ParseMode normalizes s and checks it against Modes.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown mode: %s (must be 'basic', 'advanced', 'optimized' or 'reinforcement')", s)
}

// UsesSimilarity reports whether the mode needs a similarity capability.
func (m Mode) UsesSimilarity() bool {
	return m != ModeBasic
}

// Reallocates reports whether the mode runs Reallocate after assignment.
func (m Mode) Reallocates() bool {
	return m == ModeOptimized || m == ModeReinforcement
}

// Policy assigns every story to exactly one engineer.
//
// Implementations must:
//   - Return one pair per story, in story order
//   - Fail with ErrEmptyRoster on an empty roster
//   - Use a fresh Ledger per call
type Policy interface {
	Assign(ctx context.Context, stories []string, roster Roster) (Assignment, error)
}

// PolicyFor returns the policy behind mode. sim may be nil for ModeBasic.
func PolicyFor(mode Mode, sim Similarity) (Policy, error) {
	switch mode {
	case ModeBasic:
		return NewRoundRobin(), nil
	case ModeAdvanced:
		if sim == nil {
			return nil, fmt.Errorf("mode %s requires a similarity capability", mode)
		}
		return NewGreedy(sim), nil
	case ModeOptimized, ModeReinforcement:
		if sim == nil {
			return nil, fmt.Errorf("mode %s requires a similarity capability", mode)
		}
		return NewGreedy(sim, WithLabel("Optimized")), nil
	default:
		return nil, fmt.Errorf("unknown mode: %s", mode)
	}
}
