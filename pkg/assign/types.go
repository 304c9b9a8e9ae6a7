package assign

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Engineer is a single roster member. ID is the identity used in
// assignments and must be unique within a roster. Role is carried for
// reporting only and never read by the policies.
type Engineer struct {
	ID     string `json:"name" yaml:"name"`
	Role   string `json:"role,omitempty" yaml:"role,omitempty"`
	Skills string `json:"skills" yaml:"skills"`
}

// Roster is the ordered list of engineers for one run. Order matters: it
// drives tie-breaking in Greedy and the engineer axis in Reallocate.
type Roster []Engineer

// IDs returns the engineer identities in roster order.
func (r Roster) IDs() []string {
	ids := make([]string, len(r))
	for i, e := range r {
		ids[i] = e.ID
	}
	return ids
}

// SkillTexts returns the skill descriptions in roster order.
func (r Roster) SkillTexts() []string {
	texts := make([]string, len(r))
	for i, e := range r {
		texts[i] = e.Skills
	}
	return texts
}

// Index returns the roster position of the engineer with the given ID, or -1.
func (r Roster) Index(id string) int {
	for i, e := range r {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Validate fails fast on malformed roster entries: an empty roster returns
// ErrEmptyRoster, a missing identity or skill text or a duplicate identity
// returns a *ValidationError.
func (r Roster) Validate() error {
	if err := r.validateIdentities(); err != nil {
		return err
	}
	for i, e := range r {
		if strings.TrimSpace(e.Skills) == "" {
			return &ValidationError{Field: "skills", Index: i, Reason: fmt.Sprintf("engineer '%s' has no skill description", e.ID)}
		}
	}
	return nil
}

// validateIdentities checks only what RoundRobin reads.
func (r Roster) validateIdentities() error {
	if len(r) == 0 {
		return ErrEmptyRoster
	}

	seen := make(map[string]int, len(r))
	for i, e := range r {
		if strings.TrimSpace(e.ID) == "" {
			return &ValidationError{Field: "name", Index: i, Reason: "engineer identity is required"}
		}
		if prev, exists := seen[e.ID]; exists {
			return &ValidationError{Field: "name", Index: i, Reason: fmt.Sprintf("duplicate engineer '%s' (also at index %d)", e.ID, prev)}
		}
		seen[e.ID] = i
	}

	return nil
}

// Pair is one (story, engineer) assignment. It encodes to JSON as a
// two-element array so exported documents read [story, engineer].
type Pair struct {
	Story    string
	Engineer string
}

// MarshalJSON encodes the pair as ["story", "engineer"].
func (p Pair) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{p.Story, p.Engineer})
}

// UnmarshalJSON decodes a two-element array.
func (p *Pair) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("assignment pair must be a [story, engineer] array: %w", err)
	}
	if len(raw) != 2 {
		return fmt.Errorf("assignment pair must have 2 elements, got %d", len(raw))
	}
	p.Story, p.Engineer = raw[0], raw[1]
	return nil
}

// Assignment is an ordered sequence of pairs.
type Assignment []Pair

// Counts tallies stories per engineer. Every roster member is present, with
// zero when it received nothing.
func (a Assignment) Counts(roster Roster) map[string]int {
	counts := make(map[string]int, len(roster))
	for _, e := range roster {
		counts[e.ID] = 0
	}
	for _, p := range a {
		counts[p.Engineer]++
	}
	return counts
}

// Similarity is the narrow capability the Greedy policy depends on. Scores
// returns one similarity per candidate, in candidate order. Implementations
// conventionally return cosine similarity in roughly [-1, 1].
type Similarity interface {
	Scores(ctx context.Context, text string, candidates []string) ([]float64, error)
}

// SimilarityFunc adapts a plain function to the Similarity interface.
type SimilarityFunc func(ctx context.Context, text string, candidates []string) ([]float64, error)

// Scores calls f.
func (f SimilarityFunc) Scores(ctx context.Context, text string, candidates []string) ([]float64, error) {
	return f(ctx, text, candidates)
}
