// Package store persists finished pipeline runs in Redis and publishes them
// on a per-namespace event channel.
package store

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dyluth/prdflow/internal/evaluate"
	"github.com/dyluth/prdflow/pkg/assign"
)

// Run is a finished pipeline run.
type Run struct {
	ID             string            `json:"id"`             // UUID
	Mode           assign.Mode       `json:"mode"`           // basic, advanced, optimized, reinforcement
	ProductName    string            `json:"product_name"`   // From the PRD, may be empty
	CreatedAtMs    int64             `json:"created_at_ms"`  // Unix milliseconds
	EngineerCount  int               `json:"engineer_count"` // Roster size
	Epics          []string          `json:"epics"`
	UserStories    []string          `json:"user_stories"`
	Assignments    assign.Assignment `json:"assignments"`
	DroppedStories int               `json:"dropped_stories"` // Stories left out by reallocation
	Evaluation     evaluate.Report   `json:"evaluation"`
}

// Validate checks the fields required for storage.
func (r *Run) Validate() error {
	if _, err := uuid.Parse(r.ID); err != nil {
		return fmt.Errorf("invalid run ID: not a valid UUID")
	}
	if _, err := assign.ParseMode(string(r.Mode)); err != nil {
		return fmt.Errorf("invalid run mode: %w", err)
	}
	if r.CreatedAtMs <= 0 {
		return fmt.Errorf("created_at_ms must be set")
	}
	if r.DroppedStories < 0 {
		return fmt.Errorf("dropped_stories must be >= 0, got %d", r.DroppedStories)
	}
	return nil
}
