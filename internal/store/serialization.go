package store

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dyluth/prdflow/internal/evaluate"
	"github.com/dyluth/prdflow/pkg/assign"
)

// Runs are stored as Redis hashes. Scalar fields stay individually readable;
// lists are JSON-encoded into single fields.

// RunToHash converts a Run to a Redis hash.
func RunToHash(r *Run) (map[string]interface{}, error) {
	epics, err := json.Marshal(nonNil(r.Epics))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal epics: %w", err)
	}
	stories, err := json.Marshal(nonNil(r.UserStories))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal user stories: %w", err)
	}
	assignments := r.Assignments
	if assignments == nil {
		assignments = assign.Assignment{}
	}
	assignmentsJSON, err := json.Marshal(assignments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal assignments: %w", err)
	}
	report := r.Evaluation
	if report == nil {
		report = evaluate.Report{}
	}
	evaluation, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal evaluation: %w", err)
	}

	return map[string]interface{}{
		"id":              r.ID,
		"mode":            string(r.Mode),
		"product_name":    r.ProductName,
		"created_at_ms":   r.CreatedAtMs,
		"engineer_count":  r.EngineerCount,
		"epics":           string(epics),
		"user_stories":    string(stories),
		"assignments":     string(assignmentsJSON),
		"dropped_stories": r.DroppedStories,
		"evaluation":      string(evaluation),
	}, nil
}

// HashToRun converts a Redis hash back to a Run.
func HashToRun(hash map[string]string) (*Run, error) {
	createdAtMs, err := strconv.ParseInt(hash["created_at_ms"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at_ms field: %w", err)
	}
	engineerCount, err := strconv.Atoi(hash["engineer_count"])
	if err != nil {
		return nil, fmt.Errorf("invalid engineer_count field: %w", err)
	}
	dropped, err := strconv.Atoi(hash["dropped_stories"])
	if err != nil {
		return nil, fmt.Errorf("invalid dropped_stories field: %w", err)
	}

	r := &Run{
		ID:             hash["id"],
		Mode:           assign.Mode(hash["mode"]),
		ProductName:    hash["product_name"],
		CreatedAtMs:    createdAtMs,
		EngineerCount:  engineerCount,
		DroppedStories: dropped,
	}

	fields := []struct {
		name   string
		target interface{}
	}{
		{"epics", &r.Epics},
		{"user_stories", &r.UserStories},
		{"assignments", &r.Assignments},
		{"evaluation", &r.Evaluation},
	}
	for _, f := range fields {
		raw := hash[f.name]
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), f.target); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", f.name, err)
		}
	}

	return r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
