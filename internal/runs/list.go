// Package runs implements the read side of the run history: listing,
// fetching and formatting runs saved by the pipeline.
package runs

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dyluth/prdflow/internal/store"
	"github.com/dyluth/prdflow/pkg/assign"
)

// OutputFormat specifies how to format the run list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table format
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete runs as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// FilterCriteria defines filtering options for runs list.
// All filters are ANDed together.
type FilterCriteria struct {
	SinceTimestampMs int64       // Unix timestamp in milliseconds, 0 = no filter
	UntilTimestampMs int64       // Unix timestamp in milliseconds, 0 = no filter
	Mode             assign.Mode // Exact mode match, empty = no filter
	ProductGlob      string      // Glob pattern for product name, empty = no filter
	Engineer         string      // Runs that assigned at least one story to this engineer
}

// Matches reports whether the run passes every filter.
func (fc *FilterCriteria) Matches(r *store.Run) bool {
	if fc.SinceTimestampMs > 0 && r.CreatedAtMs < fc.SinceTimestampMs {
		return false
	}
	if fc.UntilTimestampMs > 0 && r.CreatedAtMs > fc.UntilTimestampMs {
		return false
	}
	if fc.Mode != "" && r.Mode != fc.Mode {
		return false
	}
	if fc.ProductGlob != "" {
		matched, err := filepath.Match(fc.ProductGlob, r.ProductName)
		if err != nil || !matched {
			return false
		}
	}
	if fc.Engineer != "" {
		found := false
		for _, p := range r.Assignments {
			if p.Engineer == fc.Engineer {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// ListRuns writes every run in the client's namespace that matches filters.
// Runs are ordered oldest first; malformed runs are skipped by the store.
func ListRuns(ctx context.Context, client *store.Client, format OutputFormat, filters *FilterCriteria, w io.Writer) error {
	all, err := client.ListRuns(ctx)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	var selected []*store.Run
	for _, r := range all {
		if filters != nil && !filters.Matches(r) {
			continue
		}
		selected = append(selected, r)
	}

	switch format {
	case OutputFormatDefault:
		FormatTable(w, selected, client.Namespace())
	case OutputFormatJSONL:
		if err := FormatJSONL(w, selected); err != nil {
			return fmt.Errorf("failed to format JSONL output: %w", err)
		}
	default:
		return fmt.Errorf("unknown output format: %s", format)
	}

	return nil
}
