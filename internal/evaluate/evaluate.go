// Package evaluate scores a finished assignment.
package evaluate

import (
	"context"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/dyluth/prdflow/pkg/assign"
)

// Metric names as they appear in reports.
const (
	MetricSkillMatch       = "Skill Match Score"
	MetricWorkloadVariance = "Workload Variance"
	MetricGini             = "Gini Coefficient of Workload"
)

// Metric is one named evaluation result.
type Metric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Report holds metrics in a stable display order.
type Report []Metric

// Get returns the value of the named metric.
func (r Report) Get(name string) (float64, bool) {
	for _, m := range r {
		if m.Name == name {
			return m.Value, true
		}
	}
	return 0, false
}

// Evaluate computes workload metrics for result and, when sim is not nil,
// the mean similarity between each story and its assigned engineer's skills.
func Evaluate(ctx context.Context, result assign.Assignment, roster assign.Roster, sim assign.Similarity) (Report, error) {
	var report Report

	if sim != nil {
		score, err := SkillMatch(ctx, result, roster, sim)
		if err != nil {
			return nil, err
		}
		report = append(report, Metric{Name: MetricSkillMatch, Value: score})
	}

	loads := Workloads(result, roster)
	report = append(report,
		Metric{Name: MetricWorkloadVariance, Value: WorkloadVariance(loads)},
		Metric{Name: MetricGini, Value: Gini(loads)},
	)
	return report, nil
}

// Workloads returns per-engineer story counts in roster order. Engineers
// without stories contribute zero.
func Workloads(result assign.Assignment, roster assign.Roster) []float64 {
	counts := result.Counts(roster)
	loads := make([]float64, len(roster))
	for i, e := range roster {
		loads[i] = float64(counts[e.ID])
	}
	return loads
}

// SkillMatch averages similarity(story, assigned engineer's skills) over
// every pair. Pairs naming an engineer outside the roster are skipped.
func SkillMatch(ctx context.Context, result assign.Assignment, roster assign.Roster, sim assign.Similarity) (float64, error) {
	var scores []float64
	for _, p := range result {
		idx := roster.Index(p.Engineer)
		if idx < 0 {
			continue
		}
		s, err := sim.Scores(ctx, p.Story, []string{roster[idx].Skills})
		if err != nil {
			return 0, &assign.SimilarityUnavailableError{Story: p.Story, Err: err}
		}
		if len(s) != 1 {
			return 0, &assign.SimilarityUnavailableError{Story: p.Story, Err: fmt.Errorf("expected 1 score, got %d", len(s))}
		}
		scores = append(scores, s[0])
	}
	if len(scores) == 0 {
		return 0, nil
	}
	return stat.Mean(scores, nil), nil
}

// WorkloadVariance is the population variance of loads.
func WorkloadVariance(loads []float64) float64 {
	if len(loads) == 0 {
		return 0
	}
	return stat.PopVariance(loads, nil)
}

// Gini returns the Gini coefficient of loads: 0 for a perfectly even split,
// approaching 1 as work concentrates on one engineer. Returns 0 when there
// is no work at all.
func Gini(loads []float64) float64 {
	n := len(loads)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, loads)
	sort.Float64s(sorted)

	var weighted, total float64
	for i, w := range sorted {
		weighted += float64(i+1) * w
		total += w
	}
	if total == 0 {
		return 0
	}

	nf := float64(n)
	return 2*weighted/(nf*total) - (nf+1)/nf
}
