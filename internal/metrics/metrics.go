// Package metrics records assignment statistics as Prometheus collectors.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dyluth/prdflow/pkg/assign"
)

const namespace = "prdflow"

// Recorder owns a private registry so runs in the same process (and tests)
// do not collide on the default registry.
type Recorder struct {
	registry *prometheus.Registry

	assignments *prometheus.CounterVec
	stories     *prometheus.CounterVec
	dropped     prometheus.Counter
	duration    *prometheus.HistogramVec
}

// NewRecorder creates a recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_total",
			Help:      "Stories assigned, by mode and engineer.",
		}, []string{"mode", "engineer"}),
		stories: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stories_total",
			Help:      "User stories generated, by mode.",
		}, []string{"mode"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reallocation_dropped_stories_total",
			Help:      "Stories left out of a reallocated assignment.",
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a pipeline run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"mode"}),
	}

	r.registry.MustRegister(r.assignments, r.stories, r.dropped, r.duration)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun records one finished run.
func (r *Recorder) ObserveRun(mode assign.Mode, stories int, result assign.Assignment, dropped int, elapsed time.Duration) {
	m := string(mode)
	r.stories.WithLabelValues(m).Add(float64(stories))
	for _, p := range result {
		r.assignments.WithLabelValues(m, p.Engineer).Inc()
	}
	if dropped > 0 {
		r.dropped.Add(float64(dropped))
	}
	r.duration.WithLabelValues(m).Observe(elapsed.Seconds())
}

// WriteTextfile writes the registry in Prometheus text format, for the
// node_exporter textfile collector or for inspection.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
