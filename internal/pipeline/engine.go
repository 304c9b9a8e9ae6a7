// Package pipeline runs the PRD to assignment flow end to end: load the
// PRD and roster, generate stories, assign them with the configured mode,
// evaluate, export, and record the run.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/dyluth/prdflow/internal/config"
	"github.com/dyluth/prdflow/internal/evaluate"
	"github.com/dyluth/prdflow/internal/export"
	"github.com/dyluth/prdflow/internal/logging"
	"github.com/dyluth/prdflow/internal/metrics"
	"github.com/dyluth/prdflow/internal/prd"
	"github.com/dyluth/prdflow/internal/roster"
	"github.com/dyluth/prdflow/internal/similarity"
	"github.com/dyluth/prdflow/internal/store"
	"github.com/dyluth/prdflow/pkg/assign"
)

// Engine executes pipeline runs for one configuration.
type Engine struct {
	cfg     *config.PrdflowConfig
	mode    assign.Mode
	sim     assign.Similarity
	store   *store.Client
	metrics *metrics.Recorder
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithSimilarity overrides the backend built from the configuration.
func WithSimilarity(sim assign.Similarity) Option {
	return func(e *Engine) { e.sim = sim }
}

// WithStore saves every finished run to client.
func WithStore(client *store.Client) Option {
	return func(e *Engine) { e.store = client }
}

// WithMetrics records every finished run on rec.
func WithMetrics(rec *metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = rec }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine validates cfg and builds the similarity backend when the
// configured mode needs one. Basic mode never constructs a backend.
func NewEngine(cfg *config.PrdflowConfig, opts ...Option) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	mode, err := assign.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg, mode: mode, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}

	if !mode.UsesSimilarity() {
		e.sim = nil
	} else if e.sim == nil {
		sim, err := similarity.New(cfg.Similarity)
		if err != nil {
			return nil, fmt.Errorf("failed to create similarity backend: %w", err)
		}
		e.sim = sim
	}

	return e, nil
}

// Mode returns the assignment mode the engine runs.
func (e *Engine) Mode() assign.Mode {
	return e.mode
}

// Result is the outcome of one run.
type Result struct {
	RunID       string
	Mode        assign.Mode
	ProductName string
	Roster      assign.Roster
	Epics       []string
	UserStories []string
	Assignments assign.Assignment
	// Dropped counts stories the reallocation pass left unassigned.
	Dropped    int
	Evaluation evaluate.Report
	Files      []string
	Stored     bool
	CreatedAt  time.Time
	Elapsed    time.Duration
}

// Run loads the PRD and engineer profiles from disk, executes the pipeline,
// writes the configured output files, records metrics and saves the run.
// A store failure is logged and leaves Stored false; it does not fail the run.
func (e *Engine) Run(ctx context.Context, prdPath, engineersPath string) (*Result, error) {
	doc, err := prd.Load(prdPath)
	if err != nil {
		return nil, err
	}

	team, err := roster.Load(engineersPath)
	if err != nil {
		return nil, err
	}

	result, err := e.Execute(ctx, doc, team)
	if err != nil {
		return nil, err
	}

	files, err := export.WriteAll(e.cfg.Output.Prefix, e.cfg.Output.Formats, &export.Document{
		Epics:       result.Epics,
		UserStories: result.UserStories,
		Assignments: result.Assignments,
	})
	result.Files = files
	if err != nil {
		return result, fmt.Errorf("failed to write output: %w", err)
	}
	e.logEvent(result.RunID, "output_written", map[string]interface{}{
		"files": files,
	})

	if e.metrics != nil {
		e.metrics.ObserveRun(result.Mode, len(result.UserStories), result.Assignments, result.Dropped, result.Elapsed)
		if e.cfg.MetricsFile != "" {
			if err := e.metrics.WriteTextfile(e.cfg.MetricsFile); err != nil {
				log.Printf("[Pipeline] Warning: %v", err)
			}
		}
	}

	if e.store != nil {
		if err := e.store.SaveRun(ctx, toStoredRun(result)); err != nil {
			log.Printf("[Pipeline] Warning: failed to save run %s: %v", result.RunID, err)
		} else {
			result.Stored = true
		}
	}

	return result, nil
}

// Execute runs story generation, assignment, optional reallocation and
// evaluation on already-loaded inputs. Nothing is written.
func (e *Engine) Execute(ctx context.Context, doc *prd.Document, team assign.Roster) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := e.now()
	result := &Result{
		RunID:       uuid.New().String(),
		Mode:        e.mode,
		ProductName: doc.ProductName,
		Roster:      team,
		CreatedAt:   start,
	}

	log.Printf("[Pipeline] Starting %s run %s for %q with %d engineers", e.mode, result.RunID, doc.ProductName, len(team))

	sections := prd.ExtractSections(doc)
	result.Epics, result.UserStories = prd.GenerateEpicsAndStories(sections)
	e.logEvent(result.RunID, "stories_generated", map[string]interface{}{
		"epics":   len(result.Epics),
		"stories": len(result.UserStories),
	})

	policy, err := assign.PolicyFor(e.mode, e.sim)
	if err != nil {
		return nil, err
	}

	assignments, err := policy.Assign(ctx, result.UserStories, team)
	if err != nil {
		return nil, fmt.Errorf("%s assignment failed: %w", e.mode, err)
	}

	if e.mode.Reallocates() {
		assignments = assign.Reallocate(assignments, team)
		result.Dropped = len(result.UserStories) - len(assignments)
		if result.Dropped > 0 {
			log.Printf("[Pipeline] Reallocation left %d of %d stories unassigned", result.Dropped, len(result.UserStories))
		}
	}
	result.Assignments = assignments

	report, err := evaluate.Evaluate(ctx, assignments, team, e.sim)
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}
	result.Evaluation = report

	result.Elapsed = e.now().Sub(start)

	fields := map[string]interface{}{
		"mode":        string(e.mode),
		"assignments": len(assignments),
		"dropped":     result.Dropped,
		"duration_ms": result.Elapsed.Milliseconds(),
	}
	for _, m := range report {
		fields[m.Name] = m.Value
	}
	e.logEvent(result.RunID, "run_completed", fields)

	return result, nil
}

func toStoredRun(r *Result) *store.Run {
	return &store.Run{
		ID:             r.RunID,
		Mode:           r.Mode,
		ProductName:    r.ProductName,
		CreatedAtMs:    r.CreatedAt.UnixMilli(),
		EngineerCount:  len(r.Roster),
		Epics:          r.Epics,
		UserStories:    r.UserStories,
		Assignments:    r.Assignments,
		DroppedStories: r.Dropped,
		Evaluation:     r.Evaluation,
	}
}

func (e *Engine) logEvent(runID, eventType string, data map[string]interface{}) {
	data["run_id"] = runID
	logging.Event("pipeline", eventType, data)
}
