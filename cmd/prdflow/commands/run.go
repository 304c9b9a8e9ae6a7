package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dyluth/prdflow/internal/config"
	"github.com/dyluth/prdflow/internal/export"
	"github.com/dyluth/prdflow/internal/logging"
	"github.com/dyluth/prdflow/internal/metrics"
	"github.com/dyluth/prdflow/internal/pipeline"
	"github.com/dyluth/prdflow/internal/printer"
	"github.com/dyluth/prdflow/internal/scaffold"
	"github.com/dyluth/prdflow/internal/store"
	"github.com/dyluth/prdflow/pkg/assign"
)

var (
	runMode         string
	runPRDPath      string
	runEngineers    string
	runOutputPrefix string
	runFormats      []string
	runRedisAddr    string
	runNamespace    string
	runMetricsFile  string
	runLogFile      string
	runQuiet        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate user stories from a PRD and assign them to engineers",
	Long: `Generate epics and user stories from a PRD and assign every story to an
engineer from the roster.

Flags override the matching prdflow.yml settings.

Examples:
  # Round-robin with defaults
  prdflow run --mode basic

  # Skill-aware assignment, CSV only
  prdflow run --mode advanced --format csv

  # Record the run in Redis
  prdflow run --mode optimized --redis localhost:6379`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "", "Assignment mode: basic, advanced, optimized or reinforcement")
	runCmd.Flags().StringVar(&runPRDPath, "prd", scaffold.PRDFileName, "Path to the PRD (JSON or YAML)")
	runCmd.Flags().StringVar(&runEngineers, "engineers", scaffold.EngineersFileName, "Path to engineer profiles (JSON or YAML)")
	runCmd.Flags().StringVar(&runOutputPrefix, "output-prefix", "", "Prefix for output files")
	runCmd.Flags().StringSliceVar(&runFormats, "format", nil, "Output formats: json, csv, xlsx")
	runCmd.Flags().StringVar(&runRedisAddr, "redis", "", "Redis address for run history")
	runCmd.Flags().StringVar(&runNamespace, "namespace", "", "Run history namespace")
	runCmd.Flags().StringVar(&runMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "Append logs to this file")
	runCmd.Flags().BoolVarP(&runQuiet, "quiet", "q", false, "Skip the assignment table")
	rootCmd.AddCommand(runCmd)
}

// applyRunOverrides copies explicitly set flags onto cfg.
func applyRunOverrides(cmd *cobra.Command, cfg *config.PrdflowConfig) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = runMode
	}
	if flags.Changed("output-prefix") {
		cfg.Output.Prefix = runOutputPrefix
	}
	if flags.Changed("format") {
		cfg.Output.Formats = runFormats
	}
	if flags.Changed("redis") {
		cfg.Redis.Addr = runRedisAddr
	}
	if flags.Changed("namespace") {
		cfg.Redis.Namespace = runNamespace
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = runMetricsFile
	}
	if flags.Changed("log-file") {
		cfg.LogFile = runLogFile
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{fmt.Sprintf("Fix %s, or create one with:\n  prdflow init", configPath)},
		)
	}
	applyRunOverrides(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return printer.Error("invalid configuration", err.Error(), nil)
	}

	closer, err := logging.Setup(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer closer.Close()

	opts := []pipeline.Option{pipeline.WithMetrics(metrics.NewRecorder())}

	if cfg.Redis.Addr != "" {
		client, err := connectStore(ctx, cfg)
		if err != nil {
			printer.Warning("Run history disabled: %v\n", err)
		} else {
			defer client.Close()
			opts = append(opts, pipeline.WithStore(client))
		}
	}

	engine, err := pipeline.NewEngine(cfg, opts...)
	if err != nil {
		return printer.Error("failed to start run", err.Error(), nil)
	}

	printer.Step("Running %s mode on %s with %s\n", engine.Mode(), runPRDPath, runEngineers)

	result, err := engine.Run(ctx, runPRDPath, runEngineers)
	if err != nil {
		return reportRunError(err)
	}

	out := cmd.OutOrStdout()
	if !runQuiet {
		fmt.Fprintln(out)
		export.FormatAssignments(out, result.Assignments)
		fmt.Fprintln(out)
		export.FormatWorkload(out, result.Assignments, result.Roster)
	}
	fmt.Fprintln(out)
	export.FormatReport(out, result.Evaluation)
	fmt.Fprintln(out)

	if result.Dropped > 0 {
		printer.Warning("%d of %d stories were not assigned by the reallocation pass\n", result.Dropped, len(result.UserStories))
	}
	for _, f := range result.Files {
		printer.Success("Wrote %s\n", f)
	}
	if result.Stored {
		printer.Success("Saved run %s to namespace '%s'\n", result.RunID, cfg.Redis.Namespace)
	}

	return nil
}

// connectStore opens the run store and checks it is reachable.
func connectStore(ctx context.Context, cfg *config.PrdflowConfig) (*store.Client, error) {
	client, err := store.NewClient(redisOptions(cfg.Redis), cfg.Redis.Namespace)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis at %s is unreachable: %w", cfg.Redis.Addr, err)
	}

	log.Printf("[Store] Connected to %s (namespace '%s')", cfg.Redis.Addr, cfg.Redis.Namespace)
	return client, nil
}

func reportRunError(err error) error {
	switch {
	case assign.IsSimilarityUnavailable(err):
		return printer.Error(
			"similarity backend unavailable",
			err.Error(),
			[]string{
				"Check the similarity endpoint in prdflow.yml",
				"Use the offline backend:\n  similarity:\n    backend: lexical",
				"Run without skill matching:\n  prdflow run --mode basic",
			},
		)
	case assign.IsValidationError(err), errors.Is(err, assign.ErrEmptyRoster):
		return printer.Error(
			"invalid engineer profiles",
			err.Error(),
			[]string{"Every engineer needs a unique name and non-empty skills"},
		)
	default:
		return printer.Error("run failed", err.Error(), nil)
	}
}
