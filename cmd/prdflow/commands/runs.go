package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/dyluth/prdflow/internal/config"
	"github.com/dyluth/prdflow/internal/printer"
	"github.com/dyluth/prdflow/internal/resolver"
	"github.com/dyluth/prdflow/internal/runs"
	"github.com/dyluth/prdflow/internal/store"
	"github.com/dyluth/prdflow/internal/timespec"
	"github.com/dyluth/prdflow/pkg/assign"
)

var (
	runsRedisAddr    string
	runsNamespace    string
	runsOutputFormat string
	runsSince        string
	runsUntil        string
	runsMode         string
	runsEngineer     string
	runsProduct      string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect run history stored in Redis",
	Long: `Inspect runs recorded by 'prdflow run' when redis.addr is configured.

Examples:
  # List runs from the last day
  prdflow runs list --since 24h

  # Runs that gave work to alice, as JSONL
  prdflow runs list --engineer alice -o jsonl | jq .id

  # Show one run by short ID
  prdflow runs get 550e84

  # Follow new runs as they finish
  prdflow runs watch`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored runs",
	Args:  cobra.NoArgs,
	RunE:  runRunsList,
}

var runsGetCmd = &cobra.Command{
	Use:   "get RUN_ID",
	Short: "Show a stored run as JSON (accepts short IDs)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsGet,
}

var runsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream runs as they finish",
	Args:  cobra.NoArgs,
	RunE:  runRunsWatch,
}

func init() {
	runsCmd.PersistentFlags().StringVar(&runsRedisAddr, "redis", "", "Redis address (overrides redis.addr)")
	runsCmd.PersistentFlags().StringVar(&runsNamespace, "namespace", "", "Run history namespace (overrides redis.namespace)")

	runsListCmd.Flags().StringVarP(&runsOutputFormat, "output", "o", "default", "Output format: default or jsonl")
	runsListCmd.Flags().StringVar(&runsSince, "since", "", "Show runs after time (duration, days like 7d, or RFC3339)")
	runsListCmd.Flags().StringVar(&runsUntil, "until", "", "Show runs before time (duration, days like 7d, or RFC3339)")
	runsListCmd.Flags().StringVar(&runsMode, "mode", "", "Filter by assignment mode")
	runsListCmd.Flags().StringVar(&runsEngineer, "engineer", "", "Filter by engineer name")
	runsListCmd.Flags().StringVar(&runsProduct, "product", "", "Filter by product name (glob pattern: \"Acme*\")")

	runsCmd.AddCommand(runsListCmd, runsGetCmd, runsWatchCmd)
	rootCmd.AddCommand(runsCmd)
}

func redisOptions(rc *config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	}
}

// openRunStore resolves the Redis settings from config and flags and
// connects.
func openRunStore(ctx context.Context, cmd *cobra.Command) (*store.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, printer.Error("invalid configuration", err.Error(), nil)
	}
	if cmd.Flags().Changed("redis") {
		cfg.Redis.Addr = runsRedisAddr
	}
	if cmd.Flags().Changed("namespace") {
		cfg.Redis.Namespace = runsNamespace
	}

	if cfg.Redis.Addr == "" {
		return nil, printer.Error(
			"run history not configured",
			"No Redis address is set.",
			[]string{
				"Pass one on the command line:\n  prdflow runs list --redis localhost:6379",
				"Or set redis.addr in prdflow.yml",
			},
		)
	}

	client, err := connectStore(ctx, cfg)
	if err != nil {
		return nil, printer.Error("cannot reach run history", err.Error(), nil)
	}
	return client, nil
}

func runRunsList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var format runs.OutputFormat
	switch runsOutputFormat {
	case "default":
		format = runs.OutputFormatDefault
	case "jsonl":
		format = runs.OutputFormatJSONL
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", runsOutputFormat),
			[]string{"Valid formats: default, jsonl"},
		)
	}

	sinceMs, untilMs, err := timespec.ParseRange(runsSince, runsUntil, time.Now())
	if err != nil {
		return printer.Error("invalid time filter", err.Error(), nil)
	}

	filters := &runs.FilterCriteria{
		SinceTimestampMs: sinceMs,
		UntilTimestampMs: untilMs,
		Engineer:         runsEngineer,
		ProductGlob:      runsProduct,
	}
	if runsMode != "" {
		mode, err := assign.ParseMode(runsMode)
		if err != nil {
			return printer.Error("invalid mode filter", err.Error(), nil)
		}
		filters.Mode = mode
	}

	client, err := openRunStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	return runs.ListRuns(ctx, client, format, filters, cmd.OutOrStdout())
}

func runRunsGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	client, err := openRunStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	runID, err := resolver.ResolveRunID(ctx, client, args[0])
	if err != nil {
		if ambiguous, ok := err.(*resolver.AmbiguousError); ok {
			shown, more := ambiguous.Candidates()
			suggestions := append([]string{}, shown...)
			if more > 0 {
				suggestions = append(suggestions, fmt.Sprintf("...and %d more", more))
			}
			return printer.ErrorWithContext(
				"ambiguous run ID",
				err.Error()+". Use a longer prefix. Candidates:",
				nil,
				suggestions,
			)
		}
		if resolver.IsNotFoundError(err) {
			return printer.Error(
				"run not found",
				err.Error(),
				[]string{"List recorded runs:\n  prdflow runs list"},
			)
		}
		return printer.Error("invalid run ID", err.Error(), nil)
	}

	if err := runs.GetRun(ctx, client, runID, cmd.OutOrStdout()); err != nil {
		return printer.Error("failed to fetch run", err.Error(), nil)
	}
	return nil
}

func runRunsWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := openRunStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	sub, err := client.SubscribeRunEvents(ctx)
	if err != nil {
		return printer.Error("failed to watch runs", err.Error(), nil)
	}
	defer sub.Close()

	printer.Step("Watching namespace '%s' (Ctrl+C to stop)\n", client.Namespace())
	return watchRuns(ctx, sub, cmd)
}

// watchRuns prints runs from sub until ctx ends or the subscription closes.
func watchRuns(ctx context.Context, sub *store.Subscription, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			return nil
		case run, ok := <-sub.Events():
			if !ok {
				return nil
			}
			runs.FormatEvent(out, run)
		case err, ok := <-sub.Errors():
			if !ok {
				return nil
			}
			printer.Warning("%v\n", err)
		}
	}
}
