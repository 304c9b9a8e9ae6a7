package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/prdflow/internal/config"
)

var (
	version string
	commit  string
	date    string

	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "prdflow",
	Short: "prdflow - turn a PRD into user stories and engineer assignments",
	Long: `prdflow reads a product requirements document and an engineer roster,
generates epics and user stories, and assigns each story to an engineer.

Modes:
  basic          - round-robin over the roster
  advanced       - greedy skill match penalised by current workload
  optimized      - advanced followed by a reallocation pass
  reinforcement  - alias of optimized

Runs can optionally be recorded in Redis and inspected with 'prdflow runs'.`,
	Version: version,
	// Show help instead of silently succeeding when no subcommand is given
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the root command. Cobra's own error and usage printing is
// silenced; commands report errors through the printer package.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "Path to prdflow.yml")
}

// loadConfig reads the --config file, falling back to defaults when it is
// absent.
func loadConfig() (*config.PrdflowConfig, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
