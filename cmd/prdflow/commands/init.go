package commands

import (
	"github.com/spf13/cobra"

	"github.com/dyluth/prdflow/internal/printer"
	"github.com/dyluth/prdflow/internal/scaffold"
)

var (
	forceInit bool
	initDir   string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter prdflow project",
	Long: `Create a starter prdflow project.

Creates:
  • prdflow.yml    - configuration
  • prd.json       - example product requirements document
  • engineers.json - example engineer roster

Use --force to overwrite existing files.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite existing files")
	initCmd.Flags().StringVar(&initDir, "dir", ".", "Directory to initialize")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	if err := scaffold.Initialize(initDir, forceInit); err != nil {
		return printer.Error("initialization failed", err.Error(), nil)
	}

	scaffold.PrintSuccess()
	return nil
}
