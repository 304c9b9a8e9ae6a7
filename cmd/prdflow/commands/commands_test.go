package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/prdflow/internal/scaffold"
	"github.com/dyluth/prdflow/internal/store"
	"github.com/dyluth/prdflow/pkg/assign"
)

// execute runs the root command with args and returns what commands wrote
// through cmd.OutOrStdout. Flag state from earlier calls is reset first.
func execute(t *testing.T, args ...string) (string, error) {
	resetFlags(rootCmd)
	if args == nil {
		args = []string{}
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			sv.Replace(nil)
		} else {
			f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestRootCommand_ShowsHelpWhenNoSubcommand(t *testing.T) {
	out, err := execute(t)
	assert.NoError(t, err)
	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "prdflow")
}

func TestRootCommand_RejectsUnknownFlags(t *testing.T) {
	_, err := execute(t, "--goal", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, scaffold.Initialize(dir, false))

	prefix := filepath.Join(dir, "out")
	out, err := execute(t, "run",
		"--config", filepath.Join(dir, "prdflow.yml"),
		"--prd", filepath.Join(dir, scaffold.PRDFileName),
		"--engineers", filepath.Join(dir, scaffold.EngineersFileName),
		"--mode", "basic",
		"--output-prefix", prefix,
		"--format", "json,csv",
		"--log-file", filepath.Join(dir, "pipeline.log"),
	)
	require.NoError(t, err)

	assert.Contains(t, out, "Workload Variance")
	assert.Contains(t, out, "Alice")
	assert.FileExists(t, prefix+".json")
	assert.FileExists(t, prefix+".csv")
	assert.NoFileExists(t, prefix+".xlsx")

	var doc struct {
		UserStories []string    `json:"user_stories"`
		Assignments [][2]string `json:"assignments"`
	}
	data, err := os.ReadFile(prefix + ".json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Len(t, doc.Assignments, len(doc.UserStories))
	assert.Equal(t, "Alice", doc.Assignments[0][1])

	logData, err := os.ReadFile(filepath.Join(dir, "pipeline.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "Basic Mode Task Assignments")
}

func TestRunCommand_InvalidMode(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "run",
		"--config", filepath.Join(dir, "missing.yml"),
		"--mode", "quantum",
	)
	require.Error(t, err)
	assert.Equal(t, "invalid configuration", err.Error())
}

func TestRunsCommands(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := store.NewClient(&redis.Options{Addr: mr.Addr()}, "team")
	require.NoError(t, err)
	defer client.Close()

	const runID = "550e8400-e29b-41d4-a716-446655440000"
	require.NoError(t, client.SaveRun(context.Background(), &store.Run{
		ID:          runID,
		Mode:        assign.ModeAdvanced,
		ProductName: "Acme",
		CreatedAtMs: 1700000000000,
		UserStories: []string{"s1"},
		Assignments: assign.Assignment{{Story: "s1", Engineer: "alice"}},
	}))

	common := []string{
		"--config", filepath.Join(t.TempDir(), "missing.yml"),
		"--redis", mr.Addr(),
		"--namespace", "team",
	}

	t.Run("list", func(t *testing.T) {
		out, err := execute(t, append([]string{"runs", "list"}, common...)...)
		require.NoError(t, err)
		assert.Contains(t, out, "550e8400")
		assert.Contains(t, out, "1 run found")
	})

	t.Run("list filtered out", func(t *testing.T) {
		out, err := execute(t, append([]string{"runs", "list", "--mode", "basic"}, common...)...)
		require.NoError(t, err)
		assert.Contains(t, out, "No runs found")
	})

	t.Run("get by short id", func(t *testing.T) {
		out, err := execute(t, append([]string{"runs", "get", "550e84"}, common...)...)
		require.NoError(t, err)

		var run store.Run
		require.NoError(t, json.Unmarshal([]byte(out), &run))
		assert.Equal(t, runID, run.ID)
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := execute(t, append([]string{"runs", "get", "ffffff"}, common...)...)
		require.Error(t, err)
		assert.Equal(t, "run not found", err.Error())
	})

	t.Run("requires redis", func(t *testing.T) {
		_, err := execute(t, "runs", "list", "--config", filepath.Join(t.TempDir(), "missing.yml"))
		require.Error(t, err)
		assert.Equal(t, "run history not configured", err.Error())
	})
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "init", "--dir", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "prdflow.yml"))

	_, err = execute(t, "init", "--dir", dir)
	require.Error(t, err)

	_, err = execute(t, "init", "--dir", dir, "--force")
	assert.NoError(t, err)
}
