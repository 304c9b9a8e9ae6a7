package runs

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/prdflow/internal/store"
	"github.com/dyluth/prdflow/pkg/assign"
)

func setupStore(t *testing.T) *store.Client {
	mr := miniredis.RunT(t)

	client, err := store.NewClient(&redis.Options{Addr: mr.Addr()}, "test-ns")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func saveRun(t *testing.T, client *store.Client, id string, mode assign.Mode, createdAtMs int64, pairs assign.Assignment) *store.Run {
	run := &store.Run{
		ID:            id,
		Mode:          mode,
		ProductName:   "Acme Planner",
		CreatedAtMs:   createdAtMs,
		EngineerCount: 2,
		UserStories:   []string{"s1", "s2"},
		Assignments:   pairs,
	}
	require.NoError(t, client.SaveRun(context.Background(), run))
	return run
}

const (
	runA = "550e8400-e29b-41d4-a716-446655440000"
	runB = "650e8400-e29b-41d4-a716-446655440000"
)

func TestListRuns(t *testing.T) {
	t.Run("empty namespace - default format", func(t *testing.T) {
		client := setupStore(t)

		var buf bytes.Buffer
		require.NoError(t, ListRuns(context.Background(), client, OutputFormatDefault, nil, &buf))
		assert.Contains(t, buf.String(), "No runs found in namespace 'test-ns'")
	})

	t.Run("table lists runs oldest first", func(t *testing.T) {
		client := setupStore(t)
		saveRun(t, client, runB, assign.ModeBasic, 2000, assign.Assignment{{Story: "s1", Engineer: "alice"}})
		saveRun(t, client, runA, assign.ModeAdvanced, 1000, assign.Assignment{{Story: "s1", Engineer: "bob"}})

		var buf bytes.Buffer
		require.NoError(t, ListRuns(context.Background(), client, OutputFormatDefault, nil, &buf))

		output := buf.String()
		assert.Contains(t, output, "2 runs found")
		assert.Less(t, strings.Index(output, "550e8400"), strings.Index(output, "650e8400"))
		assert.Contains(t, output, "advanced")
	})

	t.Run("jsonl with mode filter", func(t *testing.T) {
		client := setupStore(t)
		saveRun(t, client, runA, assign.ModeBasic, 1000, nil)
		saveRun(t, client, runB, assign.ModeOptimized, 2000, nil)

		var buf bytes.Buffer
		filters := &FilterCriteria{Mode: assign.ModeOptimized}
		require.NoError(t, ListRuns(context.Background(), client, OutputFormatJSONL, filters, &buf))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)

		var run store.Run
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &run))
		assert.Equal(t, runB, run.ID)
	})

	t.Run("unknown format", func(t *testing.T) {
		client := setupStore(t)
		err := ListRuns(context.Background(), client, "xml", nil, &bytes.Buffer{})
		assert.ErrorContains(t, err, "unknown output format")
	})
}

func TestFilterCriteria(t *testing.T) {
	run := &store.Run{
		ProductName: "Acme Planner",
		Mode:        assign.ModeAdvanced,
		CreatedAtMs: 5000,
		Assignments: assign.Assignment{{Story: "s", Engineer: "alice"}},
	}

	tests := []struct {
		name    string
		filter  FilterCriteria
		matches bool
	}{
		{"no filters", FilterCriteria{}, true},
		{"since before", FilterCriteria{SinceTimestampMs: 4000}, true},
		{"since after", FilterCriteria{SinceTimestampMs: 6000}, false},
		{"until after", FilterCriteria{UntilTimestampMs: 6000}, true},
		{"until before", FilterCriteria{UntilTimestampMs: 4000}, false},
		{"mode match", FilterCriteria{Mode: assign.ModeAdvanced}, true},
		{"mode mismatch", FilterCriteria{Mode: assign.ModeBasic}, false},
		{"product glob", FilterCriteria{ProductGlob: "Acme*"}, true},
		{"product glob mismatch", FilterCriteria{ProductGlob: "Globex*"}, false},
		{"engineer assigned", FilterCriteria{Engineer: "alice"}, true},
		{"engineer absent", FilterCriteria{Engineer: "bob"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.matches, tt.filter.Matches(run))
		})
	}
}

func TestGetRun(t *testing.T) {
	t.Run("existing run", func(t *testing.T) {
		client := setupStore(t)
		saveRun(t, client, runA, assign.ModeBasic, 1000, assign.Assignment{{Story: "s1", Engineer: "alice"}})

		var buf bytes.Buffer
		require.NoError(t, GetRun(context.Background(), client, runA, &buf))

		var run store.Run
		require.NoError(t, json.Unmarshal(buf.Bytes(), &run))
		assert.Equal(t, runA, run.ID)
		assert.Equal(t, "alice", run.Assignments[0].Engineer)
	})

	t.Run("invalid id", func(t *testing.T) {
		client := setupStore(t)
		err := GetRun(context.Background(), client, "not-a-uuid", &bytes.Buffer{})
		assert.ErrorContains(t, err, "must be a valid UUID")
	})

	t.Run("missing run", func(t *testing.T) {
		client := setupStore(t)
		err := GetRun(context.Background(), client, runA, &bytes.Buffer{})
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})
}

func TestFormatAge(t *testing.T) {
	now := time.UnixMilli(10 * 24 * 3600 * 1000)

	assert.Equal(t, "-", formatAge(0, now))
	assert.Equal(t, "30s ago", formatAge(now.Add(-30*time.Second).UnixMilli(), now))
	assert.Equal(t, "5m ago", formatAge(now.Add(-5*time.Minute).UnixMilli(), now))
	assert.Equal(t, "3h ago", formatAge(now.Add(-3*time.Hour).UnixMilli(), now))
	assert.Equal(t, "2d ago", formatAge(now.Add(-49*time.Hour).UnixMilli(), now))
}

func TestFormatEvent(t *testing.T) {
	var buf bytes.Buffer
	FormatEvent(&buf, &store.Run{
		ID:             runA,
		Mode:           assign.ModeOptimized,
		CreatedAtMs:    1000,
		UserStories:    []string{"a", "b", "c"},
		Assignments:    assign.Assignment{{Story: "a", Engineer: "x"}},
		DroppedStories: 2,
	})

	out := buf.String()
	assert.Contains(t, out, "run 550e8400")
	assert.Contains(t, out, "mode=optimized stories=3 assigned=1 dropped=2")
}
