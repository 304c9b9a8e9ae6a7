package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/prdflow/pkg/assign"
)

func TestRecorder_ObserveRun(t *testing.T) {
	r := NewRecorder()
	result := assign.Assignment{
		{Story: "a", Engineer: "x"},
		{Story: "b", Engineer: "x"},
		{Story: "c", Engineer: "y"},
	}

	r.ObserveRun(assign.ModeOptimized, 5, result, 2, 150*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.assignments.WithLabelValues("optimized", "x")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.assignments.WithLabelValues("optimized", "y")))
	assert.Equal(t, 5.0, testutil.ToFloat64(r.stories.WithLabelValues("optimized")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.dropped))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.ObserveRun(assign.ModeBasic, 1, assign.Assignment{{Story: "a", Engineer: "x"}}, 0, time.Second)

	path := filepath.Join(t.TempDir(), "prdflow.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `prdflow_assignments_total{engineer="x",mode="basic"} 1`)
	assert.Contains(t, string(data), "prdflow_run_duration_seconds_bucket")
}

func TestRecorder_WriteTextfileError(t *testing.T) {
	r := NewRecorder()
	err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing-dir", "x.prom"))
	assert.Error(t, err)
}
