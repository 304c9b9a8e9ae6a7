package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prdflow.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `version: "1.0"
mode: optimized
similarity:
  backend: http
  endpoint: "http://localhost:8080/v1/embeddings"
  model: all-MiniLM-L6-v2
  timeout: 5s
output:
  prefix: sprint-12
  formats: [json, csv]
log_file: run.log
metrics_file: metrics.prom
redis:
  addr: localhost:6379
  namespace: team-a
`)

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "optimized", config.Mode)
	assert.Equal(t, BackendHTTP, config.Similarity.Backend)
	assert.Equal(t, "all-MiniLM-L6-v2", config.Similarity.Model)
	assert.Equal(t, 5*time.Second, config.Similarity.Timeout)
	assert.Equal(t, "sprint-12", config.Output.Prefix)
	assert.Equal(t, []string{"json", "csv"}, config.Output.Formats)
	assert.True(t, config.Output.HasFormat(FormatCSV))
	assert.False(t, config.Output.HasFormat(FormatXLSX))
	assert.Equal(t, "run.log", config.LogFile)
	assert.Equal(t, "metrics.prom", config.MetricsFile)
	assert.Equal(t, "team-a", config.Redis.Namespace)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	config, err := Load(writeConfig(t, `version: "1.0"`))
	require.NoError(t, err)

	assert.Equal(t, "basic", config.Mode)
	assert.Equal(t, BackendLexical, config.Similarity.Backend)
	assert.Equal(t, 30*time.Second, config.Similarity.Timeout)
	assert.Equal(t, "output", config.Output.Prefix)
	assert.Equal(t, []string{FormatJSON, FormatXLSX}, config.Output.Formats)
	assert.Equal(t, "pipeline.log", config.LogFile)
	assert.Equal(t, "", config.Redis.Addr)
	assert.Equal(t, "default", config.Redis.Namespace)
}

func TestLoad_FileNotFound(t *testing.T) {
	config, err := Load("/nonexistent/prdflow.yml")
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	config, err := Load(writeConfig(t, `version: "1.0"
mode:
  - this is invalid
    yaml syntax
`))
	assert.Error(t, err)
	assert.Nil(t, config)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		config, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.yml"))
		require.NoError(t, err)
		assert.Equal(t, "basic", config.Mode)
	})

	t.Run("present file is validated", func(t *testing.T) {
		_, err := LoadOrDefault(writeConfig(t, `version: "9"`))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  PrdflowConfig
		wantErr string
	}{
		{
			name:    "unsupported version",
			config:  PrdflowConfig{Version: "2.0"},
			wantErr: "unsupported version: 2.0",
		},
		{
			name:    "unknown mode",
			config:  PrdflowConfig{Version: "1.0", Mode: "clairvoyant"},
			wantErr: "unknown mode",
		},
		{
			name:    "reinforcement is accepted",
			config:  PrdflowConfig{Version: "1.0", Mode: "reinforcement"},
			wantErr: "",
		},
		{
			name:    "unknown backend",
			config:  PrdflowConfig{Version: "1.0", Similarity: &SimilarityConfig{Backend: "telepathy"}},
			wantErr: "invalid similarity backend",
		},
		{
			name:    "http backend without endpoint",
			config:  PrdflowConfig{Version: "1.0", Similarity: &SimilarityConfig{Backend: BackendHTTP}},
			wantErr: "similarity.endpoint is required",
		},
		{
			name:    "negative timeout",
			config:  PrdflowConfig{Version: "1.0", Similarity: &SimilarityConfig{Backend: BackendLexical, Timeout: -time.Second}},
			wantErr: "similarity.timeout must be positive",
		},
		{
			name:    "unknown output format",
			config:  PrdflowConfig{Version: "1.0", Output: &OutputConfig{Formats: []string{"pdf"}}},
			wantErr: "invalid output format: pdf",
		},
		{
			name:    "empty format list disables files",
			config:  PrdflowConfig{Version: "1.0", Output: &OutputConfig{Formats: []string{}}},
			wantErr: "",
		},
		{
			name:    "negative redis db",
			config:  PrdflowConfig{Version: "1.0", Redis: &RedisConfig{DB: -1}},
			wantErr: "redis.db must be >= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
