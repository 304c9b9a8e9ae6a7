package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dyluth/prdflow/pkg/assign"
)

// DefaultFileName is the configuration file looked up in the working directory.
const DefaultFileName = "prdflow.yml"

const (
	BackendLexical = "lexical"
	BackendHTTP    = "http"

	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// PrdflowConfig represents the top-level prdflow.yml configuration
type PrdflowConfig struct {
	Version     string            `yaml:"version"`
	Mode        string            `yaml:"mode"`
	Similarity  *SimilarityConfig `yaml:"similarity,omitempty"`
	Output      *OutputConfig     `yaml:"output,omitempty"`
	LogFile     string            `yaml:"log_file,omitempty"`
	MetricsFile string            `yaml:"metrics_file,omitempty"`
	Redis       *RedisConfig      `yaml:"redis,omitempty"`
}

// SimilarityConfig selects and configures the similarity backend
type SimilarityConfig struct {
	Backend   string        `yaml:"backend"`
	Endpoint  string        `yaml:"endpoint,omitempty"`
	Model     string        `yaml:"model,omitempty"`
	APIKeyEnv string        `yaml:"api_key_env,omitempty"` // Name of the env var holding a bearer token
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// OutputConfig controls which files a run writes
type OutputConfig struct {
	Prefix  string   `yaml:"prefix"`
	Formats []string `yaml:"formats"`
}

// RedisConfig enables run persistence when Addr is set
type RedisConfig struct {
	Addr      string `yaml:"addr,omitempty"`
	Password  string `yaml:"password,omitempty"`
	DB        int    `yaml:"db,omitempty"`
	Namespace string `yaml:"namespace,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *PrdflowConfig {
	cfg := &PrdflowConfig{Version: "1.0"}
	cfg.applyDefaults()
	return cfg
}

func (c *PrdflowConfig) applyDefaults() {
	if c.Mode == "" {
		c.Mode = string(assign.ModeBasic)
	}
	if c.Similarity == nil {
		c.Similarity = &SimilarityConfig{}
	}
	if c.Similarity.Backend == "" {
		c.Similarity.Backend = BackendLexical
	}
	if c.Similarity.Timeout == 0 {
		c.Similarity.Timeout = 30 * time.Second
	}
	if c.Output == nil {
		c.Output = &OutputConfig{}
	}
	if c.Output.Prefix == "" {
		c.Output.Prefix = "output"
	}
	if c.Output.Formats == nil {
		c.Output.Formats = []string{FormatJSON, FormatXLSX}
	}
	if c.LogFile == "" {
		c.LogFile = "pipeline.log"
	}
	if c.Redis == nil {
		c.Redis = &RedisConfig{}
	}
	if c.Redis.Namespace == "" {
		c.Redis.Namespace = "default"
	}
}

// Validate applies defaults and performs strict validation on the configuration
func (c *PrdflowConfig) Validate() error {
	if c.Version != "1.0" {
		return fmt.Errorf("unsupported version: %s (expected: 1.0)", c.Version)
	}

	c.applyDefaults()

	if _, err := assign.ParseMode(c.Mode); err != nil {
		return err
	}

	if err := c.Similarity.Validate(); err != nil {
		return err
	}

	for _, f := range c.Output.Formats {
		if f != FormatJSON && f != FormatCSV && f != FormatXLSX {
			return fmt.Errorf("invalid output format: %s (must be 'json', 'csv' or 'xlsx')", f)
		}
	}

	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must be >= 0, got %d", c.Redis.DB)
	}

	return nil
}

// Validate checks the similarity backend settings
func (s *SimilarityConfig) Validate() error {
	switch s.Backend {
	case BackendLexical:
	case BackendHTTP:
		if s.Endpoint == "" {
			return fmt.Errorf("similarity.endpoint is required for the http backend")
		}
	default:
		return fmt.Errorf("invalid similarity backend: %s (must be 'lexical' or 'http')", s.Backend)
	}

	if s.Timeout < 0 {
		return fmt.Errorf("similarity.timeout must be positive, got %v", s.Timeout)
	}

	return nil
}

// HasFormat reports whether the output format f is enabled.
func (o *OutputConfig) HasFormat(f string) bool {
	for _, enabled := range o.Formats {
		if enabled == f {
			return true
		}
	}
	return false
}

// Load reads and validates prdflow.yml from the specified path
func Load(path string) (*PrdflowConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config PrdflowConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// LoadOrDefault loads path if it exists and falls back to Default otherwise.
func LoadOrDefault(path string) (*PrdflowConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}
