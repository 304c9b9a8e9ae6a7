package similarity

import (
	"fmt"
	"os"

	"github.com/dyluth/prdflow/internal/config"
	"github.com/dyluth/prdflow/pkg/assign"
)

// New builds the backend selected by cfg.
func New(cfg *config.SimilarityConfig) (assign.Similarity, error) {
	if cfg == nil {
		return NewLexical(), nil
	}

	switch cfg.Backend {
	case "", config.BackendLexical:
		return NewLexical(), nil
	case config.BackendHTTP:
		opts := []HTTPOption{WithModel(cfg.Model)}
		if cfg.Timeout > 0 {
			opts = append(opts, WithTimeout(cfg.Timeout))
		}
		if cfg.APIKeyEnv != "" {
			opts = append(opts, WithAPIKey(os.Getenv(cfg.APIKeyEnv)))
		}
		return NewHTTPEmbedder(cfg.Endpoint, opts...)
	default:
		return nil, fmt.Errorf("unknown similarity backend: %s", cfg.Backend)
	}
}
