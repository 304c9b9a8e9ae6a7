package similarity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/dyluth/prdflow/pkg/assign"
)

// HTTPEmbedder scores texts by cosine similarity of embeddings fetched from
// an OpenAI-compatible embeddings endpoint. Embeddings are cached per text
// for the lifetime of the embedder, so the roster's skill texts are fetched
// once per run.
type HTTPEmbedder struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client

	mu    sync.Mutex
	cache map[string][]float64
}

var _ assign.Similarity = (*HTTPEmbedder)(nil)

// HTTPOption customizes an HTTPEmbedder.
type HTTPOption func(*HTTPEmbedder)

// WithModel sets the model name sent with each request.
func WithModel(model string) HTTPOption {
	return func(h *HTTPEmbedder) { h.model = model }
}

// WithAPIKey sets a bearer token.
func WithAPIKey(key string) HTTPOption {
	return func(h *HTTPEmbedder) { h.apiKey = key }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(h *HTTPEmbedder) { h.client.Timeout = d }
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTPEmbedder) { h.client = c }
}

// NewHTTPEmbedder creates an embedder for endpoint.
func NewHTTPEmbedder(endpoint string, opts ...HTTPOption) (*HTTPEmbedder, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("embedding endpoint cannot be empty")
	}

	h := &HTTPEmbedder{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		cache:    make(map[string][]float64),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

type embeddingRequest struct {
	Model string   `json:"model,omitempty"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Scores embeds text and candidates (one request for whatever is not cached)
// and returns cosine(text, candidate) for each candidate.
func (h *HTTPEmbedder) Scores(ctx context.Context, text string, candidates []string) ([]float64, error) {
	vectors, err := h.embed(ctx, append([]string{text}, candidates...))
	if err != nil {
		return nil, err
	}

	query := vectors[0]
	scores := make([]float64, len(candidates))
	for i := range candidates {
		v := vectors[i+1]
		if len(v) != len(query) {
			return nil, fmt.Errorf("embedding dimension mismatch: %d vs %d", len(query), len(v))
		}
		scores[i] = Cosine(query, v)
	}
	return scores, nil
}

func (h *HTTPEmbedder) embed(ctx context.Context, texts []string) ([][]float64, error) {
	h.mu.Lock()
	var missing []string
	seen := make(map[string]bool)
	for _, t := range texts {
		if _, ok := h.cache[t]; !ok && !seen[t] {
			missing = append(missing, t)
			seen[t] = true
		}
	}
	h.mu.Unlock()

	if len(missing) > 0 {
		fetched, err := h.fetch(ctx, missing)
		if err != nil {
			return nil, err
		}
		h.mu.Lock()
		for i, t := range missing {
			h.cache[t] = fetched[i]
		}
		h.mu.Unlock()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = h.cache[t]
	}
	return out, nil
}

func (h *HTTPEmbedder) fetch(ctx context.Context, texts []string) ([][]float64, error) {
	body, err := json.Marshal(embeddingRequest{Model: h.model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("failed to encode embedding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	start := time.Now()
	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("embedding endpoint returned %s: %s", resp.Status, bytes.TrimSpace(snippet))
	}

	var decoded embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode embedding response: %w", err)
	}
	if len(decoded.Data) != len(texts) {
		return nil, fmt.Errorf("embedding endpoint returned %d vectors for %d inputs", len(decoded.Data), len(texts))
	}

	vectors := make([][]float64, len(texts))
	for _, d := range decoded.Data {
		if d.Index < 0 || d.Index >= len(texts) || vectors[d.Index] != nil {
			return nil, fmt.Errorf("embedding endpoint returned invalid index %d", d.Index)
		}
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("embedding endpoint returned an empty vector at index %d", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}

	log.Printf("[Similarity] Embedded %d texts in %v", len(texts), time.Since(start).Round(time.Millisecond))
	return vectors, nil
}
