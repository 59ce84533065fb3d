package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/mvp-joe/codeindex/internal/retry"
)

const ollamaDefaultEndpoint = "http://localhost:11434"

// ollamaClient embeds text via Ollama's POST /api/embeddings endpoint,
// one request per input since Ollama has no native batch API.
type ollamaClient struct {
	httpClient *http.Client
	endpoint   string
	model      string
	dim        int
}

// NewOllamaClient creates an embedder client for a local Ollama server.
func NewOllamaClient(endpoint, model string) *ollamaClient {
	if endpoint == "" {
		endpoint = ollamaDefaultEndpoint
	}
	dim, _ := LookupDimension("ollama", model)
	return &ollamaClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		model:      model,
		dim:        dim,
	}
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

func (c *ollamaClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := c.embedOne(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (c *ollamaClient) embedOne(ctx context.Context, text string) ([]float32, error) {
	return retry.Do(ctx, func() ([]float32, error) {
		body, err := json.Marshal(ollamaEmbedRequest{Model: c.model, Prompt: text})
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("marshal ollama request: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/api/embeddings", bytes.NewReader(body))
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("build ollama request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("ollama request: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read ollama response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, fmt.Errorf("ollama transient error (status %d): %s", resp.StatusCode, string(raw))
		}
		if resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(raw)))
		}

		var decoded ollamaEmbedResponse
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode ollama response: %w", err))
		}
		return decoded.Embedding, nil
	})
}

func (c *ollamaClient) Dimensions() int { return c.dim }

func (c *ollamaClient) Close() error { return nil }
