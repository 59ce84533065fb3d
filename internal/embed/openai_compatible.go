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

// openAICompatibleClient embeds text via a POST {base}/embeddings
// endpoint shaped like OpenAI's, for self-hosted or third-party
// OpenAI-compatible servers. Dimension is configured explicitly since it
// cannot be resolved from a static model table.
type openAICompatibleClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	dim        int
}

// NewOpenAICompatibleClient creates an embedder client for an
// OpenAI-compatible server at endpoint, with an explicit dimension.
func NewOpenAICompatibleClient(endpoint, apiKey, model string, dim int) *openAICompatibleClient {
	return &openAICompatibleClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		dim:        dim,
	}
}

type openAICompatibleRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAICompatibleResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (c *openAICompatibleClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	return retry.Do(ctx, func() ([][]float32, error) {
		body, err := json.Marshal(openAICompatibleRequest{Model: c.model, Input: texts})
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("marshal request: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/embeddings", bytes.NewReader(body))
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, fmt.Errorf("transient error (status %d): %s", resp.StatusCode, string(raw))
		}
		if resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(fmt.Errorf("error (status %d): %s", resp.StatusCode, string(raw)))
		}

		var decoded openAICompatibleResponse
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}

		vectors := make([][]float32, len(texts))
		for _, d := range decoded.Data {
			vectors[d.Index] = d.Embedding
		}
		return vectors, nil
	})
}

func (c *openAICompatibleClient) Dimensions() int { return c.dim }

func (c *openAICompatibleClient) Close() error { return nil }
