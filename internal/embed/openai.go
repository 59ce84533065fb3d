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

const openAIDefaultEndpoint = "https://api.openai.com"

// openAIClient embeds text via OpenAI's POST /v1/embeddings endpoint
//.
type openAIClient struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	dim        int
}

// NewOpenAIClient creates an embedder client for OpenAI's embeddings API.
func NewOpenAIClient(endpoint, apiKey, model string) *openAIClient {
	if endpoint == "" {
		endpoint = openAIDefaultEndpoint
	}
	dim, _ := LookupDimension("openai", model)
	return &openAIClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		dim:        dim,
	}
}

type openAIEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbedResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *openAIClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	return retry.Do(ctx, func() ([][]float32, error) {
		body, err := json.Marshal(openAIEmbedRequest{Model: c.model, Input: texts})
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("marshal openai request: %w", err))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/embeddings", bytes.NewReader(body))
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("build openai request: %w", err))
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("openai request: %w", err)
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read openai response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, fmt.Errorf("openai transient error (status %d): %s", resp.StatusCode, string(raw))
		}
		if resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(fmt.Errorf("openai error (status %d): %s", resp.StatusCode, string(raw)))
		}

		var decoded openAIEmbedResponse
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("decode openai response: %w", err))
		}
		if decoded.Error != nil {
			return nil, backoff.Permanent(fmt.Errorf("openai api error: %s", decoded.Error.Message))
		}

		vectors := make([][]float32, len(texts))
		for _, d := range decoded.Data {
			vectors[d.Index] = d.Embedding
		}
		return vectors, nil
	})
}

func (c *openAIClient) Dimensions() int { return c.dim }

func (c *openAIClient) Close() error { return nil }
