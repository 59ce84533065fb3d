package vectorstore

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

// restClient talks to a Qdrant-shaped REST vector database: collection
// create/delete/info under /collections/{name}, points upsert/delete
// under /collections/{name}/points, search under
// /collections/{name}/points/search.
type restClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	collection string
}

// NewRESTClient creates a vector-store client for the collection
// belonging to one workspace (see internal/cache.CollectionName).
func NewRESTClient(baseURL, apiKey, collection string) Client {
	return &restClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		collection: collection,
	}
}

type collectionInfoResponse struct {
	Result struct {
		Config struct {
			Params struct {
				Vectors struct {
					Size int `json:"size"`
				} `json:"vectors"`
			} `json:"params"`
		} `json:"config"`
	} `json:"result"`
}

type createCollectionRequest struct {
	Vectors struct {
		Size     int    `json:"size"`
		Distance string `json:"distance"`
	} `json:"vectors"`
}

func (c *restClient) EnsureCollection(ctx context.Context, dim int) error {
	currentDim, exists, err := c.collectionDimension(ctx)
	if err != nil {
		return err
	}

	if exists {
		if currentDim == dim {
			return nil
		}
		// Dimension changed: delete and recreate.
		if err := c.deleteCollection(ctx); err != nil {
			return err
		}
	}

	return c.createCollection(ctx, dim)
}

func (c *restClient) collectionDimension(ctx context.Context) (dim int, exists bool, err error) {
	_, err = retry.Do(ctx, func() (struct{}, error) {
		req, buildErr := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/collections/"+c.collection), nil)
		if buildErr != nil {
			return struct{}{}, backoff.Permanent(buildErr)
		}
		c.setAuth(req)

		resp, doErr := c.httpClient.Do(req)
		if doErr != nil {
			return struct{}{}, fmt.Errorf("vector store request: %w", doErr)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			exists = false
			return struct{}{}, nil
		}

		raw, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return struct{}{}, fmt.Errorf("read vector store response: %w", readErr)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return struct{}{}, fmt.Errorf("vector store transient error (status %d): %s", resp.StatusCode, string(raw))
		}
		if resp.StatusCode != http.StatusOK {
			return struct{}{}, backoff.Permanent(fmt.Errorf("vector store error (status %d): %s", resp.StatusCode, string(raw)))
		}

		var decoded collectionInfoResponse
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("decode collection info: %w", err))
		}
		exists = true
		dim = decoded.Result.Config.Params.Vectors.Size
		return struct{}{}, nil
	})
	return dim, exists, err
}

func (c *restClient) createCollection(ctx context.Context, dim int) error {
	body := createCollectionRequest{}
	body.Vectors.Size = dim
	body.Vectors.Distance = "Cosine"

	_, err := retry.Do(ctx, func() (struct{}, error) {
		return struct{}{}, c.doJSON(ctx, http.MethodPut, "/collections/"+c.collection, body, nil)
	})
	return err
}

func (c *restClient) deleteCollection(ctx context.Context) error {
	_, err := retry.Do(ctx, func() (struct{}, error) {
		return struct{}{}, c.doJSON(ctx, http.MethodDelete, "/collections/"+c.collection, nil, nil)
	})
	return err
}

type upsertPointsRequest struct {
	Points []restPoint `json:"points"`
}

type restPoint struct {
	ID      string    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload Payload   `json:"payload"`
}

func (c *restClient) UpsertPoints(ctx context.Context, points []Point) error {
	for start := 0; start < len(points); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(points) {
			end = len(points)
		}
		if err := c.upsertBatch(ctx, points[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *restClient) upsertBatch(ctx context.Context, points []Point) error {
	body := upsertPointsRequest{Points: make([]restPoint, len(points))}
	for i, p := range points {
		body.Points[i] = restPoint{ID: p.ID, Vector: p.Vector, Payload: p.Payload}
	}

	_, err := retry.Do(ctx, func() (struct{}, error) {
		return struct{}{}, c.doJSON(ctx, http.MethodPut, "/collections/"+c.collection+"/points", body, nil)
	})
	return err
}

type deleteByFilterRequest struct {
	Filter struct {
		Must []matchCondition `json:"must"`
	} `json:"filter"`
}

type matchCondition struct {
	Key   string         `json:"key"`
	Match map[string]any `json:"match"`
}

func (c *restClient) DeleteByFilePath(ctx context.Context, relPath string) error {
	body := deleteByFilterRequest{}
	body.Filter.Must = []matchCondition{{Key: "filePath", Match: map[string]any{"value": relPath}}}

	_, err := retry.Do(ctx, func() (struct{}, error) {
		return struct{}{}, c.doJSON(ctx, http.MethodPost, "/collections/"+c.collection+"/points/delete", body, nil)
	})
	return err
}

type searchRequest struct {
	Vector      []float32 `json:"vector"`
	Limit       int       `json:"limit"`
	ScoreThresh float64   `json:"score_threshold"`
	WithPayload bool      `json:"with_payload"`
}

type searchResponse struct {
	Result []struct {
		Score   float64 `json:"score"`
		Payload Payload `json:"payload"`
	} `json:"result"`
}

func (c *restClient) Search(ctx context.Context, queryVector []float32, limit int, minScore float64) ([]SearchResult, error) {
	body := searchRequest{Vector: queryVector, Limit: limit, ScoreThresh: minScore, WithPayload: true}

	var decoded searchResponse
	_, err := retry.Do(ctx, func() (struct{}, error) {
		return struct{}{}, c.doJSON(ctx, http.MethodPost, "/collections/"+c.collection+"/points/search", body, &decoded)
	})
	if err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(decoded.Result))
	for _, r := range decoded.Result {
		// Defensive re-check: the server's score_threshold should already
		// enforce this, but never surface a point below the floor.
		if r.Score < minScore {
			continue
		}
		results = append(results, SearchResult{Score: r.Score, Payload: r.Payload})
	}
	return results, nil
}

func (c *restClient) Close() error { return nil }

// doJSON performs one HTTP round-trip with a JSON body (if reqBody is
// non-nil) and decodes the JSON response into respOut (if non-nil). It
// classifies the status code into transient (plain error, retried by the
// caller's retry.Do) vs permanent (backoff.Permanent).
func (c *restClient) doJSON(ctx context.Context, method, path string, reqBody, respOut any) error {
	var reader io.Reader
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("marshal vector store request: %w", err))
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("build vector store request: %w", err))
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vector store request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read vector store response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("vector store transient error (status %d): %s", resp.StatusCode, string(raw))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return backoff.Permanent(fmt.Errorf("vector store error (status %d): %s", resp.StatusCode, string(raw)))
	}

	if respOut != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, respOut); err != nil {
			return backoff.Permanent(fmt.Errorf("decode vector store response: %w", err))
		}
	}
	return nil
}

func (c *restClient) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}
}

func (c *restClient) url(path string) string {
	return c.baseURL + path
}
