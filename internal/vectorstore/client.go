// Package vectorstore implements the vector-store client (component F):
// collection lifecycle, idempotent point upserts, filtered deletes, and
// semantic search against a remote REST vector database.
package vectorstore

import "context"

// Payload is the fixed per-point metadata schema.
type Payload struct {
	FilePath    string `json:"filePath"`
	StartLine   int    `json:"startLine"`
	EndLine     int    `json:"endLine"`
	CodeChunk   string `json:"codeChunk"`
	ContentHash string `json:"contentHash"`
}

// Point is one stored (id, vector, payload) triple.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// SearchResult is one ranked hit returned by Search.
type SearchResult struct {
	Score   float64
	Payload Payload
}

// UpsertBatchSize is the max points per upsert call.
const UpsertBatchSize = 100

// Client is the capability the indexing pipeline and search operation
// depend on; provider-specific endpoint/auth details stay inside the
// concrete implementation rather than leaking into the pipeline, per
// the Design Notes on capability polymorphism over class hierarchies.
type Client interface {
	// EnsureCollection creates the collection if absent, or recreates it
	// if it exists with a different dimension.
	EnsureCollection(ctx context.Context, dim int) error

	// UpsertPoints idempotently stores points, keyed by Point.ID. Callers
	// must chunk to at most UpsertBatchSize points per call.
	UpsertPoints(ctx context.Context, points []Point) error

	// DeleteByFilePath removes every point whose payload.filePath equals
	// relPath.
	DeleteByFilePath(ctx context.Context, relPath string) error

	// Search returns points scoring at least minScore against queryVector,
	// descending by score, capped at limit.
	Search(ctx context.Context, queryVector []float32, limit int, minScore float64) ([]SearchResult, error)

	// Close releases any resources held by the client.
	Close() error
}
