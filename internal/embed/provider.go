// Package embed implements the embedder client (component E): three
// provider variants behind one capability interface, sharing the retry
// policy in internal/retry.
package embed

import "context"

// Client converts text into embedding vectors. The three variants
// (OpenAI, Ollama, OpenAI-compatible) share this capability interface
// rather than a class hierarchy, per the Design Notes on capability
// polymorphism.
type Client interface {
	// Embed converts texts into their vector representations, aligned
	// to the input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of vectors this client
	// produces.
	Dimensions() int

	// Close releases any resources held by the client.
	Close() error
}

// DefaultBatchSize is the default number of inputs per embed call
//.
const DefaultBatchSize = 64
