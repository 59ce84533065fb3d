package embed

// openAIDimensions is the static (provider, model) -> dimension table for
// OpenAI's embedding models.
var openAIDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// ollamaDimensions is the static dimension table for common Ollama
// embedding models.
var ollamaDimensions = map[string]int{
	"nomic-embed-text": 768,
	"mxbai-embed-large": 1024,
	"all-minilm":        384,
}

// LookupDimension resolves the embedding dimension for (provider, modelID)
// from the static tables. ok is false when the provider/model pair is not
// in the table (e.g. openai-compatible, which takes an explicit
// dimension from config instead).
func LookupDimension(provider, modelID string) (dim int, ok bool) {
	switch provider {
	case "openai":
		dim, ok = openAIDimensions[modelID]
	case "ollama":
		dim, ok = ollamaDimensions[modelID]
	}
	return dim, ok
}
