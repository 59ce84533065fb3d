package embed

import "fmt"

// NewClient constructs the embedder client variant named by provider
//. dim is only consulted for "openai-compatible", whose
// dimension has no static model table entry.
func NewClient(provider, endpoint, apiKey, model string, dim int) (Client, error) {
	switch provider {
	case "openai":
		return NewOpenAIClient(endpoint, apiKey, model), nil
	case "ollama":
		return NewOllamaClient(endpoint, model), nil
	case "openai-compatible":
		return NewOpenAICompatibleClient(endpoint, apiKey, model, dim), nil
	default:
		return nil, fmt.Errorf("embed: unknown provider %q", provider)
	}
}
