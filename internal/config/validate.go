package config

import (
	"errors"
	"fmt"

	"github.com/mvp-joe/codeindex/internal/indexer/ierr"
)

// Sentinel validation errors, wrapped by Validate into a tagged
// ierr.ConfigInvalid using the errors.New + fmt.Errorf "%w" idiom.
var (
	ErrMissingModel        = errors.New("embedder model id is required")
	ErrMissingVectorStore  = errors.New("vector store url is required")
	ErrMissingProvider     = errors.New("unknown embedder provider")
	ErrMissingCredential   = errors.New("embedder credential is required for the selected provider")
	ErrMissingDimension    = errors.New("explicit dimension is required for openai-compatible")
)

// Validate rejects a snapshot that cannot start an indexer, returning a
// *ierr.CodeIndexError tagged ConfigInvalid. A disabled
// snapshot is always valid; there is nothing to start.
func Validate(s Snapshot) error {
	if !s.Enabled {
		return nil
	}

	if s.ModelID == "" {
		return ierr.New(ierr.ConfigInvalid, "", ErrMissingModel)
	}
	if s.VectorStoreURL == "" {
		return ierr.New(ierr.ConfigInvalid, "", ErrMissingVectorStore)
	}

	switch s.EmbedderProvider {
	case "openai":
		if s.EmbedderAPIKey == "" {
			return ierr.New(ierr.ConfigInvalid, "", fmt.Errorf("openai: %w", ErrMissingCredential))
		}
	case "ollama":
		// No credential required; endpoint defaults to localhost.
	case "openai-compatible":
		if s.EmbedderDimension == nil {
			return ierr.New(ierr.ConfigInvalid, "", ErrMissingDimension)
		}
	default:
		return ierr.New(ierr.ConfigInvalid, "", fmt.Errorf("%w: %q", ErrMissingProvider, s.EmbedderProvider))
	}

	return nil
}
