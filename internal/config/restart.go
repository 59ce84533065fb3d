package config

import "github.com/mvp-joe/codeindex/internal/embed"

// resolveDimension looks up the embedding dimension for a snapshot's
// active provider/model, falling back to the explicit EmbedderDimension
// for openai-compatible.
func resolveDimension(s Snapshot) (dim int, ok bool) {
	if s.EmbedderProvider == "openai-compatible" {
		if s.EmbedderDimension == nil {
			return 0, false
		}
		return *s.EmbedderDimension, true
	}
	return embed.LookupDimension(s.EmbedderProvider, s.ModelID)
}

// DoesConfigChangeRequireRestart decides, from a five-rule comparison of
// prev and next, whether an already-running indexer needs a full
// restart rather than continuing in place. It is a pure function
// (rather than a Controller method) so it stays trivially testable for
// reflexivity.
func DoesConfigChangeRequireRestart(prev, next Snapshot) bool {
	prevReady := prev.Enabled && prev.Configured()
	nextReady := next.Enabled && next.Configured()

	if !prevReady && !nextReady {
		// Both disabled, or both unconfigured: nothing to restart.
		return false
	}

	// Rule 1: disabled/unconfigured -> enabled+configured.
	if !prevReady && nextReady {
		return true
	}
	if prevReady && !nextReady {
		// Going from running to not-ready is itself a restart (there is
		// nothing left to keep running).
		return true
	}

	// Rule 2.
	if prev.EmbedderProvider != next.EmbedderProvider {
		return true
	}

	// Rule 3: dimension change, conservative on unresolvable dimensions.
	prevDim, prevOK := resolveDimension(prev)
	nextDim, nextOK := resolveDimension(next)
	if !prevOK || !nextOK || prevDim != nextDim {
		return true
	}

	// Rule 4: credential/endpoint change for the active provider.
	switch next.EmbedderProvider {
	case "openai":
		if prev.EmbedderAPIKey != next.EmbedderAPIKey {
			return true
		}
	case "ollama":
		if prev.EmbedderEndpoint != next.EmbedderEndpoint {
			return true
		}
	case "openai-compatible":
		if prev.EmbedderEndpoint != next.EmbedderEndpoint ||
			prev.EmbedderAPIKey != next.EmbedderAPIKey {
			return true
		}
	}

	// Rule 5.
	if prev.VectorStoreURL != next.VectorStoreURL || prev.VectorStoreAPIKey != next.VectorStoreAPIKey {
		return true
	}

	return false
}
