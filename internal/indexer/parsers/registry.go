package parsers

import (
	"fmt"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Entry is the memoized grammar + tag query for one file extension.
type Entry struct {
	Name    string
	JSXLike bool

	language *sitter.Language
	query    *sitter.Query
}

// Registry loads tree-sitter grammars and tag queries lazily, once per
// extension per process, using a double-checked-lock pattern.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewRegistry creates an empty, ready-to-use registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*Entry)}
}

// Lookup returns the grammar+query entry for ext (e.g. ".go"), loading
// it on first use. ok is false for extensions with no bundled grammar,
// which the caller must treat as "file yields no chunks".
func (r *Registry) Lookup(ext string) (*Entry, bool, error) {
	r.mu.RLock()
	entry, found := r.entries[ext]
	r.mu.RUnlock()
	if found {
		return entry, true, nil
	}

	spec, known := languageTable[ext]
	if !known {
		return nil, false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-checked: another goroutine may have initialized this
	// extension while we waited for the write lock.
	if entry, found := r.entries[ext]; found {
		return entry, true, nil
	}

	lang := spec.language()
	query, queryErr := sitter.NewQuery(lang, spec.query)
	if queryErr != nil || query == nil {
		return nil, false, fmt.Errorf("parsers: compile query for %s: %w", ext, queryErr)
	}

	entry = &Entry{Name: spec.name, JSXLike: spec.jsxLike, language: lang, query: query}
	r.entries[ext] = entry
	return entry, true, nil
}

// Language exposes the compiled grammar for callers that need to parse
// directly (e.g. the chunker).
func (e *Entry) Language() *sitter.Language { return e.language }

// Query exposes the compiled tag query.
func (e *Entry) Query() *sitter.Query { return e.query }

// SupportedExtensions returns the fixed external extension set, independent of which ones currently have a bundled grammar.
func SupportedExtensions() []string {
	return []string{
		".tla", ".js", ".jsx", ".ts", ".vue", ".tsx", ".py", ".rs", ".go",
		".c", ".h", ".cpp", ".hpp", ".cs", ".rb", ".java", ".php", ".swift",
		".sol", ".kt", ".kts", ".ex", ".exs", ".el", ".html", ".htm", ".md",
		".markdown", ".json", ".css", ".rdl", ".ml", ".mli", ".lua", ".scala",
		".toml", ".zig", ".elm", ".ejs", ".erb",
	}
}
