package indexer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/mvp-joe/codeindex/internal/cache"
	"github.com/mvp-joe/codeindex/internal/config"
	"github.com/mvp-joe/codeindex/internal/embed"
	"github.com/mvp-joe/codeindex/internal/indexer/ierr"
	"github.com/mvp-joe/codeindex/internal/indexer/parsers"
	"github.com/mvp-joe/codeindex/internal/vectorstore"
	"github.com/mvp-joe/codeindex/internal/watcher"
)

// DefaultCodePatterns/DefaultDocsPatterns/DefaultIgnorePatterns are the
// glob sets FileDiscovery uses when a caller doesn't supply its own
//.
var (
	DefaultCodePatterns = []string{
		"**/*.js", "**/*.jsx", "**/*.ts", "**/*.vue", "**/*.tsx", "**/*.py",
		"**/*.rs", "**/*.go", "**/*.c", "**/*.h", "**/*.cpp", "**/*.hpp",
		"**/*.cs", "**/*.rb", "**/*.java", "**/*.php", "**/*.swift",
		"**/*.sol", "**/*.kt", "**/*.kts", "**/*.ex", "**/*.exs", "**/*.el",
		"**/*.json", "**/*.css", "**/*.rdl", "**/*.ml", "**/*.mli",
		"**/*.lua", "**/*.scala", "**/*.toml", "**/*.zig", "**/*.elm",
		"**/*.ejs", "**/*.erb", "**/*.html", "**/*.htm",
	}
	DefaultDocsPatterns   = []string{"**/*.md", "**/*.markdown"}
	DefaultIgnorePatterns = []string{
		"node_modules/**", ".git/**", "vendor/**", "dist/**", "build/**",
	}
)

// Options configures one Indexer instance.
type Options struct {
	WorkspaceRoot string
	CacheRoot     string

	CodePatterns   []string
	DocsPatterns   []string
	IgnorePatterns []string
}

// Indexer is the façade wiring the config controller, chunker, pipeline,
// watcher coordinator and state machine together.
type Indexer struct {
	opts Options

	controller *config.Controller
	state      *StateMachine
	discovery  *FileDiscovery
	chunker    *Chunker

	mu         sync.Mutex
	manifest   *Manifest
	embedder   embed.Client
	store      vectorstore.Client
	pipeline   *Pipeline
	coord      *watcher.Coordinator
	collection string
}

// New creates an Indexer for one workspace. The config controller starts
// empty; call Initialize with the first snapshot to configure it.
func New(opts Options) (*Indexer, error) {
	if len(opts.CodePatterns) == 0 {
		opts.CodePatterns = DefaultCodePatterns
	}
	if len(opts.DocsPatterns) == 0 {
		opts.DocsPatterns = DefaultDocsPatterns
	}
	if len(opts.IgnorePatterns) == 0 {
		opts.IgnorePatterns = DefaultIgnorePatterns
	}

	discovery, err := NewFileDiscovery(opts.WorkspaceRoot, opts.CodePatterns, opts.DocsPatterns, opts.IgnorePatterns)
	if err != nil {
		return nil, fmt.Errorf("create file discovery: %w", err)
	}

	return &Indexer{
		opts:       opts,
		controller: config.NewController(),
		state:      NewStateMachine(),
		discovery:  discovery,
		chunker:    NewChunker(parsers.NewRegistry()),
	}, nil
}

// Initialize applies snap as the effective configuration and reports
// whether the transition requires a (re)start.
//
// If a restart is required and the indexer is already past Standby, this
// also carries out the restart itself: dispose the current watcher and
// pipeline, drop back to Standby, then kick off a fresh full-rescan
// Indexing run in the background. The caller
// observes the restart through OnProgressUpdate/GetCurrentStatus rather
// than blocking on Initialize.
func (ix *Indexer) Initialize(snap config.Snapshot) (requiresRestart bool, err error) {
	if snap.Enabled && snap.Configured() {
		if verr := config.Validate(snap); verr != nil {
			return false, verr
		}
	}

	requiresRestart = ix.controller.Update(snap)
	if requiresRestart && ix.state.Current() != StateStandby {
		ix.Dispose()
		ix.state.Reset()
		go func() {
			if serr := ix.StartIndexing(context.Background()); serr != nil {
				ix.state.Fail(serr)
			}
		}()
	}

	return requiresRestart, nil
}

// OnProgressUpdate registers a progress/state observer.
func (ix *Indexer) OnProgressUpdate(cb func(Status)) {
	ix.state.OnProgressUpdate(cb)
}

// GetCurrentStatus returns the indexer's current state and progress
//.
func (ix *Indexer) GetCurrentStatus() Status {
	return ix.state.GetCurrentStatus()
}

// StartIndexing performs the initial full scan, then arms the watcher.
// It completes when the initial scan finishes, transitioning the state
// to Indexed and then Watching.
func (ix *Indexer) StartIndexing(ctx context.Context) error {
	snap := ix.controller.Current()
	if !snap.Enabled || !snap.Configured() {
		return ierr.New(ierr.ConfigInvalid, "", fmt.Errorf("indexer disabled or unconfigured"))
	}

	if !ix.state.Start() {
		return fmt.Errorf("indexer: start rejected from state %s", ix.state.Current())
	}

	if err := ix.setup(ctx, snap); err != nil {
		ix.state.Fail(err)
		return err
	}

	if err := ix.Run(ctx, nil); err != nil {
		ix.state.Fail(err)
		return err
	}

	ix.state.Finish(Progress{Message: "initial scan complete"})
	ix.state.ArmWatch()

	ix.mu.Lock()
	coord := ix.coord
	ix.mu.Unlock()
	if coord != nil {
		if err := coord.Start(ctx); err != nil {
			ix.state.Fail(err)
			return err
		}
	}

	return nil
}

// setup resolves the embedder/store/manifest for snap and (re)builds the
// pipeline and watcher coordinator. Called once per Standby->Indexing
// transition.
func (ix *Indexer) setup(ctx context.Context, snap config.Snapshot) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	dim, ok := ix.controller.Dimension()
	if !ok {
		return ierr.New(ierr.DimensionMismatch, "", fmt.Errorf("cannot resolve embedding dimension for provider %q model %q", snap.EmbedderProvider, snap.ModelID))
	}

	embedder, err := embed.NewClient(snap.EmbedderProvider, snap.EmbedderEndpoint, snap.EmbedderAPIKey, snap.ModelID, dim)
	if err != nil {
		return ierr.New(ierr.ConfigInvalid, "", err)
	}

	collection, err := cache.CollectionName(ix.opts.WorkspaceRoot)
	if err != nil {
		return ierr.New(ierr.IOError, ix.opts.WorkspaceRoot, err)
	}
	store := vectorstore.NewRESTClient(snap.VectorStoreURL, snap.VectorStoreAPIKey, collection)

	if err := store.EnsureCollection(ctx, dim); err != nil {
		return ierr.New(ierr.VectorStorePermanent, collection, err)
	}

	manifestDir, err := cache.ManifestDir(ix.opts.CacheRoot, ix.opts.WorkspaceRoot)
	if err != nil {
		return ierr.New(ierr.IOError, ix.opts.WorkspaceRoot, err)
	}
	manifest, err := LoadManifest(filepath.Join(manifestDir, "manifest"))
	if err != nil {
		return ierr.New(ierr.IOError, manifestDir, err)
	}

	if ix.embedder != nil {
		ix.embedder.Close()
	}
	if ix.store != nil {
		ix.store.Close()
	}

	ix.embedder = embedder
	ix.store = store
	ix.manifest = manifest
	ix.collection = collection
	ix.pipeline = NewPipeline(ix.chunker, embedder, store, manifest)

	extensions := make([]string, 0, len(ix.opts.CodePatterns))
	for _, p := range ix.opts.CodePatterns {
		extensions = append(extensions, filepath.Ext(p))
	}
	fw, err := watcher.NewFileWatcher([]string{ix.opts.WorkspaceRoot}, extensions, ix.opts.IgnorePatterns...)
	if err != nil {
		return ierr.New(ierr.IOError, ix.opts.WorkspaceRoot, err)
	}
	ix.coord = watcher.NewCoordinator(fw, ix)

	return nil
}

// Run executes one pipeline pass. An empty hint means a full rescan
// (diffing the whole workspace against the manifest); a non-empty hint
// is the watcher's incremental delta of changed absolute paths, and Run
// diffs only those paths against the manifest rather than walking the
// whole workspace. Run implements watcher.Runner so
// the coordinator can drive it directly.
func (ix *Indexer) Run(ctx context.Context, hint []string) error {
	ix.mu.Lock()
	pipeline := ix.pipeline
	manifest := ix.manifest
	ix.mu.Unlock()
	if pipeline == nil || manifest == nil {
		return fmt.Errorf("indexer: run called before setup")
	}

	var diff ManifestDiff
	if len(hint) == 0 {
		scan, err := ScanWorkspace(ix.opts.WorkspaceRoot, ix.discovery)
		if err != nil {
			return ierr.New(ierr.IOError, ix.opts.WorkspaceRoot, err)
		}
		diff = manifest.Diff(scan)
	} else {
		diff = ix.diffHint(hint, manifest)
	}

	var toProcess []FileDescriptor
	for _, rel := range append(diff.Added, diff.Modified...) {
		abs := filepath.Join(ix.opts.WorkspaceRoot, filepath.FromSlash(rel))
		fd, err := DescribeFile(ix.opts.WorkspaceRoot, abs)
		if err != nil {
			continue
		}
		toProcess = append(toProcess, fd)
	}

	onProgress := func(processed, total int, message string) {
		ix.state.ReportProgress(Progress{ProcessedItems: processed, TotalItems: total, Message: message})
	}

	stats, err := pipeline.Run(ctx, toProcess, diff.Deleted, onProgress)
	if err != nil {
		return err
	}

	if stats.FilesFailed > 0 {
		return ierr.New(ierr.EmbedPermanent, "", fmt.Errorf("%d file(s) failed to embed and will be retried next run", stats.FilesFailed))
	}

	return nil
}

// diffHint computes a ManifestDiff limited to the watcher's changed
// absolute paths, without walking the rest of the workspace: a path that
// no longer exists on disk is a deletion, one that exists is added or
// modified depending on whether its hash changed.
func (ix *Indexer) diffHint(hint []string, manifest *Manifest) ManifestDiff {
	var diff ManifestDiff
	seen := make(map[string]bool, len(hint))

	for _, abs := range hint {
		rel, err := filepath.Rel(ix.opts.WorkspaceRoot, abs)
		if err != nil {
			continue
		}
		rel = filepath.ToSlash(rel)
		if seen[rel] {
			continue
		}
		seen[rel] = true

		if !ix.discovery.MatchesTrackedPattern(rel) {
			continue
		}

		fd, err := DescribeFile(ix.opts.WorkspaceRoot, abs)
		if err != nil {
			// Unreadable (most often: deleted between the event firing
			// and this diff running) is treated as a deletion, the same
			// way a full scan treats a path absent from disk.
			if _, tracked := manifest.Get(rel); tracked {
				diff.Deleted = append(diff.Deleted, rel)
			}
			continue
		}

		prevHash, tracked := manifest.Get(rel)
		switch {
		case !tracked:
			diff.Added = append(diff.Added, rel)
		case prevHash != fd.ContentHash:
			diff.Modified = append(diff.Modified, rel)
		}
	}

	return diff
}

// SearchIndex embeds query and searches the vector store for its
// nearest neighbors.
func (ix *Indexer) SearchIndex(ctx context.Context, query string, limit int) ([]vectorstore.SearchResult, error) {
	ix.mu.Lock()
	embedder := ix.embedder
	store := ix.store
	ix.mu.Unlock()
	if embedder == nil || store == nil {
		return nil, fmt.Errorf("indexer: search called before indexing has started")
	}

	vectors, err := embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, ierr.New(ierr.EmbedPermanent, "", err)
	}

	snap := ix.controller.Current()
	minScore := snap.SearchMinScore
	if minScore == 0 {
		minScore = config.DefaultSearchMinScore
	}

	results, err := store.Search(ctx, vectors[0], limit, minScore)
	if err != nil {
		return nil, ierr.New(ierr.VectorStorePermanent, "", err)
	}
	return results, nil
}

// Dispose stops the watcher and releases the embedder/store clients.
// Valid in any state.
func (ix *Indexer) Dispose() error {
	ix.mu.Lock()
	coord := ix.coord
	embedder := ix.embedder
	store := ix.store
	ix.mu.Unlock()

	var firstErr error
	if coord != nil {
		if err := coord.Stop(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if embedder != nil {
		if err := embedder.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if store != nil {
		if err := store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	ix.state.Stop()
	return firstErr
}
