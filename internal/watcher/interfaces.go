package watcher

import "context"

// FileWatcher monitors source files for changes with debouncing and pause/resume support.
type FileWatcher interface {
	// Start begins watching source directories, calling callback with debounced file changes.
	Start(ctx context.Context, callback func(files []string)) error

	// Stop stops the file watcher and cleans up resources.
	Stop() error

	// Pause stops firing callbacks but continues accumulating events.
	Pause()

	// Resume resumes firing callbacks. If events accumulated during pause, fires immediately.
	Resume()
}

// Runner re-runs the indexing pipeline for a delta of changed paths. An
// empty hint means "full rescan". Runner is
// implemented by the indexer façade.
type Runner interface {
	Run(ctx context.Context, hint []string) error
}
