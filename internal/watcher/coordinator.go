package watcher

import (
	"context"
	"log"
	"sync"
)

// Coordinator drives incremental pipeline runs from file-watcher events
//. The watcher never cancels a run already in
// progress: a delta that arrives mid-run is merged into a pending set
// and drained once the current run finishes, per the Design Notes on
// watcher/in-flight-run interaction.
type Coordinator struct {
	watcher FileWatcher
	runner  Runner

	mu      sync.Mutex
	pending map[string]struct{}
	running bool
}

// NewCoordinator creates a coordinator that feeds runner's incremental
// runs from watcher's debounced change events.
func NewCoordinator(watcher FileWatcher, runner Runner) *Coordinator {
	return &Coordinator{
		watcher: watcher,
		runner:  runner,
		pending: make(map[string]struct{}),
	}
}

// Start begins watching. It returns once the watcher is listening;
// pipeline runs triggered by events happen asynchronously.
func (c *Coordinator) Start(ctx context.Context) error {
	return c.watcher.Start(ctx, func(files []string) { c.handleChange(ctx, files) })
}

// Stop stops the underlying watcher. Any run currently executing is left
// to finish; it is not cancelled.
func (c *Coordinator) Stop() error {
	return c.watcher.Stop()
}

// handleChange merges files into the pending set if a run is already
// executing, otherwise starts a new run.
func (c *Coordinator) handleChange(ctx context.Context, files []string) {
	if len(files) == 0 {
		return
	}

	c.mu.Lock()
	if c.running {
		for _, f := range files {
			c.pending[f] = struct{}{}
		}
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	go c.runLoop(ctx, files)
}

// runLoop executes one run and, while a pending delta accumulated during
// it, keeps draining pending deltas until none remain. This is the only
// place pending transitions back to not-running, so a delta that lands
// exactly as the previous run finishes is never dropped.
func (c *Coordinator) runLoop(ctx context.Context, files []string) {
	for {
		if err := c.runner.Run(ctx, files); err != nil {
			log.Printf("watcher: incremental run failed: %v", err)
		}

		c.mu.Lock()
		if len(c.pending) == 0 {
			c.running = false
			c.mu.Unlock()
			return
		}

		next := make([]string, 0, len(c.pending))
		for f := range c.pending {
			next = append(next, f)
		}
		c.pending = make(map[string]struct{})
		c.mu.Unlock()

		files = next
	}
}
