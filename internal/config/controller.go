package config

import "sync"

// Controller holds the effective snapshot and keeps the previous one
// around to diff against. Mutations are copy-on-read: callers
// get a value copy of Snapshot, never a pointer into controller state.
type Controller struct {
	mu       sync.RWMutex
	current  Snapshot
	hasValue bool
}

// NewController creates a controller with no snapshot applied yet. The
// first Update always reports requiresRestart=true if the snapshot is
// enabled and configured, since there is nothing running to keep.
func NewController() *Controller {
	return &Controller{}
}

// Current returns a copy of the effective snapshot.
func (c *Controller) Current() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Update applies next as the new effective snapshot and reports whether
// the transition from the previous snapshot requires restarting the
// indexer.
func (c *Controller) Update(next Snapshot) (requiresRestart bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev := c.current
	if !c.hasValue {
		// No prior snapshot: treat as coming from a fully-disabled state.
		prev = Snapshot{}
	}

	requiresRestart = DoesConfigChangeRequireRestart(prev, next)
	c.current = next
	c.hasValue = true
	return requiresRestart
}

// Dimension resolves the vector dimension for the current snapshot's
// active provider/model, the same rule ensureCollection uses.
func (c *Controller) Dimension() (dim int, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return resolveDimension(c.current)
}
