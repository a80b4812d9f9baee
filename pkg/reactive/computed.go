package reactive

import "sync"

// Computed is a derived value memoized against its store's version.
// It recomputes lazily on the first Get after any committed change and
// has no setter.
type Computed[S, T any] struct {
	store   *Store[S]
	compute func(S) T

	mu      sync.Mutex
	value   T
	version uint64
	valid   bool
}

// NewComputed creates a derived value over store.
// compute must be a pure function of the state.
func NewComputed[S, T any](store *Store[S], compute func(S) T) *Computed[S, T] {
	return &Computed[S, T]{
		store:   store,
		compute: compute,
	}
}

// Get returns the cached value, recomputing if the store changed.
func (c *Computed[S, T]) Get() T {
	state, version := c.store.snapshot()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.version == version {
		return c.value
	}

	c.value = c.compute(state)
	c.version = version
	c.valid = true
	return c.value
}
