package reactive

import (
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"
)

// subscriber is a registered callback.
type subscriber[S any] struct {
	id uint64
	fn func(S)
}

// Store is an observable state container.
type Store[S any] struct {
	name   string
	logger *zap.Logger
	equal  func(a, b any) bool

	// mu protects every field below.
	mu      sync.Mutex
	state   S
	version uint64

	subs   []subscriber[S]
	nextID uint64

	// batchDepth tracks nested Batch() calls. While > 0, commits mark the
	// store pending instead of notifying.
	batchDepth int

	// pending is set when a committed change has not been delivered yet.
	pending bool

	// dispatching is true while one goroutine drains notifications.
	dispatching bool
}

// New creates a store with the given name and initial state.
func New[S any](name string, initial S, opts ...Option) *Store[S] {
	cfg := storeConfig{
		logger: zap.NewNop(),
		equal:  reflect.DeepEqual,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Store[S]{
		name:   name,
		logger: cfg.logger.With(zap.String("store", name)),
		equal:  cfg.equal,
		state:  initial,
	}
}

// Name returns the store name.
func (s *Store[S]) Name() string {
	return s.name
}

// Get returns the current state.
// Reference-typed fields (slices, maps, pointers) are shared with the store
// and must be treated as read-only.
func (s *Store[S]) Get() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Version returns a counter incremented on every committed change.
func (s *Store[S]) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// snapshot returns state and version under one lock.
func (s *Store[S]) snapshot() (S, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.version
}

// Update runs the named action against a working copy of the state and
// commits the result. All mutations made by fn produce at most one
// notification per subscriber. Returns true if the state changed.
//
// fn must replace, not mutate in place, any slice or map it changes:
// the previous state may still be held by readers. fn must not call
// methods of s. If fn panics, nothing is committed and the panic
// propagates to the caller.
func (s *Store[S]) Update(action string, fn func(*S)) bool {
	changed, version, deferred := s.commit(fn)
	if !changed {
		s.logger.Debug("action produced no change", zap.String("action", action))
		return false
	}

	s.logger.Debug("action committed",
		zap.String("action", action),
		zap.Uint64("version", version),
	)

	if !deferred {
		s.dispatch()
	}
	return true
}

// commit applies fn to a copy of the state under the lock. The lock is
// released even if fn panics.
func (s *Store[S]) commit(fn func(*S)) (changed bool, version uint64, deferred bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state
	fn(&next)
	if s.equal(s.state, next) {
		return false, s.version, false
	}

	s.state = next
	s.version++
	s.pending = true
	return true, s.version, s.batchDepth > 0
}

// Batch groups multiple actions into a single notification phase.
// Batches can be nested; notifications fire when the outermost batch
// completes, even if fn panics.
//
//	store.Batch(func() {
//	    store.Update("set-first", ...)
//	    store.Update("set-last", ...)
//	})
//	// subscribers are called once
func (s *Store[S]) Batch(fn func()) {
	s.mu.Lock()
	s.batchDepth++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.batchDepth--
		done := s.batchDepth == 0
		s.mu.Unlock()
		if done {
			s.dispatch()
		}
	}()

	fn()
}

// Subscribe registers fn to be called after every committed change.
// Callbacks run in registration order. The returned function removes the
// subscription; calling it more than once is harmless.
func (s *Store[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber[S]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(id) })
	}
}

// unsubscribe removes a subscriber while preserving registration order.
func (s *Store[S]) unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub.id == id {
			subs := make([]subscriber[S], 0, len(s.subs)-1)
			subs = append(subs, s.subs[:i]...)
			subs = append(subs, s.subs[i+1:]...)
			s.subs = subs
			return
		}
	}
}

// dispatch delivers pending changes. Only one goroutine drains at a time;
// changes committed while a pass is running (including ones made by
// subscribers) are picked up by the next iteration of the same loop.
func (s *Store[S]) dispatch() {
	s.mu.Lock()
	if s.dispatching || s.batchDepth > 0 || !s.pending {
		s.mu.Unlock()
		return
	}
	s.dispatching = true
	s.mu.Unlock()

	for {
		s.mu.Lock()
		if !s.pending || s.batchDepth > 0 {
			s.dispatching = false
			s.mu.Unlock()
			return
		}
		s.pending = false
		state := s.state
		subs := s.subs
		s.mu.Unlock()

		for _, sub := range subs {
			s.notify(sub, state)
		}
	}
}

// notify calls one subscriber, containing panics so other subscribers
// still observe the change.
func (s *Store[S]) notify(sub subscriber[S], state S) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("subscriber panicked",
				zap.Uint64("subscriber", sub.id),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	sub.fn(state)
}

// Select reads a single derived value from the current state.
func Select[S, T any](s *Store[S], fn func(S) T) T {
	return fn(s.Get())
}
