package stores

import "github.com/vango-dev/usershell/pkg/reactive"

// view exposes the read side of a store.
type view[S any] struct {
	store *reactive.Store[S]
}

// Get returns the current state.
func (v view[S]) Get() S {
	return v.store.Get()
}

// Subscribe registers fn to run after every change.
func (v view[S]) Subscribe(fn func(S)) (unsubscribe func()) {
	return v.store.Subscribe(fn)
}

// Version returns the change counter of the store.
func (v view[S]) Version() uint64 {
	return v.store.Version()
}

// Name returns the store name.
func (v view[S]) Name() string {
	return v.store.Name()
}
