package stores

import (
	"slices"

	"github.com/vango-dev/usershell/pkg/reactive"
)

// CounterState is the persisted counter state. History records the count
// after every increment or decrement.
type CounterState struct {
	Count   int   `json:"count"`
	History []int `json:"history"`
}

// CounterStore is a demo counter with history.
type CounterStore struct {
	view[CounterState]

	double   *reactive.Computed[CounterState, int]
	lastFive *reactive.Computed[CounterState, []int]
}

// NewCounterStore creates a counter at zero.
func NewCounterStore(opts ...reactive.Option) *CounterStore {
	store := reactive.New("CounterStore", CounterState{History: []int{}}, opts...)
	return &CounterStore{
		view: view[CounterState]{store: store},
		double: reactive.NewComputed(store, func(s CounterState) int {
			return s.Count * 2
		}),
		lastFive: reactive.NewComputed(store, func(s CounterState) []int {
			start := max(len(s.History)-5, 0)
			return slices.Clone(s.History[start:])
		}),
	}
}

// Count returns the current count.
func (c *CounterStore) Count() int {
	return c.Get().Count
}

// Increment adds one and records it.
func (c *CounterStore) Increment() {
	c.store.Update("increment", func(s *CounterState) {
		s.Count++
		s.History = append(slices.Clone(s.History), s.Count)
	})
}

// Decrement subtracts one and records it.
func (c *CounterStore) Decrement() {
	c.store.Update("decrement", func(s *CounterState) {
		s.Count--
		s.History = append(slices.Clone(s.History), s.Count)
	})
}

// Reset clears the count and history.
func (c *CounterStore) Reset() {
	c.store.Update("reset", func(s *CounterState) {
		s.Count = 0
		s.History = []int{}
	})
}

// DoubleCount returns twice the count.
func (c *CounterStore) DoubleCount() int {
	return c.double.Get()
}

// LastFiveChanges returns up to the five most recent history entries.
func (c *CounterStore) LastFiveChanges() []int {
	return slices.Clone(c.lastFive.Get())
}
