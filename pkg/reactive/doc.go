// Package reactive provides observable state containers.
//
// A Store holds one state value (usually a struct) that changes only through
// named actions. Subscribers are notified after every committed change, in
// the order they subscribed, and each notification carries one consistent
// state: every mutation made inside a single Update (or inside a Batch) is
// delivered together.
//
//	type CounterState struct {
//	    Count int `json:"count"`
//	}
//
//	counter := reactive.New("CounterStore", CounterState{})
//	unsubscribe := counter.Subscribe(func(s CounterState) {
//	    fmt.Println("count is", s.Count)
//	})
//	defer unsubscribe()
//
//	counter.Update("increment", func(s *CounterState) {
//	    s.Count++
//	})
//
// Derived values are expressed with Computed, which memoizes its result
// against the store version and recomputes lazily after a change:
//
//	double := reactive.NewComputed(counter, func(s CounterState) int {
//	    return s.Count * 2
//	})
//	double.Get()
//
// Stores are safe for concurrent use. Subscribers run outside the state lock
// and may invoke further actions; those changes are delivered in a follow-up
// notification pass instead of re-entering the subscriber list.
package reactive
