// Package persist snapshots whitelisted fields of a reactive store into
// durable storage and rehydrates them when the store is attached.
//
// A snapshot is one JSON record per store:
//
//	{"version":1,"state":{"theme":"dark"}}
//
// Only the listed fields are written. On attach, each listed field whose
// key exists and decodes successfully replaces the store's default; invalid
// values fall back to the default without failing the attach.
//
// Example:
//
//	theme := reactive.New("ThemeStore", ThemeState{Theme: ThemeDark})
//	p, err := persist.Attach(ctx, theme, persist.Options{
//	    Name:    "ThemeStore",
//	    Fields:  []string{"theme"},
//	    Storage: store,
//	})
//	defer p.Close()
//
// Writes happen on one background goroutine per attachment. Intermediate
// states may be skipped; the latest state is always written. Write failures
// are logged, never returned.
package persist
