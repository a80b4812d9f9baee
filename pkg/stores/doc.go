// Package stores holds the domain stores of the shell: the signed-in user,
// theme, locale and a demo counter.
//
// Stores are plain values built by NewRoot and passed through a
// context.Context; there are no package-level instances. State changes
// only through store methods; consumers read with Get and observe with
// Subscribe.
//
//	root, err := stores.NewRoot(ctx, stores.RootOptions{API: client, Storage: kv})
//	if err != nil {
//	    return err
//	}
//	defer root.Close()
//
//	ctx = stores.WithRoot(ctx, root)
//	...
//	stores.MustFromContext(ctx).Theme.Toggle()
package stores
