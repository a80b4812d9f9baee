package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vango-dev/usershell/pkg/stores"
)

// storeCmd builds a command whose subcommands act on one persisted store
// and then print it.
func storeCmd(flags *globalFlags, use, short string, show func(a *app), actions ...*cobra.Command) *cobra.Command {
	run := func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, flags, func(ctx context.Context, a *app) error {
			show(a)
			return nil
		})
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE:  run,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current value",
		RunE:  run,
	})
	cmd.AddCommand(actions...)
	return cmd
}

// storeAction builds a subcommand that applies fn and prints the result.
func storeAction(flags *globalFlags, use, short string, args cobra.PositionalArgs, fn func(r *stores.Root, args []string) error, show func(a *app)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				if err := fn(stores.MustFromContext(ctx), argv); err != nil {
					return err
				}
				show(a)
				return nil
			})
		},
	}
}

func themeCmd(flags *globalFlags) *cobra.Command {
	show := func(a *app) { a.out.theme(a.root.Theme.Theme()) }

	return storeCmd(flags, "theme", "Show or change the color theme", show,
		storeAction(flags, "toggle", "Switch between light and dark", cobra.NoArgs,
			func(r *stores.Root, _ []string) error {
				r.Theme.Toggle()
				return nil
			}, show),
		storeAction(flags, "set light|dark", "Choose a theme", cobra.ExactArgs(1),
			func(r *stores.Root, args []string) error {
				t, err := stores.ParseTheme(args[0])
				if err != nil {
					return err
				}
				return r.Theme.Set(t)
			}, show),
	)
}

func localeCmd(flags *globalFlags) *cobra.Command {
	show := func(a *app) { a.out.locale(a.root.Locale.Locale()) }

	return storeCmd(flags, "locale", "Show or change the interface language", show,
		storeAction(flags, "toggle", "Switch between zh and en", cobra.NoArgs,
			func(r *stores.Root, _ []string) error {
				r.Locale.Toggle()
				return nil
			}, show),
		storeAction(flags, "set zh|en", "Choose a language", cobra.ExactArgs(1),
			func(r *stores.Root, args []string) error {
				l, err := stores.ParseLocale(args[0])
				if err != nil {
					return err
				}
				return r.Locale.Set(l)
			}, show),
	)
}

func counterCmd(flags *globalFlags) *cobra.Command {
	show := func(a *app) { a.out.counter(a.root.Counter) }

	return storeCmd(flags, "counter", "Demo counter with persisted history", show,
		storeAction(flags, "inc", "Add one", cobra.NoArgs,
			func(r *stores.Root, _ []string) error {
				r.Counter.Increment()
				return nil
			}, show),
		storeAction(flags, "dec", "Subtract one", cobra.NoArgs,
			func(r *stores.Root, _ []string) error {
				r.Counter.Decrement()
				return nil
			}, show),
		storeAction(flags, "reset", "Clear count and history", cobra.NoArgs,
			func(r *stores.Root, _ []string) error {
				r.Counter.Reset()
				return nil
			}, show),
	)
}
