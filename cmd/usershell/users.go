package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vango-dev/usershell/pkg/api"
	"github.com/vango-dev/usershell/pkg/i18n"
)

func usersCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Browse and manage user accounts",
	}
	cmd.AddCommand(
		usersListCmd(flags),
		usersGetCmd(flags),
		usersDeleteCmd(flags),
	)
	return cmd
}

func usersListCmd(flags *globalFlags) *cobra.Command {
	var params api.ListParams

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users page by page",
		Long: `List users page by page.

Examples:
  usershell users list
  usershell users list --page 2 --page-size 20
  usershell users list --keyword ali`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				list, err := a.api.ListUsers(ctx, params)
				if err != nil {
					return err
				}
				a.out.users(list)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&params.Page, "page", "p", 0, "Page number (default from server)")
	cmd.Flags().IntVar(&params.PageSize, "page-size", 0, "Users per page (default from server)")
	cmd.Flags().StringVarP(&params.Keyword, "keyword", "k", "", "Filter by username or email")

	return cmd
}

func usersGetCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show one user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				u, err := a.api.GetUser(ctx, args[0])
				if err != nil {
					return err
				}
				a.out.profile(u)
				return nil
			})
		},
	}
}

func usersDeleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a user (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				if err := a.api.DeleteUser(ctx, args[0]); err != nil {
					return err
				}
				a.out.success(i18n.KeyUserDeleted, args[0])
				return nil
			})
		},
	}
}
