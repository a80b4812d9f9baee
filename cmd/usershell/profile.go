package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/usershell/internal/errors"
	"github.com/vango-dev/usershell/pkg/api"
	"github.com/vango-dev/usershell/pkg/i18n"
	"github.com/vango-dev/usershell/pkg/stores"
)

func loginCmd(flags *globalFlags) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Save an auth token and load the profile",
		Long: `Save an auth token to storage and verify it by loading the profile.

The token is sent as "Authorization: Bearer <token>" on every request.
A token the backend rejects is not kept.

Examples:
  usershell login --token 2f1c...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				return runLogin(ctx, a, token)
			})
		},
	}

	cmd.Flags().StringVarP(&token, "token", "t", "", "Auth token")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func runLogin(ctx context.Context, a *app, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("E140").WithDetail("--token must not be empty")
	}
	if err := a.storage.Set(ctx, a.cfg.TokenKey, []byte(token)); err != nil {
		return err
	}

	root := stores.MustFromContext(ctx)
	if _, err := root.User.Fetch(ctx, true); err != nil {
		_ = a.storage.Delete(ctx, a.cfg.TokenKey)
		return err
	}

	a.out.success(i18n.KeyLoginSaved)
	a.out.profile(root.User.Info())
	return nil
}

func logoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved auth token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				if err := a.storage.Delete(ctx, a.cfg.TokenKey); err != nil {
					return err
				}
				stores.MustFromContext(ctx).User.Clear()
				a.out.success(i18n.KeyLogoutDone)
				return nil
			})
		},
	}
}

func profileCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or edit the signed-in profile",
	}
	cmd.AddCommand(
		profileShowCmd(flags),
		profileUpdateCmd(flags),
		profileAvatarCmd(flags),
	)
	return cmd
}

func profileShowCmd(flags *globalFlags) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the signed-in profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				user := stores.MustFromContext(ctx).User
				if _, err := user.Fetch(ctx, refresh); err != nil {
					return err
				}
				a.out.profile(user.Info())
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&refresh, "refresh", "r", false, "Bypass the cached profile")

	return cmd
}

func profileUpdateCmd(flags *globalFlags) *cobra.Command {
	var username, email, role string

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change profile fields",
		Long: `Change profile fields. Only the flags given are sent.

Examples:
  usershell profile update --email me@example.com
  usershell profile update --username ada --role editor`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch api.UserPatch
			if cmd.Flags().Changed("username") {
				patch.Username = api.String(username)
			}
			if cmd.Flags().Changed("email") {
				patch.Email = api.String(email)
			}
			if cmd.Flags().Changed("role") {
				patch.Role = api.String(role)
			}
			if patch.IsEmpty() {
				return errors.New("E140").
					WithDetail("Nothing to update").
					WithSuggestion("Pass at least one of --username, --email or --role")
			}

			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				user := stores.MustFromContext(ctx).User
				info, err := user.Update(ctx, patch)
				if err != nil {
					return err
				}
				a.out.success(i18n.KeyProfileUpdated)
				a.out.profile(info)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "New username")
	cmd.Flags().StringVar(&email, "email", "", "New email")
	cmd.Flags().StringVar(&role, "role", "", "New role")

	return cmd
}

func profileAvatarCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "avatar FILE",
		Short: "Upload a new avatar image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				user := stores.MustFromContext(ctx).User
				url, err := user.UpdateAvatar(ctx, filepath.Base(args[0]), f)
				if err != nil {
					return err
				}
				a.out.success(i18n.KeyAvatarUpdated, url)
				return nil
			})
		},
	}
}

func passwordCmd(flags *globalFlags) *cobra.Command {
	var oldPassword, newPassword string

	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change the account password",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				if err := a.api.ChangePassword(ctx, oldPassword, newPassword); err != nil {
					return err
				}
				a.out.success(i18n.KeyPasswordChanged)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&oldPassword, "old", "", "Current password")
	cmd.Flags().StringVar(&newPassword, "new", "", "New password")
	_ = cmd.MarkFlagRequired("old")
	_ = cmd.MarkFlagRequired("new")

	return cmd
}
