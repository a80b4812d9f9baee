package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/usershell/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		errors.Fprint(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	baseURL    string
	driver     string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "usershell",
		Short: "User profile and admin console",
		Long: `usershell is a terminal client for the user center REST API.

It keeps the signed-in profile, theme, locale and a demo counter in
reactive stores. Theme, locale and counter survive restarts through
the configured storage backend.

Examples:
  usershell mock-server
  usershell login --token <token>
  usershell profile show
  usershell users list --keyword ali
  usershell theme toggle`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file (default: nearest usershell.json/yaml)")
	pf.StringVar(&flags.baseURL, "base-url", "", "API base URL (overrides config and USERSHELL_BASE_URL)")
	pf.StringVar(&flags.driver, "storage", "", "Storage driver: memory, file, sqlite or s3")

	rootCmd.AddCommand(
		loginCmd(flags),
		logoutCmd(flags),
		profileCmd(flags),
		passwordCmd(flags),
		usersCmd(flags),
		themeCmd(flags),
		localeCmd(flags),
		counterCmd(flags),
		mockServerCmd(flags),
		versionCmd(),
	)

	return rootCmd
}
