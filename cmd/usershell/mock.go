package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/usershell/internal/logging"
	"github.com/vango-dev/usershell/internal/mockapi"
)

func mockServerCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run an in-memory user API for local use",
		Long: `Run an in-memory implementation of the user API.

Demo accounts are seeded on start and the admin token is printed.
Prometheus metrics are served on /metrics.

Examples:
  usershell mock-server
  usershell mock-server --addr :9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Mock.Addr
			}

			logger, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			srv := mockapi.New(mockapi.WithLogger(logging.Named(logger, "mockapi")))
			token, err := srv.SeedDemo()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mock API listening on http://%s\n", addr)
			fmt.Fprintf(out, "  Admin token: %s\n", token)
			fmt.Fprintf(out, "  Try: usershell --base-url http://%s login --token %s\n", addr, token)

			return srv.Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from config)")

	return cmd
}
