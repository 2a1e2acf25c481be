package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/authgate/internal/gateway/app"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "authgate",
		Short: "Personal multi-tenant auth gateway",
		Long: `authgate relays OAuth provider tokens to registered applications,
issues single-use magic links and serves a small admin surface.

Configuration is read from AUTHGATE_* environment variables. Long-lived
secrets live in the file named by AUTHGATE_SECRETS_FILE.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       app.BuildVersion,
	}

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newPrincipalCmd(),
		newAppCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			application, err := app.New(cfg, app.NewLogger(cfg))
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}
			return application.Run()
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig()
			if err != nil {
				return err
			}
			db, err := app.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "migrations applied to %s\n", cfg.DatabaseFile)
			return nil
		},
	}
}
