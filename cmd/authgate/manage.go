package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/authgate/internal/gateway/app"
	"github.com/aussiebroadwan/authgate/internal/gateway/service"
	"github.com/aussiebroadwan/authgate/pkg/slogx"
)

const cliActor = "cli"

// withAdmin opens the store for a one-shot management command.
func withAdmin(cmd *cobra.Command, fn func(ctx context.Context, svc *service.AdminService) error) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	db, err := app.OpenStore(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := slogx.WithContext(cmd.Context(), app.NewLogger(cfg))
	return fn(ctx, &service.AdminService{Store: db})
}

func newPrincipalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "principal",
		Short: "Manage principals",
	}

	var (
		name    string
		isAdmin bool
	)
	add := &cobra.Command{
		Use:   "add <email>",
		Short: "Allow an email address, optionally as administrator",
		Example: `  authgate principal add owner@example.com --admin
  authgate principal add friend@example.com --name "A Friend"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, func(ctx context.Context, svc *service.AdminService) error {
				p, err := svc.AddPrincipal(ctx, cliActor, args[0], name, isAdmin)
				if err != nil {
					return fmt.Errorf("add principal: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (id %s, admin=%t)\n", p.Email, p.ID, p.IsAdmin)
				return nil
			})
		},
	}
	add.Flags().StringVar(&name, "name", "", "Display name")
	add.Flags().BoolVar(&isAdmin, "admin", false, "Grant access to the admin surface")

	cmd.AddCommand(add)
	return cmd
}

func newAppCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "app",
		Short: "Manage relay applications",
	}

	add := &cobra.Command{
		Use:     "add <name> <callback-url>",
		Short:   "Register an application and its webhook URL",
		Example: `  authgate app add notes https://notes.example.com/auth/callback`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(cmd, func(ctx context.Context, svc *service.AdminService) error {
				a, err := svc.AddApplication(ctx, cliActor, args[0], args[1])
				if err != nil {
					return fmt.Errorf("add application: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s -> %s (id %s)\n", a.Name, a.CallbackURL, a.ID)
				return nil
			})
		},
	}

	cmd.AddCommand(add)
	return cmd
}
