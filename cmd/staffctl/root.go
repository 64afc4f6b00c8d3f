package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/philipcowcer-eng/LoadBalance/internal/app"
	"github.com/philipcowcer-eng/LoadBalance/internal/config"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "staffctl",
		Short:         "Staffing tracker maintenance tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config YAML file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	cmd.AddCommand(
		newMigrateCmd(opts),
		newBootstrapAdminCmd(opts),
		newSnapshotCmd(opts),
		newImportCmd(opts),
		newExportCmd(opts),
	)
	return cmd
}

// open loads and validates the configuration and connects to the database.
func (o *rootOptions) open(cmd *cobra.Command, migrate bool) (*app.App, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return app.Open(cmd.Context(), cfg, logger, migrate || cfg.MigrateOnStart)
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
}

func newBootstrapAdminCmd(opts *rootOptions) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Create the initial admin account if no users exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if username == "" {
				username = a.Config.Bootstrap.AdminUsername
			}
			if password == "" {
				password = a.Config.Bootstrap.AdminPassword
			}
			created, err := a.Service.EnsureAdmin(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{"username": username, "created": created})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "Admin username (defaults to bootstrap.admin_username)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password (defaults to bootstrap.admin_password)")
	return cmd
}
