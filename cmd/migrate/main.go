// Command migrate applies or rolls back the plugin storage schema.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dmengine/internal/config"
	"github.com/cory-johannsen/dmengine/internal/observability"
	"github.com/cory-johannsen/dmengine/internal/storage/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the plugin storage schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "configuration file; empty uses defaults and DM_* environment")

	withMigrator := func(fn func(m *postgres.Migrator, logger *zap.Logger, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger, err := observability.NewLogger(cfg.Logging, "migrate")
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			m, err := postgres.NewMigrator(cfg.Storage.Database.DSN())
			if err != nil {
				return err
			}
			defer m.Close()
			if err := fn(m, logger, args); err != nil {
				return err
			}
			return report(cmd, m)
		}
	}

	var upSteps, downSteps int
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(m *postgres.Migrator, logger *zap.Logger, _ []string) error {
			logger.Info("migrating up", zap.Int("steps", upSteps))
			if upSteps > 0 {
				return m.Steps(upSteps)
			}
			return m.Up()
		}),
	}
	up.Flags().IntVar(&upSteps, "steps", 0, "apply at most this many migrations; 0 applies all")

	down := &cobra.Command{
		Use:   "down",
		Short: "Roll migrations back",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(m *postgres.Migrator, logger *zap.Logger, _ []string) error {
			logger.Warn("migrating down", zap.Int("steps", downSteps))
			if downSteps > 0 {
				return m.Steps(-downSteps)
			}
			return m.Down()
		}),
	}
	down.Flags().IntVar(&downSteps, "steps", 1, "roll back this many migrations; 0 rolls back all")

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the applied schema version",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(*postgres.Migrator, *zap.Logger, []string) error {
			return nil
		}),
	}

	root.AddCommand(up, down, status)
	return root
}

func report(cmd *cobra.Command, m *postgres.Migrator) error {
	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	latest, err := postgres.LatestVersion()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version=%d latest=%d dirty=%v\n", version, latest, dirty)
	return nil
}
