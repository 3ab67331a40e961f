package cmd

import (
	"fmt"

	"github.com/eventconnect/server/internal/config"
	"github.com/eventconnect/server/internal/storage/postgres"
	"github.com/spf13/cobra"
)

var (
	migrationsPath   string
	migrateDownSteps int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if err := postgres.MigrateUp(cfg.Database.URL, migrationsPath); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}
		if err := postgres.MigrateDown(cfg.Database.URL, migrationsPath, migrateDownSteps); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "rolled back %d migration(s)\n", migrateDownSteps)
		return nil
	},
}

func init() {
	migrateCmd.PersistentFlags().StringVar(&migrationsPath, "path", postgres.DefaultMigrationsPath, "migrations directory")
	migrateDownCmd.Flags().IntVar(&migrateDownSteps, "steps", 1, "number of migrations to roll back")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}
