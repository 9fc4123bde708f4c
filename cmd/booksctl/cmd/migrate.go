package cmd

import (
	"log/slog"

	"github.com/SscSPs/prompt_books/internal/platform/config"
	"github.com/SscSPs/prompt_books/pkg/database"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		return database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, slog.Default())
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd)
}
