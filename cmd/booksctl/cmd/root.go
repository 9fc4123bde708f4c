// Package cmd provides the booksctl subcommands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	"github.com/SscSPs/prompt_books/internal/platform/config"
	"github.com/SscSPs/prompt_books/internal/repositories/database/pgsql"
	"github.com/SscSPs/prompt_books/pkg/database"
	"github.com/spf13/cobra"
)

var debug bool

var rootCmd = &cobra.Command{
	Use:   "booksctl",
	Short: "Operate the prompt books journal engine",
	Long: `booksctl runs maintenance tasks against the journal engine's database.

Example:
  booksctl migrate up
  booksctl chart seed --tenant acme --actor ops
  booksctl outbox run --once`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(outboxCmd)
	rootCmd.AddCommand(tokenCmd)
}

// openRepositories connects to PGSQL_URL. The CLI never uses the memory store,
// since nothing it writes would outlive the process.
func openRepositories(ctx context.Context, cfg *config.Config) (repositories.RepositoryProvider, func(), error) {
	if cfg.DatabaseURL == "" {
		return repositories.RepositoryProvider{}, nil, fmt.Errorf("PGSQL_URL is not set")
	}
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, slog.Default())
	if err != nil {
		return repositories.RepositoryProvider{}, nil, err
	}
	return pgsql.NewRepositoryProvider(pool), func() { database.ClosePgxPool(pool, slog.Default()) }, nil
}
