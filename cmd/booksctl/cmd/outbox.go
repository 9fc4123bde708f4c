package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/SscSPs/prompt_books/internal/platform/config"
	"github.com/SscSPs/prompt_books/internal/utils"
	"github.com/SscSPs/prompt_books/internal/workers"
	"github.com/SscSPs/prompt_books/pkg/database"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var outboxOnce bool

var outboxCmd = &cobra.Command{
	Use:   "outbox",
	Short: "Deliver posted-journal events",
}

var outboxRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the outbox dispatcher",
	Long: `Polls pending outbox events and hands them to the configured sinks
(Kafka, search index, PostHog insights). With --once a single batch is
delivered and the command exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		logger := slog.Default()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		repos, closeRepos, err := openRepositories(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeRepos()

		searchDB, err := database.OpenSQLDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer searchDB.Close()

		threshold, err := decimal.NewFromString(cfg.Outbox.LargeAmount)
		if err != nil {
			return fmt.Errorf("INSIGHT_LARGE_AMOUNT: %w", err)
		}

		posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
		defer posthogClient.Close()

		sinks := workers.Sinks{
			KafkaBrokers:     cfg.KafkaBrokers,
			KafkaTopic:       cfg.KafkaTopic,
			SearchDB:         searchDB,
			InsightThreshold: threshold,
		}
		if posthogClient.IsInitialized() {
			sinks.Insights = posthogClient
		}
		handlers, closeHandlers := workers.BuildHandlers(sinks, logger)
		defer closeHandlers()

		dispatcher := workers.NewOutboxDispatcher(repos.OutboxRepo, workers.DispatcherConfig{
			PollInterval:  cfg.Outbox.PollInterval,
			BatchSize:     cfg.Outbox.BatchSize,
			MaxAttempts:   cfg.Outbox.MaxAttempts,
			RatePerSecond: cfg.Outbox.RatePerSecond,
		}, handlers, workers.WithDispatcherLogger(logger))

		if outboxOnce {
			n, err := dispatcher.DispatchOnce(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dispatched %d event(s)\n", n)
			return nil
		}

		dispatcher.Run(ctx)
		return nil
	},
}

func init() {
	outboxRunCmd.Flags().BoolVar(&outboxOnce, "once", false, "deliver one batch and exit")
	outboxCmd.AddCommand(outboxRunCmd)
}
