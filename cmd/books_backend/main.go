package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	"github.com/SscSPs/prompt_books/internal/core/services"
	"github.com/SscSPs/prompt_books/internal/handlers"
	"github.com/SscSPs/prompt_books/internal/middleware"
	"github.com/SscSPs/prompt_books/internal/platform/config"
	"github.com/SscSPs/prompt_books/internal/platform/metrics"
	"github.com/SscSPs/prompt_books/internal/repositories/database/memory"
	"github.com/SscSPs/prompt_books/internal/repositories/database/pgsql"
	"github.com/SscSPs/prompt_books/internal/utils"
	"github.com/SscSPs/prompt_books/internal/workers"
	"github.com/SscSPs/prompt_books/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// @title Prompt Books API
// @version 1.0
// @description Turns approved bookkeeping drafts into balanced journal entries.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, searchDB, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open store", slog.String("store", cfg.Store), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	m := metrics.NewDefault()
	container := services.NewServiceContainer(repos, m)

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	if cfg.Outbox.Enabled {
		stopDispatcher := startDispatcher(ctx, cfg, repos.OutboxRepo, searchDB, posthogClient, m, logger)
		defer stopDispatcher()
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.MetricsMiddleware(m))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	limiterInstance, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit", slog.String("rate", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, container, m.Handler(),
		middleware.RateLimit(limiterInstance),
		middleware.PosthogMiddleware(posthogClient),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// openStore wires the configured backend. The returned *sql.DB is nil for the memory store.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.RepositoryProvider, *sql.DB, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("Using in-memory store; data is lost on restart")
		return memory.NewRepositoryProvider(memory.NewStore()), nil, func() {}, nil
	}

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		return repositories.RepositoryProvider{}, nil, nil, err
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return repositories.RepositoryProvider{}, nil, nil, err
	}

	searchDB, err := database.OpenSQLDB(cfg.DatabaseURL)
	if err != nil {
		database.ClosePgxPool(dbPool, logger)
		return repositories.RepositoryProvider{}, nil, nil, err
	}

	closer := func() {
		if cerr := searchDB.Close(); cerr != nil {
			logger.Error("Error closing search DB connection", slog.String("error", cerr.Error()))
		}
		database.ClosePgxPool(dbPool, logger)
	}
	return pgsql.NewRepositoryProvider(dbPool), searchDB, closer, nil
}

func startDispatcher(
	ctx context.Context,
	cfg *config.Config,
	outbox repositories.OutboxRepository,
	searchDB *sql.DB,
	posthogClient *utils.PosthogClientWrapper,
	m *metrics.Metrics,
	logger *slog.Logger,
) func() {
	threshold, err := decimal.NewFromString(cfg.Outbox.LargeAmount)
	if err != nil {
		logger.Warn("Invalid INSIGHT_LARGE_AMOUNT, using 10000", slog.String("value", cfg.Outbox.LargeAmount))
		threshold = decimal.NewFromInt(10000)
	}

	sinks := workers.Sinks{
		KafkaBrokers:     cfg.KafkaBrokers,
		KafkaTopic:       cfg.KafkaTopic,
		SearchDB:         searchDB,
		InsightThreshold: threshold,
	}
	if posthogClient.IsInitialized() {
		sinks.Insights = posthogClient
	}

	eventHandlers, closeHandlers := workers.BuildHandlers(sinks, logger)
	dispatcher := workers.NewOutboxDispatcher(outbox, workers.DispatcherConfig{
		PollInterval:  cfg.Outbox.PollInterval,
		BatchSize:     cfg.Outbox.BatchSize,
		MaxAttempts:   cfg.Outbox.MaxAttempts,
		RatePerSecond: cfg.Outbox.RatePerSecond,
	}, eventHandlers,
		workers.WithDispatcherMetrics(m),
		workers.WithDispatcherLogger(logger),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		dispatcher.Run(ctx)
	}()

	return func() {
		<-done
		closeHandlers()
	}
}
