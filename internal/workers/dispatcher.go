// Package workers delivers outbox events written alongside journal entries.
package workers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	portsrepo "github.com/SscSPs/prompt_books/internal/core/ports/repositories"
	"github.com/SscSPs/prompt_books/internal/platform/metrics"
	"golang.org/x/time/rate"
)

// EventHandler consumes one outbox event. Delivery is at-least-once, so
// Handle must tolerate seeing the same event again.
type EventHandler interface {
	Name() string
	Handle(ctx context.Context, event domain.OutboxEvent) error
}

// DispatcherConfig tunes polling and retry.
type DispatcherConfig struct {
	PollInterval  time.Duration
	BatchSize     int
	MaxAttempts   int
	RatePerSecond float64
}

// OutboxDispatcher polls pending events and hands each to every handler.
type OutboxDispatcher struct {
	repo     portsrepo.OutboxRepository
	handlers []EventHandler
	cfg      DispatcherConfig
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
	logger   *slog.Logger
	clock    func() time.Time
}

// DispatcherOption is a functional option for the dispatcher.
type DispatcherOption func(*OutboxDispatcher)

func WithDispatcherMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *OutboxDispatcher) { d.metrics = m }
}

func WithDispatcherLogger(logger *slog.Logger) DispatcherOption {
	return func(d *OutboxDispatcher) { d.logger = logger }
}

func WithDispatcherClock(clock func() time.Time) DispatcherOption {
	return func(d *OutboxDispatcher) { d.clock = clock }
}

// NewOutboxDispatcher builds a dispatcher. Zero config values fall back to defaults.
func NewOutboxDispatcher(repo portsrepo.OutboxRepository, cfg DispatcherConfig, handlers []EventHandler, opts ...DispatcherOption) *OutboxDispatcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	limit := rate.Inf
	burst := 1
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
		burst = int(cfg.RatePerSecond)
		if burst < 1 {
			burst = 1
		}
	}
	d := &OutboxDispatcher{
		repo:     repo,
		handlers: handlers,
		cfg:      cfg,
		limiter:  rate.NewLimiter(limit, burst),
		logger:   slog.Default(),
		clock:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run dispatches until ctx is done.
func (d *OutboxDispatcher) Run(ctx context.Context) {
	d.logger.Info("Outbox dispatcher started",
		slog.Duration("poll_interval", d.cfg.PollInterval),
		slog.Int("batch_size", d.cfg.BatchSize),
		slog.Int("handlers", len(d.handlers)))

	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()
	for {
		if _, err := d.DispatchOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.logger.Error("Outbox dispatch pass failed", slog.String("error", err.Error()))
		}
		select {
		case <-ctx.Done():
			d.logger.Info("Outbox dispatcher stopped")
			return
		case <-ticker.C:
		}
	}
}

// DispatchOnce delivers one batch and returns how many events were marked dispatched.
func (d *OutboxDispatcher) DispatchOnce(ctx context.Context) (int, error) {
	events, err := d.repo.FetchPendingOutboxEvents(ctx, d.cfg.BatchSize, d.cfg.MaxAttempts)
	if err != nil {
		return 0, fmt.Errorf("fetch pending outbox events: %w", err)
	}

	dispatched := 0
	for _, ev := range events {
		if err := d.limiter.Wait(ctx); err != nil {
			return dispatched, err
		}
		if d.deliver(ctx, ev) {
			dispatched++
		}
	}
	return dispatched, nil
}

// deliver runs every handler that has not accepted the event yet. Successes are recorded
// per handler, so a retry only reaches the handlers that failed.
func (d *OutboxDispatcher) deliver(ctx context.Context, ev domain.OutboxEvent) bool {
	logger := d.logger.With(slog.String("event_id", ev.EventID), slog.String("topic", ev.Topic))

	var errs []error
	for _, h := range d.handlers {
		if ev.DeliveredBy(h.Name()) {
			continue
		}
		if err := h.Handle(ctx, ev); err != nil {
			d.metrics.ObserveDispatch(h.Name(), "failed")
			errs = append(errs, fmt.Errorf("%s: %w", h.Name(), err))
			continue
		}
		d.metrics.ObserveDispatch(h.Name(), "delivered")
		if err := d.repo.MarkOutboxHandlerDelivered(ctx, ev.EventID, h.Name()); err != nil {
			// Not fatal: the handler sees the event again on the next attempt.
			logger.Error("Failed to record handler delivery", slog.String("handler", h.Name()), slog.String("error", err.Error()))
		}
	}

	if len(errs) > 0 {
		reason := errors.Join(errs...).Error()
		if err := d.repo.MarkOutboxFailed(ctx, ev.EventID, reason); err != nil {
			logger.Error("Failed to record outbox failure", slog.String("error", err.Error()))
		}
		if ev.Attempts+1 >= d.cfg.MaxAttempts {
			logger.Error("Outbox event gave up", slog.Int("attempts", ev.Attempts+1), slog.String("reason", reason))
		} else {
			logger.Warn("Outbox event will be retried", slog.Int("attempts", ev.Attempts+1), slog.String("reason", reason))
		}
		return false
	}

	if err := d.repo.MarkOutboxDispatched(ctx, ev.EventID, d.clock()); err != nil {
		logger.Error("Failed to mark outbox event dispatched", slog.String("error", err.Error()))
		return false
	}
	logger.Debug("Outbox event dispatched")
	return true
}
