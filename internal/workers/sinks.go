package workers

import (
	"database/sql"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Sinks are the downstream clients events can be delivered to.
// A zero field disables the matching handler.
type Sinks struct {
	KafkaBrokers     []string
	KafkaTopic       string
	SearchDB         *sql.DB
	Insights         InsightSink
	InsightThreshold decimal.Decimal
}

// BuildHandlers returns a handler per configured sink and a func that closes what they opened.
func BuildHandlers(s Sinks, logger *slog.Logger) ([]EventHandler, func()) {
	var handlers []EventHandler
	var closers []func() error

	if len(s.KafkaBrokers) > 0 && s.KafkaTopic != "" {
		publisher := NewKafkaPublisher(s.KafkaBrokers, s.KafkaTopic)
		handlers = append(handlers, publisher)
		closers = append(closers, publisher.Close)
	}
	if s.SearchDB != nil {
		handlers = append(handlers, NewSearchIndexer(s.SearchDB))
	}
	if s.Insights != nil {
		handlers = append(handlers, NewInsightGenerator(s.Insights, s.InsightThreshold))
	}

	names := make([]string, len(handlers))
	for i, h := range handlers {
		names[i] = h.Name()
	}
	logger.Info("Outbox handlers configured", slog.Any("handlers", names))

	return handlers, func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Error("Failed to close outbox handler", slog.String("error", err.Error()))
			}
		}
	}
}
