package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SscSPs/prompt_books/internal/core/domain"
	"github.com/shopspring/decimal"
)

// EventInsightName is the analytics event emitted per posted entry.
const EventInsightName = "journal_posted_insight"

// InsightSink is satisfied by utils.PosthogClientWrapper.
type InsightSink interface {
	Enqueue(distinctID string, event string, properties map[string]any) error
}

// InsightGenerator turns posted entries into product analytics events.
type InsightGenerator struct {
	sink        InsightSink
	largeAmount decimal.Decimal
}

// NewInsightGenerator flags entries whose total reaches largeAmount.
func NewInsightGenerator(sink InsightSink, largeAmount decimal.Decimal) *InsightGenerator {
	return &InsightGenerator{sink: sink, largeAmount: largeAmount}
}

func (g *InsightGenerator) Name() string { return "insight" }

func (g *InsightGenerator) Handle(ctx context.Context, ev domain.OutboxEvent) error {
	if ev.Topic != domain.TopicJournalPosted {
		return nil
	}
	var p domain.JournalPostedPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return fmt.Errorf("decode %s payload: %w", ev.Topic, err)
	}
	return g.sink.Enqueue(p.PostedBy, EventInsightName, Insight(p, g.largeAmount))
}

// Insight summarizes a posted entry.
func Insight(p domain.JournalPostedPayload, largeAmount decimal.Decimal) map[string]any {
	source := "manual"
	if p.DraftID != "" {
		source = "draft"
	}
	props := map[string]any{
		"tenant_id":    p.TenantID,
		"entry_id":     p.EntryID,
		"source":       source,
		"total":        p.Total.StringFixed(2),
		"line_count":   p.LineCount,
		"large_amount": largeAmount.IsPositive() && p.Total.GreaterThanOrEqual(largeAmount),
		"has_tax":      p.LineCount > 2,
	}
	if p.Intent != "" {
		props["intent"] = string(p.Intent)
	}
	return props
}
