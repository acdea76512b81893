package events

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nebula-retail/storefront/internal/obs"
)

// LogNotifier writes every event as a structured log line.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify implements Notifier.
func (n LogNotifier) Notify(_ context.Context, event Event) error {
	n.Logger.Info().
		Str("topic", event.Topic).
		Time("occurred_at", event.OccurredAt).
		Fields(event.Payload).
		Msg("domain_event")
	return nil
}

// MetricsNotifier bumps domain counters for checkout outcomes.
type MetricsNotifier struct{}

// Notify implements Notifier.
func (MetricsNotifier) Notify(_ context.Context, event Event) error {
	if event.Topic == TopicOrderPlaced && obs.CheckoutTotal != nil {
		obs.CheckoutTotal.WithLabelValues("success").Inc()
	}
	return nil
}
