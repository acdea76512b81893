package events

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Event is an in-process domain event. Nothing is persisted; the bus exists
// so observers (logs, metrics) hear about cart and order activity without
// the emitting code knowing who listens.
type Event struct {
	Topic      string
	OccurredAt time.Time
	Payload    map[string]any
}

// Notifier reacts to emitted events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Bus fans emitted events out to all configured notifiers.
type Bus struct {
	Notifiers []Notifier
	Now       func() time.Time
}

// Emit delivers the event to every notifier, joining any errors. A nil bus
// is a valid no-op so callers never need to guard emission.
func (b *Bus) Emit(ctx context.Context, topic string, payload map[string]any) error {
	if b == nil {
		return nil
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return errors.New("events: topic is required")
	}
	now := time.Now
	if b.Now != nil {
		now = b.Now
	}
	ev := Event{Topic: topic, OccurredAt: now(), Payload: payload}
	var joined error
	for _, notifier := range b.Notifiers {
		if notifier == nil {
			continue
		}
		if err := notifier.Notify(ctx, ev); err != nil {
			joined = errors.Join(joined, fmt.Errorf("events: notifier: %w", err))
		}
	}
	return joined
}
