package booking

import (
	"context"
	"time"
)

// EventType names a domain event. The values double as AMQP routing keys and
// websocket message types.
type EventType string

const (
	EventBookingCreated      EventType = "booking.created"
	EventBookingTransitioned EventType = "booking.transitioned"
	EventProofSubmitted      EventType = "proof.submitted"
	EventLocationRecorded    EventType = "location.recorded"
	EventPaymentReleased     EventType = "payment.released"
	EventTipRecorded         EventType = "tip.recorded"
)

// Event is a typed domain event emitted by the engine and its ledgers.
// Delivery is fire-and-forget: publishers must never block or fail the
// state change that produced the event.
type Event struct {
	Type       EventType      `json:"type"`
	BookingID  uint           `json:"bookingId"`
	OwnerID    uint           `json:"ownerId"`
	WalkerID   uint           `json:"walkerId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Data       map[string]any `json:"data,omitempty"`
}

// EventPublisher receives domain events. Implementations fan out to
// websocket clients, Redis pub/sub and RabbitMQ.
type EventPublisher interface {
	Publish(ctx context.Context, event Event)
}

// MultiPublisher publishes to every wrapped publisher in order.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(ctx context.Context, event Event) {
	for _, p := range m {
		p.Publish(ctx, event)
	}
}

// NopPublisher drops events; used when no fan-out is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}

// Notifier is the external push-notification collaborator. Delivery failures
// are the collaborator's problem; the engine never awaits confirmation.
type Notifier interface {
	Notify(ctx context.Context, userID uint, eventType, title, description, link string)
}

// NopNotifier drops notifications.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, uint, string, string, string, string) {}

// RateSource supplies the hourly price basis for booking creation.
type RateSource interface {
	HourlyRate(ctx context.Context, walkerID uint) (float64, error)
}
