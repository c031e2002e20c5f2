package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/pawalk/pawalk-backend/internal/booking"
	amqp "github.com/rabbitmq/amqp091-go"
)

// EventPublisher fans domain events out to a RabbitMQ topic exchange. The
// event type doubles as the routing key (booking.created, payment.released,
// ...), so downstream consumers bind only the keys they care about.
type EventPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewEventPublisher(url, exchange string) (*EventPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &EventPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

// Publish implements booking.EventPublisher. Failures are logged and
// dropped: event delivery must never block or fail a state transition.
func (p *EventPublisher) Publish(ctx context.Context, event booking.Event) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("mq: marshal %s event: %v", event.Type, err)
		return
	}
	err = p.ch.PublishWithContext(ctx, p.exchange, string(event.Type), false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		log.Printf("mq: publish %s: %v", event.Type, err)
	}
}

func (p *EventPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
