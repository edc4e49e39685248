package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/order"
)

// Publisher announces placed orders on the events exchange so every instance can notify its admins.
type Publisher struct {
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}
	return &Publisher{ch: ch}, nil
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// OrderPlaced implements order.Notifier.
func (p *Publisher) OrderPlaced(ctx context.Context, o order.Order) error {
	body, err := json.Marshal(NewOrderPlacedEnvelope(o))
	if err != nil {
		return fmt.Errorf("marshal OrderPlaced: %w", err)
	}
	return p.publishJSON(ctx, OrderPlacedRoutingKey, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}
