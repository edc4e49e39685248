package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/andreasstove999/ecommerce-system/foodify-service-go/internal/notify"
)

// HubPublisher is the part of notify.Hub the consumer needs.
type HubPublisher interface {
	Publish(ev notify.Event) bool
}

// StartOrderPlacedConsumer binds a private queue for this instance and forwards every
// OrderPlaced event to the local hub. It stops when ctx is done.
func StartOrderPlacedConsumer(ctx context.Context, conn *amqp.Connection, hub HubPublisher, logger *log.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	if err := declareEventsExchange(ch); err != nil {
		return fmt.Errorf("declare events exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		"",    // server named
		false, // durable
		true,  // autoDelete
		true,  // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(q.Name, OrderPlacedRoutingKey, EventsExchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.Consume(q.Name, producerName, false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				logger.Println("stopping order.placed consumer")
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Println("order.placed channel closed")
					return
				}
				if err := handleOrderPlaced(hub, msg.Body); err != nil {
					logger.Printf("order.placed: %v", err)
					_ = msg.Nack(false, false)
					continue
				}
				_ = msg.Ack(false)
			}
		}
	}()

	return nil
}

func handleOrderPlaced(hub HubPublisher, body []byte) error {
	var env Envelope[OrderPlacedPayload]
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := env.Check(OrderPlacedEventName, OrderPlacedVersion); err != nil {
		return err
	}
	hub.Publish(toNotifyEvent(env))
	return nil
}
