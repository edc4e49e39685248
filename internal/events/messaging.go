package events

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EventsExchange        = "foodify.events"
	OrderPlacedRoutingKey = "order.placed.v1"
	producerName          = "foodify-service-go"
)

func Dial(url string) (*amqp.Connection, error) {
	conn, err := amqp.DialConfig(url, amqp.Config{
		Dial: amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}
	return conn, nil
}

func declareEventsExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		EventsExchange,
		"topic",
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	)
}
