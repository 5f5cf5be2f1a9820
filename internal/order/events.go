package order

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/streadway/amqp"
)

// Publisher emits order lifecycle events. Publishing is best-effort: a
// failed publish is logged, never surfaced to the customer.
type Publisher interface {
	Publish(ctx context.Context, pattern string, data interface{}) error
}

type Event struct {
	OrderID   string    `json:"order_id"`
	Number    string    `json:"number"`
	UserID    string    `json:"user_id"`
	Status    Status    `json:"status"`
	Total     string    `json:"total"`
	Timestamp time.Time `json:"timestamp"`
}

type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewAMQPPublisher(amqpURL, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %v", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %v", err)
	}

	if err := channel.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %v", err)
	}

	return &AMQPPublisher{conn: conn, channel: channel, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, pattern string, data interface{}) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %v", err)
	}

	if err := p.channel.Publish(
		p.exchange,
		pattern,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	); err != nil {
		return fmt.Errorf("failed to publish message: %v", err)
	}
	return nil
}

func (p *AMQPPublisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

// NopPublisher drops events; used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(ctx context.Context, pattern string, data interface{}) error {
	log.Printf("[events] no broker, dropping %s", pattern)
	return nil
}
