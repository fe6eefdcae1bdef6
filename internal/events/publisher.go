package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	JobCreated               = "job.created"
	JobDeleted               = "job.deleted"
	ApplicationSubmitted     = "application.submitted"
	ApplicationStatusChanged = "application.status_changed"
)

type Publisher interface {
	Publish(ctx context.Context, routingKey string, body json.RawMessage) error
}

type JobEvent struct {
	JobID     string    `json:"jobId"`
	CompanyID string    `json:"companyId"`
	JobTitle  string    `json:"jobTitle,omitempty"`
	At        time.Time `json:"at"`
}

type ApplicationEvent struct {
	JobID     string    `json:"jobId"`
	UserID    string    `json:"userId"`
	CompanyID string    `json:"companyId"`
	Status    string    `json:"status"`
	At        time.Time `json:"at"`
}

// Encode marshals an event payload for Publish.
func Encode(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event to JSON: %w", err)
	}
	return json.RawMessage(data), nil
}

type RabbitPublisher struct {
	channel  *amqp.Channel
	exchange string
}

func NewRabbitPublisher(conn *amqp.Connection, exchange string) (*RabbitPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}

	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true, // durable
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &RabbitPublisher{
		channel:  ch,
		exchange: exchange,
	}, nil
}

func (p *RabbitPublisher) Publish(ctx context.Context, routingKey string, body json.RawMessage) error {
	return p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
}

func (p *RabbitPublisher) Close() error {
	return p.channel.Close()
}

// Noop is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, json.RawMessage) error { return nil }
