package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// ChannelSource hands out AMQP channels. *Manager implements it.
type ChannelSource interface {
	Channel() (*amqp.Channel, error)
}

// Publisher publishes JSON messages to one exchange.
type Publisher struct {
	source   ChannelSource
	exchange string
}

func NewPublisher(source ChannelSource, exchange string) *Publisher {
	return &Publisher{source: source, exchange: exchange}
}

func (p *Publisher) Publish(ctx context.Context, routingKey, messageID string, payload interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := newPublishing(messageID, payload, time.Now())
	if err != nil {
		return err
	}

	ch, err := p.source.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Publish(p.exchange, routingKey, false, false, msg); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}

	return nil
}

func newPublishing(messageID string, payload interface{}, at time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal payload: %w", err)
	}

	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    at,
		Body:         body,
	}, nil
}
