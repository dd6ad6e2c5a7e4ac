package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/streadway/amqp"
)

// Handler processes one message. Returning an error rejects the message
// without requeue, which routes it to the dead-letter queue.
type Handler func(ctx context.Context, msg amqp.Delivery) error

type Consumer struct {
	source   ChannelSource
	queue    string
	tag      string
	prefetch int
	logger   *logger.Logger
}

func NewConsumer(source ChannelSource, queue, tag string, prefetch int, log *logger.Logger) *Consumer {
	return &Consumer{
		source:   source,
		queue:    queue,
		tag:      tag,
		prefetch: prefetch,
		logger:   log,
	}
}

// Run consumes until ctx is cancelled or the broker closes the channel.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	ch, err := c.source.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(c.queue, c.tag, false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	c.logger.WithField("queue", c.queue).Info("Consumer started")

	for {
		select {
		case <-ctx.Done():
			_ = ch.Cancel(c.tag, false)
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed by broker")
			}
			c.process(ctx, delivery, handler)
		}
	}
}

func (c *Consumer) process(ctx context.Context, delivery amqp.Delivery, handler Handler) {
	log := c.logger.WithFields(map[string]interface{}{
		"message_id":  delivery.MessageId,
		"redelivered": delivery.Redelivered,
	})

	if err := handler(ctx, delivery); err != nil {
		log.WithError(err).Error("Message rejected")
		if nackErr := delivery.Nack(false, false); nackErr != nil {
			log.WithError(nackErr).Error("Failed to nack message")
		}
		return
	}

	if err := delivery.Ack(false); err != nil {
		log.WithError(err).Error("Failed to ack message")
	}
}
