package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/queue"
	"github.com/streadway/amqp"
)

// EventPublisher hands NotificationCreated events to the delivery pipeline.
type EventPublisher interface {
	PublishNotificationCreated(ctx context.Context, event *models.NotificationCreatedEvent) error
}

// MessagePublisher is the broker-side publish call. *queue.Publisher
// implements it.
type MessagePublisher interface {
	Publish(ctx context.Context, routingKey, messageID string, payload interface{}) error
}

type queueEventPublisher struct {
	publisher  MessagePublisher
	routingKey string
	timeout    time.Duration
}

func NewQueueEventPublisher(publisher MessagePublisher, routingKey string, timeout time.Duration) EventPublisher {
	return &queueEventPublisher{
		publisher:  publisher,
		routingKey: routingKey,
		timeout:    timeout,
	}
}

func (p *queueEventPublisher) PublishNotificationCreated(ctx context.Context, event *models.NotificationCreatedEvent) error {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	return p.publisher.Publish(ctx, p.routingKey, event.EventID, event)
}

// inlineEventPublisher runs delivery in-process when no broker is configured.
type inlineEventPublisher struct {
	delivery PushDeliveryService
	logger   *logger.Logger
}

func NewInlineEventPublisher(delivery PushDeliveryService, log *logger.Logger) EventPublisher {
	if log == nil {
		log = logger.NewNop()
	}
	return &inlineEventPublisher{delivery: delivery, logger: log}
}

func (p *inlineEventPublisher) PublishNotificationCreated(ctx context.Context, event *models.NotificationCreatedEvent) error {
	// Delivery must outlive the HTTP request that created the notification.
	detached := context.WithoutCancel(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.WithField("panic", r).Error("Inline push delivery panicked")
			}
		}()
		p.delivery.HandleNotificationCreated(detached, event)
	}()

	return nil
}

// DecodeNotificationCreated parses a queue message body.
func DecodeNotificationCreated(body []byte) (*models.NotificationCreatedEvent, error) {
	var event models.NotificationCreatedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("failed to decode notification event: %w", err)
	}
	if event.NotificationID == "" && event.TargetUserID == "" {
		return nil, fmt.Errorf("failed to decode notification event: empty payload")
	}
	return &event, nil
}

// NewDeliveryHandler adapts the push trigger to a queue consumer. Messages
// that cannot be decoded are rejected to the dead-letter queue; every
// delivery outcome, failed pushes included, is acknowledged.
func NewDeliveryHandler(delivery PushDeliveryService, log *logger.Logger) queue.Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return func(ctx context.Context, msg amqp.Delivery) error {
		event, err := DecodeNotificationCreated(msg.Body)
		if err != nil {
			log.WithError(err).WithField("message_id", msg.MessageId).Warn("Rejecting undecodable notification event")
			return err
		}

		outcome := delivery.HandleNotificationCreated(ctx, event)
		log.WithFields(map[string]interface{}{
			"event_id":        event.EventID,
			"notification_id": outcome.NotificationID,
			"status":          outcome.Status,
			"redelivered":     msg.Redelivered,
		}).Debug("Notification event handled")
		return nil
	}
}
