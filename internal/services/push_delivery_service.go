package services

import (
	"context"
	"errors"
	"time"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/repositories/interfaces"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/metrics"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/push"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const panicAlertChannelID = "panic_alerts"

// PushSender selects the gateway for a device platform. *push.Router
// implements it.
type PushSender interface {
	ProviderFor(platform string) push.PushProvider
}

// DeliveryGuard records that a notification has been handed to the gateway.
// *cache.RedisCache implements it.
type DeliveryGuard interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
}

type PushDeliveryService interface {
	// HandleNotificationCreated delivers one push for a new notification. It
	// never fails: every outcome is logged and returned.
	HandleNotificationCreated(ctx context.Context, event *models.NotificationCreatedEvent) *models.DeliveryOutcome
}

type pushDeliveryService struct {
	tokenRepo        interfaces.DeviceTokenRepository
	notificationRepo interfaces.NotificationRepository
	sender           PushSender
	guard            DeliveryGuard
	guardTTL         time.Duration
	metrics          *metrics.Metrics
	logger           *logger.Logger
}

// NewPushDeliveryService wires the trigger. guard may be nil, in which case
// redelivered events are pushed again.
func NewPushDeliveryService(
	tokenRepo interfaces.DeviceTokenRepository,
	notificationRepo interfaces.NotificationRepository,
	sender PushSender,
	guard DeliveryGuard,
	guardTTL time.Duration,
	m *metrics.Metrics,
	log *logger.Logger,
) PushDeliveryService {
	if log == nil {
		log = logger.NewNop()
	}
	return &pushDeliveryService{
		tokenRepo:        tokenRepo,
		notificationRepo: notificationRepo,
		sender:           sender,
		guard:            guard,
		guardTTL:         guardTTL,
		metrics:          m,
		logger:           log,
	}
}

func (s *pushDeliveryService) HandleNotificationCreated(ctx context.Context, event *models.NotificationCreatedEvent) *models.DeliveryOutcome {
	if event == nil {
		s.logger.Warn("Empty notification event, delivery skipped")
		return &models.DeliveryOutcome{Status: models.DeliveryStatusSkipped, Error: "empty event"}
	}

	outcome := &models.DeliveryOutcome{NotificationID: event.NotificationID}
	log := s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"notification_id": event.NotificationID,
		"event_id":        event.EventID,
		"protocol":        event.Protocol,
	})

	targetID, err := primitive.ObjectIDFromHex(event.TargetUserID)
	if err != nil {
		log.WithField("target_user_id", event.TargetUserID).Warn("Notification has no valid target, delivery skipped")
		outcome.Status = models.DeliveryStatusSkipped
		outcome.Error = "invalid target user id"
		s.finish(ctx, outcome, "", 0, log)
		return outcome
	}
	log = log.WithField("target_user_id", targetID.Hex())

	if s.alreadyDelivered(ctx, event, log) {
		outcome.Status = models.DeliveryStatusSkipped
		outcome.Duplicate = true
		log.Info("Duplicate notification event ignored")
		return outcome
	}

	token, err := s.tokenRepo.GetByUserID(ctx, targetID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			log.Warn("Target has no device token, push not sent")
			outcome.Status = models.DeliveryStatusNoToken
		} else {
			log.WithError(err).Error("Failed to read device token")
			outcome.Status = models.DeliveryStatusFailed
			outcome.Error = err.Error()
		}
		s.finish(ctx, outcome, "", 0, log)
		return outcome
	}

	provider := s.sender.ProviderFor(string(token.Platform))
	start := time.Now()
	resp, err := provider.SendNotification(ctx, buildPushRequest(token.Token, event))
	elapsed := time.Since(start)

	if err != nil {
		log.WithError(err).WithField("provider", provider.Name()).Error("Push delivery failed")
		outcome.Status = models.DeliveryStatusFailed
		outcome.Error = err.Error()
	} else {
		outcome.Status = models.DeliveryStatusSent
		outcome.MessageID = resp.MessageID
	}

	s.finish(ctx, outcome, provider.Name(), elapsed, log)
	return outcome
}

// alreadyDelivered claims the guard key for the notification. A guard error
// is logged and delivery proceeds.
func (s *pushDeliveryService) alreadyDelivered(ctx context.Context, event *models.NotificationCreatedEvent, log *logger.Logger) bool {
	if s.guard == nil {
		return false
	}

	key := event.NotificationID
	if key == "" {
		key = event.EventID
	}

	claimed, err := s.guard.SetNX(ctx, utils.DeliveryGuardPrefix+key, event.EventID, s.guardTTL)
	if err != nil {
		log.WithError(err).Warn("Delivery guard unavailable, delivering anyway")
		return false
	}
	return !claimed
}

func (s *pushDeliveryService) finish(ctx context.Context, outcome *models.DeliveryOutcome, provider string, elapsed time.Duration, log *logger.Logger) {
	if provider == "" {
		provider = "none"
	}
	s.metrics.RecordPushDelivery(provider, string(outcome.Status), elapsed)

	log.LogDeliveryEvent(outcome.NotificationID, string(outcome.Status), map[string]interface{}{
		"provider":   provider,
		"message_id": outcome.MessageID,
	})

	notificationID, err := primitive.ObjectIDFromHex(outcome.NotificationID)
	if err != nil {
		return
	}
	if err := s.notificationRepo.UpdateDeliveryStatus(ctx, notificationID, outcome.Status, outcome.Error); err != nil {
		log.WithError(err).Warn("Failed to record delivery status")
	}
}

func buildPushRequest(token string, event *models.NotificationCreatedEvent) *push.NotificationRequest {
	return &push.NotificationRequest{
		Token: token,
		Title: event.Title,
		Body:  event.Body,
		Data: map[string]string{
			"notification_id": event.NotificationID,
			"protocol":        event.Protocol,
			"type":            event.Type,
		},
		Sound:    "default",
		Priority: utils.PushPriorityHigh,
		Android: &push.AndroidConfig{
			Priority:  utils.PushPriorityHigh,
			ChannelID: panicAlertChannelID,
		},
		IOS: &push.IOSConfig{
			Sound:          "default",
			InterruptLevel: "time-sensitive",
		},
	}
}
