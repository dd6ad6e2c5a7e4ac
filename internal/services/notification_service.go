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
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/websocket"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const eventPublishFailed = "event publish failed"

// Broadcaster pushes live-feed messages to a user's open connections.
// *websocket.Handler implements it.
type Broadcaster interface {
	SendUserNotification(userID primitive.ObjectID, messageType string, data interface{})
}

type NotificationService interface {
	// Append stores a notification and announces it to the delivery pipeline.
	Append(ctx context.Context, notification *models.Notification) error
	ListForUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Notification, int64, error)
	UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error
	// Snapshot is the first page plus the unread count, as sent on the live feed.
	Snapshot(ctx context.Context, userID primitive.ObjectID) (*models.NotificationList, error)
}

type notificationService struct {
	notificationRepo interfaces.NotificationRepository
	publisher        EventPublisher
	broadcaster      Broadcaster
	metrics          *metrics.Metrics
	logger           *logger.Logger
}

func NewNotificationService(
	notificationRepo interfaces.NotificationRepository,
	publisher EventPublisher,
	broadcaster Broadcaster,
	m *metrics.Metrics,
	log *logger.Logger,
) NotificationService {
	if log == nil {
		log = logger.NewNop()
	}
	return &notificationService{
		notificationRepo: notificationRepo,
		publisher:        publisher,
		broadcaster:      broadcaster,
		metrics:          m,
		logger:           log,
	}
}

func (s *notificationService) Append(ctx context.Context, notification *models.Notification) error {
	notification.IsRead = false
	notification.ReadAt = nil
	notification.DeliveryStatus = models.DeliveryStatusPending
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}
	s.metrics.RecordNotificationCreated()

	log := s.logger.WithContext(ctx).WithFields(map[string]interface{}{
		"notification_id": notification.ID.Hex(),
		"target_user_id":  notification.TargetUserID.Hex(),
		"protocol":        notification.Protocol,
	})

	if s.publisher != nil {
		event := newNotificationCreatedEvent(notification)
		err := s.publisher.PublishNotificationCreated(ctx, event)
		s.metrics.RecordEventPublished(err)
		if err != nil {
			log.WithError(err).Error("Failed to publish notification event")
			if updateErr := s.notificationRepo.UpdateDeliveryStatus(ctx, notification.ID, models.DeliveryStatusFailed, eventPublishFailed); updateErr != nil {
				log.WithError(updateErr).Warn("Failed to record delivery status")
			}
		}
	}

	log.Info("Notification appended")
	s.broadcast(ctx, notification.TargetUserID)
	return nil
}

func newNotificationCreatedEvent(notification *models.Notification) *models.NotificationCreatedEvent {
	return &models.NotificationCreatedEvent{
		EventID:        uuid.NewString(),
		NotificationID: notification.ID.Hex(),
		TargetUserID:   notification.TargetUserID.Hex(),
		Title:          notification.Title,
		Body:           notification.Body,
		Protocol:       notification.Protocol,
		Type:           string(notification.Type),
		CreatedAt:      notification.CreatedAt,
	}
}

func (s *notificationService) ListForUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Notification, int64, error) {
	if params == nil {
		params = utils.DefaultPagination()
	}
	params.Normalize()

	return s.notificationRepo.ListByTargetUserID(ctx, userID, params)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notificationRepo.GetUnreadCount(ctx, userID)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	modified, err := s.notificationRepo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	if modified > 0 {
		s.broadcast(ctx, userID)
	}
	return modified, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, notificationID primitive.ObjectID) error {
	changed, err := s.notificationRepo.MarkAsRead(ctx, userID, notificationID)
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if changed {
		s.broadcast(ctx, userID)
	}
	return nil
}

func (s *notificationService) Snapshot(ctx context.Context, userID primitive.ObjectID) (*models.NotificationList, error) {
	items, _, err := s.ListForUser(ctx, userID, utils.DefaultPagination())
	if err != nil {
		return nil, err
	}

	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	if items == nil {
		items = []*models.Notification{}
	}
	return &models.NotificationList{Items: items, UnreadCount: unread}, nil
}

func (s *notificationService) broadcast(ctx context.Context, userID primitive.ObjectID) {
	if s.broadcaster == nil {
		return
	}

	list, err := s.Snapshot(ctx, userID)
	if err != nil {
		s.logger.WithContext(ctx).WithUserID(userID).WithError(err).Warn("Failed to refresh live notification list")
		return
	}
	s.broadcaster.SendUserNotification(userID, websocket.MessageTypeNotifications, list)
}
