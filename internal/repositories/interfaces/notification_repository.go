package interfaces

import (
	"context"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)

	// ListByTargetUserID returns one page, newest first.
	ListByTargetUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Notification, int64, error)
	GetUnreadCount(ctx context.Context, userID primitive.ObjectID) (int64, error)

	// MarkAsRead flips one notification addressed to userID. It reports
	// whether the document changed.
	MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) (bool, error)
	// MarkAllAsRead flips every unread notification of userID in one update
	// and returns how many changed.
	MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error)

	UpdateDeliveryStatus(ctx context.Context, id primitive.ObjectID, status models.DeliveryStatus, deliveryErr string) error
}
