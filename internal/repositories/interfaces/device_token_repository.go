package interfaces

import (
	"context"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DeviceTokenRepository interface {
	// Upsert replaces the user's token, creating the record on first use.
	Upsert(ctx context.Context, token *models.DeviceToken) (*models.DeviceToken, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.DeviceToken, error)
}
