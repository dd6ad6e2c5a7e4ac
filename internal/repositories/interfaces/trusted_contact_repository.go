package interfaces

import (
	"context"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TrustedContactRepository interface {
	Upsert(ctx context.Context, contact *models.TrustedContact) (*models.TrustedContact, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.TrustedContact, error)
}
