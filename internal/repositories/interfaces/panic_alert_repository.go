package interfaces

import (
	"context"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PanicAlertRepository is append-only. Create returns ErrDuplicateKey when the
// protocol is already taken.
type PanicAlertRepository interface {
	Create(ctx context.Context, alert *models.PanicAlert) error
	GetByProtocol(ctx context.Context, protocol string) (*models.PanicAlert, error)
	ListByUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.PanicAlert, int64, error)
}
