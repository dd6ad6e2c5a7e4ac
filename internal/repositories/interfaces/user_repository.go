package interfaces

import (
	"context"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserRepository reads accounts owned by the authentication subsystem.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindByEmail returns at most limit live accounts whose email equals email.
	FindByEmail(ctx context.Context, email string, limit int) ([]*models.User, error)
}
