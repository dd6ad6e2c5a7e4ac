package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/repositories/interfaces"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type trustedContactRepository struct {
	collection *mongo.Collection
}

func NewTrustedContactRepository(db *mongo.Database) interfaces.TrustedContactRepository {
	return &trustedContactRepository{
		collection: db.Collection(database.TrustedContactsCollection),
	}
}

func (r *trustedContactRepository) Upsert(ctx context.Context, contact *models.TrustedContact) (*models.TrustedContact, error) {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"email":      contact.Email,
			"phone":      contact.Phone,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"user_id":    contact.UserID,
			"created_at": now,
		},
	}

	saved, err := upsertByUserID[models.TrustedContact](ctx, r.collection, contact.UserID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert trusted contact: %w", err)
	}
	return saved, nil
}

func (r *trustedContactRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.TrustedContact, error) {
	var contact models.TrustedContact
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&contact)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get trusted contact: %w", err)
	}
	return &contact, nil
}
