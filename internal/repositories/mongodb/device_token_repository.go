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
	"go.mongodb.org/mongo-driver/mongo/options"
)

type deviceTokenRepository struct {
	collection *mongo.Collection
}

func NewDeviceTokenRepository(db *mongo.Database) interfaces.DeviceTokenRepository {
	return &deviceTokenRepository{
		collection: db.Collection(database.DeviceTokensCollection),
	}
}

func (r *deviceTokenRepository) Upsert(ctx context.Context, token *models.DeviceToken) (*models.DeviceToken, error) {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"token":      token.Token,
			"platform":   token.Platform,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"user_id":    token.UserID,
			"created_at": now,
		},
	}

	saved, err := upsertByUserID[models.DeviceToken](ctx, r.collection, token.UserID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert device token: %w", err)
	}
	return saved, nil
}

func (r *deviceTokenRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.DeviceToken, error) {
	var token models.DeviceToken
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&token)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get device token: %w", err)
	}
	return &token, nil
}

// upsertByUserID applies update to the single document owned by userID and
// returns the stored result. Two first-time writers can race on the unique
// index; the loser retries once as a plain update.
func upsertByUserID[T any](ctx context.Context, collection *mongo.Collection, userID primitive.ObjectID, update bson.M) (*T, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	filter := bson.M{"user_id": userID}

	var saved T
	err := collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	if err != nil && mongo.IsDuplicateKeyError(err) {
		err = collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved)
	}
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
