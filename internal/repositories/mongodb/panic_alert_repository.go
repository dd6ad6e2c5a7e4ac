package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/models"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/repositories/interfaces"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/internal/utils"
	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type panicAlertRepository struct {
	collection *mongo.Collection
}

func NewPanicAlertRepository(db *mongo.Database) interfaces.PanicAlertRepository {
	return &panicAlertRepository{
		collection: db.Collection(database.PanicAlertsCollection),
	}
}

func (r *panicAlertRepository) Create(ctx context.Context, alert *models.PanicAlert) error {
	if alert.ID.IsZero() {
		alert.ID = primitive.NewObjectID()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now()
	}

	if _, err := r.collection.InsertOne(ctx, alert); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: protocol %s", interfaces.ErrDuplicateKey, alert.Protocol)
		}
		return fmt.Errorf("failed to create panic alert: %w", err)
	}

	return nil
}

func (r *panicAlertRepository) GetByProtocol(ctx context.Context, protocol string) (*models.PanicAlert, error) {
	var alert models.PanicAlert
	err := r.collection.FindOne(ctx, bson.M{"protocol": protocol}).Decode(&alert)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get panic alert: %w", err)
	}
	return &alert, nil
}

func (r *panicAlertRepository) ListByUserID(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.PanicAlert, int64, error) {
	filter := bson.M{"user_id": userID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count panic alerts: %w", err)
	}

	cursor, err := r.collection.Find(ctx, filter, params.NewestFirst())
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find panic alerts: %w", err)
	}
	defer cursor.Close(ctx)

	alerts := make([]*models.PanicAlert, 0)
	for cursor.Next(ctx) {
		var alert models.PanicAlert
		if err := cursor.Decode(&alert); err != nil {
			return nil, 0, fmt.Errorf("failed to decode panic alert: %w", err)
		}
		alerts = append(alerts, &alert)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate panic alerts: %w", err)
	}

	return alerts, total, nil
}
