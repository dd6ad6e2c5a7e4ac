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

type userRepository struct {
	collection *mongo.Collection
	cache      CacheService
	cacheTTL   time.Duration
}

func NewUserRepository(db *mongo.Database, cache CacheService, cacheTTL time.Duration) interfaces.UserRepository {
	return &userRepository{
		collection: db.Collection(database.UsersCollection),
		cache:      cache,
		cacheTTL:   cacheTTL,
	}
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if user := r.getUserFromCache(ctx, id); user != nil {
		return user, nil
	}

	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id, "deleted_at": nil}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, interfaces.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	r.cacheUser(ctx, &user)

	return &user, nil
}

// FindByEmail is an exact match. Results are never cached so ambiguity is
// judged against current data.
func (r *userRepository) FindByEmail(ctx context.Context, email string, limit int) ([]*models.User, error) {
	opts := options.Find().SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{"email": email, "deleted_at": nil}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find users by email: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*models.User
	for cursor.Next(ctx) {
		var user models.User
		if err := cursor.Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, &user)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

func userCacheKey(id primitive.ObjectID) string {
	return "user:" + id.Hex()
}

func (r *userRepository) getUserFromCache(ctx context.Context, id primitive.ObjectID) *models.User {
	if r.cache == nil {
		return nil
	}
	var user models.User
	if err := r.cache.Get(ctx, userCacheKey(id), &user); err != nil {
		return nil
	}
	return &user
}

func (r *userRepository) cacheUser(ctx context.Context, user *models.User) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Set(ctx, userCacheKey(user.ID), user, r.cacheTTL)
}
