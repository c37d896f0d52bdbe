package carts

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

const Collection = "carts"

var ErrNotFound = errors.New("cart not found")

type Repository interface {
	// Replace overwrites the session's items, creating the cart if needed.
	Replace(ctx context.Context, sessionID string, items []models.CartItem, at time.Time) error
	Find(ctx context.Context, sessionID string) (models.Cart, error)
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(Collection)}
}

func replaceUpdate(items []models.CartItem, at time.Time) bson.M {
	return bson.M{
		"$set":         bson.M{"items": items, "updated_at": at},
		"$setOnInsert": bson.M{"created_at": at},
	}
}

func (r *MongoRepository) Replace(ctx context.Context, sessionID string, items []models.CartItem, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"session_id": sessionID},
		replaceUpdate(items, at),
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *MongoRepository) Find(ctx context.Context, sessionID string) (models.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var cart models.Cart
	err := r.coll.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Cart{}, ErrNotFound
	}
	return cart, err
}
