package wishlist

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

const Collection = "wishlists"

var ErrNotFound = errors.New("wishlist not found")

type Repository interface {
	// Add inserts the item unless the owner already lists that product.
	Add(ctx context.Context, owner string, item models.WishlistItem) error
	Remove(ctx context.Context, owner string, productID primitive.ObjectID) error
	Find(ctx context.Context, owner string) (models.Wishlist, error)
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(Collection)}
}

// addFilter matches the owner's list only while it lacks the product, so the
// $push is a no-op for duplicates.
func addFilter(owner string, productID primitive.ObjectID) bson.M {
	return bson.M{
		"owner":            owner,
		"items.product_id": bson.M{"$ne": productID},
	}
}

func (r *MongoRepository) Add(ctx context.Context, owner string, item models.WishlistItem) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"owner": owner},
		bson.M{"$setOnInsert": bson.M{
			"items":      bson.A{},
			"created_at": item.AddedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}

	_, err = r.coll.UpdateOne(
		ctx,
		addFilter(owner, item.ProductID),
		bson.M{"$push": bson.M{"items": item}},
	)
	return err
}

func (r *MongoRepository) Remove(ctx context.Context, owner string, productID primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"owner": owner},
		bson.M{"$pull": bson.M{"items": bson.M{"product_id": productID}}},
	)
	return err
}

func (r *MongoRepository) Find(ctx context.Context, owner string) (models.Wishlist, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var list models.Wishlist
	err := r.coll.FindOne(ctx, bson.M{"owner": owner}).Decode(&list)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Wishlist{}, ErrNotFound
	}
	return list, err
}
