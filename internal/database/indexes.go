package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/logger"
)

// CollectionIndexes names the indexes one collection needs.
type CollectionIndexes struct {
	Collection string
	Models     []mongo.IndexModel
}

// Indexes lists every index the storefront relies on. The unique indexes on
// orders.order_number and customers.email back the collision and upsert
// guarantees.
func Indexes() []CollectionIndexes {
	return []CollectionIndexes{
		{
			Collection: "products",
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "category", Value: 1}, {Key: "is_deleted", Value: 1}},
					Options: options.Index().SetName("category_active"),
				},
				{
					Keys:    bson.D{{Key: "subcategories", Value: 1}},
					Options: options.Index().SetName("subcategories"),
				},
				{
					Keys:    bson.D{{Key: "created_at", Value: -1}},
					Options: options.Index().SetName("created_at_desc"),
				},
			},
		},
		{
			Collection: "orders",
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "order_number", Value: 1}},
					Options: options.Index().SetName("order_number_unique").SetUnique(true),
				},
				{
					Keys:    bson.D{{Key: "created_at", Value: -1}},
					Options: options.Index().SetName("created_at_desc"),
				},
			},
		},
		{
			Collection: "reviews",
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "product_id", Value: 1}, {Key: "created_at", Value: -1}},
					Options: options.Index().SetName("product_created"),
				},
			},
		},
		{
			Collection: "customers",
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "email", Value: 1}},
					Options: options.Index().SetName("email_unique").SetUnique(true),
				},
				{
					Keys: bson.D{{Key: "token", Value: 1}},
					Options: options.Index().
						SetName("token_unique").
						SetUnique(true).
						SetPartialFilterExpression(bson.M{
							"token": bson.M{"$exists": true},
						}),
				},
			},
		},
		{
			Collection: "carts",
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "session_id", Value: 1}},
					Options: options.Index().SetName("session_id_unique").SetUnique(true),
				},
			},
		},
		{
			Collection: "wishlists",
			Models: []mongo.IndexModel{
				{
					Keys:    bson.D{{Key: "owner", Value: 1}},
					Options: options.Index().SetName("owner_unique").SetUnique(true),
				},
			},
		},
	}
}

// EnsureIndexes creates every index, continuing past failures and returning
// the first error.
func EnsureIndexes(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	if log == nil {
		log = logger.Nop()
	}
	var firstErr error
	for _, set := range Indexes() {
		if err := ensureCollection(ctx, db, set); err != nil {
			log.Warn(log.WithField(ctx, "collection", set.Collection), "index creation failed", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		log.Debug(log.WithField(ctx, "collection", set.Collection), "indexes ensured")
	}
	return firstErr
}

func ensureCollection(ctx context.Context, db *mongo.Database, set CollectionIndexes) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := db.Collection(set.Collection).Indexes().CreateMany(ctx, set.Models); err != nil {
		return fmt.Errorf("%s indexes: %w", set.Collection, err)
	}
	return nil
}
