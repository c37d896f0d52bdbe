package customers

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

const Collection = "customers"

var ErrNotFound = errors.New("customer not found")

type Repository interface {
	UpsertByEmail(ctx context.Context, profile models.Customer) error
	FindByToken(ctx context.Context, token string) (models.Customer, error)
	Count(ctx context.Context) (int64, error)
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(Collection)}
}

// upsertUpdate overwrites the whole profile, created_at included, so a
// repeat save looks like a fresh one.
func upsertUpdate(profile models.Customer) bson.M {
	return bson.M{
		"$set": bson.M{
			"token":      profile.Token,
			"name":       profile.Name,
			"email":      profile.Email,
			"phone":      profile.Phone,
			"address":    profile.Address,
			"created_at": profile.CreatedAt,
		},
	}
}

func (r *MongoRepository) UpsertByEmail(ctx context.Context, profile models.Customer) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(
		ctx,
		bson.M{"email": profile.Email},
		upsertUpdate(profile),
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *MongoRepository) FindByToken(ctx context.Context, token string) (models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var customer models.Customer
	err := r.coll.FindOne(ctx, bson.M{"token": strings.TrimSpace(token)}).Decode(&customer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Customer{}, ErrNotFound
	}
	return customer, err
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{})
}
