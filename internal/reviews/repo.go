package reviews

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

const Collection = "reviews"

var ErrNotFound = errors.New("review not found")

type Repository interface {
	Insert(ctx context.Context, review *models.Review) error
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error)
	ListAll(ctx context.Context) ([]models.Review, error)
	RatingsForProduct(ctx context.Context, productID primitive.ObjectID) ([]int, error)
	// Distribution returns the number of reviews per rating value.
	Distribution(ctx context.Context, productID primitive.ObjectID) (map[int]int, error)
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(Collection)}
}

func (r *MongoRepository) Insert(ctx context.Context, review *models.Review) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, review)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		review.ID = id
	}
	return nil
}

func (r *MongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var review models.Review
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&review)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Review{}, ErrNotFound
	}
	return review, err
}

func (r *MongoRepository) Delete(ctx context.Context, id primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

func (r *MongoRepository) ListByProduct(ctx context.Context, productID primitive.ObjectID) ([]models.Review, error) {
	return r.list(ctx, bson.M{"product_id": productID})
}

func (r *MongoRepository) ListAll(ctx context.Context) ([]models.Review, error) {
	return r.list(ctx, bson.M{})
}

func (r *MongoRepository) RatingsForProduct(ctx context.Context, productID primitive.ObjectID) ([]int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"rating": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"product_id": productID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ratings := make([]int, 0)
	for cursor.Next(ctx) {
		var doc struct {
			Rating int `bson:"rating"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		ratings = append(ratings, doc.Rating)
	}
	return ratings, cursor.Err()
}

func distributionPipeline(productID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"product_id": productID}}},
		{{Key: "$group", Value: bson.M{"_id": "$rating", "count": bson.M{"$sum": 1}}}},
	}
}

func (r *MongoRepository) Distribution(ctx context.Context, productID primitive.ObjectID) (map[int]int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Aggregate(ctx, distributionPipeline(productID))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make(map[int]int)
	for cursor.Next(ctx) {
		var row struct {
			Rating int `bson:"_id"`
			Count  int `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		out[row.Rating] = row.Count
	}
	return out, cursor.Err()
}

func (r *MongoRepository) list(ctx context.Context, filter bson.M) ([]models.Review, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	reviews := make([]models.Review, 0)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}
