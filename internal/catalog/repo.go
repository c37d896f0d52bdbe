package catalog

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/models"
)

const Collection = "products"

var ErrNotFound = errors.New("product not found")

const opTimeout = 5 * time.Second

// opContext bounds a single store operation.
func opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, opTimeout)
}

// ListParams filters the public product listing.
type ListParams struct {
	Limit         int64
	Offset        int64
	Category      string
	Subcategories []string
}

// Patch is a partial product update. Nil fields are left untouched;
// SetSalePrice with a nil SalePrice clears the stored sale price.
type Patch struct {
	Title         *string
	Description   *string
	Price         *float64
	OnSale        *bool
	SalePrice     *float64
	SetSalePrice  bool
	Stock         *int
	Category      *string
	Subcategories *[]string
	Images        *[]string
	UpdatedAt     time.Time
}

func (p Patch) empty() bool {
	return p.Title == nil && p.Description == nil && p.Price == nil && p.OnSale == nil &&
		!p.SetSalePrice && p.Stock == nil && p.Category == nil && p.Subcategories == nil && p.Images == nil
}

type Repository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	List(ctx context.Context, params ListParams) ([]models.Product, error)
	Insert(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, patch Patch) (bool, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error)
	SetRating(ctx context.Context, id primitive.ObjectID, rating float64, count int, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(Collection)}
}

func activeFilter(id primitive.ObjectID) bson.M {
	return bson.M{
		"_id":        id,
		"is_deleted": bson.M{"$ne": true},
	}
}

func listFilter(params ListParams) bson.M {
	filter := bson.M{"is_deleted": bson.M{"$ne": true}}

	if category := strings.TrimSpace(params.Category); category != "" {
		filter["category"] = bson.M{
			"$regex":   "^" + regexp.QuoteMeta(category) + "$",
			"$options": "i",
		}
	}

	subcategories := make([]string, 0, len(params.Subcategories))
	for _, value := range params.Subcategories {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			subcategories = append(subcategories, trimmed)
		}
	}
	if len(subcategories) > 0 {
		filter["subcategories"] = bson.M{"$in": subcategories}
	}

	return filter
}

// decrementFilter matches the product only while it still holds at least qty
// units, which makes the $inc a single-document conditional update.
func decrementFilter(id primitive.ObjectID, qty int) bson.M {
	filter := activeFilter(id)
	filter["stock"] = bson.M{"$gte": qty}
	return filter
}

func patchUpdate(patch Patch) bson.M {
	set := bson.M{"updated_at": patch.UpdatedAt}

	if patch.Title != nil {
		set["title"] = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		set["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.OnSale != nil {
		set["on_sale"] = *patch.OnSale
	}
	if patch.SetSalePrice {
		if patch.SalePrice == nil {
			set["sale_price"] = nil
		} else {
			set["sale_price"] = *patch.SalePrice
		}
	}
	if patch.Stock != nil {
		set["stock"] = *patch.Stock
	}
	if patch.Category != nil {
		set["category"] = strings.TrimSpace(*patch.Category)
	}
	if patch.Subcategories != nil {
		set["subcategories"] = models.StringList(*patch.Subcategories)
	}
	if patch.Images != nil {
		set["images"] = *patch.Images
	}

	return bson.M{"$set": set}
}

func (r *MongoRepository) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	var product models.Product
	err := r.coll.FindOne(ctx, activeFilter(id)).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	return product, nil
}

func (r *MongoRepository) List(ctx context.Context, params ListParams) ([]models.Product, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(params.Offset).
		SetLimit(params.Limit)

	cursor, err := r.coll.Find(ctx, listFilter(params), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *MongoRepository) Insert(ctx context.Context, product *models.Product) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, product)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		product.ID = id
	}
	return nil
}

func (r *MongoRepository) Update(ctx context.Context, id primitive.ObjectID, patch Patch) (bool, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, activeFilter(id), patchUpdate(patch))
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoRepository) SoftDelete(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, activeFilter(id), bson.M{"$set": bson.M{
		"is_deleted": true,
		"deleted_at": at,
		"updated_at": at,
	}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoRepository) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, decrementFilter(id, qty), bson.M{"$inc": bson.M{"stock": -qty}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *MongoRepository) SetRating(ctx context.Context, id primitive.ObjectID, rating float64, count int, at time.Time) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"rating":       rating,
		"review_count": count,
		"updated_at":   at,
	}})
	return err
}

func (r *MongoRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	return r.coll.CountDocuments(ctx, bson.M{"is_deleted": bson.M{"$ne": true}})
}
