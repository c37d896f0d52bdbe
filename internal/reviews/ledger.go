package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/ids"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/models"
)

// Catalog is the product side of a review: existence checks and the
// aggregate rating stored on the product.
type Catalog interface {
	Product(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	RecomputeRating(ctx context.Context, id primitive.ObjectID) error
}

type CreateInput struct {
	ProductID string
	Author    string
	Rating    int
	Comment   string
}

type Stats struct {
	TotalReviews       int         `json:"total_reviews"`
	AverageRating      float64     `json:"average_rating"`
	RatingDistribution map[int]int `json:"rating_distribution"`
}

// Ledger owns reviews and keeps the product's aggregate rating in step.
type Ledger struct {
	repo    Repository
	catalog Catalog
	metrics *metrics.CheckoutMetrics
	log     *logger.Logger
	now     func() time.Time
}

func NewLedger(repo Repository, catalog Catalog, m *metrics.CheckoutMetrics, log *logger.Logger) (*Ledger, error) {
	if repo == nil {
		return nil, errors.New("reviews: repository is required")
	}
	if catalog == nil {
		return nil, errors.New("reviews: catalog is required")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{
		repo:    repo,
		catalog: catalog,
		metrics: m,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

func (l *Ledger) Create(ctx context.Context, in CreateInput) (models.Review, error) {
	productID, err := ids.Parse("product_id", in.ProductID)
	if err != nil {
		return models.Review{}, err
	}
	if in.Rating < 1 || in.Rating > 5 {
		return models.Review{}, apperr.InvalidInput("rating", "rating must be between 1 and 5")
	}
	if _, err := l.catalog.Product(ctx, productID); err != nil {
		return models.Review{}, err
	}

	author := strings.TrimSpace(in.Author)
	if author == "" {
		author = models.AnonymousAuthor
	}
	review := models.Review{
		ProductID: productID,
		Author:    author,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
		CreatedAt: l.now(),
	}
	if err := l.repo.Insert(ctx, &review); err != nil {
		return models.Review{}, apperr.Upstream(err, "insert review")
	}

	l.recompute(ctx, productID)
	return review, nil
}

func (l *Ledger) Delete(ctx context.Context, rawID string) error {
	id, err := ids.Parse("review_id", rawID)
	if err != nil {
		return err
	}
	review, err := l.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("review", id.Hex())
	}
	if err != nil {
		return apperr.Upstream(err, "load review")
	}

	deleted, err := l.repo.Delete(ctx, id)
	if err != nil {
		return apperr.Upstream(err, "delete review")
	}
	if !deleted {
		return apperr.NotFound("review", id.Hex())
	}

	l.recompute(ctx, review.ProductID)
	return nil
}

func (l *Ledger) ListByProduct(ctx context.Context, rawProductID string) ([]models.Review, error) {
	productID, err := ids.Parse("product_id", rawProductID)
	if err != nil {
		return nil, err
	}
	reviews, err := l.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, apperr.Upstream(err, "list reviews")
	}
	return reviews, nil
}

func (l *Ledger) ListAll(ctx context.Context) ([]models.Review, error) {
	reviews, err := l.repo.ListAll(ctx)
	if err != nil {
		return nil, apperr.Upstream(err, "list reviews")
	}
	return reviews, nil
}

// Stats reports the review count, the mean rating to one decimal and a count
// per rating value 1..5.
func (l *Ledger) Stats(ctx context.Context, rawProductID string) (Stats, error) {
	productID, err := ids.Parse("product_id", rawProductID)
	if err != nil {
		return Stats{}, err
	}
	counts, err := l.repo.Distribution(ctx, productID)
	if err != nil {
		return Stats{}, apperr.Upstream(err, "aggregate reviews")
	}
	return buildStats(counts), nil
}

func buildStats(counts map[int]int) Stats {
	stats := Stats{RatingDistribution: make(map[int]int, 5)}
	for rating := 1; rating <= 5; rating++ {
		stats.RatingDistribution[rating] = 0
	}

	sum := decimal.Zero
	for rating, count := range counts {
		stats.RatingDistribution[rating] = count
		stats.TotalReviews += count
		sum = sum.Add(decimal.NewFromInt(int64(rating * count)))
	}
	if stats.TotalReviews > 0 {
		stats.AverageRating = sum.Div(decimal.NewFromInt(int64(stats.TotalReviews))).Round(1).InexactFloat64()
	}
	return stats
}

// recompute refreshes the product rating. Failures, panics included, are
// logged and counted; the review write stands.
func (l *Ledger) recompute(ctx context.Context, productID primitive.ObjectID) {
	err := l.safeRecompute(ctx, productID)
	l.metrics.ObserveRatingRecompute(err)
	if err != nil {
		l.log.Error(l.log.WithField(ctx, "product_id", productID.Hex()), "rating recompute failed", err)
	}
}

func (l *Ledger) safeRecompute(ctx context.Context, productID primitive.ObjectID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("rating recompute panicked: %v", r)
		}
	}()
	return l.catalog.RecomputeRating(ctx, productID)
}
