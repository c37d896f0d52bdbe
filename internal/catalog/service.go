package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/ids"
	"storefront/internal/logger"
	"storefront/internal/models"
)

// RatingSource returns every rating recorded for a product.
type RatingSource interface {
	RatingsForProduct(ctx context.Context, productID primitive.ObjectID) ([]int, error)
}

// Uploader pushes image bytes to the asset host and returns a public URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, data []byte) (string, error)
}

type ImageFile struct {
	Filename string
	Data     []byte
}

type CreateInput struct {
	Title         string
	Description   string
	Price         float64
	Stock         int
	Category      string
	Subcategories []string
	Images        []string
}

type UpdateInput struct {
	Title         *string
	Description   *string
	Price         *float64
	OnSale        *bool
	SalePrice     *float64
	Stock         *int
	Category      *string
	Subcategories *[]string
	Images        *[]string
}

type ServiceParams struct {
	Repo     Repository
	Ratings  RatingSource
	Uploader Uploader
	Logger   *logger.Logger
	Now      func() time.Time
}

// Service owns product records: pricing, stock and aggregate rating.
type Service struct {
	repo     Repository
	ratings  RatingSource
	uploader Uploader
	log      *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("catalog: product repository is required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		repo:     params.Repo,
		ratings:  params.Ratings,
		uploader: params.Uploader,
		log:      params.Logger,
		now:      params.Now,
	}, nil
}

// Get looks a product up by its hex id.
func (s *Service) Get(ctx context.Context, rawID string) (models.Product, error) {
	id, err := ids.Parse("product_id", rawID)
	if err != nil {
		return models.Product{}, err
	}
	return s.Product(ctx, id)
}

// Product fails with NotFound when the product is absent or soft-deleted.
func (s *Service) Product(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return models.Product{}, apperr.NotFound("product", id.Hex())
	}
	if err != nil {
		return models.Product{}, apperr.Upstream(err, "load product")
	}
	product.InStock = product.Stock > 0
	return product, nil
}

func (s *Service) List(ctx context.Context, params ListParams) ([]models.Product, error) {
	products, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, apperr.Upstream(err, "list products")
	}
	for i := range products {
		products[i].InStock = products[i].Stock > 0
	}
	return products, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperr.Upstream(err, "count products")
	}
	return count, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (models.Product, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Product{}, apperr.InvalidInput("title", "title required")
	}
	if in.Price < 0 {
		return models.Product{}, apperr.InvalidInput("price", "price must be zero or greater")
	}
	if in.Stock < 0 {
		return models.Product{}, apperr.InvalidInput("stock", "stock must be zero or greater")
	}

	now := s.now()
	images := in.Images
	if images == nil {
		images = []string{}
	}
	product := models.Product{
		Title:         title,
		Description:   strings.TrimSpace(in.Description),
		Price:         in.Price,
		OnSale:        false,
		Stock:         in.Stock,
		Category:      strings.TrimSpace(in.Category),
		Subcategories: normalizeValues(in.Subcategories),
		Images:        images,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Insert(ctx, &product); err != nil {
		return models.Product{}, apperr.Upstream(err, "insert product")
	}
	product.InStock = product.Stock > 0
	s.log.Info(s.log.WithField(ctx, "product_id", product.ID.Hex()), "product created")
	return product, nil
}

// ImageRemover is implemented by uploaders that can delete what they stored.
type ImageRemover interface {
	Delete(ctx context.Context, url string) error
}

// CreateWithImages uploads every image before inserting the product. Any
// upload failure aborts the create and removes images already stored.
func (s *Service) CreateWithImages(ctx context.Context, in CreateInput, files []ImageFile) (models.Product, error) {
	if len(files) > 0 && s.uploader == nil {
		return models.Product{}, apperr.New(apperr.CodeUpstreamFailure, "image upload is not configured")
	}
	uploaded := make([]string, 0, len(files))
	for _, file := range files {
		url, err := s.uploader.Upload(ctx, file.Filename, file.Data)
		if err != nil {
			s.discardImages(ctx, uploaded)
			if apperr.Is(err, apperr.CodeInvalidInput) {
				return models.Product{}, err
			}
			s.log.Error(s.log.WithField(ctx, "filename", file.Filename), "image upload failed", err)
			return models.Product{}, apperr.Upstream(err, "image upload failed")
		}
		uploaded = append(uploaded, url)
	}
	in.Images = append(in.Images, uploaded...)

	product, err := s.Create(ctx, in)
	if err != nil {
		s.discardImages(ctx, uploaded)
		return models.Product{}, err
	}
	return product, nil
}

func (s *Service) discardImages(ctx context.Context, urls []string) {
	remover, ok := s.uploader.(ImageRemover)
	if !ok {
		return
	}
	for _, url := range urls {
		if err := remover.Delete(ctx, url); err != nil {
			s.log.Warn(s.log.WithField(ctx, "image", url), "image cleanup failed", err)
		}
	}
}

func (s *Service) Update(ctx context.Context, rawID string, in UpdateInput) (models.Product, error) {
	id, err := ids.Parse("product_id", rawID)
	if err != nil {
		return models.Product{}, err
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return models.Product{}, apperr.InvalidInput("title", "title required")
	}
	if in.Price != nil && *in.Price < 0 {
		return models.Product{}, apperr.InvalidInput("price", "price must be zero or greater")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return models.Product{}, apperr.InvalidInput("stock", "stock must be zero or greater")
	}

	patch := Patch{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		Category:    in.Category,
		Images:      in.Images,
		UpdatedAt:   s.now(),
	}
	if in.Subcategories != nil {
		normalized := []string(normalizeValues(*in.Subcategories))
		patch.Subcategories = &normalized
	}

	if in.Price != nil || in.OnSale != nil || in.SalePrice != nil {
		existing, err := s.Product(ctx, id)
		if err != nil {
			return models.Product{}, err
		}
		sale, err := resolveSaleUpdate(existing, saleUpdateInput{
			Price:     in.Price,
			OnSale:    in.OnSale,
			SalePrice: in.SalePrice,
		})
		if err != nil {
			return models.Product{}, apperr.InvalidInput("sale_price", err.Error())
		}
		if sale.SetOnSale {
			onSale := sale.OnSale
			patch.OnSale = &onSale
		}
		if sale.SetSalePrice {
			patch.SetSalePrice = true
			patch.SalePrice = sale.SalePrice
		}
	}

	if patch.empty() {
		return models.Product{}, apperr.InvalidInput("body", "no fields to update")
	}

	matched, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return models.Product{}, apperr.Upstream(err, "update product")
	}
	if !matched {
		return models.Product{}, apperr.NotFound("product", id.Hex())
	}
	return s.Product(ctx, id)
}

// Delete soft-deletes the product. Orders keep their own snapshot so history
// stays intact.
func (s *Service) Delete(ctx context.Context, rawID string) error {
	id, err := ids.Parse("product_id", rawID)
	if err != nil {
		return err
	}
	matched, err := s.repo.SoftDelete(ctx, id, s.now())
	if err != nil {
		return apperr.Upstream(err, "delete product")
	}
	if !matched {
		return apperr.NotFound("product", id.Hex())
	}
	return nil
}

func (s *Service) ResolveUnitPrice(ctx context.Context, id primitive.ObjectID) (float64, error) {
	product, err := s.Product(ctx, id)
	if err != nil {
		return 0, err
	}
	return UnitPrice(product), nil
}

// DecrementStock applies only when the product still holds qty units and
// reports whether it did.
func (s *Service) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error) {
	if qty <= 0 {
		return false, apperr.InvalidInput("quantity", "quantity must be greater than zero")
	}
	ok, err := s.repo.DecrementStock(ctx, id, qty)
	if err != nil {
		return false, apperr.Upstream(err, "decrement stock")
	}
	return ok, nil
}

// RecomputeRating stores mean(ratings) rounded to one decimal and the review
// count, or 0/0 once no reviews remain.
func (s *Service) RecomputeRating(ctx context.Context, id primitive.ObjectID) error {
	if s.ratings == nil {
		return errors.New("catalog: rating source not configured")
	}
	ratings, err := s.ratings.RatingsForProduct(ctx, id)
	if err != nil {
		return apperr.Upstream(err, "load ratings")
	}
	average := AverageRating(ratings)
	if err := s.repo.SetRating(ctx, id, average, len(ratings), s.now()); err != nil {
		return apperr.Upstream(err, "store rating")
	}
	return nil
}

// AverageRating is the mean rating rounded to one decimal place.
func AverageRating(ratings []int) float64 {
	if len(ratings) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, rating := range ratings {
		sum = sum.Add(decimal.NewFromInt(int64(rating)))
	}
	return sum.Div(decimal.NewFromInt(int64(len(ratings)))).Round(1).InexactFloat64()
}

func normalizeValues(values []string) models.StringList {
	seen := map[string]struct{}{}
	out := make(models.StringList, 0, len(values))
	for _, v := range values {
		name := strings.TrimSpace(v)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
