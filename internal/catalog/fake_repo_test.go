package catalog

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

type memoryRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]models.Product
	failList error
}

func newMemoryRepo(products ...models.Product) *memoryRepo {
	repo := &memoryRepo{products: make(map[primitive.ObjectID]models.Product)}
	for _, p := range products {
		if p.ID.IsZero() {
			p.ID = primitive.NewObjectID()
		}
		repo.products[p.ID] = p
	}
	return repo
}

func (r *memoryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.IsDeleted {
		return models.Product{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) List(ctx context.Context, params ListParams) ([]models.Product, error) {
	if r.failList != nil {
		return nil, r.failList
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if !p.IsDeleted {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memoryRepo) Insert(ctx context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	product.ID = primitive.NewObjectID()
	r.products[product.ID] = *product
	return nil
}

func (r *memoryRepo) Update(ctx context.Context, id primitive.ObjectID, patch Patch) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.IsDeleted {
		return false, nil
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.OnSale != nil {
		p.OnSale = *patch.OnSale
	}
	if patch.SetSalePrice {
		p.SalePrice = patch.SalePrice
	}
	if patch.Stock != nil {
		p.Stock = *patch.Stock
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Subcategories != nil {
		p.Subcategories = *patch.Subcategories
	}
	if patch.Images != nil {
		p.Images = *patch.Images
	}
	p.UpdatedAt = patch.UpdatedAt
	r.products[id] = p
	return true, nil
}

func (r *memoryRepo) SoftDelete(ctx context.Context, id primitive.ObjectID, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.IsDeleted {
		return false, nil
	}
	p.IsDeleted = true
	p.DeletedAt = &at
	r.products[id] = p
	return true, nil
}

func (r *memoryRepo) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok || p.IsDeleted || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	r.products[id] = p
	return true, nil
}

func (r *memoryRepo) SetRating(ctx context.Context, id primitive.ObjectID, rating float64, count int, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.products[id]
	p.Rating = rating
	p.ReviewCount = count
	r.products[id] = p
	return nil
}

func (r *memoryRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.products {
		if !p.IsDeleted {
			n++
		}
	}
	return n, nil
}

type staticRatings map[primitive.ObjectID][]int

func (s staticRatings) RatingsForProduct(ctx context.Context, id primitive.ObjectID) ([]int, error) {
	return s[id], nil
}

type failingUploader struct{ err error }

func (u failingUploader) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	return "", u.err
}

type recordingUploader struct{ names []string }

func (u *recordingUploader) Upload(ctx context.Context, filename string, data []byte) (string, error) {
	u.names = append(u.names, filename)
	return "https://cdn.example.com/" + filename, nil
}
