package wishlist

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/ids"
	"storefront/internal/models"
)

type Catalog interface {
	Product(ctx context.Context, id primitive.ObjectID) (models.Product, error)
}

// View lists the product ids an owner has saved, oldest first.
type View struct {
	Owner string   `json:"owner"`
	Items []string `json:"items"`
}

type Service struct {
	repo    Repository
	catalog Catalog
	now     func() time.Time
}

func NewService(repo Repository, products Catalog) (*Service, error) {
	if repo == nil {
		return nil, errors.New("wishlist: repository is required")
	}
	if products == nil {
		return nil, errors.New("wishlist: catalog is required")
	}
	return &Service{repo: repo, catalog: products, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Add saves the product for the owner. Adding a product already listed
// changes nothing.
func (s *Service) Add(ctx context.Context, owner, rawProductID string) (View, error) {
	owner, id, err := parseArgs(owner, rawProductID)
	if err != nil {
		return View{}, err
	}
	if _, err := s.catalog.Product(ctx, id); err != nil {
		return View{}, err
	}
	if err := s.repo.Add(ctx, owner, models.WishlistItem{ProductID: id, AddedAt: s.now()}); err != nil {
		return View{}, apperr.Upstream(err, "add wishlist item")
	}
	return s.Get(ctx, owner)
}

// Remove drops the product from the owner's list; absent items are ignored.
func (s *Service) Remove(ctx context.Context, owner, rawProductID string) (View, error) {
	owner, id, err := parseArgs(owner, rawProductID)
	if err != nil {
		return View{}, err
	}
	if err := s.repo.Remove(ctx, owner, id); err != nil {
		return View{}, apperr.Upstream(err, "remove wishlist item")
	}
	return s.Get(ctx, owner)
}

func (s *Service) Get(ctx context.Context, owner string) (View, error) {
	owner = strings.TrimSpace(owner)
	view := View{Owner: owner, Items: []string{}}
	list, err := s.repo.Find(ctx, owner)
	if errors.Is(err, ErrNotFound) {
		return view, nil
	}
	if err != nil {
		return View{}, apperr.Upstream(err, "load wishlist")
	}
	for _, item := range list.Items {
		view.Items = append(view.Items, item.ProductID.Hex())
	}
	return view, nil
}

func parseArgs(owner, rawProductID string) (string, primitive.ObjectID, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "", primitive.NilObjectID, apperr.InvalidInput("owner", "owner is required")
	}
	id, err := ids.Parse("product_id", rawProductID)
	if err != nil {
		return "", primitive.NilObjectID, err
	}
	return owner, id, nil
}
