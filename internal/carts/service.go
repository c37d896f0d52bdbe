package carts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/catalog"
	"storefront/internal/ids"
	"storefront/internal/models"
)

type Catalog interface {
	Product(ctx context.Context, id primitive.ObjectID) (models.Product, error)
}

type Line struct {
	ProductID string
	Quantity  int
}

type ItemView struct {
	ProductID  string  `json:"product_id"`
	Quantity   int     `json:"quantity"`
	PriceAtAdd float64 `json:"price_at_add"`
}

// View is the cart as returned to clients, with derived totals.
type View struct {
	SessionID  string     `json:"session_id"`
	Items      []ItemView `json:"items"`
	TotalItems int        `json:"total_items"`
	Subtotal   float64    `json:"subtotal"`
}

type Service struct {
	repo    Repository
	catalog Catalog
	now     func() time.Time
}

func NewService(repo Repository, products Catalog) (*Service, error) {
	if repo == nil {
		return nil, errors.New("carts: repository is required")
	}
	if products == nil {
		return nil, errors.New("carts: catalog is required")
	}
	return &Service{repo: repo, catalog: products, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Upsert replaces the session's items. Each product must exist; its current
// unit price is stored with the line.
func (s *Service) Upsert(ctx context.Context, sessionID string, lines []Line) (View, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return View{}, apperr.InvalidInput("session_id", "session_id is required")
	}

	items := make([]models.CartItem, 0, len(lines))
	for _, line := range lines {
		id, err := ids.Parse("product_id", line.ProductID)
		if err != nil {
			return View{}, err
		}
		if line.Quantity <= 0 {
			return View{}, apperr.InvalidInput("quantity", "quantity must be a positive integer").
				With("product_id", id.Hex())
		}
		product, err := s.catalog.Product(ctx, id)
		if err != nil {
			return View{}, err
		}
		items = append(items, models.CartItem{
			ProductID:  id,
			Quantity:   line.Quantity,
			PriceAtAdd: catalog.UnitPrice(product),
		})
	}

	if err := s.repo.Replace(ctx, sessionID, items, s.now()); err != nil {
		return View{}, apperr.Upstream(err, "save cart")
	}
	return viewOf(sessionID, items), nil
}

// Get returns an empty cart for an unknown session.
func (s *Service) Get(ctx context.Context, sessionID string) (View, error) {
	sessionID = strings.TrimSpace(sessionID)
	cart, err := s.repo.Find(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return viewOf(sessionID, nil), nil
	}
	if err != nil {
		return View{}, apperr.Upstream(err, "load cart")
	}
	return viewOf(sessionID, cart.Items), nil
}

func viewOf(sessionID string, items []models.CartItem) View {
	view := View{SessionID: sessionID, Items: make([]ItemView, 0, len(items))}
	subtotal := decimal.Zero
	for _, item := range items {
		view.Items = append(view.Items, ItemView{
			ProductID:  item.ProductID.Hex(),
			Quantity:   item.Quantity,
			PriceAtAdd: item.PriceAtAdd,
		})
		view.TotalItems += item.Quantity
		subtotal = subtotal.Add(decimal.NewFromFloat(item.PriceAtAdd).Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	view.Subtotal = subtotal.InexactFloat64()
	return view
}
