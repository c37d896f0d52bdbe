// Package checkout turns a cart-like request into a persisted order.
//
// The pipeline is a sequence of independently committing steps. Persisting
// the order is the commit point: everything before it is read-only, and
// everything after it (profile save, stock decrement) is best-effort and never
// undoes or fails the order.
package checkout

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/catalog"
	"storefront/internal/customers"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/models"
)

// Catalog resolves products and applies stock decrements.
type Catalog interface {
	Product(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error)
}

// OrderWriter persists orders.
type OrderWriter interface {
	Create(ctx context.Context, order *models.Order) error
}

// Profiles saves and resolves guest profiles.
type Profiles interface {
	UpsertByEmail(ctx context.Context, profile customers.Profile) (string, error)
	Lookup(ctx context.Context, token string) (models.Customer, error)
}

// NumberSource produces order numbers.
type NumberSource interface {
	Next() (string, error)
}

type LineItem struct {
	ProductID string
	Quantity  int
}

type Contact struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type Request struct {
	Items       []LineItem
	Customer    Contact
	SaveProfile bool
	// CustomerToken, when it resolves, fills contact fields left blank.
	CustomerToken string
}

type Receipt struct {
	OrderNumber   string             `json:"order_number"`
	Status        models.OrderStatus `json:"status"`
	Total         float64            `json:"total"`
	CreatedAt     time.Time          `json:"created_at"`
	CustomerToken string             `json:"customer_token,omitempty"`
}

type Params struct {
	Catalog  Catalog
	Orders   OrderWriter
	Profiles Profiles
	Numbers  NumberSource
	Metrics  *metrics.CheckoutMetrics
	Logger   *logger.Logger
	Now      func() time.Time
}

type Pipeline struct {
	catalog  Catalog
	orders   OrderWriter
	profiles Profiles
	numbers  NumberSource
	metrics  *metrics.CheckoutMetrics
	log      *logger.Logger
	now      func() time.Time
}

func NewPipeline(params Params) (*Pipeline, error) {
	if params.Catalog == nil {
		return nil, errors.New("checkout: catalog is required")
	}
	if params.Orders == nil {
		return nil, errors.New("checkout: order writer is required")
	}
	if params.Numbers == nil {
		return nil, errors.New("checkout: order number source is required")
	}
	if params.Logger == nil {
		params.Logger = logger.Nop()
	}
	if params.Now == nil {
		params.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Pipeline{
		catalog:  params.Catalog,
		orders:   params.Orders,
		profiles: params.Profiles,
		numbers:  params.Numbers,
		metrics:  params.Metrics,
		log:      params.Logger,
		now:      params.Now,
	}, nil
}

type validLine struct {
	productID primitive.ObjectID
	quantity  int
}

// Checkout runs the pipeline. Resubmitting the same request creates a second
// order. Caller cancellation is ignored once the pipeline starts; each store
// call carries its own timeout.
func (p *Pipeline) Checkout(ctx context.Context, req Request) (Receipt, error) {
	ctx = context.WithoutCancel(ctx)

	lines, err := validateLines(req.Items)
	if err != nil {
		p.metrics.IncFailure(metrics.ReasonInvalidInput)
		return Receipt{}, err
	}

	contact := p.prefill(ctx, req.CustomerToken, req.Customer)

	items, err := p.snapshot(ctx, lines)
	if err != nil {
		if apperr.Is(err, apperr.CodeNotFound) {
			p.metrics.IncFailure(metrics.ReasonNotFound)
		} else {
			p.metrics.IncFailure(metrics.ReasonPersist)
		}
		return Receipt{}, err
	}

	subtotal := Subtotal(items)
	number, err := p.numbers.Next()
	if err != nil {
		p.metrics.IncFailure(metrics.ReasonPersist)
		return Receipt{}, apperr.Wrap(apperr.CodeInternal, err, "generate order number")
	}

	order := models.Order{
		OrderNumber: number,
		Items:       items,
		Subtotal:    subtotal,
		Total:       subtotal,
		Customer: models.OrderCustomer{
			Name:    contact.Name,
			Email:   contact.Email,
			Phone:   contact.Phone,
			Address: contact.Address,
		},
		Status:    models.OrderStatusPending,
		CreatedAt: p.now(),
	}
	if err := p.orders.Create(ctx, &order); err != nil {
		p.metrics.IncFailure(metrics.ReasonPersist)
		p.log.Error(p.log.WithField(ctx, "order_number", number), "order persist failed", err)
		return Receipt{}, err
	}
	p.metrics.IncOrderCreated()

	orderCtx := p.log.WithField(ctx, "order_number", order.OrderNumber)
	p.log.Info(orderCtx, "order created")

	receipt := Receipt{
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Total:       order.Total,
		CreatedAt:   order.CreatedAt,
	}
	if req.SaveProfile {
		receipt.CustomerToken = p.saveProfile(orderCtx, contact)
	}
	p.decrementStock(orderCtx, order.Items)

	return receipt, nil
}

// validateLines checks every line's shape without touching the store.
func validateLines(items []LineItem) ([]validLine, error) {
	if len(items) == 0 {
		return nil, apperr.InvalidInput("items", "at least one item is required")
	}
	lines := make([]validLine, 0, len(items))
	for i, item := range items {
		raw := strings.TrimSpace(item.ProductID)
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, apperr.InvalidInput("product_id", "invalid product id: "+raw).With("index", i)
		}
		if item.Quantity <= 0 {
			return nil, apperr.InvalidInput("quantity", "quantity must be a positive integer").
				With("index", i).
				With("product_id", raw)
		}
		lines = append(lines, validLine{productID: id, quantity: item.Quantity})
	}
	return lines, nil
}

// snapshot loads every product before anything is written and captures the
// price in effect right now.
func (p *Pipeline) snapshot(ctx context.Context, lines []validLine) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, err := p.catalog.Product(ctx, line.productID)
		if err != nil {
			return nil, err
		}
		items = append(items, models.OrderItem{
			ProductID: line.productID,
			Title:     product.Title,
			UnitPrice: catalog.UnitPrice(product),
			Quantity:  line.quantity,
		})
	}
	return items, nil
}

// Subtotal is the sum of unit price times quantity over the items.
func Subtotal(items []models.OrderItem) float64 {
	sum := decimal.Zero
	for _, item := range items {
		line := decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromInt(int64(item.Quantity)))
		sum = sum.Add(line)
	}
	return sum.InexactFloat64()
}

func (p *Pipeline) prefill(ctx context.Context, token string, contact Contact) Contact {
	token = strings.TrimSpace(token)
	if token == "" || p.profiles == nil {
		return contact
	}
	saved, err := p.profiles.Lookup(ctx, token)
	if err != nil {
		p.log.Warn(ctx, "customer token did not resolve; using submitted contact", err)
		return contact
	}
	if strings.TrimSpace(contact.Name) == "" {
		contact.Name = saved.Name
	}
	if strings.TrimSpace(contact.Email) == "" {
		contact.Email = saved.Email
	}
	if strings.TrimSpace(contact.Phone) == "" {
		contact.Phone = saved.Phone
	}
	if strings.TrimSpace(contact.Address) == "" {
		contact.Address = saved.Address
	}
	return contact
}

// saveProfile returns the new token, or "" when the save failed. A failure
// here never affects the order.
func (p *Pipeline) saveProfile(ctx context.Context, contact Contact) string {
	if p.profiles == nil {
		return ""
	}
	token, err := p.profiles.UpsertByEmail(ctx, customers.Profile{
		Name:    contact.Name,
		Email:   contact.Email,
		Phone:   contact.Phone,
		Address: contact.Address,
	})
	if err != nil {
		p.metrics.IncProfileFailure()
		p.log.Warn(ctx, "customer profile save failed", err)
		return ""
	}
	return token
}

// decrementStock attempts one conditional decrement per line. Misses and
// errors are logged and counted; the order stands either way.
func (p *Pipeline) decrementStock(ctx context.Context, items []models.OrderItem) {
	for _, item := range items {
		ok, err := p.catalog.DecrementStock(ctx, item.ProductID, item.Quantity)
		if err != nil || !ok {
			p.metrics.IncDecrementMiss()
			p.log.Warn(p.log.WithFields(ctx, map[string]any{
				"product_id": item.ProductID.Hex(),
				"quantity":   item.Quantity,
			}), "stock decrement not applied", err)
		}
	}
}
