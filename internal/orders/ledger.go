package orders

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/logger"
	"storefront/internal/models"
)

// DefaultListLimit is the number of orders returned by List.
const DefaultListLimit = 50

// Ledger owns persisted orders. Line items are written once; only the status
// changes afterwards.
type Ledger struct {
	repo Repository
	log  *logger.Logger
	now  func() time.Time
}

func NewLedger(repo Repository, log *logger.Logger) (*Ledger, error) {
	if repo == nil {
		return nil, errors.New("orders: repository is required")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Ledger{
		repo: repo,
		log:  log,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Create persists a new order. This is the commit point of a checkout.
func (l *Ledger) Create(ctx context.Context, order *models.Order) error {
	if order == nil || len(order.Items) == 0 {
		return apperr.InvalidInput("items", "order has no items")
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}
	if err := l.repo.Insert(ctx, order); err != nil {
		if errors.Is(err, ErrDuplicateNumber) {
			return apperr.Upstream(err, "order number collision").With("order_number", order.OrderNumber)
		}
		return apperr.Upstream(err, "insert order")
	}
	return nil
}

// List returns the newest orders first.
func (l *Ledger) List(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	orders, err := l.repo.List(ctx, int64(limit))
	if err != nil {
		return nil, apperr.Upstream(err, "list orders")
	}
	return orders, nil
}

// Get treats a malformed id the same as a missing order.
func (l *Ledger) Get(ctx context.Context, rawID string) (models.Order, error) {
	id, err := parseOrderID(rawID)
	if err != nil {
		return models.Order{}, err
	}
	return l.load(ctx, id)
}

// UpdateStatus sets any known status regardless of the current one. Setting
// the current status again succeeds.
func (l *Ledger) UpdateStatus(ctx context.Context, rawID string, status models.OrderStatus) (models.Order, error) {
	status = models.OrderStatus(strings.TrimSpace(string(status)))
	if !status.Valid() {
		return models.Order{}, apperr.InvalidInput("status", "unknown order status: "+string(status)).
			With("allowed", models.OrderStatuses)
	}
	id, err := parseOrderID(rawID)
	if err != nil {
		return models.Order{}, err
	}

	matched, err := l.repo.SetStatus(ctx, id, status, l.now())
	if err != nil {
		return models.Order{}, apperr.Upstream(err, "update order status")
	}
	if !matched {
		return models.Order{}, apperr.NotFound("order", id.Hex())
	}

	l.log.Info(l.log.WithFields(ctx, map[string]any{
		"order_id": id.Hex(),
		"status":   string(status),
	}), "order status updated")
	return l.load(ctx, id)
}

func (l *Ledger) Count(ctx context.Context) (int64, error) {
	count, err := l.repo.Count(ctx)
	if err != nil {
		return 0, apperr.Upstream(err, "count orders")
	}
	return count, nil
}

// Since returns orders created at or after from; a zero time returns all.
func (l *Ledger) Since(ctx context.Context, from time.Time) ([]models.Order, error) {
	orders, err := l.repo.Since(ctx, from)
	if err != nil {
		return nil, apperr.Upstream(err, "load orders")
	}
	return orders, nil
}

func (l *Ledger) load(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	order, err := l.repo.FindByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return models.Order{}, apperr.NotFound("order", id.Hex())
	}
	if err != nil {
		return models.Order{}, apperr.Upstream(err, "load order")
	}
	return order, nil
}

func parseOrderID(raw string) (primitive.ObjectID, error) {
	value := strings.TrimSpace(raw)
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, apperr.NotFound("order", value)
	}
	return id, nil
}
