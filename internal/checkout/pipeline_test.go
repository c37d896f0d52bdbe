package checkout

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/customers"
	"storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/orders"
)

type fakeCatalog struct {
	mu          sync.Mutex
	products    map[primitive.ObjectID]models.Product
	lookups     int
	decrementFn func(id primitive.ObjectID, qty int) (bool, error)
}

func newFakeCatalog(products ...models.Product) *fakeCatalog {
	c := &fakeCatalog{products: map[primitive.ObjectID]models.Product{}}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) Product(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	if err := ctx.Err(); err != nil {
		return models.Product{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lookups++
	p, ok := c.products[id]
	if !ok {
		return models.Product{}, apperr.NotFound("product", id.Hex())
	}
	return p, nil
}

func (c *fakeCatalog) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if c.decrementFn != nil {
		return c.decrementFn(id, qty)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.products[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	c.products[id] = p
	return true, nil
}

func (c *fakeCatalog) stock(id primitive.ObjectID) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.products[id].Stock
}

type fakeOrders struct {
	mu       sync.Mutex
	orders   []models.Order
	err      error
	onCommit func()
}

func (o *fakeOrders) Create(ctx context.Context, order *models.Order) error {
	if o.err != nil {
		return apperr.Upstream(o.err, "insert order")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	order.ID = primitive.NewObjectID()
	o.orders = append(o.orders, *order)
	o.mu.Unlock()
	if o.onCommit != nil {
		o.onCommit()
	}
	return nil
}

func (o *fakeOrders) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.orders)
}

type customerStore struct {
	mu      sync.Mutex
	byEmail map[string]models.Customer
	err     error
}

func (s *customerStore) UpsertByEmail(ctx context.Context, profile models.Customer) error {
	if s.err != nil {
		return s.err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEmail[profile.Email] = profile
	return nil
}

func (s *customerStore) FindByToken(ctx context.Context, token string) (models.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.byEmail {
		if c.Token == token {
			return c, nil
		}
	}
	return models.Customer{}, customers.ErrNotFound
}

func (s *customerStore) Count(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.byEmail)), nil
}

type harness struct {
	pipeline *Pipeline
	catalog  *fakeCatalog
	orders   *fakeOrders
	store    *customerStore
	registry *prometheus.Registry
	logs     *bytes.Buffer
}

func newHarness(t *testing.T, products ...models.Product) *harness {
	t.Helper()
	h := &harness{
		catalog:  newFakeCatalog(products...),
		orders:   &fakeOrders{},
		store:    &customerStore{byEmail: map[string]models.Customer{}},
		registry: prometheus.NewRegistry(),
		logs:     &bytes.Buffer{},
	}
	log := logger.New(logger.Options{ServiceName: "test", Output: h.logs})
	directory, err := customers.NewDirectory(h.store, log)
	require.NoError(t, err)

	h.pipeline, err = NewPipeline(Params{
		Catalog:  h.catalog,
		Orders:   h.orders,
		Profiles: directory,
		Numbers:  orders.NumberGenerator{Now: func() time.Time { return time.Unix(1700000000, 0) }},
		Metrics:  metrics.NewCheckoutMetrics(h.registry),
		Logger:   log,
		Now:      func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	require.NoError(t, err)
	return h
}

func salePrice(v float64) *float64 { return &v }

func TestCheckoutUsesSalePriceAndDecrementsStock(t *testing.T) {
	product := models.Product{ID: primitive.NewObjectID(), Title: "Wool Coat", Price: 100, OnSale: true, SalePrice: salePrice(80), Stock: 5}
	h := newHarness(t, product)

	receipt, err := h.pipeline.Checkout(context.Background(), Request{
		Items:    []LineItem{{ProductID: product.ID.Hex(), Quantity: 2}},
		Customer: Contact{Name: "Ada", Email: "a@x.com"},
	})
	require.NoError(t, err)

	assert.Equal(t, 160.0, receipt.Total)
	assert.Equal(t, models.OrderStatusPending, receipt.Status)
	assert.Regexp(t, `^ORD-1700000000-[0-9a-f]{6}$`, receipt.OrderNumber)
	assert.Empty(t, receipt.CustomerToken)
	assert.Equal(t, 3, h.catalog.stock(product.ID))

	require.Equal(t, 1, h.orders.count())
	stored := h.orders.orders[0]
	assert.Equal(t, 160.0, stored.Subtotal)
	assert.Equal(t, stored.Subtotal, stored.Total)
	assert.Equal(t, "Wool Coat", stored.Items[0].Title)
	assert.Equal(t, 80.0, stored.Items[0].UnitPrice)
}

func TestCheckoutIgnoresStaleSalePrice(t *testing.T) {
	product := models.Product{ID: primitive.NewObjectID(), Title: "Ring", Price: 100, OnSale: false, SalePrice: salePrice(80), Stock: 5}
	h := newHarness(t, product)

	receipt, err := h.pipeline.Checkout(context.Background(), Request{
		Items: []LineItem{{ProductID: product.ID.Hex(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 100.0, receipt.Total)
}

func TestCheckoutSubtotalSumsLines(t *testing.T) {
	a := models.Product{ID: primitive.NewObjectID(), Title: "A", Price: 0.1, Stock: 10}
	b := models.Product{ID: primitive.NewObjectID(), Title: "B", Price: 19.99, Stock: 10}
	h := newHarness(t, a, b)

	receipt, err := h.pipeline.Checkout(context.Background(), Request{
		Items: []LineItem{
			{ProductID: a.ID.Hex(), Quantity: 3},
			{ProductID: b.ID.Hex(), Quantity: 2},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 40.28, receipt.Total)
}

func TestCheckoutUnknownProductCreatesNoOrder(t *testing.T) {
	known := models.Product{ID: primitive.NewObjectID(), Title: "A", Price: 10, Stock: 10}
	missing := primitive.NewObjectID()
	h := newHarness(t, known)

	_, err := h.pipeline.Checkout(context.Background(), Request{
		Items: []LineItem{
			{ProductID: known.ID.Hex(), Quantity: 1},
			{ProductID: missing.Hex(), Quantity: 1},
		},
	})
	typed := apperr.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperr.CodeNotFound, typed.Code())
	assert.Equal(t, missing.Hex(), typed.Details()["id"])
	assert.Zero(t, h.orders.count())
	assert.Equal(t, 10, h.catalog.stock(known.ID))
}

func TestCheckoutValidatesBeforeStoreAccess(t *testing.T) {
	product := models.Product{ID: primitive.NewObjectID(), Title: "A", Price: 10, Stock: 10}
	h := newHarness(t, product)

	cases := []struct {
		name  string
		items []LineItem
		field string
	}{
		{name: "no items", items: nil, field: "items"},
		{name: "malformed id", items: []LineItem{{ProductID: product.ID.Hex(), Quantity: 1}, {ProductID: "bogus", Quantity: 1}}, field: "product_id"},
		{name: "zero quantity", items: []LineItem{{ProductID: product.ID.Hex(), Quantity: 0}}, field: "quantity"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.pipeline.Checkout(context.Background(), Request{Items: tc.items})
			typed := apperr.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, apperr.CodeInvalidInput, typed.Code())
			assert.Equal(t, tc.field, typed.Details()["field"])
		})
	}
	assert.Zero(t, h.catalog.lookups)
	assert.Zero(t, h.orders.count())
}

func TestCheckoutSaveProfileTwiceKeepsOneProfile(t *testing.T) {
	product := models.Product{ID: primitive.NewObjectID(), Title: "A", Price: 10, Stock: 10}
	h := newHarness(t, product)
	req := Request{
		Items:       []LineItem{{ProductID: product.ID.Hex(), Quantity: 1}},
		Customer:    Contact{Name: "Ada", Email: "a@x.com"},
		SaveProfile: true,
	}

	first, err := h.pipeline.Checkout(context.Background(), req)
	require.NoError(t, err)
	second, err := h.pipeline.Checkout(context.Background(), req)
	require.NoError(t, err)

	require.NotEmpty(t, first.CustomerToken)
	require.NotEmpty(t, second.CustomerToken)
	assert.NotEqual(t, first.CustomerToken, second.CustomerToken)
	assert.Len(t, h.store.byEmail, 1)
	assert.Equal(t, second.CustomerToken, h.store.byEmail["a@x.com"].Token)
	assert.Equal(t, 2, h.orders.count())
}

func TestCheckoutProfileFailureKeepsOrder(t *testing.T) {
	product := models.Product{ID: primitive.NewObjectID(), Title: "A", Price: 10, Stock: 10}
	h := newHarness(t, product)
	h.store.err = errors.New("write timeout")

	receipt, err := h.pipeline.Checkout(context.Background(), Request{
		Items:       []LineItem{{ProductID: product.ID.Hex(), Quantity: 1}},
		Customer:    Contact{Email: "a@x.com"},
		SaveProfile: true,
	})
	require.NoError(t, err)
	assert.Empty(t, receipt.CustomerToken)
	assert.Equal(t, 1, h.orders.count())
	assert.Equal(t, 9, h.catalog.stock(product.ID))
	assert.Contains(t, h.logs.String(), "customer profile save failed")
}

func TestCheckoutToleratesDecrementMiss(t *testing.T) {
	product := models.Product{ID: primitive.NewObjectID(), Title: "A", Price: 10, Stock: 1}
	h := newHarness(t, product)

	receipt, err := h.pipeline.Checkout(context.Background(), Request{
		Items: []LineItem{{ProductID: product.ID.Hex(), Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Equal(t, 30.0, receipt.Total)
	assert.Equal(t, 1, h.catalog.stock(product.ID))
	assert.Equal(t, 1, h.orders.count())
	assert.Contains(t, h.logs.String(), "stock decrement not applied")
}

func TestCheckoutToleratesDecrementError(t *testing.T) {
	product := models.Product{ID: primitive.NewObjectID(), Title: "A", Price: 10, Stock: 5}
	h := newHarness(t, product)
	h.catalog.decrementFn = func(primitive.ObjectID, int) (bool, error) {
		return false, errors.New("connection reset")
	}

	_, err := h.pipeline.Checkout(context.Background(), Request{
		Items: []LineItem{{ProductID: product.ID.Hex(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, h.orders.count())
}

func TestCheckoutPersistFailureSurfaces(t *testing.T) {
	product := models.Product{ID: primitive.NewObjectID(), Title: "A", Price: 10, Stock: 5}
	h := newHarness(t, product)
	h.orders.err = errors.New("no primary")

	_, err := h.pipeline.Checkout(context.Background(), Request{
		Items: []LineItem{{ProductID: product.ID.Hex(), Quantity: 1}},
	})
	assert.True(t, apperr.Is(err, apperr.CodeUpstreamFailure))
	assert.Equal(t, 5, h.catalog.stock(product.ID))
}

func TestCheckoutPrefillsFromCustomerToken(t *testing.T) {
	product := models.Product{ID: primitive.NewObjectID(), Title: "A", Price: 10, Stock: 5}
	h := newHarness(t, product)
	h.store.byEmail["a@x.com"] = models.Customer{Token: "tok", Name: "Ada", Email: "a@x.com", Address: "1 Loop"}

	_, err := h.pipeline.Checkout(context.Background(), Request{
		Items:         []LineItem{{ProductID: product.ID.Hex(), Quantity: 1}},
		Customer:      Contact{Phone: "555"},
		CustomerToken: "tok",
	})
	require.NoError(t, err)

	customer := h.orders.orders[0].Customer
	assert.Equal(t, "Ada", customer.Name)
	assert.Equal(t, "a@x.com", customer.Email)
	assert.Equal(t, "555", customer.Phone)
	assert.Equal(t, "1 Loop", customer.Address)
}

func TestCheckoutDuplicateSubmissionCreatesTwoOrders(t *testing.T) {
	product := models.Product{ID: primitive.NewObjectID(), Title: "A", Price: 10, Stock: 5}
	h := newHarness(t, product)
	req := Request{Items: []LineItem{{ProductID: product.ID.Hex(), Quantity: 1}}}

	_, err := h.pipeline.Checkout(context.Background(), req)
	require.NoError(t, err)
	_, err = h.pipeline.Checkout(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, h.orders.count())
}

func TestCheckoutFinishesAfterCallerCancelsAtCommit(t *testing.T) {
	product := models.Product{ID: primitive.NewObjectID(), Title: "Scarf", Price: 25, Stock: 4}
	h := newHarness(t, product)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.orders.onCommit = cancel

	receipt, err := h.pipeline.Checkout(ctx, Request{
		Items:       []LineItem{{ProductID: product.ID.Hex(), Quantity: 3}},
		Customer:    Contact{Name: "Ada", Email: "ada@example.com"},
		SaveProfile: true,
	})
	require.NoError(t, err)
	require.Error(t, ctx.Err())

	assert.Equal(t, 1, h.orders.count())
	assert.Equal(t, 1, h.catalog.stock(product.ID))
	assert.NotEmpty(t, receipt.CustomerToken)
	assert.NotContains(t, h.logs.String(), "stock decrement not applied")
	assert.NotContains(t, h.logs.String(), "customer profile save failed")
}

func TestCheckoutIgnoresCancellationBeforeStart(t *testing.T) {
	product := models.Product{ID: primitive.NewObjectID(), Title: "Scarf", Price: 25, Stock: 4}
	h := newHarness(t, product)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.pipeline.Checkout(ctx, Request{
		Items: []LineItem{{ProductID: product.ID.Hex(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, h.orders.count())
	assert.Equal(t, 3, h.catalog.stock(product.ID))
}
