package carts

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type memoryCarts struct {
	carts map[string]models.Cart
	saves int
}

func (m *memoryCarts) Replace(ctx context.Context, sessionID string, items []models.CartItem, at time.Time) error {
	m.saves++
	cart, ok := m.carts[sessionID]
	if !ok {
		cart = models.Cart{SessionID: sessionID, CreatedAt: at}
	}
	cart.Items = items
	cart.UpdatedAt = at
	m.carts[sessionID] = cart
	return nil
}

func (m *memoryCarts) Find(ctx context.Context, sessionID string) (models.Cart, error) {
	cart, ok := m.carts[sessionID]
	if !ok {
		return models.Cart{}, ErrNotFound
	}
	return cart, nil
}

type productsByID map[primitive.ObjectID]models.Product

func (p productsByID) Product(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	product, ok := p[id]
	if !ok {
		return models.Product{}, apperr.NotFound("product", id.Hex())
	}
	return product, nil
}

func newTestCarts(t *testing.T, products ...models.Product) (*Service, *memoryCarts) {
	t.Helper()
	catalog := productsByID{}
	for _, p := range products {
		catalog[p.ID] = p
	}
	repo := &memoryCarts{carts: map[string]models.Cart{}}
	svc, err := NewService(repo, catalog)
	require.NoError(t, err)
	return svc, repo
}

func TestUpsertSnapshotsUnitPrice(t *testing.T) {
	sale := 80.0
	coat := models.Product{ID: primitive.NewObjectID(), Price: 100, OnSale: true, SalePrice: &sale}
	ring := models.Product{ID: primitive.NewObjectID(), Price: 12.5}
	svc, _ := newTestCarts(t, coat, ring)

	view, err := svc.Upsert(context.Background(), "sess-1", []Line{
		{ProductID: coat.ID.Hex(), Quantity: 1},
		{ProductID: ring.ID.Hex(), Quantity: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 3, view.TotalItems)
	assert.Equal(t, 105.0, view.Subtotal)
	assert.Equal(t, 80.0, view.Items[0].PriceAtAdd)
}

func TestUpsertReplacesItems(t *testing.T) {
	coat := models.Product{ID: primitive.NewObjectID(), Price: 100}
	ring := models.Product{ID: primitive.NewObjectID(), Price: 10}
	svc, _ := newTestCarts(t, coat, ring)

	_, err := svc.Upsert(context.Background(), "sess-1", []Line{{ProductID: coat.ID.Hex(), Quantity: 1}})
	require.NoError(t, err)
	_, err = svc.Upsert(context.Background(), "sess-1", []Line{{ProductID: ring.ID.Hex(), Quantity: 4}})
	require.NoError(t, err)

	view, err := svc.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, ring.ID.Hex(), view.Items[0].ProductID)
	assert.Equal(t, 40.0, view.Subtotal)
}

func TestUpsertRejectsBadLinesWithoutSaving(t *testing.T) {
	coat := models.Product{ID: primitive.NewObjectID(), Price: 100}
	svc, repo := newTestCarts(t, coat)

	_, err := svc.Upsert(context.Background(), "sess-1", []Line{{ProductID: "bad", Quantity: 1}})
	assert.True(t, apperr.Is(err, apperr.CodeInvalidInput))

	_, err = svc.Upsert(context.Background(), "sess-1", []Line{{ProductID: primitive.NewObjectID().Hex(), Quantity: 1}})
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))

	_, err = svc.Upsert(context.Background(), "", nil)
	assert.True(t, apperr.Is(err, apperr.CodeInvalidInput))

	assert.Zero(t, repo.saves)
}

func TestGetUnknownSessionIsEmpty(t *testing.T) {
	svc, _ := newTestCarts(t)

	view, err := svc.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", view.SessionID)
	assert.Empty(t, view.Items)
	assert.NotNil(t, view.Items)
	assert.Zero(t, view.Subtotal)
}

func TestReplaceUpdateKeepsCreatedAt(t *testing.T) {
	update := replaceUpdate(nil, time.Now())
	assert.NotContains(t, update["$set"].(bson.M), "created_at")
	assert.Contains(t, update["$setOnInsert"].(bson.M), "created_at")
}
