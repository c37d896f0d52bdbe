package wishlist

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type memoryWishlists map[string]models.Wishlist

func (m memoryWishlists) Add(ctx context.Context, owner string, item models.WishlistItem) error {
	list, ok := m[owner]
	if !ok {
		list = models.Wishlist{Owner: owner, CreatedAt: item.AddedAt}
	}
	for _, existing := range list.Items {
		if existing.ProductID == item.ProductID {
			m[owner] = list
			return nil
		}
	}
	list.Items = append(list.Items, item)
	m[owner] = list
	return nil
}

func (m memoryWishlists) Remove(ctx context.Context, owner string, productID primitive.ObjectID) error {
	list, ok := m[owner]
	if !ok {
		return nil
	}
	kept := list.Items[:0]
	for _, item := range list.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	list.Items = kept
	m[owner] = list
	return nil
}

func (m memoryWishlists) Find(ctx context.Context, owner string) (models.Wishlist, error) {
	list, ok := m[owner]
	if !ok {
		return models.Wishlist{}, ErrNotFound
	}
	return list, nil
}

type knownProducts map[primitive.ObjectID]bool

func (k knownProducts) Product(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	if !k[id] {
		return models.Product{}, apperr.NotFound("product", id.Hex())
	}
	return models.Product{ID: id}, nil
}

func newTestWishlist(t *testing.T, products ...primitive.ObjectID) *Service {
	t.Helper()
	known := knownProducts{}
	for _, id := range products {
		known[id] = true
	}
	svc, err := NewService(memoryWishlists{}, known)
	require.NoError(t, err)
	return svc
}

func TestAddTwiceKeepsOneItem(t *testing.T) {
	product := primitive.NewObjectID()
	svc := newTestWishlist(t, product)

	_, err := svc.Add(context.Background(), "owner-1", product.Hex())
	require.NoError(t, err)
	view, err := svc.Add(context.Background(), "owner-1", product.Hex())
	require.NoError(t, err)

	assert.Equal(t, []string{product.Hex()}, view.Items)
}

func TestAddUnknownProduct(t *testing.T) {
	svc := newTestWishlist(t)
	_, err := svc.Add(context.Background(), "owner-1", primitive.NewObjectID().Hex())
	assert.True(t, apperr.Is(err, apperr.CodeNotFound))
}

func TestAddRequiresOwner(t *testing.T) {
	product := primitive.NewObjectID()
	svc := newTestWishlist(t, product)
	_, err := svc.Add(context.Background(), " ", product.Hex())
	assert.True(t, apperr.Is(err, apperr.CodeInvalidInput))
}

func TestRemoveAbsentItemIsNoop(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	svc := newTestWishlist(t, a, b)
	_, err := svc.Add(context.Background(), "owner-1", a.Hex())
	require.NoError(t, err)

	view, err := svc.Remove(context.Background(), "owner-1", b.Hex())
	require.NoError(t, err)
	assert.Equal(t, []string{a.Hex()}, view.Items)

	view, err = svc.Remove(context.Background(), "owner-1", a.Hex())
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestGetUnknownOwnerIsEmpty(t *testing.T) {
	svc := newTestWishlist(t)
	view, err := svc.Get(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, "ghost", view.Owner)
	assert.NotNil(t, view.Items)
	assert.Empty(t, view.Items)
}

func TestAddFilterExcludesExistingProduct(t *testing.T) {
	id := primitive.NewObjectID()
	filter := addFilter("owner-1", id)
	assert.Equal(t, bson.M{"$ne": id}, filter["items.product_id"])
}
