package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/wishlist"
)

// WishlistStore keeps per-owner product wishlists.
type WishlistStore interface {
	Add(ctx context.Context, owner, rawProductID string) (wishlist.View, error)
	Remove(ctx context.Context, owner, rawProductID string) (wishlist.View, error)
	Get(ctx context.Context, owner string) (wishlist.View, error)
}

type wishlistItemRequest struct {
	Owner     string `json:"owner" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
}

func AddWishlistItem(store WishlistStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /wishlist/add"
		defer handlePanic(c, route)

		var req wishlistItemRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		view, err := store.Add(ctx, req.Owner, req.ProductID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

// RemoveWishlistItem succeeds when the item was never saved.
func RemoveWishlistItem(store WishlistStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /wishlist/remove"
		defer handlePanic(c, route)

		var req wishlistItemRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		view, err := store.Remove(ctx, req.Owner, req.ProductID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func GetWishlist(store WishlistStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /wishlist/:owner"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		view, err := store.Get(ctx, c.Param("owner"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
