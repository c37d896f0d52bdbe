package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/carts"
)

// CartStore keeps one cart per browser session.
type CartStore interface {
	Upsert(ctx context.Context, sessionID string, lines []carts.Line) (carts.View, error)
	Get(ctx context.Context, sessionID string) (carts.View, error)
}

type cartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type upsertCartRequest struct {
	SessionID string            `json:"session_id" binding:"required"`
	Items     []cartItemRequest `json:"items"`
}

/*
POST /cart/upsert
- replaces the session's items
*/
func UpsertCart(store CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/upsert"
		defer handlePanic(c, route)

		var req upsertCartRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		lines := make([]carts.Line, 0, len(req.Items))
		for _, item := range req.Items {
			lines = append(lines, carts.Line{ProductID: item.ProductID, Quantity: item.Quantity})
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		view, err := store.Upsert(ctx, req.SessionID, lines)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

/*
GET /cart/:session_id
- empty cart when the session has none
*/
func GetCart(store CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart/:session_id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		view, err := store.Get(ctx, c.Param("session_id"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
