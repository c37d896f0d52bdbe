package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/orders"
)

// OrderBook reads and updates persisted orders.
type OrderBook interface {
	List(ctx context.Context, limit int) ([]models.Order, error)
	Get(ctx context.Context, rawID string) (models.Order, error)
	UpdateStatus(ctx context.Context, rawID string, status models.OrderStatus) (models.Order, error)
}

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

/*
GET /orders/
- newest first, ?limit (default 50)
*/
func GetOrders(book OrderBook) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		limit := orders.DefaultListLimit
		if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 || parsed > maxPageLimit {
				respondError(c, route, apperr.InvalidInput("limit", "limit must be between 1 and 200"))
				return
			}
			limit = parsed
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := book.List(ctx, limit)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

/*
GET /orders/:id
*/
func GetOrder(book OrderBook) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := book.Get(ctx, c.Param("id"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

/*
PUT /orders/:id/status
- any known status, including the current one
*/
func UpdateOrderStatus(book OrderBook) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /orders/:id/status"
		defer handlePanic(c, route)

		var req updateOrderStatusRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := book.UpdateStatus(ctx, c.Param("id"), models.OrderStatus(req.Status))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
