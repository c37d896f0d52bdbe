package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/checkout"
	"storefront/internal/middleware"
)

// CheckoutRunner turns a cart submission into an order.
type CheckoutRunner interface {
	Checkout(ctx context.Context, req checkout.Request) (checkout.Receipt, error)
}

/* =========================
   REQUEST DTOs
========================= */

type checkoutItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type checkoutCustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type checkoutRequest struct {
	Items       []checkoutItemRequest   `json:"items"`
	Customer    checkoutCustomerRequest `json:"customer"`
	SaveProfile bool                    `json:"save_profile"`
}

func (r checkoutRequest) toPipeline(token string) checkout.Request {
	items := make([]checkout.LineItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, checkout.LineItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return checkout.Request{
		Items: items,
		Customer: checkout.Contact{
			Name:    r.Customer.Name,
			Email:   r.Customer.Email,
			Phone:   r.Customer.Phone,
			Address: r.Customer.Address,
		},
		SaveProfile:   r.SaveProfile,
		CustomerToken: token,
	}
}

/* =========================
   CHECKOUT
========================= */

// Checkout validates lines in the pipeline so that malformed ids and
// quantities are reported with the offending item index.
func Checkout(pipeline CheckoutRunner) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, route)

		var req checkoutRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		receipt, err := pipeline.Checkout(c.Request.Context(), req.toPipeline(middleware.CustomerTokenFrom(c)))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, receipt)
	}
}
