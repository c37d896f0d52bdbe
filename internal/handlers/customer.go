package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/middleware"
	"storefront/internal/models"
)

// CustomerLookup resolves a saved-profile token.
type CustomerLookup interface {
	Lookup(ctx context.Context, token string) (models.Customer, error)
}

/*
GET /customers/me
- X-Customer-Token header required
*/
func GetCustomerMe(customers CustomerLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /customers/me"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		customer, err := customers.Lookup(ctx, middleware.CustomerTokenFrom(c))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}
