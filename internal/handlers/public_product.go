package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/catalog"
	"storefront/internal/logger"
	"storefront/internal/models"
)

// ProductReader is the read side of the catalog.
type ProductReader interface {
	List(ctx context.Context, params catalog.ListParams) ([]models.Product, error)
	Get(ctx context.Context, rawID string) (models.Product, error)
}

/*
GET /products/
- limit (default 24, max 200) + offset
- category: exact, case-insensitive
- subcategories: any-of, repeated or comma separated
*/
func GetProducts(products ProductReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products"
		defer handlePanic(c, route)

		limit, offset, err := parsePaginationParams(c.Query("limit"), c.Query("offset"))
		if err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := products.List(ctx, catalog.ListParams{
			Limit:         limit,
			Offset:        offset,
			Category:      c.Query("category"),
			Subcategories: splitQueryList(c.QueryArray("subcategories")),
		})
		if err != nil {
			respondError(c, route, err)
			return
		}

		log := logger.FromContext(c.Request.Context())
		log.Debug(log.WithField(c.Request.Context(), "count", len(list)), "returning products")
		c.JSON(http.StatusOK, list)
	}
}

/*
GET /products/:id
*/
func GetProduct(products ProductReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/:id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := products.Get(ctx, c.Param("id"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

/*
GET /products/subcategories?categories=Jewelry,Kids
- unknown categories are omitted
*/
func GetSubcategories() gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /products/subcategories"
		defer handlePanic(c, route)

		categories := splitQueryList(c.QueryArray("categories"))
		c.JSON(http.StatusOK, catalog.Subcategories(categories))
	}
}
