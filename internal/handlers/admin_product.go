package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/catalog"
	"storefront/internal/logger"
	"storefront/internal/models"
)

// ProductWriter is the admin side of the catalog.
type ProductWriter interface {
	Create(ctx context.Context, in catalog.CreateInput) (models.Product, error)
	CreateWithImages(ctx context.Context, in catalog.CreateInput, files []catalog.ImageFile) (models.Product, error)
	Update(ctx context.Context, rawID string, in catalog.UpdateInput) (models.Product, error)
	Delete(ctx context.Context, rawID string) error
}

/* =======================
   REQUEST BODIES
======================= */

type createProductRequest struct {
	Title         string   `json:"title" binding:"required"`
	Description   string   `json:"description"`
	Price         *float64 `json:"price" binding:"required,gte=0"`
	Stock         int      `json:"stock" binding:"gte=0"`
	Category      string   `json:"category"`
	Subcategories []string `json:"subcategories"`
	Images        []string `json:"images"`
}

// updateProductRequest distinguishes absent fields (nil) from zero values.
type updateProductRequest struct {
	Title         *string   `json:"title"`
	Description   *string   `json:"description"`
	Price         *float64  `json:"price" binding:"omitempty,gte=0"`
	OnSale        *bool     `json:"on_sale"`
	SalePrice     *float64  `json:"sale_price"`
	Stock         *int      `json:"stock" binding:"omitempty,gte=0"`
	Category      *string   `json:"category"`
	Subcategories *[]string `json:"subcategories"`
	Images        *[]string `json:"images"`
}

func (r updateProductRequest) input() catalog.UpdateInput {
	return catalog.UpdateInput{
		Title:         r.Title,
		Description:   r.Description,
		Price:         r.Price,
		OnSale:        r.OnSale,
		SalePrice:     r.SalePrice,
		Stock:         r.Stock,
		Category:      r.Category,
		Subcategories: r.Subcategories,
		Images:        r.Images,
	}
}

/* =======================
   CREATE
======================= */

func CreateProduct(products ProductWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/products"
		defer handlePanic(c, route)

		var req createProductRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := products.Create(ctx, catalog.CreateInput{
			Title:         req.Title,
			Description:   req.Description,
			Price:         *req.Price,
			Stock:         req.Stock,
			Category:      req.Category,
			Subcategories: req.Subcategories,
			Images:        req.Images,
		})
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, product)
	}
}

/* =======================
   UPDATE (PARTIAL)
======================= */

func UpdateProduct(products ProductWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/products/:id"
		defer handlePanic(c, route)

		var req updateProductRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		updated, err := products.Update(ctx, c.Param("id"), req.input())
		if err != nil {
			respondError(c, route, err)
			return
		}

		log := logger.FromContext(c.Request.Context())
		log.Info(log.WithField(c.Request.Context(), "product_id", updated.ID.Hex()), "product updated")
		c.JSON(http.StatusOK, updated)
	}
}

/* =======================
   DELETE (SOFT)
======================= */

func DeleteProduct(products ProductWriter) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/products/:id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := products.Delete(ctx, c.Param("id")); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
