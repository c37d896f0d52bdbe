package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
	"storefront/internal/reviews"
)

// ReviewBook owns product reviews and their rating rollup.
type ReviewBook interface {
	Create(ctx context.Context, in reviews.CreateInput) (models.Review, error)
	Delete(ctx context.Context, rawID string) error
	ListByProduct(ctx context.Context, rawProductID string) ([]models.Review, error)
	ListAll(ctx context.Context) ([]models.Review, error)
	Stats(ctx context.Context, rawProductID string) (reviews.Stats, error)
}

type createReviewRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Author    string `json:"author"`
	Rating    int    `json:"rating" binding:"required"`
	Comment   string `json:"comment"`
}

/* ==== LIST ==== */

func GetReviews(book ReviewBook) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /reviews"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := book.ListAll(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetProductReviews(book ReviewBook) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /reviews/product/:id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := book.ListByProduct(ctx, c.Param("id"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

/* ==== CREATE / DELETE ==== */

func CreateReview(book ReviewBook) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /reviews"
		defer handlePanic(c, route)

		var req createReviewRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		review, err := book.Create(ctx, reviews.CreateInput{
			ProductID: req.ProductID,
			Author:    req.Author,
			Rating:    req.Rating,
			Comment:   req.Comment,
		})
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}

func DeleteReview(book ReviewBook) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /reviews/:id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		id := c.Param("id")
		if err := book.Delete(ctx, id); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "review deleted", "id": id})
	}
}

/* ==== STATS ==== */

func GetReviewStats(book ReviewBook) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /reviews/stats/:id"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		stats, err := book.Stats(ctx, c.Param("id"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
