package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/reporting"
)

// SalesReports produces the admin dashboard figures.
type SalesReports interface {
	Overview(ctx context.Context) (reporting.Overview, error)
	DailySales(ctx context.Context) ([]reporting.DailySales, error)
	Summary(ctx context.Context) (reporting.Summary, error)
}

/* ==== ADMIN STATS ==== */

func GetStatsOverview(reports SalesReports) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /stats"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		overview, err := reports.Overview(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, overview)
	}
}

func GetDailySales(reports SalesReports) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /stats/sales/daily"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		days, err := reports.DailySales(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"last_7_days": days})
	}
}

func GetSalesSummary(reports SalesReports) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /stats/sales/summary"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		summary, err := reports.Summary(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
