package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/logger"
)

// PingFunc checks that the document store answers.
type PingFunc func(ctx context.Context) error

func Health(ping PingFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /healthz"
		defer handlePanic(c, route)

		checkCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := ping(checkCtx); err != nil {
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			log.Error(log.WithField(ctx, "route", route), "database ping failed", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "database unavailable",
				"code":  apperr.CodeUpstreamFailure,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
