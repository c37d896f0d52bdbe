package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront/internal/logger"
	"storefront/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags each request with a request id, carries a request-scoped
// logger in the request context and logs the outcome.
func RequestLogger(log *logger.Logger, httpMetrics *metrics.HTTPMetrics) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header(RequestIDHeader, rid)

		ctx := log.WithRequestID(c.Request.Context(), rid)
		ctx = log.WithFields(ctx, map[string]any{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"remote_ip": c.ClientIP(),
		})
		c.Request = c.Request.WithContext(ctx)

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)
		status := c.Writer.Status()

		httpMetrics.Observe(c.Request.Method, c.FullPath(), status, elapsed)

		done := log.WithFields(ctx, map[string]any{
			"status":      status,
			"duration_ms": elapsed.Milliseconds(),
		})
		var lastErr error
		if e := c.Errors.Last(); e != nil {
			lastErr = e.Err
		}
		switch {
		case status >= 500:
			log.Error(done, "request completed", lastErr)
		case status >= 400:
			log.Warn(done, "request completed", nil)
		default:
			log.Info(done, "request completed")
		}
	}
}
