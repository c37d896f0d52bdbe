package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CustomerTokenHeader = "X-Customer-Token"
	customerTokenKey    = "customerToken"
)

// CustomerToken copies the optional guest-profile token header into the gin
// context. It never rejects a request.
func CustomerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := strings.TrimSpace(c.GetHeader(CustomerTokenHeader)); token != "" {
			c.Set(customerTokenKey, token)
		}
		c.Next()
	}
}

// CustomerTokenFrom returns the token set by CustomerToken, or "".
func CustomerTokenFrom(c *gin.Context) string {
	return c.GetString(customerTokenKey)
}
