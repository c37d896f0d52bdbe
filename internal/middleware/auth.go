package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/logger"
)

// ClaimsKey is the gin context key holding the verified auth.Claims.
const ClaimsKey = "claims"

// TokenVerifier validates a raw bearer token.
type TokenVerifier interface {
	Verify(raw string) (auth.Claims, error)
}

func AuthGuard(verifier TokenVerifier, log *logger.Logger, allowedRoles ...string) gin.HandlerFunc {
	if log == nil {
		log = logger.Nop()
	}
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" {
			abortAuth(c, http.StatusUnauthorized, "missing token")
			return
		}

		parts := strings.Split(raw, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			abortAuth(c, http.StatusUnauthorized, "invalid token")
			return
		}

		claims, err := verifier.Verify(parts[1])
		if err != nil {
			log.Warn(c.Request.Context(), "token validation failed", err)
			abortAuth(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		if len(allowedRoles) > 0 {
			match := false
			for _, r := range allowedRoles {
				if claims.Role == r {
					match = true
					break
				}
			}
			if !match {
				abortAuth(c, http.StatusForbidden, "forbidden")
				return
			}
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

func AdminAuth(verifier TokenVerifier, log *logger.Logger) gin.HandlerFunc {
	return AuthGuard(verifier, log, auth.RoleAdmin)
}

func abortAuth(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message, "code": apperr.CodeUnauthorized})
}
