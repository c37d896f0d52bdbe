package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/logger"
)

// CredentialChecker verifies the bootstrap admin login.
type CredentialChecker interface {
	Check(email, password string) error
	Email() string
}

// TokenIssuer signs bearer tokens.
type TokenIssuer interface {
	Issue(subject, role string) (string, error)
}

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func AdminLogin(credentials CredentialChecker, tokens TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/login"
		defer handlePanic(c, route)

		var req AdminLoginRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, route, err)
			return
		}

		if err := credentials.Check(req.Email, req.Password); err != nil {
			respondError(c, route, apperr.New(apperr.CodeUnauthorized, "invalid credentials"))
			return
		}

		signed, err := tokens.Issue(credentials.Email(), auth.RoleAdmin)
		if err != nil {
			respondError(c, route, apperr.Wrap(apperr.CodeInternal, err, "token generation failed"))
			return
		}

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		log.Info(log.WithField(ctx, "admin", credentials.Email()), "admin logged in")

		c.JSON(http.StatusOK, gin.H{
			"token": signed,
		})
	}
}
