package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"storefront/internal/apperr"
	"storefront/internal/logger"
)

const requestTimeout = 5 * time.Second

var registerFieldNames sync.Once

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		log.Error(log.WithField(ctx, "route", route), "panic recovered", fmt.Errorf("%v", r))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
			"code":  apperr.CodeInternal,
		})
	}
}

// requestContext bounds a store round-trip made on behalf of c.
func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError renders err as {"error", "code", "details"} with the status
// its code maps to. Errors outside the apperr taxonomy become INTERNAL.
func respondError(c *gin.Context, route string, err error) {
	appErr := apperr.As(err)
	if appErr == nil {
		appErr = apperr.Wrap(apperr.CodeInternal, err, "internal server error")
	}
	status := apperr.HTTPStatus(appErr.Code())

	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	logCtx := log.WithFields(ctx, map[string]any{
		"route":  route,
		"code":   string(appErr.Code()),
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		log.Error(logCtx, "request failed", err)
	} else {
		log.Warn(logCtx, appErr.Message(), nil)
	}

	_ = c.Error(err)
	body := gin.H{"error": appErr.Message(), "code": appErr.Code()}
	if details := appErr.Details(); len(details) > 0 {
		body["details"] = details
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the body into dst and reports validation failures by
// their JSON field names.
func bindJSON(c *gin.Context, dst any) error {
	registerFieldNames.Do(useJSONFieldNames)
	if err := c.ShouldBindJSON(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
}

func validationError(err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return apperr.InvalidInput("body", "invalid body").With("reason", err.Error())
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		switch fieldError.Tag() {
		case "required":
			messages = append(messages, fmt.Sprintf("%s is required", fieldError.Field()))
		case "min", "gte", "gt":
			messages = append(messages, fmt.Sprintf("%s must be at least %s", fieldError.Field(), fieldError.Param()))
		case "max", "lte", "lt":
			messages = append(messages, fmt.Sprintf("%s must be at most %s", fieldError.Field(), fieldError.Param()))
		default:
			messages = append(messages, fmt.Sprintf("%s is invalid", fieldError.Field()))
		}
	}
	return apperr.InvalidInput(validationErrors[0].Field(), "validation failed").With("errors", messages)
}
