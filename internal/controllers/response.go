package controllers

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"eventhub-be/internal/apperror"
	"eventhub-be/internal/identity"
	"eventhub-be/internal/logger"
	"eventhub-be/internal/models"
	"eventhub-be/internal/validation"
)

// respondError writes err as {"message", "errors"?} with its mapped status.
func respondError(c *gin.Context, err error) {
	e := apperror.From(err)
	log := logger.FromContext(c.Request.Context())
	if e.Kind == apperror.Internal {
		log.Error("request failed", zap.String("message", e.Message), zap.Error(e.Err))
	} else {
		log.Warn("request rejected", zap.String("kind", e.Kind.String()), zap.String("message", e.Message))
	}
	c.JSON(e.Status(), models.ErrorResponse{Message: e.Message, Errors: e.Details})
}

// bindJSON decodes the body into dst. A missing body or a missing required
// field is reported with missingMsg.
func bindJSON(c *gin.Context, dst any, missingMsg string) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, io.EOF), validation.HasTag(err, "required"):
		respondError(c, apperror.NewBadRequest(missingMsg))
	case errors.As(err, &verrs):
		respondError(c, apperror.NewValidation(validation.Messages(verrs)))
	default:
		respondError(c, apperror.NewBadRequest("Invalid request body"))
	}
	return false
}

// caller returns the identity attached by AuthMiddleware.
func caller(c *gin.Context) (identity.Identity, bool) {
	id, ok := identity.FromContext(c.Request.Context())
	if !ok {
		respondError(c, apperror.NewInternal("User data not found after authentication", nil))
	}
	return id, ok
}
