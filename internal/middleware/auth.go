package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eventhub-be/internal/apperror"
	"eventhub-be/internal/identity"
	"eventhub-be/internal/logger"
	"eventhub-be/internal/models"
	"eventhub-be/internal/service"
)

const bearerPrefix = "Bearer "

// AuthMiddleware requires a bearer token naming an existing user and
// attaches that user's identity to the request context.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := ""
		if strings.HasPrefix(header, bearerPrefix) {
			token = strings.TrimSpace(header[len(bearerPrefix):])
		}
		if token == "" {
			abort(c, apperror.NewUnauthorized("Not authorized, no token"))
			return
		}

		ctx := c.Request.Context()
		id, err := authService.Authenticate(ctx, token)
		if err != nil {
			abort(c, err)
			return
		}

		ctx = identity.WithContext(ctx, *id)
		ctx = logger.ToContext(ctx, logger.FromContext(ctx).With(zap.String("user_id", id.ID)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	e := apperror.From(err)
	log := logger.FromContext(c.Request.Context())
	if e.Kind == apperror.Internal {
		log.Error("authentication failed", zap.Error(e))
	} else {
		log.Warn("authentication rejected", zap.String("reason", e.Message))
	}
	c.AbortWithStatusJSON(e.Status(), models.ErrorResponse{Message: e.Message})
}
