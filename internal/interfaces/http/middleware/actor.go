package middleware

import (
	"net/http"

	"github.com/erp/stockcore/internal/infrastructure/logger"
	"github.com/erp/stockcore/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Actor reads the acting user from the X-User-ID header. Authentication is
// handled in front of this service; a malformed ID is rejected, a missing
// one leaves the request anonymous.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(HeaderUserID)
		if raw == "" {
			c.Next()
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "X-User-ID must be a UUID", GetRequestID(c)))
			return
		}
		c.Set(ActorIDKey, id)
		c.Request = c.Request.WithContext(logger.WithActorID(c.Request.Context(), id.String()))
		c.Next()
	}
}

// GetActorID returns the acting user set by Actor
func GetActorID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ActorIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}
